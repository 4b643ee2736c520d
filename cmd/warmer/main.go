// Command warmer keeps a watchlist of market data series fresh so serving
// traffic mostly hits warm cache. Each sweep runs the same sync path the API
// uses; the freshness short circuit makes sweeping a fresh series free, and
// a per-series guard key keeps concurrent warmer instances from piling onto
// the same resource.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cache"
	"github.com/incepthink/aggtrade-backend-sub003/internal/cli"
	"github.com/incepthink/aggtrade-backend-sub003/internal/config"
	"github.com/incepthink/aggtrade-backend-sub003/internal/seriesync"
	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
)

const (
	sweepInterval   = time.Minute
	syncTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

var configFile = flag.String("f", "etc/aggtrade.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting cache warmer...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	if len(cfg.Sync.Warm) == 0 {
		log.Println("[main] Warning: Sync.Warm is empty, nothing to keep fresh")
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}
	log.Printf("  - Watchlist: %d series", len(cfg.Sync.Warm))
	log.Printf("  - Sweep interval: %s", sweepInterval)

	svcCtx := svc.NewServiceContext(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runWarmer(ctx, svcCtx)
	}()

	log.Println("[main] Cache warmer started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping sweeps...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] Sweep loop stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Cache warmer stopped")
}

func runWarmer(ctx context.Context, svcCtx *svc.ServiceContext) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	// Run once immediately on startup
	sweep(ctx, svcCtx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[warmer] Stopping sweep loop")
			return
		case <-ticker.C:
			sweep(ctx, svcCtx)
		}
	}
}

func sweep(parentCtx context.Context, svcCtx *svc.ServiceContext) {
	if parentCtx.Err() != nil {
		return
	}

	for _, tg := range svcCtx.Config.Sync.Warm {
		warmOne(parentCtx, svcCtx, tg)
	}

	guardSeconds := int(cache.WarmerGuardTTL(svcCtx.TTL) / time.Second)
	if guardSeconds <= 0 {
		guardSeconds = 60
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := svcCtx.Redis.SetexCtx(parentCtx, cache.WarmerLastRunKey(), stamp, guardSeconds); err != nil {
		log.Printf("[warmer] [WARN] failed to record last run: %v", err)
	}
}

func warmOne(parentCtx context.Context, svcCtx *svc.ServiceContext, tg config.WarmTarget) {
	if parentCtx.Err() != nil {
		return
	}

	label := tg.Kind + "." + tg.Chain + "/" + tg.Address

	// The guard spaces sweeps per series across warmer instances; a held
	// guard means another sweep refreshed this series recently enough.
	guardSeconds := int(cache.WarmerGuardTTL(svcCtx.TTL) / time.Second)
	if guardSeconds > 0 {
		guardKey := cache.WarmerTargetKey(tg.Kind, tg.Chain, tg.Address, tg.Resolution)
		ok, err := svcCtx.Redis.SetnxExCtx(parentCtx, guardKey, "1", guardSeconds)
		if err != nil {
			log.Printf("[warmer.%s] [ERROR] guard check: %v", label, err)
			return
		}
		if !ok {
			return
		}
	}

	ctx, cancel := context.WithTimeout(parentCtx, syncTimeout)
	defer cancel()

	req := seriesync.Request{
		Chain:      tg.Chain,
		Address:    tg.Address,
		Resolution: tg.Resolution,
	}

	start := time.Now()
	var (
		status  seriesync.UpdateStatus
		records int
		err     error
	)
	switch timeseries.Kind(tg.Kind) {
	case timeseries.KindPrice:
		var res *seriesync.Result[timeseries.PricePoint]
		if res, err = svcCtx.PriceSyncer.Sync(ctx, req); err == nil {
			status, records = res.UpdateStatus, len(res.Records)
		}
	case timeseries.KindCandles:
		var res *seriesync.Result[timeseries.Candle]
		if res, err = svcCtx.CandleSyncer.Sync(ctx, req); err == nil {
			status, records = res.UpdateStatus, len(res.Records)
		}
	case timeseries.KindSwaps:
		var res *seriesync.Result[timeseries.Swap]
		if res, err = svcCtx.SwapSyncer.Sync(ctx, req); err == nil {
			status, records = res.UpdateStatus, len(res.Records)
		}
	default:
		log.Printf("[warmer.%s] [ERROR] unknown series kind", label)
		return
	}
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("[warmer.%s] [ERROR] %v, took %dms", label, err, elapsed.Milliseconds())
		return
	}
	log.Printf("[warmer.%s] [OK] status=%s records=%d, took %dms", label, status, records, elapsed.Milliseconds())
}
