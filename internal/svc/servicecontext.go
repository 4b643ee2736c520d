package svc

import (
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cache"
	"github.com/incepthink/aggtrade-backend-sub003/internal/config"
	"github.com/incepthink/aggtrade-backend-sub003/internal/model"
	"github.com/incepthink/aggtrade-backend-sub003/internal/persistence/audit"
	"github.com/incepthink/aggtrade-backend-sub003/internal/repo"
	"github.com/incepthink/aggtrade-backend-sub003/internal/seriesync"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
	upstreampkg "github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
	_ "github.com/incepthink/aggtrade-backend-sub003/pkg/upstream/dexscan"
	_ "github.com/incepthink/aggtrade-backend-sub003/pkg/upstream/sim"
)

type ServiceContext struct {
	Config *config.Config

	Redis *redis.Redis
	Store *cache.Store
	Lock  *cache.Lock
	TTL   cache.TTLSet

	UpstreamProviders map[string]upstreampkg.Provider
	DefaultUpstream   upstreampkg.Provider

	PriceSyncer  *seriesync.Syncer[timeseries.PricePoint]
	CandleSyncer *seriesync.Syncer[timeseries.Candle]
	SwapSyncer   *seriesync.Syncer[timeseries.Swap]
	Spot         *seriesync.SpotLookup

	// Optional DB handles; all nil when no Postgres DSN is configured. The
	// sync engine works without them, only the audit trail and the trade
	// journal need Postgres.
	DBConn         sqlx.SqlConn
	BotTradesModel model.BotTradesModel
	SyncRunsModel  model.SyncRunsModel
	Repos          *repo.Set
}

func NewServiceContext(c *config.Config) *ServiceContext {
	rds := redis.MustNewRedis(c.Redis)

	svc := &ServiceContext{
		Config: c,
		Redis:  rds,
		Store:  cache.NewStore(rds),
		Lock:   cache.NewLock(rds),
		TTL:    cache.NewTTLSet(c.TTL),
	}

	upstreamCfg := c.Upstream.Value
	if upstreamCfg == nil {
		log.Fatalf("upstream config missing: set Upstream.File in the main config")
	}
	providers, err := upstreamCfg.BuildProviders()
	if err != nil {
		log.Fatalf("failed to build upstream providers: %v", err)
	}
	defaultProvider, err := upstreamCfg.DefaultProvider(providers)
	if err != nil {
		log.Fatalf("failed to resolve default upstream provider: %v", err)
	}
	svc.UpstreamProviders = providers
	svc.DefaultUpstream = defaultProvider

	// Only inject DB handles when a DSN is provided; serving works without.
	var auditHook seriesync.AuditFunc
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn
		svc.BotTradesModel = model.NewBotTradesModel(conn)
		svc.SyncRunsModel = model.NewSyncRunsModel(conn)
		repos, err := repo.New(repo.Dependencies{
			DBConn:         conn,
			BotTradesModel: svc.BotTradesModel,
			SyncRunsModel:  svc.SyncRunsModel,
		})
		if err != nil {
			log.Fatalf("failed to build repos: %v", err)
		}
		svc.Repos = repos
		auditHook = audit.NewRecorder(svc.SyncRunsModel, defaultProvider.Name()).Hook()
	}

	lookback := time.Duration(c.Sync.LookbackDays) * 24 * time.Hour
	providerCfg := upstreamCfg.Providers[defaultProvider.Name()]

	svc.PriceSyncer = &seriesync.Syncer[timeseries.PricePoint]{
		Kind:     timeseries.KindPrice,
		Store:    svc.Store,
		Lock:     svc.Lock,
		TTL:      svc.TTL,
		Lookback: lookback,
		Pager:    pagerFor[timeseries.PricePoint](providerCfg),
		Fetch:    defaultProvider.PricePage,
		Audit:    auditHook,
	}
	svc.CandleSyncer = &seriesync.Syncer[timeseries.Candle]{
		Kind:     timeseries.KindCandles,
		Store:    svc.Store,
		Lock:     svc.Lock,
		TTL:      svc.TTL,
		Lookback: lookback,
		Pager:    pagerFor[timeseries.Candle](providerCfg),
		Fetch:    defaultProvider.CandlePage,
		Audit:    auditHook,
	}
	svc.SwapSyncer = &seriesync.Syncer[timeseries.Swap]{
		Kind:     timeseries.KindSwaps,
		Store:    svc.Store,
		Lock:     svc.Lock,
		TTL:      svc.TTL,
		Lookback: lookback,
		Pager:    pagerFor[timeseries.Swap](providerCfg),
		Fetch:    defaultProvider.SwapPage,
		Audit:    auditHook,
	}
	svc.Spot = &seriesync.SpotLookup{
		Store:    svc.Store,
		TTL:      svc.TTL,
		Provider: defaultProvider,
	}

	return svc
}

// pagerFor translates one provider's paging knobs into a pager. Zero values
// fall back to the pager defaults.
func pagerFor[R timeseries.Record](pc *upstreampkg.ProviderConfig) upstreampkg.Pager[R] {
	if pc == nil {
		return upstreampkg.Pager[R]{}
	}
	return upstreampkg.Pager[R]{
		PageSize:   pc.PageSize,
		MaxRecords: pc.MaxRecords,
		Delay:      pc.PageDelay,
	}
}
