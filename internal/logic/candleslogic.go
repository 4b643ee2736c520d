// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/seriesync"
	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
	"github.com/incepthink/aggtrade-backend-sub003/internal/types"
	"github.com/incepthink/aggtrade-backend-sub003/internal/validate"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

const (
	defaultCandleResolution = "1h"
	defaultCandleDays       = 30
)

type CandlesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCandlesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CandlesLogic {
	return &CandlesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CandlesLogic) Candles(req *types.CandlesReq) (*types.CandlesResp, error) {
	chain, err := validate.Chain(req.Chain)
	if err != nil {
		return nil, err
	}
	address, err := validate.Address(chain, req.Address)
	if err != nil {
		return nil, err
	}
	resolution, err := validate.Resolution(req.Resolution, defaultCandleResolution)
	if err != nil {
		return nil, err
	}
	days, err := validate.Days(req.Days, defaultCandleDays)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	from, to := now.AddDate(0, 0, -days).Unix(), now.Unix()
	res, err := l.svcCtx.CandleSyncer.Sync(l.ctx, seriesync.Request{
		Chain:      chain,
		Address:    address,
		Resolution: resolution,
		From:       from,
		To:         to,
		Force:      req.Force,
	})
	if err != nil {
		if l.svcCtx.Config.Sync.SynthesizeCandles && upstream.IsNotFound(err) {
			return l.synthetic(chain, address, resolution, from, to, err)
		}
		return nil, err
	}

	return &types.CandlesResp{
		Status: "success",
		Data: types.CandleSeriesData{
			Records:  res.Records,
			Metadata: res.Meta,
		},
		Cached:       res.Cached,
		UpdateStatus: string(res.UpdateStatus),
	}, nil
}

// synthetic serves flat placeholder bars for pools whose upstream has no
// OHLC history yet. The bars derive from the current spot price, are marked
// synthetic, and are never written into the cache. Without a known spot
// price the original no-data outcome stands.
func (l *CandlesLogic) synthetic(chain, address, resolution string, from, to int64, syncErr error) (*types.CandlesResp, error) {
	spot, err := l.svcCtx.Spot.Price(l.ctx, chain, address)
	if err != nil || !spot.Known {
		return nil, syncErr
	}
	step, err := timeseries.ParseResolution(resolution)
	if err != nil {
		return nil, syncErr
	}
	bars := seriesync.FlatCandles(spot.Price, from, to, step)
	if len(bars) == 0 {
		return nil, syncErr
	}
	l.Infof("candles: serving %d synthetic bars chain=%s address=%s resolution=%s", len(bars), chain, address, resolution)

	return &types.CandlesResp{
		Status: "success",
		Data: types.CandleSeriesData{
			Records:  bars,
			Metadata: timeseries.BuildMetadata(bars, time.Now()),
		},
		Cached:       false,
		UpdateStatus: string(seriesync.StatusUpdated),
	}, nil
}
