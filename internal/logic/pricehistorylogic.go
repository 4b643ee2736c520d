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
)

const (
	defaultPriceResolution = "15m"
	defaultPriceDays       = 30
)

type PriceHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPriceHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PriceHistoryLogic {
	return &PriceHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PriceHistoryLogic) PriceHistory(req *types.PriceHistoryReq) (*types.PriceHistoryResp, error) {
	chain, err := validate.Chain(req.Chain)
	if err != nil {
		return nil, err
	}
	address, err := validate.Address(chain, req.Address)
	if err != nil {
		return nil, err
	}
	resolution, err := validate.Resolution(req.Resolution, defaultPriceResolution)
	if err != nil {
		return nil, err
	}
	days, err := validate.Days(req.Days, defaultPriceDays)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res, err := l.svcCtx.PriceSyncer.Sync(l.ctx, seriesync.Request{
		Chain:      chain,
		Address:    address,
		Resolution: resolution,
		From:       now.AddDate(0, 0, -days).Unix(),
		To:         now.Unix(),
		Force:      req.Force,
	})
	if err != nil {
		return nil, err
	}

	return &types.PriceHistoryResp{
		Status: "success",
		Data: types.PriceSeriesData{
			Records:  res.Records,
			Metadata: res.Meta,
		},
		Cached:       res.Cached,
		UpdateStatus: string(res.UpdateStatus),
	}, nil
}
