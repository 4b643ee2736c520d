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

// Swap history is heavier per day than bar data, so its default window is
// shorter.
const defaultSwapDays = 7

type SwapsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSwapsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SwapsLogic {
	return &SwapsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SwapsLogic) Swaps(req *types.SwapsReq) (*types.SwapsResp, error) {
	chain, err := validate.Chain(req.Chain)
	if err != nil {
		return nil, err
	}
	address, err := validate.Address(chain, req.Address)
	if err != nil {
		return nil, err
	}
	days, err := validate.Days(req.Days, defaultSwapDays)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res, err := l.svcCtx.SwapSyncer.Sync(l.ctx, seriesync.Request{
		Chain:   chain,
		Address: address,
		From:    now.AddDate(0, 0, -days).Unix(),
		To:      now.Unix(),
		Force:   req.Force,
	})
	if err != nil {
		return nil, err
	}

	return &types.SwapsResp{
		Status: "success",
		Data: types.SwapSeriesData{
			Records:  res.Records,
			Metadata: res.Meta,
		},
		Cached:       res.Cached,
		UpdateStatus: string(res.UpdateStatus),
	}, nil
}
