// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
	"github.com/incepthink/aggtrade-backend-sub003/internal/types"
	"github.com/incepthink/aggtrade-backend-sub003/internal/validate"
)

const (
	priceStatusOK      = "ok"
	priceStatusUnknown = "unknown"
)

type SpotPriceLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSpotPriceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SpotPriceLogic {
	return &SpotPriceLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SpotPriceLogic) SpotPrice(req *types.SpotPriceReq) (*types.SpotPriceResp, error) {
	chain, err := validate.Chain(req.Chain)
	if err != nil {
		return nil, err
	}
	address, err := validate.Address(chain, req.Address)
	if err != nil {
		return nil, err
	}

	res, err := l.svcCtx.Spot.Price(l.ctx, chain, address)
	if err != nil {
		return nil, err
	}

	data := types.SpotPriceData{
		Chain:       chain,
		Address:     address,
		PriceStatus: priceStatusUnknown,
		Cached:      res.Cached,
	}
	if res.Known {
		price := res.Price
		data.Price = &price
		data.PriceStatus = priceStatusOK
	}

	return &types.SpotPriceResp{Status: "success", Data: data}, nil
}
