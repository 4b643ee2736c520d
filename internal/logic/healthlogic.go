// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package logic

import (
	"context"
	"sort"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
	"github.com/incepthink/aggtrade-backend-sub003/internal/types"
)

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Health() (*types.HealthResp, error) {
	resp := &types.HealthResp{
		Status:   "ok",
		Redis:    "ok",
		Postgres: "not_configured",
	}

	if !l.svcCtx.Store.Ping(l.ctx) {
		resp.Status = "degraded"
		resp.Redis = "unreachable"
	}

	if l.svcCtx.DBConn != nil {
		resp.Postgres = "ok"
		if db, err := l.svcCtx.DBConn.RawDB(); err != nil || db.PingContext(l.ctx) != nil {
			resp.Status = "degraded"
			resp.Postgres = "unreachable"
		}
	}

	for name := range l.svcCtx.UpstreamProviders {
		resp.Providers = append(resp.Providers, name)
	}
	sort.Strings(resp.Providers)

	return resp, nil
}
