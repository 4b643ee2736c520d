// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/chains/:chain/tokens/:address/price-history",
				Handler: PriceHistoryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/chains/:chain/tokens/:address/price",
				Handler: SpotPriceHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/chains/:chain/pools/:address/candles",
				Handler: CandlesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/chains/:chain/pools/:address/swaps",
				Handler: SwapsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/v1"),
	)
}
