// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/logic"
	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
	"github.com/incepthink/aggtrade-backend-sub003/internal/types"
)

func SpotPriceHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SpotPriceReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewSpotPriceLogic(r.Context(), svcCtx)
		resp, err := l.SpotPrice(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
