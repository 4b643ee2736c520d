package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/types"
	"github.com/incepthink/aggtrade-backend-sub003/internal/validate"
	"github.com/incepthink/aggtrade-backend-sub003/pkg/upstream"
)

// RegisterErrorHandler installs the error-to-JSON mapping for every route.
// Call once at startup before the server starts accepting requests.
func RegisterErrorHandler() {
	httpx.SetErrorHandlerCtx(mapError)
}

// mapError turns internal errors into the API error envelope. Callers only
// learn the failure class; the full cause stays in the logs. A busy refresh
// lock never reaches here, the syncer serves stale data for it instead.
func mapError(ctx context.Context, err error) (int, any) {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody("validation_error", ve.Error())
	case upstream.IsNotFound(err):
		return http.StatusNotFound, errorBody("not_found", "no data for the requested resource")
	case errors.Is(err, upstream.ErrRateLimited):
		return http.StatusTooManyRequests, errorBody("rate_limited", "upstream rate limit exhausted, retry later")
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusServiceUnavailable, errorBody("upstream_unavailable", "upstream temporarily unavailable")
	default:
		logx.WithContext(ctx).Errorf("handler: unmapped error: %v", err)
		return http.StatusInternalServerError, errorBody("internal_error", "internal server error")
	}
}

func errorBody(code, message string) types.ErrorResp {
	return types.ErrorResp{
		Status: "error",
		Error:  types.ErrorInfo{Code: code, Message: message},
	}
}
