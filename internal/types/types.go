// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

import (
	"github.com/incepthink/aggtrade-backend-sub003/pkg/timeseries"
)

type PriceHistoryReq struct {
	Chain      string `path:"chain"`
	Address    string `path:"address"`
	Resolution string `form:"resolution,optional"`
	Days       int    `form:"days,optional"`
	Force      bool   `form:"force,optional"`
}

type PriceHistoryResp struct {
	Status       string          `json:"status"`
	Data         PriceSeriesData `json:"data"`
	Cached       bool            `json:"cached"`
	UpdateStatus string          `json:"updateStatus"`
}

type PriceSeriesData struct {
	Records  []timeseries.PricePoint `json:"records"`
	Metadata timeseries.Metadata     `json:"metadata"`
}

type CandlesReq struct {
	Chain      string `path:"chain"`
	Address    string `path:"address"`
	Resolution string `form:"resolution,optional"`
	Days       int    `form:"days,optional"`
	Force      bool   `form:"force,optional"`
}

type CandlesResp struct {
	Status       string           `json:"status"`
	Data         CandleSeriesData `json:"data"`
	Cached       bool             `json:"cached"`
	UpdateStatus string           `json:"updateStatus"`
}

type CandleSeriesData struct {
	Records  []timeseries.Candle `json:"records"`
	Metadata timeseries.Metadata `json:"metadata"`
}

type SwapsReq struct {
	Chain   string `path:"chain"`
	Address string `path:"address"`
	Days    int    `form:"days,optional"`
	Force   bool   `form:"force,optional"`
}

type SwapsResp struct {
	Status       string         `json:"status"`
	Data         SwapSeriesData `json:"data"`
	Cached       bool           `json:"cached"`
	UpdateStatus string         `json:"updateStatus"`
}

type SwapSeriesData struct {
	Records  []timeseries.Swap   `json:"records"`
	Metadata timeseries.Metadata `json:"metadata"`
}

type SpotPriceReq struct {
	Chain   string `path:"chain"`
	Address string `path:"address"`
}

type SpotPriceResp struct {
	Status string        `json:"status"`
	Data   SpotPriceData `json:"data"`
}

type SpotPriceData struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	// Price is null when every retry was exhausted without an answer;
	// PriceStatus tells the two cases apart.
	Price       *float64 `json:"price"`
	PriceStatus string   `json:"priceStatus"`
	Cached      bool     `json:"cached"`
}

type HealthResp struct {
	Status    string   `json:"status"`
	Redis     string   `json:"redis"`
	Postgres  string   `json:"postgres"`
	Providers []string `json:"providers"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResp struct {
	Status string    `json:"status"`
	Error  ErrorInfo `json:"error"`
}
