package dexscan

import "encoding/json"

// apiEnvelope is the outer shape of every Dexscan response.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PriceData is the payload of /token/price.
type PriceData struct {
	Value          float64 `json:"value"`
	UpdateUnixTime int64   `json:"updateUnixTime"`
}

// PriceHistoryData is the payload of /token/price/history.
type PriceHistoryData struct {
	Items []PriceItem `json:"items"`
}

// PriceItem is one historical price observation.
type PriceItem struct {
	UnixTime int64   `json:"unixTime"`
	Value    float64 `json:"value"`
}

// OHLCVData is the payload of /pool/ohlcv.
type OHLCVData struct {
	Items []OHLCVItem `json:"items"`
}

// OHLCVItem is one OHLCV bar as reported upstream.
type OHLCVItem struct {
	UnixTime int64   `json:"unixTime"`
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
}

// TradesData is the payload of /pool/trades.
type TradesData struct {
	Items []TradeItem `json:"items"`
}

// TradeItem is one executed swap as reported upstream. InnerIndex
// disambiguates multiple swaps inside one transaction.
type TradeItem struct {
	TxHash        string  `json:"txHash"`
	InnerIndex    int     `json:"innerIndex"`
	BlockUnixTime int64   `json:"blockUnixTime"`
	Side          string  `json:"side"`
	PriceUSD      float64 `json:"priceUsd"`
	AmountBase    float64 `json:"amountBase"`
	AmountQuote   float64 `json:"amountQuote"`
	Owner         string  `json:"owner"`
}
