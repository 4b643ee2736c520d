package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ BotTradesModel = (*defaultBotTradesModel)(nil)

// BotTrades mirrors one bookkeeping row for a bot-executed swap. Money
// columns are numeric in postgres and decimals here; float64 would drift.
type BotTrades struct {
	Id           int64           `db:"id"`
	BotId        string          `db:"bot_id"`
	Chain        string          `db:"chain"`
	TokenAddress string          `db:"token_address"`
	Side         string          `db:"side"`
	Price        decimal.Decimal `db:"price"`
	AmountBase   decimal.Decimal `db:"amount_base"`
	AmountQuote  decimal.Decimal `db:"amount_quote"`
	TxHash       sql.NullString  `db:"tx_hash"`
	ExecutedAt   time.Time       `db:"executed_at"`
	CreatedAt    time.Time       `db:"created_at"`
}

type (
	// BotTradesModel is an interface to be customized, add more methods here,
	// and implement the added methods in defaultBotTradesModel.
	BotTradesModel interface {
		Insert(ctx context.Context, data *BotTrades) (sql.Result, error)
		FindOne(ctx context.Context, id int64) (*BotTrades, error)
		RecentByBot(ctx context.Context, botId string, limit int) ([]BotTrades, error)
	}

	defaultBotTradesModel struct {
		conn  sqlx.SqlConn
		table string
	}
)

// NewBotTradesModel returns a model for the database table.
func NewBotTradesModel(conn sqlx.SqlConn) BotTradesModel {
	return &defaultBotTradesModel{conn: conn, table: "public.bot_trades"}
}

const botTradesRows = `id, bot_id, chain, token_address, side, price, amount_base, amount_quote, tx_hash, executed_at, created_at`

func (m *defaultBotTradesModel) Insert(ctx context.Context, data *BotTrades) (sql.Result, error) {
	query := `INSERT INTO ` + m.table + ` (bot_id, chain, token_address, side, price, amount_base, amount_quote, tx_hash, executed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	return m.conn.ExecCtx(ctx, query, data.BotId, data.Chain, data.TokenAddress, data.Side,
		data.Price, data.AmountBase, data.AmountQuote, data.TxHash, data.ExecutedAt)
}

func (m *defaultBotTradesModel) FindOne(ctx context.Context, id int64) (*BotTrades, error) {
	query := `SELECT ` + botTradesRows + ` FROM ` + m.table + ` WHERE id = $1 LIMIT 1`
	var resp BotTrades
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

// RecentByBot returns trades for the given bot ordered by execution time
// descending. Limit defaults to 100 when non-positive.
func (m *defaultBotTradesModel) RecentByBot(ctx context.Context, botId string, limit int) ([]BotTrades, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + botTradesRows + ` FROM ` + m.table + `
WHERE bot_id = $1
ORDER BY executed_at DESC
LIMIT $2`
	var rows []BotTrades
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, botId, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
