package model

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ SyncRunsModel = (*defaultSyncRunsModel)(nil)

// TextArray adapts a []string column of postgres type text[] through lib/pq
// so it scans and binds with any database/sql driver.
type TextArray []string

func (a *TextArray) Scan(src any) error {
	return pq.Array((*[]string)(a)).Scan(src)
}

func (a TextArray) Value() (driver.Value, error) {
	return pq.Array([]string(a)).Value()
}

// SyncRuns is the audit row written after each completed series sync.
type SyncRuns struct {
	Id         string         `db:"id"`
	Kind       string         `db:"kind"`
	Chain      string         `db:"chain"`
	Address    string         `db:"address"`
	Resolution sql.NullString `db:"resolution"`
	FullSync   bool           `db:"full_sync"`
	Fetched    int64          `db:"fetched"`
	Total      int64          `db:"total"`
	Sources    TextArray      `db:"sources"`
	StartedAt  time.Time      `db:"started_at"`
	DurationMs int64          `db:"duration_ms"`
	CreatedAt  time.Time      `db:"created_at"`
}

type (
	// SyncRunsModel is an interface to be customized, add more methods here,
	// and implement the added methods in defaultSyncRunsModel.
	SyncRunsModel interface {
		Insert(ctx context.Context, data *SyncRuns) (sql.Result, error)
		FindOne(ctx context.Context, id string) (*SyncRuns, error)
		RecentByResource(ctx context.Context, kind, chain, address string, limit int) ([]SyncRuns, error)
	}

	defaultSyncRunsModel struct {
		conn  sqlx.SqlConn
		table string
	}
)

// NewSyncRunsModel returns a model for the database table.
func NewSyncRunsModel(conn sqlx.SqlConn) SyncRunsModel {
	return &defaultSyncRunsModel{conn: conn, table: "public.sync_runs"}
}

const syncRunsRows = `id, kind, chain, address, resolution, full_sync, fetched, total, sources, started_at, duration_ms, created_at`

func (m *defaultSyncRunsModel) Insert(ctx context.Context, data *SyncRuns) (sql.Result, error) {
	query := `INSERT INTO ` + m.table + ` (id, kind, chain, address, resolution, full_sync, fetched, total, sources, started_at, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	return m.conn.ExecCtx(ctx, query, data.Id, data.Kind, data.Chain, data.Address, data.Resolution,
		data.FullSync, data.Fetched, data.Total, data.Sources, data.StartedAt, data.DurationMs)
}

func (m *defaultSyncRunsModel) FindOne(ctx context.Context, id string) (*SyncRuns, error) {
	query := `SELECT ` + syncRunsRows + ` FROM ` + m.table + ` WHERE id = $1 LIMIT 1`
	var resp SyncRuns
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

// RecentByResource returns the latest runs for one series identity, newest
// first. Limit defaults to 50 when non-positive.
func (m *defaultSyncRunsModel) RecentByResource(ctx context.Context, kind, chain, address string, limit int) ([]SyncRuns, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + syncRunsRows + ` FROM ` + m.table + `
WHERE kind = $1 AND chain = $2 AND address = $3
ORDER BY started_at DESC
LIMIT $4`
	var rows []SyncRuns
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, kind, chain, address, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
