// Package audit mirrors completed sync runs into Postgres. Recording is
// strictly best effort: a failed insert is logged and dropped, it never
// fails or delays the serving path.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/model"
	"github.com/incepthink/aggtrade-backend-sub003/internal/seriesync"
)

// Recorder writes one sync_runs row per completed sync.
type Recorder struct {
	runs model.SyncRunsModel
	// provider is the upstream the runs were fetched from, stored in the
	// sources column.
	provider string
}

// NewRecorder returns nil when no model is available, so callers can attach
// the hook unconditionally.
func NewRecorder(runs model.SyncRunsModel, provider string) *Recorder {
	if runs == nil {
		return nil
	}
	return &Recorder{runs: runs, provider: provider}
}

// Hook adapts the recorder to the syncer's audit callback. A nil recorder
// yields a nil hook, which the syncer skips.
func (r *Recorder) Hook() seriesync.AuditFunc {
	if r == nil {
		return nil
	}
	return r.record
}

func (r *Recorder) record(ctx context.Context, run seriesync.Run) {
	row := &model.SyncRuns{
		Id:         uuid.NewString(),
		Kind:       string(run.Kind),
		Chain:      run.Chain,
		Address:    run.Address,
		Resolution: nullString(run.Resolution),
		FullSync:   run.Full,
		Fetched:    int64(run.Fetched),
		Total:      int64(run.Total),
		Sources:    model.TextArray{r.provider},
		StartedAt:  run.StartedAt.UTC(),
		DurationMs: run.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	_, err := r.runs.Insert(ctx, row)
	if err != nil && !isUniqueViolation(err) {
		logx.WithContext(ctx).Errorf("syncaudit: insert run kind=%s chain=%s address=%s err=%v",
			row.Kind, row.Chain, row.Address, err)
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation matches Postgres error 23505 from either the pgx driver
// or a lib/pq connection.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
