package repo

import (
	"context"

	"github.com/incepthink/aggtrade-backend-sub003/internal/model"
)

// SyncRunsRepo reads the sync run history written by the audit recorder.
type SyncRunsRepo interface {
	// LastRun returns the most recent run for a resource, or nil when the
	// resource has never been synced.
	LastRun(ctx context.Context, kind, chain, address string) (*model.SyncRuns, error)
	RecentByResource(ctx context.Context, kind, chain, address string, limit int) ([]model.SyncRuns, error)
}

type syncRunsRepo struct {
	deps Dependencies
}

func newSyncRunsRepo(deps Dependencies) SyncRunsRepo {
	return &syncRunsRepo{deps: deps}
}

func (r *syncRunsRepo) LastRun(ctx context.Context, kind, chain, address string) (*model.SyncRuns, error) {
	runs, err := r.deps.SyncRunsModel.RecentByResource(ctx, kind, chain, address, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (r *syncRunsRepo) RecentByResource(ctx context.Context, kind, chain, address string, limit int) ([]model.SyncRuns, error) {
	return r.deps.SyncRunsModel.RecentByResource(ctx, kind, chain, address, limit)
}
