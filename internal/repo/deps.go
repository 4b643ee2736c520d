// Package repo wires the optional Postgres bookkeeping tables behind
// small read/write interfaces. The sync engine itself never touches
// these tables; they exist for trade journaling and sync run history.
package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"github.com/incepthink/aggtrade-backend-sub003/internal/model"
)

// Dependencies carries the concrete handles repos are built from.
type Dependencies struct {
	DBConn sqlx.SqlConn

	BotTradesModel model.BotTradesModel
	SyncRunsModel  model.SyncRunsModel
}

// Set bundles the repos the service consumes.
type Set struct {
	Trades   TradesRepo
	SyncRuns SyncRunsRepo
}

// New validates deps and builds the repo set.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}
	if deps.BotTradesModel == nil || deps.SyncRunsModel == nil {
		return nil, errors.New("repo: missing model dependencies")
	}
	return &Set{
		Trades:   newTradesRepo(deps),
		SyncRuns: newSyncRunsRepo(deps),
	}, nil
}
