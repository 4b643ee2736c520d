package repo

import (
	"context"

	"github.com/incepthink/aggtrade-backend-sub003/internal/model"
)

// TradesRepo reads the bot trade journal.
type TradesRepo interface {
	Record(ctx context.Context, trade *model.BotTrades) error
	RecentByBot(ctx context.Context, botId string, limit int) ([]model.BotTrades, error)
}

type tradesRepo struct {
	deps Dependencies
}

func newTradesRepo(deps Dependencies) TradesRepo {
	return &tradesRepo{deps: deps}
}

func (r *tradesRepo) Record(ctx context.Context, trade *model.BotTrades) error {
	_, err := r.deps.BotTradesModel.Insert(ctx, trade)
	return err
}

func (r *tradesRepo) RecentByBot(ctx context.Context, botId string, limit int) ([]model.BotTrades, error) {
	return r.deps.BotTradesModel.RecentByBot(ctx, botId, limit)
}
