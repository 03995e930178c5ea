package workers

import (
	"context"

	"memberhub_backend/internal/logger"

	"gorm.io/gorm"
)

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, db *gorm.DB) (int64, error)
}

// TokenCleanupWorker deletes expired refresh tokens.
type TokenCleanupWorker struct {
	db     *gorm.DB
	tokens TokenPurger
}

func NewTokenCleanupWorker(db *gorm.DB, tokens TokenPurger) *TokenCleanupWorker {
	return &TokenCleanupWorker{db: db, tokens: tokens}
}

func (w *TokenCleanupWorker) Name() string { return "token_cleanup" }

func (w *TokenCleanupWorker) Run(ctx context.Context) error {
	purged, err := w.tokens.PurgeExpiredTokens(ctx, w.db.WithContext(ctx))
	if err != nil {
		return err
	}
	if purged > 0 {
		logger.Info("Purged expired refresh tokens", "count", purged)
	}
	return nil
}
