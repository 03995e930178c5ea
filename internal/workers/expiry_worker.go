package workers

import (
	"context"

	"memberhub_backend/internal/logger"

	"gorm.io/gorm"
)

// OpportunityCloser closes opportunities whose expires_at has passed.
type OpportunityCloser interface {
	CloseExpired(ctx context.Context, db *gorm.DB) (int64, error)
}

// ExpiryWorker closes expired opportunities.
type ExpiryWorker struct {
	db          *gorm.DB
	opportunity OpportunityCloser
}

func NewExpiryWorker(db *gorm.DB, opportunity OpportunityCloser) *ExpiryWorker {
	return &ExpiryWorker{db: db, opportunity: opportunity}
}

func (w *ExpiryWorker) Name() string { return "opportunity_expiry" }

func (w *ExpiryWorker) Run(ctx context.Context) error {
	closed, err := w.opportunity.CloseExpired(ctx, w.db.WithContext(ctx))
	if err != nil {
		return err
	}
	if closed > 0 {
		logger.Info("Closed expired opportunities", "count", closed)
	}
	return nil
}
