package returns

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vendora/backend/internal/domain/returns"
)

// Reconciler periodically retries refunds for requests stuck in
// REFUND_PENDING, so a transient processor outage heals without an operator
// having to hit the retry endpoint.
type Reconciler struct {
	service  *Service
	repo     returns.Repository
	interval time.Duration
	logger   *zap.Logger
}

// NewReconciler creates a new refund reconciler
func NewReconciler(service *Service, repo returns.Repository, interval time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		service:  service,
		repo:     repo,
		interval: interval,
		logger:   logger,
	}
}

// Run executes reconciliation on the configured interval until the context
// is cancelled
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("refund reconciler started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refund reconciler stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	pending, err := r.repo.FindByStatus(ctx, returns.StatusRefundPending)
	if err != nil {
		r.logger.Error("failed to list refund pending requests", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	r.logger.Info("retrying pending refunds", zap.Int("count", len(pending)))

	for _, rr := range pending {
		if _, err := r.service.RetryRefund(ctx, rr.ID); err != nil {
			r.logger.Warn("refund retry failed",
				zap.String("request_id", rr.ID.String()),
				zap.Error(err))
			continue
		}
		r.logger.Info("refund recovered", zap.String("request_id", rr.ID.String()))
	}
}
