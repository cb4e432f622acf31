package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"toll-chain.backend/internal/domain/entities"
	"toll-chain.backend/pkg/logger"
)

// stalePendingStore is the slice of the transaction repository the job needs.
type stalePendingStore interface {
	GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.TollTransaction, error)
	ExpireTransactions(ctx context.Context, ids []uuid.UUID) error
}

// TollTransactionExpiryJob reaps toll records stuck in pending. A record
// stays pending only when the process died between broadcast and settlement,
// so anything older than maxPendingAge is expired rather than retried.
type TollTransactionExpiryJob struct {
	repo          stalePendingStore
	interval      time.Duration
	maxPendingAge time.Duration
	stop          chan struct{}
}

func NewTollTransactionExpiryJob(repo stalePendingStore) *TollTransactionExpiryJob {
	return &TollTransactionExpiryJob{
		repo:          repo,
		interval:      30 * time.Second,
		maxPendingAge: 10 * time.Minute,
		stop:          make(chan struct{}),
	}
}

func (j *TollTransactionExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting toll transaction expiry job",
		zap.Duration("interval", j.interval),
		zap.Duration("max_pending_age", j.maxPendingAge))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "toll transaction expiry job stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "toll transaction expiry job stopped")
			return
		case <-ticker.C:
			j.expireStale(ctx)
		}
	}
}

func (j *TollTransactionExpiryJob) Stop() {
	close(j.stop)
}

func (j *TollTransactionExpiryJob) expireStale(ctx context.Context) {
	stale, err := j.repo.GetStalePending(ctx, time.Now().Add(-j.maxPendingAge), 100)
	if err != nil {
		logger.Error(ctx, "failed to fetch stale pending toll transactions", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(stale))
	for _, tx := range stale {
		ids = append(ids, tx.ID)
	}
	if err := j.repo.ExpireTransactions(ctx, ids); err != nil {
		logger.Error(ctx, "failed to expire stale toll transactions", zap.Error(err))
		return
	}
	logger.Info(ctx, "expired stale pending toll transactions", zap.Int("count", len(ids)))
}
