package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"toll-chain.backend/internal/domain/entities"
)

// TollTransactionRepository persists toll-event records.
type TollTransactionRepository interface {
	Create(ctx context.Context, tx *entities.TollTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TollTransaction, error)
	GetByProofHash(ctx context.Context, proofHash string) (*entities.TollTransaction, error)
	List(ctx context.Context, limit, offset int) ([]*entities.TollTransaction, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TollTransactionStatus, txHash, gasUsed string) error
	GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.TollTransaction, error)
	ExpireTransactions(ctx context.Context, ids []uuid.UUID) error
}
