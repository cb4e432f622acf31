package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"toll-chain.backend/internal/domain/entities"
	domainerrors "toll-chain.backend/internal/domain/errors"
	"toll-chain.backend/internal/infrastructure/models"
)

// TollTransactionRepository implements toll-event persistence on gorm.
type TollTransactionRepository struct {
	db *gorm.DB
}

// NewTollTransactionRepository creates a new toll transaction repository
func NewTollTransactionRepository(db *gorm.DB) *TollTransactionRepository {
	return &TollTransactionRepository{db: db}
}

// Create records a new toll event.
func (r *TollTransactionRepository) Create(ctx context.Context, tx *entities.TollTransaction) error {
	m := r.toModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	// The DB may assign the ID; keep the entity in sync for later updates.
	tx.ID = m.ID
	tx.CreatedAt = m.CreatedAt
	tx.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a toll transaction by ID.
func (r *TollTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TollTransaction, error) {
	var m models.TollTransaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByProofHash gets a toll transaction by its proof hash.
func (r *TollTransactionRepository) GetByProofHash(ctx context.Context, proofHash string) (*entities.TollTransaction, error) {
	var m models.TollTransaction
	if err := r.db.WithContext(ctx).Where("proof_hash = ?", proofHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List returns toll transactions newest first, with the total count.
func (r *TollTransactionRepository) List(ctx context.Context, limit, offset int) ([]*entities.TollTransaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.TollTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.TollTransaction
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]*entities.TollTransaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, r.toEntity(&ms[i]))
	}
	return txs, total, nil
}

// UpdateStatus settles a pending record. Empty txHash/gasUsed leave the
// columns untouched.
func (r *TollTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TollTransactionStatus, txHash, gasUsed string) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if txHash != "" {
		updates["transaction_hash"] = txHash
	}
	if gasUsed != "" {
		updates["gas_used"] = gasUsed
	}

	result := r.db.WithContext(ctx).Model(&models.TollTransaction{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// GetStalePending returns pending records created before olderThan.
func (r *TollTransactionRepository) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.TollTransaction, error) {
	var ms []models.TollTransaction
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(entities.TollTransactionStatusPending), olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	txs := make([]*entities.TollTransaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, r.toEntity(&ms[i]))
	}
	return txs, nil
}

// ExpireTransactions marks the given pending records as expired.
func (r *TollTransactionRepository) ExpireTransactions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.TollTransaction{}).
		Where("id IN ? AND status = ?", ids, string(entities.TollTransactionStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.TollTransactionStatusExpired),
			"updated_at": time.Now(),
		}).Error
}

func (r *TollTransactionRepository) toModel(tx *entities.TollTransaction) *models.TollTransaction {
	return &models.TollTransaction{
		ID:              tx.ID,
		VehicleID:       tx.VehicleID,
		VehicleType:     tx.VehicleType,
		WalletAddress:   tx.WalletAddress,
		OperatorAddress: tx.OperatorAddress,
		PlazaID:         tx.PlazaID,
		Amount:          tx.Amount,
		ProofHash:       tx.ProofHash,
		TransactionHash: tx.TransactionHash.Ptr(),
		GasUsed:         tx.GasUsed.Ptr(),
		Notes:           tx.Notes.Ptr(),
		Status:          string(tx.Status),
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

func (r *TollTransactionRepository) toEntity(m *models.TollTransaction) *entities.TollTransaction {
	return &entities.TollTransaction{
		ID:              m.ID,
		VehicleID:       m.VehicleID,
		VehicleType:     m.VehicleType,
		WalletAddress:   m.WalletAddress,
		OperatorAddress: m.OperatorAddress,
		PlazaID:         m.PlazaID,
		Amount:          m.Amount,
		ProofHash:       m.ProofHash,
		TransactionHash: null.StringFromPtr(m.TransactionHash),
		GasUsed:         null.StringFromPtr(m.GasUsed),
		Notes:           null.StringFromPtr(m.Notes),
		Status:          entities.TollTransactionStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
