package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	domainerrors "toll-chain.backend/internal/domain/errors"

	"toll-chain.backend/internal/domain/entities"
)

func TestTollTransactionRepository_FullFlow(t *testing.T) {
	db := newTestDB(t)
	createTollTransactionTable(t, db)
	repo := NewTollTransactionRepository(db)
	ctx := context.Background()

	id := uuid.New()
	err := repo.Create(ctx, &entities.TollTransaction{
		ID:              id,
		VehicleID:       "KA01AB1234",
		VehicleType:     "car",
		WalletAddress:   "0x1111111111111111111111111111111111111111",
		OperatorAddress: "0x2222222222222222222222222222222222222222",
		PlazaID:         "plaza-7",
		Amount:          "2.00",
		ProofHash:       "0xdeadbeef",
		Status:          entities.TollTransactionStatusPending,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "KA01AB1234", got.VehicleID)
	require.Equal(t, entities.TollTransactionStatusPending, got.Status)
	require.False(t, got.TransactionHash.Valid)

	byProof, err := repo.GetByProofHash(ctx, "0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, id, byProof.ID)

	items, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	require.NoError(t, repo.UpdateStatus(ctx, id, entities.TollTransactionStatusCompleted, "0xtxhash", "41234"))
	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, entities.TollTransactionStatusCompleted, got.Status)
	require.Equal(t, "0xtxhash", got.TransactionHash.String)
	require.Equal(t, "41234", got.GasUsed.String)
}

func TestTollTransactionRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	createTollTransactionTable(t, db)
	repo := NewTollTransactionRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByProofHash(ctx, "0xmissing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = repo.UpdateStatus(ctx, uuid.New(), entities.TollTransactionStatusFailed, "", "")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTollTransactionRepository_StalePendingAndExpire(t *testing.T) {
	db := newTestDB(t)
	createTollTransactionTable(t, db)
	repo := NewTollTransactionRepository(db)
	ctx := context.Background()

	stale := uuid.New()
	mustExec(t, db, `INSERT INTO toll_transactions(
		id,vehicle_id,vehicle_type,wallet_address,operator_address,plaza_id,amount,proof_hash,status,created_at,updated_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		stale.String(), "MH12CD5678", "truck", "0xw", "0xo", "", "5.00", "0xstale",
		string(entities.TollTransactionStatusPending), time.Now().Add(-2*time.Hour), time.Now().Add(-2*time.Hour))

	fresh := uuid.New()
	require.NoError(t, repo.Create(ctx, &entities.TollTransaction{
		ID: fresh, VehicleID: "DL03EF9012", VehicleType: "car",
		WalletAddress: "0xw2", Amount: "2.00", ProofHash: "0xfresh",
		Status: entities.TollTransactionStatusPending,
	}))

	old, err := repo.GetStalePending(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, old, 1)
	require.Equal(t, stale, old[0].ID)

	require.NoError(t, repo.ExpireTransactions(ctx, []uuid.UUID{stale}))
	require.NoError(t, repo.ExpireTransactions(ctx, nil))

	got, err := repo.GetByID(ctx, stale)
	require.NoError(t, err)
	require.Equal(t, entities.TollTransactionStatusExpired, got.Status)

	got, err = repo.GetByID(ctx, fresh)
	require.NoError(t, err)
	require.Equal(t, entities.TollTransactionStatusPending, got.Status)
}
