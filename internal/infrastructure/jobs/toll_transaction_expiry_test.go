package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"toll-chain.backend/internal/domain/entities"
)

type stalePendingStoreStub struct {
	stale      []*entities.TollTransaction
	getErr     error
	expireErr  error
	expireCall int
	lastIDs    []uuid.UUID
}

func (s *stalePendingStoreStub) GetStalePending(_ context.Context, _ time.Time, _ int) ([]*entities.TollTransaction, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.stale, nil
}

func (s *stalePendingStoreStub) ExpireTransactions(_ context.Context, ids []uuid.UUID) error {
	s.expireCall++
	s.lastIDs = ids
	return s.expireErr
}

func newStubJob(repo stalePendingStore) *TollTransactionExpiryJob {
	return &TollTransactionExpiryJob{
		repo:          repo,
		interval:      time.Millisecond,
		maxPendingAge: time.Minute,
		stop:          make(chan struct{}),
	}
}

func TestExpireStale_NoItems(t *testing.T) {
	repo := &stalePendingStoreStub{}
	newStubJob(repo).expireStale(context.Background())
	require.Equal(t, 0, repo.expireCall)
}

func TestExpireStale_Success(t *testing.T) {
	id1 := uuid.New()
	id2 := uuid.New()
	repo := &stalePendingStoreStub{stale: []*entities.TollTransaction{{ID: id1}, {ID: id2}}}
	newStubJob(repo).expireStale(context.Background())
	require.Equal(t, 1, repo.expireCall)
	require.ElementsMatch(t, []uuid.UUID{id1, id2}, repo.lastIDs)
}

func TestExpireStale_GetError(t *testing.T) {
	repo := &stalePendingStoreStub{getErr: errors.New("db down")}
	newStubJob(repo).expireStale(context.Background())
	require.Equal(t, 0, repo.expireCall)
}

func TestExpireStale_ExpireError(t *testing.T) {
	id := uuid.New()
	repo := &stalePendingStoreStub{stale: []*entities.TollTransaction{{ID: id}}, expireErr: errors.New("update failed")}
	newStubJob(repo).expireStale(context.Background())
	require.Equal(t, 1, repo.expireCall)
	require.Equal(t, []uuid.UUID{id}, repo.lastIDs)
}

func TestExpiryJob_StopsByContext(t *testing.T) {
	job := newStubJob(&stalePendingStoreStub{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on context cancel")
	}
}

func TestExpiryJob_StopsByStopChannel(t *testing.T) {
	job := newStubJob(&stalePendingStoreStub{})
	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	job.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on Stop()")
	}
}
