package redis

import (
	"context"
	"time"
)

var (
	setNXGuardValue = SetNX
	getGuardValue   = Get
)

// GuardStore provides the two single-key guards the toll pipeline needs:
// a proof-hash replay guard for payment submissions and a per-vehicle scan
// cooldown for toll-plaza hardware.
type GuardStore struct {
	proofTTL    time.Duration
	cooldownTTL time.Duration
}

// NewGuardStore creates a guard store. Proof hashes are held for proofTTL
// (long enough to outlive any QR validity window); scan cooldowns for
// cooldownTTL.
func NewGuardStore(proofTTL, cooldownTTL time.Duration) *GuardStore {
	if proofTTL <= 0 {
		proofTTL = 24 * time.Hour
	}
	if cooldownTTL <= 0 {
		cooldownTTL = 5 * time.Second
	}
	return &GuardStore{proofTTL: proofTTL, cooldownTTL: cooldownTTL}
}

// RegisterProofHash registers a proof hash exactly once. It returns true when
// the hash was fresh, false when it was already registered (a replay).
func (s *GuardStore) RegisterProofHash(ctx context.Context, proofHash string) (bool, error) {
	return setNXGuardValue(ctx, "proof:"+proofHash, "1", s.proofTTL)
}

// AcquireScanSlot enforces the per-vehicle scan cooldown. It returns true
// when the vehicle may be processed, false while the cooldown is active.
func (s *GuardStore) AcquireScanSlot(ctx context.Context, vehicleID string) (bool, error) {
	return setNXGuardValue(ctx, "scan:"+vehicleID, "1", s.cooldownTTL)
}

// SeenProofHash reports whether a proof hash has been registered, without
// registering it.
func (s *GuardStore) SeenProofHash(ctx context.Context, proofHash string) bool {
	_, err := getGuardValue(ctx, "proof:"+proofHash)
	return err == nil
}
