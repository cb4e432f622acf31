package usecases

import (
	"context"

	"go.uber.org/zap"

	"toll-chain.backend/internal/domain/entities"
	"toll-chain.backend/pkg/logger"
)

// BalanceResolver determines the effective payer balance: a per-user top-up
// wallet balance when one exists and is non-zero, else the main wallet's
// native balance. The result is informational; sufficiency is enforced
// on-chain at submission time, never from this figure.
type BalanceResolver struct {
	gateway Gateway
}

// NewBalanceResolver creates a new balance resolver
func NewBalanceResolver(gateway Gateway) *BalanceResolver {
	return &BalanceResolver{gateway: gateway}
}

// Resolve never returns an error: every lookup failure degrades to the zero
// BalanceInfo with Source=fallback, so callers can distinguish a degraded
// result from a genuinely empty wallet.
func (r *BalanceResolver) Resolve(ctx context.Context, walletAddress string) *entities.BalanceInfo {
	if r.gateway.HasTopUpWallet(ctx, walletAddress) {
		balance, err := r.gateway.TopUpWalletBalance(ctx, walletAddress)
		if err != nil {
			logger.Warn(ctx, "top-up wallet balance lookup failed; falling back to native balance",
				zap.String("wallet", walletAddress), zap.Error(err))
		} else if balance != nil && balance.Sign() > 0 {
			decimals := r.gateway.TokenDecimals()
			return &entities.BalanceInfo{
				Balance:          balance.String(),
				FormattedBalance: formatUnits(balance, decimals),
				Decimals:         decimals,
				Source:           entities.BalanceSourceTopUp,
			}
		}
	}

	native, err := r.gateway.NativeBalance(ctx, walletAddress)
	if err != nil {
		logger.Warn(ctx, "native balance lookup failed; degrading to zero",
			zap.String("wallet", walletAddress), zap.Error(err))
		return entities.ZeroBalance()
	}

	return &entities.BalanceInfo{
		Balance:          native.String(),
		FormattedBalance: formatUnits(native, NativeDecimals),
		Decimals:         NativeDecimals,
		Source:           entities.BalanceSourceNative,
	}
}
