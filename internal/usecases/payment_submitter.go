package usecases

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"toll-chain.backend/internal/domain/entities"
	"toll-chain.backend/pkg/logger"
)

// ReplayGuard registers a proof hash exactly once. A reused hash means a
// blind resubmission, which must fail before broadcast.
type ReplayGuard interface {
	RegisterProofHash(ctx context.Context, proofHash string) (bool, error)
}

// PaymentSubmitter submits a validated toll payment through the direct or
// the top-up-relayed contract path. It is stateless between calls; every
// invocation is an independent attempt.
type PaymentSubmitter struct {
	gateway Gateway
	guard   ReplayGuard
}

// NewPaymentSubmitter creates a new payment submitter. The replay guard may
// be nil, disabling the duplicate-proof check.
func NewPaymentSubmitter(gateway Gateway, guard ReplayGuard) *PaymentSubmitter {
	return &PaymentSubmitter{gateway: gateway, guard: guard}
}

// Submit converts the amount, computes the proof hash, picks the payment
// path, and awaits one confirmation. Every failure becomes a
// TransactionResult with Success=false; no error escapes to the caller.
func (s *PaymentSubmitter) Submit(ctx context.Context, payload *entities.QRPayload, amount string, submitterAddress string) *entities.TransactionResult {
	units, err := convertToSmallestUnit(amount, s.gateway.TokenDecimals())
	if err != nil {
		return &entities.TransactionResult{Success: false, Error: fmt.Sprintf("invalid amount: %v", err)}
	}

	proofHash := ComputeProofHash(payload, amount)

	if s.guard != nil {
		fresh, guardErr := s.guard.RegisterProofHash(ctx, "0x"+hex.EncodeToString(proofHash[:]))
		if guardErr != nil {
			logger.Warn(ctx, "replay guard unavailable; proceeding without duplicate check", zap.Error(guardErr))
		} else if !fresh {
			return &entities.TransactionResult{
				Success: false,
				Error:   "Duplicate payment attempt: this proof hash was already submitted. Generate a fresh nonce.",
			}
		}
	}

	vehicleID := payload.EffectiveVehicleID()
	useTopUp := s.gateway.HasTopUpWallet(ctx, payload.WalletAddress)

	logger.Info(ctx, "submitting toll payment",
		zap.String("vehicle_id", vehicleID),
		zap.String("wallet", payload.WalletAddress),
		zap.String("amount", amount),
		zap.Bool("top_up_path", useTopUp),
		zap.String("submitter", submitterAddress),
	)

	var (
		receipt *types.Receipt
		txHash  string
		subErr  error
	)
	if useTopUp {
		receipt, txHash, subErr = s.gateway.ProcessTollPaymentFromTopUpWallet(ctx, payload.WalletAddress, vehicleID, units, proofHash)
	} else {
		receipt, txHash, subErr = s.gateway.ProcessTollPayment(ctx, payload.WalletAddress, vehicleID, units, proofHash)
	}

	if subErr != nil {
		logger.Error(ctx, "toll payment submission failed",
			zap.String("vehicle_id", vehicleID), zap.Error(subErr))
		return &entities.TransactionResult{Success: false, Error: translateChainError(subErr)}
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return &entities.TransactionResult{Success: false, TransactionHash: txHash, Error: msgGenericSubmission}
	}

	return &entities.TransactionResult{
		Success:         true,
		TransactionHash: txHash,
		GasUsed:         receipt.GasUsed,
	}
}

// ComputeProofHash hashes the canonical JSON of the payment intent. A missing
// nonce is replaced with a fresh UUID so two otherwise-identical submissions
// still produce distinct hashes.
func ComputeProofHash(payload *entities.QRPayload, amount string) [32]byte {
	nonce := payload.Nonce
	if nonce == "" {
		nonce = uuid.New().String()
	}
	msg := fmt.Sprintf(
		`{"walletAddress":"%s","vehicleId":"%s","timestamp":%d,"amount":"%s","nonce":"%s"}`,
		payload.WalletAddress,
		payload.EffectiveVehicleID(),
		payload.Timestamp,
		amount,
		nonce,
	)
	var out [32]byte
	copy(out[:], crypto.Keccak256([]byte(msg)))
	return out
}
