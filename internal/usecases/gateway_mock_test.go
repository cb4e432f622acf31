package usecases

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	"toll-chain.backend/internal/domain/entities"
)

// mockGateway is the shared Gateway double for pipeline tests. Unset fields
// behave like a fully degraded gateway.
type mockGateway struct {
	vehicles map[string]*entities.VehicleRegistration
	rates    map[string]*entities.TollRate

	hasTopUp      bool
	topUpBalance  *big.Int
	topUpErr      error
	tokenBalance  *big.Int
	tokenErr      error
	decimals      int
	nativeBalance *big.Int
	nativeErr     error

	receipt   *types.Receipt
	txHash    string
	submitErr error

	directCalls int
	topUpCalls  int
	lastAmount  *big.Int
	lastProof   [32]byte
}

func (m *mockGateway) GetVehicle(_ context.Context, vehicleID string) *entities.VehicleRegistration {
	if reg, ok := m.vehicles[vehicleID]; ok {
		return reg
	}
	return &entities.VehicleRegistration{}
}

func (m *mockGateway) TollRate(_ context.Context, vehicleType string) *entities.TollRate {
	if rate, ok := m.rates[vehicleType]; ok {
		return rate
	}
	return &entities.TollRate{VehicleType: vehicleType, Amount: DefaultFallbackTollRate, Source: entities.RateSourceFallback}
}

func (m *mockGateway) HasTopUpWallet(_ context.Context, _ string) bool { return m.hasTopUp }

func (m *mockGateway) TopUpWalletBalance(_ context.Context, _ string) (*big.Int, error) {
	return m.topUpBalance, m.topUpErr
}

func (m *mockGateway) TokenBalance(_ context.Context, _ string) (*big.Int, error) {
	return m.tokenBalance, m.tokenErr
}

func (m *mockGateway) TokenDecimals() int {
	if m.decimals == 0 {
		return NativeDecimals
	}
	return m.decimals
}

func (m *mockGateway) NativeBalance(_ context.Context, _ string) (*big.Int, error) {
	if m.nativeErr != nil {
		return nil, m.nativeErr
	}
	if m.nativeBalance == nil {
		return nil, errors.New("native balance not configured")
	}
	return m.nativeBalance, nil
}

func (m *mockGateway) ProcessTollPayment(_ context.Context, _, _ string, amount *big.Int, proofHash [32]byte) (*types.Receipt, string, error) {
	m.directCalls++
	m.lastAmount = amount
	m.lastProof = proofHash
	return m.receipt, m.txHash, m.submitErr
}

func (m *mockGateway) ProcessTollPaymentFromTopUpWallet(_ context.Context, _, _ string, amount *big.Int, proofHash [32]byte) (*types.Receipt, string, error) {
	m.topUpCalls++
	m.lastAmount = amount
	m.lastProof = proofHash
	return m.receipt, m.txHash, m.submitErr
}
