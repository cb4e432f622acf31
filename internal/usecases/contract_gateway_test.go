package usecases

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/require"

	"toll-chain.backend/internal/config"
	"toll-chain.backend/internal/domain/entities"
	"toll-chain.backend/internal/infrastructure/blockchain"
)

const (
	tollAddr    = "0x0000000000000000000000000000000000000A01"
	tokenAddr   = "0x0000000000000000000000000000000000000A02"
	factoryAddr = "0x0000000000000000000000000000000000000A03"
	walletAddr  = "0x0000000000000000000000000000000000000A04"
)

func gatewayConfig() config.BlockchainConfig {
	return config.BlockchainConfig{
		RPCURL:              "http://localhost:8545",
		ChainID:             31337,
		TollContractAddress: tollAddr,
		StableTokenAddress:  tokenAddr,
		TopUpFactoryAddress: factoryAddr,
		OperatorPrivateKey:  "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		GasLimit:            500000,
	}
}

func packOutputs(t *testing.T, contractABI abi.ABI, method string, vals ...interface{}) []byte {
	t.Helper()
	out, err := contractABI.Methods[method].Outputs.Pack(vals...)
	require.NoError(t, err)
	return out
}

func methodID(contractABI abi.ABI, method string) []byte {
	return contractABI.Methods[method].ID
}

// fakeChain answers view calls the way the three deployed contracts would.
type fakeChain struct {
	t           *testing.T
	owner       common.Address
	active      bool
	blacklisted bool
	rate        *big.Int
	decimals    uint8
	hasWallet   bool
	balance     *big.Int
}

func (f *fakeChain) callView(_ context.Context, to string, data []byte) ([]byte, error) {
	sel := data[:4]
	switch common.HexToAddress(to) {
	case common.HexToAddress(tollAddr):
		if bytes.Equal(sel, methodID(TollCollectionABI, "getVehicle")) {
			return packOutputs(f.t, TollCollectionABI, "getVehicle",
				f.owner, f.active, f.blacklisted, big.NewInt(1700000000), big.NewInt(0)), nil
		}
		if bytes.Equal(sel, methodID(TollCollectionABI, "getTollRate")) {
			return packOutputs(f.t, TollCollectionABI, "getTollRate", f.rate), nil
		}
	case common.HexToAddress(tokenAddr):
		if bytes.Equal(sel, methodID(StableTokenABI, "decimals")) {
			return packOutputs(f.t, StableTokenABI, "decimals", f.decimals), nil
		}
		if bytes.Equal(sel, methodID(StableTokenABI, "balanceOf")) {
			return packOutputs(f.t, StableTokenABI, "balanceOf", f.balance), nil
		}
	case common.HexToAddress(factoryAddr):
		if bytes.Equal(sel, methodID(TopUpFactoryABI, "walletCount")) {
			return packOutputs(f.t, TopUpFactoryABI, "walletCount", big.NewInt(1)), nil
		}
		if bytes.Equal(sel, methodID(TopUpFactoryABI, "hasTopUpWallet")) {
			return packOutputs(f.t, TopUpFactoryABI, "hasTopUpWallet", f.hasWallet), nil
		}
		if bytes.Equal(sel, methodID(TopUpFactoryABI, "getTopUpWallet")) {
			wallet := common.Address{}
			if f.hasWallet {
				wallet = common.HexToAddress(walletAddr)
			}
			return packOutputs(f.t, TopUpFactoryABI, "getTopUpWallet", wallet), nil
		}
	case common.HexToAddress(walletAddr):
		if bytes.Equal(sel, methodID(TopUpWalletABI, "getBalance")) {
			return packOutputs(f.t, TopUpWalletABI, "getBalance", f.balance), nil
		}
	}
	return nil, errors.New("unexpected call")
}

func newFakeGateway(t *testing.T, chain *fakeChain) *ContractGateway {
	t.Helper()
	client := blockchain.NewEVMClientWithHooks(big.NewInt(31337), chain.callView, func(_ context.Context, _ string) (*big.Int, error) {
		return big.NewInt(7e17), nil
	})
	g := NewContractGateway(client, gatewayConfig())
	g.retry = fastPolicy()
	return g
}

func defaultFakeChain(t *testing.T) *fakeChain {
	return &fakeChain{
		t:        t,
		owner:    common.HexToAddress(testWallet),
		active:   true,
		rate:     big.NewInt(2_000_000),
		decimals: 6,
		balance:  big.NewInt(9_000_000),
	}
}

func TestContractGateway_ProbeEnablesAllContracts(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))
	require.True(t, g.caps.tollCollection)
	require.True(t, g.caps.stableToken)
	require.True(t, g.caps.topUpFactory)
	require.Equal(t, 6, g.TokenDecimals())
}

func TestContractGateway_PlaceholderAddressesDisableContracts(t *testing.T) {
	cfg := gatewayConfig()
	cfg.TollContractAddress = ""
	cfg.StableTokenAddress = "0x0000000000000000000000000000000000000000"
	cfg.TopUpFactoryAddress = "deploy-me"

	client := blockchain.NewEVMClientWithHooks(big.NewInt(31337), nil, nil)
	g := NewContractGateway(client, cfg)

	require.False(t, g.caps.tollCollection)
	require.False(t, g.caps.stableToken)
	require.False(t, g.caps.topUpFactory)
	require.Equal(t, NativeDecimals, g.TokenDecimals())
}

func TestContractGateway_GetVehicle(t *testing.T) {
	chain := defaultFakeChain(t)
	g := newFakeGateway(t, chain)

	reg := g.GetVehicle(context.Background(), testVehicleID)
	require.True(t, reg.IsRegistered)
	require.False(t, reg.IsBlacklisted)
	require.Equal(t, common.HexToAddress(testWallet).Hex(), reg.Owner)
	require.EqualValues(t, 1700000000, reg.RegistrationTime)
}

func TestContractGateway_GetVehicle_InactiveIsUnregistered(t *testing.T) {
	chain := defaultFakeChain(t)
	chain.active = false
	g := newFakeGateway(t, chain)

	reg := g.GetVehicle(context.Background(), testVehicleID)
	require.False(t, reg.IsRegistered)
}

func TestContractGateway_GetVehicle_ZeroOwnerIsUnregistered(t *testing.T) {
	chain := defaultFakeChain(t)
	chain.owner = common.Address{}
	g := newFakeGateway(t, chain)

	reg := g.GetVehicle(context.Background(), testVehicleID)
	require.False(t, reg.IsRegistered)
}

func TestContractGateway_TollRate_FromContract(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))

	rate := g.TollRate(context.Background(), "Car")
	require.Equal(t, entities.RateSourceContract, rate.Source)
	require.Equal(t, "car", rate.VehicleType)
	require.Equal(t, "2.00", rate.Amount)
}

func TestContractGateway_TollRate_FallbackTable(t *testing.T) {
	client := blockchain.NewEVMClientWithHooks(big.NewInt(31337), nil, nil)
	g := NewContractGateway(client, config.BlockchainConfig{ChainID: 31337})

	cases := map[string]string{
		"2-wheeler": "1.00",
		"3-wheeler": "1.50",
		"car":       "2.00",
		"bus":       "4.00",
		"truck":     "5.00",
		"hovercar":  "2.00",
	}
	for vehicleType, want := range cases {
		rate := g.TollRate(context.Background(), vehicleType)
		require.Equal(t, entities.RateSourceFallback, rate.Source, vehicleType)
		require.Equal(t, want, rate.Amount, vehicleType)
	}
}

func TestContractGateway_TollRate_ZeroContractRateFallsBack(t *testing.T) {
	chain := defaultFakeChain(t)
	chain.rate = big.NewInt(0)
	g := newFakeGateway(t, chain)

	rate := g.TollRate(context.Background(), "truck")
	require.Equal(t, entities.RateSourceFallback, rate.Source)
	require.Equal(t, "5.00", rate.Amount)
}

func TestContractGateway_TopUpWallet(t *testing.T) {
	chain := defaultFakeChain(t)
	chain.hasWallet = true
	g := newFakeGateway(t, chain)

	require.True(t, g.HasTopUpWallet(context.Background(), testWallet))

	balance, err := g.TopUpWalletBalance(context.Background(), testWallet)
	require.NoError(t, err)
	require.Equal(t, "9000000", balance.String())
}

func TestContractGateway_TopUpWallet_NoneDeployed(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))

	require.False(t, g.HasTopUpWallet(context.Background(), testWallet))
	_, err := g.TopUpWalletBalance(context.Background(), testWallet)
	require.Error(t, err)
}

func TestContractGateway_TokenBalance(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))

	balance, err := g.TokenBalance(context.Background(), testWallet)
	require.NoError(t, err)
	require.Equal(t, "9000000", balance.String())
}

func TestContractGateway_NativeBalance(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))

	balance, err := g.NativeBalance(context.Background(), testWallet)
	require.NoError(t, err)
	require.Equal(t, "700000000000000000", balance.String())
}

func withTransactHooks(t *testing.T, transact func() (*types.Transaction, error), mined func() (*types.Receipt, error)) {
	t.Helper()
	origTransact := transactContract
	origWaitMined := waitMined
	t.Cleanup(func() {
		transactContract = origTransact
		waitMined = origWaitMined
	})

	transactContract = func(_ context.Context, _ *ethclient.Client, _ *big.Int, _, _ string, _ abi.ABI, _ uint64, _ string, _ ...interface{}) (*types.Transaction, error) {
		return transact()
	}
	waitMined = func(_ context.Context, _ *ethclient.Client, _ *types.Transaction) (*types.Receipt, error) {
		return mined()
	}
}

func dummyTx() *types.Transaction {
	to := common.HexToAddress(tollAddr)
	return types.NewTx(&types.LegacyTx{Nonce: 1, To: &to, Gas: 21000, GasPrice: big.NewInt(1), Value: big.NewInt(0)})
}

func TestContractGateway_ProcessTollPayment(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))
	tx := dummyTx()
	withTransactHooks(t,
		func() (*types.Transaction, error) { return tx, nil },
		func() (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 50_000}, nil
		},
	)

	receipt, hash, err := g.ProcessTollPayment(context.Background(), testWallet, testVehicleID, big.NewInt(2_000_000), [32]byte{1})
	require.NoError(t, err)
	require.Equal(t, tx.Hash().Hex(), hash)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
}

func TestContractGateway_ProcessTollPayment_BroadcastError(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))
	withTransactHooks(t,
		func() (*types.Transaction, error) { return nil, errors.New("insufficient funds") },
		func() (*types.Receipt, error) { return nil, nil },
	)

	_, _, err := g.ProcessTollPayment(context.Background(), testWallet, testVehicleID, big.NewInt(1), [32]byte{1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient funds")
}

func TestContractGateway_ProcessTollPayment_MiningError(t *testing.T) {
	g := newFakeGateway(t, defaultFakeChain(t))
	tx := dummyTx()
	withTransactHooks(t,
		func() (*types.Transaction, error) { return tx, nil },
		func() (*types.Receipt, error) { return nil, errors.New("context deadline exceeded") },
	)

	_, hash, err := g.ProcessTollPayment(context.Background(), testWallet, testVehicleID, big.NewInt(1), [32]byte{1})
	require.Error(t, err)
	require.Equal(t, tx.Hash().Hex(), hash)
}

func TestContractGateway_ProcessTollPayment_RequiresOperatorKey(t *testing.T) {
	cfg := gatewayConfig()
	cfg.OperatorPrivateKey = ""
	chain := defaultFakeChain(t)
	client := blockchain.NewEVMClientWithHooks(big.NewInt(31337), chain.callView, nil)
	g := NewContractGateway(client, cfg)

	_, _, err := g.ProcessTollPayment(context.Background(), testWallet, testVehicleID, big.NewInt(1), [32]byte{1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "operator private key")
}

func TestContractGateway_ProcessTollPayment_DisabledContract(t *testing.T) {
	client := blockchain.NewEVMClientWithHooks(big.NewInt(31337), nil, nil)
	g := NewContractGateway(client, config.BlockchainConfig{ChainID: 31337})

	_, _, err := g.ProcessTollPayment(context.Background(), testWallet, testVehicleID, big.NewInt(1), [32]byte{1})
	require.Error(t, err)

	_, _, err = g.ProcessTollPaymentFromTopUpWallet(context.Background(), testWallet, testVehicleID, big.NewInt(1), [32]byte{1})
	require.Error(t, err)
}
