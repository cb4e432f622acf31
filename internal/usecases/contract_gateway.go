package usecases

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"toll-chain.backend/internal/config"
	"toll-chain.backend/internal/domain/entities"
	"toll-chain.backend/internal/infrastructure/blockchain"
	"toll-chain.backend/pkg/logger"
)

// Gateway is the pipeline's view of the on-chain toll system. Reads degrade
// to documented fallbacks; writes surface errors for the submitter to
// translate.
type Gateway interface {
	GetVehicle(ctx context.Context, vehicleID string) *entities.VehicleRegistration
	TollRate(ctx context.Context, vehicleType string) *entities.TollRate
	HasTopUpWallet(ctx context.Context, owner string) bool
	TopUpWalletBalance(ctx context.Context, owner string) (*big.Int, error)
	TokenBalance(ctx context.Context, owner string) (*big.Int, error)
	TokenDecimals() int
	NativeBalance(ctx context.Context, owner string) (*big.Int, error)
	ProcessTollPayment(ctx context.Context, vehicleOwner, vehicleID string, amount *big.Int, proofHash [32]byte) (*types.Receipt, string, error)
	ProcessTollPaymentFromTopUpWallet(ctx context.Context, user, vehicleID string, amount *big.Int, proofHash [32]byte) (*types.Receipt, string, error)
}

// Injectable seams for deterministic unit tests without RPC sockets.
var (
	transactContract = func(
		ctx context.Context,
		client *ethclient.Client,
		chainID *big.Int,
		privateKeyHex, contractAddress string,
		parsedABI abi.ABI,
		gasLimit uint64,
		method string,
		args ...interface{},
	) (*types.Transaction, error) {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid operator private key")
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return nil, err
		}
		auth.Context = ctx
		auth.GasLimit = gasLimit

		contract := bind.NewBoundContract(common.HexToAddress(contractAddress), parsedABI, client, client, client)
		return contract.Transact(auth, method, args...)
	}
	waitMined = func(ctx context.Context, client *ethclient.Client, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, client, tx)
	}
)

// gatewayCapabilities caches the one-time liveness probe results. A disabled
// contract keeps the rest of the gateway functional.
type gatewayCapabilities struct {
	tollCollection bool
	stableToken    bool
	topUpFactory   bool
}

// ContractGateway exposes typed calls against the toll-collection contract,
// the stable-token contract, and the top-up-wallet factory.
type ContractGateway struct {
	client        *blockchain.EVMClient
	cfg           config.BlockchainConfig
	caps          gatewayCapabilities
	tokenDecimals int
	retry         RetryPolicy
}

// NewContractGateway constructs the gateway and probes each configured
// contract once. A failed probe, or a zero/placeholder address, disables that
// specific contract without aborting construction of the others.
func NewContractGateway(client *blockchain.EVMClient, cfg config.BlockchainConfig) *ContractGateway {
	g := &ContractGateway{
		client:        client,
		cfg:           cfg,
		tokenDecimals: NativeDecimals,
		retry:         DefaultRetryPolicy(),
	}
	g.probe(context.Background())
	return g
}

func (g *ContractGateway) probe(ctx context.Context) {
	if g.client == nil {
		logger.Warn(ctx, "contract gateway constructed without a chain client; all contracts disabled")
		return
	}

	if config.IsPlaceholderAddress(g.cfg.TollContractAddress) {
		logger.Warn(ctx, "toll contract address not configured; toll gateway disabled")
	} else if _, err := g.callView(ctx, g.cfg.TollContractAddress, TollCollectionABI, "getTollRate", "car"); err != nil {
		logger.Warn(ctx, "toll contract probe failed; toll gateway disabled", zap.Error(err))
	} else {
		g.caps.tollCollection = true
	}

	if config.IsPlaceholderAddress(g.cfg.StableTokenAddress) {
		logger.Warn(ctx, "stable token address not configured; token gateway disabled")
	} else if vals, err := g.callView(ctx, g.cfg.StableTokenAddress, StableTokenABI, "decimals"); err != nil {
		logger.Warn(ctx, "stable token probe failed; token gateway disabled", zap.Error(err))
	} else {
		g.caps.stableToken = true
		if d, ok := vals[0].(uint8); ok {
			g.tokenDecimals = int(d)
		}
	}

	if config.IsPlaceholderAddress(g.cfg.TopUpFactoryAddress) {
		logger.Warn(ctx, "top-up factory address not configured; factory gateway disabled")
	} else if _, err := g.callView(ctx, g.cfg.TopUpFactoryAddress, TopUpFactoryABI, "walletCount"); err != nil {
		logger.Warn(ctx, "top-up factory probe failed; factory gateway disabled", zap.Error(err))
	} else {
		g.caps.topUpFactory = true
	}
}

// GetVehicle returns the on-chain registration view for a vehicle. Any
// failure degrades to the zero registration (not registered), never an error.
func (g *ContractGateway) GetVehicle(ctx context.Context, vehicleID string) *entities.VehicleRegistration {
	reg := &entities.VehicleRegistration{}
	if !g.caps.tollCollection {
		return reg
	}

	vals, err := g.callView(ctx, g.cfg.TollContractAddress, TollCollectionABI, "getVehicle", vehicleID)
	if err != nil || len(vals) < 5 {
		logger.Warn(ctx, "getVehicle failed; treating vehicle as unregistered",
			zap.String("vehicle_id", vehicleID), zap.Error(err))
		return reg
	}

	owner, _ := vals[0].(common.Address)
	active, _ := vals[1].(bool)
	blacklisted, _ := vals[2].(bool)

	reg.Owner = owner.Hex()
	reg.IsRegistered = !isZeroAddress(owner) && active
	reg.IsBlacklisted = blacklisted
	if ts, ok := vals[3].(*big.Int); ok {
		reg.RegistrationTime = ts.Int64()
	}
	if ts, ok := vals[4].(*big.Int); ok {
		reg.LastTollTime = ts.Int64()
	}
	return reg
}

// TollRate returns the rate for a vehicle type. The contract value is the
// rate in smallest token units; on any failure the static fallback table
// applies, tagged with RateSourceFallback so callers can tell the two apart.
func (g *ContractGateway) TollRate(ctx context.Context, vehicleType string) *entities.TollRate {
	key := strings.ToLower(strings.TrimSpace(vehicleType))

	if g.caps.tollCollection {
		if vals, err := g.callView(ctx, g.cfg.TollContractAddress, TollCollectionABI, "getTollRate", key); err == nil && len(vals) == 1 {
			if raw, ok := vals[0].(*big.Int); ok && raw.Sign() > 0 {
				return &entities.TollRate{
					VehicleType: key,
					Amount:      formatRate(raw, g.tokenDecimals),
					Source:      entities.RateSourceContract,
				}
			}
		} else if err != nil {
			logger.Warn(ctx, "getTollRate failed; using fallback table",
				zap.String("vehicle_type", key), zap.Error(err))
		}
	}

	amount, ok := fallbackTollRates[key]
	if !ok {
		amount = DefaultFallbackTollRate
	}
	fallbackRateTotal.Inc()
	return &entities.TollRate{VehicleType: key, Amount: amount, Source: entities.RateSourceFallback}
}

// HasTopUpWallet reports whether the user has a top-up wallet. Failures fall
// back to false, which routes payment down the direct path.
func (g *ContractGateway) HasTopUpWallet(ctx context.Context, owner string) bool {
	if !g.caps.topUpFactory {
		return false
	}
	vals, err := g.callView(ctx, g.cfg.TopUpFactoryAddress, TopUpFactoryABI, "hasTopUpWallet", common.HexToAddress(owner))
	if err != nil || len(vals) != 1 {
		return false
	}
	has, _ := vals[0].(bool)
	return has
}

// TopUpWalletBalance fetches the user's top-up wallet balance via the
// wallet's own minimal ABI.
func (g *ContractGateway) TopUpWalletBalance(ctx context.Context, owner string) (*big.Int, error) {
	if !g.caps.topUpFactory {
		return nil, fmt.Errorf("top-up factory gateway disabled")
	}

	vals, err := g.callView(ctx, g.cfg.TopUpFactoryAddress, TopUpFactoryABI, "getTopUpWallet", common.HexToAddress(owner))
	if err != nil || len(vals) != 1 {
		return nil, fmt.Errorf("getTopUpWallet failed: %w", err)
	}
	walletAddr, ok := vals[0].(common.Address)
	if !ok || isZeroAddress(walletAddr) {
		return nil, fmt.Errorf("no top-up wallet deployed for %s", owner)
	}

	vals, err = g.callView(ctx, walletAddr.Hex(), TopUpWalletABI, "getBalance")
	if err != nil || len(vals) != 1 {
		return nil, fmt.Errorf("getBalance failed: %w", err)
	}
	balance, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getBalance return type")
	}
	return balance, nil
}

// TokenBalance returns the stable-token balance of an address.
func (g *ContractGateway) TokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	if !g.caps.stableToken {
		return nil, fmt.Errorf("stable token gateway disabled")
	}
	vals, err := g.callView(ctx, g.cfg.StableTokenAddress, StableTokenABI, "balanceOf", common.HexToAddress(owner))
	if err != nil || len(vals) != 1 {
		return nil, fmt.Errorf("balanceOf failed: %w", err)
	}
	balance, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf return type")
	}
	return balance, nil
}

// TokenDecimals returns the contract-reported decimals cached at probe time,
// or 18 when the token gateway is disabled.
func (g *ContractGateway) TokenDecimals() int {
	return g.tokenDecimals
}

// NativeBalance returns the main wallet's native-currency balance.
func (g *ContractGateway) NativeBalance(ctx context.Context, owner string) (*big.Int, error) {
	if g.client == nil {
		return nil, fmt.Errorf("chain client unavailable")
	}
	var balance *big.Int
	err := g.retry.Do(ctx, func() error {
		b, err := g.client.GetBalance(ctx, owner)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	return balance, err
}

// ProcessTollPayment submits the direct-payment path and waits for one
// confirmation.
func (g *ContractGateway) ProcessTollPayment(ctx context.Context, vehicleOwner, vehicleID string, amount *big.Int, proofHash [32]byte) (*types.Receipt, string, error) {
	if !g.caps.tollCollection {
		return nil, "", fmt.Errorf("toll contract gateway disabled")
	}
	return g.submitTx(ctx, g.cfg.TollContractAddress, TollCollectionABI, "processTollPayment",
		common.HexToAddress(vehicleOwner), vehicleID, amount, proofHash)
}

// ProcessTollPaymentFromTopUpWallet submits the top-up-relayed path and waits
// for one confirmation.
func (g *ContractGateway) ProcessTollPaymentFromTopUpWallet(ctx context.Context, user, vehicleID string, amount *big.Int, proofHash [32]byte) (*types.Receipt, string, error) {
	if !g.caps.topUpFactory {
		return nil, "", fmt.Errorf("top-up factory gateway disabled")
	}
	return g.submitTx(ctx, g.cfg.TopUpFactoryAddress, TopUpFactoryABI, "processTollPaymentFromTopUpWallet",
		common.HexToAddress(user), vehicleID, amount, proofHash)
}

func (g *ContractGateway) submitTx(ctx context.Context, contractAddress string, parsedABI abi.ABI, method string, args ...interface{}) (*types.Receipt, string, error) {
	if g.cfg.OperatorPrivateKey == "" {
		return nil, "", fmt.Errorf("operator private key is not configured")
	}

	var tx *types.Transaction
	err := g.retry.Do(ctx, func() error {
		sent, err := transactContract(ctx, g.client.Raw(), big.NewInt(g.cfg.ChainID),
			g.cfg.OperatorPrivateKey, contractAddress, parsedABI, g.cfg.GasLimit, method, args...)
		if err != nil {
			return err
		}
		tx = sent
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	receipt, err := waitMined(ctx, g.client.Raw(), tx)
	if err != nil {
		return nil, tx.Hash().Hex(), err
	}
	return receipt, tx.Hash().Hex(), nil
}

// callView packs, calls, and unpacks a view method under the retry policy.
func (g *ContractGateway) callView(ctx context.Context, contractAddress string, parsedABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	var out []byte
	if err := g.retry.Do(ctx, func() error {
		result, callErr := g.client.CallView(ctx, contractAddress, data)
		if callErr != nil {
			return callErr
		}
		out = result
		return nil
	}); err != nil {
		return nil, err
	}

	vals, err := parsedABI.Unpack(method, out)
	if err != nil || len(vals) == 0 {
		return nil, fmt.Errorf("failed to decode %s", method)
	}
	return vals, nil
}
