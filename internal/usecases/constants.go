package usecases

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract ABIs: the fixed set of view and state-mutating functions the
// pipeline consumes. Deployments with stale ABIs are detected by the one-time
// liveness probe at gateway construction, not by per-call probing.
var (
	TollCollectionABI = mustParseABI(`[
		{"inputs":[{"internalType":"string","name":"vehicleId","type":"string"}],"name":"getVehicle","outputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"bool","name":"active","type":"bool"},{"internalType":"bool","name":"blacklisted","type":"bool"},{"internalType":"uint256","name":"registrationTime","type":"uint256"},{"internalType":"uint256","name":"lastTollTime","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"string","name":"vehicleType","type":"string"}],"name":"getTollRate","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"string","name":"vehicleId","type":"string"}],"name":"isBlacklisted","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"vehicleOwner","type":"address"},{"internalType":"string","name":"vehicleId","type":"string"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"bytes32","name":"proofHash","type":"bytes32"}],"name":"processTollPayment","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`)
	StableTokenABI = mustParseABI(`[
		{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
	]`)
	TopUpFactoryABI = mustParseABI(`[
		{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"hasTopUpWallet","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getTopUpWallet","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"walletCount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"user","type":"address"},{"internalType":"string","name":"vehicleId","type":"string"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"bytes32","name":"proofHash","type":"bytes32"}],"name":"processTollPaymentFromTopUpWallet","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`)
	TopUpWalletABI = mustParseABI(`[
		{"inputs":[],"name":"getBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
	]`)
)

// fallbackTollRates is the static lookup used when the toll contract is
// unreachable or disabled, keyed by lower-cased vehicle type.
var fallbackTollRates = map[string]string{
	"2-wheeler": "1.00",
	"3-wheeler": "1.50",
	"car":       "2.00",
	"bus":       "4.00",
	"truck":     "5.00",
}

// DefaultFallbackTollRate applies when the vehicle type is unknown.
const DefaultFallbackTollRate = "2.00"

// QRExpiryWindow is the payload data-validity window.
const QRExpiryWindow = 5 * time.Minute

// NativeDecimals is used for native-currency balance formatting.
const NativeDecimals = 18

// SignatureLength is the expected ECDSA signature size in bytes.
const SignatureLength = 65

// qrMessageVersion is the canonical-message version emitted by the signer and
// assumed by the validator when the payload omits one.
const qrMessageVersion = "1.0"

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
