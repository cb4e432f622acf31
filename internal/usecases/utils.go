package usecases

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// convertToSmallestUnit converts a decimal currency-unit string to the
// smallest integer unit for the given decimals.
func convertToSmallestUnit(amount string, decimals int) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("empty amount")
	}

	amountFloat, ok := new(big.Float).SetString(trimmed)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if amountFloat.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", amount)
	}

	multiplier := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	result := new(big.Float).Mul(amountFloat, multiplier)
	resultInt, _ := result.Int(nil)
	return resultInt, nil
}

// formatUnits renders a smallest-unit integer as a decimal string with six
// fractional digits, matching the display contract of BalanceInfo.
func formatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0.000000"
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor)
	return value.Text('f', 6)
}

// formatRate renders a smallest-unit toll rate as a currency string with two
// fractional digits, matching the fallback table format.
func formatRate(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0.00"
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor)
	return value.Text('f', 2)
}

// isChecksumAddress validates an EVM address. All-lower and all-upper hex is
// accepted; mixed case must match the EIP-55 checksum.
func isChecksumAddress(address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	hexPart := strings.TrimPrefix(address, "0x")
	lower := strings.ToLower(hexPart)
	upper := strings.ToUpper(hexPart)
	if hexPart == lower || hexPart == upper {
		return true
	}
	return common.HexToAddress(address).Hex() == "0x"+hexPart
}

// sameAddress compares two addresses case-insensitively.
func sameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// isZeroAddress reports whether addr is the zero address.
func isZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}

// hexProofHash renders a proof hash the way it travels on the wire.
func hexProofHash(hash [32]byte) string {
	return "0x" + hex.EncodeToString(hash[:])
}

// formatGasUsed renders gas as a decimal string for the nullable column.
func formatGasUsed(gas uint64) string {
	return strconv.FormatUint(gas, 10)
}
