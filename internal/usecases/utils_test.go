package usecases

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToSmallestUnit(t *testing.T) {
	cases := []struct {
		amount   string
		decimals int
		want     string
	}{
		{"2.00", 18, "2000000000000000000"},
		{"2.00", 6, "2000000"},
		{"0.5", 6, "500000"},
		{"1", 0, "1"},
		{" 1.5 ", 2, "150"},
	}
	for _, tc := range cases {
		got, err := convertToSmallestUnit(tc.amount, tc.decimals)
		require.NoError(t, err, tc.amount)
		assert.Equal(t, tc.want, got.String(), tc.amount)
	}
}

func TestConvertToSmallestUnit_Invalid(t *testing.T) {
	for _, amount := range []string{"", "   ", "abc", "-1", "-0.01"} {
		_, err := convertToSmallestUnit(amount, 18)
		require.Error(t, err, amount)
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "2.500000", formatUnits(big.NewInt(2_500_000), 6))
	assert.Equal(t, "0.000000", formatUnits(big.NewInt(0), 18))
	assert.Equal(t, "1.000000", formatUnits(big.NewInt(1e18), 18))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "2.00", formatRate(big.NewInt(2_000_000), 6))
	assert.Equal(t, "5.50", formatRate(big.NewInt(5_500_000), 6))
}

func TestIsChecksumAddress(t *testing.T) {
	// Mixed case must match EIP-55.
	assert.True(t, isChecksumAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"))
	assert.False(t, isChecksumAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976f"))

	// Uniform case is accepted.
	assert.True(t, isChecksumAddress("0x71c7656ec7ab88b098defb751b7401b5f6d8976f"))
	assert.True(t, isChecksumAddress("0x71C7656EC7AB88B098DEFB751B7401B5F6D8976F"))

	assert.False(t, isChecksumAddress("0x123"))
	assert.False(t, isChecksumAddress("not an address"))
	assert.False(t, isChecksumAddress(""))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, sameAddress("0xABC0000000000000000000000000000000000001", "0xabc0000000000000000000000000000000000001"))
	assert.True(t, sameAddress(" 0xabc0000000000000000000000000000000000001", "0xabc0000000000000000000000000000000000001 "))
	assert.False(t, sameAddress("0xabc0000000000000000000000000000000000001", "0xabc0000000000000000000000000000000000002"))
}

func TestHexProofHash(t *testing.T) {
	var h [32]byte
	h[0] = 0xde
	h[31] = 0x01
	got := hexProofHash(h)
	require.Len(t, got, 2+64)
	assert.Equal(t, "0xde", got[:4])
}

func TestFormatGasUsed(t *testing.T) {
	assert.Equal(t, "41234", formatGasUsed(41234))
}
