package entities

// BalanceSource identifies which lookup produced a BalanceInfo.
type BalanceSource string

const (
	// BalanceSourceTopUp means the per-user top-up wallet contract balance.
	BalanceSourceTopUp BalanceSource = "topup"
	// BalanceSourceNative means the main wallet's native-currency balance.
	BalanceSourceNative BalanceSource = "native"
	// BalanceSourceFallback means every lookup failed and the balance
	// degraded to zero. It must not be read as a real zero balance.
	BalanceSourceFallback BalanceSource = "fallback"
)

// BalanceInfo is the resolved payer balance at validation time.
type BalanceInfo struct {
	// Balance is the raw integer amount in the smallest unit, as a string.
	Balance string `json:"balance"`
	// FormattedBalance is the decimal representation, six fractional digits.
	FormattedBalance string        `json:"formattedBalance"`
	Decimals         int           `json:"decimals"`
	Source           BalanceSource `json:"source"`
}

// ZeroBalance returns the degraded-to-zero BalanceInfo used when lookups fail.
func ZeroBalance() *BalanceInfo {
	return &BalanceInfo{
		Balance:          "0",
		FormattedBalance: "0.000000",
		Decimals:         18,
		Source:           BalanceSourceFallback,
	}
}
