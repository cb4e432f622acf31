package entities

// VehicleRegistration is the on-chain-derived view of a vehicle.
type VehicleRegistration struct {
	// IsRegistered is derived: owner is non-zero AND the active flag is set.
	IsRegistered  bool   `json:"isRegistered"`
	Owner         string `json:"owner"`
	IsBlacklisted bool   `json:"isBlacklisted"`
	// RegistrationTime and LastTollTime are epoch seconds.
	RegistrationTime int64 `json:"registrationTime"`
	LastTollTime     int64 `json:"lastTollTime"`
}

// RateSource identifies where a toll rate came from.
type RateSource string

const (
	RateSourceContract RateSource = "contract"
	RateSourceFallback RateSource = "fallback"
)

// TollRate is the charge for a vehicle type, in formatted currency units.
type TollRate struct {
	VehicleType string     `json:"vehicleType"`
	Amount      string     `json:"amount"`
	Source      RateSource `json:"source"`
}
