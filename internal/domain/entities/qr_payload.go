package entities

// QRPayload is the scanned toll-intent record produced by the scanning client.
// It is consumed exactly once by the validator/submitter pair and never
// persisted by the core pipeline.
type QRPayload struct {
	WalletAddress string `json:"walletAddress"`
	VehicleID     string `json:"vehicleId"`
	// VehicleNumber is a legacy alias for VehicleID still emitted by older
	// QR generators. Either field satisfies the vehicle-id requirement.
	VehicleNumber string `json:"vehicleNumber,omitempty"`
	VehicleType   string `json:"vehicleType"`
	// Timestamp is the payload creation instant in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
	// Signature is an optional 65-byte ECDSA signature (hex) over the
	// canonical payload message. Absence means no verification is performed.
	Signature    string `json:"signature,omitempty"`
	UserID       string `json:"userId,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
	Nonce        string `json:"nonce,omitempty"`
	PlazaID      string `json:"plazaId,omitempty"`
	Version      string `json:"version,omitempty"`
}

// EffectiveVehicleID returns VehicleID, falling back to the legacy
// VehicleNumber alias.
func (p *QRPayload) EffectiveVehicleID() string {
	if p.VehicleID != "" {
		return p.VehicleID
	}
	return p.VehicleNumber
}

// ValidationResult is the outcome of validating a QRPayload. Validation
// failures are values, never Go errors.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}
