package usecases

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"toll-chain.backend/internal/domain/entities"
	"toll-chain.backend/pkg/logger"
)

// Validation error messages. These strings are part of the API contract with
// the scanning clients and must not be reworded casually.
const (
	errInvalidAddress   = "Invalid wallet address format"
	errExpiredQR        = "QR code has expired. Please generate a new one."
	errBadSignature     = "QR signature does not match wallet address"
	errMalformedSig     = "QR signature is malformed"
	errNotRegistered    = "Vehicle is not registered in the system"
	errBlacklisted      = "Vehicle is blacklisted and cannot proceed"
	errOwnerMismatch    = "Vehicle owner does not match wallet address in QR code"
	errSystem           = "system error"
	missingFieldsPrefix = "missing required fields: "
)

// QRValidator validates scanned toll-intent payloads: format, expiry,
// signature authenticity, on-chain registration, blacklist, and ownership.
type QRValidator struct {
	gateway Gateway
	// expiry is the payload data-validity window.
	expiry time.Duration
	// allowUnverifiedSigner enables the permissive signature mode: any
	// syntactically valid recovered signer is accepted, as is the all-zero
	// mock signature. Default (strict) requires signer == walletAddress.
	allowUnverifiedSigner bool

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewQRValidator creates a new QR validator
func NewQRValidator(gateway Gateway, expiry time.Duration, allowUnverifiedSigner bool) *QRValidator {
	if expiry <= 0 {
		expiry = QRExpiryWindow
	}
	return &QRValidator{
		gateway:               gateway,
		expiry:                expiry,
		allowUnverifiedSigner: allowUnverifiedSigner,
		now:                   time.Now,
	}
}

// Validate runs the ordered check chain, short-circuiting on the first
// failure. Failures are values; unexpected panics map to a generic system
// error rather than propagating.
func (v *QRValidator) Validate(ctx context.Context, payload *entities.QRPayload) (result *entities.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "qr validation panicked", zap.Any("panic", r))
			result = &entities.ValidationResult{IsValid: false, Error: errSystem}
		}
	}()

	if payload == nil {
		return &entities.ValidationResult{IsValid: false, Error: errSystem}
	}

	// 1. Field presence.
	if missing := missingFields(payload); len(missing) > 0 {
		return &entities.ValidationResult{
			IsValid: false,
			Error:   missingFieldsPrefix + strings.Join(missing, ", "),
		}
	}

	// 2. Address format.
	if !isChecksumAddress(payload.WalletAddress) {
		return &entities.ValidationResult{IsValid: false, Error: errInvalidAddress}
	}

	// 3. Expiry.
	age := v.now().UnixMilli() - payload.Timestamp
	if age > v.expiry.Milliseconds() {
		return &entities.ValidationResult{IsValid: false, Error: errExpiredQR}
	}

	// 4. Signature, only when present.
	if payload.Signature != "" {
		if msg := v.checkSignature(payload); msg != "" {
			return &entities.ValidationResult{IsValid: false, Error: msg}
		}
	}

	// 5. Registration.
	registration := v.gateway.GetVehicle(ctx, payload.EffectiveVehicleID())
	if !registration.IsRegistered {
		return &entities.ValidationResult{IsValid: false, Error: errNotRegistered}
	}

	// 6. Blacklist veto.
	if registration.IsBlacklisted {
		return &entities.ValidationResult{IsValid: false, Error: errBlacklisted}
	}

	// 7. Ownership match.
	if !sameAddress(registration.Owner, payload.WalletAddress) {
		return &entities.ValidationResult{IsValid: false, Error: errOwnerMismatch}
	}

	return &entities.ValidationResult{IsValid: true}
}

func missingFields(payload *entities.QRPayload) []string {
	var missing []string
	if strings.TrimSpace(payload.WalletAddress) == "" {
		missing = append(missing, "walletAddress")
	}
	if strings.TrimSpace(payload.EffectiveVehicleID()) == "" {
		missing = append(missing, "vehicleId")
	}
	if strings.TrimSpace(payload.VehicleType) == "" {
		missing = append(missing, "vehicleType")
	}
	if payload.Timestamp == 0 {
		missing = append(missing, "timestamp")
	}
	return missing
}

// checkSignature verifies the optional ECDSA signature. Returns an empty
// string on success or the validation error message on failure.
func (v *QRValidator) checkSignature(payload *entities.QRPayload) string {
	sig, err := hex.DecodeString(strings.TrimPrefix(payload.Signature, "0x"))
	if err != nil || len(sig) != SignatureLength {
		return errMalformedSig
	}

	// The all-zero signature is the mock emitted by offline QR generators.
	// It is accepted only under the explicit permissive flag.
	if bytes.Equal(sig, make([]byte, SignatureLength)) {
		if v.allowUnverifiedSigner {
			return ""
		}
		return errBadSignature
	}

	recovered, err := recoverQRSigner(payload, sig)
	if err != nil {
		return errMalformedSig
	}

	if v.allowUnverifiedSigner {
		// Permissive mode: any syntactically valid recovery passes.
		return ""
	}
	if !sameAddress(recovered, payload.WalletAddress) {
		return errBadSignature
	}
	return ""
}

// canonicalQRMessage builds the canonical JSON message signed by QR
// generators. Key order is fixed; changing it breaks every issued QR code.
func canonicalQRMessage(payload *entities.QRPayload) []byte {
	version := payload.Version
	if version == "" {
		version = qrMessageVersion
	}
	msg := fmt.Sprintf(
		`{"walletAddress":"%s","vehicleNumber":"%s","vehicleType":"%s","userId":"%s","timestamp":%d,"version":"%s"}`,
		payload.WalletAddress,
		payload.EffectiveVehicleID(),
		payload.VehicleType,
		payload.UserID,
		payload.Timestamp,
		version,
	)
	return []byte(msg)
}

// recoverQRSigner recovers the signer address from an EIP-191 personal-sign
// signature over the canonical message.
func recoverQRSigner(payload *entities.QRPayload, sig []byte) (string, error) {
	hash := accounts.TextHash(canonicalQRMessage(payload))

	// Normalize the recovery id: wallets emit 27/28, crypto wants 0/1.
	recSig := make([]byte, SignatureLength)
	copy(recSig, sig)
	if recSig[64] >= 27 {
		recSig[64] -= 27
	}

	pub, err := crypto.SigToPub(hash, recSig)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
