package usecases

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	"toll-chain.backend/internal/domain/entities"
	domainerrors "toll-chain.backend/internal/domain/errors"
)

// QRSigner issues signed toll-intent payloads for the scanning clients.
// The signature covers the same canonical message the validator recomputes.
type QRSigner struct {
	key *ecdsa.PrivateKey
}

// NewQRSigner creates a signer from a hex-encoded private key.
func NewQRSigner(privateKeyHex string) (*QRSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid signing key")
	}
	return &QRSigner{key: key}, nil
}

// Address returns the signer's wallet address.
func (s *QRSigner) Address() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

// Issue stamps the payload with the signer's wallet address, the current
// timestamp, and an EIP-191 signature over the canonical message.
func (s *QRSigner) Issue(vehicleID, vehicleType, userID, plazaID string) (*entities.QRPayload, error) {
	payload := &entities.QRPayload{
		WalletAddress: s.Address(),
		VehicleID:     vehicleID,
		VehicleType:   vehicleType,
		UserID:        userID,
		PlazaID:       plazaID,
		Timestamp:     time.Now().UnixMilli(),
		Version:       qrMessageVersion,
	}

	hash := accounts.TextHash(canonicalQRMessage(payload))
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, err
	}
	payload.Signature = "0x" + hex.EncodeToString(sig)
	return payload, nil
}
