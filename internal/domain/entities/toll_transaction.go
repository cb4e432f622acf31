package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionResult is the terminal outcome of one payment attempt.
// It is produced once and never retried by the core; resubmission is the
// caller's decision and requires a fresh nonce/proof hash.
type TransactionResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash,omitempty"`
	GasUsed         uint64 `json:"gasUsed,omitempty"`
	Error           string `json:"error,omitempty"`
}

// TollTransactionStatus enumerates the lifecycle of a recorded toll event.
type TollTransactionStatus string

const (
	TollTransactionStatusPending   TollTransactionStatus = "pending"
	TollTransactionStatusCompleted TollTransactionStatus = "completed"
	TollTransactionStatusFailed    TollTransactionStatus = "failed"
	TollTransactionStatusExpired   TollTransactionStatus = "expired"
)

// ProcessingState is the four-state progress model driven by the pipeline.
// Invalid is terminal: no further transitions happen for that toll event.
type ProcessingState string

const (
	StateValidating   ProcessingState = "validating"
	StateConfirmation ProcessingState = "confirmation"
	StateProcessing   ProcessingState = "processing"
	StateComplete     ProcessingState = "complete"
	StateInvalid      ProcessingState = "invalid"
)

// TollTransaction is the persisted record of one toll event.
type TollTransaction struct {
	ID              uuid.UUID             `json:"id"`
	VehicleID       string                `json:"vehicleId"`
	VehicleType     string                `json:"vehicleType"`
	WalletAddress   string                `json:"walletAddress"`
	OperatorAddress string                `json:"operatorAddress"`
	PlazaID         string                `json:"plazaId,omitempty"`
	Amount          string                `json:"amount"`
	ProofHash       string                `json:"proofHash"`
	TransactionHash null.String           `json:"transactionHash,omitempty"`
	GasUsed         null.String           `json:"gasUsed,omitempty"`
	Notes           null.String           `json:"notes,omitempty"`
	Status          TollTransactionStatus `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}
