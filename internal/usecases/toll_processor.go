package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"toll-chain.backend/internal/domain/entities"
	domainerrors "toll-chain.backend/internal/domain/errors"
	"toll-chain.backend/internal/domain/repositories"
	"toll-chain.backend/pkg/logger"
)

// ProgressFunc receives state transitions as the pipeline advances. Nil is
// allowed; transitions are then only logged.
type ProgressFunc func(state entities.ProcessingState)

// ProcessOutcome is the full result of one toll event: the validation
// verdict, the resolved balance shown during confirmation, the submission
// result, and the id of the persisted record (uuid.Nil when persistence is
// disabled or the event died in validation).
type ProcessOutcome struct {
	State         entities.ProcessingState    `json:"state"`
	Validation    *entities.ValidationResult  `json:"validation"`
	Balance       *entities.BalanceInfo       `json:"balance,omitempty"`
	Rate          *entities.TollRate          `json:"rate,omitempty"`
	Result        *entities.TransactionResult `json:"result,omitempty"`
	TransactionID uuid.UUID                   `json:"transactionId,omitempty"`
}

// TollProcessor drives one toll event through the four-state pipeline:
// validating, confirmation, processing, complete. A failed validation is the
// terminal invalid state; nothing is submitted or persisted for it.
type TollProcessor struct {
	validator *QRValidator
	balances  *BalanceResolver
	submitter *PaymentSubmitter
	gateway   Gateway
	txRepo    repositories.TollTransactionRepository
	operator  string
}

// NewTollProcessor creates the pipeline orchestrator. The repository may be
// nil, in which case toll events are not recorded.
func NewTollProcessor(
	validator *QRValidator,
	balances *BalanceResolver,
	submitter *PaymentSubmitter,
	gateway Gateway,
	txRepo repositories.TollTransactionRepository,
	operatorAddress string,
) *TollProcessor {
	return &TollProcessor{
		validator: validator,
		balances:  balances,
		submitter: submitter,
		gateway:   gateway,
		txRepo:    txRepo,
		operator:  operatorAddress,
	}
}

// Validate runs only the validating stage, returning the verdict together
// with the informational balance for the operator display.
func (p *TollProcessor) Validate(ctx context.Context, payload *entities.QRPayload) (*entities.ValidationResult, *entities.BalanceInfo) {
	verdict := p.validator.Validate(ctx, payload)
	if verdict.IsValid {
		validationTotal.WithLabelValues("valid").Inc()
	} else {
		validationTotal.WithLabelValues("invalid").Inc()
	}
	balance := p.balances.Resolve(ctx, payload.WalletAddress)
	return verdict, balance
}

// Process runs the full pipeline. The amount, when empty, is taken from the
// rate table for the payload's vehicle type; a non-empty amount is the
// operator's confirmed override.
func (p *TollProcessor) Process(ctx context.Context, payload *entities.QRPayload, amount string, progress ProgressFunc) *ProcessOutcome {
	started := time.Now()
	defer func() { paymentDuration.Observe(time.Since(started).Seconds()) }()

	outcome := &ProcessOutcome{State: entities.StateValidating}
	p.advance(ctx, outcome, entities.StateValidating, progress)

	verdict, balance := p.Validate(ctx, payload)
	outcome.Validation = verdict
	outcome.Balance = balance
	if !verdict.IsValid {
		p.advance(ctx, outcome, entities.StateInvalid, progress)
		return outcome
	}

	p.advance(ctx, outcome, entities.StateConfirmation, progress)
	rate := p.gateway.TollRate(ctx, payload.VehicleType)
	outcome.Rate = rate
	if amount == "" {
		amount = rate.Amount
	}

	p.advance(ctx, outcome, entities.StateProcessing, progress)
	// Pin the nonce so the recorded proof hash matches the submitted one.
	if payload.Nonce == "" {
		payload.Nonce = uuid.New().String()
	}
	record := p.recordPending(ctx, payload, amount)

	result := p.submitter.Submit(ctx, payload, amount, p.operator)
	outcome.Result = result
	if result.Success {
		paymentTotal.WithLabelValues("success").Inc()
	} else {
		paymentTotal.WithLabelValues("failure").Inc()
	}

	p.settle(ctx, record, result)
	if record != nil {
		outcome.TransactionID = record.ID
	}

	p.advance(ctx, outcome, entities.StateComplete, progress)
	return outcome
}

func (p *TollProcessor) advance(ctx context.Context, outcome *ProcessOutcome, state entities.ProcessingState, progress ProgressFunc) {
	outcome.State = state
	logger.Debug(ctx, "toll pipeline state", zap.String("state", string(state)))
	if progress != nil {
		progress(state)
	}
}

// recordPending writes the pending row before broadcast so a crash mid-flight
// leaves a visible record for the expiry job to reap.
func (p *TollProcessor) recordPending(ctx context.Context, payload *entities.QRPayload, amount string) *entities.TollTransaction {
	if p.txRepo == nil {
		return nil
	}
	proof := ComputeProofHash(payload, amount)
	record := &entities.TollTransaction{
		ID:              uuid.New(),
		VehicleID:       payload.EffectiveVehicleID(),
		VehicleType:     payload.VehicleType,
		WalletAddress:   payload.WalletAddress,
		OperatorAddress: p.operator,
		PlazaID:         payload.PlazaID,
		Amount:          amount,
		ProofHash:       hexProofHash(proof),
		Status:          entities.TollTransactionStatusPending,
	}
	if err := p.txRepo.Create(ctx, record); err != nil {
		logger.Error(ctx, "failed to record pending toll transaction",
			zap.String("vehicle_id", record.VehicleID), zap.Error(err))
		return nil
	}
	return record
}

func (p *TollProcessor) settle(ctx context.Context, record *entities.TollTransaction, result *entities.TransactionResult) {
	if record == nil || p.txRepo == nil {
		return
	}
	status := entities.TollTransactionStatusFailed
	if result.Success {
		status = entities.TollTransactionStatusCompleted
	}
	gasUsed := ""
	if result.GasUsed > 0 {
		gasUsed = formatGasUsed(result.GasUsed)
	}
	if err := p.txRepo.UpdateStatus(ctx, record.ID, status, result.TransactionHash, gasUsed); err != nil {
		logger.Error(ctx, "failed to settle toll transaction record",
			zap.String("transaction_id", record.ID.String()), zap.Error(err))
		return
	}
	record.Status = status
	record.TransactionHash = null.NewString(result.TransactionHash, result.TransactionHash != "")
	record.GasUsed = null.NewString(gasUsed, gasUsed != "")
}

// Transactions returns the persisted toll log, newest first.
func (p *TollProcessor) Transactions(ctx context.Context, limit, offset int) ([]*entities.TollTransaction, int64, error) {
	if p.txRepo == nil {
		return nil, 0, domainerrors.ServiceUnavailable("transaction log is not configured")
	}
	return p.txRepo.List(ctx, limit, offset)
}
