package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"toll-chain.backend/internal/domain/entities"
	domainerrors "toll-chain.backend/internal/domain/errors"
	"toll-chain.backend/internal/interfaces/http/response"
	"toll-chain.backend/internal/usecases"
)

type TollService interface {
	Validate(ctx context.Context, payload *entities.QRPayload) (*entities.ValidationResult, *entities.BalanceInfo)
	Process(ctx context.Context, payload *entities.QRPayload, amount string, progress usecases.ProgressFunc) *usecases.ProcessOutcome
	Transactions(ctx context.Context, limit, offset int) ([]*entities.TollTransaction, int64, error)
}

type RateService interface {
	TollRate(ctx context.Context, vehicleType string) *entities.TollRate
}

type BalanceService interface {
	Resolve(ctx context.Context, address string) *entities.BalanceInfo
}

type QRIssuer interface {
	Issue(vehicleID, vehicleType, userID, plazaID string) (*entities.QRPayload, error)
}

// TollHandler handles the toll pipeline endpoints
type TollHandler struct {
	processor TollService
	rates     RateService
	balances  BalanceService
	issuer    QRIssuer
}

// NewTollHandler creates a new toll handler. The issuer may be nil when no
// signing key is configured; the QR endpoint then returns 503.
func NewTollHandler(processor TollService, rates RateService, balances BalanceService, issuer QRIssuer) *TollHandler {
	return &TollHandler{processor: processor, rates: rates, balances: balances, issuer: issuer}
}

// ValidateToll validates a scanned QR payload
// POST /api/v1/toll/validate
func (h *TollHandler) ValidateToll(c *gin.Context) {
	var payload entities.QRPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	verdict, balance := h.processor.Validate(c.Request.Context(), &payload)
	response.Success(c, http.StatusOK, gin.H{
		"isValid": verdict.IsValid,
		"error":   verdict.Error,
		"balance": balance,
	})
}

type processTollRequest struct {
	entities.QRPayload
	Amount string `json:"amount"`
}

// ProcessToll runs the full pipeline for a scanned QR payload
// POST /api/v1/toll/process
func (h *TollHandler) ProcessToll(c *gin.Context) {
	var req processTollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	outcome := h.processor.Process(c.Request.Context(), &req.QRPayload, req.Amount, nil)
	response.Success(c, http.StatusOK, outcome)
}

// GetTollRate returns the toll rate for a vehicle type
// GET /api/v1/toll/rate/:vehicleType
func (h *TollHandler) GetTollRate(c *gin.Context) {
	vehicleType := c.Param("vehicleType")
	if vehicleType == "" {
		response.Error(c, domainerrors.BadRequest("Vehicle type is required"))
		return
	}

	rate := h.rates.TollRate(c.Request.Context(), vehicleType)
	response.Success(c, http.StatusOK, rate)
}

// GetBalance resolves the payable balance for a wallet address
// GET /api/v1/toll/balance/:address
func (h *TollHandler) GetBalance(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		response.Error(c, domainerrors.BadRequest("Wallet address is required"))
		return
	}

	balance := h.balances.Resolve(c.Request.Context(), address)
	response.Success(c, http.StatusOK, balance)
}

// ListTransactions returns the persisted toll log
// GET /api/v1/toll/transactions
func (h *TollHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := h.processor.Transactions(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": items,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

type issueQRRequest struct {
	VehicleID   string `json:"vehicleId" binding:"required"`
	VehicleType string `json:"vehicleType" binding:"required"`
	UserID      string `json:"userId"`
	PlazaID     string `json:"plazaId"`
}

// IssueQR issues a signed QR payload for a registered vehicle
// POST /api/v1/toll/qr
func (h *TollHandler) IssueQR(c *gin.Context) {
	if h.issuer == nil {
		response.Error(c, domainerrors.ServiceUnavailable("QR signing is not configured"))
		return
	}

	var req issueQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	payload, err := h.issuer.Issue(req.VehicleID, req.VehicleType, req.UserID, req.PlazaID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, payload)
}
