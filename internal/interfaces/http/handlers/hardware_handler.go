package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"toll-chain.backend/internal/domain/entities"
	domainerrors "toll-chain.backend/internal/domain/errors"
	"toll-chain.backend/internal/interfaces/http/response"
	"toll-chain.backend/pkg/logger"
)

type VehicleLookup interface {
	GetVehicle(ctx context.Context, vehicleID string) *entities.VehicleRegistration
}

type ScanCooldown interface {
	AcquireScanSlot(ctx context.Context, vehicleID string) (bool, error)
}

// HardwareHandler serves toll-plaza scanner devices. Scanners poll this
// endpoint on every read, so a short per-vehicle cooldown keeps a car idling
// at the gate from producing a scan per frame.
type HardwareHandler struct {
	vehicles VehicleLookup
	cooldown ScanCooldown
}

// NewHardwareHandler creates a new hardware handler. The cooldown may be nil
// when Redis is not configured; every scan is then processed.
func NewHardwareHandler(vehicles VehicleLookup, cooldown ScanCooldown) *HardwareHandler {
	return &HardwareHandler{vehicles: vehicles, cooldown: cooldown}
}

type scanRequest struct {
	VehicleID string `json:"vehicleId" binding:"required"`
	PlazaID   string `json:"plazaId"`
}

// Scan looks up a vehicle registration for a plaza scanner
// POST /api/v1/hardware/scan
func (h *HardwareHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if h.cooldown != nil {
		ok, err := h.cooldown.AcquireScanSlot(ctx, req.VehicleID)
		if err != nil {
			logger.Warn(ctx, "scan cooldown unavailable; processing scan",
				zap.String("vehicle_id", req.VehicleID), zap.Error(err))
		} else if !ok {
			response.Success(c, http.StatusOK, gin.H{
				"registered":  false,
				"blacklisted": false,
				"cooldown":    true,
			})
			return
		}
	}

	reg := h.vehicles.GetVehicle(ctx, req.VehicleID)
	response.Success(c, http.StatusOK, gin.H{
		"registered":  reg.IsRegistered,
		"blacklisted": reg.IsBlacklisted,
		"cooldown":    false,
	})
}
