package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"home_energy/internal/service"
)

// maxGeneratedPoints bounds one backfill request.
const maxGeneratedPoints = 50_000

// GenerateRequest backfills synthetic history for one device.
type GenerateRequest struct {
	From     time.Time `json:"from" binding:"required" example:"2025-06-01T00:00:00Z"`
	To       time.Time `json:"to" binding:"required" example:"2025-06-07T23:00:00Z"`
	Interval string    `json:"interval" example:"1h"`
	Seed     int64     `json:"seed" example:"42"`
}

// @Summary      Backfill synthetic telemetry
// @Description  Historical mode only: readings over [from, to] at a fixed interval, stopping at the first failure.
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Device ID"
// @Param        body  body      GenerateRequest  true  "Range"
// @Success      200   {object}  service.GenerateReport
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/generate [post]
// @Security     BearerAuth
func (h *Handler) generateTelemetry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req GenerateRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	interval := time.Hour
	if req.Interval != "" {
		d, err := time.ParseDuration(req.Interval)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval: " + err.Error()})
			return
		}
		interval = d
	}
	if interval > 0 && req.To.Sub(req.From)/interval > maxGeneratedPoints {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range too large for interval"})
		return
	}

	rep, err := h.services.Generate(c.Request.Context(), sessionFrom(c), service.GenerateParams{
		DeviceID: id,
		Mode:     service.ModeHistorical,
		Interval: interval,
		Seed:     req.Seed,
		From:     req.From,
		To:       req.To,
	})
	if err != nil {
		h.respondError(c, "telemetry_generate_failed", err, "device_id", id, "submitted", rep.Submitted)
		return
	}
	c.JSON(http.StatusOK, rep)
}
