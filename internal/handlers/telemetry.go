package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"home_energy/internal/models"
	"home_energy/internal/service"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// TelemetryRequest is one reading. A missing timestamp means now.
type TelemetryRequest struct {
	DeviceID    int        `json:"device_id" binding:"required" example:"1"`
	Timestamp   *time.Time `json:"timestamp,omitempty" example:"2025-06-02T09:00:00Z"`
	EnergyUsage *float64   `json:"energy_usage" binding:"required" example:"0.15"`
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// parseRange reads ?from and ?to into a half-open filter. A date-only 'to'
// covers that whole day, so it becomes the following midnight.
func parseRange(c *gin.Context) (service.ReadingFilter, string) {
	var f service.ReadingFilter
	var err error
	if qs := c.Query("from"); qs != "" {
		if f.From, err = parseQueryTime(qs); err != nil {
			return f, errFromInvalid
		}
	}
	if qs := c.Query("to"); qs != "" {
		if f.To, err = parseQueryTime(qs); err != nil {
			return f, errToInvalid
		}
		if isDateOnly(qs) {
			f.To = f.To.AddDate(0, 0, 1)
		}
	}
	return f, ""
}

// @Summary      Submit reading
// @Description  Upserts one reading; a second reading for the same device and second replaces the first.
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        body  body      TelemetryRequest  true  "Reading"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/telemetry [post]
// @Security     BearerAuth
func (h *Handler) submitTelemetry(c *gin.Context) {
	var req TelemetryRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	r := models.TelemetryReading{DeviceID: req.DeviceID, EnergyUsage: *req.EnergyUsage}
	if req.Timestamp != nil {
		r.Timestamp = *req.Timestamp
	}
	if err := h.services.Telemetry.Submit(c.Request.Context(), sessionFrom(c), r); err != nil {
		h.respondError(c, "telemetry_submit_failed", err, "device_id", req.DeviceID)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "stored"})
}

// @Summary      List readings
// @Description  Filter by time (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). 'from' is inclusive, 'to' exclusive; a date-only 'to' includes that whole day.
// @Tags         telemetry
// @Produce      json
// @Param        id    path      int     true   "Device ID"
// @Param        from  query     string  false  "Start of range"  example(2025-06-01)
// @Param        to    query     string  false  "End of range"    example(2025-06-30)
// @Success      200   {object}  map[string]interface{}  "count, readings"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/telemetry [get]
// @Security     BearerAuth
func (h *Handler) listTelemetry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	f, msg := parseRange(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	readings, err := h.services.ListReadings(c.Request.Context(), sessionFrom(c), id, f)
	if err != nil {
		h.respondError(c, "telemetry_list_failed", err, "device_id", id, "from", f.From, "to", f.To)
		return
	}
	if readings == nil {
		readings = []models.TelemetryReading{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}
