package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"home_energy/internal/apperr"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
	errInvalidID       = "invalid id: must be a positive integer"
	errUnavailable     = "storage temporarily unavailable, retry later"
	errInternal        = "internal error"
)

// respondError logs err under logKey and writes the status its kind maps to.
// Validation and not-found messages are safe to show; the rest are replaced.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	status := apperr.HTTPStatus(err)
	if h.log != nil {
		fields := append([]interface{}{"err", err, "status", status}, kv...)
		if status >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}

	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		msg = errUnavailable
	case http.StatusInternalServerError:
		msg = errInternal
	}
	c.JSON(status, gin.H{"error": msg})
}

// pathID parses a positive integer path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
