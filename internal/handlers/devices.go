package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"home_energy/internal/models"
	"home_energy/internal/service"
)

// DeviceRequest is the create/update payload.
type DeviceRequest struct {
	Name string `json:"name" binding:"required" example:"Kitchen fridge"`
	// Category, case-insensitive. Unknown values are stored as "other".
	Category      string  `json:"category" example:"refrigerator"`
	Room          string  `json:"room" example:"kitchen"`
	PowerRatingKW float64 `json:"power_rating_kw" binding:"required" example:"0.15"`
}

func (r DeviceRequest) params() service.DeviceParams {
	return service.DeviceParams{
		Name:          r.Name,
		Category:      r.Category,
		Room:          r.Room,
		PowerRatingKW: r.PowerRatingKW,
	}
}

// @Summary      Create device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body      DeviceRequest  true  "Device"
// @Success      201   {object}  models.Device
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/devices [post]
// @Security     BearerAuth
func (h *Handler) createDevice(c *gin.Context) {
	var req DeviceRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	d, err := h.services.CreateDevice(c.Request.Context(), sessionFrom(c), req.params())
	if err != nil {
		h.respondError(c, "device_create_failed", err, "name", req.Name)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// @Summary      List devices
// @Tags         devices
// @Produce      json
// @Success      200  {array}   models.Device
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	list, err := h.services.ListDevices(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.respondError(c, "device_list_failed", err)
		return
	}
	if list == nil {
		list = []models.Device{}
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get device
// @Tags         devices
// @Produce      json
// @Param        id   path      int  true  "Device ID"
// @Success      200  {object}  models.Device
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.services.GetDevice(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		h.respondError(c, "device_get_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Update device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Device ID"
// @Param        body  body      DeviceRequest  true  "Device"
// @Success      200   {object}  models.Device
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req DeviceRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	d, err := h.services.UpdateDevice(c.Request.Context(), sessionFrom(c), id, req.params())
	if err != nil {
		h.respondError(c, "device_update_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Delete device
// @Description  Also removes the device's schedule and telemetry.
// @Tags         devices
// @Param        id   path  int  true  "Device ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteDevice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.DeleteDevice(c.Request.Context(), sessionFrom(c), id); err != nil {
		h.respondError(c, "device_delete_failed", err, "device_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Get schedule
// @Tags         schedule
// @Produce      json
// @Param        id   path      int  true  "Device ID"
// @Success      200  {array}   models.ScheduleBlock
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id}/schedule [get]
// @Security     BearerAuth
func (h *Handler) getSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	blocks, err := h.services.GetSchedule(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		h.respondError(c, "schedule_get_failed", err, "device_id", id)
		return
	}
	if blocks == nil {
		blocks = []models.ScheduleBlock{}
	}
	c.JSON(http.StatusOK, blocks)
}

// @Summary      Replace schedule
// @Description  Replaces the whole weekly schedule. Day 0 is Sunday; hours are [start, end) within 0-23.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        id    path      int                     true  "Device ID"
// @Param        body  body      []models.ScheduleBlock  true  "Blocks"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/schedule [put]
// @Security     BearerAuth
func (h *Handler) setSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var blocks []models.ScheduleBlock
	if ok := h.bindJSONOrBadRequest(c, &blocks); !ok {
		return
	}
	if err := h.services.SetSchedule(c.Request.Context(), sessionFrom(c), id, blocks); err != nil {
		h.respondError(c, "schedule_set_failed", err, "device_id", id, "blocks", len(blocks))
		return
	}
	c.JSON(http.StatusOK, gin.H{"device_id": id, "blocks": len(blocks)})
}
