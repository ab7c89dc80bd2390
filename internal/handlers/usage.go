package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"home_energy/internal/models"
)

const unitKWh = "kWh"

// @Summary      Current usage
// @Description  Schedule-derived draw right now, per device and per room.
// @Tags         usage
// @Produce      json
// @Success      200  {object}  models.Result
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/usage/current [get]
// @Security     BearerAuth
func (h *Handler) currentUsage(c *gin.Context) {
	u, err := h.services.CurrentUsage(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.respondError(c, "usage_current_failed", err)
		return
	}
	c.JSON(http.StatusOK, models.DeviceListResult(
		fmt.Sprintf("%d devices drawing %.3f kW", len(u.PerDevice), u.TotalKW), u))
}

// @Summary      Daily total
// @Description  Recorded kWh since local midnight.
// @Tags         usage
// @Produce      json
// @Success      200  {object}  models.Result
// @Router       /api/v1/usage/daily [get]
// @Security     BearerAuth
func (h *Handler) dailyTotal(c *gin.Context) {
	kwh, err := h.services.DailyTotal(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.respondError(c, "usage_daily_failed", err)
		return
	}
	c.JSON(http.StatusOK, models.ScalarResult("energy used today", kwh, unitKWh))
}

// @Summary      Monthly cost estimate
// @Description  Weekly schedule kWh × price × days in month / 7. Month-to-date actuals are reported in detail.
// @Tags         usage
// @Produce      json
// @Success      200  {object}  models.Result
// @Router       /api/v1/usage/monthly-cost [get]
// @Security     BearerAuth
func (h *Handler) monthlyCost(c *gin.Context) {
	mc, err := h.services.MonthlyCost(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.respondError(c, "usage_monthly_failed", err)
		return
	}
	res := models.ScalarResult("projected cost this month", mc.Amount, mc.Currency)
	res.Detail = mc
	c.JSON(http.StatusOK, res)
}

// @Summary      Timeline
// @Description  Actuals up to now and schedule forecast after, each entry tagged.
// @Tags         usage
// @Produce      json
// @Param        view  query     string  false  "Window"  Enums(daily,weekly,monthly)  default(daily)
// @Success      200   {object}  models.Result
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/usage/timeline [get]
// @Security     BearerAuth
func (h *Handler) timeline(c *gin.Context) {
	view := models.View(strings.ToLower(strings.TrimSpace(c.DefaultQuery("view", string(models.ViewDaily)))))
	entries, err := h.services.GetTimeline(c.Request.Context(), sessionFrom(c), view)
	if err != nil {
		h.respondError(c, "usage_timeline_failed", err, "view", view)
		return
	}
	c.JSON(http.StatusOK, models.SeriesResult(string(view)+" timeline", view, entries))
}
