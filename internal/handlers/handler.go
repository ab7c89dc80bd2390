package handlers

import (
	"home_energy/internal/logger"
	"home_energy/internal/metrics"
	"home_energy/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	opts     Options

	authLimiter   *keyedLimiter
	deviceLimiter *keyedLimiter
}

// Options are the transport policies. The zero value disables all of them.
type Options struct {
	CORS CORS

	// TrustedProxies may set X-Forwarded-For; nil means the peer address is the client.
	TrustedProxies []string

	// AuthLimit applies per client IP to sign-up and sign-in.
	AuthLimit RateLimit

	// DeviceLimit applies per account to device create, update and schedule writes.
	DeviceLimit RateLimit
}

// NewHandler constructs a new HTTP handler with dependencies. log and m may be nil.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: m}
}

// WithOptions installs CORS and rate limits. Call before InitRoutes.
func (h *Handler) WithOptions(o Options) *Handler {
	h.opts = o
	h.authLimiter = newKeyedLimiter(o.AuthLimit)
	h.deviceLimiter = newKeyedLimiter(o.DeviceLimit)
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(h.opts.TrustedProxies); err != nil && h.log != nil {
		h.log.Warnw("trusted_proxies_ignored", "err", err)
	}
	router.Use(gin.Recovery())
	if mw := h.corsMiddleware(); mw != nil {
		router.Use(mw)
	}
	router.Use(h.metrics.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live usage stream; browsers cannot set headers on upgrade, so ?token= is accepted here
	router.GET("/ws", h.sessionMiddleware(true), h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth", h.rateLimit(scopeAuth, h.authLimiter, clientIP))
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.sessionMiddleware(false))
	{
		h.registerDeviceRoutes(api)
		h.registerTelemetryRoutes(api)
		h.registerUsageRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	limited := h.rateLimit(scopeDevices, h.deviceLimiter, accountKey)
	devices := api.Group("/devices")
	{
		devices.POST("", limited, h.createDevice)
		devices.GET("", h.listDevices)
		devices.GET("/:id", h.getDevice)
		devices.PUT("/:id", limited, h.updateDevice)
		devices.DELETE("/:id", h.deleteDevice)

		// Body example: [{"day_of_week":1,"start_hour":9,"end_hour":17,"power_consumption":1.2}]
		devices.GET("/:id/schedule", h.getSchedule)
		devices.PUT("/:id/schedule", limited, h.setSchedule)

		devices.GET("/:id/telemetry", h.listTelemetry)
		devices.POST("/:id/generate", h.generateTelemetry)
	}
}

func (h *Handler) registerTelemetryRoutes(api *gin.RouterGroup) {
	api.POST("/telemetry", h.submitTelemetry)
}

func (h *Handler) registerUsageRoutes(api *gin.RouterGroup) {
	usage := api.Group("/usage")
	{
		usage.GET("/current", h.currentUsage)
		usage.GET("/daily", h.dailyTotal)
		usage.GET("/monthly-cost", h.monthlyCost)
		usage.GET("/timeline", h.timeline)
	}
}
