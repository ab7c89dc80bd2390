package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lists the browser origins allowed to call the API. "*" allows any origin.
// An empty list installs no CORS handling.
type CORS struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	o := h.opts.CORS
	if len(o.AllowedOrigins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Origin"},
		AllowCredentials: true,
		MaxAge:           o.MaxAge,
	}
	for _, origin := range o.AllowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			break
		}
		cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
	}
	return cors.New(cfg)
}
