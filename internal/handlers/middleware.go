package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"home_energy/internal/models"
)

const sessionKey = "session"

// sessionMiddleware resolves the bearer token into a models.Session and stores
// it in the Gin context. allowQuery also accepts ?token= for WebSocket upgrades.
func (h *Handler) sessionMiddleware(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c, allowQuery)
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		sess, err := h.services.ParseToken(token)
		if err != nil || sess.Expired(time.Now()) {
			if h.log != nil {
				h.log.Infow("auth_token_rejected", "err", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		// store in Gin context
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (token, errMsg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); allowQuery && q != "" {
			return q, ""
		}
		return "", "missing Authorization header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "invalid Authorization header format"
	}
	return parts[1], ""
}

// sessionFrom returns the session stored by sessionMiddleware.
func sessionFrom(c *gin.Context) models.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(models.Session)
	return sess
}
