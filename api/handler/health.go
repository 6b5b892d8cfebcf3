package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coachscout/coachscout/models"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// BrowserStatus reports whether the shared stealth browser is launched.
type BrowserStatus interface {
	Active() bool
}

// Health returns a handler for GET /api/v1/health.
func Health(browser BrowserStatus, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "healthy",
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			BrowserActive: browser.Active(),
			Version:       Version,
		})
	}
}
