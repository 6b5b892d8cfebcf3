package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coachscout/coachscout/api/handler"
	"github.com/coachscout/coachscout/api/middleware"
	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/runner"
	"github.com/coachscout/coachscout/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics endpoints are intentionally outside auth so monitoring
// probes always work.
func NewRouter(r *runner.Runner, st *store.Store, browser handler.BrowserStatus, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(gin.Logger())

	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(browser, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Runs
	protected.POST("/runs", handler.PostRun(r))
	protected.GET("/runs", handler.ListRuns(r))
	protected.GET("/runs/:id", handler.GetRun(r))

	// Extracted staff
	protected.GET("/targets/:id/staff", handler.Staff(st))

	return e
}
