package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/database"
	"github.com/pageza/recipewizard/backend/internal/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports process and dependency health. Redis is optional.
type HealthHandler struct {
	db          *gorm.DB
	redis       *redis.Client
	version     string
	environment string
	started     time.Time
	log         *logger.Logger
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, version, environment string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redis:       redisClient,
		version:     version,
		environment: environment,
		started:     time.Now(),
		log:         log.With("handler", "health"),
	}
}

func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/health/live", h.Live)
	router.GET("/health/ready", h.Ready)
	router.GET("/api/database/health", h.Database)
}

func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "connected"
	if err := h.pingDB(c.Request.Context()); err != nil {
		dbStatus = "disconnected"
	}
	status := "healthy"
	if dbStatus != "connected" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"version":        h.version,
		"environment":    h.environment,
		"database":       dbStatus,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"timestamp":      time.Now().UTC(),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now().UTC()})
}

// Ready answers 503 until every configured dependency responds.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	ready := true

	if err := h.pingDB(ctx); err != nil {
		h.log.Warn("Readiness check failed", "dependency", "database", "error", err)
		checks["database"] = "unavailable"
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.pingRedis(ctx); err != nil {
			h.log.Warn("Readiness check failed", "dependency", "redis", "error", err)
			checks["redis"] = "unavailable"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks, "timestamp": time.Now().UTC()})
}

func (h *HealthHandler) Database(c *gin.Context) {
	start := time.Now()
	err := h.pingDB(c.Request.Context())
	resp := gin.H{
		"healthy":          err == nil,
		"driver":           h.db.Dialector.Name(),
		"response_time_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		resp["error"] = "database unreachable"
	}
	if sqlDB, dbErr := h.db.DB(); dbErr == nil {
		stats := sqlDB.Stats()
		resp["pool"] = gin.H{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"max_open":         stats.MaxOpenConnections,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return database.HealthCheck(ctx, h.db)
}

func (h *HealthHandler) pingRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return h.redis.Ping(ctx).Err()
}
