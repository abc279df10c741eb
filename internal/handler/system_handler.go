package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/careacademy/academy-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthTimeout = 3 * time.Second

// Pinger is a dependency the health check can probe.
type Pinger func(ctx context.Context) error

// SystemHandler reports process health.
type SystemHandler struct {
	checks    map[string]Pinger
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler probing the given dependencies,
// keyed by the name reported in the response.
func NewSystemHandler(checks map[string]Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Pings every dependency. Any failure turns the response into a 503.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	response.Success(c, status, gin.H{
		"status":       overall,
		"dependencies": deps,
		"uptime":       time.Since(h.startTime).Round(time.Second).String(),
	})
}
