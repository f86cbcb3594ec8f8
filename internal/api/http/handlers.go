package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/domain/frame"
	"github.com/GriffinCanCode/uilayers/internal/domain/registry"
	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// errInstanceNotFound is returned when a handle names no live instance
var errInstanceNotFound = errors.New("instance not found")

// Handlers contains all HTTP handlers
type Handlers struct {
	loop     *frame.Loop
	registry *registry.Registry
	seeder   *registry.Seeder
	catalog  string
	metrics  *monitoring.Metrics
	breakers *resilience.Group
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. metrics and breakers may be nil.
func NewHandlers(
	loop *frame.Loop,
	reg *registry.Registry,
	metrics *monitoring.Metrics,
	breakers *resilience.Group,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		loop:     loop,
		registry: reg,
		metrics:  metrics,
		breakers: breakers,
		logger:   logger,
	}
}

// WithCatalog enables POST /templates/reload for the given catalog source
func (h *Handlers) WithCatalog(seeder *registry.Seeder, source string) *Handlers {
	h.seeder = seeder
	h.catalog = source
	return h
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "uilayers",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	var stats types.Stats
	err := h.loop.Do(c.Request.Context(), func(m *ui.Manager) error {
		stats = m.Stats()
		return nil
	})

	body := gin.H{
		"status":   "healthy",
		"frames":   h.loop.Frames(),
		"registry": h.registry.Stats(),
	}
	if h.breakers != nil {
		body["quarantined"] = h.breakers.Tripped()
	}
	if err != nil {
		body["status"] = "degraded"
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["ui"] = stats
	c.JSON(http.StatusOK, body)
}

// do runs fn on the frame loop with the request context
func (h *Handlers) do(c *gin.Context, fn func(*ui.Manager) error) error {
	return h.loop.Do(c.Request.Context(), fn)
}

// statusFor maps domain errors onto HTTP status codes. fallback applies to
// anything unrecognized.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, registry.ErrTemplateNotFound), errors.Is(err, errInstanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrLayerNotAllowed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, registry.ErrTemplateQuarantined), errors.Is(err, frame.ErrLoopStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return fallback
	}
}

func respondError(c *gin.Context, err error, fallback int) {
	_ = c.Error(err)
	c.JSON(statusFor(err, fallback), types.ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
}
