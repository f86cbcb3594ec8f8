package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxLogEntries caps one renderer log batch
const MaxLogEntries = 500

// RendererLogEntry is one log line produced by a renderer drawing the layers
type RendererLogEntry struct {
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	InstanceID string                 `json:"instance_id,omitempty"`
	Tag        string                 `json:"tag,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Timestamp  string                 `json:"timestamp,omitempty"`
}

// RendererLogRequest is a batch of renderer log entries
type RendererLogRequest struct {
	Renderer string             `json:"renderer" binding:"required"`
	Entries  []RendererLogEntry `json:"entries"`
}

// StreamLogs forwards renderer logs into the host's structured log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req RendererLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log request format"})
		return
	}
	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No log entries provided"})
		return
	}
	if len(req.Entries) > MaxLogEntries {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many log entries"})
		return
	}

	logger := h.logger.Named("renderer").With(zap.String("renderer", req.Renderer))
	for _, entry := range req.Entries {
		h.logRendererEntry(logger, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}

func (h *Handlers) logRendererEntry(logger *zap.Logger, entry RendererLogEntry) {
	level := zapcore.InfoLevel
	switch entry.Level {
	case "error":
		level = zapcore.ErrorLevel
	case "warn":
		level = zapcore.WarnLevel
	case "debug", "verbose":
		level = zapcore.DebugLevel
	}

	ce := logger.Check(level, entry.Message)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(entry.Context)+3)
	if entry.InstanceID != "" {
		fields = append(fields, zap.String("instance_id", entry.InstanceID))
	}
	if entry.Tag != "" {
		fields = append(fields, zap.String("tag", entry.Tag))
	}
	if entry.Timestamp != "" {
		fields = append(fields, zap.String("renderer_timestamp", entry.Timestamp))
	}
	for key, value := range entry.Context {
		fields = append(fields, zap.Any(key, value))
	}
	ce.Write(fields...)
}
