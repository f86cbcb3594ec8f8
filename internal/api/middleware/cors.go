package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/uilayers/internal/infrastructure/config"
	"github.com/GriffinCanCode/uilayers/internal/infrastructure/tracing"
)

// Methods used by the UI routes
var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}

// CORS allows browser dashboards on the configured origins to drive the API.
// An empty origin list or "*" opens the API to any origin.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	traceHeaders := []string{tracing.HeaderTraceID, tracing.HeaderSpanID}

	c := cors.Config{
		AllowMethods:     corsMethods,
		AllowHeaders:     append([]string{"Origin", "Content-Type", "Accept", "Cache-Control"}, traceHeaders...),
		ExposeHeaders:    traceHeaders,
		AllowCredentials: cfg.AllowCredentials,
		AllowWebSockets:  true,
		MaxAge:           cfg.MaxAge,
	}
	if anyOrigin(cfg.AllowedOrigins) {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(c)
}

func anyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
