package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every control-plane endpoint on r
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Presentation state
	r.GET("/ui", h.GetState)
	r.DELETE("/ui", h.Reset)
	r.GET("/ui/:id", h.GetInstance)
	r.DELETE("/ui/:id", h.CloseInstance)

	r.POST("/ui/exclusive", h.OpenExclusive)
	r.DELETE("/ui/exclusive", h.CloseExclusive)

	r.POST("/ui/panels", h.OpenPanel)
	r.DELETE("/ui/panels", h.CloseAllPanels)
	r.DELETE("/ui/panels/top", h.CloseTopPanel)
	r.POST("/ui/panels/resume", h.ResumeTopPanel)

	r.POST("/ui/overlays", h.OpenOverlay)

	// Template registry
	r.GET("/templates", h.ListTemplates)
	r.POST("/templates", h.RegisterTemplate)
	r.POST("/templates/reload", h.ReloadCatalog)
	r.GET("/templates/:tag", h.GetTemplate)
	r.DELETE("/templates/:tag", h.UnregisterTemplate)

	// Renderer logs
	r.POST("/logs", h.StreamLogs)

	// Metrics
	r.GET("/metrics", h.Metrics)
	r.GET("/metrics/json", h.MetricsJSON)
}
