package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/domain/registry"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// ListTemplates lists template metadata, optionally filtered by ?kind=
func (h *Handlers) ListTemplates(c *gin.Context) {
	var kind *types.TemplateKind
	if k := c.Query("kind"); k != "" {
		tk := types.TemplateKind(k)
		kind = &tk
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": h.registry.ListMetadata(kind),
		"stats":     h.registry.Stats(),
	})
}

// GetTemplate returns one template in full
func (h *Handlers) GetTemplate(c *gin.Context) {
	tmpl, ok := h.registry.Get(c.Param("tag"))
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: registry.ErrTemplateNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// RegisterTemplate validates and stores a template, replacing one with the same tag
func (h *Handlers) RegisterTemplate(c *gin.Context) {
	var tmpl types.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		badRequest(c, err)
		return
	}
	// Source is owned by the registry; API templates never belong to a catalog
	tmpl.Source = ""

	stored, err := h.registry.Register(tmpl)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	h.syncTemplateCount()

	h.logger.Info("Template registered via API",
		zap.String("tag", stored.Tag),
		zap.String("kind", string(stored.Kind)))
	c.JSON(http.StatusCreated, stored)
}

// UnregisterTemplate removes a template. Live instances built from it stay open.
func (h *Handlers) UnregisterTemplate(c *gin.Context) {
	tag := c.Param("tag")
	if !h.registry.Unregister(tag) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: registry.ErrTemplateNotFound.Error()})
		return
	}
	h.syncTemplateCount()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tag":     tag,
	})
}

// ReloadCatalog re-seeds the registry from the configured catalog
func (h *Handlers) ReloadCatalog(c *gin.Context) {
	if h.seeder == nil || h.catalog == "" {
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: "no catalog configured"})
		return
	}

	res, err := h.seeder.Seed(c.Request.Context(), h.catalog)
	if h.metrics != nil {
		h.metrics.RecordCatalogReload(err)
	}
	if err != nil {
		respondError(c, errors.Join(errors.New("catalog reload failed"), err), http.StatusBadGateway)
		return
	}
	h.syncTemplateCount()

	c.JSON(http.StatusOK, res)
}

func (h *Handlers) syncTemplateCount() {
	if h.metrics != nil {
		h.metrics.SetRegistryTemplates(h.registry.Stats().TotalTemplates)
	}
}
