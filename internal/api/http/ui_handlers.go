package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/shared/id"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
	"github.com/GriffinCanCode/uilayers/internal/shared/utils"
)

type openFunc func(m *ui.Manager, tag string, args any) (*ui.Instance, error)

// GetState returns the full presentation snapshot and statistics
func (h *Handlers) GetState(c *gin.Context) {
	var (
		snap  types.Snapshot
		stats types.Stats
	)
	if err := h.do(c, func(m *ui.Manager) error {
		snap = m.Snapshot()
		stats = m.Stats()
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": snap,
		"stats": stats,
	})
}

// GetInstance returns one live instance
func (h *Handlers) GetInstance(c *gin.Context) {
	handle, err := id.ParseInstanceID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}

	var info types.InstanceInfo
	if err := h.do(c, func(m *ui.Manager) error {
		inst, ok := m.Get(handle)
		if !ok {
			return errInstanceNotFound
		}
		info = m.Describe(inst)
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, types.OpenResponse{Instance: info})
}

// OpenExclusive replaces the exclusive slot
func (h *Handlers) OpenExclusive(c *gin.Context) {
	h.open(c, (*ui.Manager).OpenExclusive)
}

// OpenPanel pushes a panel
func (h *Handlers) OpenPanel(c *gin.Context) {
	h.open(c, (*ui.Manager).OpenPanel)
}

// OpenOverlay adds an overlay
func (h *Handlers) OpenOverlay(c *gin.Context) {
	h.open(c, (*ui.Manager).OpenOverlay)
}

func (h *Handlers) open(c *gin.Context, fn openFunc) {
	var req types.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateTag(req.Tag); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateArgs(req.Args); err != nil {
		badRequest(c, err)
		return
	}

	// Keep a nil map from becoming a non-nil interface
	var args any
	if req.Args != nil {
		args = req.Args
	}

	var info types.InstanceInfo
	if err := h.do(c, func(m *ui.Manager) error {
		inst, err := fn(m, req.Tag, args)
		if err != nil {
			return err
		}
		info = m.Describe(inst)
		return nil
	}); err != nil {
		respondError(c, err, http.StatusUnprocessableEntity)
		return
	}

	c.JSON(http.StatusCreated, types.OpenResponse{Instance: info})
}

// CloseExclusive closes the exclusive instance if any
func (h *Handlers) CloseExclusive(c *gin.Context) {
	h.closeOne(c, func(m *ui.Manager) *ui.Instance {
		inst := m.Exclusive()
		m.CloseExclusive()
		return inst
	})
}

// CloseTopPanel pops the top panel if any
func (h *Handlers) CloseTopPanel(c *gin.Context) {
	h.closeOne(c, func(m *ui.Manager) *ui.Instance {
		inst := m.TopPanel()
		m.CloseTopPanel()
		return inst
	})
}

func (h *Handlers) closeOne(c *gin.Context, fn func(*ui.Manager) *ui.Instance) {
	var resp types.CloseResponse
	if err := h.do(c, func(m *ui.Manager) error {
		if inst := fn(m); inst != nil {
			resp.Success = true
			resp.InstanceID = inst.ID().String()
		}
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CloseAllPanels empties the panel stack top to bottom
func (h *Handlers) CloseAllPanels(c *gin.Context) {
	var closed int
	if err := h.do(c, func(m *ui.Manager) error {
		closed = m.PanelDepth()
		m.CloseAllPanels()
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"closed":  closed,
	})
}

// ResumeTopPanel resumes a top panel left paused by a failed open
func (h *Handlers) ResumeTopPanel(c *gin.Context) {
	var resumed bool
	if err := h.do(c, func(m *ui.Manager) error {
		resumed = m.ResumeTopPanel()
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumed": resumed})
}

// CloseInstance routes a close for any live instance through the router
func (h *Handlers) CloseInstance(c *gin.Context) {
	handle, err := id.ParseInstanceID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.do(c, func(m *ui.Manager) error {
		if !m.CloseByID(handle) {
			return errInstanceNotFound
		}
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, types.CloseResponse{Success: true, InstanceID: handle.String()})
}

// Reset closes every instance on every layer
func (h *Handlers) Reset(c *gin.Context) {
	var before types.Stats
	if err := h.do(c, func(m *ui.Manager) error {
		before = m.Stats()
		m.Reset()
		return nil
	}); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	closed := before.PanelDepth + before.Overlays
	if before.ExclusiveOccupied {
		closed++
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"closed":  closed,
	})
}
