package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/middleware"
	"github.com/vebops/store/internal/service"
)

type WorkspaceHandler struct {
	workspace *service.WorkspaceService
}

func NewWorkspaceHandler(workspace *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

// Bootstrap GET /api/app/bootstrap
func (h *WorkspaceHandler) Bootstrap(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	snapshot, err := h.workspace.Bootstrap(c.Request.Context(), user)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// MaterialInwards GET /api/app/materials/:id/inwards
func (h *WorkspaceHandler) MaterialInwards(c *gin.Context) {
	records, err := h.workspace.MaterialInwards(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// MaterialMovements GET /api/app/materials/:id/movements
func (h *WorkspaceHandler) MaterialMovements(c *gin.Context) {
	movements, err := h.workspace.MaterialMovements(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}
