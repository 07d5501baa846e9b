package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/middleware"
	"github.com/vebops/store/internal/service"
)

type ProcurementHandler struct {
	procurement *service.ProcurementService
}

func NewProcurementHandler(procurement *service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{procurement: procurement}
}

// List GET /api/procurement/requests
func (h *ProcurementHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	requests, err := h.procurement.List(c.Request.Context(), user)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Create POST /api/procurement/requests
func (h *ProcurementHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	var req service.ProcurementCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	created, err := h.procurement.Create(c.Request.Context(), user, req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Decide POST /api/procurement/requests/:id/decision
func (h *ProcurementHandler) Decide(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	var req service.ProcurementDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	resolved, err := h.procurement.Decide(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}
