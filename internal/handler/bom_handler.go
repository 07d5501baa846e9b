package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/service"
)

type BomHandler struct {
	bom *service.BomService
}

func NewBomHandler(bom *service.BomService) *BomHandler {
	return &BomHandler{bom: bom}
}

// ProjectRows GET /api/bom/projects/:id
func (h *BomHandler) ProjectRows(c *gin.Context) {
	rows, err := h.bom.ProjectRows(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Assign POST /api/bom/projects/:id/materials
func (h *BomHandler) Assign(c *gin.Context) {
	var req service.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	row, err := h.bom.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

type quantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

// UpdateQuantity PUT /api/bom/projects/:id/materials/:materialId
func (h *BomHandler) UpdateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		BadRequestMessage(c, "Quantity is required")
		return
	}
	row, err := h.bom.UpdateQuantity(c.Request.Context(), c.Param("id"), c.Param("materialId"), *req.Quantity)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Remove DELETE /api/bom/projects/:id/materials/:materialId
func (h *BomHandler) Remove(c *gin.Context) {
	if err := h.bom.Remove(c.Request.Context(), c.Param("id"), c.Param("materialId")); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
