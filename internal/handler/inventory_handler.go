package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/middleware"
	"github.com/vebops/store/internal/service"
)

type InventoryHandler struct {
	inventory *service.InventoryService
}

func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Codes GET /api/inventory/codes
func (h *InventoryHandler) Codes(c *gin.Context) {
	codes, err := h.inventory.NextCodes(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

// RegisterInward POST /api/inwards
func (h *InventoryHandler) RegisterInward(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	var req service.InwardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	record, err := h.inventory.RegisterInward(c.Request.Context(), user, req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// RegisterOutward POST /api/outwards
func (h *InventoryHandler) RegisterOutward(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	var req service.OutwardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	register, err := h.inventory.RegisterOutward(c.Request.Context(), user, req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, register)
}

// UpdateOutward PUT /api/outwards/:id
func (h *InventoryHandler) UpdateOutward(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	var req service.OutwardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	register, err := h.inventory.UpdateOutward(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, register)
}

// RegisterTransfer POST /api/transfers
func (h *InventoryHandler) RegisterTransfer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	var req service.TransferCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	record, err := h.inventory.RegisterTransfer(c.Request.Context(), user, req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
