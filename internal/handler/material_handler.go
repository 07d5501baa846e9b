package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/service"
)

type MaterialHandler struct {
	material *service.MaterialService
}

func NewMaterialHandler(material *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{material: material}
}

// List GET /api/materials
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.material.List(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

// Search GET /api/materials/search
func (h *MaterialHandler) Search(c *gin.Context) {
	page, size := GetPagination(c)
	result, err := h.material.Search(c.Request.Context(), service.MaterialSearchRequest{
		Search:     c.Query("search"),
		Categories: QueryList(c, "categories"),
		LineTypes:  QueryList(c, "lineTypes"),
		Page:       page,
		Size:       size,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Filters GET /api/materials/filters
func (h *MaterialHandler) Filters(c *gin.Context) {
	filters, err := h.material.Filters(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// Create POST /api/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req service.MaterialUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	material, err := h.material.Create(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

// Update PUT /api/materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	var req service.MaterialUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	material, err := h.material.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

// Delete DELETE /api/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.material.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import POST /api/materials/import (multipart, 字段名file)
func (h *MaterialHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequestMessage(c, "XLSX file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		BadRequestMessage(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.material.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export GET /api/materials/export
func (h *MaterialHandler) Export(c *gin.Context) {
	file, err := h.material.ExportXLSX(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("materials-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		Fail(c, err)
	}
}
