package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/middleware"
	"github.com/vebops/store/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListProjects GET /api/admin/projects
func (h *AdminHandler) ListProjects(c *gin.Context) {
	projects, err := h.admin.ListProjects(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// SearchProjects GET /api/admin/projects/search
func (h *AdminHandler) SearchProjects(c *gin.Context) {
	page, size := GetPagination(c)
	result, err := h.admin.SearchProjects(c.Request.Context(), service.ProjectSearchRequest{
		Search:     c.Query("search"),
		Prefixes:   QueryList(c, "prefixes"),
		Allocation: c.Query("allocation"),
		Page:       page,
		Size:       size,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProjectFilters GET /api/admin/projects/filters
func (h *AdminHandler) ProjectFilters(c *gin.Context) {
	filters, err := h.admin.ProjectFilters(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// CreateProject POST /api/admin/projects
func (h *AdminHandler) CreateProject(c *gin.Context) {
	var req service.ProjectUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	project, err := h.admin.CreateProject(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject PUT /api/admin/projects/:id
func (h *AdminHandler) UpdateProject(c *gin.Context) {
	var req service.ProjectUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	project, err := h.admin.UpdateProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject DELETE /api/admin/projects/:id
func (h *AdminHandler) DeleteProject(c *gin.Context) {
	if err := h.admin.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchUsers GET /api/admin/users, /api/admin/users/search
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	page, size := GetPagination(c)
	result, err := h.admin.SearchUsers(c.Request.Context(), service.UserSearchRequest{
		Search:      c.Query("search"),
		Roles:       QueryList(c, "roles"),
		AccessTypes: QueryList(c, "accessTypes"),
		ProjectIDs:  QueryList(c, "projectIds"),
		Page:        page,
		Size:        size,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateUser POST /api/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req service.UserUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	user, err := h.admin.CreateUser(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser PUT /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req service.UserUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequestMessage(c, "Invalid request body")
		return
	}
	user, err := h.admin.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	if err := h.admin.DeleteUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Analytics GET /api/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	analytics, err := h.admin.Analytics(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
