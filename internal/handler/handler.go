package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/middleware"
	"github.com/vebops/store/internal/service"
	"go.uber.org/zap"
)

// Handlers 处理器集合
type Handlers struct {
	Auth        *AuthHandler
	Workspace   *WorkspaceHandler
	Bom         *BomHandler
	Inventory   *InventoryHandler
	Procurement *ProcurementHandler
	Material    *MaterialHandler
	Admin       *AdminHandler
}

func NewHandlers(services *service.Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(services.Auth),
		Workspace:   NewWorkspaceHandler(services.Workspace),
		Bom:         NewBomHandler(services.Bom),
		Inventory:   NewInventoryHandler(services.Inventory),
		Procurement: NewProcurementHandler(services.Procurement),
		Material:    NewMaterialHandler(services.Material),
		Admin:       NewAdminHandler(services.Admin),
	}
}

// RegisterRoutes 挂载全部路由。除登录外都要求X-Auth-Token。
func (h *Handlers) RegisterRoutes(r *gin.Engine, auth *service.AuthService) {
	api := r.Group("/api")

	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.TokenAuth(auth))
	{
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.GET("/auth/session", h.Auth.Session)

		authed.GET("/app/bootstrap", h.Workspace.Bootstrap)
		authed.GET("/app/materials/:id/inwards", h.Workspace.MaterialInwards)
		authed.GET("/app/materials/:id/movements", h.Workspace.MaterialMovements)

		bom := authed.Group("/bom")
		bom.Use(middleware.RequireRoles(
			entity.RoleAdmin, entity.RoleCEO, entity.RoleCOO, entity.RoleProjectHead))
		{
			bom.GET("/projects/:id", h.Bom.ProjectRows)
			bom.POST("/projects/:id/materials", h.Bom.Assign)
			bom.PUT("/projects/:id/materials/:materialId", h.Bom.UpdateQuantity)
			bom.DELETE("/projects/:id/materials/:materialId", h.Bom.Remove)
		}

		authed.GET("/inventory/codes", h.Inventory.Codes)
		authed.POST("/inwards", h.Inventory.RegisterInward)
		authed.POST("/outwards", h.Inventory.RegisterOutward)
		authed.PUT("/outwards/:id", h.Inventory.UpdateOutward)
		authed.POST("/transfers", h.Inventory.RegisterTransfer)

		authed.GET("/procurement/requests", h.Procurement.List)
		authed.POST("/procurement/requests", h.Procurement.Create)
		authed.POST("/procurement/requests/:id/decision", h.Procurement.Decide)

		authed.GET("/materials", h.Material.List)
		authed.GET("/materials/search", h.Material.Search)
		authed.GET("/materials/filters", h.Material.Filters)
		authed.GET("/materials/export", h.Material.Export)

		materialAdmin := authed.Group("/materials")
		materialAdmin.Use(middleware.RequireRoles(
			entity.RoleAdmin, entity.RoleCEO, entity.RoleCOO))
		{
			materialAdmin.POST("", h.Material.Create)
			materialAdmin.PUT("/:id", h.Material.Update)
			materialAdmin.DELETE("/:id", h.Material.Delete)
			materialAdmin.POST("/import", h.Material.Import)
		}

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRoles(
			entity.RoleAdmin, entity.RoleCEO, entity.RoleCOO))
		{
			admin.GET("/projects", h.Admin.ListProjects)
			admin.GET("/projects/search", h.Admin.SearchProjects)
			admin.GET("/projects/filters", h.Admin.ProjectFilters)
			admin.POST("/projects", h.Admin.CreateProject)
			admin.PUT("/projects/:id", h.Admin.UpdateProject)
			admin.DELETE("/projects/:id", h.Admin.DeleteProject)

			admin.GET("/users", h.Admin.SearchUsers)
			admin.GET("/users/search", h.Admin.SearchUsers)
			admin.POST("/users", h.Admin.CreateUser)
			admin.PUT("/users/:id", h.Admin.UpdateUser)
			admin.DELETE("/users/:id", h.Admin.DeleteUser)

			admin.GET("/analytics", h.Admin.Analytics)
		}
	}
}

// Fail 错误响应，message原样给前端
func Fail(c *gin.Context, err error) {
	c.JSON(service.StatusOf(err), gin.H{"message": err.Error()})
}

// BadRequestMessage 请求体解析失败
func BadRequestMessage(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// GetPagination 解析page/size查询参数
func GetPagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

// QueryList 逗号分隔的多值查询参数
func QueryList(c *gin.Context, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
