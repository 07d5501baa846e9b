package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/vebops/store/internal/config"
	"github.com/vebops/store/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	Admin       *AdminService
	Material    *MaterialService
	Bom         *BomService
	Inventory   *InventoryService
	Procurement *ProcurementService
	Workspace   *WorkspaceService
}

func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, repos *repository.Repositories, logger *zap.Logger) *Services {
	auth := NewAuthService(cfg, rdb, repos, logger)
	admin := NewAdminService(db, repos, logger)
	material := NewMaterialService(db, repos, logger)
	bom := NewBomService(db, repos, logger)
	inventory := NewInventoryService(db, repos, logger)
	procurement := NewProcurementService(db, repos, logger)
	workspace := NewWorkspaceService(repos, inventory, logger)

	return &Services{
		Auth:        auth,
		Admin:       admin,
		Material:    material,
		Bom:         bom,
		Inventory:   inventory,
		Procurement: procurement,
		Workspace:   workspace,
	}
}
