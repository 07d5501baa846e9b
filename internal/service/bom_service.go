package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"github.com/vebops/store/internal/stock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BomService 项目BOM分配维护与汇总行查询
type BomService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewBomService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *BomService {
	return &BomService{db: db, repos: repos, logger: logger}
}

type AllocationRequest struct {
	MaterialID string  `json:"materialId"`
	Quantity   float64 `json:"quantity"`
}

// ProjectRows 某项目的物料汇总行
func (s *BomService) ProjectRows(ctx context.Context, projectID string) ([]BomRowDTO, error) {
	if _, err := s.repos.Project.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Project not found")
		}
		return nil, err
	}

	allocations, err := s.repos.Bom.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	inwards, err := s.repos.Inward.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	outwards, err := s.repos.Outward.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	transfers, err := s.repos.Transfer.FindTouchingProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rows := stock.Reconcile(projectID, allocations, inwards, outwards, transfers)
	return toBomRowDTOs(rows), nil
}

// Assign 给项目分配物料需求量
func (s *BomService) Assign(ctx context.Context, projectID string, req AllocationRequest) (*BomRowDTO, error) {
	if req.MaterialID == "" {
		return nil, BadRequest("Material is required")
	}
	if req.Quantity < 0 {
		return nil, BadRequest("Quantity cannot be negative")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		if _, err := repos.Project.FindByID(ctx, projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Project not found")
			}
			return err
		}
		material, err := repos.Material.FindByID(ctx, req.MaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Material not found")
			}
			return err
		}
		if _, err := repos.Bom.FindByProjectAndMaterial(ctx, projectID, req.MaterialID); err == nil {
			return Conflict(fmt.Sprintf("Material %s is already allocated to this project", material.Name))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		line := entity.BomLine{
			ID:         uuid.New().String(),
			ProjectID:  projectID,
			MaterialID: req.MaterialID,
			Quantity:   req.Quantity,
		}
		if err := repos.Bom.Create(ctx, &line); err != nil {
			return err
		}

		material.RequiredQty += req.Quantity
		if err := repos.Material.Save(ctx, material); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.rowFor(ctx, projectID, req.MaterialID)
}

// UpdateQuantity 调整分配量，物料全局需求量按差额同步
func (s *BomService) UpdateQuantity(ctx context.Context, projectID, materialID string, quantity float64) (*BomRowDTO, error) {
	if quantity < 0 {
		return nil, BadRequest("Quantity cannot be negative")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		line, err := repos.Bom.FindByProjectAndMaterial(ctx, projectID, materialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Allocation not found")
			}
			return err
		}
		material, err := repos.Material.FindByID(ctx, materialID)
		if err != nil {
			return err
		}

		delta := quantity - line.Quantity
		line.Quantity = quantity
		line.Material = nil
		if err := repos.Bom.Save(ctx, line); err != nil {
			return err
		}

		material.RequiredQty += delta
		if material.RequiredQty < 0 {
			material.RequiredQty = 0
		}
		return repos.Material.Save(ctx, material)
	})
	if err != nil {
		return nil, err
	}
	return s.rowFor(ctx, projectID, materialID)
}

// Remove 取消分配。已有流水的物料不允许移除。
func (s *BomService) Remove(ctx context.Context, projectID, materialID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		line, err := repos.Bom.FindByProjectAndMaterial(ctx, projectID, materialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Allocation not found")
			}
			return err
		}
		material, err := repos.Material.FindByID(ctx, materialID)
		if err != nil {
			return err
		}

		received, err := repos.Inward.SumReceivedQty(ctx, projectID, materialID)
		if err != nil {
			return err
		}
		ordered, err := repos.Inward.SumOrderedQty(ctx, projectID, materialID)
		if err != nil {
			return err
		}
		issued, err := repos.Outward.SumIssuedQty(ctx, projectID, materialID)
		if err != nil {
			return err
		}
		if received > 0 || ordered > 0 || issued > 0 {
			return BadRequest(fmt.Sprintf("Material %s has recorded movements and cannot be removed", material.Name))
		}

		if err := repos.Bom.Delete(ctx, line.ID); err != nil {
			return err
		}
		material.RequiredQty -= line.Quantity
		if material.RequiredQty < 0 {
			material.RequiredQty = 0
		}
		return repos.Material.Save(ctx, material)
	})
}

func (s *BomService) rowFor(ctx context.Context, projectID, materialID string) (*BomRowDTO, error) {
	rows, err := s.ProjectRows(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].MaterialID == materialID {
			return &rows[i], nil
		}
	}
	return nil, NotFound("Allocation not found")
}
