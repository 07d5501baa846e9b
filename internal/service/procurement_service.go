package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProcurementService 追加分配申请流转
type ProcurementService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewProcurementService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *ProcurementService {
	return &ProcurementService{db: db, repos: repos, logger: logger}
}

type ProcurementCreateRequest struct {
	ProjectID         string  `json:"projectId"`
	MaterialID        string  `json:"materialId"`
	RequestedIncrease float64 `json:"requestedIncrease"`
	Reason            string  `json:"reason"`
}

type ProcurementDecisionRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

// ReviewerRole 可裁决申请的角色
func ReviewerRole(role string) bool {
	switch role {
	case entity.RoleAdmin, entity.RoleCEO, entity.RoleCOO, entity.RoleProcurementManager:
		return true
	}
	return false
}

// Create 提交申请，分配快照在此刻固化
func (s *ProcurementService) Create(ctx context.Context, user *entity.UserAccount, req ProcurementCreateRequest) (*ProcurementDTO, error) {
	if req.ProjectID == "" {
		return nil, BadRequest("Project is required")
	}
	if req.MaterialID == "" {
		return nil, BadRequest("Material is required")
	}
	if req.RequestedIncrease <= 0 {
		return nil, BadRequest("Requested increase must be greater than zero")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, BadRequest("Reason is required")
	}

	var requestID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		if _, err := repos.Project.FindByID(ctx, req.ProjectID); err != nil {
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
		allocation, err := repos.Bom.FindByProjectAndMaterial(ctx, req.ProjectID, req.MaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return BadRequest(fmt.Sprintf("Material %s is not allocated to this project", material.Name))
			}
			return err
		}

		request := entity.ProcurementRequest{
			ID:                  uuid.New().String(),
			ProjectID:           req.ProjectID,
			MaterialID:          req.MaterialID,
			CapturedRequiredQty: allocation.Quantity,
			RequestedIncrease:   req.RequestedIncrease,
			ProposedRequiredQty: allocation.Quantity + req.RequestedIncrease,
			Reason:              reason,
			Status:              entity.ProcurementPending,
			RequestedByID:       user.ID,
		}
		if err := repos.Procurement.Create(ctx, &request); err != nil {
			return err
		}
		requestID = request.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Procurement.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("procurement request created",
		zap.String("request_id", created.ID),
		zap.String("project_id", created.ProjectID),
		zap.String("material_id", created.MaterialID))
	dto := toProcurementDTO(created)
	return &dto, nil
}

// List 裁决角色看全部，其余只看自己提交的
func (s *ProcurementService) List(ctx context.Context, user *entity.UserAccount) ([]ProcurementDTO, error) {
	requests, err := s.repos.Procurement.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if ReviewerRole(user.Role) {
		return toProcurementDTOs(requests), nil
	}
	own := make([]entity.ProcurementRequest, 0, len(requests))
	for _, request := range requests {
		if request.RequestedByID == user.ID {
			own = append(own, request)
		}
	}
	return toProcurementDTOs(own), nil
}

// Decide 裁决。只有PENDING可裁决；批准即把分配提升到申请时的目标量。
func (s *ProcurementService) Decide(ctx context.Context, user *entity.UserAccount, id string, req ProcurementDecisionRequest) (*ProcurementDTO, error) {
	if !ReviewerRole(user.Role) {
		return nil, Forbidden("Not allowed to resolve procurement requests")
	}
	decision := strings.ToUpper(strings.TrimSpace(req.Decision))
	if decision != entity.ProcurementApproved && decision != entity.ProcurementRejected {
		return nil, BadRequest("Decision must be APPROVED or REJECTED")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		request, err := repos.Procurement.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Procurement request not found")
			}
			return err
		}
		if request.Status != entity.ProcurementPending {
			return BadRequest("Request has already been resolved")
		}

		if decision == entity.ProcurementApproved {
			allocation, err := repos.Bom.FindByProjectAndMaterial(ctx, request.ProjectID, request.MaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return BadRequest("Allocation no longer exists for this request")
				}
				return err
			}
			material, err := repos.Material.FindByID(ctx, request.MaterialID)
			if err != nil {
				return err
			}
			if request.ProposedRequiredQty > allocation.Quantity {
				delta := request.ProposedRequiredQty - allocation.Quantity
				allocation.Quantity = request.ProposedRequiredQty
				allocation.Material = nil
				if err := repos.Bom.Save(ctx, allocation); err != nil {
					return err
				}
				material.RequiredQty += delta
				if err := repos.Material.Save(ctx, material); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		request.Status = decision
		request.ResolvedByID = &user.ID
		request.ResolvedAt = &now
		request.ResolutionNote = strings.TrimSpace(req.Note)
		request.Project = nil
		request.Material = nil
		request.RequestedBy = nil
		request.ResolvedBy = nil
		return repos.Procurement.Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	resolved, err := s.repos.Procurement.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("procurement request resolved",
		zap.String("request_id", resolved.ID), zap.String("status", resolved.Status))
	dto := toProcurementDTO(resolved)
	return &dto, nil
}
