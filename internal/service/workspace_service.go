package service

import (
	"context"
	"errors"

	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"github.com/vebops/store/internal/stock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkspaceService 登录后的一次性工作区快照与物料维度历史
type WorkspaceService struct {
	repos     *repository.Repositories
	inventory *InventoryService
	logger    *zap.Logger
}

func NewWorkspaceService(repos *repository.Repositories, inventory *InventoryService, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{repos: repos, inventory: inventory, logger: logger}
}

// BootstrapDTO 工作区快照。bom按项目ID给出汇总行。
type BootstrapDTO struct {
	User                UserDTO                `json:"user"`
	Projects            []ProjectDTO           `json:"projects"`
	AssignedProjects    []ProjectDTO           `json:"assignedProjects"`
	Materials           []MaterialDTO          `json:"materials"`
	Bom                 map[string][]BomRowDTO `json:"bom"`
	InwardHistory       []InwardDTO            `json:"inwardHistory"`
	OutwardHistory      []OutwardDTO           `json:"outwardHistory"`
	TransferHistory     []TransferDTO          `json:"transferHistory"`
	ProcurementRequests []ProcurementDTO       `json:"procurementRequests"`
	InventoryCodes      InventoryCodesDTO      `json:"inventoryCodes"`
}

// MovementsDTO 单个物料的出入库与调拨历史
type MovementsDTO struct {
	Inwards   []InwardDTO   `json:"inwards"`
	Outwards  []OutwardDTO  `json:"outwards"`
	Transfers []TransferDTO `json:"transfers"`
}

// Bootstrap 组装快照。历史与BOM按用户可见项目过滤。
func (s *WorkspaceService) Bootstrap(ctx context.Context, user *entity.UserAccount) (*BootstrapDTO, error) {
	allProjects, err := s.repos.Project.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := visibleProjects(user, allProjects)
	visibleIDs := make(map[string]struct{}, len(visible))
	for _, project := range visible {
		visibleIDs[project.ID] = struct{}{}
	}

	materials, err := s.repos.Material.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := s.repos.Bom.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	inwards, err := s.repos.Inward.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	outwards, err := s.repos.Outward.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	transfers, err := s.repos.Transfer.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}

	bom := make(map[string][]BomRowDTO, len(visible))
	for _, project := range visible {
		rows := stock.Reconcile(project.ID, allocations, inwards, outwards, transfers)
		bom[project.ID] = toBomRowDTOs(rows)
	}

	visibleInwards := make([]entity.InwardRecord, 0, len(inwards))
	for _, rec := range inwards {
		if _, ok := visibleIDs[rec.ProjectID]; ok {
			visibleInwards = append(visibleInwards, rec)
		}
	}
	visibleOutwards := make([]entity.OutwardRegister, 0, len(outwards))
	for _, reg := range outwards {
		if _, ok := visibleIDs[reg.ProjectID]; ok {
			visibleOutwards = append(visibleOutwards, reg)
		}
	}
	visibleTransfers := make([]entity.TransferRecord, 0, len(transfers))
	for _, rec := range transfers {
		_, fromOK := visibleIDs[rec.FromProjectID]
		_, toOK := visibleIDs[rec.ToProjectID]
		if fromOK || toOK {
			visibleTransfers = append(visibleTransfers, rec)
		}
	}

	requests, err := s.repos.Procurement.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	visibleRequests := requests
	if !ReviewerRole(user.Role) {
		visibleRequests = make([]entity.ProcurementRequest, 0, len(requests))
		for _, request := range requests {
			if request.RequestedByID == user.ID {
				visibleRequests = append(visibleRequests, request)
			}
		}
	}

	codes, err := s.inventory.NextCodes(ctx)
	if err != nil {
		return nil, err
	}

	return &BootstrapDTO{
		User:                toUserDTO(user),
		Projects:            toProjectDTOs(visible),
		AssignedProjects:    toProjectDTOs(user.Projects),
		Materials:           toMaterialDTOs(materials),
		Bom:                 bom,
		InwardHistory:       toInwardDTOs(visibleInwards),
		OutwardHistory:      toOutwardDTOs(visibleOutwards),
		TransferHistory:     toTransferDTOs(visibleTransfers),
		ProcurementRequests: toProcurementDTOs(visibleRequests),
		InventoryCodes:      *codes,
	}, nil
}

// MaterialInwards 某物料的入库历史，行过滤到该物料
func (s *WorkspaceService) MaterialInwards(ctx context.Context, materialID string) ([]InwardDTO, error) {
	if _, err := s.repos.Material.FindByID(ctx, materialID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Material not found")
		}
		return nil, err
	}
	records, err := s.repos.Inward.FindByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return filterInwardLines(records, materialID), nil
}

// MaterialMovements 某物料的出入库与调拨历史
func (s *WorkspaceService) MaterialMovements(ctx context.Context, materialID string) (*MovementsDTO, error) {
	inwards, err := s.MaterialInwards(ctx, materialID)
	if err != nil {
		return nil, err
	}
	registers, err := s.repos.Outward.FindByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	transferRecords, err := s.repos.Transfer.FindByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	outwards := make([]OutwardDTO, 0, len(registers))
	for i := range registers {
		dto := toOutwardDTO(&registers[i])
		filtered := dto.Lines[:0]
		for _, line := range dto.Lines {
			if line.MaterialID == materialID {
				filtered = append(filtered, line)
			}
		}
		dto.Lines = filtered
		outwards = append(outwards, dto)
	}

	transfers := make([]TransferDTO, 0, len(transferRecords))
	for i := range transferRecords {
		dto := toTransferDTO(&transferRecords[i])
		filtered := dto.Lines[:0]
		for _, line := range dto.Lines {
			if line.MaterialID == materialID {
				filtered = append(filtered, line)
			}
		}
		dto.Lines = filtered
		transfers = append(transfers, dto)
	}
	return &MovementsDTO{Inwards: inwards, Outwards: outwards, Transfers: transfers}, nil
}

func filterInwardLines(records []entity.InwardRecord, materialID string) []InwardDTO {
	out := make([]InwardDTO, 0, len(records))
	for i := range records {
		dto := toInwardDTO(&records[i])
		filtered := dto.Lines[:0]
		for _, line := range dto.Lines {
			if line.MaterialID == materialID {
				filtered = append(filtered, line)
			}
		}
		dto.Lines = filtered
		out = append(out, dto)
	}
	return out
}

// visibleProjects ALL看全部，PROJECTS只看分配的
func visibleProjects(user *entity.UserAccount, all []entity.Project) []entity.Project {
	if user.AccessType == entity.AccessAll {
		return all
	}
	return user.Projects
}
