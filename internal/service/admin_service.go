package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AllocationFilter 项目检索的分配维度筛选
const (
	AllocationFilterWith    = "WITH_ALLOCATIONS"
	AllocationFilterWithout = "WITHOUT_ALLOCATIONS"
)

// AdminService 项目/用户管理与分析面板
type AdminService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewAdminService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *AdminService {
	return &AdminService{db: db, repos: repos, logger: logger}
}

type ProjectUpsertRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type ProjectSearchRequest struct {
	Search     string
	Prefixes   []string
	Allocation string
	Page       int
	Size       int
}

type UserUpsertRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Role       string   `json:"role"`
	AccessType string   `json:"accessType"`
	ProjectIDs []string `json:"projectIds"`
}

type UserSearchRequest struct {
	Search      string
	Roles       []string
	AccessTypes []string
	ProjectIDs  []string
	Page        int
	Size        int
}

// NormalizePage 页码从1开始
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizeSize 每页最多100条
func NormalizeSize(size int) int {
	if size < 1 {
		return 20
	}
	if size > 100 {
		return 100
	}
	return size
}

func (s *AdminService) ListProjects(ctx context.Context) ([]ProjectDTO, error) {
	projects, err := s.repos.Project.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toProjectDTOs(projects), nil
}

func (s *AdminService) SearchProjects(ctx context.Context, req ProjectSearchRequest) (*PageDTO, error) {
	params := repository.ProjectSearchParams{
		Search:   strings.TrimSpace(req.Search),
		Prefixes: req.Prefixes,
		Page:     NormalizePage(req.Page),
		Size:     NormalizeSize(req.Size),
	}

	switch strings.ToUpper(strings.TrimSpace(req.Allocation)) {
	case AllocationFilterWith:
		ids, err := s.repos.Bom.ProjectIDsWithAllocations(ctx)
		if err != nil {
			return nil, err
		}
		params.ProjectIDs = ids
	case AllocationFilterWithout:
		ids, err := s.repos.Bom.ProjectIDsWithAllocations(ctx)
		if err != nil {
			return nil, err
		}
		params.ExcludeIDs = ids
	}

	projects, total, err := s.repos.Project.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	page := NewPageDTO(toProjectDTOs(projects), total, params.Page, params.Size)
	return &page, nil
}

func (s *AdminService) CreateProject(ctx context.Context, req ProjectUpsertRequest) (*ProjectDTO, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, BadRequest("Project code and name are required")
	}
	if _, err := s.repos.Project.FindByCode(ctx, code); err == nil {
		return nil, Conflict("Project code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	project := entity.Project{ID: uuid.New().String(), Code: code, Name: name}
	if err := s.repos.Project.Create(ctx, &project); err != nil {
		return nil, err
	}
	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("code", code))
	dto := toProjectDTO(&project)
	return &dto, nil
}

func (s *AdminService) UpdateProject(ctx context.Context, id string, req ProjectUpsertRequest) (*ProjectDTO, error) {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Project not found")
		}
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, BadRequest("Project code and name are required")
	}
	if existing, err := s.repos.Project.FindByCode(ctx, code); err == nil && existing.ID != id {
		return nil, Conflict("Project code already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	project.Code = code
	project.Name = name
	if err := s.repos.Project.Save(ctx, project); err != nil {
		return nil, err
	}
	dto := toProjectDTO(project)
	return &dto, nil
}

// DeleteProject 连同其BOM分配一起删除
func (s *AdminService) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.repos.Project.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Project not found")
		}
		return err
	}
	inwards, err := s.repos.Inward.FindByProject(ctx, id)
	if err != nil {
		return err
	}
	if len(inwards) > 0 {
		return BadRequest("Project has recorded movements and cannot be deleted")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Bom.DeleteByProject(ctx, id); err != nil {
			return err
		}
		return repos.Project.Delete(ctx, id)
	})
}

func (s *AdminService) SearchUsers(ctx context.Context, req UserSearchRequest) (*PageDTO, error) {
	params := repository.UserSearchParams{
		Search:      strings.TrimSpace(req.Search),
		Roles:       req.Roles,
		AccessTypes: req.AccessTypes,
		ProjectIDs:  req.ProjectIDs,
		Page:        NormalizePage(req.Page),
		Size:        NormalizeSize(req.Size),
	}
	users, total, err := s.repos.User.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, toUserDTO(&users[i]))
	}
	page := NewPageDTO(dtos, total, params.Page, params.Size)
	return &page, nil
}

func (s *AdminService) CreateUser(ctx context.Context, req UserUpsertRequest) (*UserDTO, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return nil, BadRequest("Name and email are required")
	}
	if req.Password == "" {
		return nil, BadRequest("Password is required")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = entity.RoleUser
	}
	if !entity.KnownRole(role) {
		return nil, BadRequest("Unknown role")
	}
	if _, err := s.repos.User.FindByEmail(ctx, email); err == nil {
		return nil, Conflict("Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := entity.UserAccount{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		AccessType:   resolveAccessType(role, req.AccessType),
	}
	if err := s.repos.User.Create(ctx, &user); err != nil {
		return nil, err
	}
	if err := s.assignProjects(ctx, &user, req.ProjectIDs); err != nil {
		return nil, err
	}

	created, err := s.repos.User.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", role))
	dto := toUserDTO(created)
	return &dto, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id string, req UserUpsertRequest) (*UserDTO, error) {
	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(req.Email); email != "" && !strings.EqualFold(email, user.Email) {
		if existing, err := s.repos.User.FindByEmail(ctx, email); err == nil && existing.ID != id {
			return nil, Conflict("Email already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if req.Role != "" {
		role := strings.ToUpper(strings.TrimSpace(req.Role))
		if !entity.KnownRole(role) {
			return nil, BadRequest("Unknown role")
		}
		user.Role = role
	}
	user.AccessType = resolveAccessType(user.Role, req.AccessType)
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.Projects = nil
	if err := s.repos.User.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.assignProjects(ctx, user, req.ProjectIDs); err != nil {
		return nil, err
	}

	updated, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(updated)
	return &dto, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actor *entity.UserAccount, id string) error {
	if actor.ID == id {
		return BadRequest("You cannot delete your own account")
	}
	if _, err := s.repos.User.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("User not found")
		}
		return err
	}
	return s.repos.User.Delete(ctx, id)
}

// Analytics 管理面板计数
func (s *AdminService) Analytics(ctx context.Context) (*AnalyticsDTO, error) {
	totalProjects, err := s.repos.Project.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalMaterials, err := s.repos.Material.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.repos.User.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalInwards, err := s.repos.Inward.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalOutwards, err := s.repos.Outward.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalTransfers, err := s.repos.Transfer.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repos.Procurement.CountByStatus(ctx, entity.ProcurementPending)
	if err != nil {
		return nil, err
	}
	received, utilized, err := s.repos.Material.GlobalTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &AnalyticsDTO{
		TotalProjects:    totalProjects,
		TotalMaterials:   totalMaterials,
		TotalUsers:       totalUsers,
		TotalInwards:     totalInwards,
		TotalOutwards:    totalOutwards,
		TotalTransfers:   totalTransfers,
		PendingRequests:  pending,
		TotalReceivedQty: received,
		TotalUtilizedQty: utilized,
	}, nil
}

// ProjectFilters 项目检索的筛选项（编码首字母）
func (s *AdminService) ProjectFilters(ctx context.Context) (*ProjectFiltersDTO, error) {
	prefixes, err := s.repos.Project.DistinctCodePrefixes(ctx)
	if err != nil {
		return nil, err
	}
	if prefixes == nil {
		prefixes = []string{}
	}
	return &ProjectFiltersDTO{Prefixes: prefixes}, nil
}

// resolveAccessType 高权限角色强制全项目可见
func resolveAccessType(role, requested string) string {
	if entity.ElevatedRole(role) {
		return entity.AccessAll
	}
	if strings.ToUpper(strings.TrimSpace(requested)) == entity.AccessAll {
		return entity.AccessAll
	}
	return entity.AccessProjects
}

func (s *AdminService) assignProjects(ctx context.Context, user *entity.UserAccount, projectIDs []string) error {
	if user.AccessType == entity.AccessAll {
		projectIDs = nil
	}
	projects, err := s.repos.Project.FindByIDs(ctx, projectIDs)
	if err != nil {
		return err
	}
	return s.repos.User.ReplaceProjects(ctx, user, projects)
}
