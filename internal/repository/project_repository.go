package repository

import (
	"context"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindByCode(ctx context.Context, code string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindAll(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).Order("code ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Project, error) {
	var projects []entity.Project
	if len(ids) == 0 {
		return projects, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) Save(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Project{}, "id = ?", id).Error
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Project{}).Count(&total).Error
	return total, err
}

// DistinctCodePrefixes 项目编码首字母（筛选项）
func (r *ProjectRepository) DistinctCodePrefixes(ctx context.Context) ([]string, error) {
	var prefixes []string
	err := r.db.WithContext(ctx).Model(&entity.Project{}).
		Distinct("UPPER(LEFT(code, 1))").Order("UPPER(LEFT(code, 1)) ASC").
		Pluck("UPPER(LEFT(code, 1))", &prefixes).Error
	return prefixes, err
}

// ProjectSearchParams 项目分页检索条件
type ProjectSearchParams struct {
	Search     string
	Prefixes   []string
	ProjectIDs []string // 限定在这些项目内（分配筛选）
	ExcludeIDs []string // 排除这些项目（无分配筛选）
	Page       int
	Size       int
}

func (r *ProjectRepository) Search(ctx context.Context, params ProjectSearchParams) ([]entity.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Project{})
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", kw, kw)
	}
	if len(params.Prefixes) > 0 {
		query = query.Where("UPPER(LEFT(code, 1)) IN ?", params.Prefixes)
	}
	if params.ProjectIDs != nil {
		if len(params.ProjectIDs) == 0 {
			return []entity.Project{}, 0, nil
		}
		query = query.Where("id IN ?", params.ProjectIDs)
	}
	if len(params.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", params.ExcludeIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []entity.Project
	err := query.Order("code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&projects).Error
	return projects, total, err
}
