package repository

import (
	"context"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.UserAccount, error) {
	var user entity.UserAccount
	err := r.db.WithContext(ctx).Preload("Projects").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.UserAccount, error) {
	var user entity.UserAccount
	err := r.db.WithContext(ctx).Preload("Projects").
		Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.UserAccount) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Save(ctx context.Context, user *entity.UserAccount) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ReplaceProjects 重设用户的项目分配
func (r *UserRepository) ReplaceProjects(ctx context.Context, user *entity.UserAccount, projects []entity.Project) error {
	return r.db.WithContext(ctx).Model(user).Association("Projects").Replace(projects)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.UserAccount{}, "id = ?", id).Error
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.UserAccount{}).Count(&total).Error
	return total, err
}

// UserSearchParams 用户分页检索条件
type UserSearchParams struct {
	Search      string
	Roles       []string
	AccessTypes []string
	ProjectIDs  []string
	Page        int
	Size        int
}

func (r *UserRepository) Search(ctx context.Context, params UserSearchParams) ([]entity.UserAccount, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.UserAccount{})
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR role ILIKE ?", kw, kw, kw)
	}
	if len(params.Roles) > 0 {
		query = query.Where("role IN ?", params.Roles)
	}
	if len(params.AccessTypes) > 0 {
		query = query.Where("access_type IN ?", params.AccessTypes)
	}
	if len(params.ProjectIDs) > 0 {
		query = query.Where(
			"id IN (SELECT user_account_id FROM user_projects WHERE project_id IN ?)",
			params.ProjectIDs,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entity.UserAccount
	err := query.Preload("Projects").Order("name ASC, email ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&users).Error
	return users, total, err
}
