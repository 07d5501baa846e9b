package repository

import (
	"context"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) FindByCode(ctx context.Context, code string) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) FindAll(ctx context.Context) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).Order("code ASC").Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) Create(ctx context.Context, material *entity.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) Save(ctx context.Context, material *entity.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Material{}, "id = ?", id).Error
}

func (r *MaterialRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Material{}).Count(&total).Error
	return total, err
}

// GlobalTotals 全局累计收货/领用量（分析面板用）
func (r *MaterialRepository) GlobalTotals(ctx context.Context) (received, utilized float64, err error) {
	row := struct {
		Received float64
		Utilized float64
	}{}
	err = r.db.WithContext(ctx).Model(&entity.Material{}).
		Select("COALESCE(SUM(received_qty), 0) AS received, COALESCE(SUM(utilized_qty), 0) AS utilized").
		Scan(&row).Error
	return row.Received, row.Utilized, err
}

// DistinctCategories 物料类别列表（筛选项）
func (r *MaterialRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("category <> ''").Distinct("category").Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// MaterialSearchParams 物料分页检索条件
type MaterialSearchParams struct {
	Search     string
	Categories []string
	LineTypes  []string
	Page       int
	Size       int
}

func (r *MaterialRepository) Search(ctx context.Context, params MaterialSearchParams) ([]entity.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Material{})
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR part_no ILIKE ?", kw, kw, kw)
	}
	if len(params.Categories) > 0 {
		query = query.Where("category IN ?", params.Categories)
	}
	if len(params.LineTypes) > 0 {
		query = query.Where("line_type IN ?", params.LineTypes)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var materials []entity.Material
	err := query.Order("code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&materials).Error
	return materials, total, err
}
