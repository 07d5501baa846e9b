package repository

import (
	"context"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type BomRepository struct {
	db *gorm.DB
}

func NewBomRepository(db *gorm.DB) *BomRepository {
	return &BomRepository{db: db}
}

func (r *BomRepository) FindByProject(ctx context.Context, projectID string) ([]entity.BomLine, error) {
	var lines []entity.BomLine
	err := r.db.WithContext(ctx).Preload("Material").
		Where("project_id = ?", projectID).Find(&lines).Error
	return lines, err
}

func (r *BomRepository) FindByProjectAndMaterial(ctx context.Context, projectID, materialID string) (*entity.BomLine, error) {
	var line entity.BomLine
	err := r.db.WithContext(ctx).Preload("Material").
		Where("project_id = ? AND material_id = ?", projectID, materialID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *BomRepository) FindAll(ctx context.Context) ([]entity.BomLine, error) {
	var lines []entity.BomLine
	err := r.db.WithContext(ctx).Preload("Material").Find(&lines).Error
	return lines, err
}

func (r *BomRepository) Create(ctx context.Context, line *entity.BomLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *BomRepository) Save(ctx context.Context, line *entity.BomLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *BomRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.BomLine{}, "id = ?", id).Error
}

func (r *BomRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Delete(&entity.BomLine{}, "project_id = ?", projectID).Error
}

// ProjectIDsWithAllocations 存在BOM分配的项目ID集合
func (r *BomRepository) ProjectIDsWithAllocations(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.BomLine{}).
		Distinct("project_id").Pluck("project_id", &ids).Error
	return ids, err
}

// SumQuantityByMaterial 某物料的跨项目分配总量
func (r *BomRepository) SumQuantityByMaterial(ctx context.Context, materialID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.BomLine{}).
		Where("material_id = ?", materialID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}
