package repository

import (
	"context"
	"time"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type InwardRepository struct {
	db *gorm.DB
}

func NewInwardRepository(db *gorm.DB) *InwardRepository {
	return &InwardRepository{db: db}
}

func (r *InwardRepository) FindByID(ctx context.Context, id string) (*entity.InwardRecord, error) {
	var record entity.InwardRecord
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Lines").Preload("Lines.Material").
		Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create 连同行一起写入
func (r *InwardRepository) Create(ctx context.Context, record *entity.InwardRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindAllOrdered 全部入库单，新单在前
func (r *InwardRepository) FindAllOrdered(ctx context.Context) ([]entity.InwardRecord, error) {
	var records []entity.InwardRecord
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Lines").Preload("Lines.Material").
		Order("entry_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *InwardRepository) FindByProject(ctx context.Context, projectID string) ([]entity.InwardRecord, error) {
	var records []entity.InwardRecord
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("project_id = ?", projectID).
		Order("entry_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// FindByMaterial 含有指定物料行的入库单
func (r *InwardRepository) FindByMaterial(ctx context.Context, materialID string) ([]entity.InwardRecord, error) {
	var records []entity.InwardRecord
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Lines").Preload("Lines.Material").
		Where("id IN (SELECT record_id FROM inward_lines WHERE material_id = ?)", materialID).
		Order("entry_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// CountByEntryDate 指定日期的入库单数（当日编号序号用）
func (r *InwardRepository) CountByEntryDate(ctx context.Context, date time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.InwardRecord{}).
		Where("entry_date = ?", date.Format("2006-01-02")).
		Count(&total).Error
	return total, err
}

// SumOrderedQty 某项目某物料的累计下单量
func (r *InwardRepository) SumOrderedQty(ctx context.Context, projectID, materialID string) (float64, error) {
	return r.sumLineQty(ctx, "ordered_qty", projectID, materialID)
}

// SumReceivedQty 某项目某物料的累计收货量
func (r *InwardRepository) SumReceivedQty(ctx context.Context, projectID, materialID string) (float64, error) {
	return r.sumLineQty(ctx, "received_qty", projectID, materialID)
}

func (r *InwardRepository) sumLineQty(ctx context.Context, column, projectID, materialID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.InwardLine{}).
		Joins("JOIN inward_records ON inward_records.id = inward_lines.record_id").
		Where("inward_records.project_id = ? AND inward_lines.material_id = ?", projectID, materialID).
		Select("COALESCE(SUM(inward_lines." + column + "), 0)").
		Scan(&total).Error
	return total, err
}

func (r *InwardRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.InwardRecord{}).Count(&total).Error
	return total, err
}
