package repository

import (
	"context"
	"time"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) FindByID(ctx context.Context, id string) (*entity.TransferRecord, error) {
	var record entity.TransferRecord
	err := r.db.WithContext(ctx).
		Preload("FromProject").Preload("ToProject").
		Preload("Lines").Preload("Lines.Material").
		Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TransferRepository) Create(ctx context.Context, record *entity.TransferRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *TransferRepository) FindAllOrdered(ctx context.Context) ([]entity.TransferRecord, error) {
	var records []entity.TransferRecord
	err := r.db.WithContext(ctx).
		Preload("FromProject").Preload("ToProject").
		Preload("Lines").Preload("Lines.Material").
		Order("transfer_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// FindTouchingProject 源或目标为指定项目的调拨单
func (r *TransferRepository) FindTouchingProject(ctx context.Context, projectID string) ([]entity.TransferRecord, error) {
	var records []entity.TransferRecord
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("from_project_id = ? OR to_project_id = ?", projectID, projectID).
		Order("transfer_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *TransferRepository) FindByMaterial(ctx context.Context, materialID string) ([]entity.TransferRecord, error) {
	var records []entity.TransferRecord
	err := r.db.WithContext(ctx).
		Preload("FromProject").Preload("ToProject").
		Preload("Lines").Preload("Lines.Material").
		Where("id IN (SELECT record_id FROM transfer_lines WHERE material_id = ?)", materialID).
		Order("transfer_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// CountByTransferDate 指定日期的调拨单数（当日编号序号用）
func (r *TransferRepository) CountByTransferDate(ctx context.Context, date time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.TransferRecord{}).
		Where("transfer_date = ?", date.Format("2006-01-02")).
		Count(&total).Error
	return total, err
}

// SumTransferredOut 某项目某物料的累计调出量
func (r *TransferRepository) SumTransferredOut(ctx context.Context, projectID, materialID string) (float64, error) {
	return r.sumLineQty(ctx, "from_project_id", projectID, materialID)
}

// SumTransferredIn 某项目某物料的累计调入量
func (r *TransferRepository) SumTransferredIn(ctx context.Context, projectID, materialID string) (float64, error) {
	return r.sumLineQty(ctx, "to_project_id", projectID, materialID)
}

func (r *TransferRepository) sumLineQty(ctx context.Context, column, projectID, materialID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.TransferLine{}).
		Joins("JOIN transfer_records ON transfer_records.id = transfer_lines.record_id").
		Where("transfer_records."+column+" = ? AND transfer_lines.material_id = ?", projectID, materialID).
		Select("COALESCE(SUM(transfer_lines.transfer_qty), 0)").
		Scan(&total).Error
	return total, err
}

func (r *TransferRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.TransferRecord{}).Count(&total).Error
	return total, err
}
