package repository

import (
	"context"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type ProcurementRepository struct {
	db *gorm.DB
}

func NewProcurementRepository(db *gorm.DB) *ProcurementRepository {
	return &ProcurementRepository{db: db}
}

func (r *ProcurementRepository) FindByID(ctx context.Context, id string) (*entity.ProcurementRequest, error) {
	var request entity.ProcurementRequest
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Material").
		Preload("RequestedBy").Preload("ResolvedBy").
		Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ProcurementRepository) Create(ctx context.Context, request *entity.ProcurementRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *ProcurementRepository) Save(ctx context.Context, request *entity.ProcurementRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// FindAllOrdered 全部申请，新单在前
func (r *ProcurementRepository) FindAllOrdered(ctx context.Context) ([]entity.ProcurementRequest, error) {
	var requests []entity.ProcurementRequest
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Material").
		Preload("RequestedBy").Preload("ResolvedBy").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ProcurementRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.ProcurementRequest{}).
		Where("status = ?", status).Count(&total).Error
	return total, err
}
