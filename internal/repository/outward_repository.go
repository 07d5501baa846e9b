package repository

import (
	"context"
	"time"

	"github.com/vebops/store/internal/entity"
	"gorm.io/gorm"
)

type OutwardRepository struct {
	db *gorm.DB
}

func NewOutwardRepository(db *gorm.DB) *OutwardRepository {
	return &OutwardRepository{db: db}
}

func (r *OutwardRepository) FindByID(ctx context.Context, id string) (*entity.OutwardRegister, error) {
	var register entity.OutwardRegister
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Lines").Preload("Lines.Material").
		Where("id = ?", id).First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

// FindByProjectAndDate 同项目同日的登记单（追加用）
func (r *OutwardRepository) FindByProjectAndDate(ctx context.Context, projectID string, date time.Time) (*entity.OutwardRegister, error) {
	var register entity.OutwardRegister
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("project_id = ? AND date = ?", projectID, date.Format("2006-01-02")).
		First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *OutwardRepository) Create(ctx context.Context, register *entity.OutwardRegister) error {
	return r.db.WithContext(ctx).Create(register).Error
}

func (r *OutwardRepository) Save(ctx context.Context, register *entity.OutwardRegister) error {
	return r.db.WithContext(ctx).Save(register).Error
}

// AppendLines 向既有登记单追加行
func (r *OutwardRepository) AppendLines(ctx context.Context, lines []entity.OutwardLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// ReplaceLines 整单换行（编辑时）
func (r *OutwardRepository) ReplaceLines(ctx context.Context, registerID string, lines []entity.OutwardLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.OutwardLine{}, "register_id = ?", registerID).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (r *OutwardRepository) FindAllOrdered(ctx context.Context) ([]entity.OutwardRegister, error) {
	var registers []entity.OutwardRegister
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Lines").Preload("Lines.Material").
		Order("date DESC, created_at DESC").
		Find(&registers).Error
	return registers, err
}

func (r *OutwardRepository) FindByProject(ctx context.Context, projectID string) ([]entity.OutwardRegister, error) {
	var registers []entity.OutwardRegister
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("project_id = ?", projectID).
		Order("date DESC, created_at DESC").
		Find(&registers).Error
	return registers, err
}

func (r *OutwardRepository) FindByMaterial(ctx context.Context, materialID string) ([]entity.OutwardRegister, error) {
	var registers []entity.OutwardRegister
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Lines").Preload("Lines.Material").
		Where("id IN (SELECT register_id FROM outward_lines WHERE material_id = ?)", materialID).
		Order("date DESC, created_at DESC").
		Find(&registers).Error
	return registers, err
}

// CountByDate 指定日期的登记单数（当日编号序号用）
func (r *OutwardRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.OutwardRegister{}).
		Where("date = ?", date.Format("2006-01-02")).
		Count(&total).Error
	return total, err
}

// SumIssuedQty 某项目某物料的累计发料量
func (r *OutwardRepository) SumIssuedQty(ctx context.Context, projectID, materialID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.OutwardLine{}).
		Joins("JOIN outward_registers ON outward_registers.id = outward_lines.register_id").
		Where("outward_registers.project_id = ? AND outward_lines.material_id = ?", projectID, materialID).
		Select("COALESCE(SUM(outward_lines.issue_qty), 0)").
		Scan(&total).Error
	return total, err
}

func (r *OutwardRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.OutwardRegister{}).Count(&total).Error
	return total, err
}
