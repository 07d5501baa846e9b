package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaterialService 物料目录维护与XLSX导入导出
type MaterialService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewMaterialService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *MaterialService {
	return &MaterialService{db: db, repos: repos, logger: logger}
}

type MaterialUpsertRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	PartNo   string `json:"partNo"`
	LineType string `json:"lineType"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

type MaterialSearchRequest struct {
	Search     string
	Categories []string
	LineTypes  []string
	Page       int
	Size       int
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

func (s *MaterialService) List(ctx context.Context) ([]MaterialDTO, error) {
	materials, err := s.repos.Material.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toMaterialDTOs(materials), nil
}

func (s *MaterialService) Search(ctx context.Context, req MaterialSearchRequest) (*PageDTO, error) {
	params := repository.MaterialSearchParams{
		Search:     strings.TrimSpace(req.Search),
		Categories: req.Categories,
		LineTypes:  req.LineTypes,
		Page:       NormalizePage(req.Page),
		Size:       NormalizeSize(req.Size),
	}
	materials, total, err := s.repos.Material.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	page := NewPageDTO(toMaterialDTOs(materials), total, params.Page, params.Size)
	return &page, nil
}

// Filters 物料检索的筛选项（已有分类）
func (s *MaterialService) Filters(ctx context.Context) (*MaterialFiltersDTO, error) {
	categories, err := s.repos.Material.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return &MaterialFiltersDTO{Categories: categories}, nil
}

func (s *MaterialService) Create(ctx context.Context, req MaterialUpsertRequest) (*MaterialDTO, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, BadRequest("Material code and name are required")
	}
	if _, err := s.repos.Material.FindByCode(ctx, code); err == nil {
		return nil, Conflict("Material code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	material := entity.Material{
		ID:       uuid.New().String(),
		Code:     code,
		Name:     name,
		PartNo:   strings.TrimSpace(req.PartNo),
		LineType: strings.TrimSpace(req.LineType),
		Unit:     normalizeUnit(req.Unit),
		Category: strings.TrimSpace(req.Category),
	}
	if err := s.repos.Material.Create(ctx, &material); err != nil {
		return nil, err
	}
	s.logger.Info("material created", zap.String("material_id", material.ID), zap.String("code", code))
	dto := toMaterialDTO(&material)
	return &dto, nil
}

func (s *MaterialService) Update(ctx context.Context, id string, req MaterialUpsertRequest) (*MaterialDTO, error) {
	material, err := s.repos.Material.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Material not found")
		}
		return nil, err
	}

	if code := strings.TrimSpace(req.Code); code != "" && !strings.EqualFold(code, material.Code) {
		if existing, err := s.repos.Material.FindByCode(ctx, code); err == nil && existing.ID != id {
			return nil, Conflict("Material code already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		material.Code = code
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		material.Name = name
	}
	material.PartNo = strings.TrimSpace(req.PartNo)
	material.LineType = strings.TrimSpace(req.LineType)
	material.Category = strings.TrimSpace(req.Category)
	if unit := strings.TrimSpace(req.Unit); unit != "" {
		material.Unit = unit
	}

	if err := s.repos.Material.Save(ctx, material); err != nil {
		return nil, err
	}
	dto := toMaterialDTO(material)
	return &dto, nil
}

// Delete 已被分配的物料不允许删除
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	material, err := s.repos.Material.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Material not found")
		}
		return err
	}
	allocated, err := s.repos.Bom.SumQuantityByMaterial(ctx, id)
	if err != nil {
		return err
	}
	if allocated > 0 {
		return BadRequest(fmt.Sprintf("Material %s is allocated to projects and cannot be deleted", material.Name))
	}
	return s.repos.Material.Delete(ctx, id)
}

// 导入表头顺序：Code, Name, Part No, Unit, Category, Line Type
var exportHeader = []string{"Code", "Name", "Part No", "Unit", "Category", "Line Type",
	"Required Qty", "Ordered Qty", "Received Qty", "Utilized Qty", "Balance Qty"}

// ImportXLSX 按物料编码upsert，空行与无编码的行跳过
func (s *MaterialService) ImportXLSX(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, BadRequest("Invalid XLSX file")
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, BadRequest("Workbook has no sheets")
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, BadRequest("Failed to read worksheet")
	}
	if len(rows) < 2 {
		return nil, BadRequest("Worksheet has no data rows")
	}

	result := &ImportResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		for _, row := range rows[1:] {
			code := strings.TrimSpace(cell(row, 0))
			if code == "" {
				result.Skipped++
				continue
			}
			name := strings.TrimSpace(cell(row, 1))

			material, err := repos.Material.FindByCode(ctx, code)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if name == "" {
					result.Skipped++
					continue
				}
				material = &entity.Material{
					ID:       uuid.New().String(),
					Code:     code,
					Name:     name,
					PartNo:   strings.TrimSpace(cell(row, 2)),
					Unit:     normalizeUnit(cell(row, 3)),
					Category: strings.TrimSpace(cell(row, 4)),
					LineType: strings.TrimSpace(cell(row, 5)),
				}
				if err := repos.Material.Create(ctx, material); err != nil {
					return err
				}
				result.Created++
				continue
			}
			if err != nil {
				return err
			}

			if name != "" {
				material.Name = name
			}
			if v := strings.TrimSpace(cell(row, 2)); v != "" {
				material.PartNo = v
			}
			if v := strings.TrimSpace(cell(row, 3)); v != "" {
				material.Unit = v
			}
			if v := strings.TrimSpace(cell(row, 4)); v != "" {
				material.Category = v
			}
			if v := strings.TrimSpace(cell(row, 5)); v != "" {
				material.LineType = v
			}
			if err := repos.Material.Save(ctx, material); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("materials imported",
		zap.Int("created", result.Created), zap.Int("updated", result.Updated), zap.Int("skipped", result.Skipped))
	return result, nil
}

// ExportXLSX 导出全部物料（含累计量）
func (s *MaterialService) ExportXLSX(ctx context.Context) (*excelize.File, error) {
	materials, err := s.repos.Material.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, title := range exportHeader {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cellName, title); err != nil {
			return nil, err
		}
	}
	for i, material := range materials {
		values := []interface{}{
			material.Code, material.Name, material.PartNo, material.Unit,
			material.Category, material.LineType,
			material.RequiredQty, material.OrderedQty, material.ReceivedQty,
			material.UtilizedQty, material.BalanceQty,
		}
		for j, value := range values {
			cellName, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := file.SetCellValue(sheet, cellName, value); err != nil {
				return nil, err
			}
		}
	}
	return file, nil
}

func cell(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return row[index]
}

func normalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return "pcs"
	}
	return unit
}
