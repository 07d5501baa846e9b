package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/repository"
	"github.com/vebops/store/internal/stock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InventoryService 出入库与调拨登记。所有校验与落库在同一事务内完成，
// 任一行不通过则整单拒绝。
type InventoryService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewInventoryService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *InventoryService {
	return &InventoryService{db: db, repos: repos, logger: logger}
}

type InwardLineRequest struct {
	MaterialID  string  `json:"materialId"`
	OrderedQty  float64 `json:"orderedQty"`
	ReceivedQty float64 `json:"receivedQty"`
}

type InwardCreateRequest struct {
	ProjectID    string              `json:"projectId"`
	Type         string              `json:"type"`
	InvoiceNo    string              `json:"invoiceNo"`
	InvoiceDate  string              `json:"invoiceDate"`
	DeliveryDate string              `json:"deliveryDate"`
	VehicleNo    string              `json:"vehicleNo"`
	SupplierName string              `json:"supplierName"`
	Remarks      string              `json:"remarks"`
	Lines        []InwardLineRequest `json:"lines"`
}

type OutwardLineRequest struct {
	MaterialID string  `json:"materialId"`
	IssueQty   float64 `json:"issueQty"`
}

type OutwardCreateRequest struct {
	ProjectID string               `json:"projectId"`
	Date      string               `json:"date"`
	IssueTo   string               `json:"issueTo"`
	Lines     []OutwardLineRequest `json:"lines"`
}

type OutwardUpdateRequest struct {
	IssueTo string               `json:"issueTo"`
	Status  string               `json:"status"`
	Lines   []OutwardLineRequest `json:"lines"`
}

type TransferLineRequest struct {
	MaterialID  string  `json:"materialId"`
	TransferQty float64 `json:"transferQty"`
}

type TransferCreateRequest struct {
	FromProjectID string                `json:"fromProjectId"`
	ToProjectID   string                `json:"toProjectId"`
	FromSite      string                `json:"fromSite"`
	ToSite        string                `json:"toSite"`
	TransferDate  string                `json:"transferDate"`
	Remarks       string                `json:"remarks"`
	Lines         []TransferLineRequest `json:"lines"`
}

// NextCodes 当日下一组单据编号
func (s *InventoryService) NextCodes(ctx context.Context) (*InventoryCodesDTO, error) {
	today := time.Now()
	inwardCount, err := s.repos.Inward.CountByEntryDate(ctx, today)
	if err != nil {
		return nil, err
	}
	outwardCount, err := s.repos.Outward.CountByDate(ctx, today)
	if err != nil {
		return nil, err
	}
	transferCount, err := s.repos.Transfer.CountByTransferDate(ctx, today)
	if err != nil {
		return nil, err
	}
	return &InventoryCodesDTO{
		InwardCode:   buildDailyCode("INW", today, inwardCount+1),
		OutwardCode:  buildDailyCode("OUT", today, outwardCount+1),
		TransferCode: buildDailyCode("TRF", today, transferCount+1),
	}, nil
}

func buildDailyCode(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, date.Format("20060102"), seq)
}

// RegisterInward 入库登记。每行必须有BOM分配，
// 下单量与收货量分别受分配量封顶（含本单内已占用的量）。
func (s *InventoryService) RegisterInward(ctx context.Context, user *entity.UserAccount, req InwardCreateRequest) (*InwardDTO, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, BadRequest("Project is required")
	}
	inwardType := strings.ToUpper(strings.TrimSpace(req.Type))
	if inwardType == "" {
		inwardType = entity.InwardTypeSupply
	}
	if inwardType != entity.InwardTypeSupply && inwardType != entity.InwardTypeReturn {
		return nil, BadRequest("Invalid inward type")
	}

	lines := make([]InwardLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.MaterialID == "" || (line.OrderedQty <= 0 && line.ReceivedQty <= 0) {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, BadRequest("At least one material line is required")
	}

	invoiceDate, err := parseOptionalDate(req.InvoiceDate)
	if err != nil {
		return nil, BadRequest("Invalid invoice date")
	}
	deliveryDate, err := parseOptionalDate(req.DeliveryDate)
	if err != nil {
		return nil, BadRequest("Invalid delivery date")
	}
	entryDate := today()
	if deliveryDate != nil {
		entryDate = *deliveryDate
	}

	var recordID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		project, err := repos.Project.FindByID(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Project not found")
			}
			return err
		}

		record := entity.InwardRecord{
			ID:           uuid.New().String(),
			ProjectID:    project.ID,
			Type:         inwardType,
			InvoiceNo:    strings.TrimSpace(req.InvoiceNo),
			InvoiceDate:  invoiceDate,
			DeliveryDate: deliveryDate,
			EntryDate:    entryDate,
			VehicleNo:    strings.TrimSpace(req.VehicleNo),
			SupplierName: strings.TrimSpace(req.SupplierName),
			Remarks:      strings.TrimSpace(req.Remarks),
			CreatedBy:    user.ID,
		}

		pendingOrdered := make(map[string]float64)
		pendingReceived := make(map[string]float64)

		for _, line := range lines {
			material, err := repos.Material.FindByID(ctx, line.MaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return BadRequest("Material not found")
				}
				return err
			}

			allocation, err := repos.Bom.FindByProjectAndMaterial(ctx, project.ID, material.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return BadRequest(fmt.Sprintf("Material %s is not allocated to this project", material.Name))
				}
				return err
			}

			ordered := positiveQty(line.OrderedQty)
			received := positiveQty(line.ReceivedQty)

			orderedSoFar, err := repos.Inward.SumOrderedQty(ctx, project.ID, material.ID)
			if err != nil {
				return err
			}
			if orderedSoFar+pendingOrdered[material.ID]+ordered > allocation.Quantity {
				return BadRequest(fmt.Sprintf("Ordered quantity for material %s exceeds the allocated requirement", material.Name))
			}
			receivedSoFar, err := repos.Inward.SumReceivedQty(ctx, project.ID, material.ID)
			if err != nil {
				return err
			}
			if receivedSoFar+pendingReceived[material.ID]+received > allocation.Quantity {
				return BadRequest(fmt.Sprintf("Received quantity for material %s exceeds the allocated requirement", material.Name))
			}

			pendingOrdered[material.ID] += ordered
			pendingReceived[material.ID] += received

			record.Lines = append(record.Lines, entity.InwardLine{
				ID:          uuid.New().String(),
				MaterialID:  material.ID,
				OrderedQty:  ordered,
				ReceivedQty: received,
			})

			material.OrderedQty += ordered
			material.ReceivedQty += received
			material.SyncBalance()
			if err := repos.Material.Save(ctx, material); err != nil {
				return err
			}
		}

		seq, err := repos.Inward.CountByEntryDate(ctx, entryDate)
		if err != nil {
			return err
		}
		record.Code = buildDailyCode("INW", entryDate, seq+1)

		if err := repos.Inward.Create(ctx, &record); err != nil {
			return err
		}
		recordID = record.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Inward.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("inward registered",
		zap.String("code", created.Code), zap.String("project_id", created.ProjectID))
	dto := toInwardDTO(created)
	return &dto, nil
}

// RegisterOutward 出库登记。同项目同日复用未关闭的登记单；
// 发料受项目结存、全局库存与分配量三重封顶。
func (s *InventoryService) RegisterOutward(ctx context.Context, user *entity.UserAccount, req OutwardCreateRequest) (*OutwardDTO, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, BadRequest("Project is required")
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, BadRequest("Invalid date")
	}
	issueDate := today()
	if date != nil {
		issueDate = *date
	}

	lines := make([]OutwardLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.MaterialID == "" || line.IssueQty <= 0 {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, BadRequest("At least one material line is required")
	}

	var registerID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		project, err := repos.Project.FindByID(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Project not found")
			}
			return err
		}

		existing, err := repos.Outward.FindByProjectAndDate(ctx, project.ID, issueDate)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.Status == entity.OutwardStatusClosed {
			return BadRequest("Outward register already closed for this date")
		}

		pendingIssued := make(map[string]float64)
		newLines := make([]entity.OutwardLine, 0, len(lines))

		for _, line := range lines {
			material, err := repos.Material.FindByID(ctx, line.MaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return BadRequest("Material not found")
				}
				return err
			}
			qty := line.IssueQty

			totals, err := s.projectTotals(ctx, repos, project.ID, material.ID)
			if err != nil {
				return err
			}
			available := totals.Balance() - pendingIssued[material.ID]
			if available <= 0 {
				return BadRequest(fmt.Sprintf("No balance available for material %s in project %s", material.Name, project.Name))
			}
			if qty > available {
				return BadRequest(fmt.Sprintf("Issue quantity for material %s exceeds the available balance", material.Name))
			}
			if qty > material.BalanceQty {
				return BadRequest(fmt.Sprintf("Issue quantity for material %s exceeds available stock", material.Name))
			}

			allocation, err := repos.Bom.FindByProjectAndMaterial(ctx, project.ID, material.ID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if allocation != nil && totals.IssuedQty+pendingIssued[material.ID]+qty > allocation.Quantity {
				return BadRequest(fmt.Sprintf("Issue quantity for material %s exceeds the allocated requirement", material.Name))
			}

			pendingIssued[material.ID] += qty
			newLines = append(newLines, entity.OutwardLine{
				ID:         uuid.New().String(),
				MaterialID: material.ID,
				IssueQty:   qty,
			})

			material.UtilizedQty += qty
			material.SyncBalance()
			if err := repos.Material.Save(ctx, material); err != nil {
				return err
			}
		}

		if existing != nil {
			for i := range newLines {
				newLines[i].RegisterID = existing.ID
			}
			if err := repos.Outward.AppendLines(ctx, newLines); err != nil {
				return err
			}
			if req.IssueTo != "" {
				existing.IssueTo = strings.TrimSpace(req.IssueTo)
			}
			if err := repos.Outward.Save(ctx, existing); err != nil {
				return err
			}
			registerID = existing.ID
			return nil
		}

		seq, err := repos.Outward.CountByDate(ctx, issueDate)
		if err != nil {
			return err
		}
		register := entity.OutwardRegister{
			ID:        uuid.New().String(),
			Code:      buildDailyCode("OUT", issueDate, seq+1),
			ProjectID: project.ID,
			Date:      issueDate,
			IssueTo:   strings.TrimSpace(req.IssueTo),
			Status:    entity.OutwardStatusOpen,
			CreatedBy: user.ID,
		}
		for i := range newLines {
			newLines[i].RegisterID = register.ID
		}
		register.Lines = newLines
		if err := repos.Outward.Create(ctx, &register); err != nil {
			return err
		}
		registerID = register.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Outward.FindByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("outward registered",
		zap.String("code", created.Code), zap.String("project_id", created.ProjectID))
	dto := toOutwardDTO(created)
	return &dto, nil
}

// UpdateOutward 编辑未关闭的登记单：整单换行并按聚合量重新校验。
func (s *InventoryService) UpdateOutward(ctx context.Context, user *entity.UserAccount, id string, req OutwardUpdateRequest) (*OutwardDTO, error) {
	lines := make([]OutwardLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.MaterialID == "" || line.IssueQty <= 0 {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, BadRequest("At least one material line is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		register, err := repos.Outward.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Outward register not found")
			}
			return err
		}
		if register.Status == entity.OutwardStatusClosed {
			return BadRequest("Closed registers cannot be edited")
		}
		project, err := repos.Project.FindByID(ctx, register.ProjectID)
		if err != nil {
			return err
		}

		// 本单现有量按物料聚合，校验时先从项目累计中剔除
		currentIssued := make(map[string]float64)
		for _, line := range register.Lines {
			currentIssued[line.MaterialID] += line.IssueQty
		}
		newIssued := make(map[string]float64)
		for _, line := range lines {
			newIssued[line.MaterialID] += line.IssueQty
		}

		for materialID, qty := range newIssued {
			material, err := repos.Material.FindByID(ctx, materialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return BadRequest("Material not found")
				}
				return err
			}

			totals, err := s.projectTotals(ctx, repos, project.ID, materialID)
			if err != nil {
				return err
			}
			issuedElsewhere := totals.IssuedQty - currentIssued[materialID]
			available := totals.ReceivedQty - issuedElsewhere - totals.TransferredOutQty + totals.TransferredInQty
			if available <= 0 {
				return BadRequest(fmt.Sprintf("No balance available for material %s in project %s", material.Name, project.Name))
			}
			if qty > available {
				return BadRequest(fmt.Sprintf("Issue quantity for material %s exceeds the available balance", material.Name))
			}
			delta := qty - currentIssued[materialID]
			if delta > material.BalanceQty {
				return BadRequest(fmt.Sprintf("Issue quantity for material %s exceeds available stock", material.Name))
			}

			allocation, err := repos.Bom.FindByProjectAndMaterial(ctx, project.ID, materialID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if allocation != nil && issuedElsewhere+qty > allocation.Quantity {
				return BadRequest(fmt.Sprintf("Issue quantity for material %s exceeds the allocated requirement", material.Name))
			}
		}

		// 全局累计按差额调整（含被移除的物料）
		touched := make(map[string]struct{}, len(newIssued)+len(currentIssued))
		for materialID := range newIssued {
			touched[materialID] = struct{}{}
		}
		for materialID := range currentIssued {
			touched[materialID] = struct{}{}
		}
		for materialID := range touched {
			delta := newIssued[materialID] - currentIssued[materialID]
			if delta == 0 {
				continue
			}
			material, err := repos.Material.FindByID(ctx, materialID)
			if err != nil {
				return err
			}
			material.UtilizedQty += delta
			if material.UtilizedQty < 0 {
				material.UtilizedQty = 0
			}
			material.SyncBalance()
			if err := repos.Material.Save(ctx, material); err != nil {
				return err
			}
		}

		replacement := make([]entity.OutwardLine, 0, len(lines))
		for _, line := range lines {
			replacement = append(replacement, entity.OutwardLine{
				ID:         uuid.New().String(),
				RegisterID: register.ID,
				MaterialID: line.MaterialID,
				IssueQty:   line.IssueQty,
			})
		}
		if err := repos.Outward.ReplaceLines(ctx, register.ID, replacement); err != nil {
			return err
		}

		if req.IssueTo != "" {
			register.IssueTo = strings.TrimSpace(req.IssueTo)
		}
		if strings.EqualFold(req.Status, entity.OutwardStatusClosed) {
			register.Status = entity.OutwardStatusClosed
			closeDate := today()
			register.CloseDate = &closeDate
		}
		register.Lines = nil
		return repos.Outward.Save(ctx, register)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Outward.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutwardDTO(updated)
	return &dto, nil
}

// RegisterTransfer 调拨登记。源项目结存必须覆盖调拨量；
// 同项目调拨必须提供两个不同场地。
func (s *InventoryService) RegisterTransfer(ctx context.Context, user *entity.UserAccount, req TransferCreateRequest) (*TransferDTO, error) {
	if strings.TrimSpace(req.FromProjectID) == "" {
		return nil, BadRequest("Source project is required")
	}
	if strings.TrimSpace(req.ToProjectID) == "" {
		return nil, BadRequest("Destination project is required")
	}

	fromSite := strings.TrimSpace(req.FromSite)
	toSite := strings.TrimSpace(req.ToSite)
	if req.FromProjectID == req.ToProjectID {
		if fromSite == "" || toSite == "" {
			return nil, BadRequest("Provide both source and destination sites when transferring within a project")
		}
		if strings.EqualFold(fromSite, toSite) {
			return nil, BadRequest("Cannot transfer within the same project site")
		}
	}

	date, err := parseOptionalDate(req.TransferDate)
	if err != nil {
		return nil, BadRequest("Invalid transfer date")
	}
	transferDate := today()
	if date != nil {
		transferDate = *date
	}

	lines := make([]TransferLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.MaterialID == "" || line.TransferQty <= 0 {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, BadRequest("At least one material line is required")
	}

	var recordID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		fromProject, err := repos.Project.FindByID(ctx, req.FromProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Project not found")
			}
			return err
		}
		if _, err := repos.Project.FindByID(ctx, req.ToProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Destination project not found")
			}
			return err
		}

		pendingOut := make(map[string]float64)
		record := entity.TransferRecord{
			ID:            uuid.New().String(),
			FromProjectID: req.FromProjectID,
			ToProjectID:   req.ToProjectID,
			FromSite:      fromSite,
			ToSite:        toSite,
			TransferDate:  transferDate,
			Remarks:       strings.TrimSpace(req.Remarks),
			CreatedBy:     user.ID,
		}

		for _, line := range lines {
			material, err := repos.Material.FindByID(ctx, line.MaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return BadRequest("Material not found")
				}
				return err
			}

			totals, err := s.projectTotals(ctx, repos, fromProject.ID, material.ID)
			if err != nil {
				return err
			}
			available := totals.Balance() - pendingOut[material.ID]
			if available <= 0 {
				return BadRequest(fmt.Sprintf("No balance available for material %s in project %s", material.Name, fromProject.Name))
			}
			if line.TransferQty > available {
				return BadRequest(fmt.Sprintf("Transfer quantity for material %s exceeds the available balance", material.Name))
			}

			pendingOut[material.ID] += line.TransferQty
			record.Lines = append(record.Lines, entity.TransferLine{
				ID:          uuid.New().String(),
				MaterialID:  material.ID,
				TransferQty: line.TransferQty,
			})
		}

		seq, err := repos.Transfer.CountByTransferDate(ctx, transferDate)
		if err != nil {
			return err
		}
		record.Code = buildDailyCode("TRF", transferDate, seq+1)

		if err := repos.Transfer.Create(ctx, &record); err != nil {
			return err
		}
		recordID = record.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Transfer.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transfer registered",
		zap.String("code", created.Code),
		zap.String("from_project_id", created.FromProjectID),
		zap.String("to_project_id", created.ToProjectID))
	dto := toTransferDTO(created)
	return &dto, nil
}

// projectTotals 某项目某物料的流水累计（事务内读取）
func (s *InventoryService) projectTotals(ctx context.Context, repos *repository.Repositories, projectID, materialID string) (stock.Totals, error) {
	var totals stock.Totals
	var err error
	if totals.OrderedQty, err = repos.Inward.SumOrderedQty(ctx, projectID, materialID); err != nil {
		return totals, err
	}
	if totals.ReceivedQty, err = repos.Inward.SumReceivedQty(ctx, projectID, materialID); err != nil {
		return totals, err
	}
	if totals.IssuedQty, err = repos.Outward.SumIssuedQty(ctx, projectID, materialID); err != nil {
		return totals, err
	}
	if totals.TransferredOutQty, err = repos.Transfer.SumTransferredOut(ctx, projectID, materialID); err != nil {
		return totals, err
	}
	if totals.TransferredInQty, err = repos.Transfer.SumTransferredIn(ctx, projectID, materialID); err != nil {
		return totals, err
	}
	return totals, nil
}

func positiveQty(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
