package service

import (
	"time"

	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/stock"
)

// 前端契约使用camelCase、日期用YYYY-MM-DD字符串、ID一律字符串。

const dateLayout = "2006-01-02"

type ProjectDTO struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type UserDTO struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Role       string       `json:"role"`
	AccessType string       `json:"accessType"`
	Projects   []ProjectDTO `json:"projects"`
}

type MaterialDTO struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	PartNo      string  `json:"partNo"`
	LineType    string  `json:"lineType"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
	RequiredQty float64 `json:"requiredQty"`
	OrderedQty  float64 `json:"orderedQty"`
	ReceivedQty float64 `json:"receivedQty"`
	UtilizedQty float64 `json:"utilizedQty"`
	BalanceQty  float64 `json:"balanceQty"`
}

// BomRowDTO 项目×物料汇总行
type BomRowDTO struct {
	MaterialID        string  `json:"materialId"`
	MaterialCode      string  `json:"materialCode"`
	MaterialName      string  `json:"materialName"`
	PartNo            string  `json:"partNo"`
	LineType          string  `json:"lineType"`
	Unit              string  `json:"unit"`
	Category          string  `json:"category"`
	AllocatedQty      float64 `json:"allocatedQty"`
	OrderedQty        float64 `json:"orderedQty"`
	ReceivedQty       float64 `json:"receivedQty"`
	IssuedQty         float64 `json:"issuedQty"`
	TransferredInQty  float64 `json:"transferredInQty"`
	TransferredOutQty float64 `json:"transferredOutQty"`
	BalanceQty        float64 `json:"balanceQty"`
}

type InwardLineDTO struct {
	ID           string  `json:"id"`
	MaterialID   string  `json:"materialId"`
	MaterialCode string  `json:"materialCode"`
	MaterialName string  `json:"materialName"`
	Unit         string  `json:"unit"`
	OrderedQty   float64 `json:"orderedQty"`
	ReceivedQty  float64 `json:"receivedQty"`
}

type InwardDTO struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	ProjectID    string          `json:"projectId"`
	ProjectCode  string          `json:"projectCode"`
	ProjectName  string          `json:"projectName"`
	Type         string          `json:"type"`
	InvoiceNo    string          `json:"invoiceNo"`
	InvoiceDate  string          `json:"invoiceDate,omitempty"`
	DeliveryDate string          `json:"deliveryDate,omitempty"`
	EntryDate    string          `json:"entryDate"`
	VehicleNo    string          `json:"vehicleNo"`
	SupplierName string          `json:"supplierName"`
	Remarks      string          `json:"remarks"`
	CreatedAt    time.Time       `json:"createdAt"`
	Lines        []InwardLineDTO `json:"lines"`
}

type OutwardLineDTO struct {
	ID           string  `json:"id"`
	MaterialID   string  `json:"materialId"`
	MaterialCode string  `json:"materialCode"`
	MaterialName string  `json:"materialName"`
	Unit         string  `json:"unit"`
	IssueQty     float64 `json:"issueQty"`
}

type OutwardDTO struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	ProjectID   string           `json:"projectId"`
	ProjectCode string           `json:"projectCode"`
	ProjectName string           `json:"projectName"`
	Date        string           `json:"date"`
	IssueTo     string           `json:"issueTo"`
	Status      string           `json:"status"`
	CloseDate   string           `json:"closeDate,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	Lines       []OutwardLineDTO `json:"lines"`
}

type TransferLineDTO struct {
	ID           string  `json:"id"`
	MaterialID   string  `json:"materialId"`
	MaterialCode string  `json:"materialCode"`
	MaterialName string  `json:"materialName"`
	Unit         string  `json:"unit"`
	TransferQty  float64 `json:"transferQty"`
}

type TransferDTO struct {
	ID              string            `json:"id"`
	Code            string            `json:"code"`
	FromProjectID   string            `json:"fromProjectId"`
	FromProjectCode string            `json:"fromProjectCode"`
	FromProjectName string            `json:"fromProjectName"`
	ToProjectID     string            `json:"toProjectId"`
	ToProjectCode   string            `json:"toProjectCode"`
	ToProjectName   string            `json:"toProjectName"`
	FromSite        string            `json:"fromSite"`
	ToSite          string            `json:"toSite"`
	TransferDate    string            `json:"transferDate"`
	Remarks         string            `json:"remarks"`
	CreatedAt       time.Time         `json:"createdAt"`
	Lines           []TransferLineDTO `json:"lines"`
}

type ProcurementDTO struct {
	ID                  string     `json:"id"`
	ProjectID           string     `json:"projectId"`
	ProjectCode         string     `json:"projectCode"`
	ProjectName         string     `json:"projectName"`
	MaterialID          string     `json:"materialId"`
	MaterialCode        string     `json:"materialCode"`
	MaterialName        string     `json:"materialName"`
	Unit                string     `json:"unit"`
	CapturedRequiredQty float64    `json:"capturedRequiredQty"`
	RequestedIncrease   float64    `json:"requestedIncrease"`
	ProposedRequiredQty float64    `json:"proposedRequiredQty"`
	Reason              string     `json:"reason"`
	Status              string     `json:"status"`
	RequestedByID       string     `json:"requestedById"`
	RequestedByName     string     `json:"requestedByName"`
	ResolvedByID        string     `json:"resolvedById,omitempty"`
	ResolvedByName      string     `json:"resolvedByName,omitempty"`
	ResolvedAt          *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNote      string     `json:"resolutionNote,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type InventoryCodesDTO struct {
	InwardCode   string `json:"inwardCode"`
	OutwardCode  string `json:"outwardCode"`
	TransferCode string `json:"transferCode"`
}

type AnalyticsDTO struct {
	TotalProjects    int64   `json:"totalProjects"`
	TotalMaterials   int64   `json:"totalMaterials"`
	TotalUsers       int64   `json:"totalUsers"`
	TotalInwards     int64   `json:"totalInwards"`
	TotalOutwards    int64   `json:"totalOutwards"`
	TotalTransfers   int64   `json:"totalTransfers"`
	PendingRequests  int64   `json:"pendingRequests"`
	TotalReceivedQty float64 `json:"totalReceivedQty"`
	TotalUtilizedQty float64 `json:"totalUtilizedQty"`
}

// ProjectFiltersDTO 项目检索筛选项
type ProjectFiltersDTO struct {
	Prefixes []string `json:"prefixes"`
}

// MaterialFiltersDTO 物料检索筛选项
type MaterialFiltersDTO struct {
	Categories []string `json:"categories"`
}

// PageDTO 分页响应
type PageDTO struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	TotalPages int64       `json:"totalPages"`
}

func NewPageDTO(items interface{}, total int64, page, size int) PageDTO {
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return PageDTO{Items: items, Total: total, Page: page, Size: size, TotalPages: pages}
}

func toProjectDTO(p *entity.Project) ProjectDTO {
	if p == nil {
		return ProjectDTO{}
	}
	return ProjectDTO{ID: p.ID, Code: p.Code, Name: p.Name}
}

func toProjectDTOs(projects []entity.Project) []ProjectDTO {
	out := make([]ProjectDTO, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectDTO(&projects[i]))
	}
	return out
}

// SessionUser 会话恢复用的用户DTO
func SessionUser(u *entity.UserAccount) UserDTO {
	return toUserDTO(u)
}

func toUserDTO(u *entity.UserAccount) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		AccessType: u.AccessType,
		Projects:   toProjectDTOs(u.Projects),
	}
}

func toMaterialDTO(m *entity.Material) MaterialDTO {
	return MaterialDTO{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		PartNo:      m.PartNo,
		LineType:    m.LineType,
		Unit:        m.Unit,
		Category:    m.Category,
		RequiredQty: m.RequiredQty,
		OrderedQty:  m.OrderedQty,
		ReceivedQty: m.ReceivedQty,
		UtilizedQty: m.UtilizedQty,
		BalanceQty:  m.BalanceQty,
	}
}

func toMaterialDTOs(materials []entity.Material) []MaterialDTO {
	out := make([]MaterialDTO, 0, len(materials))
	for i := range materials {
		out = append(out, toMaterialDTO(&materials[i]))
	}
	return out
}

func toBomRowDTO(row stock.Row) BomRowDTO {
	return BomRowDTO{
		MaterialID:        row.MaterialID,
		MaterialCode:      row.MaterialCode,
		MaterialName:      row.MaterialName,
		PartNo:            row.PartNo,
		LineType:          row.LineType,
		Unit:              row.Unit,
		Category:          row.Category,
		AllocatedQty:      row.AllocatedQty,
		OrderedQty:        row.OrderedQty,
		ReceivedQty:       row.ReceivedQty,
		IssuedQty:         row.IssuedQty,
		TransferredInQty:  row.TransferredInQty,
		TransferredOutQty: row.TransferredOutQty,
		BalanceQty:        row.BalanceQty,
	}
}

func toBomRowDTOs(rows []stock.Row) []BomRowDTO {
	out := make([]BomRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBomRowDTO(row))
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toInwardDTO(rec *entity.InwardRecord) InwardDTO {
	dto := InwardDTO{
		ID:           rec.ID,
		Code:         rec.Code,
		ProjectID:    rec.ProjectID,
		Type:         rec.Type,
		InvoiceNo:    rec.InvoiceNo,
		InvoiceDate:  formatDatePtr(rec.InvoiceDate),
		DeliveryDate: formatDatePtr(rec.DeliveryDate),
		EntryDate:    formatDate(rec.EntryDate),
		VehicleNo:    rec.VehicleNo,
		SupplierName: rec.SupplierName,
		Remarks:      rec.Remarks,
		CreatedAt:    rec.CreatedAt,
		Lines:        make([]InwardLineDTO, 0, len(rec.Lines)),
	}
	if rec.Project != nil {
		dto.ProjectCode = rec.Project.Code
		dto.ProjectName = rec.Project.Name
	}
	for _, line := range rec.Lines {
		l := InwardLineDTO{
			ID:          line.ID,
			MaterialID:  line.MaterialID,
			OrderedQty:  line.OrderedQty,
			ReceivedQty: line.ReceivedQty,
		}
		if line.Material != nil {
			l.MaterialCode = line.Material.Code
			l.MaterialName = line.Material.Name
			l.Unit = line.Material.Unit
		}
		dto.Lines = append(dto.Lines, l)
	}
	return dto
}

func toInwardDTOs(records []entity.InwardRecord) []InwardDTO {
	out := make([]InwardDTO, 0, len(records))
	for i := range records {
		out = append(out, toInwardDTO(&records[i]))
	}
	return out
}

func toOutwardDTO(reg *entity.OutwardRegister) OutwardDTO {
	dto := OutwardDTO{
		ID:        reg.ID,
		Code:      reg.Code,
		ProjectID: reg.ProjectID,
		Date:      formatDate(reg.Date),
		IssueTo:   reg.IssueTo,
		Status:    reg.Status,
		CloseDate: formatDatePtr(reg.CloseDate),
		CreatedAt: reg.CreatedAt,
		Lines:     make([]OutwardLineDTO, 0, len(reg.Lines)),
	}
	if reg.Project != nil {
		dto.ProjectCode = reg.Project.Code
		dto.ProjectName = reg.Project.Name
	}
	for _, line := range reg.Lines {
		l := OutwardLineDTO{
			ID:         line.ID,
			MaterialID: line.MaterialID,
			IssueQty:   line.IssueQty,
		}
		if line.Material != nil {
			l.MaterialCode = line.Material.Code
			l.MaterialName = line.Material.Name
			l.Unit = line.Material.Unit
		}
		dto.Lines = append(dto.Lines, l)
	}
	return dto
}

func toOutwardDTOs(registers []entity.OutwardRegister) []OutwardDTO {
	out := make([]OutwardDTO, 0, len(registers))
	for i := range registers {
		out = append(out, toOutwardDTO(&registers[i]))
	}
	return out
}

func toTransferDTO(rec *entity.TransferRecord) TransferDTO {
	dto := TransferDTO{
		ID:            rec.ID,
		Code:          rec.Code,
		FromProjectID: rec.FromProjectID,
		ToProjectID:   rec.ToProjectID,
		FromSite:      rec.FromSite,
		ToSite:        rec.ToSite,
		TransferDate:  formatDate(rec.TransferDate),
		Remarks:       rec.Remarks,
		CreatedAt:     rec.CreatedAt,
		Lines:         make([]TransferLineDTO, 0, len(rec.Lines)),
	}
	if rec.FromProject != nil {
		dto.FromProjectCode = rec.FromProject.Code
		dto.FromProjectName = rec.FromProject.Name
	}
	if rec.ToProject != nil {
		dto.ToProjectCode = rec.ToProject.Code
		dto.ToProjectName = rec.ToProject.Name
	}
	for _, line := range rec.Lines {
		l := TransferLineDTO{
			ID:          line.ID,
			MaterialID:  line.MaterialID,
			TransferQty: line.TransferQty,
		}
		if line.Material != nil {
			l.MaterialCode = line.Material.Code
			l.MaterialName = line.Material.Name
			l.Unit = line.Material.Unit
		}
		dto.Lines = append(dto.Lines, l)
	}
	return dto
}

func toTransferDTOs(records []entity.TransferRecord) []TransferDTO {
	out := make([]TransferDTO, 0, len(records))
	for i := range records {
		out = append(out, toTransferDTO(&records[i]))
	}
	return out
}

func toProcurementDTO(req *entity.ProcurementRequest) ProcurementDTO {
	dto := ProcurementDTO{
		ID:                  req.ID,
		ProjectID:           req.ProjectID,
		MaterialID:          req.MaterialID,
		CapturedRequiredQty: req.CapturedRequiredQty,
		RequestedIncrease:   req.RequestedIncrease,
		ProposedRequiredQty: req.ProposedRequiredQty,
		Reason:              req.Reason,
		Status:              req.Status,
		RequestedByID:       req.RequestedByID,
		ResolvedAt:          req.ResolvedAt,
		ResolutionNote:      req.ResolutionNote,
		CreatedAt:           req.CreatedAt,
	}
	if req.Project != nil {
		dto.ProjectCode = req.Project.Code
		dto.ProjectName = req.Project.Name
	}
	if req.Material != nil {
		dto.MaterialCode = req.Material.Code
		dto.MaterialName = req.Material.Name
		dto.Unit = req.Material.Unit
	}
	if req.RequestedBy != nil {
		dto.RequestedByName = req.RequestedBy.Name
	}
	if req.ResolvedByID != nil {
		dto.ResolvedByID = *req.ResolvedByID
	}
	if req.ResolvedBy != nil {
		dto.ResolvedByName = req.ResolvedBy.Name
	}
	return dto
}

func toProcurementDTOs(requests []entity.ProcurementRequest) []ProcurementDTO {
	out := make([]ProcurementDTO, 0, len(requests))
	for i := range requests {
		out = append(out, toProcurementDTO(&requests[i]))
	}
	return out
}
