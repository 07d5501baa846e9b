package entity

import "time"

// ProcurementStatus 采购申请状态
const (
	ProcurementPending  = "PENDING"
	ProcurementApproved = "APPROVED"
	ProcurementRejected = "REJECTED"
)

// ProcurementRequest 追加分配申请：请求提高某项目某物料的BOM需求量。
// capturedRequiredQty为申请时的分配快照；批准后分配提升到proposedRequiredQty。
type ProcurementRequest struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:36"`
	ProjectID           string     `json:"project_id" gorm:"size:36;not null;index"`
	MaterialID          string     `json:"material_id" gorm:"size:36;not null;index"`
	CapturedRequiredQty float64    `json:"captured_required_qty" gorm:"type:numeric(15,4);not null;default:0"`
	RequestedIncrease   float64    `json:"requested_increase" gorm:"type:numeric(15,4);not null"`
	ProposedRequiredQty float64    `json:"proposed_required_qty" gorm:"type:numeric(15,4);not null"`
	Reason              string     `json:"reason" gorm:"type:text;not null"`
	Status              string     `json:"status" gorm:"size:16;not null;default:PENDING;index"`
	RequestedByID       string     `json:"requested_by_id" gorm:"size:36;not null;index"`
	ResolvedByID        *string    `json:"resolved_by_id" gorm:"size:36"`
	ResolvedAt          *time.Time `json:"resolved_at"`
	ResolutionNote      string     `json:"resolution_note" gorm:"type:text"`
	CreatedAt           time.Time  `json:"created_at"`

	Project     *Project     `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Material    *Material    `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
	RequestedBy *UserAccount `json:"requested_by,omitempty" gorm:"foreignKey:RequestedByID"`
	ResolvedBy  *UserAccount `json:"resolved_by,omitempty" gorm:"foreignKey:ResolvedByID"`
}

func (ProcurementRequest) TableName() string {
	return "procurement_requests"
}
