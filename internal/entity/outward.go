package entity

import "time"

// OutwardStatus 出库登记状态
const (
	OutwardStatusOpen   = "OPEN"
	OutwardStatusClosed = "CLOSED"
)

// OutwardRegister 出库登记：物料从项目库存发出。
// 每个项目每天一张登记单，当天再次提交追加到未关闭的登记上。
type OutwardRegister struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Code      string     `json:"code" gorm:"size:40;not null"`
	ProjectID string     `json:"project_id" gorm:"size:36;not null;index:idx_outward_project_date"`
	Date      time.Time  `json:"date" gorm:"type:date;not null;index:idx_outward_project_date"`
	IssueTo   string     `json:"issue_to" gorm:"size:160"`
	Status    string     `json:"status" gorm:"size:16;not null;default:OPEN"`
	CloseDate *time.Time `json:"close_date" gorm:"type:date"`
	CreatedBy string     `json:"created_by" gorm:"size:36"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Project *Project      `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Lines   []OutwardLine `json:"lines,omitempty" gorm:"foreignKey:RegisterID"`
}

func (OutwardRegister) TableName() string {
	return "outward_registers"
}

// OutwardLine 出库行
type OutwardLine struct {
	ID         string  `json:"id" gorm:"primaryKey;size:36"`
	RegisterID string  `json:"register_id" gorm:"size:36;not null;index"`
	MaterialID string  `json:"material_id" gorm:"size:36;not null;index"`
	IssueQty   float64 `json:"issue_qty" gorm:"type:numeric(15,4);not null;default:0"`

	Register *OutwardRegister `json:"register,omitempty" gorm:"foreignKey:RegisterID"`
	Material *Material        `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (OutwardLine) TableName() string {
	return "outward_lines"
}
