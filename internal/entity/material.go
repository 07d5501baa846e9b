package entity

import "time"

// Material 物料目录条目。RequiredQty等为跨项目累计值，
// 随BOM分配与出入库记录同步维护。
type Material struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Code        string    `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:160;not null"`
	PartNo      string    `json:"part_no" gorm:"size:64"`
	LineType    string    `json:"line_type" gorm:"size:32"`
	Unit        string    `json:"unit" gorm:"size:20;not null;default:pcs"`
	Category    string    `json:"category" gorm:"size:64"`
	RequiredQty float64   `json:"required_qty" gorm:"type:numeric(15,4);not null;default:0"`
	OrderedQty  float64   `json:"ordered_qty" gorm:"type:numeric(15,4);not null;default:0"`
	ReceivedQty float64   `json:"received_qty" gorm:"type:numeric(15,4);not null;default:0"`
	UtilizedQty float64   `json:"utilized_qty" gorm:"type:numeric(15,4);not null;default:0"`
	BalanceQty  float64   `json:"balance_qty" gorm:"type:numeric(15,4);not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "materials"
}

// SyncBalance 重算全局结存（不允许为负）
func (m *Material) SyncBalance() {
	balance := m.ReceivedQty - m.UtilizedQty
	if balance < 0 {
		balance = 0
	}
	m.BalanceQty = balance
}
