package entity

import "time"

// InwardType 入库类型
const (
	InwardTypeSupply = "SUPPLY" // 采购到货
	InwardTypeReturn = "RETURN" // 退回入库
)

// InwardRecord 入库单：物料进入项目库存
type InwardRecord struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Code         string     `json:"code" gorm:"size:40;not null"`
	ProjectID    string     `json:"project_id" gorm:"size:36;not null;index"`
	Type         string     `json:"type" gorm:"size:16;not null;default:SUPPLY"`
	InvoiceNo    string     `json:"invoice_no" gorm:"size:64"`
	InvoiceDate  *time.Time `json:"invoice_date"`
	DeliveryDate *time.Time `json:"delivery_date"`
	EntryDate    time.Time  `json:"entry_date" gorm:"type:date;not null;index"`
	VehicleNo    string     `json:"vehicle_no" gorm:"size:32"`
	SupplierName string     `json:"supplier_name" gorm:"size:160"`
	Remarks      string     `json:"remarks" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:36"`
	CreatedAt    time.Time  `json:"created_at"`

	Project *Project     `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Lines   []InwardLine `json:"lines,omitempty" gorm:"foreignKey:RecordID"`
}

func (InwardRecord) TableName() string {
	return "inward_records"
}

// InwardLine 入库行。orderedQty与receivedQty各自独立记录，
// 允许只录其一。
type InwardLine struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	RecordID    string  `json:"record_id" gorm:"size:36;not null;index"`
	MaterialID  string  `json:"material_id" gorm:"size:36;not null;index"`
	OrderedQty  float64 `json:"ordered_qty" gorm:"type:numeric(15,4);not null;default:0"`
	ReceivedQty float64 `json:"received_qty" gorm:"type:numeric(15,4);not null;default:0"`

	Record   *InwardRecord `json:"record,omitempty" gorm:"foreignKey:RecordID"`
	Material *Material     `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (InwardLine) TableName() string {
	return "inward_lines"
}
