package entity

import "time"

// TransferRecord 调拨单：物料在项目/场地之间移动。
// 对源项目计为调出，对目标项目计为调入；不生成影子出入库单。
type TransferRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Code          string    `json:"code" gorm:"size:40;not null"`
	FromProjectID string    `json:"from_project_id" gorm:"size:36;not null;index"`
	ToProjectID   string    `json:"to_project_id" gorm:"size:36;not null;index"`
	FromSite      string    `json:"from_site" gorm:"size:120"`
	ToSite        string    `json:"to_site" gorm:"size:120"`
	TransferDate  time.Time `json:"transfer_date" gorm:"type:date;not null;index"`
	Remarks       string    `json:"remarks" gorm:"type:text"`
	CreatedBy     string    `json:"created_by" gorm:"size:36"`
	CreatedAt     time.Time `json:"created_at"`

	FromProject *Project       `json:"from_project,omitempty" gorm:"foreignKey:FromProjectID"`
	ToProject   *Project       `json:"to_project,omitempty" gorm:"foreignKey:ToProjectID"`
	Lines       []TransferLine `json:"lines,omitempty" gorm:"foreignKey:RecordID"`
}

func (TransferRecord) TableName() string {
	return "transfer_records"
}

// TransferLine 调拨行
type TransferLine struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	RecordID    string  `json:"record_id" gorm:"size:36;not null;index"`
	MaterialID  string  `json:"material_id" gorm:"size:36;not null;index"`
	TransferQty float64 `json:"transfer_qty" gorm:"type:numeric(15,4);not null;default:0"`

	Record   *TransferRecord `json:"record,omitempty" gorm:"foreignKey:RecordID"`
	Material *Material       `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (TransferLine) TableName() string {
	return "transfer_lines"
}
