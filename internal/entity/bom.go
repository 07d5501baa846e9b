package entity

import "time"

// BomLine 项目BOM分配行：某物料在某项目的计划需求量。
// (project, material) 唯一。
type BomLine struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID  string    `json:"project_id" gorm:"size:36;not null;uniqueIndex:idx_bom_project_material"`
	MaterialID string    `json:"material_id" gorm:"size:36;not null;uniqueIndex:idx_bom_project_material"`
	Quantity   float64   `json:"quantity" gorm:"type:numeric(15,4);not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Project  *Project  `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Material *Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (BomLine) TableName() string {
	return "bom_lines"
}
