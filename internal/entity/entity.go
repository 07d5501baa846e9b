package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移全部表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&UserAccount{},
		&Project{},
		&Material{},

		// BOM分配
		&BomLine{},

		// 物料流水
		&InwardRecord{},
		&InwardLine{},
		&OutwardRegister{},
		&OutwardLine{},
		&TransferRecord{},
		&TransferLine{},

		// 采购申请
		&ProcurementRequest{},
	)
}
