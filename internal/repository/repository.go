package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	User        *UserRepository
	Project     *ProjectRepository
	Material    *MaterialRepository
	Bom         *BomRepository
	Inward      *InwardRepository
	Outward     *OutwardRepository
	Transfer    *TransferRepository
	Procurement *ProcurementRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Project:     NewProjectRepository(db),
		Material:    NewMaterialRepository(db),
		Bom:         NewBomRepository(db),
		Inward:      NewInwardRepository(db),
		Outward:     NewOutwardRepository(db),
		Transfer:    NewTransferRepository(db),
		Procurement: NewProcurementRepository(db),
	}
}
