package entity

import "time"

// Role 用户角色
const (
	RoleAdmin              = "ADMIN"
	RoleCEO                = "CEO"
	RoleCOO                = "COO"
	RoleProcurementManager = "PROCUREMENT_MANAGER"
	RoleProjectHead        = "PROJECT_HEAD"
	RoleProjectManager     = "PROJECT_MANAGER"
	RoleUser               = "USER"
)

// AccessType 项目可见范围
const (
	AccessAll      = "ALL"      // 全部项目可见
	AccessProjects = "PROJECTS" // 仅分配的项目可见
)

// UserAccount 用户账号
type UserAccount struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"size:120;not null"`
	Email        string    `json:"email" gorm:"size:160;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Role         string    `json:"role" gorm:"size:32;not null;default:USER"`
	AccessType   string    `json:"access_type" gorm:"size:16;not null;default:PROJECTS"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Projects []Project `json:"projects,omitempty" gorm:"many2many:user_projects"`
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// ElevatedRole ADMIN/CEO/COO/采购经理/项目负责人强制全项目可见
func ElevatedRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCEO, RoleCOO, RoleProcurementManager, RoleProjectHead:
		return true
	}
	return false
}

// KnownRole 角色合法性检查
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCEO, RoleCOO, RoleProcurementManager,
		RoleProjectHead, RoleProjectManager, RoleUser:
		return true
	}
	return false
}
