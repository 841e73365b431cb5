package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex:idx_username;size:25;not null" json:"username"`
	Password string `json:"-"`

	// 非特权用户必须关联 tier，staff/superuser 可以为空
	TierID *uint `json:"tier_id,omitempty"`
	Tier   *Tier `json:"tier,omitempty"`

	IsActive    bool `gorm:"default:true;not null" json:"is_active"`
	IsStaff     bool `gorm:"default:false;not null" json:"is_staff"`
	IsSuperuser bool `gorm:"default:false;not null" json:"is_superuser"`
}

// IsPrivileged staff 或 superuser 无条件通过所有 tier 能力检查
func (u *User) IsPrivileged() bool {
	return u.IsStaff || u.IsSuperuser
}
