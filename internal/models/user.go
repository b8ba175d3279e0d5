package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Username  string         `json:"username" gorm:"unique;not null"`
	Email     string         `json:"email" gorm:"unique;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Role      Role           `json:"role" gorm:"default:member"`
	Verified  bool           `json:"verified" gorm:"default:false"`
	Headline  string         `json:"headline"`
	Bio       string         `json:"bio"`
	Skills    string         `json:"skills"`
	AvatarRef string         `json:"avatar_ref"`
}

// Principal is the authenticated caller, extracted from the JWT by the
// auth middleware and passed explicitly into every service operation.
type Principal struct {
	ID   uint
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
