package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin        = "ADMIN"
	RoleManager      = "MANAGER"
	RoleSalesRep     = "SALES_REP"
	RoleSupportAgent = "SUPPORT_AGENT"
	RoleEmployee     = "EMPLOYEE"
)

type User struct {
	gorm.Model
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Role          string     `json:"role" gorm:"default:EMPLOYEE"`
	Locale        string     `json:"locale" gorm:"default:fr"`
	Timezone      string     `json:"timezone" gorm:"default:Europe/Paris"`
	Avatar        string     `json:"avatar"`
	Active        bool       `json:"active" gorm:"default:true"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	RefreshToken  string     `json:"-"`
}

func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
