package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Contact struct {
	gorm.Model
	FirstName  string                      `json:"first_name" gorm:"not null"`
	LastName   string                      `json:"last_name" gorm:"not null"`
	Email      string                      `json:"email"`
	Phone      string                      `json:"phone"`
	Mobile     string                      `json:"mobile"`
	JobTitle   string                      `json:"job_title"`
	Department string                      `json:"department"`
	CompanyID  *uint                       `json:"company_id"`
	Address    datatypes.JSON              `json:"address"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	Notes      string                      `json:"notes"`
	Active     bool                        `json:"active" gorm:"default:true"`

	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}
