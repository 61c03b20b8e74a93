package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is the audit trail appended to CRM aggregates (stage changes,
// notes, calls). Only status_change entries are written by the API itself.
type Activity struct {
	gorm.Model
	Type      string         `json:"type"`
	Subject   string         `json:"subject"`
	Content   string         `json:"content"`
	DealID    *uint          `json:"deal_id"`
	CompanyID *uint          `json:"company_id"`
	ContactID *uint          `json:"contact_id"`
	UserID    uint           `json:"user_id"`
	Metadata  datatypes.JSON `json:"metadata"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
