package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Company struct {
	gorm.Model
	Name     string                       `json:"name" gorm:"not null"`
	VAT      string                       `json:"vat"`
	Website  string                       `json:"website"`
	Industry string                       `json:"industry"`
	Size     string                       `json:"size"`
	Revenue  float64                      `json:"revenue"`
	Address  datatypes.JSON               `json:"address"`
	Tags     datatypes.JSONSlice[string]  `json:"tags"`
	Notes    string                       `json:"notes"`
	Active   bool                         `json:"active" gorm:"default:true"`
	OwnerID  uint                         `json:"owner_id"`

	Owner    *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Contacts []Contact `json:"contacts,omitempty"`
	Deals    []Deal    `json:"deals,omitempty"`
	Tickets  []Ticket  `json:"tickets,omitempty"`
}
