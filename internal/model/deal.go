package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StageNew         = "NEW"
	StageQualified   = "QUALIFIED"
	StageProposal    = "PROPOSAL"
	StageNegotiation = "NEGOTIATION"
	StageWon         = "WON"
	StageLost        = "LOST"
)

// DealStages is the pipeline order, New to Won/Lost.
var DealStages = []string{StageNew, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost}

type Deal struct {
	gorm.Model
	Title         string                      `json:"title" gorm:"not null"`
	CompanyID     uint                        `json:"company_id" gorm:"not null"`
	ContactID     *uint                       `json:"contact_id"`
	OwnerID       uint                        `json:"owner_id"`
	Stage         string                      `json:"stage" gorm:"default:NEW"`
	Amount        float64                     `json:"amount"`
	Currency      string                      `json:"currency" gorm:"default:EUR"`
	Probability   int                         `json:"probability" gorm:"default:50"`
	ExpectedClose *time.Time                  `json:"expected_close"`
	WonAt         *time.Time                  `json:"won_at"`
	LostAt        *time.Time                  `json:"lost_at"`
	Source        string                      `json:"source"`
	Notes         string                      `json:"notes"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`

	Company    *Company   `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Contact    *Contact   `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Owner      *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Activities []Activity `json:"activities,omitempty" gorm:"foreignKey:DealID"`
}
