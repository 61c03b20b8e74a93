package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TicketNew     = "NEW"
	TicketOpen    = "OPEN"
	TicketPending = "PENDING"
	TicketSolved  = "SOLVED"
	TicketClosed  = "CLOSED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Ticket struct {
	gorm.Model
	Number          string                      `json:"number" gorm:"uniqueIndex;not null"`
	Subject         string                      `json:"subject" gorm:"not null"`
	Description     string                      `json:"description"`
	Status          string                      `json:"status" gorm:"default:NEW"`
	Priority        string                      `json:"priority" gorm:"default:MEDIUM"`
	CompanyID       *uint                       `json:"company_id"`
	ContactID       *uint                       `json:"contact_id"`
	AssigneeID      *uint                       `json:"assignee_id"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	FirstResponseAt *time.Time                  `json:"first_response_at"`
	ResolvedAt      *time.Time                  `json:"resolved_at"`
	ClosedAt        *time.Time                  `json:"closed_at"`

	Company  *Company        `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Contact  *Contact        `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Assignee *User           `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`
	Messages []TicketMessage `json:"messages,omitempty"`
}

type TicketMessage struct {
	gorm.Model
	TicketID    uint           `json:"ticket_id" gorm:"not null"`
	AuthorID    uint           `json:"author_id"`
	AuthorEmail string         `json:"author_email"`
	AuthorName  string         `json:"author_name"`
	Content     string         `json:"content"`
	Internal    bool           `json:"internal" gorm:"default:false"`
	Attachments datatypes.JSON `json:"attachments"`
}

// TicketSequence is the per-year counter behind ticket numbers. The row is
// incremented under a row lock so concurrent creations never share a number.
type TicketSequence struct {
	ID   uint `gorm:"primaryKey"`
	Year int  `gorm:"uniqueIndex;not null"`
	Seq  int  `gorm:"not null"`
}
