// Package policy centralizes per-resource authorization. Each resource gets
// one function evaluated once per request, returning either a scoping
// predicate for list queries or an allow/deny verdict, instead of role
// checks scattered through handlers.
package policy

import (
	"crm-backend/internal/model"

	"gorm.io/gorm"
)

// Actor is the authenticated caller, as decoded from the access token.
type Actor struct {
	ID    uint
	Email string
	Role  string
}

// Scope narrows a list query to the rows the actor may see.
type Scope func(*gorm.DB) *gorm.DB

func unrestricted(db *gorm.DB) *gorm.DB { return db }

// Deals: sales reps see only the deals they own.
func Deals(actor Actor) Scope {
	if actor.Role == model.RoleSalesRep {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("owner_id = ?", actor.ID)
		}
	}
	return unrestricted
}

// Tickets: support agents see only the tickets assigned to them.
func Tickets(actor Actor) Scope {
	if actor.Role == model.RoleSupportAgent {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("assignee_id = ?", actor.ID)
		}
	}
	return unrestricted
}

// CanManageUser allows self-service plus full admin access.
func CanManageUser(actor Actor, targetID uint) bool {
	return actor.ID == targetID || actor.Role == model.RoleAdmin
}

// CanListUsers restricts the user directory to admins.
func CanListUsers(actor Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanReviewAttendance gates the punch validation flag to reviewer roles.
func CanReviewAttendance(actor Actor) bool {
	return actor.Role == model.RoleAdmin || actor.Role == model.RoleManager
}
