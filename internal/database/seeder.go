package database

import (
	"log"

	"crm-backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedAll loads a minimal demo dataset: one user per role, two companies
// with contacts, an open deal and a first ticket. Idempotent via
// FirstOrCreate on the natural keys.
func SeedAll(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := []model.User{
		{Email: "admin@crm.local", FirstName: "Alice", LastName: "Martin", Role: model.RoleAdmin},
		{Email: "manager@crm.local", FirstName: "Bruno", LastName: "Lefevre", Role: model.RoleManager},
		{Email: "sales@crm.local", FirstName: "Chloé", LastName: "Dubois", Role: model.RoleSalesRep},
		{Email: "support@crm.local", FirstName: "David", LastName: "Moreau", Role: model.RoleSupportAgent},
		{Email: "employee@crm.local", FirstName: "Emma", LastName: "Bernard", Role: model.RoleEmployee},
	}
	for i := range users {
		users[i].PasswordHash = string(hash)
		users[i].Active = true
		db.Where(model.User{Email: users[i].Email}).FirstOrCreate(&users[i])
	}

	var admin, sales model.User
	db.Where("email = ?", "admin@crm.local").First(&admin)
	db.Where("email = ?", "sales@crm.local").First(&sales)

	companies := []model.Company{
		{Name: "Globibat Construction", VAT: "CHE-123.456.789", Industry: "Construction", OwnerID: admin.ID, Active: true,
			Tags: datatypes.NewJSONSlice([]string{"btp", "suisse"})},
		{Name: "Atelier Lumière", VAT: "FR-987654321", Industry: "Design", OwnerID: sales.ID, Active: true,
			Tags: datatypes.NewJSONSlice([]string{"design"})},
	}
	for i := range companies {
		db.Where(model.Company{Name: companies[i].Name}).FirstOrCreate(&companies[i])
	}

	contact := model.Contact{
		FirstName: "Paul", LastName: "Girard", Email: "paul.girard@globibat.ch",
		JobTitle: "Directeur", CompanyID: &companies[0].ID, Active: true,
	}
	db.Where(model.Contact{Email: contact.Email}).FirstOrCreate(&contact)

	deal := model.Deal{
		Title: "Rénovation siège social", CompanyID: companies[0].ID, ContactID: &contact.ID,
		OwnerID: sales.ID, Stage: model.StageQualified, Amount: 85000, Currency: "EUR", Probability: 60,
	}
	db.Where(model.Deal{Title: deal.Title}).FirstOrCreate(&deal)

	var count int64
	db.Model(&model.Ticket{}).Count(&count)
	if count == 0 {
		ticket := model.Ticket{
			Number: "TK-2025-0001", Subject: "Accès au portail client",
			Description: "Impossible de se connecter au portail.", Status: model.TicketNew,
			Priority: model.PriorityMedium, CompanyID: &companies[0].ID, ContactID: &contact.ID,
		}
		db.Create(&ticket)
		db.Where(model.TicketSequence{Year: 2025}).
			Attrs(model.TicketSequence{Seq: 1}).
			FirstOrCreate(&model.TicketSequence{})
	}

	log.Println("seed complete")
}
