package handler

import (
	"testing"

	"crm-backend/internal/model"
	"crm-backend/internal/policy"
	"crm-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func companyApp(t *testing.T, actor policy.Actor) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	hdl := NewCompanyHandler(repository.NewCompanyRepository(db))

	app := testApp(actor)
	api := app.Group("/api/companies")
	api.Get("/", hdl.List)
	api.Get("/:id", hdl.Get)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Delete("/:id", hdl.Delete)
	return app, db
}

func TestCompanyCreateAndGet(t *testing.T) {
	app, _ := companyApp(t, salesRep)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/companies/", fiber.Map{
		"name": "Acme SARL",
		"vat":  "FR123456789",
		"address": fiber.Map{
			"street": "1 rue de Rivoli", "city": "Paris", "postal_code": "75001", "country": "FR",
		},
		"tags": []string{"vip"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	company := body["company"].(map[string]any)
	assert.Equal(t, "Acme SARL", company["name"])
	assert.Equal(t, true, company["active"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/companies/1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme SARL", body["company"].(map[string]any)["name"])

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/companies/99", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCompanyCreateRequiresName(t *testing.T) {
	app, _ := companyApp(t, salesRep)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/companies/", fiber.Map{"vat": "FR1"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Erreur de validation", body["message"])
}

func TestCompanySoftDelete(t *testing.T) {
	app, db := companyApp(t, salesRep)
	doJSON(t, app, fiber.MethodPost, "/api/companies/", fiber.Map{"name": "Acme SARL"})

	resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/companies/1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The row stays in the table, only flagged inactive.
	var company model.Company
	require.NoError(t, db.First(&company, 1).Error)
	assert.False(t, company.Active)

	_, body := doJSON(t, app, fiber.MethodGet, "/api/companies/", nil)
	assert.Empty(t, body["companies"].([]any))

	_, body = doJSON(t, app, fiber.MethodGet, "/api/companies/?active=false", nil)
	assert.Len(t, body["companies"].([]any), 1)
}

func TestCompanyListFilters(t *testing.T) {
	app, db := companyApp(t, salesRep)
	require.NoError(t, db.Create(&model.Company{Name: "Acme SARL", Active: true, Tags: []string{"vip"}}).Error)
	require.NoError(t, db.Create(&model.Company{Name: "Globex", Active: true}).Error)

	_, body := doJSON(t, app, fiber.MethodGet, "/api/companies/?search=acme", nil)
	companies := body["companies"].([]any)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme SARL", companies[0].(map[string]any)["name"])

	_, body = doJSON(t, app, fiber.MethodGet, "/api/companies/?tags=vip", nil)
	require.Len(t, body["companies"].([]any), 1)
}
