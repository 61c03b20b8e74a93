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

func dealApp(t *testing.T, actor policy.Actor) (*fiber.App, *fakeEmitter, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	events := &fakeEmitter{}
	hdl := NewDealHandler(
		repository.NewDealRepository(db),
		repository.NewActivityRepository(db),
		events,
	)

	app := testApp(actor)
	api := app.Group("/api/deals")
	api.Get("/", hdl.List)
	api.Get("/pipeline", hdl.Pipeline)
	api.Get("/:id", hdl.Get)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Patch("/:id/stage", hdl.UpdateStage)
	api.Delete("/:id", hdl.Delete)
	return app, events, db
}

var salesRep = policy.Actor{ID: 1, Email: "sales@crm.local", Role: model.RoleSalesRep}

func TestDealCreateAppendsActivity(t *testing.T) {
	app, events, db := dealApp(t, salesRep)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/deals/", fiber.Map{
		"title": "Rénovation", "company_id": 1, "amount": 50000,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	deal := body["deal"].(map[string]any)
	assert.Equal(t, "NEW", deal["stage"])
	assert.Equal(t, float64(50), deal["probability"])

	var activities []model.Activity
	require.NoError(t, db.Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, "Deal créé", activities[0].Subject)

	assert.Contains(t, events.events, "deal:created")
}

func TestDealStageWonSetsTimestampAndProbability(t *testing.T) {
	app, events, db := dealApp(t, salesRep)
	doJSON(t, app, fiber.MethodPost, "/api/deals/", fiber.Map{"title": "d", "company_id": 1})

	resp, _ := doJSON(t, app, fiber.MethodPatch, "/api/deals/1/stage", fiber.Map{"stage": "WON"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var deal model.Deal
	require.NoError(t, db.First(&deal, 1).Error)
	assert.Equal(t, model.StageWon, deal.Stage)
	assert.Equal(t, 100, deal.Probability)
	assert.NotNil(t, deal.WonAt)
	assert.Nil(t, deal.LostAt)

	// The transition is audited.
	var activities []model.Activity
	require.NoError(t, db.Where("subject = ?", "Changement de statut").Find(&activities).Error)
	assert.Len(t, activities, 1)

	assert.Contains(t, events.events, "deal:stage-changed")
}

func TestDealStageLostZeroesProbability(t *testing.T) {
	app, _, db := dealApp(t, salesRep)
	doJSON(t, app, fiber.MethodPost, "/api/deals/", fiber.Map{"title": "d", "company_id": 1})

	doJSON(t, app, fiber.MethodPatch, "/api/deals/1/stage", fiber.Map{"stage": "LOST"})

	var deal model.Deal
	require.NoError(t, db.First(&deal, 1).Error)
	assert.Equal(t, 0, deal.Probability)
	assert.NotNil(t, deal.LostAt)
}

func TestDealStageRejectsUnknownStage(t *testing.T) {
	app, _, _ := dealApp(t, salesRep)
	doJSON(t, app, fiber.MethodPost, "/api/deals/", fiber.Map{"title": "d", "company_id": 1})

	resp, _ := doJSON(t, app, fiber.MethodPatch, "/api/deals/1/stage", fiber.Map{"stage": "ARCHIVED"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDealListScopedForSalesRep(t *testing.T) {
	app, _, db := dealApp(t, salesRep)
	require.NoError(t, db.Create(&model.Deal{Title: "mine", CompanyID: 1, OwnerID: 1}).Error)
	require.NoError(t, db.Create(&model.Deal{Title: "theirs", CompanyID: 1, OwnerID: 2}).Error)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/deals/", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	deals := body["deals"].([]any)
	require.Len(t, deals, 1)
	assert.Equal(t, "mine", deals[0].(map[string]any)["title"])
}

func TestDealPipelineGroupsAndTotals(t *testing.T) {
	app, _, db := dealApp(t, salesRep)
	require.NoError(t, db.Create(&model.Deal{Title: "a", CompanyID: 1, OwnerID: 1, Stage: model.StageNew, Amount: 100}).Error)
	require.NoError(t, db.Create(&model.Deal{Title: "b", CompanyID: 1, OwnerID: 1, Stage: model.StageNew, Amount: 200}).Error)
	require.NoError(t, db.Create(&model.Deal{Title: "c", CompanyID: 1, OwnerID: 1, Stage: model.StageWon, Amount: 400}).Error)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/deals/pipeline", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	totals := body["totals"].(map[string]any)
	newTotals := totals["NEW"].(map[string]any)
	assert.Equal(t, float64(2), newTotals["count"])
	assert.Equal(t, float64(300), newTotals["value"])
	assert.Equal(t, float64(400), totals["WON"].(map[string]any)["value"])
}

func TestDealDelete(t *testing.T) {
	app, _, db := dealApp(t, salesRep)
	doJSON(t, app, fiber.MethodPost, "/api/deals/", fiber.Map{"title": "d", "company_id": 1})

	resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/deals/1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.Deal{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/deals/99", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
