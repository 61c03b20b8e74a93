package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/policy"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"
	"crm-backend/internal/ws"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type DealHandler struct {
	repo         repository.DealRepository
	activityRepo repository.ActivityRepository
	events       ws.Emitter
}

func NewDealHandler(repo repository.DealRepository, activityRepo repository.ActivityRepository, events ws.Emitter) *DealHandler {
	return &DealHandler{repo: repo, activityRepo: activityRepo, events: events}
}

type DealRequest struct {
	Title         string   `json:"title" validate:"required"`
	CompanyID     uint     `json:"company_id" validate:"required"`
	ContactID     *uint    `json:"contact_id"`
	Stage         string   `json:"stage" validate:"omitempty,oneof=NEW QUALIFIED PROPOSAL NEGOTIATION WON LOST"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency"`
	Probability   *int     `json:"probability" validate:"omitempty,min=0,max=100"`
	ExpectedClose string   `json:"expected_close"`
	Source        string   `json:"source"`
	Notes         string   `json:"notes"`
	Tags          []string `json:"tags"`
}

func (req DealRequest) apply(deal *model.Deal) error {
	deal.Title = req.Title
	deal.CompanyID = req.CompanyID
	deal.ContactID = req.ContactID
	deal.Amount = req.Amount
	deal.Source = req.Source
	deal.Notes = req.Notes
	if req.Stage != "" {
		deal.Stage = req.Stage
	}
	if req.Currency != "" {
		deal.Currency = req.Currency
	}
	if req.Probability != nil {
		deal.Probability = *req.Probability
	}
	if req.ExpectedClose != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.ExpectedClose, time.Local)
		if err != nil {
			return apperr.BadRequest("Date de clôture invalide")
		}
		deal.ExpectedClose = &parsed
	}
	if req.Tags != nil {
		deal.Tags = datatypes.NewJSONSlice(req.Tags)
	}
	return nil
}

func (h *DealHandler) List(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	filters := repository.DealFilters{
		Stage:     c.Query("stage"),
		OwnerID:   uint(c.QueryInt("owner_id")),
		CompanyID: uint(c.QueryInt("company_id")),
		Search:    c.Query("search"),
	}

	deals, err := h.repo.List(filters, policy.Deals(actor))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deals": deals})
}

// Pipeline groups deals by stage with per-stage counts and amounts.
func (h *DealHandler) Pipeline(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	deals, err := h.repo.List(repository.DealFilters{}, policy.Deals(actor))
	if err != nil {
		return err
	}

	pipeline := make(map[string][]model.Deal, len(model.DealStages))
	totals := make(map[string]fiber.Map, len(model.DealStages))
	for _, stage := range model.DealStages {
		pipeline[stage] = []model.Deal{}
	}
	for _, deal := range deals {
		pipeline[deal.Stage] = append(pipeline[deal.Stage], deal)
	}
	for _, stage := range model.DealStages {
		value := 0.0
		for _, deal := range pipeline[stage] {
			value += deal.Amount
		}
		totals[stage] = fiber.Map{"count": len(pipeline[stage]), "value": value}
	}

	return c.JSON(fiber.Map{"pipeline": pipeline, "totals": totals})
}

func (h *DealHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	deal, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deal": deal})
}

func (h *DealHandler) Create(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	var req DealRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	deal := model.Deal{OwnerID: actor.ID, Stage: model.StageNew, Currency: "EUR", Probability: 50}
	if err := req.apply(&deal); err != nil {
		return err
	}
	if err := h.repo.Create(&deal); err != nil {
		return err
	}

	if err := h.activityRepo.Create(&model.Activity{
		Type:    "status_change",
		Subject: "Deal créé",
		Content: fmt.Sprintf("Deal %q créé avec le statut %s", deal.Title, deal.Stage),
		DealID:  &deal.ID,
		UserID:  actor.ID,
	}); err != nil {
		return err
	}

	h.events.Emit("deal:created", fiber.Map{"deal": deal, "user_id": actor.ID})
	log.Printf("[DEAL] created %q by user %d", deal.Title, actor.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"deal": deal})
}

// changeStage applies terminal-stage side effects and the audit record.
func (h *DealHandler) changeStage(deal *model.Deal, oldStage, newStage string, actorID uint) error {
	deal.Stage = newStage
	now := time.Now()
	switch newStage {
	case model.StageWon:
		deal.WonAt = &now
		deal.Probability = 100
	case model.StageLost:
		deal.LostAt = &now
		deal.Probability = 0
	}

	meta, _ := json.Marshal(fiber.Map{"oldStage": oldStage, "newStage": newStage})
	return h.activityRepo.Create(&model.Activity{
		Type:     "status_change",
		Subject:  "Changement de statut",
		Content:  fmt.Sprintf("Statut changé de %s à %s", oldStage, newStage),
		DealID:   &deal.ID,
		UserID:   actorID,
		Metadata: datatypes.JSON(meta),
	})
}

func (h *DealHandler) Update(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req DealRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	deal, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	oldStage := deal.Stage
	if err := req.apply(deal); err != nil {
		return err
	}
	if deal.Stage != oldStage {
		if err := h.changeStage(deal, oldStage, deal.Stage, actor.ID); err != nil {
			return err
		}
	}
	if err := h.repo.Update(deal); err != nil {
		return err
	}

	h.events.Emit("deal:updated", fiber.Map{"deal": deal, "user_id": actor.ID})
	return c.JSON(fiber.Map{"deal": deal})
}

type StageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=NEW QUALIFIED PROPOSAL NEGOTIATION WON LOST"`
}

func (h *DealHandler) UpdateStage(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req StageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	deal, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	oldStage := deal.Stage
	if err := h.changeStage(deal, oldStage, req.Stage, actor.ID); err != nil {
		return err
	}
	if err := h.repo.Update(deal); err != nil {
		return err
	}

	h.events.Emit("deal:stage-changed", fiber.Map{
		"deal_id":  deal.ID,
		"oldStage": oldStage,
		"newStage": req.Stage,
		"user_id":  actor.ID,
	})
	return c.JSON(fiber.Map{"deal": deal})
}

func (h *DealHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	if _, err := h.repo.FindByID(uint(id)); err != nil {
		return err
	}
	if err := h.repo.Delete(uint(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Deal supprimé"})
}
