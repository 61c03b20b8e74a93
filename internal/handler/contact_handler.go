package handler

import (
	"encoding/json"

	"crm-backend/internal/apperr"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type ContactHandler struct {
	repo repository.ContactRepository
}

func NewContactHandler(repo repository.ContactRepository) *ContactHandler {
	return &ContactHandler{repo: repo}
}

type ContactRequest struct {
	FirstName  string          `json:"first_name" validate:"required"`
	LastName   string          `json:"last_name" validate:"required"`
	Email      string          `json:"email" validate:"omitempty,email"`
	Phone      string          `json:"phone"`
	Mobile     string          `json:"mobile"`
	JobTitle   string          `json:"job_title"`
	Department string          `json:"department"`
	CompanyID  *uint           `json:"company_id"`
	Address    *AddressPayload `json:"address"`
	Tags       []string        `json:"tags"`
	Notes      string          `json:"notes"`
}

func (req ContactRequest) apply(contact *model.Contact) {
	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Mobile = req.Mobile
	contact.JobTitle = req.JobTitle
	contact.Department = req.Department
	contact.CompanyID = req.CompanyID
	contact.Notes = req.Notes
	if req.Address != nil {
		raw, _ := json.Marshal(req.Address)
		contact.Address = datatypes.JSON(raw)
	}
	if req.Tags != nil {
		contact.Tags = datatypes.NewJSONSlice(req.Tags)
	}
}

func (h *ContactHandler) List(c *fiber.Ctx) error {
	filters := repository.ContactFilters{
		Search:    c.Query("search"),
		CompanyID: uint(c.QueryInt("company_id")),
		Active:    c.Query("active", "true") == "true",
	}

	contacts, err := h.repo.List(filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"contacts": contacts})
}

func (h *ContactHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	contact, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"contact": contact})
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	contact := model.Contact{Active: true}
	req.apply(&contact)

	if err := h.repo.Create(&contact); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"contact": contact})
}

func (h *ContactHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	contact, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	req.apply(contact)

	if err := h.repo.Update(contact); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"contact": contact})
}

// Delete flags the contact inactive (soft delete, same as companies).
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	contact, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	contact.Active = false
	if err := h.repo.Update(contact); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Contact supprimé"})
}
