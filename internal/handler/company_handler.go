package handler

import (
	"encoding/json"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type CompanyHandler struct {
	repo repository.CompanyRepository
}

func NewCompanyHandler(repo repository.CompanyRepository) *CompanyHandler {
	return &CompanyHandler{repo: repo}
}

type AddressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CompanyRequest struct {
	Name     string          `json:"name" validate:"required"`
	VAT      string          `json:"vat"`
	Website  string          `json:"website" validate:"omitempty,url"`
	Industry string          `json:"industry"`
	Size     string          `json:"size"`
	Revenue  float64         `json:"revenue"`
	Address  *AddressPayload `json:"address"`
	Tags     []string        `json:"tags"`
	Notes    string          `json:"notes"`
}

func (req CompanyRequest) apply(company *model.Company) {
	company.Name = req.Name
	company.VAT = req.VAT
	company.Website = req.Website
	company.Industry = req.Industry
	company.Size = req.Size
	company.Revenue = req.Revenue
	company.Notes = req.Notes
	if req.Address != nil {
		raw, _ := json.Marshal(req.Address)
		company.Address = datatypes.JSON(raw)
	}
	if req.Tags != nil {
		company.Tags = datatypes.NewJSONSlice(req.Tags)
	}
}

func (h *CompanyHandler) List(c *fiber.Ctx) error {
	filters := repository.CompanyFilters{
		Search: c.Query("search"),
		Active: c.Query("active", "true") == "true",
	}
	if tags := c.Query("tags"); tags != "" {
		filters.Tags = strings.Split(tags, ",")
	}

	companies, err := h.repo.List(filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"companies": companies})
}

func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	company, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"company": company})
}

func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	var req CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	company := model.Company{OwnerID: actor.ID, Active: true}
	req.apply(&company)

	if err := h.repo.Create(&company); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"company": company})
}

func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	company, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	req.apply(company)

	if err := h.repo.Update(company); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"company": company})
}

// Delete is a soft delete: the company is flagged inactive, never removed.
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	company, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	company.Active = false
	if err := h.repo.Update(company); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Entreprise supprimée"})
}
