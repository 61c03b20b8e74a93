package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/mailer"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/policy"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"
	"crm-backend/internal/ws"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type TicketHandler struct {
	repo     repository.TicketRepository
	userRepo repository.UserRepository
	events   ws.Emitter
	mail     *mailer.Mailer
}

func NewTicketHandler(repo repository.TicketRepository, userRepo repository.UserRepository, events ws.Emitter, mail *mailer.Mailer) *TicketHandler {
	return &TicketHandler{repo: repo, userRepo: userRepo, events: events, mail: mail}
}

type TicketRequest struct {
	Subject     string   `json:"subject" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	CompanyID   *uint    `json:"company_id"`
	ContactID   *uint    `json:"contact_id"`
	AssigneeID  *uint    `json:"assignee_id"`
	Tags        []string `json:"tags"`
}

func (h *TicketHandler) List(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	filters := repository.TicketFilters{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssigneeID: uint(c.QueryInt("assignee_id")),
		Search:     c.Query("search"),
	}

	tickets, err := h.repo.List(filters, policy.Tickets(actor))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": tickets})
}

func (h *TicketHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	ticket, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

func (h *TicketHandler) Create(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	var req TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	number, err := h.repo.NextNumber(time.Now().Year())
	if err != nil {
		return err
	}

	ticket := model.Ticket{
		Number:      number,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      model.TicketNew,
		Priority:    model.PriorityMedium,
		CompanyID:   req.CompanyID,
		ContactID:   req.ContactID,
		AssigneeID:  req.AssigneeID,
	}
	if req.Priority != "" {
		ticket.Priority = req.Priority
	}
	if req.Tags != nil {
		ticket.Tags = datatypes.NewJSONSlice(req.Tags)
	}
	if err := h.repo.Create(&ticket); err != nil {
		return err
	}

	// The description doubles as the conversation's first message.
	if err := h.repo.CreateMessage(&model.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    actor.ID,
		AuthorEmail: actor.Email,
		AuthorName:  actor.Email,
		Content:     req.Description,
	}); err != nil {
		return err
	}

	if ticket.AssigneeID != nil {
		if assignee, err := h.userRepo.FindByID(*ticket.AssigneeID); err == nil {
			h.mail.NotifyTicketCreated(assignee.Email, ticket.Number, ticket.Subject)
		}
	}

	h.events.Emit("ticket:created", fiber.Map{"ticket": ticket, "user_id": actor.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ticket": ticket})
}

func (h *TicketHandler) Update(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	ticket, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	ticket.Subject = req.Subject
	ticket.Description = req.Description
	ticket.CompanyID = req.CompanyID
	ticket.ContactID = req.ContactID
	ticket.AssigneeID = req.AssigneeID
	if req.Priority != "" {
		ticket.Priority = req.Priority
	}
	if req.Tags != nil {
		ticket.Tags = datatypes.NewJSONSlice(req.Tags)
	}
	if err := h.repo.Update(ticket); err != nil {
		return err
	}

	h.events.Emit("ticket:updated", fiber.Map{"ticket": ticket, "user_id": actor.ID})
	return c.JSON(fiber.Map{"ticket": ticket})
}

type TicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NEW OPEN PENDING SOLVED CLOSED"`
}

func (h *TicketHandler) UpdateStatus(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req TicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	ticket, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	now := time.Now()
	ticket.Status = req.Status
	switch req.Status {
	case model.TicketOpen:
		if ticket.FirstResponseAt == nil {
			ticket.FirstResponseAt = &now
		}
	case model.TicketSolved:
		ticket.ResolvedAt = &now
	case model.TicketClosed:
		ticket.ClosedAt = &now
	}
	if err := h.repo.Update(ticket); err != nil {
		return err
	}

	// Internal note keeps the status change visible in the conversation.
	if err := h.repo.CreateMessage(&model.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    actor.ID,
		AuthorEmail: actor.Email,
		AuthorName:  actor.Email,
		Content:     fmt.Sprintf("Statut changé en %s", req.Status),
		Internal:    true,
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ticket": ticket})
}

type AssignRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

func (h *TicketHandler) Assign(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}

	ticket, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	ticket.AssigneeID = req.AssigneeID
	if err := h.repo.Update(ticket); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ticket": ticket})
}

type MessageRequest struct {
	Content     string `json:"content" validate:"required"`
	Internal    bool   `json:"internal"`
	Attachments []struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
		Size     int64  `json:"size"`
	} `json:"attachments"`
}

func (h *TicketHandler) AddMessage(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	ticket, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	message := model.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    actor.ID,
		AuthorEmail: actor.Email,
		AuthorName:  actor.Email,
		Content:     req.Content,
		Internal:    req.Internal,
	}
	if req.Attachments != nil {
		raw, _ := json.Marshal(req.Attachments)
		message.Attachments = datatypes.JSON(raw)
	}
	if err := h.repo.CreateMessage(&message); err != nil {
		return err
	}

	// The first reply moves a fresh ticket into the open state.
	if ticket.Status == model.TicketNew {
		now := time.Now()
		ticket.Status = model.TicketOpen
		ticket.FirstResponseAt = &now
		if err := h.repo.Update(ticket); err != nil {
			return err
		}
	}

	h.events.EmitRoom(fmt.Sprintf("ticket:%d", ticket.ID), "ticket:message", fiber.Map{
		"ticket_id": ticket.ID,
		"message":   message,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}
