package handler

import (
	"crm-backend/internal/apperr"
	"crm-backend/internal/middleware"
	"crm-backend/internal/policy"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	repo repository.UserRepository
}

func NewUserHandler(repo repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if !policy.CanListUsers(actor) {
		return apperr.Forbidden("Accès refusé")
	}

	users, err := h.repo.GetAll()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}
	if !policy.CanManageUser(actor, uint(id)) {
		return apperr.Forbidden("Accès refusé")
	}

	user, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Locale    *string `json:"locale"`
	Timezone  *string `json:"timezone"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}
	if !policy.CanManageUser(actor, uint(id)) {
		return apperr.Forbidden("Accès refusé")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Locale != nil {
		user.Locale = *req.Locale
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := h.repo.Update(user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}
	// Password changes are strictly self-service, admins included.
	if actor.ID != uint(id) {
		return apperr.Forbidden("Accès refusé")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return apperr.BadRequest("Mot de passe actuel incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := h.repo.Update(user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Mot de passe modifié"})
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	if !policy.CanListUsers(actor) {
		return apperr.Forbidden("Accès refusé")
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperr.BadRequest("Identifiant invalide")
	}

	user, err := h.repo.FindByID(uint(id))
	if err != nil {
		return err
	}
	user.Active = false
	user.RefreshToken = ""
	if err := h.repo.Update(user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Utilisateur désactivé"})
}
