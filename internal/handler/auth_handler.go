package handler

import (
	"errors"
	"log"
	"time"

	"crm-backend/config"
	"crm-backend/internal/apperr"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type AuthHandler struct {
	repo repository.UserRepository
	cfg  config.Config
}

func NewAuthHandler(repo repository.UserRepository, cfg config.Config) *AuthHandler {
	return &AuthHandler{repo: repo, cfg: cfg}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) accessToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) refreshToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(refreshTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTRefreshSecret))
}

func (h *AuthHandler) setTokenCookies(c *fiber.Ctx, access, refresh string) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    access,
		HTTPOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int(accessTokenTTL.Seconds()),
	})
	if refresh != "" {
		c.Cookie(&fiber.Cookie{
			Name:     "refreshToken",
			Value:    refresh,
			HTTPOnly: true,
			Secure:   h.cfg.Production(),
			SameSite: fiber.CookieSameSiteStrictMode,
			MaxAge:   int(refreshTokenTTL.Seconds()),
		})
	}
}

func (h *AuthHandler) issueTokens(c *fiber.Ctx, user *model.User) (string, error) {
	access, err := h.accessToken(user)
	if err != nil {
		return "", err
	}
	refresh, err := h.refreshToken(user)
	if err != nil {
		return "", err
	}

	user.RefreshToken = refresh
	if err := h.repo.Update(user); err != nil {
		return "", err
	}

	h.setTokenCookies(c, access, refresh)
	return access, nil
}

func publicUser(user *model.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
		"locale":     user.Locale,
		"timezone":   user.Timezone,
		"avatar":     user.Avatar,
		"active":     user.Active,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	if _, err := h.repo.FindByEmail(req.Email); err == nil {
		return apperr.BadRequest("Cet email est déjà utilisé")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleEmployee,
		Active:       true,
	}
	if err := h.repo.Create(&user); err != nil {
		return err
	}

	access, err := h.issueTokens(c, &user)
	if err != nil {
		return err
	}

	log.Printf("[AUTH] new user registered: %s", user.Email)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Inscription réussie",
		"user":        publicUser(&user),
		"accessToken": access,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("Données invalides")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := h.repo.FindByEmail(req.Email)
	if err != nil {
		return apperr.Unauthorized("Email ou mot de passe incorrect")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return apperr.Unauthorized("Email ou mot de passe incorrect")
	}
	if !user.Active {
		return apperr.Forbidden("Compte désactivé")
	}

	now := time.Now()
	user.LastLoginAt = &now

	access, err := h.issueTokens(c, user)
	if err != nil {
		return err
	}

	log.Printf("[AUTH] user logged in: %s", user.Email)
	return c.JSON(fiber.Map{
		"message":     "Connexion réussie",
		"user":        publicUser(user),
		"accessToken": access,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	user, err := h.repo.FindByID(actor.ID)
	if err == nil {
		user.RefreshToken = ""
		if err := h.repo.Update(user); err != nil {
			return err
		}
	}

	c.ClearCookie("accessToken", "refreshToken")
	return c.JSON(fiber.Map{"message": "Déconnexion réussie"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	user, err := h.repo.FindByID(actor.ID)
	if err != nil {
		return apperr.NotFound("Utilisateur non trouvé")
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refresh := c.Cookies("refreshToken")
	if refresh == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&body); err == nil {
			refresh = body.RefreshToken
		}
	}
	if refresh == "" {
		return apperr.Unauthorized("Refresh token manquant")
	}

	token, err := jwt.Parse(refresh, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(h.cfg.JWTRefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return apperr.Unauthorized("Refresh token invalide")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return apperr.Unauthorized("Refresh token invalide")
	}
	id, _ := claims["user_id"].(float64)

	user, err := h.repo.FindByID(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.RefreshToken != refresh) {
		return apperr.Unauthorized("Refresh token invalide")
	}
	if err != nil {
		return err
	}
	if !user.Active {
		return apperr.Forbidden("Compte désactivé")
	}

	access, err := h.accessToken(user)
	if err != nil {
		return err
	}
	h.setTokenCookies(c, access, "")

	return c.JSON(fiber.Map{
		"message":     "Token actualisé",
		"accessToken": access,
	})
}
