package apperr

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FiberHandler translates every error escaping a handler into the response
// taxonomy: validation 400, auth 401/403, not-found 404, duplicate 409,
// everything else 500. Stack traces are exposed only outside production.
func FiberHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Erreur interne du serveur"
		var details any

		var appErr *Error
		var fiberErr *fiber.Error
		var validationErrs validator.ValidationErrors

		switch {
		case errors.As(err, &appErr):
			status = appErr.Status
			message = appErr.Message
			details = appErr.Details
		case errors.As(err, &validationErrs):
			status = fiber.StatusBadRequest
			message = "Erreur de validation"
			fields := make([]fiber.Map, 0, len(validationErrs))
			for _, fe := range validationErrs {
				fields = append(fields, fiber.Map{
					"field":   fe.Field(),
					"message": fmt.Sprintf("validation '%s' échouée", fe.Tag()),
				})
			}
			details = fields
		case errors.Is(err, gorm.ErrRecordNotFound):
			status = fiber.StatusNotFound
			message = "Enregistrement non trouvé"
		case errors.Is(err, gorm.ErrDuplicatedKey):
			status = fiber.StatusConflict
			message = "Un enregistrement avec cette valeur existe déjà"
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			status = fiber.StatusBadRequest
			message = "Référence invalide"
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		}

		body := fiber.Map{"error": true, "message": message}
		if details != nil {
			body["details"] = details
		}
		if !production && status >= fiber.StatusInternalServerError {
			body["stack"] = string(debug.Stack())
		}
		return c.Status(status).JSON(body)
	}
}
