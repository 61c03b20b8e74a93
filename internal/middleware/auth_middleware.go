package middleware

import (
	"strings"

	"crm-backend/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ActorKey is the Locals key holding the authenticated policy.Actor.
const ActorKey = "actor"

func tokenFromRequest(c *fiber.Ctx) string {
	// Cookie first, Authorization header as fallback for non-browser clients.
	if token := c.Cookies("accessToken"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func parseActor(tokenString, secret string) (policy.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return policy.Actor{}, fiber.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return policy.Actor{}, fiber.ErrUnauthorized
	}
	id, _ := claims["user_id"].(float64)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return policy.Actor{ID: uint(id), Email: email, Role: role}, nil
}

// Auth rejects requests without a valid access token and stores the decoded
// actor in Locals for handlers.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentification requise"})
		}

		actor, err := parseActor(tokenString, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token invalide ou expiré"})
		}

		c.Locals(ActorKey, actor)
		return c.Next()
	}
}

// OptionalAuth decodes the actor when a valid token is present and otherwise
// leaves the request unauthenticated instead of failing it.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if actor, err := parseActor(tokenString, secret); err == nil {
				c.Locals(ActorKey, actor)
			}
		}
		return c.Next()
	}
}

// CurrentActor returns the actor stored by Auth. The zero Actor means the
// request was not authenticated (possible under OptionalAuth only).
func CurrentActor(c *fiber.Ctx) policy.Actor {
	if actor, ok := c.Locals(ActorKey).(policy.Actor); ok {
		return actor
	}
	return policy.Actor{}
}
