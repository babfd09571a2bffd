package api

import (
	"errors"
	"strings"

	"github.com/example/todo-api/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware is the access guard: it extracts and verifies the bearer
// token and attaches the resolved identity to the request context. The
// identity is trusted from the signed payload alone; no store lookup happens
// here.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthenticated",
				Message: "Authorization header is required",
			})
		}

		// The header must be exactly two space-separated parts: "Bearer <token>".
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "malformed_credential",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "expired_credential",
					Message: "Token has expired",
				})
			case errors.Is(err, auth.ErrMalformedClaims):
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "malformed_credential",
					Message: "Token payload is invalid",
				})
			default:
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "invalid_credential",
					Message: "Token is not valid",
				})
			}
		}

		// Store claims in context for use in handlers
		c.Locals(UserContextKey, claims)

		return c.Next()
	}
}
