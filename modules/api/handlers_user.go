package api

import (
	"encoding/json"

	domain "github.com/example/todo-api/domain/user"
	"github.com/example/todo-api/modules/auth"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// requestClaims returns the claims attached by the access guard.
func requestClaims(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}

// Profile handles GET /users/me.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "User not authenticated",
		})
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateProfile handles PUT /users/me.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "User not authenticated",
		})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	authReq := auth.UpdateUserRequest{
		UserID: claims.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	}
	var resp auth.UpdateUserResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"update-user",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
