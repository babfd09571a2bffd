package api

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/example/todo-api/modules/auth"
	"github.com/example/todo-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	taskService   *task.TaskService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer mono.ServiceContainer, authAdapter auth.AuthPort, taskService *task.TaskService) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		authAdapter:   authAdapter,
		taskService:   taskService,
	}
}

// Register handles POST /auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	authReq := auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{
		Token:     resp.Token,
		ExpiresIn: resp.ExpiresIn,
		TokenType: resp.TokenType,
	})
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email and password are required",
		})
	}

	authReq := auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		Token:     resp.Token,
		ExpiresIn: resp.ExpiresIn,
		TokenType: resp.TokenType,
	})
}

// handleAuthError maps auth service errors onto HTTP responses. Errors cross
// the service container as strings, so known messages are matched; anything
// unrecognized is logged and reported as an internal error.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, "email already in use"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Email already in use by another account",
		})
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	case strings.Contains(errStr, "no fields provided for update"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "empty_update",
			Message: "No fields provided for update",
		})
	case strings.Contains(errStr, "are required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Name, email, password and phone are required",
		})
	case strings.Contains(errStr, "invalid email format"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid email format",
		})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Password must be at least 6 characters",
		})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Password must be at most 72 characters",
		})
	case strings.Contains(errStr, "name must not be empty"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Name must not be empty",
		})
	case strings.Contains(errStr, "phone must not be empty"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Phone must not be empty",
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
