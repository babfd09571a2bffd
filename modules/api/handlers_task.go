package api

import (
	"errors"
	"log"

	"github.com/example/todo-api/modules/task"
	"github.com/gofiber/fiber/v2"
)

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "User not authenticated",
		})
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	created, err := h.taskService.Create(c.UserContext(), claims.UserID, task.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListTasks handles GET /tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "User not authenticated",
		})
	}

	tasks, err := h.taskService.List(c.UserContext(), claims.UserID, task.ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(tasks)
}

// UpdateTask handles PUT /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "User not authenticated",
		})
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	updated, err := h.taskService.Update(c.UserContext(), claims.UserID, c.Params("id"), task.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "User not authenticated",
		})
	}

	if err := h.taskService.Delete(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(MessageResponse{
		Message: "Task removed successfully",
	})
}

// handleTaskError maps task service errors onto HTTP responses. A foreign
// task deliberately yields 401, not 403, and is never conflated with 404.
func handleTaskError(c *fiber.Ctx, err error) error {
	var verr *task.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, task.ErrEmptyUpdate):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "empty_update",
			Message: "No fields provided for update",
		})
	case errors.Is(err, task.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_identifier",
			Message: "Invalid task id format",
		})
	case errors.Is(err, task.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case errors.Is(err, task.ErrForbidden):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Not authorized to access this task",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
