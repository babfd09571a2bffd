package api

import (
	"context"
	"fmt"
	"log"

	"github.com/example/todo-api/modules/auth"
	"github.com/example/todo-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module.
type APIModule struct {
	app           *fiber.App
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	taskModule    *task.TaskModule
	port          int
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(port int) *APIModule {
	return &APIModule{port: port}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// SetTaskModule wires the task module. Must be called before Start; the task
// module must be registered ahead of this one so its service exists.
func (m *APIModule) SetTaskModule(tm *task.TaskModule) {
	m.taskModule = tm
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskModule == nil {
		return fmt.Errorf("task module not set")
	}
	taskService := m.taskModule.GetService()
	if taskService == nil {
		return fmt.Errorf("task service not available")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes(taskService)

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(taskService *task.TaskService) {
	handlers := NewHandlers(m.authContainer, m.authAdapter, taskService)

	// Health check endpoint
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	// Public auth routes
	authRoutes := m.app.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)

	guard := AuthMiddleware(m.authAdapter)

	// Protected profile routes
	users := m.app.Group("/users", guard)
	users.Get("/me", handlers.Profile)
	users.Put("/me", handlers.UpdateProfile)

	// Protected task routes
	tasks := m.app.Group("/tasks", guard)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/", handlers.ListTasks)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
