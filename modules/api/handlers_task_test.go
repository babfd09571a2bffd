package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	taskdomain "github.com/example/todo-api/domain/task"
	domain "github.com/example/todo-api/domain/user"
	"github.com/example/todo-api/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUserHeader = "X-Test-User"

// setupTaskApp builds a Fiber app with the task routes backed by a real
// service on an in-memory database. The guard is replaced by a stub that
// reads the identity from a test header.
func setupTaskApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&taskdomain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	service := task.NewTaskService(task.NewTaskRepository(db), nil)
	handlers := NewHandlers(nil, nil, service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(UserContextKey, &domain.Claims{UserID: c.Get(testUserHeader)})
		return c.Next()
	})

	tasks := app.Group("/tasks")
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/", handlers.ListTasks)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(testUserHeader, userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, data
}

func TestTaskHandlers_CreateAndList(t *testing.T) {
	app := setupTaskApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tasks/", "user-a", fiber.Map{
		"title":       "Buy Milk",
		"description": "2 liters",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", resp.StatusCode, http.StatusCreated, body)
	}

	var created taskdomain.Task
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("failed to decode created task: %v", err)
	}
	if created.Status != taskdomain.StatusPending {
		t.Errorf("status = %q, want %q", created.Status, taskdomain.StatusPending)
	}

	// Case-insensitive substring search finds it
	resp, body = doJSON(t, app, http.MethodGet, "/tasks/?search=milk", "user-a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d: %s", resp.StatusCode, body)
	}
	var listed []taskdomain.Task
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("search did not return the created task: %s", body)
	}

	// Another user's list never includes it and serializes as an empty
	// array, not null
	resp, body = doJSON(t, app, http.MethodGet, "/tasks/", "user-b", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d: %s", resp.StatusCode, body)
	}
	if got := strings.TrimSpace(string(body)); got != "[]" {
		t.Errorf("empty list body = %q, want %q", got, "[]")
	}
}

func TestTaskHandlers_ListEmptyIsArray(t *testing.T) {
	app := setupTaskApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tasks/", "user-a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d: %s", resp.StatusCode, body)
	}
	if got := strings.TrimSpace(string(body)); got != "[]" {
		t.Errorf("empty list body = %q, want %q", got, "[]")
	}
}

func TestTaskHandlers_CreateValidation(t *testing.T) {
	app := setupTaskApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tasks/", "user-a", fiber.Map{
		"title": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "validation_error") {
		t.Errorf("body %q does not contain validation_error", body)
	}
	if !strings.Contains(string(body), "title") {
		t.Errorf("body %q carries no per-field message for title", body)
	}
}

func TestTaskHandlers_ListInvalidStatus(t *testing.T) {
	app := setupTaskApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/tasks/?status=archived", "user-a", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "validation_error") {
		t.Errorf("body %q does not contain validation_error", body)
	}
}

func TestTaskHandlers_UpdateErrors(t *testing.T) {
	app := setupTaskApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tasks/", "user-a", fiber.Map{"title": "Mine"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	var created taskdomain.Task
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("failed to decode created task: %v", err)
	}

	t.Run("empty update", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/tasks/"+created.ID, "user-a", fiber.Map{})
		if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "empty_update") {
			t.Errorf("status = %d, body = %s; want 400 empty_update", resp.StatusCode, body)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/tasks/not-a-uuid", "user-a", fiber.Map{"title": "x"})
		if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "invalid_identifier") {
			t.Errorf("status = %d, body = %s; want 400 invalid_identifier", resp.StatusCode, body)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/tasks/"+uuid.New().String(), "user-a", fiber.Map{"title": "x"})
		if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "not_found") {
			t.Errorf("status = %d, body = %s; want 404 not_found", resp.StatusCode, body)
		}
	})

	t.Run("foreign task", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/tasks/"+created.ID, "user-b", fiber.Map{"title": "hijack"})
		if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(string(body), "forbidden") {
			t.Errorf("status = %d, body = %s; want 401 forbidden", resp.StatusCode, body)
		}
	})
}

func TestTaskHandlers_Delete(t *testing.T) {
	app := setupTaskApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/tasks/", "user-a", fiber.Map{"title": "Remove me"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}
	var created taskdomain.Task
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("failed to decode created task: %v", err)
	}

	resp, body = doJSON(t, app, http.MethodDelete, "/tasks/"+created.ID, "user-a", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "removed") {
		t.Errorf("expected confirmation message, got %s", body)
	}

	// Deleting the same id twice yields not found
	resp, body = doJSON(t, app, http.MethodDelete, "/tasks/"+created.ID, "user-a", nil)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "not_found") {
		t.Errorf("second delete status = %d, body = %s; want 404 not_found", resp.StatusCode, body)
	}
}
