package task

import (
	"context"
	"fmt"
	"log"
	"os"

	domain "github.com/example/todo-api/domain/task"
	"github.com/example/todo-api/modules/cache"
	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule owns the task store and exposes the task query contract as a
// typed service for in-process consumers.
type TaskModule struct {
	db          *gorm.DB
	service     *TaskService
	cacheModule *cache.Module
	dbPath      string
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule() *TaskModule {
	// Each module owns its own database file.
	dbPath := os.Getenv("TASKS_DB_PATH")
	if dbPath == "" {
		dbPath = "tasks.db"
	}
	return &TaskModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetCacheModule wires the optional list cache. Must be called before Start.
func (m *TaskModule) SetCacheModule(cm *cache.Module) {
	m.cacheModule = cm
}

// Start initializes the task module.
func (m *TaskModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var c *cache.Cache
	if m.cacheModule != nil {
		c = m.cacheModule.GetCache()
	}

	m.service = NewTaskService(NewTaskRepository(db), c)

	log.Printf("[task] Module started (database: %s, cache: %v)", m.dbPath, c != nil)
	return nil
}

// Stop shuts down the module.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
			"cached":   m.cacheModule != nil,
		},
	}
}

// GetService returns the task service for in-process consumers.
func (m *TaskModule) GetService() *TaskService {
	return m.service
}
