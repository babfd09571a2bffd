package task

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/todo-api/domain/task"
	"gorm.io/gorm"
)

// TaskRepository handles task persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create saves a new task to the database.
func (r *TaskRepository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *TaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindByOwner retrieves the owner's tasks, newest-created first. The owner
// constraint is always applied; status and search narrow the set
// conjunctively. Search is a case-insensitive substring match on the title.
func (r *TaskRepository) FindByOwner(ownerID string, status domain.Status, search string) ([]*domain.Task, error) {
	query := r.db.Where("user_id = ?", ownerID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	// Initialized so a zero-row result serializes as an empty JSON array.
	tasks := make([]*domain.Task, 0)
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// Save persists all fields of an existing task.
func (r *TaskRepository) Save(task *domain.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete permanently removes a task by ID.
func (r *TaskRepository) Delete(id string) error {
	result := r.db.Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
