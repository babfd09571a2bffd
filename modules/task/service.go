package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/todo-api/domain/task"
	"github.com/example/todo-api/modules/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// TaskService implements the task query contract: validation, ownership
// checks and query/mutation composition on top of the repository.
type TaskService struct {
	repo  *TaskRepository
	cache *cache.Cache
	group singleflight.Group
}

// NewTaskService creates a new TaskService. cache may be nil, in which case
// every list query goes straight to the store.
func NewTaskService(repo *TaskRepository, c *cache.Cache) *TaskService {
	return &TaskService{
		repo:  repo,
		cache: c,
	}
}

// Create validates the input and persists a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in NewTask) (*domain.Task, error) {
	due, verr := validateNewTask(in)
	if verr != nil {
		return nil, verr
	}

	status := domain.StatusPending
	if in.Status != "" {
		status = domain.Status(in.Status)
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		DueDate:     due,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return task, nil
}

// List returns the owner's tasks matching the filter, newest-created first.
// The owner constraint cannot be bypassed by any caller-supplied parameter.
func (s *TaskService) List(ctx context.Context, ownerID string, filter ListFilter) ([]*domain.Task, error) {
	if filter.Status != "" && !domain.Status(filter.Status).Valid() {
		verr := newValidationError()
		verr.Fields["status"] = "status filter must be pending or completed"
		return nil, verr
	}

	if s.cache == nil {
		return s.repo.FindByOwner(ownerID, domain.Status(filter.Status), filter.Search)
	}

	key := ownerID + ":" + filter.Status + ":" + filter.Search
	result, err, _ := s.group.Do(key, func() (any, error) {
		var cached []*domain.Task
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[task] cache read failed, falling back to store: %v", err)
		}
		if hit {
			return cached, nil
		}

		tasks, err := s.repo.FindByOwner(ownerID, domain.Status(filter.Status), filter.Search)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, key, tasks); err != nil {
			log.Printf("[task] cache write failed: %v", err)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Task), nil
}

// Update applies a partial update to the task. Only fields present in the
// patch are changed; absent fields retain their prior values.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch TaskPatch) (*domain.Task, error) {
	if verr := validatePatch(patch); verr != nil {
		return nil, verr
	}
	if !patch.HasFields() {
		return nil, ErrEmptyUpdate
	}
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, ErrInvalidID
	}

	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != ownerID {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		task.Status = domain.Status(*patch.Status)
	}
	if patch.DueDate != nil {
		if *patch.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := parseDueDate(*patch.DueDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse due date: %w", err)
			}
			task.DueDate = due
		}
	}
	task.UpdatedAt = time.Now()

	if err := s.repo.Save(task); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return task, nil
}

// Delete permanently removes the task. A second delete of the same id
// reports ErrNotFound.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return ErrInvalidID
	}

	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}
	if task.UserID != ownerID {
		return ErrForbidden
	}

	if err := s.repo.Delete(taskID); err != nil {
		return err
	}

	s.invalidate(ctx, ownerID)
	return nil
}

// invalidate drops every cached list for the owner after a mutation.
func (s *TaskService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, ownerID+":*"); err != nil {
		log.Printf("[task] cache invalidation failed for user %s: %v", ownerID, err)
	}
}
