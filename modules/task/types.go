package task

import (
	"strings"
	"time"

	domain "github.com/example/todo-api/domain/task"
)

// Due dates are calendar dates; a bare date or a full timestamp is accepted.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// NewTask is the input for creating a task. The owner is never part of the
// input; it comes from the authenticated identity.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

// TaskPatch is a partial task update. Nil fields are left untouched; an
// empty DueDate string clears the stored due date.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// HasFields reports whether the patch carries at least one recognized field.
func (p TaskPatch) HasFields() bool {
	return p.Title != nil || p.Description != nil || p.Status != nil || p.DueDate != nil
}

// ListFilter narrows a list query. Both fields are optional.
type ListFilter struct {
	Status string
	Search string
}

// validateNewTask checks a create input and returns the parsed due date.
func validateNewTask(in NewTask) (*time.Time, *ValidationError) {
	verr := newValidationError()

	if strings.TrimSpace(in.Title) == "" {
		verr.Fields["title"] = "title is required"
	}
	if in.Status != "" && !domain.Status(in.Status).Valid() {
		verr.Fields["status"] = "status must be either pending or completed"
	}

	var due *time.Time
	if in.DueDate != "" {
		parsed, err := parseDueDate(in.DueDate)
		if err != nil {
			verr.Fields["due_date"] = "due date must be a valid date"
		} else {
			due = parsed
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return due, nil
}

// validatePatch checks whichever fields are present in a patch.
func validatePatch(patch TaskPatch) *ValidationError {
	verr := newValidationError()

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		verr.Fields["title"] = "title cannot be empty"
	}
	if patch.Status != nil && !domain.Status(*patch.Status).Valid() {
		verr.Fields["status"] = "status must be either pending or completed"
	}
	if patch.DueDate != nil && *patch.DueDate != "" {
		if _, err := parseDueDate(*patch.DueDate); err != nil {
			verr.Fields["due_date"] = "due date must be a valid date"
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func parseDueDate(value string) (*time.Time, error) {
	var err error
	for _, layout := range dueDateLayouts {
		var t time.Time
		t, err = time.Parse(layout, value)
		if err == nil {
			return &t, nil
		}
	}
	return nil, err
}
