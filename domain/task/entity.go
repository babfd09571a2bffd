package task

import "time"

// Status represents the state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is a to-do item owned by exactly one user. UserID is fixed at
// creation and never changed by any client-supplied field.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"size:1000" json:"description"`
	Status      Status     `gorm:"size:16;not null;default:pending" json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	UserID      string     `gorm:"index;size:36;not null" json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}
