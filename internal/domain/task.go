package domain

import (
	"context"
	"errors"
	"time"
)

// ErrTaskNotFound is returned (wrapped) by stores when no task has the given id.
var ErrTaskNotFound = errors.New("task not found")

// Task owns a block description. Description holds the serialized block
// array, plain text, or nothing.
type Task struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

type TaskStore interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	UpdateDescription(ctx context.Context, id, description string) error
	DeleteTask(ctx context.Context, id string) error
	Close() error
}
