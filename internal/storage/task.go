package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskdoc/internal/domain"
)

// TaskStore implements domain.TaskStore on a SQL database.
type TaskStore struct {
	db *DB
}

func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// DB exposes the underlying connection for maintenance and watching.
func (s *TaskStore) DB() *DB {
	return s.db
}

func (s *TaskStore) CreateTask(ctx context.Context, t *domain.Task) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.db.Conn().ExecContext(ctx, s.db.rebind(
		`INSERT INTO tasks (id, title, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		t.ID, t.Title, t.Description, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t := &domain.Task{}
	err := s.db.Conn().QueryRowContext(ctx, s.db.rebind(
		`SELECT id, title, description, created_at, updated_at FROM tasks WHERE id = ?`), id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, domain.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *TaskStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, title, description, created_at, updated_at FROM tasks ORDER BY updated_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) UpdateDescription(ctx context.Context, id, description string) error {
	res, err := s.db.Conn().ExecContext(ctx, s.db.rebind(
		`UPDATE tasks SET description = ?, updated_at = ? WHERE id = ?`),
		description, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update description %s: %w", id, err)
	}
	return expectOne(res, id)
}

func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, s.db.rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return expectOne(res, id)
}

func (s *TaskStore) Close() error {
	return s.db.Close()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
	}
	return nil
}
