package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"taskdoc/internal/domain"
)

// memStore is an in-memory domain.TaskStore. Writes can be made to fail
// or to block until released.
type memStore struct {
	mu     sync.Mutex
	tasks  map[string]domain.Task
	writes []string
	fail   error

	// When gate is set, UpdateDescription signals entered and waits on gate.
	gate    chan struct{}
	entered chan struct{}

	inFlight    int
	maxInFlight int
}

func newMemStore(tasks ...domain.Task) *memStore {
	s := &memStore{tasks: make(map[string]domain.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memStore) CreateTask(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	s.tasks[t.ID] = *t
	return nil
}

func (s *memStore) GetTask(_ context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, domain.ErrTaskNotFound)
	}
	return &t, nil
}

func (s *memStore) ListTasks(context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateDescription(_ context.Context, id, description string) error {
	s.mu.Lock()
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)
	gate, entered := s.gate, s.entered
	s.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if s.fail != nil {
		return s.fail
	}
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
	}
	t.Description = description
	t.UpdatedAt = time.Now()
	s.tasks[id] = t
	s.writes = append(s.writes, description)
	return nil
}

func (s *memStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
	}
	delete(s.tasks, id)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) description(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id].Description
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *memStore) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
