package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from the host UI
// ─────────────────────────────────────────────────────────────

// EventEmitter is how services tell the host about things that happened
// off the caller's goroutine (saves finishing, external changes). The
// terminal UI implements it by forwarding to its program; the MCP server
// logs them.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names.
const (
	EventTaskCreated         = "task:created"
	EventTaskDeleted         = "task:deleted"
	EventDescriptionChanged  = "task:description-changed"
	EventDescriptionSaved    = "task:description-saved"
	EventDescriptionSaveFail = "task:description-save-failed"
	EventDescriptionExternal = "task:description-external"
)

// DescriptionEvent is the payload of the description events.
type DescriptionEvent struct {
	TaskID  string `json:"taskId"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// EmitterFunc adapts a function to EventEmitter.
type EmitterFunc func(ctx context.Context, event string, data any)

func (f EmitterFunc) Emit(ctx context.Context, event string, data any) { f(ctx, event, data) }

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded events called event, oldest first.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
