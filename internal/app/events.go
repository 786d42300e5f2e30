package app

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"taskdoc/internal/service"
	"taskdoc/internal/tui"
)

// programEmitter forwards description events for the task being edited to
// the running terminal program. Events for other tasks, or with no
// program attached, are dropped.
type programEmitter struct {
	mu     sync.Mutex
	taskID string
	send   func(tea.Msg)
}

func (e *programEmitter) attach(taskID string, send func(tea.Msg)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taskID, e.send = taskID, send
}

func (e *programEmitter) detach() { e.attach("", nil) }

func (e *programEmitter) Emit(_ context.Context, event string, data any) {
	e.mu.Lock()
	taskID, send := e.taskID, e.send
	e.mu.Unlock()
	if send == nil {
		return
	}
	if msg := editorMsg(taskID, event, data); msg != nil {
		send(msg)
	}
}

// editorMsg translates a service event into the editor message for
// taskID, or nil.
func editorMsg(taskID, event string, data any) tea.Msg {
	ev, ok := data.(service.DescriptionEvent)
	if !ok || ev.TaskID != taskID {
		return nil
	}
	switch event {
	case service.EventDescriptionSaved:
		return tui.SavedMsg{}
	case service.EventDescriptionSaveFail:
		return tui.SaveFailedMsg{Content: ev.Content, Err: ev.Error}
	case service.EventDescriptionExternal:
		return tui.ExternalMsg{Content: ev.Content}
	}
	return nil
}

// logEmitter records events at debug level. Used where no UI listens.
func logEmitter(logger *slog.Logger) service.EventEmitter {
	log := logger.With("component", "events")
	return service.EmitterFunc(func(ctx context.Context, event string, data any) {
		attrs := []any{"event", event}
		if ev, ok := data.(service.DescriptionEvent); ok {
			attrs = append(attrs, "task", ev.TaskID)
			if ev.Error != "" {
				attrs = append(attrs, "error", ev.Error)
			}
		}
		log.DebugContext(ctx, "event", attrs...)
	})
}
