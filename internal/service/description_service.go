package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"taskdoc/internal/domain"
)

// DescriptionOptions tunes a DescriptionService. Zero values take defaults.
type DescriptionOptions struct {
	SaveDelay   time.Duration
	SaveTimeout time.Duration
	// Debounce builds the per-task scheduler; debounce.New when nil.
	Debounce func(after time.Duration) func(f func())
	Logger   *slog.Logger
}

// ─────────────────────────────────────────────────────────────
// Description Service — debounced editor saves with revert
// ─────────────────────────────────────────────────────────────

// DescriptionService is the host save path for editor output. Each
// Changed call updates the displayed value at once and persists it after
// a quiet period. A failed save reverts the displayed value to the last
// value known to be stored, unless a newer change is already waiting, and
// reports the value now displayed.
type DescriptionService struct {
	store   domain.TaskStore
	emitter EventEmitter
	opts    DescriptionOptions
	log     *slog.Logger

	mu     sync.Mutex
	tasks  map[string]*descriptionState
	saving saveGuard
}

type descriptionState struct {
	display  string
	lastGood string
	pending  bool
	schedule func(f func())
}

// NewDescriptionService creates a DescriptionService.
func NewDescriptionService(store domain.TaskStore, emitter EventEmitter, opts DescriptionOptions) *DescriptionService {
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = 2 * time.Second
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	if opts.Debounce == nil {
		opts.Debounce = debounce.New
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &DescriptionService{
		store:   store,
		emitter: emitter,
		opts:    opts,
		log:     opts.Logger.With("component", "descriptions"),
		tasks:   make(map[string]*descriptionState),
	}
}

// Open loads a task and starts tracking its description.
func (s *DescriptionService) Open(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.tasks[taskID]; ok {
		t.Description = st.display
		return t, nil
	}
	s.tasks[taskID] = &descriptionState{
		display:  t.Description,
		lastGood: t.Description,
		schedule: s.opts.Debounce(s.opts.SaveDelay),
	}
	return t, nil
}

// Changed records new editor output for taskID and schedules a save.
func (s *DescriptionService) Changed(taskID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[taskID]
	if !ok {
		s.log.Warn("change for a task that is not open", "task", taskID)
		return
	}
	st.display = content
	st.pending = content != st.lastGood
	if !st.pending {
		st.schedule(func() {})
		return
	}
	s.scheduleSave(st, taskID)
}

// scheduleSave must be called with s.mu held.
func (s *DescriptionService) scheduleSave(st *descriptionState, taskID string) {
	st.schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
		defer cancel()
		s.save(ctx, taskID)
	})
}

// Display returns the value the host should show for taskID.
func (s *DescriptionService) Display(taskID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[taskID]
	if !ok {
		return "", false
	}
	return st.display, true
}

// Pending reports whether taskID has changes not yet stored.
func (s *DescriptionService) Pending(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[taskID]
	return ok && st.pending
}

// External records a description written by someone else. It returns
// false when content is already what this service last stored.
func (s *DescriptionService) External(taskID, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tasks[taskID]
	if !ok || content == st.lastGood {
		return false
	}
	st.lastGood = content
	if !st.pending {
		st.display = content
	}
	s.log.Debug("external description change", "task", taskID)
	return true
}

// Flush stores every pending change now. It waits for in-flight saves
// first so nothing is written out of order.
func (s *DescriptionService) Flush(ctx context.Context) error {
	s.mu.Lock()
	var ids []string
	for id, st := range s.tasks {
		if st.pending {
			st.schedule(func() {})
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	s.saving.WaitAll(ctx)

	var errs []error
	for _, id := range ids {
		if err := s.save(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops tracking taskID, dropping any unsaved change. Call Flush
// first to keep it.
func (s *DescriptionService) Close(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.tasks[taskID]; ok {
		st.schedule(func() {})
		delete(s.tasks, taskID)
	}
}

// save persists the latest display value of taskID, repeating while new
// changes arrive during the write. A save already in flight for taskID
// makes this call a no-op; the running save picks the change up.
func (s *DescriptionService) save(ctx context.Context, taskID string) error {
	s.mu.Lock()
	if !s.saving.TryLock(taskID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	for {
		s.mu.Lock()
		st, ok := s.tasks[taskID]
		if !ok || !st.pending {
			// Unlocking under s.mu means a concurrent Changed either sees
			// the guard held and is picked up here, or finds it free.
			s.saving.Unlock(taskID)
			s.mu.Unlock()
			return nil
		}
		content := st.display
		st.pending = false
		s.mu.Unlock()

		err := s.store.UpdateDescription(ctx, taskID, content)

		s.mu.Lock()
		if err != nil {
			// A change that arrived during the write is kept and retried
			// after the next quiet period; only the failed value is reverted.
			newer := st.display != content
			if newer {
				st.pending = true
				s.scheduleSave(st, taskID)
			} else {
				st.display = st.lastGood
				st.pending = false
				st.schedule(func() {})
			}
			shown := st.display
			s.saving.Unlock(taskID)
			s.mu.Unlock()

			s.log.Error("save description failed", "task", taskID, "retry", newer, "error", err)
			s.emitter.Emit(ctx, EventDescriptionSaveFail, DescriptionEvent{
				TaskID:  taskID,
				Content: shown,
				Error:   err.Error(),
			})
			return fmt.Errorf("save description %s: %w", taskID, err)
		}
		st.lastGood = content
		s.mu.Unlock()

		s.log.Debug("description saved", "task", taskID, "bytes", len(content))
		s.emitter.Emit(ctx, EventDescriptionSaved, DescriptionEvent{TaskID: taskID, Content: content})
	}
}
