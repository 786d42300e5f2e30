package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"taskdoc/internal/domain"
	"taskdoc/internal/service"
)

// settleDelay groups the burst of writes one SQLite commit makes to the
// database, WAL and shm files.
const settleDelay = 250 * time.Millisecond

type watchOptions struct {
	TaskID string
	// File is a database file written by other processes. When set its
	// directory is watched; otherwise the store is polled every Interval.
	File     string
	Interval time.Duration
	Logger   *slog.Logger
}

// descriptionWatcher notices descriptions written by another process
// (typically the MCP server) while a task is open, and reports them as
// EventDescriptionExternal.
type descriptionWatcher struct {
	store   domain.TaskStore
	descs   *service.DescriptionService
	emitter service.EventEmitter
	opts    watchOptions
	log     *slog.Logger

	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	settle *time.Timer
	stopCh chan struct{}
	done   chan struct{}
}

func newDescriptionWatcher(store domain.TaskStore, descs *service.DescriptionService, emitter service.EventEmitter, opts watchOptions) *descriptionWatcher {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &descriptionWatcher{
		store:   store,
		descs:   descs,
		emitter: emitter,
		opts:    opts,
		log:     opts.Logger.With("component", "watcher", "task", opts.TaskID),
	}
}

// Start begins watching. Call Stop to end it.
func (w *descriptionWatcher) Start(ctx context.Context) error {
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})

	if w.opts.File == "" {
		go w.pollLoop(ctx)
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.opts.File)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fsw = fsw
	go w.watchLoop(ctx)
	return nil
}

// Stop ends watching and waits for the loop to exit.
func (w *descriptionWatcher) Stop() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	if w.fsw != nil {
		w.fsw.Close()
	}
	<-w.done

	w.mu.Lock()
	if w.settle != nil {
		w.settle.Stop()
	}
	w.mu.Unlock()
}

func (w *descriptionWatcher) pollLoop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *descriptionWatcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	base := filepath.Base(w.opts.File)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// taskdoc.db, taskdoc.db-wal and taskdoc.db-shm all count.
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *descriptionWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.settle != nil {
		w.settle.Stop()
	}
	w.settle = time.AfterFunc(settleDelay, func() { w.check(ctx) })
}

// check reads the stored description and reports it when it is not the
// one this process last saved. Pending local edits win: they will be
// saved over the external value.
func (w *descriptionWatcher) check(ctx context.Context) {
	t, err := w.store.GetTask(ctx, w.opts.TaskID)
	if err != nil {
		w.log.Debug("check failed", "error", err)
		return
	}
	if !w.descs.External(w.opts.TaskID, t.Description) {
		return
	}
	if display, _ := w.descs.Display(w.opts.TaskID); display != t.Description {
		w.log.Info("external change held back by unsaved edits")
		return
	}
	w.log.Info("external description change")
	w.emitter.Emit(ctx, service.EventDescriptionExternal, service.DescriptionEvent{
		TaskID:  w.opts.TaskID,
		Content: t.Description,
	})
}
