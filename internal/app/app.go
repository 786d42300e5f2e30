// Package app wires configuration, storage, services and the hosts (the
// terminal editor and the MCP server) together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"taskdoc/internal/config"
	"taskdoc/internal/domain"
	"taskdoc/internal/service"
	"taskdoc/internal/storage"
	"taskdoc/internal/syncer"
	"taskdoc/internal/tui"
)

// App holds the long-lived pieces shared by every command.
type App struct {
	cfg   *config.Config
	base  *slog.Logger
	log   *slog.Logger
	store domain.TaskStore
	db    *storage.DB // nil for mongo
	maint *storage.Maintenance

	tasks *service.TaskService
	descs *service.DescriptionService

	// forward carries description events to the running editor.
	forward *programEmitter
}

// New opens the configured store and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, db, err := storage.OpenTaskStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	a := &App{
		cfg:     cfg,
		base:    logger,
		log:     logger.With("component", "app"),
		store:   store,
		db:      db,
		forward: &programEmitter{},
	}
	if db != nil {
		a.maint, err = storage.StartMaintenance(ctx, db, cfg.Maintenance.Checkpoint, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	a.tasks = service.NewTaskService(store, logEmitter(logger), logger)
	a.descs = service.NewDescriptionService(store, a.forward, service.DescriptionOptions{
		SaveDelay:   cfg.Host.SaveDelay,
		SaveTimeout: cfg.Host.SaveTimeout,
		Logger:      logger,
	})
	a.log.Debug("started", "driver", cfg.Storage.Driver)
	return a, nil
}

// Tasks returns the task service.
func (a *App) Tasks() *service.TaskService { return a.tasks }

// Close flushes pending saves and releases the store.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Host.SaveTimeout)
	defer cancel()

	var errs []error
	if err := a.descs.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.maint != nil {
		a.maint.Stop()
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Edit runs the terminal editor on a task's description until the user
// quits. Edits are saved through the description service; changes made by
// other writers while the editor is open are merged in.
func (a *App) Edit(ctx context.Context, taskID string) error {
	task, err := a.descs.Open(ctx, taskID)
	if err != nil {
		return err
	}
	defer a.descs.Close(taskID)

	engine := syncer.New(task.Description, func(content string) {
		a.descs.Changed(taskID, content)
	}, syncer.Options{
		Delay:  a.cfg.Editor.EmitDelay,
		Logger: a.base,
	})
	defer engine.Close()

	model := tui.New(engine, tui.Options{
		Title:    task.Title,
		AddLabel: a.cfg.Editor.Placeholder,
		Save:     a.saveNow,
		Logger:   a.base,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	a.forward.attach(taskID, p.Send)
	defer a.forward.detach()

	w := newDescriptionWatcher(a.store, a.descs, a.forward, watchOptions{
		TaskID:   taskID,
		File:     a.watchFile(),
		Interval: a.cfg.Watch.PollInterval,
		Logger:   a.base,
	})
	if err := w.Start(ctx); err != nil {
		a.log.Warn("external change detection disabled", "error", err)
	} else {
		defer w.Stop()
	}

	a.log.Info("editing", "task", taskID)
	_, runErr := p.Run()

	// Anything typed in the last quiet period still goes out.
	engine.Flush()
	if err := a.saveNow(); err != nil {
		return fmt.Errorf("save on exit: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("editor: %w", runErr)
	}
	return nil
}

func (a *App) saveNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Host.SaveTimeout)
	defer cancel()
	return a.descs.Flush(ctx)
}

// watchFile is the file whose directory is watched for writes by other
// processes; empty when the store has no local file.
func (a *App) watchFile() string {
	if a.db == nil || a.db.Dialect() != storage.SQLite {
		return ""
	}
	return a.db.Path()
}
