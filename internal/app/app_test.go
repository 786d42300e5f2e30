package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdoc/internal/config"
	"taskdoc/internal/domain"
	"taskdoc/internal/service"
	"taskdoc/internal/storage"
	"taskdoc/internal/tui"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ─── App ───

func TestApp_NewAndClose(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	task, err := a.Tasks().CreateTask(ctx, "Plan", "# Goals")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if got := a.watchFile(); got != cfg.SQLitePath() {
		t.Errorf("watch file = %q", got)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The task survives a restart.
	a, err = New(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a.Close()
	if _, err := a.Tasks().GetTask(ctx, task.ID); err != nil {
		t.Errorf("GetTask after reopen: %v", err)
	}
}

func TestApp_EditMissingTask(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if err := a.Edit(context.Background(), "nope"); err == nil {
		t.Error("expected an error for a missing task")
	}
}

// ─── events ───

func TestEditorMsg(t *testing.T) {
	ev := service.DescriptionEvent{TaskID: "t1", Content: "c", Error: "boom"}
	cases := []struct {
		event string
		data  any
		want  tea.Msg
	}{
		{service.EventDescriptionSaved, ev, tui.SavedMsg{}},
		{service.EventDescriptionSaveFail, ev, tui.SaveFailedMsg{Content: "c", Err: "boom"}},
		{service.EventDescriptionExternal, ev, tui.ExternalMsg{Content: "c"}},
		{service.EventDescriptionChanged, ev, nil},
		{service.EventDescriptionSaved, service.DescriptionEvent{TaskID: "other"}, nil},
		{service.EventTaskDeleted, "t1", nil},
	}
	for _, c := range cases {
		if got := editorMsg("t1", c.event, c.data); got != c.want {
			t.Errorf("editorMsg(%s, %v) = %#v, want %#v", c.event, c.data, got, c.want)
		}
	}
}

func TestProgramEmitter(t *testing.T) {
	var got []tea.Msg
	e := &programEmitter{}
	ev := service.DescriptionEvent{TaskID: "t1"}

	e.Emit(context.Background(), service.EventDescriptionSaved, ev)
	e.attach("t1", func(m tea.Msg) { got = append(got, m) })
	e.Emit(context.Background(), service.EventDescriptionSaved, ev)
	e.detach()
	e.Emit(context.Background(), service.EventDescriptionSaved, ev)

	if len(got) != 1 {
		t.Errorf("forwarded %d messages, want 1", len(got))
	}
}

// ─── logging ───

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "task", "t1")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"task":"t1"`) {
		t.Errorf("output = %s", out)
	}

	if _, err := NewLogger(config.LogConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected an unknown level to fail")
	}
}

func TestOpenLogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(cfg.DataDir, "nested")
	f, err := OpenLogFile(cfg)
	if err != nil {
		t.Fatalf("OpenLogFile: %v", err)
	}
	defer f.Close()
	if f.Name() != cfg.LogPath() {
		t.Errorf("name = %q", f.Name())
	}
}

// ─── watcher ───

func openWatched(t *testing.T, path string) (*storage.TaskStore, *service.DescriptionService) {
	t.Helper()
	db, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewTaskStore(db)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if err := store.CreateTask(ctx, &domain.Task{ID: "t1", Title: "A", Description: "v0"}); err != nil {
		t.Fatal(err)
	}
	descs := service.NewDescriptionService(store, nil, service.DescriptionOptions{Logger: discardLogger()})
	if _, err := descs.Open(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	return store, descs
}

// otherWriter opens a second connection to the same file, standing in for
// another process.
func otherWriter(t *testing.T, path string) *storage.TaskStore {
	t.Helper()
	db, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	s := storage.NewTaskStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWatcher_FileEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdoc.db")
	store, descs := openWatched(t, path)
	em := &service.MockEmitter{}

	w := newDescriptionWatcher(store, descs, em, watchOptions{TaskID: "t1", File: path, Logger: discardLogger()})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := otherWriter(t, path).UpdateDescription(context.Background(), "t1", "from mcp"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "external event", func() bool {
		return len(em.Named(service.EventDescriptionExternal)) > 0
	})
	ev := em.Named(service.EventDescriptionExternal)[0].Data.(service.DescriptionEvent)
	if ev.Content != "from mcp" {
		t.Errorf("content = %q", ev.Content)
	}
}

func TestWatcher_PollsWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdoc.db")
	store, descs := openWatched(t, path)
	em := &service.MockEmitter{}

	w := newDescriptionWatcher(store, descs, em, watchOptions{TaskID: "t1", Interval: 10 * time.Millisecond, Logger: discardLogger()})
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// An unchanged description is not reported.
	time.Sleep(50 * time.Millisecond)
	if n := len(em.Named(service.EventDescriptionExternal)); n != 0 {
		t.Fatalf("reported %d changes for an unchanged task", n)
	}

	if err := store.UpdateDescription(context.Background(), "t1", "edited"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "external event", func() bool {
		return len(em.Named(service.EventDescriptionExternal)) == 1
	})
	time.Sleep(50 * time.Millisecond)
	if n := len(em.Named(service.EventDescriptionExternal)); n != 1 {
		t.Errorf("reported %d times, want once", n)
	}
}

func TestWatcher_UnsavedEditsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdoc.db")
	store, descs := openWatched(t, path)
	em := &service.MockEmitter{}
	descs.Changed("t1", "local typing")

	if err := store.UpdateDescription(context.Background(), "t1", "remote"); err != nil {
		t.Fatal(err)
	}
	w := newDescriptionWatcher(store, descs, em, watchOptions{TaskID: "t1", Logger: discardLogger()})
	w.check(context.Background())

	if n := len(em.Named(service.EventDescriptionExternal)); n != 0 {
		t.Errorf("reported %d changes over unsaved edits", n)
	}
	if d, _ := descs.Display("t1"); d != "local typing" {
		t.Errorf("display = %q", d)
	}
	descs.Close("t1")
}
