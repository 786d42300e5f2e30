package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taskdoc/internal/document"
	"taskdoc/internal/domain"
	"taskdoc/internal/service"
)

func newTaskService(store *memStore) (*service.TaskService, *service.MockEmitter) {
	em := &service.MockEmitter{}
	return service.NewTaskService(store, em, discardLogger()), em
}

// ─────────────────────────────────────────────────────────────
// TaskService tests
// ─────────────────────────────────────────────────────────────

func TestTaskService_CreateNormalisesDescription(t *testing.T) {
	store := newMemStore()
	svc, em := newTaskService(store)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "  Ship it  ", "first draft")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == "" || task.Title != "Ship it" {
		t.Errorf("task = %+v", task)
	}
	doc := document.Parse(store.description(task.ID))
	if doc.Len() != 1 || doc.First().Content != "first draft" {
		t.Errorf("stored description = %q", store.description(task.ID))
	}
	if !strings.HasPrefix(store.description(task.ID), "[") {
		t.Error("description should be stored as block JSON")
	}
	if len(em.Named(service.EventTaskCreated)) != 1 {
		t.Error("expected task:created event")
	}

	if _, err := svc.CreateTask(ctx, " ", ""); err == nil {
		t.Error("expected empty title to fail")
	}
}

func TestTaskService_ReplaceContentSanitises(t *testing.T) {
	store := newMemStore(domain.Task{ID: "t1"})
	svc, em := newTaskService(store)

	raw := `[{"id":"x","type":"bogus","content":"  hi\u0007  ","position":3}]`
	doc, err := svc.ReplaceContent(context.Background(), "t1", raw)
	if err != nil {
		t.Fatalf("ReplaceContent: %v", err)
	}
	b := doc.First()
	if b.Type != domain.BlockTypeParagraph || b.Content != "hi" || b.Position != 0 {
		t.Errorf("block = %+v", b)
	}
	if store.description("t1") != doc.Serialize() {
		t.Error("stored value differs from returned document")
	}
	if len(em.Named(service.EventDescriptionChanged)) != 1 {
		t.Error("expected description-changed event")
	}
}

func TestTaskService_ReplaceMarkdown(t *testing.T) {
	store := newMemStore(domain.Task{ID: "t1"})
	svc, _ := newTaskService(store)

	doc, err := svc.ReplaceMarkdown(context.Background(), "t1", "# Plan\n\n- one\n- two\n")
	if err != nil {
		t.Fatalf("ReplaceMarkdown: %v", err)
	}
	want := []domain.BlockType{domain.BlockTypeHeading1, domain.BlockTypeBulletList, domain.BlockTypeBulletList}
	if doc.Len() != len(want) {
		t.Fatalf("blocks = %+v", doc.Blocks())
	}
	for i, bt := range want {
		if doc.At(i).Type != bt {
			t.Errorf("block %d type = %s, want %s", i, doc.At(i).Type, bt)
		}
	}
}

func TestTaskService_AppendBlock(t *testing.T) {
	store := newMemStore(domain.Task{ID: "t1"})
	svc, _ := newTaskService(store)
	ctx := context.Background()

	first, err := svc.AppendBlock(ctx, "t1", domain.BlockTypeHeading2, "Notes")
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	second, err := svc.AppendBlock(ctx, "t1", domain.BlockTypeCode, "go test ./...")
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}

	doc := document.Parse(store.description("t1"))
	if doc.Len() != 2 {
		t.Fatalf("expected the empty placeholder block to be reused, got %d blocks", doc.Len())
	}
	if doc.At(0).ID != first.ID || doc.At(0).Type != domain.BlockTypeHeading2 {
		t.Errorf("first = %+v", doc.At(0))
	}
	if doc.At(1).ID != second.ID || second.Position != 1 {
		t.Errorf("second = %+v", second)
	}
}

func TestTaskService_MissingTask(t *testing.T) {
	svc, _ := newTaskService(newMemStore())
	ctx := context.Background()

	if _, err := svc.ReplaceContent(ctx, "nope", "x"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("ReplaceContent err = %v", err)
	}
	if _, err := svc.AppendBlock(ctx, "nope", domain.BlockTypeQuote, "x"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("AppendBlock err = %v", err)
	}
	if err := svc.DeleteTask(ctx, "nope"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("DeleteTask err = %v", err)
	}
}
