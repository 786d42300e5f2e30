package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"taskdoc/internal/document"
	"taskdoc/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Task Service — tasks and whole-description writes
// ─────────────────────────────────────────────────────────────

// TaskService manages tasks and replaces descriptions in one step. The
// debounced editor save path lives in DescriptionService.
type TaskService struct {
	store   domain.TaskStore
	emitter EventEmitter
	log     *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(store domain.TaskStore, emitter EventEmitter, logger *slog.Logger) *TaskService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &TaskService{store: store, emitter: emitter, log: logger.With("component", "tasks")}
}

// CreateTask creates a task. description may be block JSON, plain text or
// empty and is stored normalised to block JSON.
func (s *TaskService) CreateTask(ctx context.Context, title, description string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}
	t := &domain.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: document.Parse(description).Serialize(),
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("task created", "task", t.ID)
	s.emitter.Emit(ctx, EventTaskCreated, t)
	return t, nil
}

// GetTask returns a task by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.store.GetTask(ctx, id)
}

// ListTasks returns all tasks, most recently updated first.
func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.store.ListTasks(ctx)
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventTaskDeleted, id)
	return nil
}

// Document loads a task's description as a Document.
func (s *TaskService) Document(ctx context.Context, id string) (*document.Document, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return document.Parse(t.Description), nil
}

// ReplaceBlocks stores blocks as the task's description after sanitising
// them the way generated content is sanitised.
func (s *TaskService) ReplaceBlocks(ctx context.Context, id string, blocks []domain.Block) (*document.Document, error) {
	doc := document.FromBlocks(document.Sanitize(blocks))
	return doc, s.write(ctx, id, doc)
}

// ReplaceContent stores content (block JSON or plain text) as the task's
// description. Block records are sanitised.
func (s *TaskService) ReplaceContent(ctx context.Context, id, content string) (*document.Document, error) {
	doc := document.Parse(content)
	return s.ReplaceBlocks(ctx, id, doc.Blocks())
}

// ReplaceMarkdown imports markdown as the task's description.
func (s *TaskService) ReplaceMarkdown(ctx context.Context, id, markdown string) (*document.Document, error) {
	doc := document.FromMarkdown(markdown)
	return s.ReplaceBlocks(ctx, id, doc.Blocks())
}

// AppendBlock adds one block at the end of the task's description. An
// empty sole paragraph is reused rather than left in front.
func (s *TaskService) AppendBlock(ctx context.Context, id string, t domain.BlockType, content string) (*domain.Block, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return nil, err
	}

	clean := document.Sanitize([]domain.Block{{Type: t, Content: content}})[0]
	t, content = clean.Type, clean.Content

	var b domain.Block
	if first := doc.First(); doc.Len() == 1 && first.Content == "" && first.Type == domain.BlockTypeParagraph {
		b = first
		doc.ChangeType(b.ID, t)
	} else {
		b = doc.InsertAfter("", t)
	}
	doc.UpdateContent(b.ID, content)

	if err := s.write(ctx, id, doc); err != nil {
		return nil, err
	}
	b, _ = doc.Block(b.ID)
	return &b, nil
}

func (s *TaskService) write(ctx context.Context, id string, doc *document.Document) error {
	content := doc.Serialize()
	if err := s.store.UpdateDescription(ctx, id, content); err != nil {
		return fmt.Errorf("write description: %w", err)
	}
	s.log.Debug("description replaced", "task", id, "blocks", doc.Len())
	s.emitter.Emit(ctx, EventDescriptionChanged, DescriptionEvent{TaskID: id, Content: content})
	return nil
}
