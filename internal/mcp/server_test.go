package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"taskdoc/internal/document"
	"taskdoc/internal/domain"
	"taskdoc/internal/service"
	"taskdoc/internal/storage"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestServer(t *testing.T) (*Server, *service.TaskService) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "mcp.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tasks := service.NewTaskService(storage.NewTaskStore(db), nil, logger)
	return New(Deps{Tasks: tasks, Logger: logger}), tasks
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", res.Content[0])
	}
	return tc.Text
}

func createTask(t *testing.T, tasks *service.TaskService) *domain.Task {
	t.Helper()
	task, err := tasks.CreateTask(context.Background(), "Release", "")
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func TestCreateAndListTasks(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	if _, err := s.handleCreateTask(ctx, callTool(map[string]any{"title": "Write docs"})); err != nil {
		t.Fatalf("create_task: %v", err)
	}
	if _, err := s.handleCreateTask(ctx, callTool(map[string]any{})); err == nil {
		t.Error("create_task without title should fail")
	}

	res, err := s.handleListTasks(ctx, callTool(nil))
	if err != nil {
		t.Fatalf("list_tasks: %v", err)
	}
	var list []taskSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Write docs" {
		t.Errorf("list = %+v", list)
	}
}

func TestReplaceDescription_SanitisesGeneratedBlocks(t *testing.T) {
	s, tasks := newTestServer(t)
	task := createTask(t, tasks)
	ctx := context.Background()

	content := `[{"type":"heading1","content":"  Plan  "},{"type":"checklist","content":"step"}]`
	if _, err := s.handleReplaceDescription(ctx, callTool(map[string]any{"taskId": task.ID, "content": content})); err != nil {
		t.Fatalf("replace_task_description: %v", err)
	}

	doc, _ := tasks.Document(ctx, task.ID)
	if doc.Len() != 2 {
		t.Fatalf("blocks = %+v", doc.Blocks())
	}
	if doc.At(0).Content != "Plan" || doc.At(1).Type != domain.BlockTypeParagraph {
		t.Errorf("blocks = %+v", doc.Blocks())
	}
	if err := doc.Validate(); err != nil {
		t.Error(err)
	}
}

func TestGetDescription(t *testing.T) {
	s, tasks := newTestServer(t)
	task := createTask(t, tasks)
	ctx := context.Background()
	tasks.ReplaceContent(ctx, task.ID, `[{"type":"numberedList","content":"a"},{"type":"numberedList","content":"b"}]`)

	res, err := s.handleGetDescription(ctx, callTool(map[string]any{"taskId": task.ID}))
	if err != nil {
		t.Fatalf("get_task_description: %v", err)
	}
	var view descriptionView
	if err := json.Unmarshal([]byte(resultText(t, res)), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Blocks) != 2 || view.Markdown != "1. a\n\n2. b\n" {
		t.Errorf("view = %+v", view)
	}

	_, err = s.handleGetDescription(ctx, callTool(map[string]any{"taskId": "missing"}))
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("missing task err = %v", err)
	}
}

func TestSetMarkdownAndAppendBlock(t *testing.T) {
	s, tasks := newTestServer(t)
	task := createTask(t, tasks)
	ctx := context.Background()

	md := "## Steps\n\n1. build\n2. ship\n"
	if _, err := s.handleSetMarkdown(ctx, callTool(map[string]any{"taskId": task.ID, "markdown": md})); err != nil {
		t.Fatalf("set_task_description_markdown: %v", err)
	}
	if _, err := s.handleAppendBlock(ctx, callTool(map[string]any{"taskId": task.ID, "type": "code", "content": "make release"})); err != nil {
		t.Fatalf("append_block: %v", err)
	}
	if _, err := s.handleAppendBlock(ctx, callTool(map[string]any{"taskId": task.ID, "type": "table", "content": "x"})); err == nil {
		t.Error("unknown block type should be rejected")
	}

	doc, _ := tasks.Document(ctx, task.ID)
	want := []domain.BlockType{
		domain.BlockTypeHeading2,
		domain.BlockTypeNumberedList,
		domain.BlockTypeNumberedList,
		domain.BlockTypeCode,
	}
	if doc.Len() != len(want) {
		t.Fatalf("blocks = %+v", doc.Blocks())
	}
	for i, bt := range want {
		if doc.At(i).Type != bt {
			t.Errorf("block %d = %s, want %s", i, doc.At(i).Type, bt)
		}
	}
}

func TestResources(t *testing.T) {
	s, tasks := newTestServer(t)
	task := createTask(t, tasks)
	ctx := context.Background()

	var req mcp.ReadResourceRequest
	req.Params.URI = "taskdoc://task/" + task.ID + "/blocks"
	contents, err := s.handleTaskBlocksResource(ctx, req)
	if err != nil {
		t.Fatalf("blocks resource: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if doc := document.Parse(text); doc.Len() != 1 {
		t.Errorf("resource = %s", text)
	}

	req.Params.URI = tasksURI
	contents, err = s.handleTasksResource(ctx, req)
	if err != nil {
		t.Fatalf("tasks resource: %v", err)
	}
	if !strings.Contains(contents[0].(mcp.TextResourceContents).Text, task.ID) {
		t.Error("task missing from tasks resource")
	}
}

func TestTaskIDFromURI(t *testing.T) {
	cases := map[string]string{
		"taskdoc://task/abc-123/blocks": "abc-123",
		"taskdoc://task//blocks":        "",
		"taskdoc://task/a/b/blocks":     "",
		"notes://page/abc/blocks":       "",
		"taskdoc://task/abc":            "",
	}
	for uri, want := range cases {
		if got := taskIDFromURI(uri); got != want {
			t.Errorf("taskIDFromURI(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestWriteDescriptionPrompt(t *testing.T) {
	s, _ := newTestServer(t)
	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"taskId": "t1"}

	res, err := s.handleWriteDescriptionPrompt(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := res.Messages[0].Content.(mcp.TextContent).Text
	for _, want := range []string{"replace_task_description", "numberedList", `"t1"`} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt does not mention %s", want)
		}
	}
}
