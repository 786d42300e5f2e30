package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTaskTools() {
	// ── list_tasks ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks, most recently updated first"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListTasks)

	// ── create_task ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. The description may be a JSON block array, plain text, or omitted."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Initial description (optional)")),
	), s.handleCreateTask)
}

func boolPtr(v bool) *bool { return &v }

// taskSummary is the list view of a task.
type taskSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	summaries := make([]taskSummary, len(tasks))
	for i, t := range tasks {
		summaries[i] = taskSummary{ID: t.ID, Title: t.Title, UpdatedAt: t.UpdatedAt}
	}
	return jsonResult(summaries)
}

func (s *Server) handleCreateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	title, err := requireString(args, "title")
	if err != nil {
		return nil, err
	}
	description, _ := args["description"].(string)

	task, err := s.tasks.CreateTask(ctx, title, description)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.log.Info("task created via mcp", "task", task.ID)
	return jsonResult(taskSummary{ID: task.ID, Title: task.Title, UpdatedAt: task.UpdatedAt})
}
