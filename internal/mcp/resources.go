package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"taskdoc/internal/document"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	tasksURI        = "taskdoc://tasks"
	taskBlocksURI   = "taskdoc://task/{taskId}/blocks"
	taskURIPrefix   = "taskdoc://task/"
	blocksURISuffix = "/blocks"
)

func (s *Server) registerResources() {
	// ── taskdoc://tasks ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		tasksURI,
		"All Tasks",
		mcp.WithMIMEType("application/json"),
	), s.handleTasksResource)

	// ── taskdoc://task/{taskId}/blocks ─────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			taskBlocksURI,
			"Blocks of a Task Description",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleTaskBlocksResource,
	)
}

func (s *Server) handleTasksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]taskSummary, len(tasks))
	for i, t := range tasks {
		summaries[i] = taskSummary{ID: t.ID, Title: t.Title, UpdatedAt: t.UpdatedAt}
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tasksURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleTaskBlocksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	taskID := taskIDFromURI(uri)
	if taskID == "" {
		return nil, fmt.Errorf("could not extract taskId from URI: %s", uri)
	}

	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     document.Parse(task.Description).Serialize(),
		},
	}, nil
}

// taskIDFromURI extracts the task ID from "taskdoc://task/{id}/blocks".
func taskIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, taskURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, blocksURISuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
