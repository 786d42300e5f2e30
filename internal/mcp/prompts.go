package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("write_task_description",
		mcp.WithPromptDescription("Draft a structured description for a task and store it with replace_task_description"),
		mcp.WithArgument("taskId",
			mcp.ArgumentDescription("Task to describe"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the task should achieve"),
		),
	), s.handleWriteDescriptionPrompt)
}

func (s *Server) handleWriteDescriptionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	taskID := req.Params.Arguments["taskId"]
	goal := req.Params.Arguments["goal"]
	if goal == "" {
		goal = "the task's title"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Write the description of task %s", taskID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Write a clear description for task %q, based on %s.

1. Read the current description with get_task_description so nothing useful is lost.
2. Compose the new description as a JSON array of blocks, each {"type": ..., "content": ...}.
   Valid types: %s.
   Use heading2 for sections, bulletList or numberedList items for steps (one block per item),
   code for commands, quote for acceptance criteria.
3. Keep each block under 2000 characters.
4. Store it with replace_task_description (taskId %q, content = the JSON array).`,
						taskID, goal, blockTypeList(), taskID),
				},
			},
		},
	}, nil
}
