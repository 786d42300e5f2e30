package mcpserver

import (
	"context"
	"fmt"

	"taskdoc/internal/document"
	"taskdoc/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDescriptionTools() {
	// ── get_task_description ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_task_description",
		mcp.WithDescription("Read a task's description as block records and as markdown"),
		mcp.WithString("taskId", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleGetDescription)

	// ── replace_task_description ───────────────────────
	s.mcp.AddTool(mcp.NewTool("replace_task_description",
		mcp.WithDescription("Replace a task's whole description. Pass a JSON array of {type, content} blocks, "+
			"or plain text for a single paragraph. Types: "+blockTypeList()+". Content is trimmed and capped."),
		mcp.WithString("taskId", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("JSON block array or plain text"), mcp.Required()),
	), s.handleReplaceDescription)

	// ── set_task_description_markdown ──────────────────
	s.mcp.AddTool(mcp.NewTool("set_task_description_markdown",
		mcp.WithDescription("Replace a task's description with blocks imported from markdown "+
			"(headings, quotes, fenced code, bullet and numbered lists, paragraphs)"),
		mcp.WithString("taskId", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("markdown", mcp.Description("Markdown source"), mcp.Required()),
	), s.handleSetMarkdown)

	// ── append_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("append_block",
		mcp.WithDescription("Append one block to the end of a task's description"),
		mcp.WithString("taskId", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("type", mcp.Description("Block type (default paragraph): "+blockTypeList())),
		mcp.WithString("content", mcp.Description("Block text"), mcp.Required()),
	), s.handleAppendBlock)
}

// descriptionView is what get_task_description returns.
type descriptionView struct {
	TaskID   string         `json:"taskId"`
	Title    string         `json:"title"`
	Blocks   []domain.Block `json:"blocks"`
	Markdown string         `json:"markdown"`
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetDescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requireString(req.GetArguments(), "taskId")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	doc := document.Parse(task.Description)
	return jsonResult(descriptionView{
		TaskID:   task.ID,
		Title:    task.Title,
		Blocks:   doc.Blocks(),
		Markdown: doc.Markdown(),
	})
}

func (s *Server) handleReplaceDescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	taskID, err := requireString(args, "taskId")
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)

	doc, err := s.tasks.ReplaceContent(ctx, taskID, content)
	if err != nil {
		return nil, fmt.Errorf("replace description: %w", err)
	}
	return textResult(fmt.Sprintf("Description of task %s replaced with %d block(s)", taskID, doc.Len())), nil
}

func (s *Server) handleSetMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	taskID, err := requireString(args, "taskId")
	if err != nil {
		return nil, err
	}
	markdown, _ := args["markdown"].(string)

	doc, err := s.tasks.ReplaceMarkdown(ctx, taskID, markdown)
	if err != nil {
		return nil, fmt.Errorf("import markdown: %w", err)
	}
	return jsonResult(doc.Blocks())
}

func (s *Server) handleAppendBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	taskID, err := requireString(args, "taskId")
	if err != nil {
		return nil, err
	}
	blockType, err := blockTypeArg(args, "type")
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)

	block, err := s.tasks.AppendBlock(ctx, taskID, blockType, content)
	if err != nil {
		return nil, fmt.Errorf("append block: %w", err)
	}
	return jsonResult(block)
}
