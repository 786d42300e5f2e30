package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskdoc/internal/app"
	"taskdoc/internal/config"
	"taskdoc/internal/document"
	"taskdoc/internal/domain"
)

// logTarget picks where a command's log goes.
type logTarget int

const (
	logStderr logTarget = iota
	logFile             // the terminal belongs to the editor
)

// openApp loads config, sets up logging and opens the app. The returned
// cleanup closes both.
func openApp(cmd *cobra.Command, target logTarget) (*app.App, func(), error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Path(path))
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	var logFileHandle *os.File
	if target == logFile {
		logFileHandle, err = app.OpenLogFile(cfg)
		if err != nil {
			return nil, nil, err
		}
		w = logFileHandle
	}
	logger, err := app.NewLogger(cfg.Log, w)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		if logFileHandle != nil {
			logFileHandle.Close()
		}
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Error("close", "error", err)
			fmt.Fprintln(os.Stderr, err)
		}
		if logFileHandle != nil {
			logFileHandle.Close()
		}
	}
	return a, cleanup, nil
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, logStderr)
			if err != nil {
				return err
			}
			defer cleanup()

			desc, _ := cmd.Flags().GetString("description")
			mdPath, _ := cmd.Flags().GetString("markdown")
			if mdPath != "" {
				md, err := readInput(cmd, mdPath)
				if err != nil {
					return err
				}
				desc = document.FromMarkdown(md).Serialize()
			}

			t, err := a.Tasks().CreateTask(cmd.Context(), strings.Join(args, " "), desc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			return nil
		},
	}
	cmd.Flags().StringP("description", "d", "", "initial description (block JSON or plain text)")
	cmd.Flags().StringP("markdown", "m", "", "read the initial description from a markdown file (- for stdin)")
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, logStderr)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := a.Tasks().ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return writeTasks(cmd.OutOrStdout(), tasks, asJSON)
		},
	}
	cmd.Flags().BoolP("json", "j", false, "output as JSON")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Print a task description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, logStderr)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := a.Tasks().Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			out, err := renderDocument(doc, format)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringP("format", "f", "markdown", "output format: markdown, text or json")
	return cmd
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task description in the block editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, logFile)
			if err != nil {
				return err
			}
			defer cleanup()
			return a.Edit(cmd.Context(), args[0])
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <task-id> <file.md>",
		Short: "Replace a task description with a markdown file (- for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd, logStderr)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := a.Tasks().ReplaceMarkdown(cmd.Context(), args[0], md)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d blocks\n", doc.Len())
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, logStderr)
			if err != nil {
				return err
			}
			defer cleanup()
			return a.Tasks().DeleteTask(cmd.Context(), args[0])
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve task description tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd, logStderr)
			if err != nil {
				return err
			}
			defer cleanup()
			return a.ServeMCP(cmd.Context(), Version)
		},
	}
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func renderDocument(doc *document.Document, format string) (string, error) {
	switch format {
	case "markdown", "md":
		return doc.Markdown(), nil
	case "text":
		return doc.Text(), nil
	case "json":
		var buf strings.Builder
		if err := writeJSON(&buf, doc.Blocks()); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("unknown format %q (want markdown, text or json)", format)
}

func writeTasks(w io.Writer, tasks []domain.Task, asJSON bool) error {
	if asJSON {
		if tasks == nil {
			tasks = []domain.Task{}
		}
		return writeJSON(w, tasks)
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.UpdatedAt.Local().Format("2006-01-02 15:04"), t.Title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
