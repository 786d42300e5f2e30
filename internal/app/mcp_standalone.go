package app

import (
	"context"

	mcpserver "taskdoc/internal/mcp"
)

// ServeMCP serves the task tools over stdin/stdout until the client
// disconnects or ctx is cancelled. stdout belongs to the protocol, so the
// logger passed to New must write elsewhere.
func (a *App) ServeMCP(ctx context.Context, version string) error {
	srv := mcpserver.New(mcpserver.Deps{
		Tasks:   a.tasks,
		Logger:  a.base,
		Version: version,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.ServeStdio() }()

	a.log.Info("mcp server listening on stdio")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return nil
	}
}
