package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskdoc",
		Short:         "Block-structured task descriptions in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "config file (default $"+"TASKDOC_CONFIG or ~/.config/taskdoc/config.yaml)")

	cmd.AddCommand(newCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(showCmd())
	cmd.AddCommand(editCmd())
	cmd.AddCommand(importCmd())
	cmd.AddCommand(deleteCmd())
	cmd.AddCommand(mcpCmd())
	return cmd
}
