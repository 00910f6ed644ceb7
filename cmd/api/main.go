package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"placeholder-mirror/cmd/api/app"
	"placeholder-mirror/cmd/api/server"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "placeholder-mirror",
		Short:         "Mirror JSONPlaceholder users, posts and comments behind a REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runServe,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "load",
			Short: "Replace the stored data with a fresh upstream snapshot and exit",
			Args:  cobra.NoArgs,
			RunE:  runLoad,
		},
	)

	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := server.WithSignal(cmd.Context())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	ctx, stop := server.WithSignal(cmd.Context())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	return a.Load(ctx)
}
