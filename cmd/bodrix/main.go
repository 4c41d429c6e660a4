package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bodrix-ai/bodrix/internal/interfaces/cli/features"
	"github.com/bodrix-ai/bodrix/internal/interfaces/cli/migrate"
	"github.com/bodrix-ai/bodrix/internal/interfaces/cli/server"
	"github.com/bodrix-ai/bodrix/internal/interfaces/cli/token"
	"github.com/bodrix-ai/bodrix/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "bodrix",
		Short:   "Bodrix - feature registry, flags and loader service",
		Long:    `Bodrix serves the AI platform's feature catalog: per-caller flag evaluation, runtime overrides and on-demand feature loading.`,
		Version: version.Current,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		features.NewCommand(),
		token.NewCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
