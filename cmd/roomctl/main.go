package main

import (
	"context"
	"fmt"
	configloader "interviewroom/config"
	"interviewroom/internal/config"
	"interviewroom/internal/repository"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the roomctl command tree. Every subcommand reads the
// same environment as the server.
func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "roomctl",
		Short:         "Administrative tasks for the interview room service",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(
		newSeedUsersCmd(),
		newTokenCmd(),
		newCreateRoomCmd(),
	)
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := configloader.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// withStore opens the configured store for the duration of fn
func withStore(cfg *config.Config, fn func(ctx context.Context, store *repository.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	store, err := repository.Open(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()

	return fn(ctx, store)
}

func printf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}
