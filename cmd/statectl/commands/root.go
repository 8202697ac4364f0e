package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-statestore/internal/config"
	"github.com/goliatone/go-statestore/pkg/cache"
	"github.com/goliatone/go-statestore/pkg/cache/sqlite"
)

const (
	serviceName       = "statectl"
	backendAnnotation = "statectl/backend"
)

// app holds the dependencies shared by subcommands.
type app struct {
	logger   *slog.Logger
	backend  cache.Backend
	close    func() error
	shutdown func(context.Context) error
}

// Execute runs the statectl root command.
func Execute() (err error) {
	state := &app{}
	defer func() {
		err = errors.Join(err, state.release(context.Background()))
	}()
	return newRootCmd(state).Execute()
}

func newRootCmd(state *app) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Inspect and edit persisted store snapshots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[backendAnnotation]; !ok {
				return nil
			}
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			return state.open(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")

	root.AddCommand(
		keyCmd(),
		getCmd(state),
		putCmd(state),
		deleteCmd(state),
		keysCmd(state),
	)
	return root
}

// usesBackend marks a command that needs the configured backend opened
// before it runs.
func usesBackend() map[string]string {
	return map[string]string{backendAnnotation: "true"}
}

func (a *app) open(ctx context.Context, cfg config.Config, stderr io.Writer) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	provider, shutdown, err := cfg.SetupTracing(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	a.shutdown = shutdown

	var backend cache.Backend
	switch cfg.Backend {
	case config.BackendFile:
		if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
			return err
		}
		file, err := cache.NewFile(cfg.Path)
		if err != nil {
			return err
		}
		backend = file
		a.close = func() error { return nil }
	default:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return err
		}
		backend = store
		a.close = store.Close
	}
	if cfg.Timeout > 0 {
		backend = cache.WithTimeout(backend, cfg.Timeout)
	}
	a.backend = cache.Traced(backend, provider)

	a.logger.Debug("backend opened", "backend", cfg.Backend, "path", cfg.Path, "timeout", cfg.Timeout)
	return nil
}

// release closes the backend and flushes spans. Safe to call twice.
func (a *app) release(ctx context.Context) error {
	var errs []error
	if a.close != nil {
		errs = append(errs, a.close())
		a.close = nil
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
		a.shutdown = nil
	}
	return errors.Join(errs...)
}
