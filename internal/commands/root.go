// Package commands holds the cobra command tree of the spendwise CLI.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/analytics"
	"spendwise/internal/backend"
	"spendwise/internal/config"
	"spendwise/internal/log"
)

// options is the state shared by every subcommand.
type options struct {
	cfg     *config.Config
	backend string
	dbPath  string
	seed    string
	userID  string

	now     func() time.Time
	factory backend.Factory
}

// NewRootCommand creates the root CLI command with all subcommands registered.
// Flag defaults come from the environment (see config.Load).
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{cfg: config.Load(), now: time.Now})
}

func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spendwise",
		Short: "Spending analytics over a transaction store",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := log.ConfigFromSettings(opts.cfg.LogLevel, opts.cfg.LogFormat, log.ComponentCLI)
			// stdout is reserved for results
			cfg.Output = cmd.ErrOrStderr()
			if opts.cfg.LogLevel == "" {
				cfg.Level = slog.LevelWarn
			}
			log.SetDefault(log.New(cfg))
			if opts.factory == nil {
				opts.factory = backend.NewFactory(slog.Default())
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", opts.cfg.DataBackend,
		"transaction store: "+strings.Join(backend.GetBackendTypeStrings(), ", "))
	flags.StringVar(&opts.dbPath, "db", opts.cfg.SQLiteDBPath, "SQLite database path")
	flags.StringVar(&opts.seed, "seed", opts.cfg.SeedFile, "YAML seed file for the memory backend")
	flags.StringVar(&opts.userID, "user", os.Getenv("SPENDWISE_USER"), "user id to analyse")

	rootCmd.AddCommand(
		newSummaryCommand(opts),
		newTrendsCommand(opts),
		newCategoriesCommand(opts),
		newDailyCommand(opts),
		newTopCommand(opts),
		newInsightsCommand(opts),
		newImportCommand(opts),
		newRequestCommand(opts),
	)

	return rootCmd
}

func (o *options) backendConfig() (backend.Config, error) {
	cfg := *o.cfg
	cfg.DataBackend = o.backend
	cfg.SQLiteDBPath = o.dbPath
	cfg.SeedFile = o.seed
	cfg.SeedWatch = false
	return backend.FromAppConfig(&cfg)
}

func (o *options) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bcfg, err := o.backendConfig()
	if err != nil {
		return nil, err
	}
	res, err := o.factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", o.backend, err)
	}
	return res, nil
}

// withService opens the backend, runs fn against a service bound to it and
// closes the backend afterwards.
func (o *options) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *analytics.Service) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.userID == "" {
		return fmt.Errorf("--user is required")
	}

	res, err := o.openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			slog.Warn("Closing backend failed", "error", err)
		}
	}()

	svc := analytics.NewService(res.Backend, analytics.NewResolver(o.now), analytics.WithSourceName(res.Name))

	if o.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.FetchTimeout)
		defer cancel()
	}

	out, err := fn(ctx, svc)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
