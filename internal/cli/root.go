// Package cli implements the indexnow command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/FranksOps/indexnow/internal/argfile"
	"github.com/FranksOps/indexnow/internal/config"
	"github.com/FranksOps/indexnow/internal/logging"
	"github.com/FranksOps/indexnow/internal/transport"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree writing output to stdout and
// logs and errors to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "indexnow",
		Short: "Notify search engines of changed URLs using the IndexNow protocol",
		Long: `indexnow tells search engines that pages of your site changed.

Arguments of the form @path are replaced by the non-empty lines of path.
Every flag can also be set as INDEXNOW_<FLAG> in the environment (dashes
become underscores) or in the file named by --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	config.AddGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		newSubmitCommand(),
		newVerifyCommand(),
		newKeygenCommand(),
		newEnginesCommand(),
	)
	return root
}

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	expanded, err := argfile.Expand(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	root := NewRootCommand(stdout, stderr)
	root.SetArgs(expanded)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig resolves the settings of cmd from its flags, the environment
// and the config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.New(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(v), nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

func newTransport(cfg config.Config, logger *slog.Logger) (*transport.Client, error) {
	profile, err := cfg.ParseTLSProfile()
	if err != nil {
		return nil, err
	}
	pool, err := cfg.ProxyPool()
	if err != nil {
		return nil, err
	}
	return transport.New(transport.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UserAgent:    cfg.UserAgent,
		Fingerprint:  profile,
		ProxyPool:    pool,
	}, logger)
}
