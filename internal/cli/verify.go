package cli

import (
	"fmt"
	"strings"

	"github.com/FranksOps/indexnow/internal/config"
	"github.com/FranksOps/indexnow/internal/submit"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/spf13/cobra"
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the key file of a host is reachable and holds the key",
		Example: `  indexnow verify -k $KEY --host example.com
  indexnow verify -k $KEY -l https://example.com/keys/key.txt --host https://example.com`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}
	config.AddKeyFlags(cmd.Flags())
	config.AddVerifyFlags(cmd.Flags())
	config.AddTransportFlags(cmd.Flags())
	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateVerify(); err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	key, _ := cfg.ParseKey()
	loc, _ := cfg.ParseKeyLocation()

	host := cfg.Host
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	site, err := indexnow.ParseContentURL(host)
	if err != nil {
		return err
	}

	client, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}

	fileURL, err := submit.VerifyKeyFile(cmd.Context(), client, key, loc, site)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "key file OK: %s\n", strings.ReplaceAll(fileURL, key.String(), key.Redacted()))
	return nil
}
