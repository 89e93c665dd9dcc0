package cli

import (
	"fmt"

	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/spf13/cobra"
)

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new random key",
		Long: `Keygen prints a new 32 character key.

Host it as <key>.txt at the root of your site, containing only the key, or
anywhere on the site together with --key-location.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := indexnow.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key.String())
			return err
		},
	}
}
