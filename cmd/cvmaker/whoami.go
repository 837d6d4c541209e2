package main

import (
	"os"

	"github.com/jonathan/cvmaker/internal/auth"
	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/observability"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Decode the session token the client commands use",
	Long: `Prints the identity carried by the session token. When JWT_SECRET is set
the signature and expiry are checked; otherwise the payload is shown as is.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

var (
	whoamiClient clientFlags
	whoamiSecret string
)

func init() {
	addClientFlags(whoamiCmd, &whoamiClient)
	whoamiCmd.Flags().StringVar(&whoamiSecret, "secret", "", "Signing secret to verify with (env JWT_SECRET)")

	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	cfg, err := whoamiClient.resolve(config.Config{})
	if err != nil {
		return err
	}

	secret := whoamiSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	decoder := auth.NewDecoder(secret)

	id, err := decoder.Decode(cfg.Token)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintIdentity(id, decoder.Verifies())
	return nil
}
