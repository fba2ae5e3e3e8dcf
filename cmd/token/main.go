package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/repurpose-api/configs"
	"github.com/maheshrc27/repurpose-api/pkg/utils"
	"github.com/spf13/cobra"
)

var errNoSecret = errors.New("SECRET_KEY is not set and no --secret was given")

func newTokenCmd(secretKey string) *cobra.Command {
	var flags struct {
		secret  string
		subject string
		ttl     time.Duration
	}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the /api routes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := flags.secret
			if secret == "" {
				secret = secretKey
			}
			if secret == "" {
				return errNoSecret
			}

			token, err := utils.GenerateToken(secret, flags.subject, flags.ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.secret, "secret", "s", "", "Signing secret (defaults to SECRET_KEY)")
	cmd.Flags().StringVarP(&flags.subject, "user", "u", "cli", "User id stored in the token")
	cmd.Flags().DurationVarP(&flags.ttl, "ttl", "t", 30*24*time.Hour, "Token lifetime")
	return cmd
}

func main() {
	_ = godotenv.Load()

	cmd := newTokenCmd(config.LoadConfig().SecretKey)
	cmd.CompletionOptions.DisableDefaultCmd = true
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
