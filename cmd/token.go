package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/auth"
	"github.com/spigell/interview-coach/internal/secrets"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the configured user",
	Run: func(_ *cobra.Command, _ []string) {
		issueToken()
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func issueToken() {
	e := bootstrap(context.Background(), "token")
	defer e.close()

	cfg := e.config.Auth
	if cfg.Mode == auth.ModeGoogle {
		e.logger.Fatal("tokens are issued by google in this auth mode", zap.String("mode", cfg.Mode))
	}

	secret, err := secrets.Load(secrets.Source{Name: "jwt signing key", Value: cfg.Secret, File: cfg.SecretFile})
	if err != nil {
		e.logger.Fatal("loading the signing key", zap.Error(err))
	}

	issuer, err := auth.NewJWT(secret, cfg.TTL)
	if err != nil {
		e.logger.Fatal("creating the token issuer", zap.Error(err))
	}

	token, err := issuer.Issue(auth.Identity{
		UserID: e.config.User.ID,
		Email:  e.config.User.Email,
		Name:   e.config.User.Name,
	})
	if err != nil {
		e.logger.Fatal("issuing a token", zap.Error(err))
	}

	fmt.Println(token)
}
