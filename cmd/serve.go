package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview coach HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := bootstrap(ctx, "serve")
	defer e.close()

	if e.config.Store.Driver == "remote" {
		e.logger.Fatal("the api server can not use the remote store", zap.String("hint", "set store.driver to memory or postgres"))
	}

	blobs, err := openBlobs(ctx, e.config.Blob)
	if err != nil {
		e.logger.Fatal("opening the blob store", zap.Error(err), zap.String("driver", e.config.Blob.Driver))
	}

	validator, err := newValidator(e.config.Auth)
	if err != nil {
		e.logger.Fatal("configuring token validation", zap.Error(err), zap.String("mode", e.config.Auth.Mode))
	}

	srv, err := server.New(e.config.Server, server.Deps{
		Gateway: e.store,
		Blobs:   blobs,
		Auth:    validator,
		Scores:  e.scores,
		Clock:   clock.Real(),
		Logger:  e.logger.Named("api"),
	})
	if err != nil {
		e.logger.Fatal("creating the api server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		e.logger.Fatal("serving the api", zap.Error(err))
	}
	e.logger.Info("exiting", zap.String("reason", "api server stopped"))
}
