package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/auth"
	"github.com/spigell/interview-coach/internal/blob"
	"github.com/spigell/interview-coach/internal/gateway"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/store"
	"github.com/spigell/interview-coach/internal/store/postgres"
)

// env carries what every command needs after bootstrap.
type env struct {
	config *Config
	logger *zap.Logger
	store  store.Gateway
	scores scoring.Strategy
	close  func()
}

// bootstrap loads the config and opens the store. Failures are fatal, as in
// any other CLI entry point.
func bootstrap(ctx context.Context, command string) *env {
	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}
	if config == nil {
		config = &Config{}
	}

	l, err := logger.New(logger.Config{
		JSON:       viper.GetBool("json"),
		Debug:      viper.GetBool("debug"),
		File:       config.Log.File.Path,
		MaxSizeMB:  config.Log.File.MaxSizeMB,
		MaxBackups: config.Log.File.MaxBackups,
		MaxAgeDays: config.Log.File.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	l.Info("starting the interview-coach", zap.String("command", command), zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(*config), "", "  ")
	l.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	gw, closeStore, err := openStore(ctx, config.Store, l)
	if err != nil {
		l.Fatal("opening the store", zap.Error(err), zap.String("driver", config.Store.Driver))
	}

	return &env{
		config: config,
		logger: l,
		store:  gw,
		scores: scoring.New(config.Scoring.Mode, config.Scoring.Fixed, config.Scoring.Seed),
		close: func() {
			closeStore()
			_ = l.Sync()
		},
	}
}

func redacted(c Config) Config {
	mask := func(s *string) {
		if *s != "" {
			*s = "***"
		}
	}
	mask(&c.Store.DSN)
	mask(&c.Store.Token)
	mask(&c.Auth.Secret)
	mask(&c.Blob.Minio.SecretKey)
	return c
}

func openStore(ctx context.Context, cfg StoreConfig, l *zap.Logger) (store.Gateway, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		l.Warn("using the in-memory store", zap.String("hint", "records are lost on exit, set store.driver to postgres or remote"))
		return store.NewMemory(), noop, nil
	case "postgres":
		dsn, err := secrets.Load(secrets.Source{Name: "database dsn", Value: cfg.DSN, File: cfg.DSNFile})
		if err != nil {
			return nil, noop, err
		}
		db, err := postgres.Open(dsn, l.Named("postgres"))
		if err != nil {
			return nil, noop, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				l.Warn("closing postgres", zap.Error(err))
			}
		}, nil
	case "remote":
		token, err := secrets.Load(secrets.Source{Name: "gateway token", Value: cfg.Token, File: cfg.TokenFile})
		if err != nil {
			return nil, noop, fmt.Errorf("%w (set store.token-file or INTERVIEW_COACH_STORE_TOKEN_FILE)", err)
		}
		client, err := gateway.New(gateway.Config{URL: cfg.URL, Token: token, Timeout: cfg.Timeout}, l.Named("gateway"))
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

func openBlobs(ctx context.Context, cfg BlobConfig) (blob.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "local":
		local, err := blob.NewLocal(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "minio":
		minioCfg := cfg.Minio
		key, err := secrets.Load(secrets.Source{Name: "minio secret key", Value: minioCfg.SecretKey, File: cfg.SecretKeyFile})
		if err != nil {
			return nil, err
		}
		minioCfg.SecretKey = key
		remote, err := blob.NewMinio(ctx, minioCfg)
		if err != nil {
			return nil, err
		}
		return remote, nil
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", cfg.Driver)
	}
}

func newValidator(cfg AuthConfig) (auth.Validator, error) {
	var secret string
	if cfg.Mode != auth.ModeGoogle {
		var err error
		secret, err = secrets.Load(secrets.Source{Name: "jwt signing key", Value: cfg.Secret, File: cfg.SecretFile})
		if err != nil {
			return nil, fmt.Errorf("%w (set auth.secret-file or INTERVIEW_COACH_AUTH_SECRET_FILE)", err)
		}
	}
	return auth.New(cfg.Mode, secret, cfg.Audience, cfg.TTL)
}
