package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interview-coach/internal/blob"
	"github.com/spigell/interview-coach/internal/chatbot"
	"github.com/spigell/interview-coach/internal/livemock"
	"github.com/spigell/interview-coach/internal/server"
	"github.com/spigell/interview-coach/internal/verification"
)

const (
	app       = "interview-coach"
	envPrefix = "INTERVIEW_COACH"
)

type Config struct {
	User         UserConfig         `mapstructure:"user"`
	Store        StoreConfig        `mapstructure:"store"`
	Blob         BlobConfig         `mapstructure:"blob"`
	Server       server.Config      `mapstructure:"server"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Verification VerificationConfig `mapstructure:"verification"`
	Chatbot      ChatbotConfig      `mapstructure:"chatbot"`
	LiveMock     LiveMockConfig     `mapstructure:"livemock"`
	Speech       SpeechConfig       `mapstructure:"speech"`
	Media        MediaConfig        `mapstructure:"media"`
	Scoring      ScoringConfig      `mapstructure:"scoring"`
	Log          LogConfig          `mapstructure:"log"`
}

// UserConfig is the identity the terminal commands act as.
type UserConfig struct {
	ID    string `mapstructure:"id"`
	Email string `mapstructure:"email"`
	Name  string `mapstructure:"name"`
}

type StoreConfig struct {
	// Driver is memory, postgres or remote.
	Driver    string        `mapstructure:"driver"`
	DSN       string        `mapstructure:"dsn"`
	DSNFile   string        `mapstructure:"dsn-file"`
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type BlobConfig struct {
	// Driver is local or minio.
	Driver        string           `mapstructure:"driver"`
	Dir           string           `mapstructure:"dir"`
	Minio         blob.MinioConfig `mapstructure:"minio"`
	SecretKeyFile string           `mapstructure:"secret-key-file"`
}

type AuthConfig struct {
	// Mode is jwt or google.
	Mode       string        `mapstructure:"mode"`
	Secret     string        `mapstructure:"secret"`
	SecretFile string        `mapstructure:"secret-file"`
	Audience   string        `mapstructure:"audience"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type VerificationConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type ChatbotConfig struct {
	Inactivity      time.Duration `mapstructure:"inactivity"`
	TransitionDelay time.Duration `mapstructure:"transition-delay"`
}

type LiveMockConfig struct {
	Questions  int           `mapstructure:"questions"`
	FrameDelay time.Duration `mapstructure:"frame-delay"`
}

type SpeechConfig struct {
	// URL of a streaming recognizer. Answers are typed when it is empty.
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type MediaConfig struct {
	Device string `mapstructure:"device"`
}

type ScoringConfig struct {
	// Mode is random or fixed.
	Mode  string `mapstructure:"mode"`
	Fixed int    `mapstructure:"fixed"`
	Seed  uint64 `mapstructure:"seed"`
}

type LogConfig struct {
	File LogFileConfig `mapstructure:"file"`
}

type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-coach verifies a resume against a target role and runs practice interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("user.id", "local")
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("blob.driver", "local")
	viper.SetDefault("blob.dir", "data/blobs")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.rate.requests", 100)
	viper.SetDefault("server.rate.window", time.Minute)
	viper.SetDefault("auth.mode", "jwt")
	viper.SetDefault("auth.ttl", 24*time.Hour)
	viper.SetDefault("verification.debounce", verification.DefaultDebounce)
	viper.SetDefault("chatbot.inactivity", chatbot.DefaultInactivity)
	viper.SetDefault("chatbot.transition-delay", chatbot.DefaultTransition)
	viper.SetDefault("livemock.questions", livemock.DefaultQuestionCount)
	viper.SetDefault("livemock.frame-delay", livemock.DefaultFrameDelay)
	viper.SetDefault("media.device", "/dev/video0")
	viper.SetDefault("scoring.mode", "fixed")
	viper.SetDefault("scoring.fixed", 75)

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{
		"user.email", "user.name",
		"store.dsn", "store.dsn-file", "store.url", "store.token", "store.token-file",
		"blob.minio.endpoint", "blob.minio.access_key", "blob.minio.secret_key", "blob.minio.bucket", "blob.secret-key-file",
		"auth.secret", "auth.secret-file", "auth.audience",
		"speech.url", "speech.token-file",
		"log.file.path",
	} {
		viper.SetDefault(key, "")
	}
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Only an explicitly requested config file is mandatory.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
