// Command threadsctl is a command-line client for the Threads API built on
// the wrapper library. It covers publishing (text, single media, carousel),
// post and profile retrieval, reply moderation, publishing limits and
// insights.
//
// Configuration comes from a YAML file (--config) or environment
// variables; THREADS_ACCESS_TOKEN is the only required setting.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
	"github.com/spf13/cobra"

	threads "github.com/jamesprial/go-threads-api-wrapper"
)

type appConfig struct {
	AccessToken  string        `yaml:"access_token" env:"THREADS_ACCESS_TOKEN"`
	UserID       string        `yaml:"user_id" env:"THREADS_USER_ID" env-default:"me"`
	BaseURL      string        `yaml:"base_url" env:"THREADS_BASE_URL"`
	PollInterval time.Duration `yaml:"poll_interval" env:"THREADS_POLL_INTERVAL"`
	MaxWait      time.Duration `yaml:"max_wait" env:"THREADS_MAX_WAIT"`
}

type app struct {
	cfg    appConfig
	client *threads.Client
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		a          app
	)

	root := &cobra.Command{
		Use:           "threadsctl",
		Short:         "Publish to and read from the Threads API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)

			if configPath != "" {
				if err := cleanenv.ReadConfig(configPath, &a.cfg); err != nil {
					return fmt.Errorf("reading config %s: %w", configPath, err)
				}
			} else if err := cleanenv.ReadEnv(&a.cfg); err != nil {
				return fmt.Errorf("reading environment: %w", err)
			}
			if a.cfg.AccessToken == "" {
				return fmt.Errorf("access token is required: set THREADS_ACCESS_TOKEN or access_token in the config file")
			}

			client, err := threads.NewClient(&threads.Config{
				AccessToken:  a.cfg.AccessToken,
				BaseURL:      a.cfg.BaseURL,
				Logger:       logger,
				PollInterval: a.cfg.PollInterval,
				MaxWait:      a.cfg.MaxWait,
			})
			if err != nil {
				return err
			}

			a.client = client
			a.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPostCmd(&a),
		newCarouselCmd(&a),
		newDeleteCmd(&a),
		newProfileCmd(&a),
		newPostsCmd(&a),
		newRepliesCmd(&a),
		newLimitsCmd(&a),
		newInsightsCmd(&a),
	)
	return root
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	return slog.New(slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler())
}
