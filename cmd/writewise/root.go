package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xostack/writewise"
	"github.com/xostack/writewise/coach"
	"github.com/xostack/writewise/config"
	"github.com/xostack/writewise/credential"
)

// modelService is what the session needs from the model layer.
type modelService interface {
	coach.ModelService
	ProviderName() string
	Close() error
}

// newService builds the model layer; tests replace it.
var newService = func(cfg config.Config, logger zerolog.Logger) (modelService, error) {
	return writewise.NewInvoker(cfg, logger), nil
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:           "writewise",
		Short:         "Practice English writing with model-generated topics and feedback",
		Long:          "writewise asks a language model for a writing topic, lets you write a short paragraph in the terminal, and scores it for grammar, coherence and vocabulary.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, debug)
			for _, key := range cfg.UnknownKeys {
				logger.Warn().Str("key", key).Msg("ignoring unknown configuration key")
			}

			rotator, err := credential.NewRotator(cfg.CredentialPool())
			if err != nil {
				return fmt.Errorf("credential pool for %s: %w", cfg.DefaultProvider, err)
			}

			service, err := newService(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := service.Close(); err != nil {
					logger.Warn().Err(err).Msg("closing model clients")
				}
			}()

			c := coach.New(service, rotator,
				coach.WithLogger(logger),
				coach.WithMetrics(coach.NewMetrics(prometheus.NewRegistry())),
			)
			logger.Debug().Str("provider", service.ProviderName()).Int("credentials", rotator.Size()).Msg("session ready")

			return newSession(c, cmd.InOrStdin(), cmd.OutOrStdout()).run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/writewise/config.toml)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newInitCmd(&configPath))

	return rootCmd
}

// newLogger writes human-readable logs to w. debug wins over the configured level.
func newLogger(w io.Writer, level string, debug bool) zerolog.Logger {
	lvl := zerolog.WarnLevel
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
}
