package main

import (
	"context"
	"fmt"
	"os"

	"quotes-hq/bff/pkg/cli"
	"quotes-hq/bff/pkg/config"
	"quotes-hq/bff/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "bff",
	Short: "Quotes BFF - authenticated proxy for the quotes services",
	Long: `The quotes BFF sits between the browser and the quotes, reference and
faulty services. Every outbound call carries an identity token minted for the
exact URL being called, and every call is bounded by socket read and write
timeouts.

Configuration comes from an optional YAML file and the environment
(quotes_url, reference_url, faulty_url, read_timeout, write_timeout and
BFF_SECTION_FIELD overrides).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code of its error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig reads the configuration and stores it process-wide so the
// config watcher can diff reloads against it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		field := cfgFile
		if field == "" {
			field = "environment"
		}
		return nil, &cli.ConfigError{Field: field, Message: err.Error()}
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}

	config.SetConfig(cfg)
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:        cfg.Telemetry.Logging.Level,
		Format:       cfg.Telemetry.Logging.Format,
		AddSource:    cfg.Telemetry.Logging.AddSource,
		RedactTokens: cfg.Telemetry.Logging.RedactTokens,
		Writer:       cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()
	return logger, nil
}
