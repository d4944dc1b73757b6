package main

import (
	"fmt"

	"quotes-hq/bff/pkg/cli"
	"quotes-hq/bff/pkg/server"

	"github.com/spf13/cobra"
)

var runFlags struct {
	listenAddress string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the BFF server",
	Long: `Start the BFF server.

Before accepting requests the server checks that the quotes and reference
URLs are configured and fetches the reference metadata once. The startup
probe stays down until that succeeds; requests are served either way.

Examples:
  # Start with defaults and environment overrides
  quotes_url=https://quotes.example.run.app bff run

  # Start with a config file; log level changes apply without restart
  bff run --config /etc/bff/config.yaml

  # Override listen address
  bff run --listen 0.0.0.0:9090

  # Validate config without starting the server
  bff run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload the config file on change")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	opts := server.Options{
		Logger:    logger.Slog(),
		Logging:   logger,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	}
	if runFlags.watch {
		opts.ConfigPath = cfgFile
	}

	srv, err := server.New(cfg, opts)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
