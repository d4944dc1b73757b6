package main

import (
	"time"

	"quotes-hq/bff/pkg/cli"
	"quotes-hq/bff/pkg/services"
	"quotes-hq/bff/pkg/services/faulty"
	"quotes-hq/bff/pkg/services/reference"

	"github.com/spf13/cobra"
)

var serviceFlags struct {
	listenAddress string
	delay         time.Duration
	failureRatio  float64
}

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Run the reference data service",
	Long: `Run the reference data service.

It answers GET /metadata with the project, zone and instance of the machine
it runs on ("unknown" off Google Cloud) and GET /start with a readiness
message. services.reference.delay slows /metadata down for timeout tests.`,
	RunE: runReference,
}

var faultyCmd = &cobra.Command{
	Use:   "faulty",
	Short: "Run the faulty service",
	Long: `Run the faulty service.

GET / answers "Working as intended" after services.faulty.delay, or 503 for
a services.faulty.failure_ratio share of requests.

Examples:
  # Fail every third request after two seconds
  bff faulty --delay 2s --failure-ratio 0.33`,
	RunE: runFaulty,
}

func init() {
	rootCmd.AddCommand(referenceCmd, faultyCmd)

	for _, cmd := range []*cobra.Command{referenceCmd, faultyCmd} {
		cmd.Flags().StringVarP(&serviceFlags.listenAddress, "listen", "l", "", "override listen address")
		cmd.Flags().DurationVar(&serviceFlags.delay, "delay", 0, "override response delay (e.g. 1500ms)")
	}
	faultyCmd.Flags().Float64Var(&serviceFlags.failureRatio, "failure-ratio", 0, "override share of requests answered with 503 (0..1)")
}

func runReference(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svcCfg := cfg.Services.Reference
	if err := applyServiceFlags(cmd, &svcCfg.ListenAddress, &svcCfg.Delay); err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	svc := reference.NewService(&svcCfg, reference.NewMetadataResolver(nil, logger.Slog()), logger.Slog())

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if err := services.Serve(ctx, "reference", svcCfg.ListenAddress, svc.Handler(), logger.Slog()); err != nil {
		return cli.NewCommandError("reference", err)
	}
	return nil
}

func runFaulty(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svcCfg := cfg.Services.Faulty
	if err := applyServiceFlags(cmd, &svcCfg.ListenAddress, &svcCfg.Delay); err != nil {
		return err
	}
	if cmd.Flags().Changed("failure-ratio") {
		if serviceFlags.failureRatio < 0 || serviceFlags.failureRatio > 1 {
			return cli.NewConfigError("failure-ratio", "must be between 0 and 1")
		}
		svcCfg.FailureRatio = serviceFlags.failureRatio
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	svc := faulty.NewService(&svcCfg, logger.Slog())

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if err := services.Serve(ctx, "faulty", svcCfg.ListenAddress, svc.Handler(), logger.Slog()); err != nil {
		return cli.NewCommandError("faulty", err)
	}
	return nil
}

func applyServiceFlags(cmd *cobra.Command, listenAddress *string, delay *time.Duration) error {
	if serviceFlags.listenAddress != "" {
		*listenAddress = serviceFlags.listenAddress
	}
	if cmd.Flags().Changed("delay") {
		if serviceFlags.delay < 0 {
			return cli.NewConfigError("delay", "must not be negative")
		}
		*delay = serviceFlags.delay
	}
	return nil
}
