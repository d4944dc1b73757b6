package main

import (
	"fmt"
	"strconv"

	"quotes-hq/bff/pkg/cli"

	"github.com/spf13/cobra"
)

var validateFlags struct {
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and print the effective settings",
	Long: `Load the configuration the way "bff run" does, validate it and print the
effective upstreams, timeouts and audit settings.

Missing upstream URLs are reported as warnings: the server starts without
them but its startup probe stays down.

Examples:
  # Check the environment of a deployment
  bff validate

  # Machine-readable
  bff validate --config config.yaml --output json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// effectiveConfig is the subset of the configuration operators check
// before a rollout.
type effectiveConfig struct {
	ListenAddress    string `json:"listen_address"`
	QuotesURL        string `json:"quotes_url"`
	ReferenceURL     string `json:"reference_url"`
	FaultyURL        string `json:"faulty_url"`
	ReadTimeoutMs    int    `json:"read_timeout_ms"`
	WriteTimeoutMs   int    `json:"write_timeout_ms"`
	ConnectTimeoutMs int    `json:"connect_timeout_ms"`
	AuthMode         string `json:"auth_mode"`
	CacheTokens      bool   `json:"cache_tokens"`
	AuditEnabled     bool   `json:"audit_enabled"`
	AuditDriver      string `json:"audit_driver,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (e effectiveConfig) Header() []string {
	return []string{"SETTING", "VALUE"}
}

func (e effectiveConfig) Rows() [][]string {
	rows := [][]string{
		{"listen_address", e.ListenAddress},
		{"quotes_url", e.QuotesURL},
		{"reference_url", e.ReferenceURL},
		{"faulty_url", e.FaultyURL},
		{"read_timeout_ms", strconv.Itoa(e.ReadTimeoutMs)},
		{"write_timeout_ms", strconv.Itoa(e.WriteTimeoutMs)},
		{"connect_timeout_ms", strconv.Itoa(e.ConnectTimeoutMs)},
		{"auth_mode", e.AuthMode},
		{"cache_tokens", strconv.FormatBool(e.CacheTokens)},
		{"audit_enabled", strconv.FormatBool(e.AuditEnabled)},
	}
	if e.AuditEnabled {
		rows = append(rows, []string{"audit_driver", e.AuditDriver})
	}
	return rows
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result := effectiveConfig{
		ListenAddress:    cfg.Server.ListenAddress,
		QuotesURL:        cfg.Upstreams.QuotesURL,
		ReferenceURL:     cfg.Upstreams.ReferenceURL,
		FaultyURL:        cfg.Upstreams.FaultyURL,
		ReadTimeoutMs:    cfg.Upstreams.ReadTimeoutMs,
		WriteTimeoutMs:   cfg.Upstreams.WriteTimeoutMs,
		ConnectTimeoutMs: cfg.Upstreams.ConnectTimeoutMs,
		AuthMode:         cfg.Auth.Mode,
		CacheTokens:      cfg.Auth.CacheTokens,
		AuditEnabled:     cfg.Audit.Enabled,
	}
	if cfg.Audit.Enabled {
		result.AuditDriver = cfg.Audit.Driver
	}

	if cfg.Upstreams.QuotesURL == "" {
		result.Warnings = append(result.Warnings, "quotes_url is not set; the startup gate will stay down")
	}
	if cfg.Upstreams.ReferenceURL == "" {
		result.Warnings = append(result.Warnings, "reference_url is not set; the startup gate will stay down")
	}
	if cfg.Upstreams.FaultyURL == "" {
		result.Warnings = append(result.Warnings, "faulty_url is not set; GET /faulty will fail")
	}

	if format != cli.FormatJSON {
		for _, w := range result.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}
