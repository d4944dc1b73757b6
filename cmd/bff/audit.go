package main

import (
	"fmt"
	"strconv"
	"time"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/audit/retention"
	"quotes-hq/bff/pkg/audit/storage"
	"quotes-hq/bff/pkg/cli"
	"quotes-hq/bff/pkg/config"

	"github.com/spf13/cobra"
)

var auditFlags struct {
	limit  int
	output string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and maintain the audit trail",
	Long: `Inspect and maintain the audit trail of forwarded creates and deletes.

The commands open the storage configured in the audit section directly; they
can run next to a live server when the sqlite driver is used.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit records, newest first",
	Long: `List recent audit records, newest first.

Examples:
  bff audit list --limit 20
  bff audit list --output csv > audit.csv`,
	RunE: listAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit records older than audit.retention_days",
	RunE:  pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd, auditPruneCmd)

	auditListCmd.Flags().IntVarP(&auditFlags.limit, "limit", "n", 50, "maximum number of records")
	auditListCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// auditTable renders records as rows.
type auditTable []*audit.Record

func (t auditTable) Header() []string {
	return []string{"CREATED", "ACTION", "QUOTE_ID", "AUTHOR", "STATUS", "REQUEST_ID"}
}

func (t auditTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		quoteID := ""
		if r.QuoteID != 0 {
			quoteID = strconv.Itoa(r.QuoteID)
		}
		rows = append(rows, []string{
			r.Created.UTC().Format(time.RFC3339),
			r.Action,
			quoteID,
			r.Author,
			strconv.Itoa(r.Status),
			r.RequestID,
		})
	}
	return rows
}

func openAuditStorage() (audit.Storage, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Audit.Enabled {
		return nil, nil, cli.NewConfigError("audit.enabled", "the audit trail is disabled")
	}

	store, err := storage.New(&cfg.Audit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit storage: %w", err)
	}
	return store, cfg, nil
}

func listAudit(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(auditFlags.output)
	if err != nil {
		return err
	}
	if auditFlags.limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", auditFlags.limit)
	}

	store, _, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), auditFlags.limit)
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}
	if records == nil {
		records = []*audit.Record{}
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), auditTable(records))
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	store, cfg, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Audit.RetentionDays <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "retention is disabled; nothing to prune")
		return nil
	}

	pruner := retention.NewPruner(store, retention.Config{RetentionDays: cfg.Audit.RetentionDays}, nil)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d records older than %d days\n", deleted, cfg.Audit.RetentionDays)
	return nil
}
