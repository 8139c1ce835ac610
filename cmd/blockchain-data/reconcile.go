package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/blockchair"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/cli"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/common"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/ledger"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/matcher"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/report"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match outbound ledger entries to on-chain transactions",
		Long: `Load the transaction ledger, compute running per-currency balances,
and look up every withdrawal and ATM payment on the corresponding chain
through the Blockchair transaction index. The merged result is written as
CSV; unmatched entries keep their row with empty on-chain fields.`,
		RunE: runReconcile,
	}

	cmd.Flags().StringP("transactions", "t", "", "Ledger CSV file with columns Id, Date, Currency, Type, Price, Note")
	cmd.Flags().String("blockchair-api-key", "", "Blockchair API key")
	cmd.Flags().StringP("output", "o", "", "Output CSV file for the merged result")
	cmd.Flags().String("db", "", "Optional SQLite database recording run history")
	cmd.Flags().Bool("dry-run", false, "Match without writing the output file")

	// Bind to viper
	_ = viper.BindPFlag("reconcile.transactions", cmd.Flags().Lookup("transactions"))
	_ = viper.BindPFlag("reconcile.api_key", cmd.Flags().Lookup("blockchair-api-key"))
	_ = viper.BindPFlag("reconcile.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("reconcile.db", cmd.Flags().Lookup("db"))
	_ = viper.BindPFlag("reconcile.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	startedAt := time.Now()

	ledgerPath := viper.GetString("reconcile.transactions")
	if ledgerPath == "" {
		return fmt.Errorf("%w: --transactions is required", common.ErrMissingConfig)
	}
	outputPath := viper.GetString("reconcile.output")
	dryRun := viper.GetBool("reconcile.dry_run")
	if outputPath == "" && !dryRun {
		return fmt.Errorf("%w: --output is required", common.ErrMissingConfig)
	}

	entries, err := ledger.Load(ledgerPath)
	if err != nil {
		return common.NewUserError("failed to load ledger", err)
	}
	entries = ledger.ComputeRunningBalances(entries)
	outbound := ledger.SelectOutbound(entries)

	slog.Info(cli.FormatTitle("Reconciling ledger against the blockchain"))
	slog.Info("Loaded ledger",
		"file", ledgerPath,
		"entries", len(entries),
		"outbound", len(outbound))

	index := blockchair.NewClient(viper.GetString("reconcile.api_key"))
	m := matcher.New(index)

	bar := newProgressBar(len(outbound))
	results, err := m.Reconcile(ctx, outbound, func() {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	matched := storage.CountMatched(results)
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Matched %d of %d outbound entries", matched, len(outbound))))

	if dbPath := viper.GetString("reconcile.db"); dbPath != "" {
		if err := saveRun(cmd, dbPath, storage.Run{
			StartedAt:     startedAt,
			LedgerPath:    ledgerPath,
			EntryCount:    len(entries),
			OutboundCount: len(outbound),
			MatchedCount:  matched,
		}, results); err != nil {
			return err
		}
	}

	if dryRun {
		slog.Info(cli.FormatWarning("Dry run mode - not writing output file"))
		displayResultSummary(outbound, results)
		return nil
	}

	if err := report.WriteFile(outputPath, outbound, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	slog.Info(cli.FormatSuccess("Wrote merged reconciliation table"), "file", outputPath)
	displayResultSummary(outbound, results)

	return nil
}

func saveRun(cmd *cobra.Command, dbPath string, run storage.Run, results []model.MatchResult) error {
	ctx := cmd.Context()

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	runID, err := store.SaveRun(ctx, run, results)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	slog.Info("Saved run history", "db", dbPath, "run_id", runID)
	return nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Matching transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func displayResultSummary(outbound []model.LedgerEntry, results []model.MatchResult) {
	if len(outbound) == 0 {
		return
	}

	byID := make(map[string]model.MatchResult, len(results))
	for _, r := range results {
		byID[r.EntryID] = r
	}

	unmatched := 0
	ambiguous := 0
	for _, entry := range outbound {
		switch n := len(byID[entry.ID].Transactions); {
		case n == 0:
			unmatched++
		case n > 1:
			ambiguous++
		}
	}

	content := fmt.Sprintf(`Outbound entries: %d
Matched: %d
Unmatched: %d
Ambiguous (multiple candidates): %d
`, len(outbound), len(outbound)-unmatched, unmatched, ambiguous)

	slog.Info(cli.RenderBox("Reconciliation Summary", content))
}
