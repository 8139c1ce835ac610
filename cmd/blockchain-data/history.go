package main

import (
	"fmt"
	"log/slog"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/cli"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/common"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reconciliation runs",
		Long: `List reconciliation runs recorded with --db, newest first. With
--run, show the on-chain candidates stored for that run instead.`,
		RunE: runHistory,
	}

	cmd.Flags().String("db", "", "SQLite database recorded by reconcile --db")
	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")
	cmd.Flags().Int64("run", 0, "Show stored matches for this run id")

	_ = viper.BindPFlag("history.db", cmd.Flags().Lookup("db"))
	_ = viper.BindPFlag("history.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("history.run", cmd.Flags().Lookup("run"))

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dbPath := viper.GetString("history.db")
	if dbPath == "" {
		return fmt.Errorf("%w: --db is required", common.ErrMissingConfig)
	}

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

	if runID := viper.GetInt64("history.run"); runID > 0 {
		return showMatches(cmd, store, runID)
	}

	runs, err := store.ListRuns(ctx, viper.GetInt("history.limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		slog.Info(cli.FormatWarning("No runs recorded yet"))
		return nil
	}

	content := ""
	for _, r := range runs {
		content += fmt.Sprintf("#%d  %s  %s  entries=%d outbound=%d matched=%d\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.LedgerPath,
			r.EntryCount,
			r.OutboundCount,
			r.MatchedCount)
	}

	slog.Info(cli.RenderBox("Reconciliation Runs", content))
	return nil
}

func showMatches(cmd *cobra.Command, store *storage.SQLiteStorage, runID int64) error {
	matches, err := store.GetMatches(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load matches: %w", err)
	}
	if len(matches) == 0 {
		slog.Info(cli.FormatWarning("No matches stored for this run"))
		return nil
	}

	content := ""
	for _, m := range matches {
		content += fmt.Sprintf("entry %s  %s  %s  value=%s  %s\n",
			m.EntryID,
			m.TransactionHash,
			m.Time.Format("2006-01-02 15:04:05"),
			m.Value,
			m.Recipient)
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("Matches for run #%d", runID), content))
	return nil
}
