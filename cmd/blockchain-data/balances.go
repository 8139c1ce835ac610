package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Enucatl/therocktrading-blockchain-data/internal/cli"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/common"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/ledger"
	"github.com/Enucatl/therocktrading-blockchain-data/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print the final per-currency portfolio balances",
		Long: `Compute running per-currency balances across the whole ledger and
print the state of the portfolio after the last transaction.`,
		RunE: runBalances,
	}

	cmd.Flags().StringP("transactions", "t", "", "Ledger CSV file with columns Id, Date, Currency, Type, Price, Note")

	_ = viper.BindPFlag("balances.transactions", cmd.Flags().Lookup("transactions"))

	return cmd
}

func runBalances(_ *cobra.Command, _ []string) error {
	ledgerPath := viper.GetString("balances.transactions")
	if ledgerPath == "" {
		return fmt.Errorf("%w: --transactions is required", common.ErrMissingConfig)
	}

	entries, err := ledger.Load(ledgerPath)
	if err != nil {
		return common.NewUserError("failed to load ledger", err)
	}

	final := ledger.FinalBalances(entries)
	if len(final) == 0 {
		slog.Info(cli.FormatWarning("Ledger is empty"))
		return nil
	}

	currencies := make([]model.Currency, 0, len(final))
	for c := range final {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	content := ""
	for _, c := range currencies {
		content += fmt.Sprintf("%-5s %s\n", c, final[c].StringFixed(8))
	}

	slog.Info(cli.RenderBox("Final Portfolio Balances", content))
	return nil
}
