package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"marketScope/internal/amount"
	"marketScope/internal/config"
	"marketScope/internal/distribution"
	"marketScope/internal/indexer"
	"marketScope/internal/model"
	"marketScope/internal/withdrawals"
)

func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover <user-address>",
		Short: "List unclaimed admin liquidity, prize pools and LP rewards for a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscover,
	}
	addChainFlags(cmd)
	addSourceFlags(cmd)
	return cmd
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <market-id>",
		Short: "Preview the winners a batch distribution would pay",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreview,
	}
	addChainFlags(cmd)
	addSourceFlags(cmd)
	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	user, err := indexer.ParseAddress(args[0])
	if err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	report, err := withdrawals.NewScanner(b.reader, cfg.ScanBatchSize, logger).Scan(ctx, user)
	if err != nil {
		return err
	}
	decimals, err := b.reader.TokenDecimals(ctx)
	if err != nil {
		decimals = amount.DefaultDecimals
	}

	return printWithdrawals(cmd.OutOrStdout(), report, decimals)
}

func runPreview(cmd *cobra.Command, args []string) error {
	marketID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid market id %q", args[0])
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	preview, err := distribution.NewPreviewer(b.reader, b.source, logger).Preview(ctx, marketID)
	if err != nil {
		return err
	}

	return printPreview(cmd.OutOrStdout(), preview)
}

func printWithdrawals(out io.Writer, report model.WithdrawalReport, decimals uint8) error {
	table := tablewriter.NewWriter(out)
	table.Header("Market", "Type", "Amount", "Description")

	groups := [][]model.WithdrawalCandidate{report.AdminLiquidity, report.PrizePool, report.LPRewards}
	for _, group := range groups {
		for _, c := range group {
			err := table.Append(
				fmt.Sprintf("#%d", c.MarketID),
				string(c.Type),
				amount.Format(c.Amount, decimals),
				c.Description,
			)
			if err != nil {
				return fmt.Errorf("append row: %w", err)
			}
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	_, err := fmt.Fprintf(out, "total: %s across %d withdrawals\n", amount.Format(report.Total, decimals), report.TotalCount)
	return err
}

func printPreview(out io.Writer, preview model.DistributionPreview) error {
	if preview.Message != "" {
		if _, err := fmt.Fprintln(out, preview.Message); err != nil {
			return err
		}
	}
	if len(preview.Recipients) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Recipient", "Amount")
	for i, recipient := range preview.Recipients {
		if err := table.Append(recipient, preview.Amounts[i]); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	_, err := fmt.Fprintf(out, "%d of %d participants eligible\n", preview.EligibleCount, preview.TotalParticipants)
	return err
}
