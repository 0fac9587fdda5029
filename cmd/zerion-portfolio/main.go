// Package main is the entry point for the Zerion portfolio summary, a
// single-shot utility that fetches a wallet's positions and prints an
// aggregated plain-text report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/helixbox/pubfi-skills/internal/config"
	"github.com/helixbox/pubfi-skills/internal/fetch"
	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/portfolio"
	"github.com/helixbox/pubfi-skills/internal/report"
)

func main() {
	logrus.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "warning")); err == nil {
		logrus.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		var apiErr *fetch.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			fmt.Fprintln(os.Stderr, "Invalid API key. Check your ZERION_API_KEY.")
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		onlyDeFi bool
		currency string
	)

	cmd := &cobra.Command{
		Use:           "zerion-portfolio <address>",
		Short:         "Print a wallet portfolio summary from the Zerion API",
		Long:          "Fetches a wallet's asset and DeFi protocol positions from the Zerion API and prints an aggregated summary: distribution across wallet and protocols, top holdings and total value. Requires ZERION_API_KEY.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0], onlyDeFi, currency)
		},
	}

	cmd.Flags().BoolVar(&onlyDeFi, "only-defi", false, "only show DeFi protocol positions")
	cmd.Flags().StringVar(&currency, "currency", "usd", "currency for position values")

	return cmd
}

func run(ctx context.Context, out io.Writer, address string, onlyDeFi bool, currency string) error {
	cfg := config.LoadZerion()
	if cfg.APIKey == "" {
		return errors.New("ZERION_API_KEY environment variable not set; get a key at https://developers.zerion.io/")
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid wallet address %q", address)
	}

	client := fetch.NewZerionClient(cfg)

	// The API separates wallet assets from DeFi protocol positions; both
	// are needed for a complete picture unless DeFi-only was requested.
	var positions []model.Position
	if onlyDeFi {
		defi, err := client.Positions(ctx, address, fetch.PositionsQuery{Currency: currency, OnlyDeFi: true})
		if err != nil {
			return err
		}
		positions = defi
	} else {
		wallet, err := client.Positions(ctx, address, fetch.PositionsQuery{Currency: currency})
		if err != nil {
			return err
		}
		defi, err := client.Positions(ctx, address, fetch.PositionsQuery{Currency: currency, OnlyDeFi: true})
		if err != nil {
			return err
		}
		positions = append(wallet, defi...)
	}

	report.WritePortfolio(out, address, portfolio.Summarize(positions))
	return nil
}
