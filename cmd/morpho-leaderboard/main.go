// Package main is the entry point for the Morpho conservative leaderboard,
// a single-shot utility that ranks whitelisted Morpho VaultV2 vaults by net
// APY after resolving their underlying asset exposure.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/helixbox/pubfi-skills/internal/allowlist"
	"github.com/helixbox/pubfi-skills/internal/config"
	"github.com/helixbox/pubfi-skills/internal/exposure"
	"github.com/helixbox/pubfi-skills/internal/fetch"
	"github.com/helixbox/pubfi-skills/internal/rank"
	"github.com/helixbox/pubfi-skills/internal/report"
	"github.com/helixbox/pubfi-skills/internal/types"
	"github.com/helixbox/pubfi-skills/internal/validation"
)

func main() {
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// newRootCmd builds the command. Flag defaults come from the environment,
// so CHAIN=base morpho-leaderboard and morpho-leaderboard --chain base are
// equivalent.
func newRootCmd() *cobra.Command {
	cfg := config.LoadMorpho()

	cmd := &cobra.Command{
		Use:           "morpho-leaderboard",
		Short:         "Print the conservative Morpho vault leaderboard",
		Long:          "Queries the Morpho GraphQL API for VaultV2 vaults, resolves underlying asset exposure through nested adapters, filters to whitelisted vaults with vetted exposure, and prints a Markdown leaderboard ranked by net APY.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Limit = config.ClampLimit(cfg.Limit)
			return run(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Chain, "chain", cfg.Chain, "chain selector: ethereum, base, arbitrum or all")
	cmd.Flags().IntVar(&cfg.Limit, "limit", cfg.Limit, "number of leaderboard rows")
	cmd.Flags().IntVar(&cfg.First, "first", cfg.First, "vault listing page size")
	cmd.Flags().IntVar(&cfg.Skip, "skip", cfg.Skip, "vault listing offset")
	cmd.Flags().IntVar(&cfg.PositionsFirst, "positions-first", cfg.PositionsFirst, "positions requested per market adapter")

	return cmd
}

func run(ctx context.Context, out io.Writer, cfg config.MorphoConfig) error {
	// Configuration errors are the only fatal class; fail before any fetch.
	chainIDs, err := types.ResolveChains(cfg.Chain)
	if err != nil {
		return err
	}

	client := fetch.NewMorphoClient(cfg)
	resolver := exposure.NewResolver(client, cfg.PositionsFirst)
	opts := validation.DefaultOptions()

	var candidates []validation.Candidate
	for _, chainID := range chainIDs {
		vaults, err := client.FetchVaults(ctx, chainID)
		if err != nil {
			return fmt.Errorf("fetching vaults for chain %d: %w", chainID, err)
		}
		logrus.Debugf("Fetched %d vaults on chain %d", len(vaults), chainID)

		allow := allowlist.ForChain(chainID)
		candidates = append(candidates, validation.Qualify(ctx, vaults, allow, resolver, opts)...)
	}

	ranked := rank.ByNetAPY(candidates, cfg.Limit)
	report.WriteLeaderboard(out, cfg.Chain, ranked, time.Now())
	return nil
}

// setupLogging sends logs to stderr so the report on stdout stays clean.
func setupLogging() {
	logrus.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(config.GetEnvOrDefault("LOG_LEVEL", "warning")); err == nil {
		logrus.SetLevel(level)
	}
}
