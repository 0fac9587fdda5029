// Package validation decides which vaults qualify for the conservative
// leaderboard.
package validation

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/helixbox/pubfi-skills/internal/allowlist"
	"github.com/helixbox/pubfi-skills/internal/exposure"
	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/types"
)

// Options holds configuration for the eligibility check
type Options struct {
	// MinLiquidity is the minimum USD liquidity a vault must hold
	MinLiquidity float64
}

// DefaultOptions returns the conservative leaderboard thresholds
func DefaultOptions() Options {
	return Options{
		MinLiquidity: 10_000_000,
	}
}

// Candidate is a qualifying vault together with the fields the ranker and
// reporter consume.
type Candidate struct {
	Vault model.VaultSummary

	// Deposit is the canonical deposit symbol after synonym folding
	Deposit string

	// Exposures is the sorted unique list of exposure symbols
	Exposures []string

	// NetAPYPct is the net APY expressed as a percentage
	NetAPYPct float64

	// Liquidity is the USD liquidity figure used for ranking
	Liquidity float64
}

// ExposureResolver is the part of the exposure package the filter needs.
type ExposureResolver interface {
	Resolve(ctx context.Context, address common.Address, chainID types.ChainID) exposure.Result
}

// Qualify evaluates every vault against the eligibility chain and returns
// the candidates in input order.
func Qualify(ctx context.Context, vaults []model.VaultSummary, allow allowlist.Chain, resolver ExposureResolver, opts Options) []Candidate {
	candidates := make([]Candidate, 0, len(vaults))
	for _, v := range vaults {
		if c, ok := Evaluate(ctx, v, allow, resolver, opts); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// Evaluate applies the eligibility predicates in order, fail-fast. The
// exposure resolution runs last so rejected vaults never trigger adapter
// queries.
func Evaluate(ctx context.Context, v model.VaultSummary, allow allowlist.Chain, resolver ExposureResolver, opts Options) (Candidate, bool) {
	if !v.Whitelisted {
		return Candidate{}, false
	}
	if len(v.Warnings) > 0 {
		return Candidate{}, false
	}

	depositSymbol, ok := allow.Symbol(v.Asset.Address)
	if !ok {
		return Candidate{}, false
	}
	deposit := allowlist.CanonicalDeposit(depositSymbol)
	if !allowlist.DepositAllowed(deposit) {
		return Candidate{}, false
	}

	liquidity, ok := liquidityUSD(v, deposit)
	if !ok || liquidity < opts.MinLiquidity {
		return Candidate{}, false
	}

	if v.NetAPY == nil || *v.NetAPY <= 0 {
		return Candidate{}, false
	}

	result := resolver.Resolve(ctx, v.Address, v.ChainID)
	if result.Unknown {
		logrus.WithFields(logrus.Fields{
			"vault": v.Address.Hex(),
			"chain": v.ChainID,
		}).Debug("Excluded vault with unresolved exposure")
		return Candidate{}, false
	}
	for addr := range result.Assets {
		if !allow.Contains(addr) {
			logrus.WithFields(logrus.Fields{
				"vault": v.Address.Hex(),
				"asset": addr.Hex(),
			}).Debug("Excluded vault exposed to non-allowlisted asset")
			return Candidate{}, false
		}
	}

	return Candidate{
		Vault:     v,
		Deposit:   deposit,
		Exposures: result.Symbols(allow.Symbol),
		NetAPYPct: *v.NetAPY * 100,
		Liquidity: liquidity,
	}, true
}

// liquidityUSD returns the vault's liquidity figure. The USD-denominated
// total is preferred; stablecoin vaults may derive it from the raw total
// divided by 10^decimals. Other vaults without a USD total have no
// derivable figure.
func liquidityUSD(v model.VaultSummary, deposit string) (float64, bool) {
	if v.TotalAssetsUsd != nil {
		return *v.TotalAssetsUsd, true
	}
	if allowlist.Stablecoin(deposit) && v.TotalAssets != nil {
		return v.TotalAssets.Shift(-v.Asset.Decimals).InexactFloat64(), true
	}
	return 0, false
}
