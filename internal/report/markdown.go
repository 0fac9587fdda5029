// Package report renders the command outputs: the Markdown leaderboard
// and the plain-text portfolio summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/helixbox/pubfi-skills/internal/validation"
)

// vaultURL is the app link template for a leaderboard row.
const vaultURL = "https://app.morpho.org/%s/vault/%s"

// WriteLeaderboard renders the conservative leaderboard as a Markdown
// table. chainLabel is the CHAIN selector the run was invoked with.
func WriteLeaderboard(w io.Writer, chainLabel string, results []validation.Candidate, now time.Time) {
	fmt.Fprintln(w, "# Morpho Protocol Leaderboard (Conservative)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "> Top Vaults by Net APY")
	fmt.Fprintf(w, "> Chains: %s | Updated: %s\n", titleCase(chainLabel), now.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintln(w, "> Filters: Liquidity >$10M USD | whitelisted only | no warnings")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Top Vaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Rank | Vault | Deposit Asset | Chain | Net APY | Liquidity | Exposure | Link |")
	fmt.Fprintln(w, "|------|-------|---------------|-------|---------|-----------|----------|------|")

	if len(results) == 0 {
		fmt.Fprintln(w, "| - | No vaults matched filters | - | - | - | - | - | - |")
		return
	}

	for i, r := range results {
		link := fmt.Sprintf(vaultURL, strings.ToLower(r.Vault.Network), r.Vault.Address.Hex())
		exposures := "-"
		if len(r.Exposures) > 0 {
			exposures = strings.Join(r.Exposures, ", ")
		}
		fmt.Fprintf(w, "| %d | %s | %s | %s | %.2f%% | $%.1fM | %s | %s |\n",
			i+1, r.Vault.DisplayName(), r.Deposit, r.Vault.Network,
			r.NetAPYPct, r.Liquidity/1e6, exposures, link)
	}
}

// titleCase capitalizes the selector for the report header.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
