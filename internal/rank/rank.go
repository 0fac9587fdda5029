// Package rank orders qualifying vaults for the leaderboard.
package rank

import (
	"sort"

	"github.com/helixbox/pubfi-skills/internal/validation"
)

// ByNetAPY sorts candidates by descending net APY percentage, breaking
// ties by descending liquidity, and truncates to the top limit entries.
// The input slice is not modified.
func ByNetAPY(candidates []validation.Candidate, limit int) []validation.Candidate {
	ranked := make([]validation.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].NetAPYPct != ranked[j].NetAPYPct {
			return ranked[i].NetAPYPct > ranked[j].NetAPYPct
		}
		return ranked[i].Liquidity > ranked[j].Liquidity
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
