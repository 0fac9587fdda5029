package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/types"
	"github.com/helixbox/pubfi-skills/internal/validation"
)

func TestWriteLeaderboard_Rows(t *testing.T) {
	vault := model.VaultSummary{
		Address: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Name:    "Steakhouse USDC",
		ChainID: types.ChainEthereum,
		Network: "Ethereum",
	}
	results := []validation.Candidate{
		{Vault: vault, Deposit: "USDC", Exposures: []string{"USDC", "USDT"}, NetAPYPct: 8.2, Liquidity: 15_000_000},
	}

	var buf bytes.Buffer
	WriteLeaderboard(&buf, "all", results, time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC))
	out := buf.String()

	assert.Contains(t, out, "# Morpho Protocol Leaderboard (Conservative)")
	assert.Contains(t, out, "> Chains: All | Updated: 2026-08-28 12:30 UTC")
	assert.Contains(t, out, "| Rank | Vault | Deposit Asset | Chain | Net APY | Liquidity | Exposure | Link |")

	assert.Contains(t, out, "| 1 | Steakhouse USDC | USDC | Ethereum | 8.20% | $15.0M | USDC, USDT | https://app.morpho.org/ethereum/vault/0x1111111111111111111111111111111111111111 |")
}

func TestWriteLeaderboard_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	WriteLeaderboard(&buf, "base", nil, time.Now())

	assert.Contains(t, buf.String(), "| - | No vaults matched filters | - | - | - | - | - | - |")
}

func TestWriteLeaderboard_NamelessVaultFallsBackToSymbol(t *testing.T) {
	vault := model.VaultSummary{
		Address: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Symbol:  "bareUSDC",
		Network: "Base",
	}
	results := []validation.Candidate{
		{Vault: vault, Deposit: "USDC", NetAPYPct: 5.0, Liquidity: 12_000_000},
	}

	var buf bytes.Buffer
	WriteLeaderboard(&buf, "base", results, time.Now())
	out := buf.String()

	assert.Contains(t, out, "| bareUSDC |")
	// No exposures renders as a dash.
	require.Contains(t, out, "| - | https://app.morpho.org/base/vault/")
}
