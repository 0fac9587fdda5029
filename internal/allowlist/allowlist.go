// Package allowlist holds the static per-chain tables of vetted asset
// addresses and the canonical symbol folding used by the eligibility filter.
package allowlist

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/helixbox/pubfi-skills/internal/types"
)

// Chain maps a vetted asset address to its canonical display symbol.
// Assets absent from the map are unknown for filtering purposes.
type Chain map[common.Address]string

// Symbol returns the display symbol for an address and whether it is vetted.
func (c Chain) Symbol(addr common.Address) (string, bool) {
	sym, ok := c[addr]
	return sym, ok
}

// Contains reports whether the address is a vetted asset.
func (c Chain) Contains(addr common.Address) bool {
	_, ok := c[addr]
	return ok
}

// chains is the static allowlist. Address identity via common.Address is
// case-insensitive, so mixed-case API responses hit these entries.
var chains = map[types.ChainID]Chain{
	types.ChainEthereum: {
		common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"): "USDC",
		common.HexToAddress("0xdac17f958d2ee523a2206206994597c13d831ec7"): "USDT",
		common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"): "WETH",
		common.HexToAddress("0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"): "WBTC",
		common.HexToAddress("0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf"): "CBBTC",
		common.HexToAddress("0xbe9895146f7af43049ca1c1ae358b0541ea49704"): "CBETH",
		common.HexToAddress("0x7f39c581f595b53c5cb19bd0b3f8da6c935e2ca0"): "WSTETH",
		common.HexToAddress("0xdc035d45d973e3ec169d2276ddab16f1e407384f"): "USDS",
		common.HexToAddress("0xa3931d71877c0e7a3148cb7eb4463524fec27fbd"): "SUSDS",
	},
	types.ChainBase: {
		common.HexToAddress("0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"): "USDC",
		common.HexToAddress("0xfde4c96c8593536e31f229ea8f37b2ada2699bb2"): "USDT",
		common.HexToAddress("0x4200000000000000000000000000000000000006"): "WETH",
		common.HexToAddress("0x0555e30da8f98308edb960aa94c0db47230d2b9c"): "WBTC",
		common.HexToAddress("0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf"): "CBBTC",
		common.HexToAddress("0x2ae3f1ec7f1f5012cfeab0185bfc7aa3cf0dec22"): "CBETH",
		common.HexToAddress("0xc1cba3fcea344f92d9239c08c0568f6f2f0ee452"): "WSTETH",
		common.HexToAddress("0x820c137fa70c8691f0e44dc420a5e53c168921dc"): "USDS",
		common.HexToAddress("0x5875eee11cf8398102fdad704c9e96607675467a"): "SUSDS",
	},
	types.ChainArbitrum: {
		common.HexToAddress("0xaf88d065e77c8cc2239327c5edb3a432268e5831"): "USDC",
		common.HexToAddress("0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9"): "USDT",
		common.HexToAddress("0x82af49447d8a07e3bd95bd0d56f35241523fbab1"): "WETH",
		common.HexToAddress("0x2f2a2543b76a4166549f7aab2e75bef0aefc5b0f"): "WBTC",
		common.HexToAddress("0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf"): "CBBTC",
		common.HexToAddress("0x1debd73e752beaf79865fd6446b0c970eae7732f"): "CBETH",
		common.HexToAddress("0x5979d7b546e38e414f7e9822514be443a4800529"): "WSTETH",
	},
}

// ForChain returns the allowlist for a chain; an empty Chain when the
// chain has no vetted assets.
func ForChain(id types.ChainID) Chain {
	if c, ok := chains[id]; ok {
		return c
	}
	return Chain{}
}

// depositAllow is the fixed set of acceptable deposit denominations after
// canonical folding.
var depositAllow = map[string]struct{}{
	"USDC": {},
	"USDT": {},
	"ETH":  {},
	"BTC":  {},
}

// CanonicalDeposit folds wrapped variants to their base asset: WETH
// becomes ETH, wrapped and bridged BTC variants become BTC.
func CanonicalDeposit(symbol string) string {
	switch symbol {
	case "WETH":
		return "ETH"
	case "WBTC", "CBBTC":
		return "BTC"
	}
	return symbol
}

// DepositAllowed reports whether a canonical deposit symbol is one of the
// accepted denominations.
func DepositAllowed(canonical string) bool {
	_, ok := depositAllow[canonical]
	return ok
}

// Stablecoin reports whether a canonical symbol is a USD stablecoin; only
// stablecoin vaults may derive liquidity from raw total assets.
func Stablecoin(canonical string) bool {
	return canonical == "USDC" || canonical == "USDT"
}
