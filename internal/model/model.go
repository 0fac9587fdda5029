// Package model defines the core data structures shared by the pubfi skills.
package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/helixbox/pubfi-skills/internal/types"
)

// Asset describes a deposit or market asset as reported by the Morpho API.
type Asset struct {
	// Address is the on-chain token address; the zero address means the
	// API did not report one.
	Address common.Address

	// Symbol is the token symbol as reported by the API, not the
	// canonical symbol used for filtering.
	Symbol string

	// Decimals is the token's decimal precision
	Decimals int32
}

// Warning is a risk marker attached to a vault by the Morpho curators.
type Warning struct {
	Type  string
	Level string
}

// VaultSummary is one VaultV2 record from the paginated vault listing.
// Immutable once fetched.
type VaultSummary struct {
	// Address identifies the vault; comparisons are case-insensitive
	Address common.Address

	// Name is the display name, may be empty
	Name string

	// Symbol is the vault share token symbol
	Symbol string

	// ChainID is the network the vault lives on
	ChainID types.ChainID

	// Network is the chain's display name, used for report links
	Network string

	// Asset is the vault's deposit asset
	Asset Asset

	// TotalAssets is the raw total in the deposit asset's smallest unit.
	// Nil when the API omits it. Kept as a decimal because on-chain
	// totals exceed float64 precision.
	TotalAssets *decimal.Decimal

	// TotalAssetsUsd is the USD-denominated total, nil when absent
	TotalAssetsUsd *float64

	// NetAPY is the net annual yield as a fraction (0.05 = 5%), nil when absent
	NetAPY *float64

	// Whitelisted marks curator-approved vaults
	Whitelisted bool

	// Warnings is empty for vaults with no active risk markers
	Warnings []Warning
}

// DisplayName returns the vault's name with symbol and address fallbacks.
func (v VaultSummary) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	if v.Symbol != "" {
		return v.Symbol
	}
	return v.Address.Hex()
}

// Adapter is the closed set of allocation targets a vault can hold.
// Exactly three variants exist: a reference to a nested vault, a list of
// lending market positions, or an adapter kind the resolver does not
// understand.
type Adapter interface {
	isAdapter()
}

// VaultReference points at a nested vault. Asset carries the nested
// vault's own deposit asset when the API reported one; it is the fallback
// exposure when the nested vault cannot be fully resolved.
type VaultReference struct {
	Vault common.Address
	Asset common.Address
}

func (VaultReference) isAdapter() {}

// MarketPositions holds the lending market positions of a market adapter,
// capped at the positions limit the caller requested.
type MarketPositions struct {
	Positions []MarketPosition
}

func (MarketPositions) isAdapter() {}

// MarketPosition names the loan and collateral assets of one market.
// A zero address means the API did not report that side.
type MarketPosition struct {
	LoanAsset       common.Address
	CollateralAsset common.Address
}

// UnrecognizedAdapter stands in for adapter kinds the resolver does not
// understand; it always taints the exposure result.
type UnrecognizedAdapter struct {
	Kind string
}

func (UnrecognizedAdapter) isAdapter() {}

// Position is one Zerion wallet or DeFi position.
type Position struct {
	// Value is the USD (or requested currency) value, nil when unpriced
	Value *float64

	// PositionType is "wallet" for plain holdings, anything else for
	// protocol positions (deposit, loan, staked, ...)
	PositionType string

	// Protocol is the DeFi protocol name, nil for wallet assets
	Protocol *string

	// Symbol is the fungible token symbol
	Symbol string
}
