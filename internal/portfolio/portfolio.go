// Package portfolio aggregates Zerion wallet positions into the summary
// the report prints.
package portfolio

import (
	"sort"

	"github.com/helixbox/pubfi-skills/internal/model"
)

// Holding is one token's aggregated value across all positions.
type Holding struct {
	Symbol string
	Value  float64
}

// ProtocolTotal is one DeFi protocol's aggregated value.
type ProtocolTotal struct {
	Protocol string
	Value    float64
}

// Summary is the aggregated view of a wallet's positions.
type Summary struct {
	// WalletTotal is the value held directly in the wallet, including
	// LP tokens and receipt tokens that sit there.
	WalletTotal float64

	// ProtocolTotals is the per-protocol value of DeFi positions,
	// sorted by descending value.
	ProtocolTotals []ProtocolTotal

	// TokenTotals is the per-symbol value across all positions.
	TokenTotals map[string]float64

	// Total is the grand total portfolio value.
	Total float64
}

// Summarize buckets positions into wallet versus protocol totals and
// aggregates values by token symbol. Positions without a value, or with a
// zero value, are skipped. A position counts as a protocol position only
// when its type is not "wallet" and a protocol is reported; everything
// else is a wallet asset.
func Summarize(positions []model.Position) Summary {
	s := Summary{TokenTotals: make(map[string]float64)}
	protocols := make(map[string]float64)

	for _, p := range positions {
		if p.Value == nil || *p.Value == 0 {
			continue
		}
		value := *p.Value

		if p.PositionType != "wallet" && p.Protocol != nil {
			protocols[*p.Protocol] += value
		} else {
			s.WalletTotal += value
		}

		symbol := p.Symbol
		if symbol == "" {
			symbol = "Unknown"
		}
		s.TokenTotals[symbol] += value
	}

	s.Total = s.WalletTotal
	for name, value := range protocols {
		s.ProtocolTotals = append(s.ProtocolTotals, ProtocolTotal{Protocol: name, Value: value})
		s.Total += value
	}
	sort.Slice(s.ProtocolTotals, func(i, j int) bool {
		if s.ProtocolTotals[i].Value != s.ProtocolTotals[j].Value {
			return s.ProtocolTotals[i].Value > s.ProtocolTotals[j].Value
		}
		return s.ProtocolTotals[i].Protocol < s.ProtocolTotals[j].Protocol
	})
	return s
}

// TopHoldings returns up to max holdings above the value floor, sorted by
// descending value.
func (s Summary) TopHoldings(max int, floor float64) []Holding {
	holdings := make([]Holding, 0, len(s.TokenTotals))
	for symbol, value := range s.TokenTotals {
		if value > floor {
			holdings = append(holdings, Holding{Symbol: symbol, Value: value})
		}
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Value != holdings[j].Value {
			return holdings[i].Value > holdings[j].Value
		}
		return holdings[i].Symbol < holdings[j].Symbol
	})
	if len(holdings) > max {
		holdings = holdings[:max]
	}
	return holdings
}

// Share returns value as a percentage of the portfolio total, zero when
// the portfolio is empty.
func (s Summary) Share(value float64) float64 {
	if s.Total <= 0 {
		return 0
	}
	return value / s.Total * 100
}
