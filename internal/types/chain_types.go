// Package types contains shared type definitions used across multiple packages
package types

import "fmt"

// ChainID identifies a blockchain network by its EVM chain id
type ChainID int64

// Supported blockchain networks
const (
	ChainEthereum ChainID = 1
	ChainBase     ChainID = 8453
	ChainArbitrum ChainID = 42161
)

// chainSelectors maps the CHAIN selector value to the chain ids it covers
var chainSelectors = map[string][]ChainID{
	"ethereum": {ChainEthereum},
	"base":     {ChainBase},
	"arbitrum": {ChainArbitrum},
	"all":      {ChainEthereum, ChainBase, ChainArbitrum},
}

// ResolveChains translates a chain selector into the chain ids to query.
// An unrecognized selector is a configuration error and aborts the run
// before any fetching begins.
func ResolveChains(selector string) ([]ChainID, error) {
	ids, ok := chainSelectors[selector]
	if !ok {
		return nil, fmt.Errorf("invalid chain %q: use ethereum, base, arbitrum or all", selector)
	}
	return ids, nil
}
