// Package exposure resolves the set of underlying asset addresses a vault
// is ultimately allocated to, following nested vault adapters through the
// adapter reference graph.
package exposure

import (
	"context"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/types"
)

// minPositionsLimit is the floor for positions-limit degradation when an
// exposure query fails.
const minPositionsLimit = 25

// AdapterFetcher retrieves the one-level adapter graph of a vault.
type AdapterFetcher interface {
	FetchAdapters(ctx context.Context, address common.Address, chainID types.ChainID, positionsLimit int) ([]model.Adapter, error)
}

// Result is a resolved exposure set. Unknown is true whenever the set
// could not be established completely: an unrecognized adapter, a possibly
// truncated position list, a missing address, a cycle, or a fetch failure.
// A Result with Unknown == false always has a non-empty asset set.
type Result struct {
	Assets  map[common.Address]struct{}
	Unknown bool
}

// Symbols maps the resolved addresses through an allowlist-style lookup
// and returns the sorted unique symbols. Addresses the lookup does not
// know are skipped.
func (r Result) Symbols(lookup func(common.Address) (string, bool)) []string {
	seen := make(map[string]struct{})
	for addr := range r.Assets {
		if sym, ok := lookup(addr); ok {
			seen[sym] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// key is the memoization key: chain id plus lower-cased vault address.
type key struct {
	chainID types.ChainID
	address string
}

func makeKey(chainID types.ChainID, address common.Address) key {
	return key{chainID: chainID, address: strings.ToLower(address.Hex())}
}

// Resolver walks the adapter reference graph. It owns a process-lifetime
// memoization cache, so each vault key is fetched at most once per run.
// Not safe for concurrent use; the pipeline is sequential.
type Resolver struct {
	fetcher        AdapterFetcher
	cache          map[key]Result
	positionsFirst int
}

// NewResolver creates a resolver with a fresh cache. positionsFirst is the
// initial positions-per-adapter limit for exposure queries.
func NewResolver(fetcher AdapterFetcher, positionsFirst int) *Resolver {
	return &Resolver{
		fetcher:        fetcher,
		cache:          make(map[key]Result),
		positionsFirst: positionsFirst,
	}
}

// Resolve computes the exposure set for a vault. The result is cached for
// the lifetime of the resolver.
func (r *Resolver) Resolve(ctx context.Context, address common.Address, chainID types.ChainID) Result {
	return r.resolve(ctx, address, chainID, make(map[key]struct{}), r.positionsFirst)
}

// resolve carries the visited set of keys currently on the call stack and
// the positions limit for this level's fetch.
func (r *Resolver) resolve(ctx context.Context, address common.Address, chainID types.ChainID, visited map[key]struct{}, positionsLimit int) Result {
	k := makeKey(chainID, address)
	if cached, ok := r.cache[k]; ok {
		return cached
	}

	// A key already on the call stack means a cycle in the adapter
	// reference graph. Terminate it here and mark the node unresolved.
	if _, ok := visited[k]; ok {
		return r.finish(k, Result{Assets: map[common.Address]struct{}{}, Unknown: true})
	}
	visited[k] = struct{}{}

	adapters, err := r.fetcher.FetchAdapters(ctx, address, chainID, positionsLimit)
	if err != nil {
		if positionsLimit > minPositionsLimit {
			reduced := positionsLimit / 2
			if reduced < minPositionsLimit {
				reduced = minPositionsLimit
			}
			logrus.Warnf("exposure query failed for %s on chain %d: %v; retrying with positionsFirst=%d", address.Hex(), chainID, err, reduced)
			delete(visited, k)
			return r.resolve(ctx, address, chainID, visited, reduced)
		}
		logrus.Warnf("exposure query failed for %s on chain %d: %v", address.Hex(), chainID, err)
		return r.finish(k, Result{Assets: map[common.Address]struct{}{}, Unknown: true})
	}

	assets := make(map[common.Address]struct{})
	unknown := false
	zero := common.Address{}

	for _, adapter := range adapters {
		switch a := adapter.(type) {
		case model.VaultReference:
			if a.Vault != zero {
				nested := r.resolve(ctx, a.Vault, chainID, visited, r.positionsFirst)
				if !nested.Unknown {
					for addr := range nested.Assets {
						assets[addr] = struct{}{}
					}
					continue
				}
			}
			// Degradation path: treat the nested vault's own deposit
			// asset as a single-asset exposure when recursion came up
			// unknown. This can understate the true exposure.
			if a.Asset != zero {
				assets[a.Asset] = struct{}{}
				logrus.Warnf("nested vault fallback to deposit asset for %s", fallbackLabel(a, address))
				continue
			}
			unknown = true
		case model.MarketPositions:
			// A full page cannot prove completeness; keep what was
			// gathered so far but taint the result.
			if len(a.Positions) >= positionsLimit {
				unknown = true
				continue
			}
			for _, pos := range a.Positions {
				if pos.LoanAsset == zero {
					unknown = true
				} else {
					assets[pos.LoanAsset] = struct{}{}
				}
				if pos.CollateralAsset == zero {
					unknown = true
				} else {
					assets[pos.CollateralAsset] = struct{}{}
				}
			}
		default:
			unknown = true
		}
	}

	// An empty exposure set is never trustworthy.
	if len(assets) == 0 {
		unknown = true
	}

	return r.finish(k, Result{Assets: assets, Unknown: unknown})
}

func (r *Resolver) finish(k key, res Result) Result {
	r.cache[k] = res
	return res
}

// fallbackLabel names the vault the fallback applied to, preferring the
// nested vault's own address.
func fallbackLabel(ref model.VaultReference, outer common.Address) string {
	if (ref.Vault != common.Address{}) {
		return ref.Vault.Hex()
	}
	return outer.Hex()
}
