package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/helixbox/pubfi-skills/internal/config"
	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/types"
)

// minVaultPageSize is the floor for page-size degradation on the vault
// listing query.
const minVaultPageSize = 50

const vaultsQuery = `
query VaultV2s($chainIds: [Int!], $first: Int!, $skip: Int!) {
  vaultV2s(
    where: { chainId_in: $chainIds }
    first: $first
    skip: $skip
    orderBy: TotalAssetsUsd
    orderDirection: Desc
  ) {
    items {
      address
      name
      symbol
      chain { id network }
      asset { address symbol decimals }
      totalAssets
      totalAssetsUsd
      netApy
      whitelisted
      warnings { type level }
    }
    pageInfo { countTotal count skip limit }
  }
}
`

const exposureQuery = `
query VaultV2Exposure($address: String!, $chainId: Int!, $positionsFirst: Int!) {
  vaultV2ByAddress(address: $address, chainId: $chainId) {
    adapters {
      items {
        __typename
        type
        ... on MetaMorphoAdapter {
          metaMorpho {
            address
            asset { address symbol }
          }
        }
        ... on MorphoMarketV1Adapter {
          positions(first: $positionsFirst) {
            items {
              market {
                loanAsset { address symbol }
                collateralAsset { address symbol }
              }
            }
          }
        }
      }
    }
  }
}
`

// MorphoClient talks to the Morpho GraphQL API.
type MorphoClient struct {
	graphqlURL string
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	first      int
	skip       int
}

// NewMorphoClient creates a client from the Morpho configuration.
func NewMorphoClient(cfg config.MorphoConfig) *MorphoClient {
	var limiter *rate.Limiter
	if cfg.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}
	rc := newRetryClient()
	rc.HTTPClient.Timeout = cfg.RequestTimeout
	return &MorphoClient{
		graphqlURL: cfg.GraphQLURL,
		httpClient: rc,
		limiter:    limiter,
		first:      cfg.First,
		skip:       cfg.Skip,
	}
}

// gql executes one GraphQL request and decodes the data envelope into out.
func (c *MorphoClient) gql(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("error encoding request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching data from Morpho: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: truncateBody(body)}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", envelope.Errors[0].Message)
	}
	return json.Unmarshal(envelope.Data, out)
}

// vaultItem mirrors one vaultV2s list entry on the wire.
type vaultItem struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Chain   struct {
		ID      int64  `json:"id"`
		Network string `json:"network"`
	} `json:"chain"`
	Asset struct {
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Decimals int32  `json:"decimals"`
	} `json:"asset"`
	TotalAssets    *decimal.Decimal `json:"totalAssets"`
	TotalAssetsUsd *float64         `json:"totalAssetsUsd"`
	NetApy         *float64         `json:"netApy"`
	Whitelisted    bool             `json:"whitelisted"`
	Warnings       []struct {
		Type  string `json:"type"`
		Level string `json:"level"`
	} `json:"warnings"`
}

// FetchVaultPage retrieves one page of the vault listing for a chain.
func (c *MorphoClient) FetchVaultPage(ctx context.Context, chainID types.ChainID, first, skip int) ([]model.VaultSummary, error) {
	var data struct {
		VaultV2s struct {
			Items []vaultItem `json:"items"`
		} `json:"vaultV2s"`
	}
	vars := map[string]any{"chainIds": []int64{int64(chainID)}, "first": first, "skip": skip}
	if err := c.gql(ctx, vaultsQuery, vars, &data); err != nil {
		return nil, err
	}

	vaults := make([]model.VaultSummary, 0, len(data.VaultV2s.Items))
	for _, item := range data.VaultV2s.Items {
		v := model.VaultSummary{
			Address: hexToAddress(item.Address),
			Name:    item.Name,
			Symbol:  item.Symbol,
			ChainID: types.ChainID(item.Chain.ID),
			Network: item.Chain.Network,
			Asset: model.Asset{
				Address:  hexToAddress(item.Asset.Address),
				Symbol:   item.Asset.Symbol,
				Decimals: item.Asset.Decimals,
			},
			TotalAssets:    item.TotalAssets,
			TotalAssetsUsd: item.TotalAssetsUsd,
			NetAPY:         item.NetApy,
			Whitelisted:    item.Whitelisted,
		}
		for _, w := range item.Warnings {
			v.Warnings = append(v.Warnings, model.Warning{Type: w.Type, Level: w.Level})
		}
		vaults = append(vaults, v)
	}
	logrus.Debugf("Received %d vaults from Morpho for chain %d (first=%d skip=%d)", len(vaults), chainID, first, skip)
	return vaults, nil
}

// FetchVaults walks the paginated vault listing for a chain. On a
// server-side error with a page size above the floor, the page size is
// halved and the listing restarted from the beginning, so a partially
// accumulated result is never mixed across page sizes.
func (c *MorphoClient) FetchVaults(ctx context.Context, chainID types.ChainID) ([]model.VaultSummary, error) {
	var vaults []model.VaultSummary
	page := 0
	pageSize := c.first
	for {
		offset := c.skip + page*pageSize
		batch, err := c.FetchVaultPage(ctx, chainID, pageSize, offset)
		if err != nil {
			if IsServerError(err) && pageSize > minVaultPageSize {
				reduced := pageSize / 2
				if reduced < minVaultPageSize {
					reduced = minVaultPageSize
				}
				logrus.Warnf("vault list query failed on chain %d with page size %d; retrying with %d", chainID, pageSize, reduced)
				pageSize = reduced
				vaults = nil
				page = 0
				continue
			}
			return nil, err
		}
		vaults = append(vaults, batch...)
		if len(batch) < pageSize {
			break
		}
		page++
	}
	return vaults, nil
}

// adapterItem mirrors one adapter entry on the wire. Only the fields of
// the recognized adapter kinds are populated.
type adapterItem struct {
	Typename   string `json:"__typename"`
	MetaMorpho *struct {
		Address string `json:"address"`
		Asset   *struct {
			Address string `json:"address"`
			Symbol  string `json:"symbol"`
		} `json:"asset"`
	} `json:"metaMorpho"`
	Positions *struct {
		Items []struct {
			Market *struct {
				LoanAsset *struct {
					Address string `json:"address"`
				} `json:"loanAsset"`
				CollateralAsset *struct {
					Address string `json:"address"`
				} `json:"collateralAsset"`
			} `json:"market"`
		} `json:"items"`
	} `json:"positions"`
}

// FetchAdapters retrieves the one-level adapter graph of a vault, with at
// most positionsLimit positions per market adapter.
func (c *MorphoClient) FetchAdapters(ctx context.Context, address common.Address, chainID types.ChainID, positionsLimit int) ([]model.Adapter, error) {
	var data struct {
		VaultV2ByAddress *struct {
			Adapters struct {
				Items []adapterItem `json:"items"`
			} `json:"adapters"`
		} `json:"vaultV2ByAddress"`
	}
	vars := map[string]any{
		"address":        address.Hex(),
		"chainId":        int64(chainID),
		"positionsFirst": positionsLimit,
	}
	if err := c.gql(ctx, exposureQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.VaultV2ByAddress == nil {
		return nil, nil
	}

	adapters := make([]model.Adapter, 0, len(data.VaultV2ByAddress.Adapters.Items))
	for _, item := range data.VaultV2ByAddress.Adapters.Items {
		switch item.Typename {
		case "MetaMorphoAdapter":
			ref := model.VaultReference{}
			if item.MetaMorpho != nil {
				ref.Vault = hexToAddress(item.MetaMorpho.Address)
				if item.MetaMorpho.Asset != nil {
					ref.Asset = hexToAddress(item.MetaMorpho.Asset.Address)
				}
			}
			adapters = append(adapters, ref)
		case "MorphoMarketV1Adapter":
			mp := model.MarketPositions{}
			if item.Positions != nil {
				for _, pos := range item.Positions.Items {
					p := model.MarketPosition{}
					if pos.Market != nil {
						if pos.Market.LoanAsset != nil {
							p.LoanAsset = hexToAddress(pos.Market.LoanAsset.Address)
						}
						if pos.Market.CollateralAsset != nil {
							p.CollateralAsset = hexToAddress(pos.Market.CollateralAsset.Address)
						}
					}
					mp.Positions = append(mp.Positions, p)
				}
			}
			adapters = append(adapters, mp)
		default:
			adapters = append(adapters, model.UnrecognizedAdapter{Kind: item.Typename})
		}
	}
	return adapters, nil
}

// hexToAddress parses a wire address; empty input maps to the zero
// address, which the domain treats as "not reported".
func hexToAddress(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}
