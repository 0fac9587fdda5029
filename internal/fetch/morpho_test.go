package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixbox/pubfi-skills/internal/config"
	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/types"
)

// gqlVars extracts the GraphQL variables of a request.
func gqlVars(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body struct {
		Variables map[string]any `json:"variables"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body.Variables
}

func morphoClient(t *testing.T, serverURL string, first, skip int) *MorphoClient {
	t.Helper()
	return NewMorphoClient(config.MorphoConfig{
		GraphQLURL:     serverURL,
		First:          first,
		Skip:           skip,
		RequestTimeout: 5 * time.Second,
	})
}

func TestFetchVaultPage_DecodesVaultSummaries(t *testing.T) {
	response := `{
	  "data": {
	    "vaultV2s": {
	      "items": [
	        {
	          "address": "0x1111111111111111111111111111111111111111",
	          "name": "Steakhouse USDC",
	          "symbol": "steakUSDC",
	          "chain": {"id": 1, "network": "Ethereum"},
	          "asset": {"address": "0xA0b86991C6218B36C1D19d4A2e9eB0CE3606Eb48", "symbol": "USDC", "decimals": 6},
	          "totalAssets": "15000000000000",
	          "totalAssetsUsd": 15000000,
	          "netApy": 0.082,
	          "whitelisted": true,
	          "warnings": [{"type": "UNRECOGNIZED_CURATOR", "level": "YELLOW"}]
	        },
	        {
	          "address": "0x2222222222222222222222222222222222222222",
	          "name": "",
	          "symbol": "bare",
	          "chain": {"id": 1, "network": "Ethereum"},
	          "asset": {"address": "", "symbol": "", "decimals": 0},
	          "totalAssets": null,
	          "totalAssetsUsd": null,
	          "netApy": null,
	          "whitelisted": false,
	          "warnings": []
	        }
	      ],
	      "pageInfo": {"countTotal": 2, "count": 2, "skip": 0, "limit": 500}
	    }
	  }
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := gqlVars(t, r)
		assert.Equal(t, float64(500), vars["first"])
		assert.Equal(t, float64(0), vars["skip"])
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 500, 0)
	vaults, err := client.FetchVaultPage(context.Background(), types.ChainEthereum, 500, 0)
	require.NoError(t, err)
	require.Len(t, vaults, 2)

	v := vaults[0]
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), v.Address)
	assert.Equal(t, "Steakhouse USDC", v.Name)
	assert.Equal(t, types.ChainEthereum, v.ChainID)
	assert.Equal(t, "Ethereum", v.Network)
	assert.Equal(t, common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), v.Asset.Address)
	assert.Equal(t, int32(6), v.Asset.Decimals)
	require.NotNil(t, v.TotalAssets)
	assert.Equal(t, "15000000000000", v.TotalAssets.String())
	require.NotNil(t, v.TotalAssetsUsd)
	assert.Equal(t, 15000000.0, *v.TotalAssetsUsd)
	require.NotNil(t, v.NetAPY)
	assert.Equal(t, 0.082, *v.NetAPY)
	assert.True(t, v.Whitelisted)
	assert.Equal(t, []model.Warning{{Type: "UNRECOGNIZED_CURATOR", Level: "YELLOW"}}, v.Warnings)

	bare := vaults[1]
	assert.Equal(t, common.Address{}, bare.Asset.Address)
	assert.Nil(t, bare.TotalAssets)
	assert.Nil(t, bare.TotalAssetsUsd)
	assert.Nil(t, bare.NetAPY)
	assert.Empty(t, bare.Warnings)
}

func TestFetchVaults_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := gqlVars(t, r)
		skip := int(vars["skip"].(float64))
		var items string
		// Two full pages of two, then a short page of one.
		switch skip {
		case 0, 2:
			items = vaultItemsJSON(skip, 2)
		default:
			items = vaultItemsJSON(skip, 1)
		}
		fmt.Fprintf(w, `{"data": {"vaultV2s": {"items": [%s]}}}`, items)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 2, 0)
	vaults, err := client.FetchVaults(context.Background(), types.ChainEthereum)
	require.NoError(t, err)
	assert.Len(t, vaults, 5)
}

// vaultItemsJSON builds n minimal vault items with distinct addresses.
func vaultItemsJSON(offset, n int) string {
	items := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{
		  "address": "0x%040x",
		  "symbol": "v%d",
		  "chain": {"id": 1, "network": "Ethereum"},
		  "asset": {"address": "0xA0b86991C6218B36C1D19d4A2e9eB0CE3606Eb48", "symbol": "USDC", "decimals": 6},
		  "whitelisted": true
		}`, offset+i+1, offset+i)
	}
	return items
}

func TestFetchVaults_DegradesPageSizeOnServerError(t *testing.T) {
	var requestedFirsts []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := gqlVars(t, r)
		first := int(vars["first"].(float64))
		requestedFirsts = append(requestedFirsts, first)
		if first > 50 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data": {"vaultV2s": {"items": []}}}`)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 100, 0)
	vaults, err := client.FetchVaults(context.Background(), types.ChainEthereum)
	require.NoError(t, err)
	assert.Empty(t, vaults)

	// The failing size is retried once by the HTTP layer, then the page
	// size is halved and the listing restarted.
	assert.Equal(t, []int{100, 100, 50}, requestedFirsts)
}

func TestFetchVaults_PersistentServerErrorAtFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 50, 0)
	_, err := client.FetchVaults(context.Background(), types.ChainEthereum)
	require.Error(t, err)
	assert.True(t, IsServerError(err))
}

func TestFetchAdapters_DecodesAdapterVariants(t *testing.T) {
	response := `{
	  "data": {
	    "vaultV2ByAddress": {
	      "adapters": {
	        "items": [
	          {
	            "__typename": "MetaMorphoAdapter",
	            "metaMorpho": {
	              "address": "0x3333333333333333333333333333333333333333",
	              "asset": {"address": "0xA0b86991C6218B36C1D19d4A2e9eB0CE3606Eb48", "symbol": "USDC"}
	            }
	          },
	          {
	            "__typename": "MorphoMarketV1Adapter",
	            "positions": {
	              "items": [
	                {"market": {"loanAsset": {"address": "0xA0b86991C6218B36C1D19d4A2e9eB0CE3606Eb48"}, "collateralAsset": {"address": "0xdAC17F958D2ee523a2206206994597C13D831ec7"}}},
	                {"market": {"loanAsset": {"address": "0xA0b86991C6218B36C1D19d4A2e9eB0CE3606Eb48"}, "collateralAsset": null}}
	              ]
	            }
	          },
	          {"__typename": "CompoundV3Adapter"}
	        ]
	      }
	    }
	  }
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := gqlVars(t, r)
		assert.Equal(t, float64(50), vars["positionsFirst"])
		assert.Equal(t, float64(1), vars["chainId"])
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 500, 0)
	adapters, err := client.FetchAdapters(context.Background(), common.HexToAddress("0x1111111111111111111111111111111111111111"), types.ChainEthereum, 50)
	require.NoError(t, err)
	require.Len(t, adapters, 3)

	ref, ok := adapters[0].(model.VaultReference)
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x3333333333333333333333333333333333333333"), ref.Vault)
	assert.Equal(t, common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), ref.Asset)

	mp, ok := adapters[1].(model.MarketPositions)
	require.True(t, ok)
	require.Len(t, mp.Positions, 2)
	assert.Equal(t, common.HexToAddress("0xdac17f958d2ee523a2206206994597c13d831ec7"), mp.Positions[0].CollateralAsset)
	assert.Equal(t, common.Address{}, mp.Positions[1].CollateralAsset)

	unrec, ok := adapters[2].(model.UnrecognizedAdapter)
	require.True(t, ok)
	assert.Equal(t, "CompoundV3Adapter", unrec.Kind)
}

func TestFetchAdapters_UnknownVault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"vaultV2ByAddress": null}}`)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 500, 0)
	adapters, err := client.FetchAdapters(context.Background(), common.Address{}, types.ChainEthereum, 50)
	require.NoError(t, err)
	assert.Empty(t, adapters)
}

func TestGQL_GraphQLErrorsAreErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "rate limited"}]}`)
	}))
	defer server.Close()

	client := morphoClient(t, server.URL, 500, 0)
	_, err := client.FetchVaultPage(context.Background(), types.ChainEthereum, 500, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
