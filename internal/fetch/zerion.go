package fetch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/helixbox/pubfi-skills/internal/config"
	"github.com/helixbox/pubfi-skills/internal/model"
)

// ZerionClient talks to the Zerion REST API.
type ZerionClient struct {
	baseURL    string
	httpClient *http.Client
	authHeader string
}

// NewZerionClient creates a client from the Zerion configuration. The API
// key is transformed into a Basic auth header the way the API expects:
// base64 of "key:".
func NewZerionClient(cfg config.ZerionConfig) *ZerionClient {
	rc := newRetryClient()
	rc.HTTPClient.Timeout = cfg.RequestTimeout
	return &ZerionClient{
		baseURL:    cfg.BaseURL,
		httpClient: StandardClient(rc),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.APIKey+":")),
	}
}

// PositionsQuery selects which positions to fetch.
type PositionsQuery struct {
	// Currency for position values, e.g. "usd"
	Currency string

	// OnlyDeFi restricts the result to DeFi protocol positions
	OnlyDeFi bool

	// IncludeTrash keeps positions Zerion flags as trash
	IncludeTrash bool
}

// positionItem mirrors one position entry on the wire.
type positionItem struct {
	Attributes struct {
		Value        *float64        `json:"value"`
		PositionType string          `json:"position_type"`
		Protocol     json.RawMessage `json:"protocol"`
		FungibleInfo struct {
			Symbol string `json:"symbol"`
		} `json:"fungible_info"`
	} `json:"attributes"`
}

// Positions retrieves all positions of a wallet, following the API's
// links.next pagination to completion.
func (c *ZerionClient) Positions(ctx context.Context, address string, q PositionsQuery) ([]model.Position, error) {
	params := url.Values{}
	params.Set("currency", q.Currency)
	params.Set("sort", "value")
	if !q.IncludeTrash {
		params.Set("filter[trash]", "only_non_trash")
	}
	if q.OnlyDeFi {
		params.Set("filter[positions]", "only_complex")
	}

	next := fmt.Sprintf("%s/v1/wallets/%s/positions/?%s", c.baseURL, address, params.Encode())

	var positions []model.Position
	for next != "" {
		page, nextURL, err := c.positionsPage(ctx, next)
		if err != nil {
			return nil, err
		}
		positions = append(positions, page...)
		next = nextURL
	}
	logrus.Debugf("Received %d positions from Zerion for %s (onlyDeFi=%v)", len(positions), address, q.OnlyDeFi)
	return positions, nil
}

// positionsPage fetches one page and returns the next-page URL, empty when
// this was the last page.
func (c *ZerionClient) positionsPage(ctx context.Context, pageURL string) ([]model.Position, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("error fetching data from Zerion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", &APIError{Status: resp.StatusCode, Body: truncateBody(body)}
	}

	var response struct {
		Data  []positionItem `json:"data"`
		Links struct {
			Next string `json:"next"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, "", fmt.Errorf("error decoding response: %w", err)
	}

	positions := make([]model.Position, 0, len(response.Data))
	for _, item := range response.Data {
		positions = append(positions, model.Position{
			Value:        item.Attributes.Value,
			PositionType: item.Attributes.PositionType,
			Protocol:     decodeProtocol(item.Attributes.Protocol),
			Symbol:       item.Attributes.FungibleInfo.Symbol,
		})
	}
	return positions, response.Links.Next, nil
}

// decodeProtocol normalizes the protocol field: null or absent means no
// protocol, a string is used as-is, and any other shape is bucketed as
// "Unknown Protocol".
func decodeProtocol(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	unknown := "Unknown Protocol"
	return &unknown
}
