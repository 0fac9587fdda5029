package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helixbox/pubfi-skills/internal/model"
	"github.com/helixbox/pubfi-skills/internal/portfolio"
)

func value(v float64) *float64 { return &v }

func proto(s string) *string { return &s }

func TestWritePortfolio(t *testing.T) {
	s := portfolio.Summarize([]model.Position{
		{Value: value(1_250_000.50), PositionType: "wallet", Symbol: "ETH"},
		{Value: value(750_000), PositionType: "deposit", Protocol: proto("Aave V3"), Symbol: "USDC"},
	})

	var buf bytes.Buffer
	WritePortfolio(&buf, "0xAbC0000000000000000000000000000000000001", s)
	out := buf.String()

	assert.Contains(t, out, "Portfolio Summary for 0xAbC0000000000000000000000000000000000001")
	assert.Contains(t, out, "Wallet Assets: $1,250,000.50 USD (62.5%)")
	assert.Contains(t, out, "Aave V3: $750,000.00 USD (37.5%)")
	assert.Contains(t, out, "Total: $2,000,000.50 USD")
	assert.Contains(t, out, "ETH")
	assert.Contains(t, out, "USDC")
}

func TestWritePortfolio_Empty(t *testing.T) {
	var buf bytes.Buffer
	WritePortfolio(&buf, "0xabc", portfolio.Summarize(nil))
	out := buf.String()

	assert.Contains(t, out, "Wallet Assets: $0.00 USD")
	assert.Contains(t, out, "No assets over $1 USD found")
	assert.Contains(t, out, "Total: $0.00 USD")
}
