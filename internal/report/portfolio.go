package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/helixbox/pubfi-skills/internal/portfolio"
)

// topHoldingsCount and topHoldingsFloor bound the holdings section.
const (
	topHoldingsCount = 20
	topHoldingsFloor = 1.0
)

var moneyPrinter = message.NewPrinter(language.English)

// WritePortfolio renders the plain-text portfolio summary for a wallet.
func WritePortfolio(w io.Writer, address string, s portfolio.Summary) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Portfolio Summary for %s\n", address)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Asset Distribution:")
	if s.Total > 0 {
		fmt.Fprintf(w, "  Wallet Assets: $%s USD (%.1f%%)\n", money(s.WalletTotal), s.Share(s.WalletTotal))
	} else {
		fmt.Fprintln(w, "  Wallet Assets: $0.00 USD")
	}
	for _, p := range s.ProtocolTotals {
		fmt.Fprintf(w, "  %s: $%s USD (%.1f%%)\n", p.Protocol, money(p.Value), s.Share(p.Value))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total: $%s USD\n", money(s.Total))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Top Holdings (>$1 USD):")
	holdings := s.TopHoldings(topHoldingsCount, topHoldingsFloor)
	if len(holdings) == 0 {
		fmt.Fprintln(w, "  No assets over $1 USD found")
	} else {
		for _, h := range holdings {
			fmt.Fprintf(w, "  %-15s $%14s USD  (%5.1f%%)\n", h.Symbol, money(h.Value), s.Share(h.Value))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

// money formats a USD amount with thousands separators and two decimals.
func money(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}
