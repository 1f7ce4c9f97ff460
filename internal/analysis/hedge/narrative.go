package hedge

import (
	"fmt"
	"strings"
)

// FallbackAnalysis renders the built-in hedge narrative used when no
// language-model narrator is configured.
func FallbackAnalysis(ticker, sector string, beta float64, top []Candidate) string {
	if len(top) == 0 {
		return "No correlations could be computed. Check that the ticker is valid."
	}
	if sector == "" {
		sector = "Unknown"
	}
	if len(top) > 3 {
		top = top[:3]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Hedge Analysis for %s**\n\n", ticker)
	fmt.Fprintf(&b, "**Risk Profile:**\n- Sector: %s\n- Beta: %.2f %s\n\n", sector, beta, betaNote(beta))
	b.WriteString("**Top 3 Hedge Recommendations:**\n")
	for _, c := range top {
		fmt.Fprintf(&b, "\n%s - %s\n- Correlation: %.2f\n- Score: %s\n- %s\n",
			c.Symbol, c.Name, c.Correlation, c.Score, c.Description)
	}
	b.WriteString(`
**Suggested Strategy:**
- Allocate 10-20% of the portfolio to hedge assets
- Diversify across categories (metals, bonds, volatility)
- Rebalance quarterly

**Note:** This analysis is informational. Consult a financial advisor before making investment decisions.`)
	return b.String()
}

func betaNote(beta float64) string {
	switch {
	case beta > 1:
		return "(more volatile than the market)"
	case beta < 1:
		return "(less volatile than the market)"
	default:
		return "(matches the market)"
	}
}
