package dashboard

import (
	"context"
	"fmt"
	"strings"

	"marketlens/internal/gateway/provider"
	"marketlens/internal/logger"
)

const narratorSystem = "You are a market analyst writing for a personal-finance dashboard. " +
	"Summarize the supplied technical readings in plain language, three short paragraphs at most. " +
	"Describe what the indicators show, not what to buy or sell."

// Narrate produces the written summary for an analysis. When a narrator is
// configured it is asked first, with the supplied chart images attached;
// on error or when none is configured the deterministic template is used.
func (s *Service) Narrate(ctx context.Context, a *Analysis, images ...provider.Image) string {
	if a == nil {
		return ""
	}
	if s.narrator != nil {
		text, err := s.narrator.Narrate(ctx, provider.Prompt{
			System: narratorSystem,
			User:   narratorUser(a),
			Images: images,
		})
		if err == nil && text != "" {
			return text
		}
		logger.Warnf("narrator %s failed, using template: %v", s.narrator.ID(), err)
	}
	return TemplateSummary(a)
}

func narratorUser(a *Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s (latest close %.2f, %d daily bars over %s)\n", a.Symbol, a.LatestClose, len(a.Bars), a.Range)
	fmt.Fprintf(&b, "Momentum: %s — %s\n", a.Momentum.State, a.Momentum.Description)
	if a.Oscillator.RSIDefined {
		fmt.Fprintf(&b, "RSI(14): %.1f\n", a.Oscillator.RSI)
	}
	fmt.Fprintf(&b, "MACD: %.4f signal %.4f histogram %.4f\n", a.Oscillator.MACD, a.Oscillator.Signal, a.Oscillator.Histogram)
	fmt.Fprintf(&b, "Bullish divergences: %d (recent: %v), bearish: %d (recent: %v)\n",
		len(a.Bullish), a.RecentBullish, len(a.Bearish), a.RecentBearish)
	if a.Profile != nil {
		fmt.Fprintf(&b, "Volume profile: POC %.2f, value area %.2f–%.2f\n",
			a.Profile.POC, a.Profile.ValueAreaLow, a.Profile.ValueAreaHigh)
	}
	if len(a.Levels) > 0 {
		b.WriteString("Nearby levels:")
		for _, lv := range a.Levels {
			fmt.Fprintf(&b, " %.2f (%s, %+.1f%%)", lv.Price, lv.Kind, lv.DeltaPct)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TemplateSummary renders the no-model fallback text.
func TemplateSummary(a *Analysis) string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s closed at %.2f. %s.", a.Symbol, a.LatestClose, a.Momentum.Description)
	if a.Oscillator.RSIDefined {
		zone := "in the neutral zone"
		switch {
		case a.Oscillator.RSI >= 70:
			zone = "in overbought territory"
		case a.Oscillator.RSI <= 30:
			zone = "in oversold territory"
		}
		fmt.Fprintf(&b, " RSI sits at %.1f, %s.", a.Oscillator.RSI, zone)
	}
	switch {
	case a.RecentBullish && a.RecentBearish:
		b.WriteString(" Both bullish and bearish divergences printed within the last month; the signal is mixed.")
	case a.RecentBullish:
		b.WriteString(" A bullish divergence printed within the last month.")
	case a.RecentBearish:
		b.WriteString(" A bearish divergence printed within the last month.")
	}
	if a.Profile != nil {
		fmt.Fprintf(&b, " The heaviest traded price of the period is %.2f, with value concentrated between %.2f and %.2f.",
			a.Profile.POC, a.Profile.ValueAreaLow, a.Profile.ValueAreaHigh)
	}
	return b.String()
}
