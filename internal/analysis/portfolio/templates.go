package portfolio

import "math"

// RiskProfile describes how much risk an investor tolerates and the
// asset-class ranges a basket for them should stay within.
type RiskProfile struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	TargetVolatility  float64    `json:"target_volatility"`
	EquityRange       [2]float64 `json:"equity_range"`
	BondRange         [2]float64 `json:"bond_range"`
	AlternativeRange  [2]float64 `json:"alternative_range"`
	MaxSinglePosition float64    `json:"max_single_position"`
}

var riskProfiles = []RiskProfile{
	{"Conservative", "Prioritizes capital preservation with low risk", 8, [2]float64{20, 40}, [2]float64{50, 70}, [2]float64{0, 10}, 25},
	{"Moderate", "Balances growth and stability", 12, [2]float64{40, 60}, [2]float64{30, 50}, [2]float64{5, 15}, 20},
	{"Aggressive", "Seeks maximum growth, tolerates high volatility", 18, [2]float64{70, 90}, [2]float64{5, 20}, [2]float64{5, 15}, 25},
	{"Very Aggressive", "Fully growth-focused, maximum risk tolerance", 25, [2]float64{85, 100}, [2]float64{0, 10}, [2]float64{0, 15}, 30},
}

// Horizon is an investment horizon with the equity/bond tilt it applies
// on top of a risk profile.
type Horizon struct {
	Name             string  `json:"name"`
	Years            int     `json:"years"`
	Focus            string  `json:"focus"`
	EquityAdjustment float64 `json:"equity_adjustment"`
	BondAdjustment   float64 `json:"bond_adjustment"`
}

var horizons = []Horizon{
	{"Short Term (1-3 years)", 2, "Liquidity and preservation", -15, 15},
	{"Medium Term (3-7 years)", 5, "Growth/stability balance", 0, 0},
	{"Long Term (7-15 years)", 10, "Growth with time to recover", 10, -10},
	{"Very Long Term (15+ years)", 20, "Maximum compound growth", 15, -15},
}

// Template is a named off-the-shelf basket.
type Template struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	RiskLevel   string      `json:"risk_level"`
	Allocations Allocations `json:"allocations"`
}

var templates = []Template{
	{"Classic 60/40", "Traditional balanced portfolio", "Moderate", Allocations{
		{Symbol: "VTI", Weight: 40, Category: "US Equity"},
		{Symbol: "VXUS", Weight: 20, Category: "International Equity"},
		{Symbol: "BND", Weight: 30, Category: "US Bonds"},
		{Symbol: "BNDX", Weight: 10, Category: "International Bonds"},
	}},
	{"Three Fund Portfolio", "Boglehead three-fund portfolio", "Moderate", Allocations{
		{Symbol: "VTI", Weight: 50, Category: "US Total Market"},
		{Symbol: "VXUS", Weight: 30, Category: "International"},
		{Symbol: "BND", Weight: 20, Category: "Bonds"},
	}},
	{"All Weather", "Ray Dalio portfolio for any scenario", "Conservative", Allocations{
		{Symbol: "VTI", Weight: 30, Category: "US Equity"},
		{Symbol: "TLT", Weight: 40, Category: "Long-Term Bonds"},
		{Symbol: "IEF", Weight: 15, Category: "Mid-Term Bonds"},
		{Symbol: "GLD", Weight: 7.5, Category: "Gold"},
		{Symbol: "DBC", Weight: 7.5, Category: "Commodities"},
	}},
	{"Growth Focus", "Long-term growth focused", "Aggressive", Allocations{
		{Symbol: "VTI", Weight: 35, Category: "US Total Market"},
		{Symbol: "QQQ", Weight: 25, Category: "Tech/Growth"},
		{Symbol: "VGT", Weight: 15, Category: "Technology"},
		{Symbol: "VXUS", Weight: 15, Category: "International"},
		{Symbol: "BND", Weight: 10, Category: "Bonds"},
	}},
	{"Dividend Income", "Dividend income generation", "Moderate", Allocations{
		{Symbol: "VYM", Weight: 25, Category: "High Dividend"},
		{Symbol: "SCHD", Weight: 25, Category: "Dividend Growth"},
		{Symbol: "VNQ", Weight: 15, Category: "REITs"},
		{Symbol: "BND", Weight: 20, Category: "Bonds"},
		{Symbol: "VXUS", Weight: 15, Category: "International"},
	}},
	{"Tech Heavy", "High technology exposure", "Very Aggressive", Allocations{
		{Symbol: "QQQ", Weight: 35, Category: "Nasdaq 100"},
		{Symbol: "VGT", Weight: 25, Category: "Technology"},
		{Symbol: "SMH", Weight: 15, Category: "Semiconductors"},
		{Symbol: "ARKK", Weight: 10, Category: "Innovation"},
		{Symbol: "VTI", Weight: 15, Category: "US Total Market"},
	}},
	{"Conservative Income", "Maximum preservation with income", "Conservative", Allocations{
		{Symbol: "BND", Weight: 35, Category: "US Bonds"},
		{Symbol: "VCSH", Weight: 20, Category: "Short-Term Corp"},
		{Symbol: "VYM", Weight: 20, Category: "Dividend Equity"},
		{Symbol: "VGSH", Weight: 15, Category: "Short-Term Treasury"},
		{Symbol: "VTIP", Weight: 10, Category: "TIPS"},
	}},
	{"ESG Sustainable", "Responsible and sustainable investing", "Moderate", Allocations{
		{Symbol: "ESGU", Weight: 35, Category: "ESG US Equity"},
		{Symbol: "ESGV", Weight: 20, Category: "ESG US Stock"},
		{Symbol: "ICLN", Weight: 15, Category: "Clean Energy"},
		{Symbol: "EAGG", Weight: 20, Category: "ESG Bonds"},
		{Symbol: "VSGX", Weight: 10, Category: "ESG International"},
	}},
}

// RiskProfiles returns the available risk profiles.
func RiskProfiles() []RiskProfile {
	out := make([]RiskProfile, len(riskProfiles))
	copy(out, riskProfiles)
	return out
}

// Horizons returns the available investment horizons.
func Horizons() []Horizon {
	out := make([]Horizon, len(horizons))
	copy(out, horizons)
	return out
}

// Templates returns the built-in basket templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

func profileByName(name string) RiskProfile {
	for _, p := range riskProfiles {
		if p.Name == name {
			return p
		}
	}
	return riskProfiles[1] // Moderate
}

func horizonByName(name string) Horizon {
	for _, h := range horizons {
		if h.Name == name {
			return h
		}
	}
	return horizons[1] // Medium Term
}

// TemplateByName looks up a built-in template.
func TemplateByName(name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// GeneratedPortfolio is the output of GenerateCustom.
type GeneratedPortfolio struct {
	Allocations    Allocations `json:"allocations"`
	RiskProfile    string      `json:"risk_profile"`
	Horizon        string      `json:"horizon"`
	TotalAmount    float64     `json:"total_amount"`
	EquityPct      float64     `json:"equity_pct"`
	BondPct        float64     `json:"bond_pct"`
	AlternativePct float64     `json:"alternative_pct"`
}

// GenerateCustom builds a basket from a risk profile and horizon. The
// horizon tilts the profile's equity/bond ranges, targets are taken at
// range midpoints and the asset-class sleeves are filled with broad ETFs
// sized to the targets. Unknown names fall back to the moderate profile
// and the medium horizon.
func GenerateCustom(profileName, horizonName string, amount float64) *GeneratedPortfolio {
	profile := profileByName(profileName)
	horizon := horizonByName(horizonName)

	equityMin := math.Max(0, profile.EquityRange[0]+horizon.EquityAdjustment)
	equityMax := math.Min(100, profile.EquityRange[1]+horizon.EquityAdjustment)
	equityTarget := (equityMin + equityMax) / 2

	bondMin := math.Max(0, profile.BondRange[0]+horizon.BondAdjustment)
	bondMax := math.Min(100, profile.BondRange[1]+horizon.BondAdjustment)
	bondTarget := math.Max(0, (bondMin+bondMax)/2)

	altTarget := (profile.AlternativeRange[0] + profile.AlternativeRange[1]) / 2

	total := equityTarget + bondTarget + altTarget
	equityPct := equityTarget / total * 100
	bondPct := bondTarget / total * 100
	altPct := altTarget / total * 100

	var allocs Allocations
	switch {
	case equityPct > 50:
		allocs = append(allocs,
			Allocation{Symbol: "VTI", Weight: equityPct * 0.5, Category: "US Total Market"},
			Allocation{Symbol: "VXUS", Weight: equityPct * 0.3, Category: "International"},
			Allocation{Symbol: "QQQ", Weight: equityPct * 0.2, Category: "Growth"},
		)
	case equityPct > 30:
		allocs = append(allocs,
			Allocation{Symbol: "VTI", Weight: equityPct * 0.6, Category: "US Total Market"},
			Allocation{Symbol: "VXUS", Weight: equityPct * 0.4, Category: "International"},
		)
	default:
		allocs = append(allocs,
			Allocation{Symbol: "VTI", Weight: equityPct * 0.7, Category: "US Total Market"},
			Allocation{Symbol: "VYM", Weight: equityPct * 0.3, Category: "Dividend"},
		)
	}

	switch {
	case bondPct > 30:
		allocs = append(allocs,
			Allocation{Symbol: "BND", Weight: bondPct * 0.6, Category: "Total Bond"},
			Allocation{Symbol: "VCSH", Weight: bondPct * 0.4, Category: "Short-Term Corp"},
		)
	case bondPct > 10:
		allocs = append(allocs, Allocation{Symbol: "BND", Weight: bondPct, Category: "Total Bond"})
	case bondPct > 0:
		allocs = append(allocs, Allocation{Symbol: "VGSH", Weight: bondPct, Category: "Short-Term Treasury"})
	}

	switch {
	case altPct > 5:
		allocs = append(allocs,
			Allocation{Symbol: "GLD", Weight: altPct * 0.6, Category: "Gold"},
			Allocation{Symbol: "VNQ", Weight: altPct * 0.4, Category: "Real Estate"},
		)
	case altPct > 0:
		allocs = append(allocs, Allocation{Symbol: "GLD", Weight: altPct, Category: "Gold"})
	}

	var totalWeight float64
	for _, a := range allocs {
		totalWeight += a.Weight
	}
	for i := range allocs {
		allocs[i].Weight = math.Round(allocs[i].Weight/totalWeight*1000) / 10
	}
	allocs = allocs.WithAmounts(amount)

	return &GeneratedPortfolio{
		Allocations:    allocs,
		RiskProfile:    profile.Name,
		Horizon:        horizon.Name,
		TotalAmount:    amount,
		EquityPct:      math.Round(equityPct*10) / 10,
		BondPct:        math.Round(bondPct*10) / 10,
		AlternativePct: math.Round(altPct*10) / 10,
	}
}

// FallbackRecommendation maps a risk profile onto the closest built-in
// template. Used when no language-model narrator is configured.
func FallbackRecommendation(profileName string) Template {
	names := map[string]string{
		"Conservative":    "Conservative Income",
		"Moderate":        "Classic 60/40",
		"Aggressive":      "Growth Focus",
		"Very Aggressive": "Tech Heavy",
	}
	name, ok := names[profileName]
	if !ok {
		name = "Classic 60/40"
	}
	t, _ := TemplateByName(name)
	return t
}
