// Package hedge ranks hedge candidates for a position by return
// correlation and simulates the effect of blending one into the
// portfolio.
package hedge

// Asset is one entry of the built-in hedge universe.
type Asset struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// universe covers the usual defensive instruments: inverse index ETFs,
// volatility products, metals, bonds, commodities, currencies, defensive
// sectors and international markets.
var universe = []Asset{
	{"SH", "ProShares Short S&P500", "Inverse S&P 500 ETF", "Inverse Index"},
	{"PSQ", "ProShares Short QQQ", "Inverse Nasdaq ETF", "Inverse Index"},
	{"DOG", "ProShares Short Dow30", "Inverse Dow Jones ETF", "Inverse Index"},
	{"RWM", "ProShares Short Russell2000", "Inverse Russell 2000 ETF", "Inverse Index"},

	{"VXX", "iPath VIX Short-Term", "Short-term volatility exposure", "Volatility"},
	{"UVXY", "ProShares Ultra VIX", "2x short-term volatility", "Volatility"},
	{"VIXY", "ProShares VIX Short-Term", "Short-term VIX futures", "Volatility"},

	{"GLD", "SPDR Gold Shares", "Physical gold", "Precious Metals"},
	{"SLV", "iShares Silver Trust", "Physical silver", "Precious Metals"},
	{"GDX", "VanEck Gold Miners", "Gold mining companies", "Precious Metals"},
	{"IAU", "iShares Gold Trust", "Physical gold alternative", "Precious Metals"},

	{"TLT", "iShares 20+ Year Treasury", "Long-term treasury bonds", "Fixed Income"},
	{"IEF", "iShares 7-10 Year Treasury", "Intermediate treasury bonds", "Fixed Income"},
	{"BND", "Vanguard Total Bond", "Diversified bonds", "Fixed Income"},
	{"TIPS", "iShares TIPS Bond", "Inflation-protected bonds", "Fixed Income"},

	{"USO", "United States Oil Fund", "Crude oil", "Commodities"},
	{"UNG", "United States Natural Gas", "Natural gas", "Commodities"},
	{"DBA", "Invesco DB Agriculture", "Diversified agriculture", "Commodities"},
	{"DBB", "Invesco DB Base Metals", "Base metals", "Commodities"},

	{"UUP", "Invesco DB US Dollar", "US dollar", "Currencies"},
	{"FXE", "Invesco CurrencyShares Euro", "Euro", "Currencies"},
	{"FXY", "Invesco CurrencyShares Yen", "Japanese yen", "Currencies"},
	{"FXF", "Invesco CurrencyShares Franc", "Swiss franc", "Currencies"},

	{"XLU", "Utilities Select Sector", "Utilities sector", "Defensive Sectors"},
	{"XLP", "Consumer Staples Select", "Consumer staples", "Defensive Sectors"},
	{"XLV", "Health Care Select", "Health care sector", "Defensive Sectors"},
	{"VNQ", "Vanguard Real Estate", "Real estate", "Defensive Sectors"},

	{"EFA", "iShares MSCI EAFE", "Developed markets ex-US", "International Markets"},
	{"EEM", "iShares MSCI Emerging", "Emerging markets", "International Markets"},
	{"VEA", "Vanguard FTSE Developed", "Developed markets", "International Markets"},
	{"VWO", "Vanguard FTSE Emerging", "Emerging markets", "International Markets"},
}

// Universe returns a copy of the built-in hedge universe.
func Universe() []Asset {
	out := make([]Asset, len(universe))
	copy(out, universe)
	return out
}

// UniverseSymbols lists every symbol of the universe in catalog order.
func UniverseSymbols() []string {
	out := make([]string, len(universe))
	for i, a := range universe {
		out[i] = a.Symbol
	}
	return out
}

func lookupAsset(symbol string) Asset {
	for _, a := range universe {
		if a.Symbol == symbol {
			return a
		}
	}
	return Asset{Symbol: symbol, Name: symbol, Category: "Other"}
}
