package symbol

import "strings"

// Build derives the exchange trading symbol from an asset and the quote
// currency, e.g. ("btc", "TMN") -> "BTCTMN".
func Build(asset, quote string) string {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if asset == "" || quote == "" {
		return ""
	}
	return asset + quote
}

// Symbol is the split form of a trading symbol.
type Symbol struct {
	Base  string
	Quote string
}

func (s Symbol) String() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + s.Quote
}

// Display renders the pair with a slash separator for logs and reports.
func (s Symbol) Display() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + "/" + s.Quote
}

// Parse splits a concatenated symbol using a known quote currency suffix.
// Returns the zero Symbol when no suffix matches.
func Parse(s string, quotes ...string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}
	if len(quotes) == 0 {
		quotes = []string{"TMN", "USDT", "BTC"}
	}
	for _, quote := range quotes {
		quote = strings.ToUpper(strings.TrimSpace(quote))
		if quote == "" {
			continue
		}
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{Base: s[:len(s)-len(quote)], Quote: quote}
		}
	}
	return Symbol{}
}
