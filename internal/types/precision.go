package types

// MarketPrecision carries the exchange-declared maximum number of
// fractional digits for one market's amount and price fields.
type MarketPrecision struct {
	AmountPrecision int
	PricePrecision  int
}

// PrecisionTable maps symbol to its precision rules. It is built once at
// startup from the exchange market catalog and never mutated afterwards;
// a precision changing exchange-side mid-run is an accepted staleness
// window.
type PrecisionTable map[string]MarketPrecision

// Lookup returns the precision for a symbol and whether it exists.
func (t PrecisionTable) Lookup(symbol string) (MarketPrecision, bool) {
	p, ok := t[symbol]
	return p, ok
}

func (t PrecisionTable) Len() int { return len(t) }
