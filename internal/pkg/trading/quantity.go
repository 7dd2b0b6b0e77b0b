// Package trading provides exact-decimal order sizing helpers.
package trading

import "github.com/shopspring/decimal"

// FloorToPrecision truncates q downward to the given number of fractional
// digits. The result is never larger than the input, so an order sized with
// it can never overspend the configured budget on the buy side nor exceed
// the credited balance on the sell side.
func FloorToPrecision(q decimal.Decimal, precision int) decimal.Decimal {
	if precision < 0 {
		precision = 0
	}
	return q.RoundDown(int32(precision))
}

// NetQuantity returns the quantity actually credited after the exchange
// fee is deducted. Assumes the fee is denominated in the same asset as the
// executed quantity.
func NetQuantity(executed, fee decimal.Decimal) decimal.Decimal {
	return executed.Sub(fee)
}

// QuantityForBudget sizes a buy order: budget in quote currency divided by
// the limit price. Callers must floor-round the result to the market's
// amount precision before submitting.
func QuantityForBudget(budget, price decimal.Decimal) decimal.Decimal {
	if price.Sign() <= 0 {
		return decimal.Zero
	}
	return budget.Div(price)
}
