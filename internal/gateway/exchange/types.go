package exchange

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderState is the closed set of order states the bot distinguishes. The
// venue may introduce new vocabulary at any time, so anything unrecognized
// maps to OrderStateUnknown and is treated as "still open, check again",
// never as terminal.
type OrderState string

const (
	OrderStateNew      OrderState = "NEW"
	OrderStateFilled   OrderState = "FILLED"
	OrderStateCanceled OrderState = "CANCELED"
	OrderStateUnknown  OrderState = "UNKNOWN"
)

// ParseOrderState maps the venue's raw status string onto OrderState.
func ParseOrderState(raw string) OrderState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NEW":
		return OrderStateNew
	case "FILLED", "DONE":
		return OrderStateFilled
	case "CANCELED", "CANCELLED":
		return OrderStateCanceled
	default:
		return OrderStateUnknown
	}
}

// OrderSnapshot is the gateway's view of one order at query time.
type OrderSnapshot struct {
	ClientOrderID    string
	State            OrderState
	ExecutedQuantity decimal.Decimal
	Fee              decimal.Decimal
}

// Filled reports whether the order completed in full.
func (s OrderSnapshot) Filled() bool { return s.State == OrderStateFilled }
