// Package exchange defines the stateless facade over the trading venue's
// REST surface. The gateway never retries; every call is independently
// retryable by the caller on its next cycle.
package exchange

import (
	"context"

	"sarraf/internal/types"

	"github.com/shopspring/decimal"
)

type Exchange interface {
	Name() string

	// LoadMarketPrecisions fetches the full market catalog and builds the
	// symbol precision table. Failure here is fatal to the caller's
	// startup: no order can be safely sized without it.
	LoadMarketPrecisions(ctx context.Context) (types.PrecisionTable, error)

	// PlaceOrder submits a limit order. Price and quantity are serialized
	// as exact decimal strings. Returns the correlation id used for all
	// later status and cancel calls.
	PlaceOrder(ctx context.Context, symbol string, price, quantity decimal.Decimal, side Side) (string, error)

	// OrderStatus fetches the current state of an order by correlation id.
	OrderStatus(ctx context.Context, clientOrderID string) (OrderSnapshot, error)

	// CancelOrder requests cancellation of an open order.
	CancelOrder(ctx context.Context, clientOrderID string) error
}
