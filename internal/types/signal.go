// Package types holds the core domain model shared by the ingestor,
// executor and reaper: the trade signal and its lifecycle states.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a trade signal. Transitions are
// one-directional; no state is revisited except via StatusError.
type Status string

const (
	StatusNewSignal       Status = "NEW_SIGNAL"
	StatusBuyOrderPlaced  Status = "BUY_ORDER_PLACED"
	StatusBuyOrderFilled  Status = "BUY_ORDER_FILLED"
	StatusSellOrderPlaced Status = "SELL_ORDER_PLACED"
	StatusSellOrderFilled Status = "SELL_ORDER_FILLED"
	StatusCanceledTimeout Status = "CANCELED_TIMEOUT"
	StatusError           Status = "ERROR"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusSellOrderFilled, StatusCanceledTimeout, StatusError:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ActiveStatuses lists every non-terminal status. A signal in one of these
// states blocks new signals for the same asset.
func ActiveStatuses() []Status {
	return []Status{
		StatusNewSignal,
		StatusBuyOrderPlaced,
		StatusBuyOrderFilled,
		StatusSellOrderPlaced,
	}
}

var allowedTransitions = map[Status][]Status{
	StatusNewSignal:       {StatusBuyOrderPlaced, StatusError},
	StatusBuyOrderPlaced:  {StatusBuyOrderFilled, StatusCanceledTimeout, StatusError},
	StatusBuyOrderFilled:  {StatusSellOrderPlaced, StatusError},
	StatusSellOrderPlaced: {StatusSellOrderFilled, StatusError},
}

// CanTransition reports whether moving from one status to another follows
// the lifecycle table. Terminal states allow nothing.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TradeSignal is the persistent unit of work: one buy-then-sell cycle for
// a single asset. Quantities and prices are exact decimals; they are never
// passed through binary floats.
type TradeSignal struct {
	ID           int64
	AssetName    string
	Pair         string
	StrategyName string

	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal

	Status Status

	// Correlation ids assigned at order placement; empty until then.
	BuyClientOrderID  string
	SellClientOrderID string

	BuyQuantityRaw       decimal.Decimal
	BuyQuantityFormatted decimal.Decimal
	BuyExecutedQuantity  decimal.Decimal
	BuyFee               decimal.Decimal
	SellExecutedQuantity decimal.Decimal
	SellFee              decimal.Decimal

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Age returns how long ago the signal was created. Both sides of the
// subtraction are on the UTC epoch basis, so naive-timestamp drift cannot
// creep in.
func (s TradeSignal) Age(now time.Time) time.Duration {
	return now.UTC().Sub(s.CreatedAt.UTC())
}
