// Package store defines the persistence contracts consumed by the three
// loops. All coordination between loops happens through these row states.
package store

import (
	"context"
	"time"

	"sarraf/internal/types"

	"github.com/shopspring/decimal"
)

// SignalStore is the trade-signal table. Every Mark* call guards on the
// expected current status, so replaying a phase against a row that already
// moved on is a no-op.
type SignalStore interface {
	InsertSignal(ctx context.Context, sig types.TradeSignal) (int64, error)
	SignalByID(ctx context.Context, id int64) (types.TradeSignal, bool, error)
	SignalsByStatus(ctx context.Context, status types.Status) ([]types.TradeSignal, error)
	RecentSignals(ctx context.Context, limit int) ([]types.TradeSignal, error)

	// ActiveSignalExists reports whether a non-terminal signal already
	// holds a position for the asset.
	ActiveSignalExists(ctx context.Context, assetName string) (bool, error)

	MarkBuyPlaced(ctx context.Context, id int64, clientOrderID string, raw, formatted decimal.Decimal) error
	MarkBuyFilled(ctx context.Context, id int64, netQuantity, fee decimal.Decimal) error
	MarkSellPlaced(ctx context.Context, id int64, clientOrderID string) error
	MarkSellFilled(ctx context.Context, id int64, executed, fee decimal.Decimal, note string) error
	MarkCanceled(ctx context.Context, id int64, note string) error
	MarkError(ctx context.Context, id int64, note string) error
}

// EventStore is the append-only transition audit trail.
type EventStore interface {
	AppendSignalEvent(ctx context.Context, evt SignalEvent) error
	ListSignalEvents(ctx context.Context, signalID int64, limit int) ([]SignalEvent, error)
}

// SignalEvent records one observed status transition with an optional raw
// payload (e.g. the feed opportunity that produced the signal).
type SignalEvent struct {
	EventID    string
	SignalID   int64
	FromStatus types.Status
	ToStatus   types.Status
	Note       string
	Payload    []byte
	CreatedAt  time.Time
}

// BotUser is an operator account for the chat front-end.
type BotUser struct {
	ID             int64
	TelegramUserID int64
	Username       string
	HashedPassword string
	IsAdmin        bool
	CreatedAt      time.Time
}

// UserStore backs operator registration and login.
type UserStore interface {
	CreateUser(ctx context.Context, user BotUser) (int64, error)
	UserByUsername(ctx context.Context, username string) (BotUser, bool, error)
	UserByTelegramID(ctx context.Context, telegramID int64) (BotUser, bool, error)
	CountUsers(ctx context.Context) (int64, error)
}
