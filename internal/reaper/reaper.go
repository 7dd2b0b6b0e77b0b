// Package reaper cancels buy orders that sat unfilled past the stale
// timeout. Sell orders are never reaped; once the buy filled, the
// position must be exited, however long that takes.
package reaper

import (
	"context"
	"fmt"
	"time"

	"sarraf/internal/gateway/exchange"
	"sarraf/internal/logger"
	"sarraf/internal/store"
	"sarraf/internal/types"
)

type Reaper struct {
	signals  store.SignalStore
	events   store.EventStore
	exchange exchange.Exchange
	timeout  time.Duration

	nowFn func() time.Time
}

func New(signals store.SignalStore, events store.EventStore, ex exchange.Exchange, staleTimeout time.Duration) *Reaper {
	if staleTimeout <= 0 {
		staleTimeout = 5 * time.Minute
	}
	return &Reaper{
		signals:  signals,
		events:   events,
		exchange: ex,
		timeout:  staleTimeout,
		nowFn:    time.Now,
	}
}

// RunCycle cancels every buy order older than the stale timeout. A failed
// cancel leaves the row untouched; the next cycle tries again.
func (r *Reaper) RunCycle(ctx context.Context) {
	signals, err := r.signals.SignalsByStatus(ctx, types.StatusBuyOrderPlaced)
	if err != nil {
		logger.Errorf("reaper: listing placed buys failed: %v", err)
		return
	}
	now := r.nowFn()
	for _, sig := range signals {
		age := sig.Age(now)
		if age <= r.timeout {
			continue
		}
		r.reap(ctx, sig, age)
	}
}

func (r *Reaper) reap(ctx context.Context, sig types.TradeSignal, age time.Duration) {
	if err := r.exchange.CancelOrder(ctx, sig.BuyClientOrderID); err != nil {
		logger.Warnf("reaper: cancel of order %s (signal %d) failed: %v", sig.BuyClientOrderID, sig.ID, err)
		return
	}
	note := fmt.Sprintf("buy order unfilled after %s, canceled", age.Round(time.Second))
	if err := r.signals.MarkCanceled(ctx, sig.ID, note); err != nil {
		logger.Errorf("reaper: persisting cancel for signal %d failed: %v", sig.ID, err)
		return
	}
	if r.events != nil {
		evt := store.SignalEvent{
			SignalID:   sig.ID,
			FromStatus: sig.Status,
			ToStatus:   types.StatusCanceledTimeout,
			Note:       note,
		}
		if err := r.events.AppendSignalEvent(ctx, evt); err != nil {
			logger.Warnf("reaper: event append for signal %d failed: %v", sig.ID, err)
		}
	}
	logger.Infof("reaper: signal %d canceled, %s", sig.ID, note)
}
