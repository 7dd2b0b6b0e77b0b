// Package executor advances every trade signal through its buy-then-sell
// lifecycle. Each cycle runs four phases in order: place buys, reconcile
// buys, place sells, reconcile sells. Phases only communicate through the
// signal rows, so a crash between any two phases is recoverable by simply
// running the next cycle.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sarraf/internal/gateway/exchange"
	"sarraf/internal/gateway/notifier"
	"sarraf/internal/logger"
	"sarraf/internal/pkg/symbol"
	"sarraf/internal/pkg/trading"
	"sarraf/internal/store"
	"sarraf/internal/types"

	"github.com/shopspring/decimal"
)

const defaultSellRetryAlertThreshold = 20

type Executor struct {
	signals  store.SignalStore
	events   store.EventStore
	exchange exchange.Exchange
	notify   notifier.TextNotifier

	precisions  types.PrecisionTable
	tradeAmount decimal.Decimal
	quoteAsset  string

	sellRetryAlertThreshold int

	mu          sync.Mutex
	sellRetries map[int64]int
	alerted     map[int64]bool
}

func New(
	signals store.SignalStore,
	events store.EventStore,
	ex exchange.Exchange,
	notify notifier.TextNotifier,
	precisions types.PrecisionTable,
	tradeAmount decimal.Decimal,
	quoteAsset string,
	sellRetryAlertThreshold int,
) *Executor {
	if notify == nil {
		notify = notifier.Noop{}
	}
	if sellRetryAlertThreshold <= 0 {
		sellRetryAlertThreshold = defaultSellRetryAlertThreshold
	}
	return &Executor{
		signals:                 signals,
		events:                  events,
		exchange:                ex,
		notify:                  notify,
		precisions:              precisions,
		tradeAmount:             tradeAmount,
		quoteAsset:              quoteAsset,
		sellRetryAlertThreshold: sellRetryAlertThreshold,
		sellRetries:             make(map[int64]int),
		alerted:                 make(map[int64]bool),
	}
}

// RunCycle executes one pass over all four phases. Safe to call on any
// schedule; every step is idempotent against replays.
func (e *Executor) RunCycle(ctx context.Context) {
	e.runPhase(ctx, types.StatusNewSignal, e.placeBuy)
	e.runPhase(ctx, types.StatusBuyOrderPlaced, e.reconcileBuy)
	e.runPhase(ctx, types.StatusBuyOrderFilled, e.placeSell)
	e.runPhase(ctx, types.StatusSellOrderPlaced, e.reconcileSell)
}

func (e *Executor) runPhase(ctx context.Context, status types.Status, handle func(ctx context.Context, sig types.TradeSignal)) {
	signals, err := e.signals.SignalsByStatus(ctx, status)
	if err != nil {
		logger.Errorf("executor: listing %s signals failed: %v", status, err)
		return
	}
	for _, sig := range signals {
		e.handleOne(ctx, sig, handle)
	}
}

// handleOne isolates a single signal: a panic while processing it marks
// that signal failed and the cycle moves on to the next one.
func (e *Executor) handleOne(ctx context.Context, sig types.TradeSignal, handle func(ctx context.Context, sig types.TradeSignal)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("executor: signal %d panicked: %v", sig.ID, r)
			e.failSignal(ctx, sig, fmt.Sprintf("internal error: %v", r))
		}
	}()
	handle(ctx, sig)
}

// ---------------------------- Phase 1: place buys ----------------------------

func (e *Executor) placeBuy(ctx context.Context, sig types.TradeSignal) {
	if sig.EntryPrice.Sign() <= 0 {
		e.failSignal(ctx, sig, "invalid entry price")
		return
	}

	sym := e.symbolFor(sig)
	prec, ok := e.precisions.Lookup(sym)
	if !ok {
		e.failSignal(ctx, sig, fmt.Sprintf("no precision rules for symbol %s", sym))
		return
	}

	raw := trading.QuantityForBudget(e.tradeAmount, sig.EntryPrice)
	formatted := trading.FloorToPrecision(raw, prec.AmountPrecision)
	if formatted.Sign() <= 0 {
		e.failSignal(ctx, sig, fmt.Sprintf("amount too small: budget %s at price %s rounds to zero for %s", e.tradeAmount, sig.EntryPrice, sym))
		return
	}

	orderID, err := e.exchange.PlaceOrder(ctx, sym, sig.EntryPrice, formatted, exchange.SideBuy)
	if err != nil {
		// No funds are committed yet; a rejected buy kills this signal and a
		// fresh one must be re-ingested.
		e.failSignal(ctx, sig, fmt.Sprintf("failed to place buy order: %v", err))
		return
	}

	if err := e.signals.MarkBuyPlaced(ctx, sig.ID, orderID, raw, formatted); err != nil {
		logger.Errorf("executor: persisting buy placement for signal %d failed: %v", sig.ID, err)
		return
	}
	e.appendEvent(ctx, sig.ID, sig.Status, types.StatusBuyOrderPlaced,
		fmt.Sprintf("buy order %s placed qty=%s price=%s", orderID, formatted, sig.EntryPrice))
	logger.Infof("executor: signal %d buy placed order=%s symbol=%s qty=%s", sig.ID, orderID, sym, formatted)
}

// -------------------------- Phase 2: reconcile buys --------------------------

func (e *Executor) reconcileBuy(ctx context.Context, sig types.TradeSignal) {
	snap, err := e.exchange.OrderStatus(ctx, sig.BuyClientOrderID)
	if err != nil {
		logger.Warnf("executor: buy status for signal %d failed: %v", sig.ID, err)
		return
	}
	switch snap.State {
	case exchange.OrderStateFilled:
		net := trading.NetQuantity(snap.ExecutedQuantity, snap.Fee)
		if err := e.signals.MarkBuyFilled(ctx, sig.ID, net, snap.Fee); err != nil {
			logger.Errorf("executor: persisting buy fill for signal %d failed: %v", sig.ID, err)
			return
		}
		e.appendEvent(ctx, sig.ID, sig.Status, types.StatusBuyOrderFilled,
			fmt.Sprintf("buy filled executed=%s fee=%s net=%s", snap.ExecutedQuantity, snap.Fee, net))
		logger.Infof("executor: signal %d buy filled net=%s", sig.ID, net)
	case exchange.OrderStateCanceled:
		// Canceled on the venue side without our reaper doing it.
		if err := e.signals.MarkCanceled(ctx, sig.ID, "buy order canceled on exchange"); err != nil {
			logger.Errorf("executor: persisting buy cancel for signal %d failed: %v", sig.ID, err)
			return
		}
		e.appendEvent(ctx, sig.ID, sig.Status, types.StatusCanceledTimeout, "buy order canceled on exchange")
	default:
		// NEW or UNKNOWN: still open as far as we know, check again later.
	}
}

// --------------------------- Phase 3: place sells ----------------------------

// placeSell treats venue rejection as transient: the buy already filled,
// so the asset is held and must eventually be sold. Repeated placement
// failures raise an operator alert instead of flipping to the error
// state. Bad position data, on the other hand, can never become sellable
// by retrying and is terminal.
func (e *Executor) placeSell(ctx context.Context, sig types.TradeSignal) {
	if sig.BuyExecutedQuantity.Sign() <= 0 {
		e.failSignal(ctx, sig, fmt.Sprintf("invalid net buy quantity %s", sig.BuyExecutedQuantity))
		return
	}
	sym := e.symbolFor(sig)
	prec, ok := e.precisions.Lookup(sym)
	if !ok {
		e.failSignal(ctx, sig, fmt.Sprintf("no precision rules for symbol %s", sym))
		return
	}

	qty := trading.FloorToPrecision(sig.BuyExecutedQuantity, prec.AmountPrecision)
	if qty.Sign() <= 0 {
		e.failSignal(ctx, sig, fmt.Sprintf("amount too small: net quantity %s rounds to zero for %s", sig.BuyExecutedQuantity, sym))
		return
	}

	orderID, err := e.exchange.PlaceOrder(ctx, sym, sig.ExitPrice, qty, exchange.SideSell)
	if err != nil {
		e.noteSellTrouble(sig, err.Error())
		return
	}

	if err := e.signals.MarkSellPlaced(ctx, sig.ID, orderID); err != nil {
		logger.Errorf("executor: persisting sell placement for signal %d failed: %v", sig.ID, err)
		return
	}
	e.clearSellTrouble(sig.ID)
	e.appendEvent(ctx, sig.ID, sig.Status, types.StatusSellOrderPlaced,
		fmt.Sprintf("sell order %s placed qty=%s price=%s", orderID, qty, sig.ExitPrice))
	logger.Infof("executor: signal %d sell placed order=%s qty=%s", sig.ID, orderID, qty)
}

// -------------------------- Phase 4: reconcile sells -------------------------

func (e *Executor) reconcileSell(ctx context.Context, sig types.TradeSignal) {
	snap, err := e.exchange.OrderStatus(ctx, sig.SellClientOrderID)
	if err != nil {
		logger.Warnf("executor: sell status for signal %d failed: %v", sig.ID, err)
		return
	}
	switch snap.State {
	case exchange.OrderStateFilled:
		note := "trade completed successfully"
		if err := e.signals.MarkSellFilled(ctx, sig.ID, snap.ExecutedQuantity, snap.Fee, note); err != nil {
			logger.Errorf("executor: persisting sell fill for signal %d failed: %v", sig.ID, err)
			return
		}
		e.appendEvent(ctx, sig.ID, sig.Status, types.StatusSellOrderFilled, note)
		logger.Infof("executor: signal %d completed asset=%s", sig.ID, sig.AssetName)
		msg := notifier.StructuredMessage{
			Icon:  "✅",
			Title: fmt.Sprintf("%s trade complete", sig.AssetName),
			Sections: []notifier.MessageSection{{
				Lines: []string{
					"entry: " + sig.EntryPrice.String(),
					"exit: " + sig.ExitPrice.String(),
					"sold: " + snap.ExecutedQuantity.String(),
					"fee: " + snap.Fee.String(),
				},
			}},
			Timestamp: time.Now(),
		}
		e.sendAlert(msg.RenderMarkdown())
	case exchange.OrderStateCanceled:
		// The sell vanished but the asset is still held. Hand it to the
		// operator rather than pretending the cycle finished.
		logger.Errorf("executor: signal %d sell order %s canceled on exchange, manual intervention needed",
			sig.ID, sig.SellClientOrderID)
		e.sendAlert(fmt.Sprintf("⚠️ sell order for %s was canceled on the exchange, position still held (signal %d)",
			sig.AssetName, sig.ID))
	default:
	}
}

// ------------------------------- Helpers -------------------------------------

// symbolFor derives the trading symbol from the asset and the configured
// quote currency. The feed's pair field is display metadata only; trusting
// it verbatim would break the precision lookup for forms like "DOGS/TMN".
func (e *Executor) symbolFor(sig types.TradeSignal) string {
	return symbol.Build(sig.AssetName, e.quoteAsset)
}

func (e *Executor) failSignal(ctx context.Context, sig types.TradeSignal, note string) {
	if err := e.signals.MarkError(ctx, sig.ID, note); err != nil {
		logger.Errorf("executor: marking signal %d failed errored: %v", sig.ID, err)
		return
	}
	e.appendEvent(ctx, sig.ID, sig.Status, types.StatusError, note)
	logger.Errorf("executor: signal %d (%s) failed: %s", sig.ID, sig.AssetName, note)
}

// noteSellTrouble counts consecutive sell placement failures and alerts
// the operator once the threshold is crossed.
func (e *Executor) noteSellTrouble(sig types.TradeSignal, reason string) {
	logger.Warnf("executor: sell placement for signal %d deferred: %s", sig.ID, reason)

	e.mu.Lock()
	e.sellRetries[sig.ID]++
	count := e.sellRetries[sig.ID]
	shouldAlert := count >= e.sellRetryAlertThreshold && !e.alerted[sig.ID]
	if shouldAlert {
		e.alerted[sig.ID] = true
	}
	e.mu.Unlock()

	if shouldAlert {
		e.sendAlert(fmt.Sprintf("⚠️ sell order for %s has failed %d times (signal %d): %s",
			sig.AssetName, count, sig.ID, reason))
	}
}

func (e *Executor) clearSellTrouble(id int64) {
	e.mu.Lock()
	delete(e.sellRetries, id)
	delete(e.alerted, id)
	e.mu.Unlock()
}

func (e *Executor) sendAlert(text string) {
	if err := e.notify.SendText(text); err != nil {
		logger.Warnf("executor: alert delivery failed: %v", err)
	}
}

func (e *Executor) appendEvent(ctx context.Context, signalID int64, from, to types.Status, note string) {
	if e.events == nil {
		return
	}
	evt := store.SignalEvent{
		SignalID:   signalID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.events.AppendSignalEvent(ctx, evt); err != nil {
		logger.Warnf("executor: event append for signal %d failed: %v", signalID, err)
	}
}
