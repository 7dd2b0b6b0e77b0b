package reaper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sarraf/internal/gateway/exchange"
	"sarraf/internal/store/gormstore"
	"sarraf/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cancelOnlyExchange struct {
	cancelled []string
	cancelErr error
}

func (f *cancelOnlyExchange) Name() string { return "fake" }

func (f *cancelOnlyExchange) LoadMarketPrecisions(ctx context.Context) (types.PrecisionTable, error) {
	return nil, nil
}

func (f *cancelOnlyExchange) PlaceOrder(ctx context.Context, symbol string, price, quantity decimal.Decimal, side exchange.Side) (string, error) {
	return "", fmt.Errorf("not used")
}

func (f *cancelOnlyExchange) OrderStatus(ctx context.Context, clientOrderID string) (exchange.OrderSnapshot, error) {
	return exchange.OrderSnapshot{}, fmt.Errorf("not used")
}

func (f *cancelOnlyExchange) CancelOrder(ctx context.Context, clientOrderID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, clientOrderID)
	return nil
}

func placedSignal(t *testing.T, st *gormstore.GormStore, orderID string, createdAt time.Time) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := st.InsertSignal(ctx, types.TradeSignal{
		AssetName:  "DOGS",
		EntryPrice: decimal.RequireFromString("100000"),
		ExitPrice:  decimal.RequireFromString("105000"),
		Status:     types.StatusNewSignal,
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, st.MarkBuyPlaced(ctx, id, orderID, decimal.RequireFromString("0.6"), decimal.RequireFromString("0.6")))
	return id
}

func status(t *testing.T, st *gormstore.GormStore, id int64) types.Status {
	t.Helper()
	sig, found, err := st.SignalByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	return sig.Status
}

func TestStaleBuyOrderIsCanceled(t *testing.T) {
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	ex := &cancelOnlyExchange{}

	now := time.Now()
	stale := placedSignal(t, st, "buy-stale", now.Add(-10*time.Minute))
	fresh := placedSignal(t, st, "buy-fresh", now.Add(-1*time.Minute))

	r := New(st, st, ex, 5*time.Minute)
	r.nowFn = func() time.Time { return now }
	r.RunCycle(context.Background())

	assert.Equal(t, types.StatusCanceledTimeout, status(t, st, stale))
	assert.Equal(t, types.StatusBuyOrderPlaced, status(t, st, fresh))
	assert.Equal(t, []string{"buy-stale"}, ex.cancelled)

	events, err := st.ListSignalEvents(context.Background(), stale, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.StatusCanceledTimeout, events[0].ToStatus)
}

func TestCancelFailureLeavesSignalForRetry(t *testing.T) {
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	ex := &cancelOnlyExchange{cancelErr: fmt.Errorf("venue down")}

	now := time.Now()
	id := placedSignal(t, st, "buy-stale", now.Add(-10*time.Minute))

	r := New(st, st, ex, 5*time.Minute)
	r.nowFn = func() time.Time { return now }
	r.RunCycle(context.Background())

	assert.Equal(t, types.StatusBuyOrderPlaced, status(t, st, id))

	// Venue recovers; the next cycle finishes the job.
	ex.cancelErr = nil
	r.RunCycle(context.Background())
	assert.Equal(t, types.StatusCanceledTimeout, status(t, st, id))
}

func TestOtherStatusesAreIgnored(t *testing.T) {
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	ex := &cancelOnlyExchange{}

	now := time.Now()
	id, err := st.InsertSignal(context.Background(), types.TradeSignal{
		AssetName:  "DOGS",
		EntryPrice: decimal.RequireFromString("100000"),
		ExitPrice:  decimal.RequireFromString("105000"),
		Status:     types.StatusNewSignal,
		CreatedAt:  now.Add(-time.Hour),
	})
	require.NoError(t, err)

	r := New(st, st, ex, 5*time.Minute)
	r.nowFn = func() time.Time { return now }
	r.RunCycle(context.Background())

	assert.Equal(t, types.StatusNewSignal, status(t, st, id))
	assert.Empty(t, ex.cancelled)
}
