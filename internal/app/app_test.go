package app

import (
	"context"
	"fmt"
	"testing"

	"sarraf/internal/config"
	"sarraf/internal/gateway/exchange"
	"sarraf/internal/store/gormstore"
	"sarraf/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExchange struct {
	precisions types.PrecisionTable
	loadErr    error
}

func (s *stubExchange) Name() string { return "stub" }

func (s *stubExchange) LoadMarketPrecisions(ctx context.Context) (types.PrecisionTable, error) {
	return s.precisions, s.loadErr
}

func (s *stubExchange) PlaceOrder(ctx context.Context, symbol string, price, quantity decimal.Decimal, side exchange.Side) (string, error) {
	return "", fmt.Errorf("not used")
}

func (s *stubExchange) OrderStatus(ctx context.Context, clientOrderID string) (exchange.OrderSnapshot, error) {
	return exchange.OrderSnapshot{}, fmt.Errorf("not used")
}

func (s *stubExchange) CancelOrder(ctx context.Context, clientOrderID string) error {
	return fmt.Errorf("not used")
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Ingestor.Sources = map[string]string{"feed": "http://127.0.0.1:1/feed"}
	return &cfg
}

func TestBuildFailsWhenPrecisionBootstrapFails(t *testing.T) {
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	ex := &stubExchange{loadErr: fmt.Errorf("venue down")}

	b := NewAppBuilder(testConfig(), WithExchange(ex), WithStore(st))
	_, err = b.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precision bootstrap")
}

func TestBuildWiresAllLoops(t *testing.T) {
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	ex := &stubExchange{precisions: types.PrecisionTable{
		"DOGSTMN": {AmountPrecision: 2},
	}}

	b := NewAppBuilder(testConfig(), WithExchange(ex), WithStore(st))
	a, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Len(t, a.loops, 3)
	assert.NotNil(t, a.statusHTTP)
	assert.Nil(t, a.bot)
}

func TestBuildRequiresSources(t *testing.T) {
	st, err := gormstore.NewMemoryStore()
	require.NoError(t, err)
	ex := &stubExchange{precisions: types.PrecisionTable{}}

	cfg := config.Default()
	b := NewAppBuilder(&cfg, WithExchange(ex), WithStore(st))
	_, err = b.Build(context.Background())
	assert.Error(t, err)
}
