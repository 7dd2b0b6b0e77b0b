// Package ingestor polls the configured opportunity feeds and turns each
// new opportunity into a persisted trade signal. It never talks to the
// exchange; order placement is the executor's job.
package ingestor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"sarraf/internal/logger"
	"sarraf/internal/store"
	"sarraf/internal/types"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

const maxFeedBody = 4 << 20

type feedPayload struct {
	Opportunities []opportunity `json:"opportunities"`
}

type opportunity struct {
	AssetName    string          `json:"asset_name"`
	Pair         string          `json:"pair"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	ExitPrice    decimal.Decimal `json:"exit_price"`
	StrategyName string          `json:"strategy_name"`
}

type Ingestor struct {
	sources map[string]string
	signals store.SignalStore
	events  store.EventStore
	client  *http.Client
	schema  *jsonschema.Schema
}

func New(sources map[string]string, signals store.SignalStore, events store.EventStore, timeout time.Duration) *Ingestor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Ingestor{
		sources: sources,
		signals: signals,
		events:  events,
		client:  &http.Client{Timeout: timeout},
		schema:  compileFeedSchema(),
	}
}

// Poll runs one ingestion cycle over every source. A failing source only
// loses its own cycle; the others still run.
func (i *Ingestor) Poll(ctx context.Context) {
	names := make([]string, 0, len(i.sources))
	for name := range i.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := i.pollSource(ctx, name, i.sources[name]); err != nil {
			logger.Warnf("ingestor: source %s failed: %v", name, err)
		}
	}
}

func (i *Ingestor) pollSource(ctx context.Context, name, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := i.schema.Validate(raw); err != nil {
		return fmt.Errorf("payload rejected: %w", err)
	}

	var feed feedPayload
	if err := json.Unmarshal(body, &feed); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	for _, opp := range feed.Opportunities {
		i.handleOpportunity(ctx, name, opp)
	}
	return nil
}

func (i *Ingestor) handleOpportunity(ctx context.Context, source string, opp opportunity) {
	// Normalized once here so the dedup lookup and the insert agree on
	// case. Feeds send whatever casing they like.
	asset := strings.ToUpper(strings.TrimSpace(opp.AssetName))
	if asset == "" {
		logger.Warnf("ingestor: %s sent an opportunity without an asset name, skipped", source)
		return
	}

	active, err := i.signals.ActiveSignalExists(ctx, asset)
	if err != nil {
		logger.Errorf("ingestor: active check for %s failed: %v", asset, err)
		return
	}
	if active {
		logger.Debugf("ingestor: %s already has an active signal, skipped", asset)
		return
	}

	sig := types.TradeSignal{
		AssetName:    asset,
		Pair:         strings.TrimSpace(opp.Pair),
		StrategyName: strings.TrimSpace(opp.StrategyName),
		EntryPrice:   opp.EntryPrice,
		ExitPrice:    opp.ExitPrice,
		Status:       types.StatusNewSignal,
	}
	id, err := i.signals.InsertSignal(ctx, sig)
	if err != nil {
		logger.Errorf("ingestor: insert signal for %s failed: %v", asset, err)
		return
	}

	payload, _ := json.Marshal(opp)
	evt := store.SignalEvent{
		SignalID: id,
		ToStatus: types.StatusNewSignal,
		Note:     fmt.Sprintf("ingested from %s", source),
		Payload:  payload,
	}
	if err := i.events.AppendSignalEvent(ctx, evt); err != nil {
		logger.Warnf("ingestor: event append for signal %d failed: %v", id, err)
	}
	logger.Infof("ingestor: new signal id=%d asset=%s entry=%s exit=%s source=%s",
		id, asset, opp.EntryPrice, opp.ExitPrice, source)
}
