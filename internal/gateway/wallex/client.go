// Package wallex implements the exchange gateway against the Wallex REST
// API. All money amounts cross the wire as decimal strings.
package wallex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"sarraf/internal/gateway/exchange"
	"sarraf/internal/logger"
	"sarraf/internal/types"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	pathMarkets = "/hector/web/v1/markets"
	pathOrders  = "/v1/account/orders"
)

type Client struct {
	cfg  Config
	http *http.Client
}

var _ exchange.Exchange = (*Client)(nil)

func New(cfg Config) *Client {
	final := cfg.withDefaults()
	return &Client{
		cfg:  final,
		http: &http.Client{Timeout: final.HTTPTimeout},
	}
}

func (c *Client) Name() string { return "wallex" }

// LoadMarketPrecisions fetches the market catalog and keeps every entry
// that declares both a symbol and an amount precision.
func (c *Client) LoadMarketPrecisions(ctx context.Context) (types.PrecisionTable, error) {
	body, status, err := c.do(ctx, http.MethodGet, pathMarkets, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching market catalog failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("market catalog returned status %d", status)
	}
	table := make(types.PrecisionTable)
	gjson.GetBytes(body, "result.markets").ForEach(func(_, market gjson.Result) bool {
		sym := market.Get("symbol").String()
		amount := market.Get("amount_precision")
		if sym == "" || !amount.Exists() {
			return true
		}
		table[sym] = types.MarketPrecision{
			AmountPrecision: int(amount.Int()),
			PricePrecision:  int(market.Get("price_precision").Int()),
		}
		return true
	})
	logger.Infof("[wallex] loaded precision rules for %d markets", table.Len())
	return table, nil
}

// PlaceOrder submits a limit order and returns the clientOrderId from the
// response envelope. Success is HTTP 201 plus the success flag.
func (c *Client) PlaceOrder(ctx context.Context, symbol string, price, quantity decimal.Decimal, side exchange.Side) (string, error) {
	payload := map[string]string{
		"symbol":   symbol,
		"price":    price.String(),
		"quantity": quantity.String(),
		"side":     string(side),
		"type":     "limit",
	}
	logger.Infof("[wallex] placing %s %s %s @ %s", side, quantity, symbol, price)
	body, status, err := c.do(ctx, http.MethodPost, pathOrders, payload)
	if err != nil {
		return "", fmt.Errorf("placing order failed: %w", err)
	}
	if status != http.StatusCreated || !gjson.GetBytes(body, "success").Bool() {
		return "", fmt.Errorf("order rejected: status=%d body=%s", status, truncate(body))
	}
	id := gjson.GetBytes(body, "result.clientOrderId").String()
	if id == "" {
		return "", fmt.Errorf("order accepted but clientOrderId missing: %s", truncate(body))
	}
	return id, nil
}

// OrderStatus fetches one order by correlation id.
func (c *Client) OrderStatus(ctx context.Context, clientOrderID string) (exchange.OrderSnapshot, error) {
	body, status, err := c.do(ctx, http.MethodGet, pathOrders+"/"+clientOrderID, nil)
	if err != nil {
		return exchange.OrderSnapshot{}, fmt.Errorf("order status query failed: %w", err)
	}
	if status != http.StatusOK || !gjson.GetBytes(body, "success").Bool() {
		return exchange.OrderSnapshot{}, fmt.Errorf("order %s status unavailable: status=%d body=%s", clientOrderID, status, truncate(body))
	}
	result := gjson.GetBytes(body, "result")
	return exchange.OrderSnapshot{
		ClientOrderID:    clientOrderID,
		State:            exchange.ParseOrderState(result.Get("status").String()),
		ExecutedQuantity: decOrZero(result.Get("executedQty").String()),
		Fee:              decOrZero(result.Get("fee").String()),
	}, nil
}

// CancelOrder asks the venue to cancel an open order. Wallex expects the
// clientOrderId in a JSON body on a DELETE request.
func (c *Client) CancelOrder(ctx context.Context, clientOrderID string) error {
	payload := map[string]string{"clientOrderId": clientOrderID}
	body, status, err := c.do(ctx, http.MethodDelete, pathOrders, payload)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	if status != http.StatusOK || !gjson.GetBytes(body, "success").Bool() {
		return fmt.Errorf("cancel of %s rejected: status=%d body=%s", clientOrderID, status, truncate(body))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func decOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func truncate(body []byte) string {
	const max = 256
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
