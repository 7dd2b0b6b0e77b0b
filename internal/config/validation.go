package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Trading.TradeAmount))
	if err != nil {
		return fmt.Errorf("trading.trade_amount is not a decimal: %q", c.Trading.TradeAmount)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("trading.trade_amount must be positive, got %s", amount)
	}
	if strings.TrimSpace(c.Trading.QuoteAsset) == "" {
		return fmt.Errorf("trading.quote_asset is required")
	}
	if len(c.Ingestor.Sources) == 0 && strings.TrimSpace(c.Ingestor.SourcesFile) == "" {
		return fmt.Errorf("at least one signal source is required (ingestor.sources or ingestor.sources_file)")
	}
	for name, url := range c.Ingestor.Sources {
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("ingestor.sources[%s] has an empty url", name)
		}
	}
	if c.Notify.Telegram.Enabled {
		if strings.TrimSpace(c.Notify.Telegram.BotToken) == "" || strings.TrimSpace(c.Notify.Telegram.ChatID) == "" {
			return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
		}
	}
	return nil
}

// TradeAmountDecimal returns the validated per-position budget.
func (c *Config) TradeAmountDecimal() decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.Trading.TradeAmount))
	if err != nil {
		return decimal.Zero
	}
	return amount
}
