package config

import "strings"

func (c *Config) applyDefaults() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.App.LogLevel) == "" {
		c.App.LogLevel = "info"
	}
	if strings.TrimSpace(c.App.HTTPAddr) == "" {
		c.App.HTTPAddr = ":8880"
	}
	if strings.TrimSpace(c.Trading.TradeAmount) == "" {
		c.Trading.TradeAmount = "60000"
	}
	if strings.TrimSpace(c.Trading.QuoteAsset) == "" {
		c.Trading.QuoteAsset = "TMN"
	}
	if c.Exchange.TimeoutSeconds <= 0 {
		c.Exchange.TimeoutSeconds = 15
	}
	if c.Ingestor.IntervalSeconds <= 0 {
		c.Ingestor.IntervalSeconds = 60
	}
	if c.Ingestor.RequestTimeoutSeconds <= 0 {
		c.Ingestor.RequestTimeoutSeconds = 10
	}
	if c.Executor.IntervalSeconds <= 0 {
		c.Executor.IntervalSeconds = 5
	}
	if c.Executor.SellRetryAlertThreshold <= 0 {
		c.Executor.SellRetryAlertThreshold = 20
	}
	if c.Reaper.IntervalSeconds <= 0 {
		c.Reaper.IntervalSeconds = 30
	}
	if c.Reaper.StaleTimeoutMinutes <= 0 {
		c.Reaper.StaleTimeoutMinutes = 5
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = "data/sarraf.db"
	}
}
