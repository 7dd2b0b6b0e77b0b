package config

// Config is the main configuration carrier for sarraf.
type Config struct {
	App      AppConfig      `toml:"app" yaml:"app"`
	Trading  TradingConfig  `toml:"trading" yaml:"trading"`
	Exchange ExchangeConfig `toml:"exchange" yaml:"exchange"`
	Ingestor IngestorConfig `toml:"ingestor" yaml:"ingestor"`
	Executor ExecutorConfig `toml:"executor" yaml:"executor"`
	Reaper   ReaperConfig   `toml:"reaper" yaml:"reaper"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
	Notify   NotifyConfig   `toml:"notify" yaml:"notify"`
	Operator OperatorConfig `toml:"operator" yaml:"operator"`
}

type AppConfig struct {
	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogPath  string `toml:"log_path" yaml:"log_path"`
	HTTPAddr string `toml:"http_addr" yaml:"http_addr"`
}

// TradingConfig sizes every position. The trade amount is a decimal string
// in the quote currency so no binary float ever touches it.
type TradingConfig struct {
	TradeAmount string `toml:"trade_amount" yaml:"trade_amount"`
	QuoteAsset  string `toml:"quote_asset" yaml:"quote_asset"`
}

type ExchangeConfig struct {
	BaseURL        string `toml:"base_url" yaml:"base_url"`
	APIKey         string `toml:"api_key" yaml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

type IngestorConfig struct {
	IntervalSeconds       int               `toml:"interval_seconds" yaml:"interval_seconds"`
	RequestTimeoutSeconds int               `toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	Sources               map[string]string `toml:"sources" yaml:"sources"`
	SourcesFile           string            `toml:"sources_file" yaml:"sources_file"`
}

type ExecutorConfig struct {
	IntervalSeconds int `toml:"interval_seconds" yaml:"interval_seconds"`
	// SellRetryAlertThreshold controls when a sell order that keeps failing
	// to place raises an operator notice. It never flips the signal to an
	// error state; funds are already committed.
	SellRetryAlertThreshold int `toml:"sell_retry_alert_threshold" yaml:"sell_retry_alert_threshold"`
}

type ReaperConfig struct {
	IntervalSeconds     int `toml:"interval_seconds" yaml:"interval_seconds"`
	StaleTimeoutMinutes int `toml:"stale_timeout_minutes" yaml:"stale_timeout_minutes"`
}

type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram" yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	BotToken string `toml:"bot_token" yaml:"bot_token"`
	ChatID   string `toml:"chat_id" yaml:"chat_id"`
}

// OperatorConfig enables the chat front-end. The bot token is read from
// the TELEGRAM_BOT_TOKEN environment variable (.env supported), never
// from the config file.
type OperatorConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}
