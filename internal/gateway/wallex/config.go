package wallex

import (
	"strings"
	"time"
)

const defaultBaseURL = "https://api.wallex.ir"

type Config struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = defaultBaseURL
	}
	out.APIKey = strings.TrimSpace(out.APIKey)
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	return out
}
