package config

import (
	"fmt"
	"strings"
	"time"

	"maya-shopify-sync/internal/domain/model"
)

type Config struct {
	AppEnv      string
	Maya        MayaConfig
	Shopify     ShopifyConfig
	Sync        SyncConfig
	Server      ServerConfig
	Log         LogConfig
	TelegramBot TelegramBotConfig
}

type MayaConfig struct {
	BaseUrl   string
	ApiKey    string
	ApiSecret string
	PageSize  int
	MaxPages  int
}

type ShopifyConfig struct {
	StoreName string
	BaseUrl   string
	Token     string
	APIVer    string
	RateLimit float64
	RateBurst int
}

// Endpoint returns the store root, e.g. https://acme.myshopify.com.
func (c ShopifyConfig) Endpoint() string {
	if base := strings.TrimRight(strings.TrimSpace(c.BaseUrl), "/"); base != "" {
		return base
	}
	return fmt.Sprintf("https://%s.myshopify.com", strings.TrimSpace(c.StoreName))
}

type SyncConfig struct {
	Concurrency int
	HTTPTimeout time.Duration
	MaxAttempts int
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SyncTimeout     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type TelegramBotConfig struct {
	ChatId string
	Token  string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate checks the credentials a sync run cannot start without.
func (c *Config) Validate() error {
	var missing []string
	for _, item := range []struct {
		key   string
		value string
	}{
		{envMayaApiKey, c.Maya.ApiKey},
		{envMayaApiSecret, c.Maya.ApiSecret},
		{envShopifyStoreName, c.Shopify.StoreName},
		{envShopifyAccessToken, c.Shopify.Token},
	} {
		if strings.TrimSpace(item.value) == "" {
			missing = append(missing, item.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required env var: %s", model.ErrConfiguration, strings.Join(missing, ", "))
	}
	if strings.TrimSpace(c.Shopify.APIVer) == "" {
		return fmt.Errorf("%w: shopify api version is empty", model.ErrConfiguration)
	}
	if c.Sync.Concurrency < 1 {
		c.Sync.Concurrency = 1
	}
	if c.Sync.Concurrency > maxConcurrency {
		c.Sync.Concurrency = maxConcurrency
	}
	if c.Sync.MaxAttempts < 1 {
		c.Sync.MaxAttempts = 1
	}
	if c.Sync.HTTPTimeout <= 0 {
		c.Sync.HTTPTimeout = defaultHTTPTimeout
	}
	return nil
}
