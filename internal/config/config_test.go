package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maya-shopify-sync/internal/domain/model"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MAYA_API_KEY", "key")
	t.Setenv("MAYA_API_SECRET", "secret")
	t.Setenv("SHOPIFY_STORE_NAME", "acme")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.mayamobile.com", cfg.Maya.BaseUrl)
	assert.Equal(t, "2023-01", cfg.Shopify.APIVer)
	assert.Equal(t, "https://acme.myshopify.com", cfg.Shopify.Endpoint())
	assert.Equal(t, 4, cfg.Sync.Concurrency)
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Sync.HTTPTimeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Server.SyncTimeout)
	assert.Less(t, cfg.Server.SyncTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHOPIFY_BASE_URL", "http://127.0.0.1:9999/")
	t.Setenv("SYNC_CONCURRENCY", "6")
	t.Setenv("SYNC_HTTP_TIMEOUT", "3s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9999", cfg.Shopify.Endpoint())
	assert.Equal(t, 6, cfg.Sync.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Sync.HTTPTimeout)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "42", cfg.TelegramBot.ChatId)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Maya:    MayaConfig{ApiKey: "k", ApiSecret: "s"},
			Shopify: ShopifyConfig{StoreName: "acme", Token: "t", APIVer: "2023-01"},
			Sync:    SyncConfig{Concurrency: 4, MaxAttempts: 3, HTTPTimeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		missing string
	}{
		{name: "missing maya key", mutate: func(c *Config) { c.Maya.ApiKey = "" }, missing: "MAYA_API_KEY"},
		{name: "missing maya secret", mutate: func(c *Config) { c.Maya.ApiSecret = " " }, missing: "MAYA_API_SECRET"},
		{name: "missing store", mutate: func(c *Config) { c.Shopify.StoreName = "" }, missing: "SHOPIFY_STORE_NAME"},
		{name: "missing token", mutate: func(c *Config) { c.Shopify.Token = "" }, missing: "SHOPIFY_ACCESS_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}

	t.Run("clamps concurrency", func(t *testing.T) {
		cfg := valid()
		cfg.Sync.Concurrency = 50
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 8, cfg.Sync.Concurrency)

		cfg.Sync.Concurrency = 0
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 1, cfg.Sync.Concurrency)
	})
}

func TestLoadForSync_MissingCredentials(t *testing.T) {
	t.Setenv("MAYA_API_KEY", "")
	t.Setenv("MAYA_API_SECRET", "")
	t.Setenv("SHOPIFY_STORE_NAME", "")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")

	cfg, err := LoadForSync()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
