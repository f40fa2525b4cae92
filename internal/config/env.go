package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envMayaApiKey         = "MAYA_API_KEY"
	envMayaApiSecret      = "MAYA_API_SECRET"
	envShopifyStoreName   = "SHOPIFY_STORE_NAME"
	envShopifyAccessToken = "SHOPIFY_ACCESS_TOKEN"

	defaultHTTPTimeout = 10 * time.Second
	maxConcurrency     = 8
)

var dotEnvFiles = []string{".env.local", ".env"}

// Load reads configuration from the environment, optionally seeded by .env files.
// It never fails on missing credentials; call Validate before a run.
func Load() (*Config, error) {
	if err := loadDotEnv(dotEnvFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindEnvVariables(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv: v.GetString("appEnv"),
		Maya: MayaConfig{
			BaseUrl:   v.GetString("maya.baseUrl"),
			ApiKey:    v.GetString("maya.apiKey"),
			ApiSecret: v.GetString("maya.apiSecret"),
			PageSize:  v.GetInt("maya.pageSize"),
			MaxPages:  v.GetInt("maya.maxPages"),
		},
		Shopify: ShopifyConfig{
			StoreName: v.GetString("shopify.storeName"),
			BaseUrl:   v.GetString("shopify.baseUrl"),
			Token:     v.GetString("shopify.token"),
			APIVer:    v.GetString("shopify.apiVersion"),
			RateLimit: v.GetFloat64("shopify.rateLimit"),
			RateBurst: v.GetInt("shopify.rateBurst"),
		},
		Sync: SyncConfig{
			Concurrency: v.GetInt("sync.concurrency"),
			HTTPTimeout: v.GetDuration("sync.httpTimeout"),
			MaxAttempts: v.GetInt("sync.maxAttempts"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SyncTimeout:     v.GetDuration("server.syncTimeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		TelegramBot: TelegramBotConfig{
			ChatId: v.GetString("telegram.chatId"),
			Token:  v.GetString("telegram.token"),
		},
	}
	return cfg, nil
}

// LoadForSync loads and validates in one step, for the one-shot jobs.
func LoadForSync() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appEnv", "development")

	v.SetDefault("maya.baseUrl", "https://api.mayamobile.com")
	v.SetDefault("maya.pageSize", 100)
	v.SetDefault("maya.maxPages", 1000)

	v.SetDefault("shopify.apiVersion", "2023-01")
	v.SetDefault("shopify.rateLimit", 2.0)
	v.SetDefault("shopify.rateBurst", 4)

	v.SetDefault("sync.concurrency", 4)
	v.SetDefault("sync.httpTimeout", defaultHTTPTimeout)
	v.SetDefault("sync.maxAttempts", 3)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "35m")
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("server.syncTimeout", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func bindEnvVariables(v *viper.Viper) error {
	bindings := map[string]string{
		"appEnv": "APP_ENV",

		"maya.baseUrl":   "MAYA_BASE_URL",
		"maya.apiKey":    envMayaApiKey,
		"maya.apiSecret": envMayaApiSecret,
		"maya.pageSize":  "MAYA_PAGE_SIZE",
		"maya.maxPages":  "MAYA_MAX_PAGES",

		"shopify.storeName":  envShopifyStoreName,
		"shopify.baseUrl":    "SHOPIFY_BASE_URL",
		"shopify.token":      envShopifyAccessToken,
		"shopify.apiVersion": "SHOPIFY_API_VERSION",
		"shopify.rateLimit":  "SHOPIFY_RATE_LIMIT",
		"shopify.rateBurst":  "SHOPIFY_RATE_BURST",

		"sync.concurrency": "SYNC_CONCURRENCY",
		"sync.httpTimeout": "SYNC_HTTP_TIMEOUT",
		"sync.maxAttempts": "SYNC_MAX_ATTEMPTS",

		"server.port":            "SERVER_PORT",
		"server.readTimeout":     "SERVER_READ_TIMEOUT",
		"server.writeTimeout":    "SERVER_WRITE_TIMEOUT",
		"server.shutdownTimeout": "SERVER_SHUTDOWN_TIMEOUT",
		"server.syncTimeout":     "SERVER_SYNC_TIMEOUT",

		"log.level":  "LOG_LEVEL",
		"log.format": "LOG_FORMAT",

		"telegram.chatId": "TELEGRAM_CHAT_ID",
		"telegram.token":  "TELEGRAM_BOT_TOKEN",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}
