package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"maya-shopify-sync/internal/config"
	"maya-shopify-sync/internal/domain/model"
)

// Notifier reports the outcome of a sync run to humans.
type Notifier interface {
	NotifySummary(ctx context.Context, summary model.SyncSummary)
	NotifyFailure(ctx context.Context, err error)
	NotifyMessage(ctx context.Context, text string)
}

const telegramAPIBase = "https://api.telegram.org"

const (
	iconError   = "❌"
	iconWarning = "⚠️"
	iconSuccess = "✅"
)

type telegramRequest struct {
	ChatId string `json:"chat_id"`
	Text   string `json:"text"`
}

type TelegramNotifier struct {
	creds      config.TelegramBotConfig
	apiBase    string
	httpClient *http.Client
	logger     *zap.Logger
}

type nopNotifier struct{}

func (nopNotifier) NotifySummary(context.Context, model.SyncSummary) {}
func (nopNotifier) NotifyFailure(context.Context, error)             {}
func (nopNotifier) NotifyMessage(context.Context, string)            {}

// NewNotifier returns a Telegram notifier, or a no-op one when the bot is not configured.
func NewNotifier(cfg config.TelegramBotConfig, httpClient *http.Client, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChatId == "" || cfg.Token == "" {
		logger.Warn("telegram credentials missing, run notifications disabled")
		return nopNotifier{}
	}
	return newTelegramNotifier(cfg, telegramAPIBase, httpClient, logger)
}

func newTelegramNotifier(cfg config.TelegramBotConfig, apiBase string, httpClient *http.Client, logger *zap.Logger) *TelegramNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TelegramNotifier{
		creds:      cfg,
		apiBase:    strings.TrimRight(apiBase, "/"),
		httpClient: httpClient,
		logger:     logger.Named("telegram"),
	}
}

func (c *TelegramNotifier) NotifySummary(ctx context.Context, summary model.SyncSummary) {
	if c == nil {
		return
	}
	icon, level := iconSuccess, "SUCCESS"
	if summary.Failed > 0 {
		icon, level = iconWarning, "WARNING"
	}
	text := fmt.Sprintf("product sync run=%s total=%d created=%d updated=%d failed=%d duration=%s",
		summary.RunID, summary.Total, summary.Created, summary.Updated, summary.Failed, summary.Duration().Round(time.Millisecond))
	c.send(ctx, formatMessage(icon, level, text))
}

func (c *TelegramNotifier) NotifyFailure(ctx context.Context, err error) {
	if c == nil || err == nil {
		return
	}
	c.send(ctx, formatMessage(iconError, "ERROR", "product sync failed: "+err.Error()))
}

func (c *TelegramNotifier) NotifyMessage(ctx context.Context, text string) {
	if c == nil {
		return
	}
	c.send(ctx, formatMessage(iconSuccess, "SUCCESS", text))
}

func (c *TelegramNotifier) send(ctx context.Context, text string) {
	if err := c.sendRequest(ctx, text); err != nil {
		c.logger.Warn("telegram send failed", zap.Error(err))
	}
}

func formatMessage(icon, level, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		v = "-"
	}
	return fmt.Sprintf("%s %s: %s", icon, level, v)
}

func (c *TelegramNotifier) sendRequest(ctx context.Context, value string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.creds.Token)

	bodyBytes, err := json.Marshal(telegramRequest{
		ChatId: c.creds.ChatId,
		Text:   value,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send failed: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}
