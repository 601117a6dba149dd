package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvNewrankKey      = "NEWRANK_KEY"
	EnvWeComWebhookURL = "WECOM_WEBHOOK_URL"

	EnvHistoryDriver    = "NEWSRELAY_HISTORY_DRIVER"
	EnvHistoryPath      = "NEWSRELAY_HISTORY_PATH"
	EnvLogLevel         = "NEWSRELAY_LOG_LEVEL"
	EnvTelegramToken    = "NEWSRELAY_TELEGRAM_TOKEN"
	EnvTelegramChatID   = "NEWSRELAY_TELEGRAM_CHAT_ID"
	EnvTelegramThreadID = "NEWSRELAY_TELEGRAM_THREAD_ID"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvNewrankKey, &cfg.Newrank.Key)
	str(EnvWeComWebhookURL, &cfg.Notify.WeCom.WebhookURL)
	str(EnvHistoryDriver, &cfg.History.Driver)
	str(EnvHistoryPath, &cfg.History.Path)
	str(EnvLogLevel, &cfg.Logging.Level)
	str(EnvTelegramToken, &cfg.Notify.Telegram.Token)

	if v, ok := lookup(EnvTelegramChatID); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid chat id %q: %w", EnvTelegramChatID, v, err)
		}
		cfg.Notify.Telegram.ChatID = id
	}
	if v, ok := lookup(EnvTelegramThreadID); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid thread id %q: %w", EnvTelegramThreadID, v, err)
		}
		cfg.Notify.Telegram.ThreadID = id
	}
	return nil
}
