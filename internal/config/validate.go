package config

import (
	"fmt"
	"net/url"
	"strings"

	logx "newsrelay/pkg/logx"
)

// Validate checks a merged config. NEWRANK_KEY and the notifier sinks are
// enforced by app.Run; the history subcommands need neither.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if _, err := cfg.Durations(); err != nil {
		return err
	}
	if cfg.Fetch.PageSize < 0 {
		return fmt.Errorf("fetch.page_size must be >= 0")
	}
	if u, err := url.Parse(cfg.Newrank.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("newrank.endpoint: invalid url %q", cfg.Newrank.Endpoint)
	}

	seen := make(map[string]struct{}, len(cfg.Targets))
	for i, t := range cfg.Targets {
		if strings.TrimSpace(t.Account) == "" {
			return fmt.Errorf("targets[%d].account is required", i)
		}
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("targets[%d].name is required", i)
		}
		if _, dup := seen[t.Account]; dup {
			return fmt.Errorf("targets[%d]: duplicate account %q", i, t.Account)
		}
		seen[t.Account] = struct{}{}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.History.Driver)) {
	case "file", "sqlite", "sqlite3", "postgres", "postgresql", "pg":
	default:
		return fmt.Errorf("history.driver: unknown driver %q", cfg.History.Driver)
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path is required when history.driver=%s", cfg.History.Driver)
	}
	if cfg.History.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0")
	}

	if cfg.Digest.SummaryLimit < 0 {
		return fmt.Errorf("digest.summary_limit must be >= 0")
	}

	if hook := strings.TrimSpace(cfg.Notify.WeCom.WebhookURL); hook != "" {
		if u, err := url.Parse(hook); err != nil || u.Scheme == "" || u.Host == "" {
			// don't echo the url, it carries the robot key
			return fmt.Errorf("notify.wecom.webhook_url: invalid url")
		}
	}
	tg := cfg.Notify.Telegram
	if (strings.TrimSpace(tg.Token) == "") != (tg.ChatID == 0) {
		return fmt.Errorf("notify.telegram: token and chat_id must be set together")
	}

	if !logx.ValidLevel(cfg.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}
	return nil
}
