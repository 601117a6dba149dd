package app

import (
	"fmt"
	"strings"

	"newsrelay/internal/config"
	"newsrelay/internal/digest"
	"newsrelay/internal/history"
	"newsrelay/internal/newrank"
	"newsrelay/internal/notify"
	logx "newsrelay/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	console := true
	if cfg.Logging.Console != nil {
		console = *cfg.Logging.Console
	}
	f := cfg.Logging.File
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled:    f.Enabled,
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	}
}

func mapHistoryConfig(cfg *config.Config) (history.Config, error) {
	durs, err := cfg.Durations()
	if err != nil {
		return history.Config{}, err
	}
	hc := cfg.History
	path := strings.TrimSpace(hc.Path)
	driver := strings.ToLower(strings.TrimSpace(hc.Driver))

	switch driver {
	case "", "file":
		if path == "" {
			path = config.DefaultHistoryPath
		}
		return history.Config{Driver: "file", Path: path, Limit: hc.Limit}, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return history.Config{}, fmt.Errorf("history.path is required when history.driver=%s", driver)
		}
		return history.Config{Driver: "sqlite", Path: path, Limit: hc.Limit, BusyTimeout: durs.BusyTimeout}, nil
	case "postgres", "postgresql", "pg":
		if path == "" {
			return history.Config{}, fmt.Errorf("history.path (DSN) is required when history.driver=%s", driver)
		}
		return history.Config{Driver: "postgres", Path: path, Limit: hc.Limit}, nil
	default:
		return history.Config{}, fmt.Errorf("unknown history.driver: %s", hc.Driver)
	}
}

func mapNewrankConfig(cfg *config.Config) (newrank.Config, error) {
	durs, err := cfg.Durations()
	if err != nil {
		return newrank.Config{}, err
	}
	return newrank.Config{
		Endpoint: cfg.Newrank.Endpoint,
		Key:      cfg.Newrank.Key,
		Window:   durs.Window,
		PageSize: cfg.Fetch.PageSize,
		Timeout:  durs.Timeout,
	}, nil
}

func mapTargets(cfg *config.Config) []newrank.Target {
	out := make([]newrank.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		out = append(out, newrank.Target{Name: strings.TrimSpace(t.Name), Account: strings.TrimSpace(t.Account)})
	}
	return out
}

func mapDigest(cfg *config.Config) *digest.Formatter {
	return digest.New(cfg.Digest.Header, cfg.Digest.SummaryLimit)
}

// mapNotifiers builds every sink that has credentials. An empty result is
// not an error here; the caller decides whether it may run without one.
func mapNotifiers(cfg *config.Config) ([]notify.Notifier, error) {
	durs, err := cfg.Durations()
	if err != nil {
		return nil, err
	}
	timeout := durs.HookTimeout

	var sinks []notify.Notifier
	if u := strings.TrimSpace(cfg.Notify.WeCom.WebhookURL); u != "" {
		w, err := notify.NewWeCom(notify.WeComConfig{WebhookURL: u, Timeout: timeout}, nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}
	if tg := cfg.Notify.Telegram; strings.TrimSpace(tg.Token) != "" {
		t, err := notify.NewTelegram(notify.TelegramConfig{
			Token:    tg.Token,
			ChatID:   tg.ChatID,
			ThreadID: tg.ThreadID,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, t)
	}
	return sinks, nil
}
