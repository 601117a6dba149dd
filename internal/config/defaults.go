package config

import (
	"strings"
	"time"
)

const (
	DefaultEndpoint     = "https://api.newrank.cn/api/sync/weixin/account/articles_content"
	DefaultWindow       = 72 * time.Hour
	DefaultPageSize     = 5
	DefaultPause        = 1500 * time.Millisecond
	DefaultFetchTimeout = 15 * time.Second
	DefaultHookTimeout  = 10 * time.Second

	DefaultHistoryDriver = "file"
	DefaultHistoryPath   = "pushed_history.json"
	DefaultHistoryLimit  = 500

	DefaultHeader       = "📊 今日 IPO 深度日报"
	DefaultSummaryLimit = 100
)

// DefaultTargets is the built-in account list, used when the config file has none.
func DefaultTargets() []TargetConfig {
	return []TargetConfig{
		{Name: "每天打个新", Account: "gh_b2c2ad92da3f"},
		{Name: "终身投资者天威", Account: "gh_99505b0c4b83"},
	}
}

// Default returns a config with every optional field filled in.
func Default() *Config {
	return &Config{
		Newrank: NewrankConfig{Endpoint: DefaultEndpoint},
		Fetch: FetchConfig{
			Window:   DefaultWindow.String(),
			PageSize: DefaultPageSize,
			Pause:    DefaultPause.String(),
			Timeout:  DefaultFetchTimeout.String(),
		},
		Targets: DefaultTargets(),
		History: HistoryConfig{
			Driver: DefaultHistoryDriver,
			Path:   DefaultHistoryPath,
			Limit:  DefaultHistoryLimit,
		},
		Digest: DigestConfig{
			Header:       DefaultHeader,
			SummaryLimit: DefaultSummaryLimit,
		},
		Notify: NotifyConfig{
			WeCom: WeComConfig{Timeout: DefaultHookTimeout.String()},
		},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// fillDefaults sets zero-valued fields from Default(). Explicit values win.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Newrank.Endpoint == "" {
		cfg.Newrank.Endpoint = def.Newrank.Endpoint
	}
	if cfg.Fetch.Window == "" {
		cfg.Fetch.Window = def.Fetch.Window
	}
	if cfg.Fetch.PageSize == 0 {
		cfg.Fetch.PageSize = def.Fetch.PageSize
	}
	if cfg.Fetch.Pause == "" {
		cfg.Fetch.Pause = def.Fetch.Pause
	}
	if cfg.Fetch.Timeout == "" {
		cfg.Fetch.Timeout = def.Fetch.Timeout
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = def.Targets
	}
	if cfg.History.Driver == "" {
		cfg.History.Driver = def.History.Driver
	}
	if cfg.History.Path == "" && strings.EqualFold(strings.TrimSpace(cfg.History.Driver), DefaultHistoryDriver) {
		cfg.History.Path = def.History.Path
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = def.History.Limit
	}
	if cfg.Digest.Header == "" {
		cfg.Digest.Header = def.Digest.Header
	}
	if cfg.Digest.SummaryLimit == 0 {
		cfg.Digest.SummaryLimit = def.Digest.SummaryLimit
	}
	if cfg.Notify.WeCom.Timeout == "" {
		cfg.Notify.WeCom.Timeout = def.Notify.WeCom.Timeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}
