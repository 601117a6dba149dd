package config

// Config is the on-disk shape of newsrelay's settings.
//
// Every field is optional; Default() fills the gaps and environment
// variables (see env.go) override whatever the file says.
type Config struct {
	Newrank NewrankConfig  `json:"newrank"`
	Fetch   FetchConfig    `json:"fetch"`
	Targets []TargetConfig `json:"targets,omitempty"`
	History HistoryConfig  `json:"history"`
	Digest  DigestConfig   `json:"digest"`
	Notify  NotifyConfig   `json:"notify"`
	Logging LoggingConfig  `json:"logging"`
}

// NewrankConfig holds the content API credentials. Key is a secret; never log it.
type NewrankConfig struct {
	Key      string `json:"key,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// FetchConfig controls the per-account request.
//
// All durations are Go duration strings (e.g. "1500ms", "15s", "72h").
type FetchConfig struct {
	Window   string `json:"window,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Pause    string `json:"pause,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
}

// TargetConfig is one tracked account: display name + account id.
type TargetConfig struct {
	Name    string `json:"name"`
	Account string `json:"account"`
}

// HistoryConfig selects the dedup store.
//
// Example:
//
//	"history": { "driver": "file", "path": "./pushed_history.json", "limit": 500 }
type HistoryConfig struct {
	Driver      string `json:"driver,omitempty"` // file | sqlite | postgres
	Path        string `json:"path,omitempty"`   // file path, sqlite path or postgres DSN
	Limit       int    `json:"limit,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type DigestConfig struct {
	Header       string `json:"header,omitempty"`
	SummaryLimit int    `json:"summary_limit,omitempty"`
}

type NotifyConfig struct {
	WeCom    WeComConfig    `json:"wecom"`
	Telegram TelegramConfig `json:"telegram"`
}

// WeComConfig points at a group robot webhook. The URL embeds the robot key; never log it.
type WeComConfig struct {
	WebhookURL string `json:"webhook_url,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	Token    string `json:"token,omitempty"`
	ChatID   int64  `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console *bool       `json:"console,omitempty"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}
