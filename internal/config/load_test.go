package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Lookup: noEnv, EnvFile: writeFile(t, "empty.env", "")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Newrank.Endpoint != DefaultEndpoint {
		t.Fatalf("endpoint = %q", cfg.Newrank.Endpoint)
	}
	if cfg.History.Driver != "file" || cfg.History.Path != DefaultHistoryPath || cfg.History.Limit != 500 {
		t.Fatalf("history = %+v", cfg.History)
	}
	if len(cfg.Targets) != 2 || cfg.Targets[0].Account != "gh_b2c2ad92da3f" {
		t.Fatalf("targets = %+v", cfg.Targets)
	}
	if d, _ := ParseDurationField("fetch.pause", cfg.Fetch.Pause); d != 1500*time.Millisecond {
		t.Fatalf("pause = %v", d)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, "newsrelay.yaml", `
fetch:
  window: 24h
  page_size: 10
targets:
  - name: A
    account: gh_a
history:
  driver: sqlite
  path: ./from-file.db
notify:
  wecom:
    webhook_url: https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=file
logging:
  level: debug
`)
	cfg, err := Load(Options{Path: path, Lookup: envMap(map[string]string{
		EnvNewrankKey:       "k",
		EnvWeComWebhookURL:  "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=env",
		EnvHistoryPath:      "./from-env.db",
		EnvTelegramToken:    "123:abc",
		EnvTelegramChatID:   "-1001",
		EnvTelegramThreadID: "7",
	})})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.Window != "24h" || cfg.Fetch.PageSize != 10 {
		t.Fatalf("fetch = %+v", cfg.Fetch)
	}
	if cfg.History.Driver != "sqlite" || cfg.History.Path != "./from-env.db" {
		t.Fatalf("history = %+v", cfg.History)
	}
	if !strings.HasSuffix(cfg.Notify.WeCom.WebhookURL, "key=env") {
		t.Fatal("env should override the file webhook")
	}
	if cfg.Newrank.Key != "k" || cfg.Notify.Telegram.ChatID != -1001 || cfg.Notify.Telegram.ThreadID != 7 {
		t.Fatalf("env not applied: %+v", cfg.Notify.Telegram)
	}
	if len(cfg.Targets) != 1 {
		t.Fatalf("file targets should replace defaults: %+v", cfg.Targets)
	}
}

func TestLoadJSONFile(t *testing.T) {
	path := writeFile(t, "newsrelay.json", `{"digest":{"header":"Daily","summary_limit":50}}`)
	cfg, err := Load(Options{Path: path, Lookup: noEnv})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Digest.Header != "Daily" || cfg.Digest.SummaryLimit != 50 {
		t.Fatalf("digest = %+v", cfg.Digest)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse("x.yaml", []byte("fetch:\n  windw: 1h\n")); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := Parse("x.json", []byte(`{} {}`)); err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv(EnvNewrankKey, "real")
	envFile := writeFile(t, "custom.env", "NEWRANK_KEY=from-file\nNEWSRELAY_LOG_LEVEL=warn\n")
	os.Unsetenv(EnvLogLevel)
	t.Cleanup(func() { os.Unsetenv(EnvLogLevel) })

	cfg, err := Load(Options{EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Newrank.Key != "real" {
		t.Fatalf("key = %q, want the real environment value", cfg.Newrank.Key)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("level = %q, want value from env file", cfg.Logging.Level)
	}
}

func TestMissingExplicitEnvFile(t *testing.T) {
	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env"), Lookup: noEnv}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBadChatID(t *testing.T) {
	_, err := Load(Options{Lookup: envMap(map[string]string{EnvTelegramChatID: "chat"}), EnvFile: writeFile(t, "e.env", "")})
	if err == nil || !strings.Contains(err.Error(), EnvTelegramChatID) {
		t.Fatalf("err = %v", err)
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDriverCaseInsensitiveDefaultPath(t *testing.T) {
	cfg, err := Load(Options{
		Lookup:  envMap(map[string]string{EnvHistoryDriver: " FILE "}),
		EnvFile: writeFile(t, "e.env", ""),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.Path != DefaultHistoryPath {
		t.Fatalf("history.path = %q, want %q", cfg.History.Path, DefaultHistoryPath)
	}
}
