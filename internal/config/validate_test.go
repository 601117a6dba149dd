package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string // substring of the error; empty means valid
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad window", func(c *Config) { c.Fetch.Window = "three days" }, "fetch.window: invalid duration"},
		{"negative pause", func(c *Config) { c.Fetch.Pause = "-1s" }, "fetch.pause"},
		{"bad endpoint", func(c *Config) { c.Newrank.Endpoint = "not a url" }, "newrank.endpoint"},
		{"target without account", func(c *Config) { c.Targets = []TargetConfig{{Name: "x"}} }, "targets[0].account"},
		{"duplicate account", func(c *Config) {
			c.Targets = []TargetConfig{{Name: "a", Account: "gh"}, {Name: "b", Account: "gh"}}
		}, "duplicate account"},
		{"unknown driver", func(c *Config) { c.History.Driver = "redis" }, "history.driver"},
		{"sqlite without path", func(c *Config) { c.History.Driver = "sqlite"; c.History.Path = "" }, "history.path"},
		{"negative limit", func(c *Config) { c.History.Limit = -1 }, "history.limit"},
		{"telegram half set", func(c *Config) { c.Notify.Telegram.Token = "t" }, "notify.telegram"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateDoesNotEchoWebhook(t *testing.T) {
	cfg := Default()
	cfg.Notify.WeCom.WebhookURL = "://secret-key"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("error leaks webhook: %v", err)
	}
}
