package config

import (
	"strings"
	"testing"
	"time"
)

func TestDurationsDefaults(t *testing.T) {
	d, err := (&Config{}).Durations()
	if err != nil {
		t.Fatalf("Durations: %v", err)
	}
	want := Durations{
		Window:      72 * time.Hour,
		Pause:       1500 * time.Millisecond,
		Timeout:     15 * time.Second,
		HookTimeout: 10 * time.Second,
		BusyTimeout: time.Second,
	}
	if d != want {
		t.Fatalf("got %+v, want %+v", d, want)
	}
}

func TestDurationsOverridesAndErrors(t *testing.T) {
	cfg := &Config{Fetch: FetchConfig{Window: "24h", Pause: "0s"}}
	d, err := cfg.Durations()
	if err != nil {
		t.Fatal(err)
	}
	if d.Window != 24*time.Hour || d.Pause != DefaultPause {
		t.Fatalf("got %+v", d)
	}

	cfg.Notify.WeCom.Timeout = "ten seconds"
	_, err = cfg.Durations()
	if err == nil || !strings.HasPrefix(err.Error(), "notify.wecom.timeout: invalid duration") {
		t.Fatalf("err = %v", err)
	}
}
