package config

import (
	"fmt"
	"strings"
	"time"
)

// Durations holds every duration setting of a Config, parsed, with defaults
// applied to unset or zero values.
type Durations struct {
	Window      time.Duration
	Pause       time.Duration
	Timeout     time.Duration
	HookTimeout time.Duration
	BusyTimeout time.Duration
}

// Durations parses the string durations. Errors name the offending key.
func (c *Config) Durations() (Durations, error) {
	var (
		d   Durations
		err error
	)
	fields := []struct {
		key string
		raw string
		def time.Duration
		dst *time.Duration
	}{
		{"fetch.window", c.Fetch.Window, DefaultWindow, &d.Window},
		{"fetch.pause", c.Fetch.Pause, DefaultPause, &d.Pause},
		{"fetch.timeout", c.Fetch.Timeout, DefaultFetchTimeout, &d.Timeout},
		{"notify.wecom.timeout", c.Notify.WeCom.Timeout, DefaultHookTimeout, &d.HookTimeout},
		{"history.busy_timeout", c.History.BusyTimeout, time.Second, &d.BusyTimeout},
	}
	for _, f := range fields {
		if *f.dst, err = ParseDurationOrDefault(f.key, f.raw, f.def); err != nil {
			return Durations{}, err
		}
	}
	return d, nil
}

// ParseDurationField parses a Go duration string such as "1500ms" or "72h".
// Empty input is 0; negative values are rejected.
func ParseDurationField(key, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	case d < 0:
		return 0, fmt.Errorf("%s: duration must be >= 0, got %s", key, s)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def standing in for 0.
func ParseDurationOrDefault(key, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(key, raw)
	if err != nil || d > 0 {
		return d, err
	}
	return def, nil
}
