package notify

import (
	"context"
	"errors"
	"fmt"

	logx "newsrelay/pkg/logx"
)

// Multi sends to every sink in order. Send succeeds when at least one sink
// accepted the message; failures are logged and joined.
type Multi struct {
	sinks []Notifier
	log   logx.Logger
}

// NewMulti drops nil sinks. With none left it returns ErrNoNotifier.
func NewMulti(log logx.Logger, sinks ...Notifier) (*Multi, error) {
	kept := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoNotifier
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Multi{sinks: kept, log: log.With(logx.String("comp", "notify"))}, nil
}

func (m *Multi) Name() string {
	if len(m.sinks) == 1 {
		return m.sinks[0].Name()
	}
	return "multi"
}

// Sinks returns the configured sink names in send order.
func (m *Multi) Sinks() []string {
	out := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		out = append(out, s.Name())
	}
	return out
}

func (m *Multi) Send(ctx context.Context, text string) error {
	var errs []error
	ok := 0
	for _, s := range m.sinks {
		if err := s.Send(ctx, text); err != nil {
			m.log.Warn("notify failed", logx.String("sink", s.Name()), logx.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		ok++
		m.log.Debug("notify sent", logx.String("sink", s.Name()), logx.Int("runes", len([]rune(text))))
	}
	if ok > 0 {
		return nil
	}
	return errors.Join(errs...)
}
