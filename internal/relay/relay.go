// Package relay runs one poll: fetch every target, drop what was already
// pushed, send the rest as a single digest, then remember what was sent.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"newsrelay/internal/digest"
	"newsrelay/internal/history"
	"newsrelay/internal/newrank"
	"newsrelay/internal/notify"
	logx "newsrelay/pkg/logx"
)

// Fetcher returns the first page of recent articles for one target.
type Fetcher interface {
	Articles(ctx context.Context, t newrank.Target, now time.Time) ([]newrank.Article, error)
}

type Config struct {
	Targets []newrank.Target
	// Pause is the gap between two target fetches.
	Pause  time.Duration
	DryRun bool
}

// Deps are the collaborators of a run. Notifier may be nil in dry-run mode.
type Deps struct {
	Fetcher   Fetcher
	Store     history.Store
	Notifier  notify.Notifier
	Formatter *digest.Formatter
	Log       logx.Logger
	// Out receives the digest in dry-run mode. Defaults to logx.Stdout().
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Report summarizes one run.
type Report struct {
	TargetsChecked int
	FetchFailures  int
	ArticlesSeen   int
	NewItems       int
	Sent           bool
	Saved          bool
}

type Relay struct {
	cfg  Config
	deps Deps
	log  logx.Logger
}

func New(cfg Config, deps Deps) (*Relay, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("relay: fetcher is nil")
	}
	if deps.Store == nil {
		return nil, errors.New("relay: history store is nil")
	}
	if deps.Notifier == nil && !cfg.DryRun {
		return nil, notify.ErrNoNotifier
	}
	if deps.Formatter == nil {
		deps.Formatter = digest.New("", 0)
	}
	if deps.Out == nil {
		deps.Out = logx.Stdout()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Relay{cfg: cfg, deps: deps, log: log.With(logx.String("comp", "relay"))}, nil
}

// Run performs one poll. Fetch failures are logged and skipped; a failed
// delivery returns an error and leaves the history untouched so the same
// items are offered again next run.
func (r *Relay) Run(ctx context.Context) (Report, error) {
	var rep Report
	now := r.deps.Now()

	seen, err := r.deps.Store.Load(ctx)
	if err != nil {
		return rep, fmt.Errorf("relay: load history: %w", err)
	}
	r.log.Debug("history loaded", logx.Int("urls", seen.Len()))

	items, err := r.collect(ctx, now, seen, &rep)
	if err != nil {
		return rep, err
	}
	rep.NewItems = len(items)

	if len(items) == 0 {
		r.log.Info("no new content",
			logx.Int("targets", rep.TargetsChecked),
			logx.Int("fetch_failures", rep.FetchFailures),
		)
		return rep, nil
	}

	text := r.deps.Formatter.Format(items, now)

	if r.cfg.DryRun {
		if _, err := io.WriteString(r.deps.Out, text); err != nil {
			return rep, fmt.Errorf("relay: write dry-run output: %w", err)
		}
		r.log.Info("dry run; nothing sent or saved", logx.Int("items", len(items)))
		return rep, nil
	}

	if err := r.deps.Notifier.Send(ctx, text); err != nil {
		return rep, fmt.Errorf("relay: deliver via %s: %w", r.deps.Notifier.Name(), err)
	}
	rep.Sent = true
	r.log.Info("digest sent", logx.String("sink", r.deps.Notifier.Name()), logx.Int("items", len(items)))

	if err := r.deps.Store.Save(ctx, seen); err != nil {
		return rep, fmt.Errorf("relay: save history: %w", err)
	}
	rep.Saved = true
	return rep, nil
}

// collect walks the targets in order. New URLs are added to seen as they are
// found, so an article listed twice in one run is queued once.
func (r *Relay) collect(ctx context.Context, now time.Time, seen *history.Set, rep *Report) ([]digest.Item, error) {
	var items []digest.Item
	for i, t := range r.cfg.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := r.fetchTarget(ctx, t, now, seen, rep)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)

		if i < len(r.cfg.Targets)-1 {
			if err := pause(ctx, r.cfg.Pause); err != nil {
				return nil, fmt.Errorf("relay: pause after %s: %w", t.Name, err)
			}
		}
	}
	return items, nil
}

// fetchTarget fetches one target and returns its unseen articles. A fetch
// failure is logged and counted; only cancellation is returned as an error.
func (r *Relay) fetchTarget(ctx context.Context, t newrank.Target, now time.Time, seen *history.Set, rep *Report) ([]digest.Item, error) {
	rep.TargetsChecked++
	log := r.log.With(logx.String("target", t.Name), logx.String("account", t.Account))

	articles, err := r.deps.Fetcher.Articles(ctx, t, now)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rep.FetchFailures++
		log.Error("fetch failed", logx.Err(err))
		return nil, nil
	}
	log.Debug("fetched", logx.Int("articles", len(articles)))

	var items []digest.Item
	for _, a := range articles {
		rep.ArticlesSeen++
		if a.URL == "" {
			log.Debug("article without url skipped", logx.String("title", a.Title))
			continue
		}
		if !seen.Add(a.URL) {
			log.Trace("already pushed", logx.String("url", a.URL))
			continue
		}
		log.Info("new article", logx.String("title", a.Title))
		items = append(items, digest.Item{
			Source:  t.Name,
			Title:   a.Title,
			Summary: a.Summary,
			URL:     a.URL,
			Time:    a.PublicTime,
		})
	}
	return items, nil
}

// pause blocks for d counted from now, not from the previous fetch start.
// The limiter starts drained so Wait always takes one full interval.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	lim := rate.NewLimiter(rate.Every(d), 1)
	lim.Allow()
	return lim.Wait(ctx)
}
