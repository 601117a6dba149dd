// Package app wires configuration, logging, the history store, the Newrank
// client and the notifiers into one relay run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsrelay/internal/config"
	"newsrelay/internal/history"
	"newsrelay/internal/newrank"
	"newsrelay/internal/notify"
	"newsrelay/internal/relay"
	logx "newsrelay/pkg/logx"
)

type Options struct {
	ConfigPath string
	EnvFile    string
	DryRun     bool
	// Lookup overrides os.LookupEnv; tests use it.
	Lookup func(string) (string, bool)
}

type App struct {
	opt  Options
	cfg  *config.Config
	log  logx.Logger
	logs *logx.Service
}

// New loads the config and starts logging. Nothing touches the network or
// the history store until Run or OpenHistory.
func New(opt Options) (*App, error) {
	cfg, err := config.Load(config.Options{Path: opt.ConfigPath, EnvFile: opt.EnvFile, Lookup: opt.Lookup})
	if err != nil {
		return nil, err
	}
	logSvc, log := logx.New(mapLoggingConfig(cfg))
	return &App{opt: opt, cfg: cfg, log: log.With(logx.String("comp", "app")), logs: logSvc}, nil
}

// Targets returns the effective account list.
func (a *App) Targets() []newrank.Target { return mapTargets(a.cfg) }

// OpenHistory opens the configured store. The caller closes it.
func (a *App) OpenHistory() (history.Store, error) {
	hc, err := mapHistoryConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	return history.Open(hc, a.log.With(logx.String("comp", "history"), logx.String("driver", hc.Driver)))
}

// Run performs one poll-and-notify cycle.
func (a *App) Run(ctx context.Context) (relay.Report, error) {
	runID := uuid.NewString()
	log := a.log.With(logx.String("run", runID))

	nc, err := mapNewrankConfig(a.cfg)
	if err != nil {
		return relay.Report{}, err
	}
	client, err := newrank.New(nc, nil)
	if err != nil {
		if errors.Is(err, newrank.ErrNoKey) {
			return relay.Report{}, fmt.Errorf("%w (set %s)", err, config.EnvNewrankKey)
		}
		return relay.Report{}, err
	}

	var sink notify.Notifier
	sinks, err := mapNotifiers(a.cfg)
	if err != nil {
		return relay.Report{}, err
	}
	if len(sinks) > 0 {
		m, err := notify.NewMulti(log, sinks...)
		if err != nil {
			return relay.Report{}, err
		}
		sink = m
		log.Debug("notifiers configured", logx.Any("sinks", m.Sinks()))
	} else if !a.opt.DryRun {
		return relay.Report{}, fmt.Errorf("%w (set %s)", notify.ErrNoNotifier, config.EnvWeComWebhookURL)
	}

	durs, err := a.cfg.Durations()
	if err != nil {
		return relay.Report{}, err
	}

	store, err := a.OpenHistory()
	if err != nil {
		return relay.Report{}, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn("history close failed", logx.Err(cerr))
		}
	}()

	r, err := relay.New(relay.Config{
		Targets: mapTargets(a.cfg),
		Pause:   durs.Pause,
		DryRun:  a.opt.DryRun,
	}, relay.Deps{
		Fetcher:   client,
		Store:     store,
		Notifier:  sink,
		Formatter: mapDigest(a.cfg),
		Log:       log,
	})
	if err != nil {
		return relay.Report{}, err
	}

	started := time.Now()
	from, to := client.Window(started)
	log.Debug("fetch window", logx.Time("from", from), logx.Time("to", to))
	log.Info("run started", logx.Int("targets", len(a.cfg.Targets)), logx.Bool("dry_run", a.opt.DryRun))
	rep, err := r.Run(ctx)
	fields := []logx.Field{
		logx.Int("targets", rep.TargetsChecked),
		logx.Int("fetch_failures", rep.FetchFailures),
		logx.Int("articles", rep.ArticlesSeen),
		logx.Int("new", rep.NewItems),
		logx.Bool("sent", rep.Sent),
		logx.Bool("saved", rep.Saved),
		logx.Duration("took", time.Since(started)),
	}
	if err != nil {
		log.Error("run failed", append(fields, logx.Err(err))...)
		return rep, err
	}
	log.Info("run finished", fields...)
	return rep, nil
}

// PruneHistory keeps only the newest keep entries and returns how many were dropped.
func (a *App) PruneHistory(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0")
	}
	store, err := a.OpenHistory()
	if err != nil {
		return 0, err
	}
	defer store.Close()

	set, err := store.Load(ctx)
	if err != nil {
		return 0, err
	}
	dropped := set.Truncate(keep)
	if err := store.Save(ctx, set); err != nil {
		return 0, err
	}
	a.log.Info("history pruned", logx.Int("kept", set.Len()), logx.Int("dropped", dropped))
	return dropped, nil
}

// RecentHistory returns up to n of the newest URLs, oldest first. n <= 0 returns all.
func (a *App) RecentHistory(ctx context.Context, n int) ([]string, error) {
	store, err := a.OpenHistory()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	set, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return set.URLs(), nil
	}
	return set.Tail(n), nil
}

func (a *App) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}
