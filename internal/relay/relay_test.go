package relay

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsrelay/internal/digest"
	"newsrelay/internal/history"
	"newsrelay/internal/newrank"
	logx "newsrelay/pkg/logx"
)

type fakeFetcher struct {
	byAccount map[string][]newrank.Article
	fail      map[string]error
	calls     []string
}

func (f *fakeFetcher) Articles(_ context.Context, t newrank.Target, _ time.Time) ([]newrank.Article, error) {
	f.calls = append(f.calls, t.Account)
	if err := f.fail[t.Account]; err != nil {
		return nil, err
	}
	return f.byAccount[t.Account], nil
}

type memStore struct {
	urls    []string
	saves   int
	loadErr error
}

func (m *memStore) Load(context.Context) (*history.Set, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return history.NewSet(m.urls), nil
}

func (m *memStore) Save(_ context.Context, s *history.Set) error {
	m.saves++
	m.urls = s.URLs()
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeNotifier struct {
	err  error
	sent []string
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

var (
	targetA  = newrank.Target{Name: "每天打个新", Account: "gh_a"}
	targetB  = newrank.Target{Name: "终身投资者天威", Account: "gh_b"}
	fixedNow = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
)

func newTestRelay(t *testing.T, cfg Config, f Fetcher, st history.Store, n *fakeNotifier, out *bytes.Buffer) *Relay {
	t.Helper()
	deps := Deps{Fetcher: f, Store: st, Formatter: digest.New("", 0), Log: logx.Nop(), Now: fixedNow}
	if n != nil {
		deps.Notifier = n
	}
	if out != nil {
		deps.Out = out
	}
	r, err := New(cfg, deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRunSendsOnlyUnseenArticles(t *testing.T) {
	f := &fakeFetcher{byAccount: map[string][]newrank.Article{
		"gh_a": {
			{Title: "old", URL: "u-old"},
			{Title: "fresh", Summary: "s", URL: "u1", PublicTime: "2026-03-04 08:00:00"},
			{Title: "no link", URL: ""},
		},
		"gh_b": {
			{Title: "fresh again", URL: "u1"},
			{Title: "second", URL: "u2"},
		},
	}}
	st := &memStore{urls: []string{"u-old"}}
	n := &fakeNotifier{}

	r := newTestRelay(t, Config{Targets: []newrank.Target{targetA, targetB}}, f, st, n, nil)
	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Report{TargetsChecked: 2, ArticlesSeen: 5, NewItems: 2, Sent: true, Saved: true}
	if rep != want {
		t.Fatalf("report = %+v, want %+v", rep, want)
	}
	if len(n.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(n.sent))
	}
	msg := n.sent[0]
	if !strings.HasPrefix(msg, "📊 今日 IPO 深度日报 (03-04)\n") {
		t.Fatalf("unexpected header: %q", msg)
	}
	if strings.Count(msg, digest.Separator) != 2 {
		t.Fatalf("expected 2 items in message:\n%s", msg)
	}
	if strings.Contains(msg, "u-old") || !strings.Contains(msg, "【终身投资者天威】") {
		t.Fatalf("wrong items in message:\n%s", msg)
	}
	if got := strings.Join(st.urls, ","); got != "u-old,u1,u2" {
		t.Fatalf("saved history = %s", got)
	}
}

func TestRunNoNewContentLeavesHistoryAlone(t *testing.T) {
	f := &fakeFetcher{byAccount: map[string][]newrank.Article{"gh_a": {{URL: "u1"}}}}
	st := &memStore{urls: []string{"u1"}}
	n := &fakeNotifier{}

	rep, err := newTestRelay(t, Config{Targets: []newrank.Target{targetA}}, f, st, n, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.NewItems != 0 || rep.Sent || rep.Saved {
		t.Fatalf("report = %+v", rep)
	}
	if len(n.sent) != 0 || st.saves != 0 {
		t.Fatalf("sent=%d saves=%d, want none", len(n.sent), st.saves)
	}
}

func TestRunContinuesAfterFetchFailure(t *testing.T) {
	f := &fakeFetcher{
		byAccount: map[string][]newrank.Article{"gh_b": {{Title: "t", URL: "u2"}}},
		fail:      map[string]error{"gh_a": &newrank.APIError{Code: 1, Msg: "quota"}},
	}
	st := &memStore{}
	n := &fakeNotifier{}

	rep, err := newTestRelay(t, Config{Targets: []newrank.Target{targetA, targetB}}, f, st, n, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.FetchFailures != 1 || rep.NewItems != 1 || !rep.Saved {
		t.Fatalf("report = %+v", rep)
	}
	if strings.Join(f.calls, ",") != "gh_a,gh_b" {
		t.Fatalf("calls = %v", f.calls)
	}
}

func TestRunDeliveryFailureKeepsHistory(t *testing.T) {
	f := &fakeFetcher{byAccount: map[string][]newrank.Article{"gh_a": {{URL: "u1"}}}}
	st := &memStore{urls: []string{"u0"}}
	sendErr := errors.New("webhook down")
	n := &fakeNotifier{err: sendErr}

	rep, err := newTestRelay(t, Config{Targets: []newrank.Target{targetA}}, f, st, n, nil).Run(context.Background())
	if !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, want %v", err, sendErr)
	}
	if rep.Sent || rep.Saved || st.saves != 0 {
		t.Fatalf("history must not be saved after a failed send: %+v saves=%d", rep, st.saves)
	}
}

func TestRunDryRunPrintsOnly(t *testing.T) {
	f := &fakeFetcher{byAccount: map[string][]newrank.Article{"gh_a": {{Title: "T", URL: "u1"}}}}
	st := &memStore{}
	var out bytes.Buffer

	r := newTestRelay(t, Config{Targets: []newrank.Target{targetA}, DryRun: true}, f, st, nil, &out)
	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Sent || rep.Saved || st.saves != 0 {
		t.Fatalf("dry run must not send or save: %+v", rep)
	}
	if !strings.Contains(out.String(), "📄 T\n") {
		t.Fatalf("dry-run output = %q", out.String())
	}
}

func TestRunLoadFailure(t *testing.T) {
	st := &memStore{loadErr: errors.New("disk gone")}
	_, err := newTestRelay(t, Config{Targets: []newrank.Target{targetA}}, &fakeFetcher{}, st, &fakeNotifier{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "load history") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunPausesBetweenTargets(t *testing.T) {
	f := &fakeFetcher{}
	pause := 40 * time.Millisecond
	r := newTestRelay(t, Config{Targets: []newrank.Target{targetA, targetB, targetA}, Pause: pause}, f, &memStore{}, &fakeNotifier{}, nil)

	start := time.Now()
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 2*pause-10*time.Millisecond {
		t.Fatalf("elapsed %v, want at least ~%v", elapsed, 2*pause)
	}
}

func TestRunCanceledDuringPause(t *testing.T) {
	f := &fakeFetcher{}
	r := newTestRelay(t, Config{Targets: []newrank.Target{targetA, targetB}, Pause: time.Hour}, f, &memStore{}, &fakeNotifier{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if len(f.calls) != 1 {
		t.Fatalf("calls = %v, want only the first target", f.calls)
	}
}

func TestNewRequiresNotifierUnlessDryRun(t *testing.T) {
	deps := Deps{Fetcher: &fakeFetcher{}, Store: &memStore{}}
	if _, err := New(Config{}, deps); err == nil {
		t.Fatal("expected error without notifier")
	}
	if _, err := New(Config{DryRun: true}, deps); err != nil {
		t.Fatalf("dry run without notifier: %v", err)
	}
}

type slowFetcher struct {
	took   time.Duration
	starts []time.Time
	ends   []time.Time
}

func (f *slowFetcher) Articles(_ context.Context, _ newrank.Target, _ time.Time) ([]newrank.Article, error) {
	f.starts = append(f.starts, time.Now())
	time.Sleep(f.took)
	f.ends = append(f.ends, time.Now())
	return nil, nil
}

func TestRunPauseCountsFromFetchEnd(t *testing.T) {
	pause := 40 * time.Millisecond
	f := &slowFetcher{took: 2 * pause}
	r := newTestRelay(t, Config{Targets: []newrank.Target{targetA, targetB}, Pause: pause}, f, &memStore{}, &fakeNotifier{}, nil)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.starts) != 2 {
		t.Fatalf("fetches = %d, want 2", len(f.starts))
	}
	if gap := f.starts[1].Sub(f.ends[0]); gap < pause-5*time.Millisecond {
		t.Fatalf("gap after a slow fetch = %v, want at least ~%v", gap, pause)
	}
}

func TestRunNoPauseAfterLastTarget(t *testing.T) {
	r := newTestRelay(t, Config{Targets: []newrank.Target{targetA}, Pause: time.Hour}, &fakeFetcher{}, &memStore{}, &fakeNotifier{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("single-target run waited for a pause")
	}
}
