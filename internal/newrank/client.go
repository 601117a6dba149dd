// Package newrank fetches recent articles of WeChat official accounts from
// the Newrank data API.
package newrank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the from/to format the API expects (local time).
const TimeLayout = "2006-01-02 15:04:05"

var ErrNoKey = errors.New("newrank: api key is empty")

type Config struct {
	Endpoint string
	Key      string
	Window   time.Duration // how far back "from" reaches
	PageSize int
	Timeout  time.Duration
}

// Client talks to the articles_content endpoint. One page per call, no retries.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a client. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, ErrNoKey
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("newrank: endpoint is empty")
	}
	if cfg.Window <= 0 {
		cfg.Window = 72 * time.Hour
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

// Window returns the [from, to] range used for a request made at now.
func (c *Client) Window(now time.Time) (time.Time, time.Time) {
	return now.Add(-c.cfg.Window), now
}

// Articles fetches the first page of articles published by t within the window ending at now.
func (c *Client) Articles(ctx context.Context, t Target, now time.Time) ([]Article, error) {
	from, to := c.Window(now)
	form := url.Values{}
	form.Set("account", t.Account)
	form.Set("from", from.Format(TimeLayout))
	form.Set("to", to.Format(TimeLayout))
	form.Set("page", "1")
	form.Set("size", strconv.Itoa(c.cfg.PageSize))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("newrank: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Key", c.cfg.Key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newrank: request %s: %w", t.Account, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("newrank: read response: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("newrank: decode response (status %d): %w", resp.StatusCode, err)
	}
	if r.Code == nil {
		return nil, fmt.Errorf("newrank: response without code (status %d)", resp.StatusCode)
	}
	if *r.Code != 0 {
		return nil, &APIError{Code: *r.Code, Msg: r.Msg}
	}

	out := make([]Article, 0, len(r.Data))
	for _, a := range r.Data {
		out = append(out, a.article())
	}
	return out, nil
}
