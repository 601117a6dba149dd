package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxWebhookBody = 64 << 10

// WeComConfig configures a group robot webhook.
type WeComConfig struct {
	WebhookURL string // carries the robot key; never log it
	Timeout    time.Duration
}

// WeCom posts text messages to a WeCom group robot.
type WeCom struct {
	url  string
	http *http.Client
}

type wecomText struct {
	Content string `json:"content"`
}

type wecomMessage struct {
	MsgType string    `json:"msgtype"`
	Text    wecomText `json:"text"`
}

type wecomReply struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// NewWeCom returns a webhook notifier. httpClient may be nil.
func NewWeCom(cfg WeComConfig, httpClient *http.Client) (*WeCom, error) {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil, errors.New("wecom: webhook url is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &WeCom{url: cfg.WebhookURL, http: httpClient}, nil
}

func (w *WeCom) Name() string { return "wecom" }

// Send delivers text. It succeeds on HTTP 200 with errcode 0 (or no errcode at all).
func (w *WeCom) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(wecomMessage{MsgType: "text", Text: wecomText{Content: text}})
	if err != nil {
		return fmt.Errorf("wecom: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		// url.Error would echo the webhook key.
		return errors.New("wecom: build request: invalid webhook url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("wecom: post: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxWebhookBody))
	if resp.StatusCode != http.StatusOK {
		return &WebhookError{Status: resp.StatusCode, Body: snippet(raw)}
	}

	var reply wecomReply
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		// 200 with a non-JSON body: treat as accepted.
		return nil
	}
	if reply.ErrCode != nil && *reply.ErrCode != 0 {
		return &WebhookError{Status: resp.StatusCode, ErrCode: *reply.ErrCode, ErrMsg: reply.ErrMsg, Body: snippet(raw)}
	}
	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
