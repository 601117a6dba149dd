package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// TelegramTextLimit is the Bot API cap on message text, in runes.
const TelegramTextLimit = 4096

type TelegramConfig struct {
	Token    string
	ChatID   int64
	ThreadID int
	Timeout  time.Duration
	// APIURL overrides the Bot API base URL; empty means the public API.
	APIURL string
}

// Telegram sends the digest to one chat (optionally a forum topic).
type Telegram struct {
	bot      *tele.Bot
	chat     *tele.Chat
	threadID int
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram: token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram: chat id is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		URL:     cfg.APIURL,
		Token:   cfg.Token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: b, chat: &tele.Chat{ID: cfg.ChatID}, threadID: cfg.ThreadID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Send posts text, split into chunks when it exceeds the Bot API limit.
// telebot has no per-call context, so ctx is only checked between chunks.
func (t *Telegram) Send(ctx context.Context, text string) error {
	opt := &tele.SendOptions{DisableWebPagePreview: true, ThreadID: t.threadID}
	for i, chunk := range splitText(text, TelegramTextLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.bot.Send(t.chat, chunk, opt); err != nil {
			return fmt.Errorf("telegram: send chunk %d: %w", i+1, err)
		}
	}
	return nil
}

// splitText cuts s into chunks of at most limit runes, preferring to break
// right before a digest separator line, then at any newline.
func splitText(s string, limit int) []string {
	rs := []rune(s)
	if limit <= 0 || len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, len(rs)/limit+1)
	start := 0
	for start < len(rs) {
		end := start + limit
		if end >= len(rs) {
			out = append(out, string(rs[start:]))
			break
		}
		if cut := lastBreak(rs, start, end, limit/3); cut > start {
			end = cut
		}
		out = append(out, strings.TrimRight(string(rs[start:end]), "\n"))
		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}

// lastBreak finds the best cut in rs[start:end]: the start of the last line
// beginning with '-' (an item separator), else the last newline. Cuts closer
// than minChunk to start are ignored.
func lastBreak(rs []rune, start, end, minChunk int) int {
	nl := -1
	for i := end - 1; i-start >= minChunk && i > start; i-- {
		if rs[i] != '\n' {
			continue
		}
		if nl == -1 {
			nl = i + 1
		}
		if i+1 < end && rs[i+1] == '-' {
			return i + 1
		}
	}
	return nl
}
