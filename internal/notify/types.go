package notify

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoNotifier = errors.New("notify: no notifier configured")

// Notifier sends one plain-text message.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// WebhookError is a non-success answer from a webhook endpoint.
//
// Status is the HTTP status; ErrCode/ErrMsg come from the JSON body when it has them.
type WebhookError struct {
	Status  int
	ErrCode int
	ErrMsg  string
	Body    string
}

func (e *WebhookError) Error() string {
	if e.ErrCode != 0 || e.ErrMsg != "" {
		return fmt.Sprintf("webhook: status %d errcode %d: %s", e.Status, e.ErrCode, e.ErrMsg)
	}
	if e.Body != "" {
		return fmt.Sprintf("webhook: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("webhook: status %d", e.Status)
}
