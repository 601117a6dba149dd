// Package notify delivers a finished digest to chat sinks.
//
// WeCom group robots are the primary sink; a Telegram chat can be added as a
// second one. Multi fans a message out to every configured sink in order.
package notify
