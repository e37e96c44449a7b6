// Package notify renders milestone notifications and delivers them through
// SMTP, a webhook, or a Kafka topic.
package notify

import "context"

// Message is one rendered notification.
type Message struct {
	Event    string   `json:"event"`
	Key      string   `json:"key"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	HTMLBody string   `json:"html_body"`
}

// Sender delivers a rendered message over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
