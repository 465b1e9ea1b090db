// Package notify delivers the result of a run to the user.
package notify

import (
	"context"
)

// Message is an email-like notification.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	// Html is an optional alternative body.
	Html string
}

// Notifier sends a message and returns an id confirming its delivery.
//
// note: fault injection point
type Notifier interface {
	Send(ctx context.Context, msg Message) (string, error)
}
