// Package mail delivers outbound messages. Transports are best-effort: callers
// log failures and do not retry.
package mail

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidMessage is returned for messages without a recipient or body.
var ErrInvalidMessage = errors.New("mail: invalid message")

// Message is one outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" || m.Body == "" {
		return ErrInvalidMessage
	}
	if strings.ContainsAny(m.To, "\r\n") || strings.ContainsAny(m.Subject, "\r\n") {
		return ErrInvalidMessage
	}
	return nil
}

// Transport sends a Message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
