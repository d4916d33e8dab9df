package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig configures SMTPTransport.
type SMTPConfig struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPTransport submits mail to an SMTP relay. PLAIN auth is used when a username
// is configured.
type SMTPTransport struct {
	cfg  SMTPConfig
	auth smtp.Auth

	// send is a seam for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPTransport validates cfg and returns a transport.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.From = strings.TrimSpace(cfg.From)
	if cfg.Addr == "" {
		return nil, errors.New("mail: smtp address is required")
	}
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("mail: smtp address: %w", err)
	}
	if cfg.From == "" || strings.ContainsAny(cfg.From, "\r\n") {
		return nil, errors.New("mail: smtp sender is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	t := &SMTPTransport{cfg: cfg, send: smtp.SendMail}
	if cfg.Username != "" {
		t.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return t, nil
}

// Send implements Transport. net/smtp has no context support, so ctx only bounds
// the wait; an abandoned submission finishes in the background.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	body := t.render(msg)
	done := make(chan error, 1)
	go func() {
		done <- t.send(t.cfg.Addr, t.auth, t.cfg.From, []string{msg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail: smtp send: %w", ctx.Err())
	}
}

func (t *SMTPTransport) render(msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", t.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
