package mail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// LogTransport writes "recipient: body" lines instead of delivering mail.
// It is the development stand-in for a real provider.
type LogTransport struct {
	mu  sync.Mutex
	out io.Writer
	log *slog.Logger
}

// NewLogTransport writes to out (stdout when nil) and records a debug event per send.
func NewLogTransport(out io.Writer, log *slog.Logger) *LogTransport {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = slog.Default()
	}
	return &LogTransport{out: out, log: log}
}

// Send implements Transport.
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.validate(); err != nil {
		return err
	}

	t.mu.Lock()
	_, err := fmt.Fprintf(t.out, "%s: %s\n", msg.To, msg.Body)
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("mail: log transport: %w", err)
	}

	t.log.Debug("mail.log.sent", "subject", msg.Subject)
	return nil
}
