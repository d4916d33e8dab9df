package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTransport_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := NewLogTransport(&buf, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := tr.Send(context.Background(), Message{To: "user@domain.com", Body: "Your activation code is 1234"})
	require.NoError(t, err)
	assert.Equal(t, "user@domain.com: Your activation code is 1234\n", buf.String())
}

func TestLogTransport_Rejects(t *testing.T) {
	t.Parallel()

	tr := NewLogTransport(io.Discard, nil)

	require.ErrorIs(t, tr.Send(context.Background(), Message{Body: "x"}), ErrInvalidMessage)
	require.ErrorIs(t, tr.Send(context.Background(), Message{To: "a@b.io"}), ErrInvalidMessage)
	require.ErrorIs(t, tr.Send(context.Background(), Message{To: "a@b.io\r\nBcc: x@y.io", Body: "x"}), ErrInvalidMessage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tr.Send(ctx, Message{To: "a@b.io", Body: "x"}), context.Canceled)
}

func TestNewSMTPTransport_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewSMTPTransport(SMTPConfig{From: "noreply@domain.com"})
	require.Error(t, err)

	_, err = NewSMTPTransport(SMTPConfig{Addr: "no-port", From: "noreply@domain.com"})
	require.Error(t, err)

	_, err = NewSMTPTransport(SMTPConfig{Addr: "smtp.domain.com:587"})
	require.Error(t, err)

	tr, err := NewSMTPTransport(SMTPConfig{Addr: "smtp.domain.com:587", From: "noreply@domain.com", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, tr.auth)
}

func TestSMTPTransport_Send(t *testing.T) {
	t.Parallel()

	tr, err := NewSMTPTransport(SMTPConfig{Addr: "smtp.domain.com:25", From: "noreply@domain.com"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	tr.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Equal(t, "noreply@domain.com", from)
		return nil
	}

	err = tr.Send(context.Background(), Message{To: "user@domain.com", Subject: "Activate", Body: "Your activation code is 1234"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.domain.com:25", gotAddr)
	assert.Equal(t, []string{"user@domain.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Activate\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nYour activation code is 1234\r\n"))
}

func TestSMTPTransport_SendFailureAndTimeout(t *testing.T) {
	t.Parallel()

	tr, err := NewSMTPTransport(SMTPConfig{Addr: "smtp.domain.com:25", From: "noreply@domain.com", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	boom := errors.New("relay rejected")
	tr.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }
	require.ErrorIs(t, tr.Send(context.Background(), Message{To: "a@b.io", Body: "x"}), boom)

	release := make(chan struct{})
	defer close(release)
	tr.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}
	require.ErrorIs(t, tr.Send(context.Background(), Message{To: "a@b.io", Body: "x"}), context.DeadlineExceeded)
}
