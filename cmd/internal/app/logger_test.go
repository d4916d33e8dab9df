package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "")

	log.Info("server.start", "addr", "127.0.0.1:8080")

	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"msg":"server.start"`) {
		t.Fatalf("expected JSON line, got %q", out)
	}
	if !strings.Contains(out, `"source"`) {
		t.Fatalf("expected source attribute, got %q", out)
	}
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "text")

	log.Info("hidden")
	log.With("component", "mail").WithGroup("task").Warn("activation.enqueue.queue_full", "id", "01J", "note", "queue full")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	for _, want := range []string{"[WARN]", "activation.enqueue.queue_full", "component=mail", "task.id=01J", `task.note="queue full"`, "src=logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":        `""`,
		"plain":   "plain",
		"a b":     `"a b"`,
		"k=v":     `"k=v"`,
		`say "x"`: `"say \"x\""`,
	}
	for in, want := range cases {
		if got := quoteIfNeeded(in); got != want {
			t.Fatalf("quoteIfNeeded(%q)=%q want=%q", in, got, want)
		}
	}
}
