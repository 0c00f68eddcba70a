package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSLogLoggerKeyvals(t *testing.T) {
	var buf bytes.Buffer
	l := NewSLogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.Info("policy loaded", "count", 3, "source", "file", "ok", true)
	out := buf.String()
	for _, want := range []string{"policy loaded", "count=3", "source=file", "ok=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}

	buf.Reset()
	l.Debug("detail")
	if !strings.Contains(buf.String(), "detail") {
		t.Fatalf("debug output %q", buf.String())
	}
}

func TestSLogLoggerDefault(t *testing.T) {
	if NewSLogLogger(nil) == nil {
		t.Fatalf("nil slog must fall back to the default logger")
	}
}

func TestNullLogger(t *testing.T) {
	var l Logger = NewNullLogger()
	// must accept any shape without side effects
	l.Debug("a")
	l.Info("b", "k")
	l.Warn("c", "k", "v")
	l.Error("d", 1, 2, 3)
}
