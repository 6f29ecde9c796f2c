package logger

import (
	"context"
	"strings"
	"testing"

	"log/slog"
)

func TestComponentHelpersTagEveryLine(t *testing.T) {
	log, buf, lw := newTestLogger(formatKV)

	prev := L
	L = log
	defer func() { L = prev }()

	Info(context.Background(), "store", "user.approved", slog.Int64("chat_id", 7))
	if err := lw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "component=store") {
		t.Fatalf("component tag missing in %q", line)
	}
	if !strings.Contains(line, "event=user.approved") || !strings.Contains(line, "chat_id=7") {
		t.Fatalf("event attrs missing in %q", line)
	}
}

func TestComponentNilSafe(t *testing.T) {
	prev := L
	L = nil
	defer func() { L = prev }()

	if Component("backend") == nil {
		t.Fatal("Component must fall back to a usable logger before Init")
	}
}
