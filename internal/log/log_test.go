package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	return NewWithHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerLevelsWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Info("hello", "k", "v")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0]["msg"] != "hello" {
		t.Errorf("unexpected msg: %v", lines[0]["msg"])
	}
	if lines[0]["k"] != "v" {
		t.Errorf("expected attr k=v, got %v", lines[0]["k"])
	}
}

func TestComponentTagsChildLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Component("signer").Warn("careful")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0]["component"] != "signer" {
		t.Errorf("expected component=signer, got %v", lines[0]["component"])
	}
}

func TestSessionTagsTsxCtr(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Session(42).Error("boom")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	tsxCtr, ok := lines[0]["tsx_ctr"].(float64)
	if !ok || tsxCtr != 42 {
		t.Errorf("expected tsx_ctr=42, got %v", lines[0]["tsx_ctr"])
	}
}

func TestSetDefaultAndPackageLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	defer SetDefault(prev)

	SetDefault(newTestLogger(&buf))
	Component("hostagent").Info("ready", "socket", "/tmp/x.sock")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0]["component"] != "hostagent" {
		t.Errorf("expected component=hostagent, got %v", lines[0]["component"])
	}
	if lines[0]["socket"] != "/tmp/x.sock" {
		t.Errorf("expected socket attr, got %v", lines[0]["socket"])
	}
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	SetDefault(nil)
	if Default() != prev {
		t.Error("SetDefault(nil) should leave the default logger unchanged")
	}
}
