package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}

func TestJSONLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSON(&buf, zapcore.InfoLevel)

	logger.Debug("hidden")
	logger.Info("refresh rejected", zap.String("reason", "superseded_token"))
	_ = logger.Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["msg"] != "refresh rejected" || entry["reason"] != "superseded_token" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected level info, got %v", entry["level"])
	}
}

func TestNewDevelopment(t *testing.T) {
	logger, err := New(Config{Level: "debug", Dev: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level enabled")
	}
}
