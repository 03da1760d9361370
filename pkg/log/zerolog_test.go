package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func captureAdapter() (*ZerologAdapter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewZerologAdapterWithLogger(zerolog.New(&buf)), &buf
}

func TestZerologAdapterLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l Logger)
		level string
	}{
		{"debug", func(l Logger) { l.Debug("m") }, "debug"},
		{"info", func(l Logger) { l.Info("m") }, "info"},
		{"warn", func(l Logger) { l.Warn("m") }, "warn"},
		{"error", func(l Logger) { l.Error("m") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, buf := captureAdapter()
			tt.log(adapter)

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["message"] != "m" {
				t.Errorf("message = %v", entry["message"])
			}
		})
	}
}

func TestZerologAdapterFields(t *testing.T) {
	adapter, buf := captureAdapter()

	adapter.Info("queued",
		String("url", "/api/transfer"),
		Int("count", 3),
		Int64("timestamp", 1700000000000),
		Bool("replayed", true),
		Duration("elapsed", 250*time.Millisecond),
		Err(errors.New("boom")),
		Any("extra", []string{"a"}),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}

	if entry["url"] != "/api/transfer" {
		t.Errorf("url = %v", entry["url"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v", entry["count"])
	}
	if entry["timestamp"] != float64(1700000000000) {
		t.Errorf("timestamp = %v", entry["timestamp"])
	}
	if entry["replayed"] != true {
		t.Errorf("replayed = %v", entry["replayed"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v", entry["error"])
	}
	if _, ok := entry["extra"]; !ok {
		t.Error("extra field missing")
	}
}

func TestNoopLoggerDiscards(t *testing.T) {
	// Must not panic with nil fields or values.
	l := NewNoopLogger()
	l.Debug("m")
	l.Info("m", String("k", "v"))
	l.Warn("m", Err(nil))
	l.Error("m")
}
