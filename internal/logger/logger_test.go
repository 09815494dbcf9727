package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Development(t *testing.T) {
	log, err := New(true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	// Should not panic
	log.Info("test message")
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level enabled in debug mode")
	}
}

func TestNew_Production(t *testing.T) {
	log, err := New(false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level disabled in production mode")
	}
}

func TestMust(t *testing.T) {
	// Should not panic
	log := Must(true)
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, zapcore.InfoLevel)

	log.Debug("hidden")
	log.Info("report rendered", zap.String("isin", "JP90C0003PR7"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v, log: %s", err, buf.String())
	}
	if entry["service"] != Service {
		t.Errorf("expected service %s, got %v", Service, entry["service"])
	}
	if entry["isin"] != "JP90C0003PR7" {
		t.Errorf("expected isin field, got %v", entry["isin"])
	}
	if entry["msg"] != "report rendered" {
		t.Errorf("expected msg, got %v", entry["msg"])
	}
}
