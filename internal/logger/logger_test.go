package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Simplici0/mpsdeal/internal/config"
)

func TestNew_DevelopmentIsDebug(t *testing.T) {
	l, err := New(config.Config{AppEnv: "development"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug enabled in development")
	}
}

func TestNew_ExplicitLevel(t *testing.T) {
	l, err := New(config.Config{AppEnv: "production", Log: config.LogConfig{Level: "warn"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.Config{Log: config.LogConfig{Level: "loud"}}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
