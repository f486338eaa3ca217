package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Debug(t *testing.T) {
	log, err := New(true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger should enable debug level")
	}

	// Should not panic
	log.Debug("test message")
}

func TestNew_Production(t *testing.T) {
	log, err := New(false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should not enable debug level")
	}
}

func TestMust(t *testing.T) {
	// Should not panic
	log := Must(true)
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}
