package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerIsNeverNil(t *testing.T) {
	if Logger == nil {
		t.Fatal("Logger should be initialized to a no-op at package load")
	}
	// Must not panic before Initialize
	Logger.Debugw("pre-init log", "key", "value")
}

func TestInitializeJSON(t *testing.T) {
	if err := Initialize(true); err != nil {
		t.Fatalf("Initialize(true) failed: %v", err)
	}
	if !JSONOutput {
		t.Fatal("JSONOutput should be true after Initialize(true)")
	}
}

func TestInitializeConsole(t *testing.T) {
	if err := Initialize(false); err != nil {
		t.Fatalf("Initialize(false) failed: %v", err)
	}
	if JSONOutput {
		t.Fatal("JSONOutput should be false after Initialize(false)")
	}
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(nil)

	Logger.Infow("chain verified", "entries", 5)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	if logs.All()[0].Message != "chain verified" {
		t.Fatalf("unexpected message %q", logs.All()[0].Message)
	}
}
