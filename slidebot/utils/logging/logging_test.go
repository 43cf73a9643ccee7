package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggersUsableBeforeInit(t *testing.T) {
	// must not panic on the no-op defaults
	AppLogger.Info("hello")
	ErrorLogger.Error("boom")
	LogDuration(context.Background(), "noop")()
}

func TestInitLoggerCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	InitLogger(dir)
	defer func() {
		Sync()
	}()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected log dir %s to exist: %v", dir, err)
	}
}

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	if got := RunID(ctx); got != "run-123" {
		t.Errorf("expected run-123, got %q", got)
	}
	if got := RunID(context.Background()); got != "" {
		t.Errorf("expected empty run id, got %q", got)
	}
}
