package logger_test

import (
	"testing"

	"github.com/jonesrussell/searchkit/logger"
)

func TestNew(t *testing.T) {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "debug"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Smoke the interface; output goes to stdout.
	log.Debug("debug message", logger.String("key", "value"))
	log.Info("info message", logger.Int("count", 3))
	child := log.With(logger.String("component", "test"))
	child.Warn("warn message", logger.Error(nil))
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "loud"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	log.Info("still works")
}

func TestNoOp(t *testing.T) {
	t.Helper()

	log := logger.NewNop()
	log.Debug("ignored")
	log.Info("ignored")
	log.Warn("ignored")
	log.Error("ignored")
	if log.With(logger.String("k", "v")) == nil {
		t.Error("With() returned nil")
	}
	if err := log.Sync(); err != nil {
		t.Errorf("Sync() error: %v", err)
	}
}
