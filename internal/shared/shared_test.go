package shared

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == second {
		t.Error("expected distinct ids")
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("id %q is not a valid uuid: %v", first, err)
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(io.Discard)
	if logger == nil {
		t.Fatal("expected a logger")
	}
	if logger.GetLevel() == log.DebugLevel {
		t.Error("debug should not be the default level")
	}
}

func TestSetLogLevel(t *testing.T) {
	logger := NewLogger(io.Discard)

	SetLogLevel(logger, log.DebugLevel)

	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}
