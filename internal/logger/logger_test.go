package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		wantErr     bool
	}{
		{"production", "production", "info", false},
		{"development", "development", "debug", false},
		{"default level", "development", "", false},
		{"bad level", "development", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.environment, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNew_LevelApplied(t *testing.T) {
	logger, err := New("production", "warn")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zap.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestNewGormLogger(t *testing.T) {
	if NewGormLogger(zap.NewNop(), "production") == nil {
		t.Error("NewGormLogger() returned nil")
	}
}
