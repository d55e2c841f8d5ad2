package observability

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() err = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
	_ = logger.Sync()
}

func TestNewLogger_DevEncoder(t *testing.T) {
	t.Setenv("ENV_NAME", "dev")
	if _, err := NewLogger(); err != nil {
		t.Fatalf("NewLogger() err = %v in dev mode", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zap.AtomicLevel
	}{
		{"DEBUG", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{" warn ", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"ERROR", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"bogus", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tc := range tests {
		if got := parseLogLevel(tc.in); got.Level() != tc.want.Level() {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tc.in, got.Level(), tc.want.Level())
		}
	}
}
