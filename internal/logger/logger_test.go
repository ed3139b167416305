package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
	}{
		{"production", false},
		{"local", true},
		{"", true},
	}
	for _, tt := range tests {
		log, err := New(tt.env)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.env, err)
		}
		if got := log.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
			t.Errorf("New(%q) debug enabled = %v, want %v", tt.env, got, tt.wantDebug)
		}
	}
}
