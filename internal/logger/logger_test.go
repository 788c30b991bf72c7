package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
		enabled    zapcore.Level
	}{
		{"prod", "", false, zapcore.InfoLevel},
		{"local", "", false, zapcore.DebugLevel},
		{"prod", "warn", false, zapcore.WarnLevel},
		{"staging", "", true, 0},
		{"local", "loud", true, 0},
	}
	for _, tc := range tests {
		l, err := NewLogger(tc.env, tc.level)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewLogger(%q, %q): expected error", tc.env, tc.level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewLogger(%q, %q): unexpected error: %v", tc.env, tc.level, err)
		}
		if !l.Core().Enabled(tc.enabled) {
			t.Errorf("NewLogger(%q, %q): level %s not enabled", tc.env, tc.level, tc.enabled)
		}
		if tc.enabled > zapcore.DebugLevel && l.Core().Enabled(tc.enabled-1) {
			t.Errorf("NewLogger(%q, %q): level below %s enabled", tc.env, tc.level, tc.enabled)
		}
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger for empty context")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}
}

func TestWith(t *testing.T) {
	base := zap.NewExample()
	ctx := With(ContextWithLogger(context.Background(), base), zap.String("index", "logs"))
	if FromContext(ctx) == base {
		t.Error("expected derived logger")
	}
}

func TestFromContextOr(t *testing.T) {
	def := zap.NewExample()
	if FromContextOr(context.Background(), def) != def {
		t.Error("expected fallback logger")
	}
	l := zap.NewExample()
	if FromContextOr(ContextWithLogger(context.Background(), l), def) != l {
		t.Error("expected stored logger")
	}
}
