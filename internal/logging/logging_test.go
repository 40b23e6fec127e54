package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"local", "production"} {
		log, err := New("pitchside", env)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", env, err)
		}
		if log == nil {
			t.Fatalf("%s: expected logger", env)
		}
	}
}

func TestNew_DevelopmentOnlyLocally(t *testing.T) {
	local, _ := New("pitchside", "local")
	prod, _ := New("pitchside", "production")

	if !local.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug logging locally")
	}
	if prod.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug logging disabled outside local")
	}
}
