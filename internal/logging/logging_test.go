package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestLogger_UsableBeforeInit(t *testing.T) {
	Logger.Infow("not initialized", "key", "value")
	Sync()
}

func TestInit(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	for _, debug := range []bool{true, false} {
		if err := Init(debug); err != nil {
			t.Fatalf("Init(%v) failed: %v", debug, err)
		}
		if Logger == orig {
			t.Errorf("Init(%v) did not replace the logger", debug)
		}
	}

	if err := Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("production logger should not log at debug level")
	}
}

func TestSetLevel_LowersProductionLevel(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	if err := Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Logger.Desugar().Core().Enabled(zap.InfoLevel) {
		t.Fatal("production logger should start at warn")
	}

	SetLevel(zap.InfoLevel)
	if !Logger.Desugar().Core().Enabled(zap.InfoLevel) {
		t.Error("info should be enabled after SetLevel")
	}
}

func TestSetLevel_KeepsDebug(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { Logger = orig })

	if err := Init(true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	SetLevel(zap.InfoLevel)
	if !Logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("debug output should survive SetLevel")
	}
}
