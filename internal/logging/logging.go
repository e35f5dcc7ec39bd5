package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until Init is called.
var Logger = zap.NewNop().Sugar()

var level = zap.NewAtomicLevelAt(zap.WarnLevel)

func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	level = cfg.Level
	Logger = logger.Sugar()
	return nil
}

// SetLevel changes the minimum level of the logger built by Init. It never
// raises the level above debug when Init enabled debug output.
func SetLevel(l zapcore.Level) {
	if level.Enabled(zap.DebugLevel) {
		return
	}
	level.SetLevel(l)
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	_ = Logger.Sync()
}
