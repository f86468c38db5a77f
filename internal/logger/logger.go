package logger

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type implLogger struct {
	sugar *zap.SugaredLogger
	level zapcore.Level
}

// New creates a Logger writing to stdout. format "json" selects the JSON
// encoder, anything else the console encoder.
func New(level, format string) Logger {
	lvl := parseLevel(level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)
	return &implLogger{
		sugar: zap.New(core).Sugar(),
		level: lvl,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &implLogger{
		sugar: zap.NewNop().Sugar(),
		level: zapcore.FatalLevel,
	}
}

// parseLevel maps a config level to zap, defaulting to info.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (l *implLogger) shouldLog(level string) bool {
	target, err := zapcore.ParseLevel(level)
	if err != nil {
		return true
	}
	return target >= l.level
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}

func (l *implLogger) Sync() error {
	return l.sugar.Sync()
}
