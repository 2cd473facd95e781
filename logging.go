package lightpass

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger is a zap sugared logger whose debug level can be toggled at runtime.
type DefaultLogger struct {
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	if prefix != "" {
		base = base.Named(prefix)
	}
	return &DefaultLogger{level: level, sugar: base.Sugar()}
}

// NewLoggerFromCore wraps an existing zap core, e.g. an observer in tests.
func NewLoggerFromCore(core zapcore.Core, level zap.AtomicLevel) *DefaultLogger {
	return &DefaultLogger{level: level, sugar: zap.New(core).Sugar()}
}

// Sugar exposes the underlying logger for packages that take *zap.SugaredLogger.
func (l *DefaultLogger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	if enabled {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

// LoggingModule installs a default logger as a resource.
type LoggingModule struct {
	Prefix string
	Debug  bool
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	logger := NewDefaultLogger(m.Prefix, m.Debug)
	app.addResources(logger)
}

// Nop logger and App helper accessor

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}

// SugaredLogger returns the zap logger behind the app's Logger, or a no-op one.
func (app *App) SugaredLogger() *zap.SugaredLogger {
	if l, ok := app.Logger().(interface{ Sugar() *zap.SugaredLogger }); ok {
		return l.Sugar()
	}
	return zap.NewNop().Sugar()
}
