package lightpass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerLevels(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core, logs := observer.New(level)
	log := NewLoggerFromCore(core, level)

	log.Debugf("hidden %d", 1)
	log.Infof("shown %d", 2)
	assert.False(t, log.DebugEnabled())

	log.SetDebug(true)
	log.Debugf("now visible")
	assert.True(t, log.DebugEnabled())

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"shown 2", "now visible"}, msgs)
}

func TestAppLoggerFallsBackToNop(t *testing.T) {
	var app *App
	assert.NotNil(t, app.Logger())

	app = NewAppBuilder().Build()
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.SugaredLogger())
}

func TestLoggingModuleInstallsLogger(t *testing.T) {
	app := NewAppBuilder().UseModule(LoggingModule{Prefix: "test"}).Build()

	l, ok := app.Logger().(*DefaultLogger)
	if assert.True(t, ok) {
		assert.False(t, l.DebugEnabled())
	}
}

func TestAppFailLogsFirstError(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core, logs := observer.New(level)
	app := NewAppBuilder().Build()
	app.addResources(NewLoggerFromCore(core, level))

	app.fail(assert.AnError)
	app.fail(nil)
	assert.True(t, app.Failed())
	assert.ErrorIs(t, app.Run(), assert.AnError)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
