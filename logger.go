package btmon

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger denotes a generic logger interface
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// NewDefaultLogger instantiates a zap based logger writing to stderr. In debug
// mode, structured JSON is emitted down to debug level, otherwise only warnings
// and errors are printed in console format.
func NewDefaultLogger(debug bool) Logger {
	var (
		encoder zapcore.Encoder
		level   = zapcore.WarnLevel
	)

	if debug {
		level = zapcore.DebugLevel
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	return NewZapLogger(zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)))
}

// NewZapLogger wraps an existing zap logger
func NewZapLogger(logger *zap.Logger) Logger {
	return logger.Sugar()
}

// NullLogger discards all log messages
type NullLogger struct{}

// Debugf does nothing
func (NullLogger) Debugf(format string, args ...interface{}) {}

// Infof does nothing
func (NullLogger) Infof(format string, args ...interface{}) {}

// Warnf does nothing
func (NullLogger) Warnf(format string, args ...interface{}) {}

// Errorf does nothing
func (NullLogger) Errorf(format string, args ...interface{}) {}

// Fatalf exits the program
func (NullLogger) Fatalf(format string, args ...interface{}) {
	os.Exit(1)
}
