package dcmtrace

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func normaliseWriters(writers ...zapcore.WriteSyncer) zapcore.WriteSyncer {
	if len(writers) == 1 {
		return writers[0]
	}
	return zapcore.NewMultiWriteSyncer(writers...)
}

// NewJSONLogger creates a `zap.SugaredLogger` configured for JSON output to `writers`.
// Its level follows SetLoggingLevel.
func NewJSONLogger(writers ...zapcore.WriteSyncer) *zap.SugaredLogger {
	writer := normaliseWriters(writers...)
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, level)
	return zap.New(core).Sugar()
}

// NewConsoleLogger creates a `zap.SugaredLogger` configured for human-readable output to `writers`.
// Its level follows SetLoggingLevel.
func NewConsoleLogger(writers ...zapcore.WriteSyncer) *zap.SugaredLogger {
	writer := normaliseWriters(writers...)
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), writer, level)
	return zap.New(core).Sugar()
}

// NewLogger returns a logger for `format` ("console" or "json") writing to `writers`
func NewLogger(format string, writers ...zapcore.WriteSyncer) *zap.SugaredLogger {
	if format == "json" {
		return NewJSONLogger(writers...)
	}
	return NewConsoleLogger(writers...)
}
