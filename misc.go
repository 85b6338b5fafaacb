package dcmtrace

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

/*
===============================================================================
    Configuration
===============================================================================
*/

// DefaultMaxValueLength is the length above which a value is skipped rather
// than read (16 MiB).
const DefaultMaxValueLength uint32 = 1 << 24

// Config represents the application configuration
type Config struct {
	LogLevel  string
	LogFormat string

	// ImagePath is where the first defined-length Pixel Data is written
	ImagePath string
	// ExtractPixels disables the image sink when false
	ExtractPixels bool
	// MaxValueLength is the largest value length that is read and printed.
	// Longer values are reported as [SKIP] and seeked past.
	MaxValueLength uint32
	// Annotate appends dictionary keywords to trace lines
	Annotate bool
	// MetricsFile, when set, receives walk statistics in Prometheus text format
	MetricsFile string

	// do not access / write `_set`. It is used internally.
	_set bool
}

// intFromEnv retrieves `key` from the OS environment.
// if the key is not found, or cannot be expressed as an integer,
// `found` will be false.
func intFromEnv(key string) (val int, found bool) {
	valStr, found := os.LookupEnv(key)
	if !found {
		return
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		found = false
	}
	return
}

func intFromEnvDefault(key string, def int) (val int) {
	val, found := intFromEnv(key)
	if !found {
		val = def
	}
	return
}

func strFromEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

func strFromEnvDefault(key string, def string) (val string) {
	val, found := strFromEnv(key)
	if !found {
		val = def
	}
	return
}

func boolFromEnv(key string) (val bool, found bool) {
	valStr, found := os.LookupEnv(key)
	if !found {
		return
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		found = false
	}
	return
}

func boolFromEnvDefault(key string, def bool) (val bool) {
	val, found := boolFromEnv(key)
	if !found {
		val = def
	}
	return
}

// DefaultConfig returns the configuration used when the environment is empty
func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      "console",
		ImagePath:      DefaultImagePath,
		ExtractPixels:  true,
		MaxValueLength: DefaultMaxValueLength,
	}
}

// LoadConfig builds a Config from the `DCMTRACE_*` environment variables,
// falling back to DefaultConfig for anything unset or unparseable.
func LoadConfig() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		LogLevel:      strings.ToLower(strFromEnvDefault("DCMTRACE_LOGLEVEL", def.LogLevel)),
		LogFormat:     strings.ToLower(strFromEnvDefault("DCMTRACE_LOGFORMAT", def.LogFormat)),
		ImagePath:     strFromEnvDefault("DCMTRACE_IMAGEPATH", def.ImagePath),
		ExtractPixels: boolFromEnvDefault("DCMTRACE_EXTRACTPIXELS", def.ExtractPixels),
		Annotate:      boolFromEnvDefault("DCMTRACE_ANNOTATE", def.Annotate),
		MetricsFile:   strFromEnvDefault("DCMTRACE_METRICSFILE", def.MetricsFile),
	}
	maxlen := intFromEnvDefault("DCMTRACE_MAXVALUELENGTH", int(def.MaxValueLength))
	if maxlen <= 0 || int64(maxlen) > int64(UndefinedLength-1) {
		return cfg, fmt.Errorf(`invalid "DCMTRACE_MAXVALUELENGTH" %d: must be in [1, %d]`, maxlen, UndefinedLength-1)
	}
	cfg.MaxValueLength = uint32(maxlen)
	if _, err := levelFromString(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf(`invalid "DCMTRACE_LOGLEVEL": %w`, err)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return cfg, fmt.Errorf(`invalid "DCMTRACE_LOGFORMAT" %q. Choose from "console" or "json"`, cfg.LogFormat)
	}
	cfg._set = true
	return cfg, nil
}

var config Config

// GetConfig returns the application configuration.
// Will set from environment if not already set.
func GetConfig() Config {
	if !config._set {
		cfg, err := LoadConfig()
		if err != nil {
			panic(err)
		}
		if err := SetLoggingLevel(cfg.LogLevel); err != nil {
			panic(err)
		}
		config = cfg
	}
	return config
}

// OverrideConfig overrides the configuration parsed from environment with the one provided
func OverrideConfig(newconfig Config) {
	if !newconfig._set { // to prevent being reverted with subsequent calls to `GetConfig`
		newconfig._set = true
	}
	config = newconfig
}

/*
===============================================================================
    Logging
===============================================================================
*/

// level is shared by every logger built by this package, so that
// SetLoggingLevel applies to loggers created before and after the call.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

var logger = NewConsoleLogger(zapcore.Lock(os.Stderr))

// Logger returns the package logger
func Logger() *zap.SugaredLogger {
	return logger
}

// SetLogger replaces the package logger. A nil `l` installs a no-op logger.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	logger = l
}

// levelFromString maps the level vocabulary onto a zap level
func levelFromString(lvl string) (zapcore.Level, error) {
	switch strings.ToLower(lvl) {
	case "debug", "5":
		return zapcore.DebugLevel, nil
	case "info", "4":
		return zapcore.InfoLevel, nil
	case "warn", "3":
		return zapcore.WarnLevel, nil
	case "error", "2":
		return zapcore.ErrorLevel, nil
	case "fatal", "1":
		return zapcore.FatalLevel, nil
	case "disabled", "none", "off", "0":
		return zapcore.FatalLevel + 1, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(`unknown level %q. Choose from "debug", "info", "warn", "error", "fatal", or "none"`, lvl)
	}
}

// SetLoggingLevel takes a level string and accordingly enables/disables loggers
// Supported values:
// "debug" / "5": all logging enabled
// "info" / "4":  info and above enabled
// "warn" / "3":  warn and above enabled
// "error" / "2": error and above enabled
// "fatal" / "1": only fatal enabled
// "disabled" / "none" / "off", "0": all loggers disabled
func SetLoggingLevel(lvl string) error {
	l, err := levelFromString(lvl)
	if err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Debugf logs at debug level. Arguments are handled in the manner of fmt.Printf
func Debugf(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Infof logs at info level. Arguments are handled in the manner of fmt.Printf
func Infof(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

// Warnf logs at warn level. Arguments are handled in the manner of fmt.Printf
func Warnf(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

// Errorf logs at error level. Arguments are handled in the manner of fmt.Printf
func Errorf(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}
