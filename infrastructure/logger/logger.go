// Package logger owns the process-wide zap logger. It is initialized
// once at startup (before configuration is loaded, so it reads its own
// environment variables) and handed out through Get/Named.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Config defines logger configuration. The rotation fields apply only
// to the production file sink.
type Config struct {
	Environment string // "development", "testing", "production"
	Level       string // "debug", "info", "warn", "error"
	Filename    string
	MaxSize     int // megabytes per file
	MaxBackups  int
	MaxAge      int // days
	Compress    bool
}

// DefaultConfig returns the logger configuration for an environment
func DefaultConfig(env string) *Config {
	switch env {
	case "production", "prod":
		return &Config{
			Environment: "production",
			Level:       "info",
			Filename:    "logs/diswantin.log",
			MaxSize:     500,
			MaxBackups:  10,
			MaxAge:      30,
			Compress:    true,
		}
	case "testing", "test":
		return &Config{
			Environment: "testing",
			Level:       "debug",
		}
	default: // development
		return &Config{
			Environment: "development",
			Level:       "debug",
		}
	}
}

// Init initializes the global logger. Only the first call takes
// effect.
func Init(cfg *Config) error {
	var err error
	once.Do(func() {
		err = initLogger(cfg)
	})
	return err
}

// InitFromEnv initializes the global logger from DISWANTIN_ENV
// (default "development"), with DISWANTIN_LOG_LEVEL and
// DISWANTIN_LOG_FILE overriding the environment's defaults.
func InitFromEnv() error {
	env := os.Getenv("DISWANTIN_ENV")
	if env == "" {
		env = "development"
	}
	cfg := DefaultConfig(env)

	if level := os.Getenv("DISWANTIN_LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
	if file := os.Getenv("DISWANTIN_LOG_FILE"); file != "" {
		cfg.Filename = file
	}

	return Init(cfg)
}

func initLogger(cfg *Config) error {
	var logger *zap.Logger
	var err error

	level := parseLogLevel(cfg.Level)

	if cfg.Environment == "production" {
		logger, err = newProductionLogger(cfg, level)
	} else {
		logger, err = newDevelopmentLogger(level)
	}
	if err != nil {
		return err
	}

	globalLogger = logger
	return nil
}

// newProductionLogger builds a JSON logger writing to a
// lumberjack-rotated file
func newProductionLogger(cfg *Config, level zapcore.Level) (*zap.Logger, error) {
	writer := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), level)

	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // skip the package-level wrappers
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("environment", cfg.Environment),
			zap.String("service", "diswantin"),
		),
	)

	return logger, nil
}

// newDevelopmentLogger builds a colored console logger
func newDevelopmentLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	config.Level = zap.NewAtomicLevelAt(level)

	return config.Build(
		zap.AddCallerSkip(1), // skip the package-level wrappers
	)
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Set replaces the global logger. Used when embedding the app into a
// host process that already owns a configured zap logger.
func Set(l *zap.Logger) {
	if l != nil {
		globalLogger = l
	}
}

// Get returns the global logger, or a no-op logger before Init
func Get() *zap.Logger {
	if globalLogger != nil {
		return globalLogger
	}
	return zap.NewNop()
}

// Named returns a named child of the global logger
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// With returns the global logger with additional fixed fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Package-level wrappers over the global logger.

func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Get().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Get().Fatal(msg, fields...)
}

func DPanic(msg string, fields ...zap.Field) {
	Get().DPanic(msg, fields...)
}

func Panic(msg string, fields ...zap.Field) {
	Get().Panic(msg, fields...)
}
