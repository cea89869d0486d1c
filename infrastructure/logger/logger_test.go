package logger

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func resetGlobal() {
	if globalLogger != nil {
		globalLogger.Sync()
	}
	globalLogger = nil
	once = sync.Once{}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
	}{
		{"development", "development", "debug"},
		{"testing", "testing", "debug"},
		{"production", "production", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetGlobal()

			err := Init(&Config{
				Environment: tt.environment,
				Level:       tt.level,
				Filename:    t.TempDir() + "/diswantin.log",
				MaxSize:     1,
				MaxBackups:  1,
				MaxAge:      1,
			})
			if err != nil {
				t.Fatalf("Init() error = %v", err)
			}

			Debug("debug line", zap.String("k", "v"))
			Info("info line", zap.String("k", "v"))
			Warn("warn line", zap.String("k", "v"))
			Error("error line", zap.String("k", "v"))
		})
	}
}

func TestInitFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
	}{
		{"development", "development", "debug"},
		{"production", "production", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetGlobal()

			t.Setenv("DISWANTIN_ENV", tt.env)
			t.Setenv("DISWANTIN_LOG_LEVEL", tt.level)
			t.Setenv("DISWANTIN_LOG_FILE", t.TempDir()+"/diswantin.log")

			if err := InitFromEnv(); err != nil {
				t.Fatalf("InitFromEnv() error = %v", err)
			}
			if globalLogger == nil {
				t.Error("global logger is nil after InitFromEnv()")
			}
		})
	}
}

func TestNamed(t *testing.T) {
	defer resetGlobal()

	if err := Init(DefaultConfig("testing")); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	tasksLog := Named("tasks")
	tasksLog.Info("task created")

	selectorLog := tasksLog.Named("selector")
	selectorLog.Info("current task resolved")
}

func TestWith(t *testing.T) {
	defer resetGlobal()

	if err := Init(DefaultConfig("testing")); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	log := With(
		zap.String("request_id", "req-123"),
		zap.Int64("user_id", 7),
	)
	log.Info("marking task done", zap.String("client_id", "task-456"))
	log.Info("task marked done")
}

func TestSetReplacesGlobal(t *testing.T) {
	defer resetGlobal()

	own := zap.NewNop()
	Set(own)
	if Get() != own {
		t.Error("Get() did not return the logger passed to Set()")
	}

	// A nil argument keeps the current logger.
	Set(nil)
	if Get() != own {
		t.Error("Set(nil) replaced the logger")
	}
}

func TestGetBeforeInit(t *testing.T) {
	resetGlobal()
	if Get() == nil {
		t.Error("Get() = nil before Init, want a no-op logger")
	}
}
