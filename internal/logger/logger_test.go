package logger

import (
	"testing"

	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/vendordesk/internal/config"
)

func TestBuildHonoursLevel(t *testing.T) {
	logger, err := Build(config.Observability{LogLevel: "warn", LogEncoding: "json", ServiceName: "vendordesk"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn should be enabled")
	}
}

func TestBuildFallsBackToInfo(t *testing.T) {
	logger, err := Build(config.Observability{LogLevel: "loud", LogEncoding: "console"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected info level fallback")
	}
}

func TestNewRegistersSyncHook(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	if _, err := New(lc, config.Config{Observability: config.Observability{LogLevel: "info", LogEncoding: "json"}}); err != nil {
		t.Fatalf("New: %v", err)
	}
	lc.RequireStart().RequireStop()
}
