package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"riskgate/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskgate.log")
	logger, err := NewLogger(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}, "riskgate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("model loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"model loaded"`) {
		t.Fatalf("expected message in log file, got %s", out)
	}
	if !strings.Contains(out, `"service_name":"riskgate"`) {
		t.Fatalf("expected service name in log file, got %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestNewLoggerConsole(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Format: "console"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}
