package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
name_max: 32
max_threads: 64
name_budget: 4096
log_level: debug
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.NameMax != 32 || cfg.MaxThreads != 64 || cfg.NameBudget != 4096 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// Unset keys keep their defaults.
	if cfg.MetricsNamespace != "lwp" {
		t.Errorf("MetricsNamespace = %q, want lwp", cfg.MetricsNamespace)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"name_max":    "name_max: 0",
		"max_threads": "max_threads: -1",
		"log_level":   "log_level: loud",
		"syntax":      "name_max: [",
	}
	for name, doc := range cases {
		if _, err := LoadConfig([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lwp.yaml")
	if err := os.WriteFile(path, []byte("max_blocks: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.MaxBlocks != 8 || cfg.NameMax != DefaultNameMax {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, fields ...Field) { l.add("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, fields ...Field)  { l.add("INFO", msg) }
func (l *recordingLogger) Warn(msg string, fields ...Field)  { l.add("WARN", msg) }
func (l *recordingLogger) Error(msg string, fields ...Field) { l.add("ERROR", msg) }

func (l *recordingLogger) add(level, msg string) {
	l.lines = append(l.lines, level+" "+msg)
}

func TestLevelLogger(t *testing.T) {
	rec := &recordingLogger{}
	l := NewLevelLogger(rec, LevelWarn)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	if got := strings.Join(rec.lines, ","); got != "WARN w,ERROR e" {
		t.Fatalf("logged %q", got)
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
	if lvl, _ := ParseLevel(""); lvl != LevelInfo {
		t.Errorf("ParseLevel(\"\") = %v, want info", lvl)
	}
}

func TestFormatLine(t *testing.T) {
	got := formatLine("INFO", "lwp spawned", []Field{F("lwp", 2), F("stack_size", 0)})
	if !strings.Contains(got, "lwp spawned") || !strings.Contains(got, "lwp: 2") {
		t.Fatalf("formatLine = %q", got)
	}
}

// TestRuntime_LogLevelFromConfig tests that the runtime filters its logger
func TestRuntime_LogLevelFromConfig(t *testing.T) {
	rec := &recordingLogger{}
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.Logger = rec
	s := &fakeScheduler{}
	rt, err := NewRuntime(cfg, s)
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	_, _ = rt.Spawn(nopEntry, nil, nil, 0)
	if len(rec.lines) == 0 {
		t.Fatal("debug logs were dropped")
	}

	rec.lines = nil
	cfg.LogLevel = "error"
	rt, err = NewRuntime(cfg, &fakeScheduler{})
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	_, _ = rt.Spawn(nopEntry, nil, nil, 0)
	if len(rec.lines) != 0 {
		t.Fatalf("unexpected logs at error level: %v", rec.lines)
	}
}
