package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readLogEntries(t *testing.T, dir string) []map[string]any {
	t.Helper()

	f, err := os.Open(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_WritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("session started", "round_count", 2)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries := readLogEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["msg"] != "session started" {
		t.Errorf("msg = %v, want %q", entries[0]["msg"], "session started")
	}
	if entries[0]["round_count"] != float64(2) {
		t.Errorf("round_count = %v, want 2", entries[0]["round_count"])
	}
}

func TestNewLogger_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions", "abc")

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("session directory was not created: %v", err)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.Close()

	entries := readLogEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries at WARN level, got %d", len(entries))
	}
}

func TestLogger_AttributeChaining(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	child := logger.WithSession("sess-1").WithPhase("voting").WithExpert("red-team")
	child.Info("ballot received")
	logger.Close()

	entries := readLogEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["session_id"] != "sess-1" {
		t.Errorf("session_id = %v, want sess-1", entry["session_id"])
	}
	if entry["phase"] != "voting" {
		t.Errorf("phase = %v, want voting", entry["phase"])
	}
	if entry["expert_role"] != "red-team" {
		t.Errorf("expert_role = %v, want red-team", entry["expert_role"])
	}
}

func TestLogger_ChildDoesNotMutateParent(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	_ = logger.WithPhase("assessment")
	logger.Info("no phase here")
	logger.Close()

	entries := readLogEntries(t, dir)
	if _, ok := entries[0]["phase"]; ok {
		t.Error("parent logger gained the child's phase attribute")
	}
}

func TestNopLogger_DoesNotPanic(t *testing.T) {
	logger := NopLogger()
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
	if err := logger.Close(); err != nil {
		t.Errorf("Close on NopLogger returned error: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
