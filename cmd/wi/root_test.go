package wi

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// saveAndRestoreWorkDir saves workDir and restores it on cleanup.
func saveAndRestoreWorkDir(t *testing.T) {
	t.Helper()
	orig := workDir
	t.Cleanup(func() { workDir = orig })
}

func TestGetBaseDirDefaultsToCwd(t *testing.T) {
	saveAndRestoreWorkDir(t)
	workDir = ""

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got, err := getBaseDir()
	if err != nil {
		t.Fatalf("getBaseDir: %v", err)
	}
	if got != cwd {
		t.Fatalf("expected %q, got %q", cwd, got)
	}
}

func TestGetBaseDirAbsoluteWorkDir(t *testing.T) {
	saveAndRestoreWorkDir(t)
	dir := t.TempDir()
	workDir = dir

	got, err := getBaseDir()
	if err != nil {
		t.Fatalf("getBaseDir: %v", err)
	}
	if got != filepath.Clean(dir) {
		t.Fatalf("expected %q, got %q", filepath.Clean(dir), got)
	}
}

func TestGetBaseDirRelativeWorkDir(t *testing.T) {
	saveAndRestoreWorkDir(t)
	workDir = "some/relative/path"

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got, err := getBaseDir()
	if err != nil {
		t.Fatalf("getBaseDir: %v", err)
	}
	want := filepath.Clean(filepath.Join(cwd, "some/relative/path"))
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := logLevel(input); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{"a, b , ,c", []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		got := splitCSV(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitCSV(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}
