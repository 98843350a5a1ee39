package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  123:abc\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(Source{Name: "telegram token", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "123:abc" {
		t.Fatalf("unexpected secret %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(Source{Name: "gemini api key", File: path})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JOBBOT_TEST_SECRET", " from-env ")

	got, err := Load(Source{Env: "JOBBOT_TEST_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("unexpected secret %q", got)
	}
}

func TestLoadFallsBackToValue(t *testing.T) {
	t.Setenv("JOBBOT_TEST_SECRET", "")

	got, err := Load(Source{Env: "JOBBOT_TEST_SECRET", Value: " inline "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "inline" {
		t.Fatalf("unexpected secret %q", got)
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "telegram token"})
	if err == nil || err.Error() != "telegram token is not configured" {
		t.Fatalf("unexpected error: %v", err)
	}
}
