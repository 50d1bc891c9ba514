package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenBrowserUnsupported(t *testing.T) {
	orig := getRuntime
	t.Cleanup(func() { getRuntime = orig })
	getRuntime = func() string { return "plan9" }

	if err := OpenBrowser("http://127.0.0.1"); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestBrowserFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(dir, "browser.json")
		in := map[string]string{"cookie": "SAPISID=abc", "x-goog-authuser": "0"}
		if err := WriteBrowserFile(path, in); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		out, err := ReadBrowserFile(path)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if out["cookie"] != "SAPISID=abc" || out["x-goog-authuser"] != "0" {
			t.Errorf("unexpected headers %v", out)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadBrowserFile(filepath.Join(dir, "nope.json")); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("no cookie", func(t *testing.T) {
		path := filepath.Join(dir, "nocookie.json")
		if err := os.WriteFile(path, []byte(`{"accept":"*/*"}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadBrowserFile(path); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("not a map", func(t *testing.T) {
		path := filepath.Join(dir, "list.json")
		if err := os.WriteFile(path, []byte(`[1,2]`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadBrowserFile(path); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
