package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subweave/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("writable dir should pass: %+v", result)
	}

	missing := CheckDirectoryAccess("Staging directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatalf("missing dir should fail: %+v", missing)
	}
	if !strings.Contains(missing.Detail, "does not exist") {
		t.Fatalf("detail should explain the failure: %q", missing.Detail)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := CheckDirectoryAccess("Output directory", file)
	if notDir.Passed {
		t.Fatalf("plain file should fail: %+v", notDir)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("Staging disk space", t.TempDir())
	// Temp filesystems on CI hosts always clear the 1 GB floor; the
	// interesting assertions are the detail formatting and the statfs error.
	if !result.Passed {
		t.Skipf("temp filesystem below headroom floor: %+v", result)
	}
	if !strings.Contains(result.Detail, "GB free") {
		t.Fatalf("detail should report free space: %q", result.Detail)
	}

	broken := CheckDiskSpace("Staging disk space", filepath.Join(t.TempDir(), "missing"))
	if broken.Passed {
		t.Fatalf("statfs on missing path should fail: %+v", broken)
	}
}

func TestCheckTranslationMissingKey(t *testing.T) {
	result := CheckTranslation(context.Background(), config.Translation{})
	if result.Passed {
		t.Fatalf("missing key should fail: %+v", result)
	}
	if result.Detail != "API key missing" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckTranslationReachableAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	cfg := config.Translation{
		APIKey:  "test",
		BaseURL: server.URL,
		Model:   "demo/model",
	}
	result := CheckTranslation(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("reachable API should pass: %+v", result)
	}
}

func TestCheckTranslationBadKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := config.Translation{
		APIKey:  "bad",
		BaseURL: server.URL,
		Model:   "demo/model",
	}
	result := CheckTranslation(context.Background(), cfg)
	if result.Passed {
		t.Fatalf("rejected key should fail: %+v", result)
	}
	if result.Detail == "" {
		t.Fatal("expected failure detail")
	}
}
