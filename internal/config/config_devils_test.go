package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Malicious Config File Tests ---

func TestLoad_YAMLBomb(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	restoreWD := setWorkingDir(t, t.TempDir())
	defer restoreWD()

	yamlBomb := `
a: &a ["lol","lol","lol","lol","lol","lol","lol","lol","lol"]
b: &b [*a,*a,*a,*a,*a,*a,*a,*a,*a]
c: &c [*b,*b,*b,*b,*b,*b,*b,*b,*b]
`
	writeConfig(t, filepath.Join(home, ".auditor"), yamlBomb)

	// No panic = success
	if _, err := Load(); err != nil {
		t.Logf("YAML bomb handled safely with error: %v", err)
	}
}

func TestLoad_WrongTypeTimeout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	restoreWD := setWorkingDir(t, t.TempDir())
	defer restoreWD()

	writeConfig(t, filepath.Join(home, ".auditor"), "request_timeout: forever\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable request_timeout")
	}
}

func TestLoad_NegativeTimeout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	restoreWD := setWorkingDir(t, t.TempDir())
	defer restoreWD()

	writeConfig(t, filepath.Join(home, ".auditor"), "request_timeout: -5s\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "request_timeout") {
		t.Fatalf("expected request_timeout error, got %v", err)
	}
}

func TestLoad_UnreadableConfigIsDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	restoreWD := setWorkingDir(t, t.TempDir())
	defer restoreWD()

	if err := os.MkdirAll(filepath.Join(home, ".auditor", "config.yaml"), 0o700); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error when config path is a directory")
	}
}

func TestLoad_UnknownKeysIgnored(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIURL, "")
	restoreWD := setWorkingDir(t, t.TempDir())
	defer restoreWD()

	writeConfig(t, filepath.Join(home, ".auditor"), "api_url: http://x:1\nsomething_else: [1, 2]\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://x:1" {
		t.Fatalf("expected api url http://x:1, got %q", cfg.APIURL)
	}
}
