package safefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_RejectsSymlinkTarget(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target.md")
	link := filepath.Join(root, "link.md")
	if err := os.WriteFile(target, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	err := WriteFileAtomic(link, []byte("new"), 0o600)
	if err == nil {
		t.Fatal("expected symlink target to be rejected")
	}
	if !strings.Contains(err.Error(), "symlinked file target") {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "old" {
		t.Fatalf("symlink target was modified: %q", got)
	}
}

func TestWriteFileAtomic_OverwritesRegularFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "audit.json")
	if err := os.WriteFile(target, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(target, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("unexpected content: %s", string(got))
	}
}

func TestWriteFileAtomic_CreatesParentDirs(t *testing.T) {
	target := filepath.Join(t.TempDir(), "exports", "2025", "kiosk.html")

	if err := WriteFileAtomic(target, []byte("<html></html>"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat target: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestWriteFileAtomic_RejectsSymlinkedParent(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real")
	if err := os.MkdirAll(real, 0o700); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "linked")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	if err := WriteFileAtomic(filepath.Join(link, "out.md"), []byte("x"), 0o600); err == nil {
		t.Fatal("expected symlinked parent to be rejected")
	}
}

func TestEnsureDir_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs")
	if err := os.WriteFile(path, []byte("not a dir"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureDir(path, 0o700); err == nil {
		t.Fatal("expected error when path is a file")
	}
}
