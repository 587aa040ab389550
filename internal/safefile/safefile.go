// Package safefile writes exports and log directories without following symlinks.
package safefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PrivateMode is used for report exports, which can carry project descriptions.
	PrivateMode os.FileMode = 0o600
	// PublicMode is used for badges meant to be published.
	PublicMode os.FileMode = 0o644

	dirMode = 0o700
)

// EnsureDir creates path (and parents) if needed and rejects a symlinked result.
func EnsureDir(path string, perm os.FileMode) (string, error) {
	abs, err := absPath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, perm); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return "", fmt.Errorf("stat path: %w", err)
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return "", fmt.Errorf("refusing symlinked path: %s", abs)
	case !info.IsDir():
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

// WriteFileAtomic writes data next to path and renames it into place, so readers
// never see a half-written export. A symlinked target or parent directory is
// refused. Missing parents are created with mode 0700.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}
	dir, err := EnsureDir(filepath.Dir(abs), dirMode)
	if err != nil {
		return err
	}
	if err := checkTarget(abs); err != nil {
		return err
	}

	tmpPath, err := writeTemp(dir, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, abs); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", abs, err)
	}
	return nil
}

// checkTarget allows a missing file or a regular file.
func checkTarget(abs string) error {
	info, err := os.Lstat(abs)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat write target: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing symlinked file target: %s", abs)
	}
	if info.IsDir() {
		return fmt.Errorf("refusing directory write target: %s", abs)
	}
	return nil
}

func writeTemp(dir string, data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(dir, ".auditor-export-*")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	name := tmp.Name()
	fail := func(step string, err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%s temporary file: %w", step, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temporary file: %w", err)
	}
	return name, nil
}

func absPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}
