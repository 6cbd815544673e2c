// Package filesystem provides the "fileManager" bootstrap service: file
// access rooted at the configured data directory.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrOutsideRoot is returned for paths that escape the manager's root.
var ErrOutsideRoot = errors.New("filesystem: path escapes root")

// Manager reads and writes files below a root directory. Paths are relative
// to the root and use forward slashes.
type Manager struct {
	root   string
	logger *zap.Logger
}

// NewManager roots a Manager at dir. The directory is created on first write.
func NewManager(dir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{root: filepath.Clean(dir), logger: logger}
}

// Root returns the directory the manager is rooted at.
func (m *Manager) Root() string { return m.root }

// FS exposes the root as an fs.FS, for fs.ReadFile and friends.
func (m *Manager) FS() fs.FS { return os.DirFS(m.root) }

// Exists reports whether path names an existing file or directory.
func (m *Manager) Exists(path string) bool {
	full, err := m.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// GetContents reads a whole file.
func (m *Manager) GetContents(path string) ([]byte, error) {
	full, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// PutContents writes data atomically, creating parent directories.
func (m *Manager) PutContents(path string, data []byte) error {
	full, err := m.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("filesystem: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return fmt.Errorf("filesystem: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filesystem: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filesystem: writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("filesystem: writing %s: %w", path, err)
	}

	m.logger.Debug("file written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Remove deletes a file. Removing a missing file is not an error.
func (m *Manager) Remove(path string) error {
	full, err := m.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("filesystem: %w", err)
	}
	return nil
}

func (m *Manager) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, path)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, path)
	}
	return filepath.Join(m.root, clean), nil
}
