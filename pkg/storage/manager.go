package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxSuffix bounds the search for a free file name
const maxSuffix = 10000

// Manager writes export files into one output directory
type Manager struct {
	outputDir string
	overwrite bool
	written   map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager. When overwrite is false an
// existing file is never replaced; a numeric suffix is added instead.
func NewManager(outputDir string, overwrite bool) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		overwrite: overwrite,
		written:   make(map[string]bool),
	}, nil
}

// Exists checks if a file with the given name is present in the output directory
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	if m.written[name] {
		m.mu.RUnlock()
		return true
	}
	m.mu.RUnlock()

	_, err := os.Stat(filepath.Join(m.outputDir, name))
	return err == nil
}

// Save writes r to name inside the output directory through a temporary file
// and a rename, and returns the path that was written.
func (m *Manager) Save(r io.Reader, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, err := m.resolve(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(m.outputDir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	_, err = io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write export data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.written[filepath.Base(target)] = true
	return target, nil
}

// resolve picks the path to write. Callers hold m.mu.
func (m *Manager) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	target := filepath.Join(m.outputDir, name)
	if m.overwrite {
		return target, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := target
		if i > 0 {
			candidate = filepath.Join(m.outputDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		}
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, m.outputDir)
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetWrittenCount returns the number of files written by this manager
func (m *Manager) GetWrittenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.written)
}
