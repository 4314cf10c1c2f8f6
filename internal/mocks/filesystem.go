// Package mocks provides mock implementations for testing.
package mocks

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmcdonald/docdeploy/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
type MockFileSystem struct {
	// Files maps paths to file contents
	Files map[string][]byte
	// Stats maps paths to FileInfo for Stat; directories live here
	Stats map[string]os.FileInfo
	// Errors maps paths to errors (for simulating failures)
	Errors map[string]error
	// CorruptCopies makes CopyFile write different bytes than it read
	CorruptCopies bool

	// Call tracking
	MkdirAllCalls  []string
	CopyFileCalls  [][2]string
	MkdirTempCalls int
	RemoveAllCalls []string

	tempCount int
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:  make(map[string][]byte),
		Stats:  make(map[string]os.FileInfo),
		Errors: make(map[string]error),
	}
}

// AddDir marks path as an existing directory.
func (m *MockFileSystem) AddDir(path string) {
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), isDir: true, mode: os.ModeDir | 0755}
}

// AddFile stores content at path.
func (m *MockFileSystem) AddFile(path string, content []byte) {
	m.Files[path] = content
}

// Mutated reports whether any call changed the filesystem.
func (m *MockFileSystem) Mutated() bool {
	return len(m.MkdirAllCalls) > 0 || len(m.CopyFileCalls) > 0 ||
		m.MkdirTempCalls > 0 || len(m.RemoveAllCalls) > 0
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if info, ok := m.Stats[name]; ok {
		return info, nil
	}
	// Check if we have file content (implies file exists)
	if content, ok := m.Files[name]; ok {
		return &mockFileInfo{name: filepath.Base(name), size: int64(len(content)), mode: 0644}, nil
	}
	return nil, os.ErrNotExist
}

// MkdirAll creates a directory along with any necessary parents.
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.MkdirAllCalls = append(m.MkdirAllCalls, path)
	if err, ok := m.Errors[path]; ok {
		return err
	}
	m.AddDir(path)
	return nil
}

// ReadFile reads the named file and returns the contents.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if content, ok := m.Files[name]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

// CopyFile copies src over dst.
func (m *MockFileSystem) CopyFile(src, dst string) error {
	m.CopyFileCalls = append(m.CopyFileCalls, [2]string{src, dst})
	if err, ok := m.Errors[dst]; ok {
		return err
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return ports.ErrSameFile
	}
	content, err := m.ReadFile(src)
	if err != nil {
		return err
	}
	copied := append([]byte(nil), content...)
	if m.CorruptCopies {
		copied = append(copied, '!')
	}
	m.Files[dst] = copied
	return nil
}

// MkdirTemp creates a new temporary directory in dir.
func (m *MockFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	m.MkdirTempCalls++
	if dir == "" {
		dir = "/tmp"
	}
	if err, ok := m.Errors[dir]; ok {
		return "", err
	}
	m.tempCount++
	name := strings.Replace(pattern, "*", strings.Repeat("0", m.tempCount), 1)
	path := filepath.Join(dir, name)
	m.AddDir(path)
	return path, nil
}

// RemoveAll removes path and any children it contains.
func (m *MockFileSystem) RemoveAll(path string) error {
	m.RemoveAllCalls = append(m.RemoveAllCalls, path)
	if err, ok := m.Errors[path]; ok {
		return err
	}
	for k := range m.Files {
		if k == path || strings.HasPrefix(k, path+string(filepath.Separator)) {
			delete(m.Files, k)
		}
	}
	for k := range m.Stats {
		if k == path || strings.HasPrefix(k, path+string(filepath.Separator)) {
			delete(m.Stats, k)
		}
	}
	return nil
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
