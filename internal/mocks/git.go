package mocks

import (
	"github.com/jmcdonald/docdeploy/internal/ports"
)

// MockGitClient implements ports.GitClient for testing.
type MockGitClient struct {
	// Repos maps paths to whether they are git repos
	Repos map[string]bool
	// Changes maps repository paths to the HasChanges answer
	Changes map[string]bool

	// Per-operation errors keyed by repository path (or URL for Clone)
	CloneErrors  map[string]error
	StatusErrors map[string]error
	AddErrors    map[string]error
	CommitErrors map[string]error
	PushErrors   map[string]error

	// OnClone runs after a successful clone, e.g. to populate a MockFileSystem.
	OnClone func(url, dest string)

	// Call tracking
	CloneCalls  [][2]string
	StatusCalls [][2]string
	AddCalls    [][2]string
	CommitCalls [][3]string // repo, file, message
	PushCalls   []string
}

// NewMockGitClient creates a new mock git client.
func NewMockGitClient() *MockGitClient {
	return &MockGitClient{
		Repos:        make(map[string]bool),
		Changes:      make(map[string]bool),
		CloneErrors:  make(map[string]error),
		StatusErrors: make(map[string]error),
		AddErrors:    make(map[string]error),
		CommitErrors: make(map[string]error),
		PushErrors:   make(map[string]error),
	}
}

// Mutated reports whether any call changed a repository.
func (m *MockGitClient) Mutated() bool {
	return len(m.CloneCalls) > 0 || len(m.AddCalls) > 0 ||
		len(m.CommitCalls) > 0 || len(m.PushCalls) > 0
}

// IsRepo checks if the given path is a git repository.
func (m *MockGitClient) IsRepo(path string) bool {
	return m.Repos[path]
}

// Clone records the call; cloned destinations become repositories.
func (m *MockGitClient) Clone(url, dest string) error {
	m.CloneCalls = append(m.CloneCalls, [2]string{url, dest})
	if err, ok := m.CloneErrors[url]; ok {
		return err
	}
	m.Repos[dest] = true
	if m.OnClone != nil {
		m.OnClone(url, dest)
	}
	return nil
}

// HasChanges returns the configured answer for repoPath.
func (m *MockGitClient) HasChanges(repoPath, file string) (bool, error) {
	m.StatusCalls = append(m.StatusCalls, [2]string{repoPath, file})
	if err, ok := m.StatusErrors[repoPath]; ok {
		return false, err
	}
	return m.Changes[repoPath], nil
}

// Add stages file.
func (m *MockGitClient) Add(repoPath, file string) error {
	m.AddCalls = append(m.AddCalls, [2]string{repoPath, file})
	return m.AddErrors[repoPath]
}

// Commit records file with message.
func (m *MockGitClient) Commit(repoPath, file, message string) error {
	m.CommitCalls = append(m.CommitCalls, [3]string{repoPath, file, message})
	return m.CommitErrors[repoPath]
}

// Push pushes the current branch.
func (m *MockGitClient) Push(repoPath string) error {
	m.PushCalls = append(m.PushCalls, repoPath)
	return m.PushErrors[repoPath]
}

// Compile-time check that MockGitClient implements ports.GitClient.
var _ ports.GitClient = (*MockGitClient)(nil)
