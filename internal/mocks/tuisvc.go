package mocks

import (
	"github.com/jmcdonald/docdeploy/internal/ports"
	"github.com/jmcdonald/docdeploy/internal/preview"
)

// MockTUIService implements ports.TUIService for testing.
type MockTUIService struct {
	// Repos is the list of repositories to return
	Repos []ports.TUIRepoInfo
	// ReposError is the error to return from ListRepos
	ReposError error

	// Previews maps repository sources to preview results
	Previews map[string]*preview.Result
	// PreviewErrors maps repository sources to preview errors
	PreviewErrors map[string]error

	// DeployResults maps repository sources to deploy results
	DeployResults map[string]ports.TUIDeployResult

	// Call tracking
	ListReposCalls int
	PreviewCalls   []string
	DeployCalls    []string
	DeployOptions  []ports.TUIDeployOptions
	CloseCalls     int
}

// NewMockTUIService creates a new mock TUI service.
func NewMockTUIService() *MockTUIService {
	return &MockTUIService{
		Previews:      make(map[string]*preview.Result),
		PreviewErrors: make(map[string]error),
		DeployResults: make(map[string]ports.TUIDeployResult),
	}
}

// ListRepos returns the configured repositories.
func (m *MockTUIService) ListRepos() ([]ports.TUIRepoInfo, error) {
	m.ListReposCalls++
	if m.ReposError != nil {
		return nil, m.ReposError
	}
	return m.Repos, nil
}

// Preview returns the configured preview for repo.
func (m *MockTUIService) Preview(repo ports.TUIRepoInfo) (*preview.Result, error) {
	m.PreviewCalls = append(m.PreviewCalls, repo.Source)
	if err, ok := m.PreviewErrors[repo.Source]; ok {
		return nil, err
	}
	if result, ok := m.Previews[repo.Source]; ok {
		return result, nil
	}
	return &preview.Result{Path: "review-docs.md"}, nil
}

// Deploy returns the configured result for repo.
func (m *MockTUIService) Deploy(repo ports.TUIRepoInfo, opts ports.TUIDeployOptions) ports.TUIDeployResult {
	m.DeployCalls = append(m.DeployCalls, repo.Source)
	m.DeployOptions = append(m.DeployOptions, opts)
	if result, ok := m.DeployResults[repo.Source]; ok {
		return result
	}
	return ports.TUIDeployResult{Message: "Repository processed successfully"}
}

// Close records the call.
func (m *MockTUIService) Close() error {
	m.CloseCalls++
	return nil
}

// Compile-time check that MockTUIService implements ports.TUIService.
var _ ports.TUIService = (*MockTUIService)(nil)
