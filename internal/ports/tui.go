package ports

import (
	"github.com/jmcdonald/docdeploy/internal/preview"
)

// TUIRepoInfo contains repository metadata for display.
type TUIRepoInfo struct {
	Line   int
	Source string
	Remote bool
}

// TUIDeployOptions are the toggles the TUI exposes.
type TUIDeployOptions struct {
	Commit bool
	Push   bool
	DryRun bool
}

// TUIDeployResult contains the result of deploying one repository.
type TUIDeployResult struct {
	Error     error
	Message   string
	Committed bool
	Pushed    bool
	Unchanged bool
}

// TUIService provides operations needed by the TUI.
// This abstraction allows the TUI to be tested without real filesystem/git operations.
type TUIService interface {
	// ListRepos returns the entries of the repository list.
	ListRepos() ([]TUIRepoInfo, error)

	// Preview compares the file deployed in a local repository with the source.
	Preview(repo TUIRepoInfo) (*preview.Result, error)

	// Deploy deploys the source file into one repository.
	Deploy(repo TUIRepoInfo, opts TUIDeployOptions) TUIDeployResult

	// Close releases resources such as temporary clone directories.
	Close() error
}
