package ports

import "errors"

// ErrNothingToCommit is returned by GitClient.Commit when the index
// matches HEAD.
var ErrNothingToCommit = errors.New("nothing to commit")

// GitClient abstracts git operations for testability.
// Production code uses ExecGitClient adapter; tests use MockGitClient.
type GitClient interface {
	// IsRepo checks if the given path is a git working tree.
	IsRepo(path string) bool

	// Clone clones url into dest.
	Clone(url, dest string) error

	// HasChanges reports whether file has uncommitted changes in repoPath,
	// including when it is untracked or staged.
	HasChanges(repoPath, file string) (bool, error)

	// Add stages file.
	Add(repoPath, file string) error

	// Commit records file with message. Other staged paths stay staged.
	Commit(repoPath, file, message string) error

	// Push pushes the current branch to its upstream.
	Push(repoPath string) error
}
