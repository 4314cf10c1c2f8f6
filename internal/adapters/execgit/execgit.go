// Package execgit provides a git client adapter using exec.Command.
package execgit

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jmcdonald/docdeploy/internal/ports"
)

// ExecGitClient implements ports.GitClient using exec.Command.
type ExecGitClient struct {
	// gitPath is the path to the git binary. Defaults to "git".
	gitPath string
	logger  *slog.Logger
}

// Option is a functional option for configuring ExecGitClient.
type Option func(*ExecGitClient)

// WithGitPath sets a custom path to the git binary.
func WithGitPath(path string) Option {
	return func(c *ExecGitClient) {
		c.gitPath = path
	}
}

// WithLogger logs every git invocation at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ExecGitClient) {
		c.logger = logger
	}
}

// New creates a new ExecGitClient adapter.
func New(opts ...Option) *ExecGitClient {
	c := &ExecGitClient{
		gitPath: "git",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsRepo checks if the given path is a git working tree.
// A .git file (worktrees, submodules) counts as well as a .git directory.
func (g *ExecGitClient) IsRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Clone clones url into dest.
func (g *ExecGitClient) Clone(url, dest string) error {
	_, err := g.run("", "clone", "--quiet", url, dest)
	return err
}

// HasChanges reports whether file differs from HEAD, is staged, or is untracked.
func (g *ExecGitClient) HasChanges(repoPath, file string) (bool, error) {
	out, err := g.run(repoPath, "status", "--porcelain", "--untracked-files=all", "--", file)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Add stages file.
func (g *ExecGitClient) Add(repoPath, file string) error {
	_, err := g.run(repoPath, "add", "--", file)
	return err
}

// Commit records file only, leaving anything else in the index alone.
// Returns ports.ErrNothingToCommit when git has nothing to record.
func (g *ExecGitClient) Commit(repoPath, file, message string) error {
	out, err := g.run(repoPath, "commit", "-m", message, "--", file)
	if err != nil {
		if strings.Contains(out, "nothing to commit") || strings.Contains(err.Error(), "nothing to commit") ||
			strings.Contains(out, "nothing added to commit") || strings.Contains(out, "no changes added to commit") {
			return ports.ErrNothingToCommit
		}
		return err
	}
	return nil
}

// Push pushes the current branch to its upstream.
func (g *ExecGitClient) Push(repoPath string) error {
	_, err := g.run(repoPath, "push", "--quiet")
	return err
}

// run executes git in dir and returns stdout. On failure the error carries stderr.
func (g *ExecGitClient) run(dir string, args ...string) (string, error) {
	cmd := g.command(args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug("git", "dir", dir, "args", args)
	if err := cmd.Run(); err != nil {
		g.logger.Debug("git failed", "dir", dir, "args", args, "error", err, "stderr", strings.TrimSpace(stderr.String()))
		return stdout.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// command creates an exec.Cmd for the git binary.
func (g *ExecGitClient) command(args ...string) *exec.Cmd {
	return exec.Command(g.gitPath, args...)
}

// Compile-time check that ExecGitClient implements ports.GitClient.
var _ ports.GitClient = (*ExecGitClient)(nil)
