// Package tuisvc provides the real implementation of ports.TUIService.
package tuisvc

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jmcdonald/docdeploy/internal/adapters/execgit"
	"github.com/jmcdonald/docdeploy/internal/adapters/osfs"
	"github.com/jmcdonald/docdeploy/internal/config"
	"github.com/jmcdonald/docdeploy/internal/deploy"
	"github.com/jmcdonald/docdeploy/internal/logging"
	"github.com/jmcdonald/docdeploy/internal/ports"
	"github.com/jmcdonald/docdeploy/internal/preview"
	"github.com/jmcdonald/docdeploy/internal/repolist"
)

// ErrRemotePreview is returned when previewing a repository that has not been cloned.
var ErrRemotePreview = errors.New("preview is only available for local repositories")

// Service implements ports.TUIService on top of the deploy package.
type Service struct {
	listPath string
	base     deploy.Options
	fs       ports.FileSystem
	git      ports.GitClient
	logger   *slog.Logger

	// One deployer per option set so clones share a work directory.
	deployers map[ports.TUIDeployOptions]*deploy.Deployer
}

// Option is a functional option for configuring a Service.
type Option func(*Service)

// WithFileSystem replaces the filesystem adapter.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithGitClient replaces the git adapter.
func WithGitClient(git ports.GitClient) Option {
	return func(s *Service) {
		s.git = git
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a service for the repositories listed in listPath. The commit,
// push and dry-run fields of base are ignored; each Deploy call supplies them.
func New(listPath string, base deploy.Options, opts ...Option) *Service {
	s := &Service{
		listPath:  listPath,
		base:      base,
		logger:    logging.Discard(),
		deployers: make(map[ports.TUIDeployOptions]*deploy.Deployer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = osfs.New()
	}
	if s.git == nil {
		s.git = execgit.New(execgit.WithLogger(s.logger))
	}
	return s
}

// ListRepos returns the entries of the repository list.
func (s *Service) ListRepos() ([]ports.TUIRepoInfo, error) {
	entries, err := repolist.Load(s.listPath)
	if err != nil {
		return nil, err
	}
	repos := make([]ports.TUIRepoInfo, 0, len(entries))
	for _, e := range entries {
		repos = append(repos, ports.TUIRepoInfo{Line: e.Line, Source: e.Source, Remote: e.Remote})
	}
	return repos, nil
}

// Preview compares the file deployed in a local repository with the source.
func (s *Service) Preview(repo ports.TUIRepoInfo) (*preview.Result, error) {
	if repo.Remote {
		return nil, ErrRemotePreview
	}
	d := s.deployer(ports.TUIDeployOptions{DryRun: true})
	opts := d.Options()

	incoming, err := s.fs.ReadFile(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}

	root := config.ExpandPath(repo.Source)
	if info, err := s.fs.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", deploy.ErrDirNotFound, root)
	}
	current, err := s.fs.ReadFile(d.TargetPath(root))
	exists := err == nil

	rel := filepath.Join(opts.TargetDir, opts.TargetName)
	return preview.Compute(rel, exists, string(current), string(incoming)), nil
}

// Deploy deploys the source file into one repository.
func (s *Service) Deploy(repo ports.TUIRepoInfo, opts ports.TUIDeployOptions) ports.TUIDeployResult {
	entry := repolist.Entry{Line: repo.Line, Source: repo.Source, Remote: repo.Remote}
	res := s.deployer(opts).Deploy(entry)
	return ports.TUIDeployResult{
		Error:     res.Err,
		Message:   res.Message,
		Committed: res.Committed,
		Pushed:    res.Pushed,
		Unchanged: res.Unchanged,
	}
}

// Close removes temporary clone directories.
func (s *Service) Close() error {
	var errs []error
	for key, d := range s.deployers {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.deployers, key)
	}
	return errors.Join(errs...)
}

func (s *Service) deployer(opts ports.TUIDeployOptions) *deploy.Deployer {
	if opts.Push {
		opts.Commit = true
	}
	if d, ok := s.deployers[opts]; ok {
		return d
	}
	o := s.base
	o.Commit = opts.Commit
	o.Push = opts.Push
	o.DryRun = opts.DryRun
	d := deploy.New(s.fs, s.git, o, deploy.WithLogger(s.logger))
	s.deployers[opts] = d
	return d
}

// Compile-time check that Service implements ports.TUIService.
var _ ports.TUIService = (*Service)(nil)
