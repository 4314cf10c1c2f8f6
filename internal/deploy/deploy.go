// Package deploy copies the documentation file into repositories and
// optionally commits and pushes it.
package deploy

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmcdonald/docdeploy/internal/config"
	"github.com/jmcdonald/docdeploy/internal/logging"
	"github.com/jmcdonald/docdeploy/internal/ports"
	"github.com/jmcdonald/docdeploy/internal/preview"
	"github.com/jmcdonald/docdeploy/internal/repolist"
)

var (
	ErrDirNotFound = errors.New("directory not found")
	ErrNotGitRepo  = errors.New("not a git repository")
	ErrChecksum    = errors.New("deployed file does not match source")
)

// Options control a deployment run.
type Options struct {
	Source        string
	TargetDir     string
	TargetName    string
	CommitMessage string
	WorkDir       string // empty means a temporary directory

	Commit bool
	Push   bool // implies Commit
	DryRun bool
}

// Deployer runs the per-repository procedure. It is not safe for concurrent use.
type Deployer struct {
	fs       ports.FileSystem
	git      ports.GitClient
	opts     Options
	observer Observer
	logger   *slog.Logger

	prepared bool
	source   []byte
	checksum string

	workDir     string
	ownsWorkDir bool
	names       map[string]bool
}

// Option is a functional option for configuring a Deployer.
type Option func(*Deployer)

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(d *Deployer) {
		d.observer = o
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deployer) {
		d.logger = l
	}
}

// New creates a Deployer. Empty target and message options take the config defaults.
func New(fs ports.FileSystem, git ports.GitClient, opts Options, options ...Option) *Deployer {
	def := config.DefaultConfig()
	if opts.TargetDir == "" {
		opts.TargetDir = def.TargetDir
	}
	if opts.TargetName == "" {
		opts.TargetName = def.TargetName
	}
	if opts.CommitMessage == "" {
		opts.CommitMessage = def.CommitMessage
	}
	if opts.Push {
		opts.Commit = true
	}

	d := &Deployer{
		fs:       fs,
		git:      git,
		opts:     opts,
		observer: NopObserver{},
		logger:   logging.Discard(),
		names:    make(map[string]bool),
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Options returns the effective options.
func (d *Deployer) Options() Options {
	return d.opts
}

// Prepare validates and reads the source file.
func (d *Deployer) Prepare() error {
	info, err := d.fs.Stat(d.opts.Source)
	if err != nil {
		return fmt.Errorf("source file not found: %s: %w", d.opts.Source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source file is a directory: %s", d.opts.Source)
	}
	data, err := d.fs.ReadFile(d.opts.Source)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}
	d.source = data
	d.checksum = Checksum(data)
	d.prepared = true
	d.logger.Debug("source loaded", "path", d.opts.Source, "sha256", d.checksum, "bytes", len(data))
	return nil
}

// TargetPath returns where the file lands inside repoPath.
func (d *Deployer) TargetPath(repoPath string) string {
	return filepath.Join(repoPath, d.opts.TargetDir, d.opts.TargetName)
}

// Run deploys to every entry in order. A failing entry never stops the run.
func (d *Deployer) Run(entries []repolist.Entry) Summary {
	s := Summary{Total: len(entries)}
	for i, entry := range entries {
		d.observer.Begin(i+1, len(entries), entry)
		result := d.Deploy(entry)
		d.observer.End(result)
		s.add(result)
	}
	d.logger.Info("run finished", "total", s.Total, "succeeded", s.Succeeded, "failed", s.Failed)
	return s
}

// Deploy runs the full procedure for one entry.
func (d *Deployer) Deploy(entry repolist.Entry) Result {
	res := Result{Entry: entry, DryRun: d.opts.DryRun}
	res.Err = d.deploy(entry, &res)
	if res.Err != nil {
		res.Message = res.Err.Error()
		d.logger.Warn("repository failed", "repo", entry.Source, "line", entry.Line, "error", res.Err)
	} else {
		res.Message = "Repository processed successfully"
		d.logger.Info("repository processed", "repo", entry.Source, "path", res.LocalPath,
			"status", res.Status(), "sha256", res.Checksum)
	}
	return res
}

func (d *Deployer) deploy(entry repolist.Entry, res *Result) error {
	if !d.prepared {
		if err := d.Prepare(); err != nil {
			return err
		}
	}

	local, err := d.resolve(entry, res)
	if err != nil {
		return err
	}
	res.LocalPath = local
	res.Target = d.TargetPath(local)

	if err := d.install(entry, res); err != nil {
		return err
	}

	if !d.opts.Commit {
		return nil
	}
	return d.commit(entry, res)
}

// resolve yields the working tree for entry, cloning remotes.
func (d *Deployer) resolve(entry repolist.Entry, res *Result) (string, error) {
	if !entry.Remote {
		path := config.ExpandPath(entry.Source)
		info, err := d.fs.Stat(path)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrDirNotFound, path)
		}
		if !d.git.IsRepo(path) {
			return "", fmt.Errorf("%w: %s", ErrNotGitRepo, path)
		}
		return path, nil
	}

	d.observer.Step("Cloning repository...")
	if d.opts.DryRun {
		base := d.opts.WorkDir
		if base == "" {
			base = filepath.Join(os.TempDir(), "docdeploy-*")
		}
		local := filepath.Join(base, d.uniqueName("", entry.Name()))
		d.observer.DryRun(fmt.Sprintf("Would clone: %s to %s", entry.Source, local))
		return local, nil
	}

	workDir, err := d.ensureWorkDir()
	if err != nil {
		return "", err
	}
	local := filepath.Join(workDir, d.uniqueName(workDir, entry.Name()))
	if err := d.git.Clone(entry.Source, local); err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}
	res.Cloned = true
	d.observer.Done("Cloned successfully")
	return local, nil
}

// install creates the target directory and copies the source into it.
func (d *Deployer) install(entry repolist.Entry, res *Result) error {
	dir := filepath.Join(res.LocalPath, d.opts.TargetDir)

	d.observer.Step(fmt.Sprintf("Creating %s directory...", d.opts.TargetDir))
	if d.opts.DryRun {
		d.observer.DryRun("Would create: " + dir)
	} else {
		if err := d.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		d.observer.Done("Directory ready")
	}

	d.observer.Step(fmt.Sprintf("Copying %s...", d.opts.TargetName))
	if d.opts.DryRun {
		d.observer.DryRun(fmt.Sprintf("Would copy: %s -> %s", d.opts.Source, res.Target))
		if !entry.Remote {
			res.Preview = d.preview(res.Target)
			d.observer.DryRun(describePreview(res.Preview))
		}
		return nil
	}

	err := d.fs.CopyFile(d.opts.Source, res.Target)
	sameFile := errors.Is(err, ports.ErrSameFile)
	if err != nil && !sameFile {
		return fmt.Errorf("copying to %s: %w", res.Target, err)
	}
	written, err := d.fs.ReadFile(res.Target)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", res.Target, err)
	}
	if sum := Checksum(written); sum != d.checksum {
		return fmt.Errorf("%w: %s", ErrChecksum, res.Target)
	}
	res.Checksum = d.checksum
	if sameFile {
		res.Unchanged = !d.opts.Commit
		d.observer.Warn("Target is the source file, copy skipped")
		return nil
	}
	res.Copied = true
	d.observer.Done("File copied")
	return nil
}

// commit stages, commits and optionally pushes the deployed file.
func (d *Deployer) commit(entry repolist.Entry, res *Result) error {
	rel := filepath.Join(d.opts.TargetDir, d.opts.TargetName)

	if d.opts.DryRun {
		// Only an identical local file can still turn out to need no commit.
		if !entry.Remote && res.Preview != nil && res.Preview.Identical() {
			changed, err := d.git.HasChanges(res.LocalPath, rel)
			if err != nil {
				return fmt.Errorf("checking status: %w", err)
			}
			if !changed {
				res.Unchanged = true
				d.observer.Warn("No changes to commit (file already up to date)")
				return nil
			}
		}
		d.observer.DryRun("Would commit changes")
		if d.opts.Push {
			d.observer.DryRun("Would push to remote")
		}
		return nil
	}

	changed, err := d.git.HasChanges(res.LocalPath, rel)
	if err != nil {
		return fmt.Errorf("checking status: %w", err)
	}
	if !changed {
		res.Unchanged = true
		d.observer.Warn("No changes to commit (file already up to date)")
		return nil
	}

	d.observer.Step("Committing changes...")
	if err := d.git.Add(res.LocalPath, rel); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	if err := d.git.Commit(res.LocalPath, rel, d.opts.CommitMessage); err != nil {
		if errors.Is(err, ports.ErrNothingToCommit) {
			res.Unchanged = true
			d.observer.Warn("No changes to commit (file already up to date)")
			return nil
		}
		return fmt.Errorf("committing: %w", err)
	}
	res.Committed = true
	d.observer.Done("Changes committed")

	if !d.opts.Push {
		return nil
	}
	d.observer.Step("Pushing changes...")
	if err := d.git.Push(res.LocalPath); err != nil {
		return fmt.Errorf("failed to push changes: %w", err)
	}
	res.Pushed = true
	d.observer.Done("Changes pushed")
	return nil
}

// preview compares what target holds now with the source.
func (d *Deployer) preview(target string) *preview.Result {
	current, err := d.fs.ReadFile(target)
	exists := err == nil
	return preview.Compute(filepath.Join(d.opts.TargetDir, d.opts.TargetName), exists, string(current), string(d.source))
}

func describePreview(p *preview.Result) string {
	switch {
	case p.IsBinary:
		return "Binary content, line changes not shown"
	case p.Identical():
		return "Destination already matches source"
	case !p.Exists:
		return fmt.Sprintf("Would create file (+%d lines)", p.Added)
	default:
		return fmt.Sprintf("Would change file (+%d -%d lines)", p.Added, p.Removed)
	}
}

// ensureWorkDir creates the clone directory on first use.
func (d *Deployer) ensureWorkDir() (string, error) {
	if d.workDir != "" {
		return d.workDir, nil
	}
	if d.opts.WorkDir != "" {
		dir := config.ExpandPath(d.opts.WorkDir)
		if err := d.fs.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating work directory: %w", err)
		}
		d.workDir = dir
		return dir, nil
	}
	dir, err := d.fs.MkdirTemp("", "docdeploy-*")
	if err != nil {
		return "", fmt.Errorf("creating temporary directory: %w", err)
	}
	d.workDir = dir
	d.ownsWorkDir = true
	d.logger.Debug("work directory created", "path", dir)
	return dir, nil
}

// uniqueName returns name, or name-2, name-3, ... when already taken in
// this run or present under dir.
func (d *Deployer) uniqueName(dir, name string) string {
	candidate := name
	for i := 2; ; i++ {
		taken := d.names[candidate]
		if !taken && dir != "" {
			if _, err := d.fs.Stat(filepath.Join(dir, candidate)); err == nil {
				taken = true
			}
		}
		if !taken {
			d.names[candidate] = true
			return candidate
		}
		candidate = name + "-" + strconv.Itoa(i)
	}
}

// Close removes the temporary work directory, if one was created.
// A configured WorkDir is left in place.
func (d *Deployer) Close() error {
	if !d.ownsWorkDir || d.workDir == "" {
		return nil
	}
	dir := d.workDir
	d.workDir = ""
	d.ownsWorkDir = false
	d.names = make(map[string]bool)
	if err := d.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	d.logger.Debug("work directory removed", "path", dir)
	return nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
