package deploy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcdonald/docdeploy/internal/mocks"
	"github.com/jmcdonald/docdeploy/internal/ports"
	"github.com/jmcdonald/docdeploy/internal/repolist"
)

const (
	srcPath = "/prompts/review-docs.md"
	prompt  = "# Review API docs\n\nCheck every public function.\n"
)

// recorder is an Observer that keeps every event as a line.
type recorder struct {
	events []string
}

func (r *recorder) Begin(i, n int, e repolist.Entry) {
	r.events = append(r.events, fmt.Sprintf("begin %d/%d %s", i, n, e.Source))
}
func (r *recorder) Step(msg string)   { r.events = append(r.events, "step "+msg) }
func (r *recorder) Done(msg string)   { r.events = append(r.events, "done "+msg) }
func (r *recorder) Warn(msg string)   { r.events = append(r.events, "warn "+msg) }
func (r *recorder) DryRun(msg string) { r.events = append(r.events, "dry "+msg) }
func (r *recorder) End(res Result)    { r.events = append(r.events, "end "+res.Status()) }

func (r *recorder) has(prefix string) bool {
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

type fixture struct {
	fs  *mocks.MockFileSystem
	git *mocks.MockGitClient
	obs *recorder
}

func newFixture() *fixture {
	f := &fixture{
		fs:  mocks.NewMockFileSystem(),
		git: mocks.NewMockGitClient(),
		obs: &recorder{},
	}
	f.fs.AddFile(srcPath, []byte(prompt))
	return f
}

func (f *fixture) addRepo(path string) {
	f.fs.AddDir(path)
	f.git.Repos[path] = true
}

func (f *fixture) deployer(opts Options) *Deployer {
	opts.Source = srcPath
	return New(f.fs, f.git, opts, WithObserver(f.obs))
}

func local(path string) repolist.Entry {
	return repolist.Entry{Line: 1, Source: path}
}

func remote(url string) repolist.Entry {
	return repolist.Entry{Line: 1, Source: url, Remote: true}
}

func target(repo string) string {
	return filepath.Join(repo, ".claude", "commands", "review-docs.md")
}

func TestNewAppliesDefaults(t *testing.T) {
	d := New(mocks.NewMockFileSystem(), mocks.NewMockGitClient(), Options{Push: true})
	opts := d.Options()
	assert.Equal(t, filepath.Join(".claude", "commands"), opts.TargetDir)
	assert.Equal(t, "review-docs.md", opts.TargetName)
	assert.NotEmpty(t, opts.CommitMessage)
	assert.True(t, opts.Commit, "push implies commit")
}

func TestPrepare(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		d := New(mocks.NewMockFileSystem(), mocks.NewMockGitClient(), Options{Source: "/nope.md"})
		err := d.Prepare()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source file not found")
	})

	t.Run("source is a directory", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.AddDir("/prompts")
		d := New(fs, mocks.NewMockGitClient(), Options{Source: "/prompts"})
		err := d.Prepare()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("ok", func(t *testing.T) {
		f := newFixture()
		d := f.deployer(Options{})
		require.NoError(t, d.Prepare())
		assert.Equal(t, Checksum([]byte(prompt)), d.checksum)
	})
}

func TestDeployLocalCopiesFile(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	d := f.deployer(Options{})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, res.Copied)
	assert.False(t, res.Cloned)
	assert.False(t, res.Committed)
	assert.Equal(t, "copied", res.Status())
	assert.Equal(t, "Repository processed successfully", res.Message)
	assert.Equal(t, "/repos/a", res.LocalPath)
	assert.Equal(t, target("/repos/a"), res.Target)
	assert.Equal(t, prompt, string(f.fs.Files[target("/repos/a")]))
	assert.Equal(t, Checksum([]byte(prompt)), res.Checksum)
	assert.Contains(t, f.fs.MkdirAllCalls, filepath.Join("/repos/a", ".claude", "commands"))
	assert.Empty(t, f.git.CloneCalls, "local paths are never cloned")
	assert.False(t, f.git.Mutated())
}

func TestDeployLocalMissingDirectory(t *testing.T) {
	f := newFixture()
	d := f.deployer(Options{})

	res := d.Deploy(local("/repos/missing"))

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrDirNotFound))
	assert.Equal(t, "directory not found: /repos/missing", res.Message)
	assert.False(t, f.fs.Mutated())
}

func TestDeployLocalFileInsteadOfDirectory(t *testing.T) {
	f := newFixture()
	f.fs.AddFile("/repos/file.txt", []byte("x"))
	d := f.deployer(Options{})

	res := d.Deploy(local("/repos/file.txt"))
	assert.True(t, errors.Is(res.Err, ErrDirNotFound))
}

func TestDeployLocalNotGitRepo(t *testing.T) {
	f := newFixture()
	f.fs.AddDir("/repos/plain")
	d := f.deployer(Options{})

	res := d.Deploy(local("/repos/plain"))

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrNotGitRepo))
	assert.False(t, f.fs.Mutated())
}

func TestDeployRemoteClonesIntoTempDir(t *testing.T) {
	f := newFixture()
	d := f.deployer(Options{})

	res := d.Deploy(remote("https://github.com/org/connector.git"))

	require.NoError(t, res.Err)
	assert.True(t, res.Cloned)
	assert.Equal(t, 1, f.fs.MkdirTempCalls)
	require.Len(t, f.git.CloneCalls, 1)
	assert.Equal(t, "https://github.com/org/connector.git", f.git.CloneCalls[0][0])
	assert.Equal(t, "/tmp/docdeploy-0/connector", f.git.CloneCalls[0][1])
	assert.Equal(t, prompt, string(f.fs.Files[target("/tmp/docdeploy-0/connector")]))

	require.NoError(t, d.Close())
	assert.Equal(t, []string{"/tmp/docdeploy-0"}, f.fs.RemoveAllCalls)
	_, ok := f.fs.Files[target("/tmp/docdeploy-0/connector")]
	assert.False(t, ok, "temporary clones are removed on Close")
}

func TestDeployRemoteDuplicateNames(t *testing.T) {
	f := newFixture()
	d := f.deployer(Options{})

	r1 := d.Deploy(remote("https://github.com/org-a/connector.git"))
	r2 := d.Deploy(remote("git@github.com:org-b/connector.git"))
	r3 := d.Deploy(remote("https://example.com/connector"))

	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)
	require.NoError(t, r3.Err)
	assert.Equal(t, "/tmp/docdeploy-0/connector", r1.LocalPath)
	assert.Equal(t, "/tmp/docdeploy-0/connector-2", r2.LocalPath)
	assert.Equal(t, "/tmp/docdeploy-0/connector-3", r3.LocalPath)
	assert.Equal(t, 1, f.fs.MkdirTempCalls, "one work directory per run")
}

func TestDeployRemoteConfiguredWorkDirIsKept(t *testing.T) {
	f := newFixture()
	f.fs.AddDir("/work/connector") // left over from an earlier run
	d := f.deployer(Options{WorkDir: "/work"})

	res := d.Deploy(remote("https://github.com/org/connector.git"))

	require.NoError(t, res.Err)
	assert.Equal(t, "/work/connector-2", res.LocalPath)
	assert.Equal(t, 0, f.fs.MkdirTempCalls)

	require.NoError(t, d.Close())
	assert.Empty(t, f.fs.RemoveAllCalls)
}

func TestDeployRemoteCloneFailure(t *testing.T) {
	f := newFixture()
	f.git.CloneErrors["https://github.com/org/private.git"] = errors.New("authentication failed")
	d := f.deployer(Options{Commit: true})

	res := d.Deploy(remote("https://github.com/org/private.git"))

	require.Error(t, res.Err)
	assert.Contains(t, res.Message, "failed to clone repository")
	assert.Contains(t, res.Message, "authentication failed")
	assert.Empty(t, f.fs.CopyFileCalls)
	assert.Empty(t, f.git.CommitCalls)
}

func TestDeployChecksumMismatch(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.fs.CorruptCopies = true
	d := f.deployer(Options{Commit: true})

	res := d.Deploy(local("/repos/a"))

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrChecksum))
	assert.Empty(t, f.git.CommitCalls, "a bad copy is never committed")
}

func TestDeployCopyFailure(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.fs.Errors[target("/repos/a")] = errors.New("permission denied")
	d := f.deployer(Options{})

	res := d.Deploy(local("/repos/a"))
	require.Error(t, res.Err)
	assert.Contains(t, res.Message, "permission denied")
}

func TestDeployIntoSourceRepository(t *testing.T) {
	f := newFixture()
	f.addRepo("/self")
	f.addRepo("/repos/b")
	f.fs.AddFile(target("/self"), []byte(prompt))
	d := New(f.fs, f.git, Options{Source: target("/self")}, WithObserver(f.obs))

	s := d.Run([]repolist.Entry{local("/self"), local("/repos/b")})

	require.True(t, s.OK(), "%+v", s.Results)
	self := s.Results[0]
	assert.False(t, self.Copied)
	assert.Equal(t, "unchanged", self.Status())
	assert.Equal(t, Checksum([]byte(prompt)), self.Checksum)
	assert.True(t, f.obs.has("warn Target is the source file"))

	assert.Equal(t, prompt, string(f.fs.Files[target("/self")]), "source must be untouched")
	assert.Equal(t, prompt, string(f.fs.Files[target("/repos/b")]))
	assert.True(t, s.Results[1].Copied)
}

func TestDeployIntoSourceRepositoryCommitsPendingFile(t *testing.T) {
	f := newFixture()
	f.addRepo("/self")
	f.fs.AddFile(target("/self"), []byte(prompt))
	f.git.Changes["/self"] = true
	d := New(f.fs, f.git, Options{Source: target("/self"), Commit: true}, WithObserver(f.obs))

	res := d.Deploy(local("/self"))

	require.NoError(t, res.Err)
	assert.False(t, res.Copied)
	assert.True(t, res.Committed)
	assert.Equal(t, "committed", res.Status())
}

func TestDeployCommit(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = true
	d := f.deployer(Options{Commit: true, CommitMessage: "Add review command"})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, res.Committed)
	assert.False(t, res.Pushed)
	assert.Equal(t, "committed", res.Status())
	rel := filepath.Join(".claude", "commands", "review-docs.md")
	assert.Equal(t, [][2]string{{"/repos/a", rel}}, f.git.AddCalls)
	assert.Equal(t, [][3]string{{"/repos/a", rel, "Add review command"}}, f.git.CommitCalls)
	assert.Empty(t, f.git.PushCalls)
}

func TestDeployNoChangesIsNotCommitted(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = false
	d := f.deployer(Options{Commit: true, Push: true})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, res.Unchanged)
	assert.Equal(t, "unchanged", res.Status())
	assert.Empty(t, f.git.AddCalls)
	assert.Empty(t, f.git.CommitCalls)
	assert.Empty(t, f.git.PushCalls)
	assert.True(t, f.obs.has("warn No changes to commit"))
}

func TestDeployNothingToCommitIsSuccess(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = true
	f.git.CommitErrors["/repos/a"] = fmt.Errorf("git commit: %w", ports.ErrNothingToCommit)
	d := f.deployer(Options{Push: true})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, res.Unchanged)
	assert.False(t, res.Committed)
	assert.Empty(t, f.git.PushCalls)
}

func TestDeployCommitFailure(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = true
	f.git.CommitErrors["/repos/a"] = errors.New("hook rejected commit")
	d := f.deployer(Options{Push: true})

	res := d.Deploy(local("/repos/a"))

	require.Error(t, res.Err)
	assert.Contains(t, res.Message, "committing")
	assert.Empty(t, f.git.PushCalls)
}

func TestDeployStatusFailure(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.StatusErrors["/repos/a"] = errors.New("index locked")
	d := f.deployer(Options{Commit: true})

	res := d.Deploy(local("/repos/a"))
	require.Error(t, res.Err)
	assert.Contains(t, res.Message, "checking status")
}

func TestDeployPush(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = true
	d := f.deployer(Options{Push: true})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, res.Committed, "push without commit still commits")
	assert.True(t, res.Pushed)
	assert.Equal(t, "pushed", res.Status())
	assert.Equal(t, []string{"/repos/a"}, f.git.PushCalls)
}

func TestDeployPushFailureFailsRepository(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = true
	f.git.PushErrors["/repos/a"] = errors.New("rejected: non-fast-forward")
	d := f.deployer(Options{Push: true})

	res := d.Deploy(local("/repos/a"))

	require.Error(t, res.Err)
	assert.True(t, res.Committed)
	assert.False(t, res.Pushed)
	assert.Contains(t, res.Message, "failed to push changes")
}

func TestDeployDryRunMakesNoChanges(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.git.Changes["/repos/a"] = true
	d := f.deployer(Options{DryRun: true, Push: true})

	summary := d.Run([]repolist.Entry{
		local("/repos/a"),
		remote("https://github.com/org/connector.git"),
	})
	require.NoError(t, d.Close())

	assert.Equal(t, 2, summary.Succeeded)
	assert.False(t, f.fs.Mutated(), "dry run must not touch the filesystem")
	assert.False(t, f.git.Mutated(), "dry run must not touch git")
	_, ok := f.fs.Files[target("/repos/a")]
	assert.False(t, ok)

	assert.True(t, f.obs.has("dry Would clone: https://github.com/org/connector.git"))
	assert.True(t, f.obs.has("dry Would create: "+filepath.Join("/repos/a", ".claude", "commands")))
	assert.True(t, f.obs.has("dry Would copy: "+srcPath+" -> "+target("/repos/a")))
	assert.True(t, f.obs.has("dry Would create file (+3 lines)"))
	assert.True(t, f.obs.has("dry Would commit changes"))
	assert.True(t, f.obs.has("dry Would push to remote"))

	for _, r := range summary.Results {
		assert.Equal(t, "dry run", r.Status())
	}
	require.NotNil(t, summary.Results[0].Preview)
	assert.Nil(t, summary.Results[1].Preview)
}

func TestDeployDryRunIdenticalFileNotCommitted(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.fs.AddFile(target("/repos/a"), []byte(prompt))
	f.git.Changes["/repos/a"] = false
	d := f.deployer(Options{DryRun: true, Commit: true})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, res.Unchanged)
	assert.True(t, res.Preview.Identical())
	assert.True(t, f.obs.has("dry Destination already matches source"))
	assert.True(t, f.obs.has("warn No changes to commit"))
	assert.False(t, f.obs.has("dry Would commit changes"))
	assert.False(t, f.git.Mutated())
}

func TestDeployDryRunModifiedFile(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.fs.AddFile(target("/repos/a"), []byte("# Review API docs\n\nOld rule.\n"))
	d := f.deployer(Options{DryRun: true, Commit: true})

	res := d.Deploy(local("/repos/a"))

	require.NoError(t, res.Err)
	assert.True(t, f.obs.has("dry Would change file (+1 -1 lines)"))
	assert.True(t, f.obs.has("dry Would commit changes"))
	assert.Empty(t, f.git.StatusCalls, "status is only consulted for identical files")
}

func TestRunContinuesAfterFailures(t *testing.T) {
	f := newFixture()
	f.addRepo("/repos/a")
	f.addRepo("/repos/c")
	f.fs.AddDir("/repos/plain")
	d := f.deployer(Options{})

	summary := d.Run([]repolist.Entry{
		local("/repos/a"),
		local("/repos/missing"),
		local("/repos/plain"),
		local("/repos/c"),
	})

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.False(t, summary.OK())
	require.Len(t, summary.Results, 4)
	assert.True(t, summary.Results[0].OK())
	assert.False(t, summary.Results[1].OK())
	assert.False(t, summary.Results[2].OK())
	assert.True(t, summary.Results[3].OK())

	assert.Equal(t, "begin 1/4 /repos/a", f.obs.events[0])
	i := indexOf(f.obs.events, "begin 2/4 /repos/missing")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "end failed", f.obs.events[i+1])
	assert.Equal(t, "end copied", f.obs.events[len(f.obs.events)-1])
}

func TestRunPrepareFailureFailsEveryEntry(t *testing.T) {
	d := New(mocks.NewMockFileSystem(), mocks.NewMockGitClient(), Options{Source: "/missing.md"})
	summary := d.Run([]repolist.Entry{local("/a"), local("/b")})
	assert.Equal(t, 2, summary.Failed)
	assert.Contains(t, summary.Results[0].Message, "source file not found")
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Checksum(nil))
	assert.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}

func indexOf(events []string, s string) int {
	for i, e := range events {
		if e == s {
			return i
		}
	}
	return -1
}
