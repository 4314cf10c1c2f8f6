package deploy

import (
	"github.com/jmcdonald/docdeploy/internal/preview"
	"github.com/jmcdonald/docdeploy/internal/repolist"
)

// Result is the outcome of deploying to one repository.
type Result struct {
	Entry     repolist.Entry
	LocalPath string // working tree used, the clone location for remotes
	Target    string // destination file path
	DryRun    bool
	Cloned    bool
	Copied    bool
	Committed bool
	Pushed    bool
	Unchanged bool   // nothing to commit, or the target is the source file
	Checksum  string // SHA-256 of the deployed content
	Preview   *preview.Result
	Message   string
	Err       error
}

// OK reports whether the repository was processed without error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Status is a short label for tables and badges.
func (r Result) Status() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Unchanged:
		return "unchanged"
	case r.DryRun:
		return "dry run"
	case r.Pushed:
		return "pushed"
	case r.Committed:
		return "committed"
	default:
		return "copied"
	}
}

// Summary tallies a run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []Result
}

// OK reports whether every repository succeeded.
func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	if r.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
}
