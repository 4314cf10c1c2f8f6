package deploy

import "github.com/jmcdonald/docdeploy/internal/repolist"

// Observer receives progress while a run is in flight.
type Observer interface {
	// Begin is called before entry index (1-based) of total is processed.
	Begin(index, total int, entry repolist.Entry)
	// Step announces an action about to happen.
	Step(msg string)
	// Done confirms the last step succeeded.
	Done(msg string)
	// Warn reports a non-fatal condition.
	Warn(msg string)
	// DryRun describes an action that was skipped because of --dry-run.
	DryRun(msg string)
	// End is called with the outcome of the entry.
	End(result Result)
}

// NopObserver discards all progress.
type NopObserver struct{}

func (NopObserver) Begin(int, int, repolist.Entry) {}
func (NopObserver) Step(string)                    {}
func (NopObserver) Done(string)                    {}
func (NopObserver) Warn(string)                    {}
func (NopObserver) DryRun(string)                  {}
func (NopObserver) End(Result)                     {}
