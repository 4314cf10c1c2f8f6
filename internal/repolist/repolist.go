// Package repolist reads repository lists and classifies their entries.
package repolist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// remotePrefixes mark an entry as something to clone rather than a local path.
var remotePrefixes = []string{"http://", "https://", "git@", "ssh://", "file://"}

// Entry is one repository reference from a list file.
type Entry struct {
	Line   int    // 1-based line number in the list file
	Source string // path or URL as written, trimmed
	Remote bool
}

// Name returns the directory name a remote entry is cloned into.
func (e Entry) Name() string {
	return RepoName(e.Source)
}

func (e Entry) String() string {
	return e.Source
}

// Parse reads entries from r, skipping blank lines and # comments.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, Entry{
			Line:   lineNo,
			Source: line,
			Remote: IsRemoteURL(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading repository list: %w", err)
	}
	return entries, nil
}

// Load opens and parses the list file at path.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository list: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// IsRemoteURL reports whether s looks like a clonable URL.
func IsRemoteURL(s string) bool {
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// RepoName derives a clone directory name from a repository URL:
// the last path segment without a trailing ".git".
func RepoName(url string) string {
	name := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" || name == "." || name == ".." {
		return "repo"
	}
	return name
}
