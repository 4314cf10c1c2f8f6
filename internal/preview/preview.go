// Package preview computes line diffs between a deployed file and its source.
package preview

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine represents a single line in a file diff
type DiffLine struct {
	LineNum1 int    // Line number in the current file (0 if added)
	LineNum2 int    // Line number in the incoming file (0 if deleted)
	Type     rune   // ' ' unchanged, '+' added, '-' deleted
	Content  string // Line content
}

// Result describes what deploying the source would change.
type Result struct {
	Path     string // Destination path inside the repository
	Exists   bool   // Whether the destination already exists
	IsBinary bool
	Added    int
	Removed  int
	Lines    []DiffLine
}

// Identical reports whether the deployment would leave the file unchanged.
func (r *Result) Identical() bool {
	return r.Exists && !r.IsBinary && r.Added == 0 && r.Removed == 0
}

// Compute diffs current (what the repository has) against incoming (the source).
func Compute(path string, exists bool, current, incoming string) *Result {
	result := &Result{Path: path, Exists: exists}

	if IsBinaryContent(current) || IsBinaryContent(incoming) {
		result.IsBinary = true
		return result
	}
	if current == incoming {
		result.Lines = convertToLineDiff(current, incoming)
		return result
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(current, incoming)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			result.Added += n
		case diffmatchpatch.DiffDelete:
			result.Removed += n
		}
	}

	result.Lines = convertToLineDiff(current, incoming)
	return result
}

// IsBinaryContent checks if content appears to be binary
func IsBinaryContent(content string) bool {
	if len(content) == 0 {
		return false
	}
	// Check first 8000 bytes for null bytes or invalid UTF-8
	checkLen := len(content)
	if checkLen > 8000 {
		checkLen = 8000
	}
	sample := content[:checkLen]

	if strings.Contains(sample, "\x00") {
		return true
	}

	return !utf8.ValidString(sample)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// convertToLineDiff produces a display-oriented line-by-line comparison.
func convertToLineDiff(content1, content2 string) []DiffLine {
	var lines []DiffLine

	lines1 := splitLines(content1)
	lines2 := splitLines(content2)

	i, j := 0, 0
	for i < len(lines1) || j < len(lines2) {
		if i < len(lines1) && j < len(lines2) && lines1[i] == lines2[j] {
			lines = append(lines, DiffLine{
				LineNum1: i + 1,
				LineNum2: j + 1,
				Type:     ' ',
				Content:  lines1[i],
			})
			i++
			j++
		} else if i < len(lines1) && (j >= len(lines2) || !containsLine(lines2[j:], lines1[i])) {
			lines = append(lines, DiffLine{
				LineNum1: i + 1,
				Type:     '-',
				Content:  lines1[i],
			})
			i++
		} else if j < len(lines2) {
			lines = append(lines, DiffLine{
				LineNum2: j + 1,
				Type:     '+',
				Content:  lines2[j],
			})
			j++
		}
	}

	return lines
}

func containsLine(lines []string, target string) bool {
	for _, line := range lines {
		if line == target {
			return true
		}
	}
	return false
}
