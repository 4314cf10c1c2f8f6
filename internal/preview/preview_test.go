package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNewFile(t *testing.T) {
	r := Compute(".claude/commands/review-docs.md", false, "", "# Review\n\nCheck docs.\n")

	assert.False(t, r.Exists)
	assert.False(t, r.Identical())
	assert.Equal(t, 3, r.Added)
	assert.Equal(t, 0, r.Removed)
	require.Len(t, r.Lines, 3)
	for _, l := range r.Lines {
		assert.Equal(t, '+', l.Type)
		assert.Equal(t, 0, l.LineNum1)
	}
	assert.Equal(t, "# Review", r.Lines[0].Content)
}

func TestComputeIdentical(t *testing.T) {
	content := "line one\nline two\n"
	r := Compute("f.md", true, content, content)

	assert.True(t, r.Identical())
	assert.Equal(t, 0, r.Added)
	assert.Equal(t, 0, r.Removed)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, ' ', r.Lines[0].Type)
	assert.Equal(t, 1, r.Lines[0].LineNum1)
	assert.Equal(t, 1, r.Lines[0].LineNum2)
}

func TestComputeModified(t *testing.T) {
	current := "title\nold rule\nfooter\n"
	incoming := "title\nnew rule\nextra rule\nfooter\n"
	r := Compute("f.md", true, current, incoming)

	assert.False(t, r.Identical())
	assert.Equal(t, 2, r.Added)
	assert.Equal(t, 1, r.Removed)

	var types []rune
	for _, l := range r.Lines {
		types = append(types, l.Type)
	}
	assert.Equal(t, []rune{' ', '-', '+', '+', ' '}, types)
}

func TestComputeEmptyingFile(t *testing.T) {
	r := Compute("f.md", true, "a\nb", "")
	assert.Equal(t, 0, r.Added)
	assert.Equal(t, 2, r.Removed)
	assert.False(t, r.Identical())
}

func TestComputeBinary(t *testing.T) {
	r := Compute("f.bin", true, "text", "bin\x00ary")
	assert.True(t, r.IsBinary)
	assert.False(t, r.Identical())
	assert.Empty(t, r.Lines)
}

func TestIsBinaryContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"plain text", "hello\nworld", false},
		{"utf8", "héllo wörld ✓", false},
		{"null byte", "abc\x00def", true},
		{"invalid utf8", string([]byte{0xff, 0xfe, 0xfd}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinaryContent(tt.content))
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("a"))
	assert.Equal(t, 1, countLines("a\n"))
	assert.Equal(t, 2, countLines("a\nb"))
	assert.Equal(t, 2, countLines("a\nb\n"))
}
