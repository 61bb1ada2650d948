package snippet

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate identifier %q", id)
		seen[id] = true
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "abc.txt", Filename("abc"))
}

func TestPreviewOf_Empty(t *testing.T) {
	assert.Equal(t, "", PreviewOf(""))
}

func TestPreviewOf_FirstThreeLines(t *testing.T) {
	preview := PreviewOf("hello world\nline2\nline3\nline4")
	assert.Equal(t, "hello world line2 line3", preview)
}

func TestPreviewOf_SingleLine(t *testing.T) {
	assert.Equal(t, "just one line", PreviewOf("just one line"))
}

func TestPreviewOf_WindowsLineEndings(t *testing.T) {
	assert.Equal(t, "a b c", PreviewOf("a\r\nb\r\nc\r\nd"))
}

func TestPreviewOf_Bound(t *testing.T) {
	preview := PreviewOf(strings.Repeat("x", 1000))
	assert.Equal(t, 200, utf8.RuneCountInString(preview))
}

func TestPreviewOf_NeverSplitsCodePoints(t *testing.T) {
	// 300 two-byte runes, the cut falls inside the multi-byte region
	preview := PreviewOf(strings.Repeat("é", 300))
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 200, utf8.RuneCountInString(preview))

	// mixed widths around the boundary
	preview = PreviewOf(strings.Repeat("a", 199) + strings.Repeat("世", 10))
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 200, utf8.RuneCountInString(preview))
	assert.True(t, strings.HasSuffix(preview, "世"))
}

func TestMatchRanges(t *testing.T) {
	preview := "hello world line2 line3"

	ranges := MatchRanges(preview, "world")
	require.Len(t, ranges, 1)
	assert.Equal(t, Range{Start: 6, End: 11}, ranges[0])
	assert.Equal(t, "world", preview[ranges[0].Start:ranges[0].End])
}

func TestMatchRanges_CaseInsensitive(t *testing.T) {
	preview := "Hello World"

	ranges := MatchRanges(preview, "hello")
	require.Len(t, ranges, 1)
	assert.Equal(t, "Hello", preview[ranges[0].Start:ranges[0].End])
}

func TestMatchRanges_MultipleOccurrences(t *testing.T) {
	ranges := MatchRanges("abc abc abc", "abc")
	require.Len(t, ranges, 3)
	assert.Equal(t, Range{Start: 0, End: 3}, ranges[0])
	assert.Equal(t, Range{Start: 4, End: 7}, ranges[1])
	assert.Equal(t, Range{Start: 8, End: 11}, ranges[2])
}

func TestMatchRanges_NoMatch(t *testing.T) {
	assert.Empty(t, MatchRanges("hello", "xyz"))
	assert.Empty(t, MatchRanges("", "xyz"))
	assert.Empty(t, MatchRanges("hello", ""))
}

func TestMatchRanges_MultiByte(t *testing.T) {
	preview := "héllo wörld"

	ranges := MatchRanges(preview, "WÖRLD")
	require.Len(t, ranges, 1)
	assert.Equal(t, "wörld", preview[ranges[0].Start:ranges[0].End])
}
