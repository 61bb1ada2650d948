package snippet

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// FileSuffix is the extension of snippet files in the store directory.
	FileSuffix = ".txt"

	previewMaxLines = 3
	previewMaxRunes = 200
)

// Snippet is a persisted unit of text content plus derived metadata. The
// backing file contains the raw content verbatim; everything else is derived
// from the file name and its filesystem metadata.
type Snippet struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Preview  string    `json:"preview"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Location string    `json:"location"`
}

// Range marks a half-open byte range [Start, End) of a preview string that
// lies inside a query match.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result pairs a matched snippet with highlight annotations for its preview.
// Matches is empty when the match lies beyond the preview window.
type Result struct {
	Snippet *Snippet `json:"snippet"`
	Matches []Range  `json:"matches,omitempty"`
}

// NewID returns a fresh collision-resistant snippet identifier.
func NewID() string {
	return uuid.New().String()
}

// Filename returns the store file name for the given identifier.
func Filename(id string) string {
	return id + FileSuffix
}

// PreviewOf derives the display preview for content: the first three lines
// joined by a single space, truncated to 200 runes without splitting a code
// point. Empty content yields an empty preview.
func PreviewOf(content string) string {
	if content == "" {
		return ""
	}
	lines := strings.SplitN(content, "\n", previewMaxLines+1)
	if len(lines) > previewMaxLines {
		lines = lines[:previewMaxLines]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	joined := strings.Join(lines, " ")
	runes := 0
	for i := range joined {
		if runes == previewMaxRunes {
			return joined[:i]
		}
		runes++
	}
	return joined
}

// MatchRanges returns the byte ranges of preview that match pattern, compared
// case-insensitively. The ranges refer to the original preview bytes so that
// a presentation layer can render emphasis without re-running the search.
func MatchRanges(preview, pattern string) []Range {
	if preview == "" || pattern == "" {
		return nil
	}

	// lower rune by rune, keeping a map from lowered byte offsets back to
	// the original preview bytes
	var (
		lowered strings.Builder
		offsets = make([]int, 0, len(preview)+1)
	)
	for i, r := range preview {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		lowered.WriteRune(lr)
	}
	offsets = append(offsets, len(preview))

	var (
		haystack = lowered.String()
		needle   = strings.ToLower(pattern)
		ranges   []Range
		from     int
	)
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(needle)
		ranges = append(ranges, Range{Start: offsets[start], End: offsets[end]})
		from = end
	}
	return ranges
}
