package store

import (
	"strings"
	"sync"

	"github.com/claudehenchoz/trinket/snippet"
)

// Index holds the materialized snippet collection and answers filter queries
// against the current snapshot. Mutations swap the collection wholesale, so
// a reader holding the previous slice never observes a torn mixture of old
// and new records.
type Index struct {
	mu       sync.RWMutex
	snippets []*snippet.Snippet
}

func NewIndex() *Index {
	return &Index{}
}

// ReplaceAll swaps the held collection.
func (i *Index) ReplaceAll(snippets []*snippet.Snippet) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.snippets = snippets
}

// InsertFront prepends a freshly saved snippet. New saves are always "now",
// so this keeps the newest-first ordering without a full reload. The held
// slice is rebuilt, never mutated in place.
func (i *Index) InsertFront(s *snippet.Snippet) {
	i.mu.Lock()
	defer i.mu.Unlock()
	next := make([]*snippet.Snippet, 0, len(i.snippets)+1)
	next = append(next, s)
	i.snippets = append(next, i.snippets...)
}

// Snapshot returns the current collection. Callers must not mutate it.
func (i *Index) Snapshot() []*snippet.Snippet {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.snippets
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.snippets)
}

// Query returns the snippets whose full content contains pattern
// case-insensitively, preserving the index's current order, each annotated
// with the byte ranges of its preview that fall inside a match. A match past
// the preview window still returns the record, just unhighlighted. An empty
// pattern returns the whole collection.
func (i *Index) Query(pattern string) []snippet.Result {
	snapshot := i.Snapshot()
	results := make([]snippet.Result, 0, len(snapshot))

	if pattern == "" {
		for _, s := range snapshot {
			results = append(results, snippet.Result{Snippet: s})
		}
		return results
	}

	needle := strings.ToLower(pattern)
	for _, s := range snapshot {
		if !strings.Contains(strings.ToLower(s.Content), needle) {
			continue
		}
		results = append(results, snippet.Result{
			Snippet: s,
			Matches: snippet.MatchRanges(s.Preview, pattern),
		})
	}
	return results
}
