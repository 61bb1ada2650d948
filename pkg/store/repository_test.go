package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claudehenchoz/trinket/snippet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repository, err := NewRepository(zaptest.NewLogger(t), t.TempDir())
	require.NoError(t, err)
	return repository
}

func TestRepositorySave_RoundTrip(t *testing.T) {
	r := newTestRepository(t)

	content := "hello world\nsecond line with ünïcode"
	saved, err := r.Save(t.Context(), content)
	require.NoError(t, err)

	snippets, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, saved.ID, snippets[0].ID)
	assert.Equal(t, content, snippets[0].Content)
}

func TestRepositorySave_PopulatesRecord(t *testing.T) {
	r := newTestRepository(t)

	saved, err := r.Save(t.Context(), "hello\nworld")
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "hello\nworld", saved.Content)
	assert.Equal(t, "hello world", saved.Preview)
	assert.Equal(t, filepath.Join(r.BaseDir(), saved.ID+".txt"), saved.Location)
	assert.False(t, saved.Created.IsZero())
	assert.False(t, saved.Modified.IsZero())
}

func TestRepositorySave_MissingDirFails(t *testing.T) {
	r := newTestRepository(t)
	require.NoError(t, os.RemoveAll(r.BaseDir()))

	_, err := r.Save(t.Context(), "hello")
	require.Error(t, err)
}

func TestRepositoryLoadAll_EmptyDir(t *testing.T) {
	r := newTestRepository(t)

	snippets, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, snippets)
}

func TestRepositoryLoadAll_Ordering(t *testing.T) {
	r := newTestRepository(t)

	now := time.Now()
	writeSnippetFile(t, r.BaseDir(), "old", "old content", now.Add(-2*time.Hour))
	writeSnippetFile(t, r.BaseDir(), "mid", "mid content", now.Add(-time.Hour))
	writeSnippetFile(t, r.BaseDir(), "new", "new content", now)

	snippets, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	require.Len(t, snippets, 3)
	assert.Equal(t, "new", snippets[0].ID)
	assert.Equal(t, "mid", snippets[1].ID)
	assert.Equal(t, "old", snippets[2].ID)
}

func TestRepositoryLoadAll_DeterministicTies(t *testing.T) {
	r := newTestRepository(t)

	ts := time.Now().Add(-time.Hour)
	writeSnippetFile(t, r.BaseDir(), "b", "content b", ts)
	writeSnippetFile(t, r.BaseDir(), "a", "content a", ts)
	writeSnippetFile(t, r.BaseDir(), "c", "content c", ts)

	first, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	second, err := r.LoadAll(t.Context())
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
	assert.Equal(t, "c", first[2].ID)
	assert.Equal(t, first, second)
}

func TestRepositoryLoadAll_IgnoresSubdirsAndOtherSuffixes(t *testing.T) {
	r := newTestRepository(t)

	require.NoError(t, os.Mkdir(filepath.Join(r.BaseDir(), "sub.txt"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(r.BaseDir(), "notes.md"), []byte("nope"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(r.BaseDir(), ".tmp-123"), []byte("partial"), 0o600))
	writeSnippetFile(t, r.BaseDir(), "keep", "kept", time.Now())

	snippets, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "keep", snippets[0].ID)
}

func TestRepositoryLoadAll_SkipsUnreadableFile(t *testing.T) {
	r := newTestRepository(t)

	writeSnippetFile(t, r.BaseDir(), "keep", "kept", time.Now())

	// a self-referential symlink is listed but can never be read
	loop := filepath.Join(r.BaseDir(), "loop.txt")
	require.NoError(t, os.Symlink(loop, loop))

	snippets, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "keep", snippets[0].ID)
}

func TestRepositoryLoadAll_ConcreteScenario(t *testing.T) {
	r := newTestRepository(t)

	now := time.Now()
	writeSnippetFile(t, r.BaseDir(), "f1", "hello world\nline2\nline3\nline4", now)
	writeSnippetFile(t, r.BaseDir(), "f2", "goodbye", now.Add(-time.Minute))

	snippets, err := r.LoadAll(t.Context())
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, "f1", snippets[0].ID)
	assert.Equal(t, "hello world line2 line3", snippets[0].Preview)
	assert.Equal(t, "goodbye", snippets[1].Content)
}

func writeSnippetFile(t *testing.T, dir, id, content string, modTime time.Time) {
	t.Helper()
	location := filepath.Join(dir, snippet.Filename(id))
	require.NoError(t, os.WriteFile(location, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(location, modTime, modTime))
}
