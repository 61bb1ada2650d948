package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claudehenchoz/trinket/pkg/metrics"
	"github.com/claudehenchoz/trinket/snippet"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Repository owns the on-disk directory of snippet files. Every snippet is a
// single file named <id>.txt holding the raw content verbatim; the directory
// listing is the source of truth, no manifest is kept.
type Repository struct {
	l       *zap.Logger
	baseDir string
}

// NewRepository creates the base directory if missing, parents included, and
// returns a repository rooted there.
func NewRepository(l *zap.Logger, baseDir string) (*Repository, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create snippet directory %q", baseDir)
	}
	return &Repository{
		l:       l.Named("repository"),
		baseDir: baseDir,
	}, nil
}

func (r *Repository) BaseDir() string {
	return r.baseDir
}

// Save persists content as a new snippet file and returns the populated
// record. On failure no file is left behind.
func (r *Repository) Save(_ context.Context, content string) (*snippet.Snippet, error) {
	id := snippet.NewID()
	location := filepath.Join(r.baseDir, snippet.Filename(id))

	if err := WriteFileAtomic(location, []byte(content), 0o600); err != nil {
		return nil, errors.Wrapf(err, "failed to write snippet %q", id)
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat snippet file %q", location)
	}

	r.l.Debug("snippet saved",
		zap.String("id", id),
		zap.String("location", location),
	)

	return &snippet.Snippet{
		ID:       id,
		Content:  content,
		Preview:  snippet.PreviewOf(content),
		Created:  info.ModTime(),
		Modified: info.ModTime(),
		Location: location,
	}, nil
}

// LoadAll lists the base directory and parses every snippet file, newest
// first with identifier-ascending tie break. Only direct children with the
// snippet suffix are considered. A file that disappears between listing and
// reading is skipped silently as a benign race with an external deletion; an
// unreadable file is skipped and reported but never aborts the batch.
func (r *Repository) LoadAll(_ context.Context) ([]*snippet.Snippet, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list snippet directory %q", r.baseDir)
	}

	var (
		snippets []*snippet.Snippet
		skipped  error
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snippet.FileSuffix) {
			continue
		}
		location := filepath.Join(r.baseDir, entry.Name())

		data, err := os.ReadFile(location)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			metrics.SkippedFilesCounter.WithLabelValues().Inc()
			skipped = multierr.Append(skipped, errors.Wrapf(err, "failed to read snippet file %q", location))
			continue
		}

		info, err := entry.Info()
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			metrics.SkippedFilesCounter.WithLabelValues().Inc()
			skipped = multierr.Append(skipped, errors.Wrapf(err, "failed to stat snippet file %q", location))
			continue
		}

		content := string(data)
		snippets = append(snippets, &snippet.Snippet{
			ID:       strings.TrimSuffix(entry.Name(), snippet.FileSuffix),
			Content:  content,
			Preview:  snippet.PreviewOf(content),
			Created:  info.ModTime(),
			Modified: info.ModTime(),
			Location: location,
		})
	}

	if skipped != nil {
		r.l.Warn("skipped unreadable snippet files",
			zap.Int("count", len(multierr.Errors(skipped))),
			zap.Error(skipped),
		)
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		if snippets[i].Created.Equal(snippets[j].Created) {
			return snippets[i].ID < snippets[j].ID
		}
		return snippets[i].Created.After(snippets[j].Created)
	})

	return snippets, nil
}
