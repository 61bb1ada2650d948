package watch

import (
	"context"
	"strings"

	"github.com/claudehenchoz/trinket/pkg/metrics"
	"github.com/claudehenchoz/trinket/snippet"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watcher emits an edge-triggered change signal whenever snippet files
// inside the store directory are created, written, renamed or removed.
// Duplicate or coalesced notifications are fine; the store treats a reload
// as idempotent and always reflects current disk truth.
type Watcher struct {
	l        *zap.Logger
	watcher  *fsnotify.Watcher
	dir      string
	onChange func()
}

// New watches dir and invokes onChange for every relevant event.
func New(l *zap.Logger, dir string, onChange func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch snippet directory %q", dir)
	}
	return &Watcher{
		l:        l.Named("watcher"),
		watcher:  watcher,
		dir:      dir,
		onChange: onChange,
	}, nil
}

// Start consumes filesystem events until the context is canceled. Events
// for files without the snippet suffix are dropped, which also filters the
// atomic writer's temporary files.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, snippet.FileSuffix) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.l.Debug("snippet directory changed",
				zap.String("file", event.Name),
				zap.Stringer("op", event.Op),
			)
			metrics.WatcherEventsCounter.WithLabelValues().Inc()
			if w.onChange != nil {
				w.onChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.l.Error("watcher error", zap.Error(err))
		case <-ctx.Done():
			return w.watcher.Close()
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
