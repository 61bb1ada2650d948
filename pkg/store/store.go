package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claudehenchoz/trinket/pkg/archive"
	"github.com/claudehenchoz/trinket/pkg/metrics"
	"github.com/claudehenchoz/trinket/snippet"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store coordinates the repository and the index so that concurrent saves
// and watcher-triggered reloads never race. Mutations are serialized behind
// a single lock; queries never take it and are answered from the last
// consistent index snapshot, even while a mutation is in flight.
type (
	Store struct {
		l             *zap.Logger
		repository    *Repository
		index         *Index
		archive       *archive.Archive
		loaded        *atomic.Bool
		onLoaded      func()
		notifications chan struct{}
		mu            sync.Mutex
	}
	Option func(*Store)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, repository *Repository, opts ...Option) *Store {
	inst := &Store{
		l:             l.Named("store"),
		repository:    repository,
		index:         NewIndex(),
		loaded:        &atomic.Bool{},
		notifications: make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithArchive enables best-effort collection backups after successful
// mutations.
func WithArchive(v *archive.Archive) Option {
	return func(o *Store) {
		o.archive = v
	}
}

// WithOnLoaded registers a callback invoked once, after the first
// successful reload.
func WithOnLoaded(v func()) Option {
	return func(o *Store) {
		o.onLoaded = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

// Loaded reports whether the initial reload has completed.
func (s *Store) Loaded() bool {
	return s.loaded.Load()
}

func (s *Store) Repository() *Repository {
	return s.repository
}

// Size returns the number of snippets in the current index snapshot.
func (s *Store) Size() int {
	return s.index.Len()
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Save persists content as a new snippet and makes it visible to the very
// next query. On failure the index is left untouched and the error is
// returned to the caller unchanged.
func (s *Store) Save(ctx context.Context, content string) (*snippet.Snippet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	snip, err := s.repository.Save(ctx, content)
	if err != nil {
		metrics.SavesFailedCounter.WithLabelValues().Inc()
		return nil, err
	}
	s.index.InsertFront(snip)

	metrics.SavesCompletedCounter.WithLabelValues().Inc()
	metrics.SaveDuration.WithLabelValues().Observe(time.Since(start).Seconds())

	s.persistArchive(ctx)
	return snip, nil
}

// Reload replaces the index with current disk truth. On failure the index
// keeps its previous, internally consistent contents and the error is
// returned.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	snippets, err := s.repository.LoadAll(ctx)
	if err != nil {
		metrics.ReloadsFailedCounter.WithLabelValues().Inc()
		return err
	}
	s.index.ReplaceAll(snippets)

	metrics.ReloadsCompletedCounter.WithLabelValues().Inc()
	metrics.ReloadDuration.WithLabelValues().Observe(time.Since(start).Seconds())

	if !s.loaded.Load() {
		s.loaded.Store(true)
		if s.onLoaded != nil {
			s.onLoaded()
		}
	}

	s.persistArchive(ctx)
	return nil
}

// Query answers from the current index snapshot. It never blocks on disk
// I/O and stays available while a mutation is running.
func (s *Store) Query(pattern string) []snippet.Result {
	return s.index.Query(pattern)
}

// Notify signals that the snippet directory changed on disk. The channel
// holds a single slot, so rapid bursts collapse into one reload once the
// mutation lock is free.
func (s *Store) Notify() {
	select {
	case s.notifications <- struct{}{}:
	default:
	}
}

// Start performs the initial load and runs the notification drain routine
// until the context is canceled.
func (s *Store) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := s.l.Named("start")

	l.Debug("running initial load")
	if err := s.Reload(gCtx); err != nil {
		l.Warn("initial load failed", zap.Error(err))
	}

	g.Go(func() error {
		l.Debug("starting notification routine")
		return s.NotificationRoutine(gCtx)
	})

	return g.Wait()
}

// NotificationRoutine drains change notifications and reconciles the index
// with disk truth, one reload per drained notification.
func (s *Store) NotificationRoutine(ctx context.Context) error {
	l := s.l.Named("routine.notification")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-s.notifications:
			if err := s.Reload(context.WithoutCancel(ctx)); err != nil {
				l.Error("failed to reload after change notification", zap.Error(err))
			}
		}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (s *Store) persistArchive(ctx context.Context) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Add(ctx, s.index.Snapshot()); err != nil {
		s.l.Error("could not persist snippet archive", zap.Error(err))
		metrics.ArchivePersistFailedCounter.WithLabelValues().Inc()
	}
}
