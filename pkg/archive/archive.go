package archive

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/claudehenchoz/trinket/snippet"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	BundlePrefix = "trinket-archive-"
	BundleSuffix = ".json"
	CurrentKey   = BundlePrefix + "current" + BundleSuffix

	// fixed-width fraction, so descending key order stays chronological
	// at sub-second boundaries
	bundleTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Archive keeps best-effort JSON backups of the snippet collection. The
	// snippet directory remains the source of truth; bundles are written
	// after successful mutations and never consulted when loading the store.
	Archive struct {
		l       *zap.Logger
		storage Storage
		dir     string // directory used for default filesystem storage
		limit   int
		mu      sync.RWMutex
	}
	Option func(*Archive)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithLimit(v int) Option {
	return func(o *Archive) {
		o.limit = v
	}
}

func WithDir(v string) Option {
	return func(o *Archive) {
		o.dir = v
	}
}

func WithStorage(s Storage) Option {
	return func(o *Archive) {
		o.storage = s
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, opts ...Option) (*Archive, error) {
	inst := &Archive{
		l:     l,
		dir:   "/var/lib/trinket/archive",
		limit: 2,
	}

	for _, opt := range opts {
		opt(inst)
	}

	// If no storage provided, create a default filesystem storage
	if inst.storage == nil {
		storage, err := NewFilesystemStorage(inst.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create default filesystem storage: %w", err)
		}
		inst.storage = storage
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Add encodes the collection and writes it to storage as both a timestamped
// backup and the current bundle, pruning backups beyond the limit.
func (a *Archive) Add(ctx context.Context, snippets []*snippet.Snippet) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.Marshal(snippets)
	if err != nil {
		return errors.Wrap(err, "failed to encode archive bundle")
	}

	backupKey := BundlePrefix + time.Now().UTC().Format(bundleTimeFormat) + BundleSuffix

	if err := a.storage.Write(ctx, backupKey, data); err != nil {
		return errors.Wrap(err, "failed to write archive backup")
	}

	a.l.Debug("writing bundles",
		zap.String("backup", backupKey),
		zap.String("current", CurrentKey),
	)

	if err := a.storage.Write(ctx, CurrentKey, data); err != nil {
		return errors.Wrap(err, "failed to write current archive bundle")
	}

	if err := a.cleanup(ctx); err != nil {
		return errors.Wrap(err, "failed to clean up archive")
	}

	return nil
}

// GetCurrent decodes the latest bundle.
func (a *Archive) GetCurrent(ctx context.Context) ([]*snippet.Snippet, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, err := a.storage.Read(ctx, CurrentKey)
	if err != nil {
		return nil, err
	}
	var snippets []*snippet.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil, errors.Wrap(err, "failed to decode archive bundle")
	}
	return snippets, nil
}

// Close releases resources held by the archive storage.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.storage != nil {
		return a.storage.Close()
	}
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (a *Archive) getBundles(ctx context.Context) (keys []string, err error) {
	all, err := a.storage.List(ctx, BundlePrefix)
	if err != nil {
		return nil, err
	}

	for _, key := range all {
		if key != CurrentKey &&
			strings.HasPrefix(key, BundlePrefix) &&
			strings.HasSuffix(key, BundleSuffix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (a *Archive) cleanup(ctx context.Context) error {
	keys, err := a.getBundlesForCleanup(ctx, a.limit)
	if err != nil {
		return err
	}

	for _, key := range keys {
		a.l.Debug("removing outdated backup", zap.String("bundle", key))
		if err := a.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("could not remove bundle %s: %w", key, err)
		}
	}

	return nil
}

func (a *Archive) getBundlesForCleanup(ctx context.Context, keep int) (keys []string, err error) {
	bundles, err := a.getBundles(ctx)
	if err != nil {
		return nil, errors.New("could not generate bundle cleanup list: " + err.Error())
	}

	if len(bundles) > keep {
		keys = bundles[keep:]
	}
	return keys, nil
}
