package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claudehenchoz/trinket/pkg/archive"
	"github.com/claudehenchoz/trinket/pkg/handler"
	"github.com/claudehenchoz/trinket/pkg/store"
	"github.com/claudehenchoz/trinket/pkg/watch"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func NewServeCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the snippet store daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
			)

			l := svr.Logger()

			repository, err := store.NewRepository(l.Named("inst.repository"), storeDirFlag(v))
			if err != nil {
				return fmt.Errorf("failed to open snippet repository: %w", err)
			}

			opts := []store.Option{}
			closers := []func() error{}
			if archiveEnabledFlag(v) {
				storage, err := createArchiveStorage(cmd.Context(), v, l)
				if err != nil {
					return fmt.Errorf("failed to create archive storage: %w", err)
				}
				arc, err := archive.New(l.Named("inst.archive"),
					archive.WithStorage(storage),
					archive.WithDir(archiveDirFlag(v)),
					archive.WithLimit(archiveLimitFlag(v)),
				)
				if err != nil {
					return fmt.Errorf("failed to create archive: %w", err)
				}
				opts = append(opts, store.WithArchive(arc))
				closers = append(closers, arc.Close)
			}

			loaded := make(chan struct{})
			opts = append(opts, store.WithOnLoaded(func() {
				close(loaded)
			}))

			s := store.New(l.Named("inst.store"), repository, opts...)

			w, err := watch.New(l.Named("inst.watcher"), repository.BaseDir(), s.Notify)
			if err != nil {
				return fmt.Errorf("failed to watch snippet directory: %w", err)
			}
			closers = append(closers, w.Close)

			isLoadedHealthzerFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				select {
				case <-loaded:
					return nil
				default:
					return errors.New("store not loaded yet")
				}
			})
			svr.AddStartupHealthzers(isLoadedHealthzerFn)
			svr.AddReadinessHealthzers(isLoadedHealthzerFn)

			svr.AddClosers(func(ctx context.Context) error {
				var err error
				for _, closer := range closers {
					err = multierr.Append(err, closer())
				}
				return err
			})

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.store"), "store", func(ctx context.Context, l *zap.Logger) error {
					return s.Start(ctx)
				}),
				service.NewGoRoutine(l.Named("go.watcher"), "watcher", func(ctx context.Context, l *zap.Logger) error {
					return w.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), s, handler.WithPath(basePathFlag(v))),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addStoreDirFlag(flags, v)
	addArchiveEnabledFlag(flags, v)
	addArchiveTypeFlag(flags, v)
	addArchiveDirFlag(flags, v)
	addArchiveLimitFlag(flags, v)
	addArchiveBlobBucketFlag(flags, v)
	addArchiveBlobPrefixFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)

	return cmd
}

// supportedBlobSchemes lists the URL schemes supported by blob archive storage
var supportedBlobSchemes = []string{"gs://", "s3://", "azblob://"}

// createArchiveStorage creates an archive storage backend based on the configuration
func createArchiveStorage(ctx context.Context, v *viper.Viper, l *zap.Logger) (archive.Storage, error) {
	storageType := archiveTypeFlag(v)
	blobBucket := archiveBlobBucketFlag(v)
	blobPrefix := archiveBlobPrefixFlag(v)

	if storageType != "blob" && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob archive flags are set but archive-type is not 'blob'; blob config will be ignored",
			zap.String("archive-type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}

	l.Info("creating archive storage", zap.String("type", storageType))

	switch storageType {
	case "blob":
		if blobBucket == "" {
			return nil, fmt.Errorf("blob bucket URL is required when archive-type is 'blob' (supported schemes: gs://, s3://, azblob://)")
		}
		if !isValidBlobScheme(blobBucket) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme in %q; supported schemes: gs://, s3://, azblob://", blobBucket)
		}
		l.Info("using blob archive storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
		)
		return archive.NewBlobStorage(ctx, blobBucket, blobPrefix)
	case "filesystem", "":
		dir := archiveDirFlag(v)
		l.Info("using filesystem archive storage", zap.String("dir", dir))
		return archive.NewFilesystemStorage(dir)
	default:
		return nil, fmt.Errorf("unknown archive type: %s (supported: filesystem, blob)", storageType)
	}
}

// isValidBlobScheme checks if the bucket URL has a supported scheme
func isValidBlobScheme(bucketURL string) bool {
	for _, scheme := range supportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}
