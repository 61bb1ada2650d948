package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", "127.0.0.1:8283", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "TRINKET_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "/trinket", "Base path to export the webserver on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "TRINKET_BASE_PATH")
}

func storeDirFlag(v *viper.Viper) string {
	return v.GetString("store.dir")
}

func addStoreDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("store-dir", defaultDataDir("snippets"), "Directory holding the snippet files")
	_ = v.BindPFlag("store.dir", flags.Lookup("store-dir"))
	_ = v.BindEnv("store.dir", "TRINKET_STORE_DIR")
}

func daemonAddressFlag(v *viper.Viper) string {
	return v.GetString("daemon.address")
}

func addDaemonAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("daemon-address", "", "Address of a running daemon (host:port); when empty the store is opened directly")
	_ = v.BindPFlag("daemon.address", flags.Lookup("daemon-address"))
	_ = v.BindEnv("daemon.address", "TRINKET_DAEMON_ADDRESS")
}

func copyFlag(v *viper.Viper) bool {
	return v.GetBool("copy")
}

func addCopyFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("copy", false, "Copy the first match's full content to the system clipboard")
	_ = v.BindPFlag("copy", flags.Lookup("copy"))
}

func archiveEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("archive.enabled")
}

func addArchiveEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("archive-enabled", false, "Keep best-effort JSON backups of the collection")
	_ = v.BindPFlag("archive.enabled", flags.Lookup("archive-enabled"))
	_ = v.BindEnv("archive.enabled", "TRINKET_ARCHIVE_ENABLED")
}

func archiveDirFlag(v *viper.Viper) string {
	return v.GetString("archive.dir")
}

func addArchiveDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("archive-dir", defaultDataDir("archive"), "Directory for filesystem archive bundles")
	_ = v.BindPFlag("archive.dir", flags.Lookup("archive-dir"))
	_ = v.BindEnv("archive.dir", "TRINKET_ARCHIVE_DIR")
}

func archiveLimitFlag(v *viper.Viper) int {
	return v.GetInt("archive.limit")
}

func addArchiveLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("archive-limit", 2, "Number of archive backups to keep")
	_ = v.BindPFlag("archive.limit", flags.Lookup("archive-limit"))
	_ = v.BindEnv("archive.limit", "TRINKET_ARCHIVE_LIMIT")
}

func archiveTypeFlag(v *viper.Viper) string {
	return v.GetString("archive.type")
}

func addArchiveTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("archive-type", "filesystem", "Archive storage backend (filesystem, blob)")
	_ = v.BindPFlag("archive.type", flags.Lookup("archive-type"))
	_ = v.BindEnv("archive.type", "TRINKET_ARCHIVE_TYPE")
}

func archiveBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("archive.blob.bucket")
}

func addArchiveBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("archive-blob-bucket", "", "Bucket URL for blob archive storage (gs://, s3://, azblob://)")
	_ = v.BindPFlag("archive.blob.bucket", flags.Lookup("archive-blob-bucket"))
	_ = v.BindEnv("archive.blob.bucket", "TRINKET_ARCHIVE_BLOB_BUCKET")
}

func archiveBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("archive.blob.prefix")
}

func addArchiveBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("archive-blob-prefix", "", "Optional key prefix for blob archive storage")
	_ = v.BindPFlag("archive.blob.prefix", flags.Lookup("archive-blob-prefix"))
	_ = v.BindEnv("archive.blob.prefix", "TRINKET_ARCHIVE_BLOB_PREFIX")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

// defaultDataDir falls back to a relative path when the home directory can
// not be resolved.
func defaultDataDir(sub string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("trinket", sub)
	}
	return filepath.Join(home, ".local", "share", "trinket", sub)
}
