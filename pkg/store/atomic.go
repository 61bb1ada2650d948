package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteFileAtomic writes data to path so that a concurrent reader observes
// either the previous complete content or the new complete content, never a
// mixture. The data goes to a temporary file in the target directory, is
// synced to disk and then renamed onto path. The temporary file lives in the
// same directory so the final step is a rename, not a copy.
//
// If any step before the rename fails, the temporary file is removed and the
// previous content of path (if any) is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %q", dir)
	}
	tmpName := tmp.Name()
	fail := func(err error, msg string) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "%s %q", msg, tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err, "failed to write temporary file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err, "failed to chmod temporary file")
	}
	if err := tmp.Sync(); err != nil {
		return fail(err, "failed to sync temporary file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "failed to close temporary file %q", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "failed to rename %q to %q", tmpName, path)
	}
	return nil
}
