package fs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/locknote/pkg/core"
)

// TempFilePrefix names the scratch files written next to a store while it is
// being replaced.
const TempFilePrefix = "locknote-tmp-"

// replaceStore swaps the file at path for data in a single rename. Readers see
// either the old document or the new one. The scratch file is created
// owner-only, so ciphertext is never readable by others, not even briefly.
// On any failure the previous store is left untouched.
func replaceStore(path string, data []byte) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return &core.IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(StorePerm); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		tmp.Close()
		return &core.IOError{Op: "chmod", Path: path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &core.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &core.IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &core.IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &core.IOError{Op: "rename", Path: path, Err: err}
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry of a rename. Not every platform can
// fsync a directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
