package fetcher

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// exists reports whether something is already stored at dest.
func exists(dest string) (bool, error) {
	if _, err := os.Stat(dest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrap(err, "fetcher stat destination")
	}

	return true, nil
}

// reserve creates an empty temporary file in the destination directory.
func reserve(dest string) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return nil, errors.Wrap(err, "fetcher create temp file")
	}

	return f, nil
}

// writeTemp streams r into a fresh temporary file and returns its name.
// Nothing is left behind on failure.
func writeTemp(dest string, r io.Reader) (string, int64, error) {
	f, err := reserve(dest)
	if err != nil {
		return "", 0, err
	}
	tmp := f.Name()

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return "", 0, errors.Wrap(err, "fetcher write body")
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", 0, errors.Wrap(err, "fetcher close temp file")
	}

	return tmp, n, nil
}

// commit moves tmp to dest without ever replacing an existing file. It
// reports false if another writer got there first.
func commit(tmp, dest string) (bool, error) {
	defer os.Remove(tmp)

	err := os.Link(tmp, dest)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}

	// Filesystems without hard links; the race window is accepted there.
	if ok, statErr := exists(dest); statErr == nil && ok {
		return false, nil
	}
	if err := os.Rename(tmp, dest); err != nil {
		return false, errors.Wrap(err, "fetcher rename temp file")
	}

	return true, nil
}
