// Package atomicfile replaces files by writing a temporary sibling and
// renaming it into place, so readers never observe a partial file.
package atomicfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Perm is the mode of files created by [Write].
const Perm os.FileMode = 0o644

// Write calls fn with a buffered writer backed by a hidden temporary file in
// the directory of path, then syncs and renames the file over path.
//
// If fn or any later step fails, the temporary file is removed and path is
// left untouched.
func Write(path string, fn func(w io.Writer) error) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)

	err = fn(bw)
	if err != nil {
		return err
	}

	err = bw.Flush()
	if err != nil {
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}

	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}

	err = tmp.Chmod(Perm)
	if err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}

	return nil
}
