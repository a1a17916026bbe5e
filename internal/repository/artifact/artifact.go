// Package artifact replaces build artifacts on disk atomically.
package artifact

import (
	"bytes"
	"crypto"
	"crypto/md5" //nolint:gosec // Used for integrity checking, not security.
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
)

// DefaultFileMode is applied to generated artifacts.
const DefaultFileMode os.FileMode = 0o644

// Write atomically replaces path with data.
// The content is staged next to the target, verified and swapped in with a rename.
func Write(path string, data []byte, mode os.FileMode) error {
	path = filepath.Clean(path)

	if mode == 0 {
		mode = DefaultFileMode
	}

	// The swap renames the current target away first, so it has to exist.
	placeholder := false

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(path, nil, mode); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		placeholder = true
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	checksum := md5.Sum(data) //nolint:gosec // Used for integrity checking, not security.

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: mode,
		Checksum:   checksum[:],
		Hash:       crypto.MD5,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		if placeholder {
			_ = os.Remove(path)
		}

		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return fmt.Errorf("replace %s: %w (rollback failed: %w)", path, err, rollbackErr)
		}

		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
