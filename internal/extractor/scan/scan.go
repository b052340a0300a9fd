// Package scan finds candidate files on the local filesystem.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

// Match returns all regular files under root whose base name matches pattern
// with shell-glob semantics. Hidden files (leading dot) are always skipped,
// the check applies to the file's own name only, not its ancestors. When
// recursive is false only direct children of root are considered.
//
// The caller is responsible for root existing and being a directory.
func Match(logger logSDK.Logger, root, pattern string, recursive bool) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	var matched []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %q", path)
		}

		if d.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}

			return nil
		}

		if !isRegular(path, d) {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		if ok {
			matched = append(matched, path)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %q", root)
	}

	logger.Info("matched files",
		zap.Int("count", len(matched)),
		zap.String("root", root))
	return matched, nil
}

// isRegular reports whether the entry is a regular file, following one level
// of symlink the way shell globbing does. Broken symlinks are skipped.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}

	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
