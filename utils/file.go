package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// WriteFile creates fn and fills it with encode. When creating, encoding or
// closing fails the partially written file is removed.
func WriteFile(fn string, encode func(w io.Writer) error) error {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", fn)
	}
	if err := multierr.Combine(encode(f), f.Close()); err != nil {
		RemoveFileNoError(fn)
		return errors.Wrapf(err, "cannot write %q", fn)
	}
	return nil
}

// RemoveFileNoError will remove the file at the given path if it exists. Any
// errors will be suppressed.
func RemoveFileNoError(path string) {
	utils.UncheckedErrorFunc(func() error {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	})
}

// ExpandHomeDir replaces a leading ~ with the current user's home directory.
func ExpandHomeDir(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrapf(err, "cannot expand %q", path)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
