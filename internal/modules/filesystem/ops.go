// SPDX-License-Identifier: MPL-2.0

package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/pkg/status"
)

// ErrTargetExists is returned when a copy would replace a file without the
// overwrite flag.
var ErrTargetExists = errors.New("target file exists")

func copyFile(logger *log.Logger, src, dst string, overwrite bool) status.Code {
	logger.Debug("copying file", "source", src, "target", dst, "overwrite", overwrite)
	if err := copyFileContents(src, dst, overwrite); err != nil {
		logger.Error("cannot copy file", "source", src, "target", dst, "err", err)
		return status.Failure
	}
	return status.Success
}

func copyFileContents(src, dst string, overwrite bool) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, info.Mode().Perm())
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrTargetExists, dst)
	}
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func removeFile(logger *log.Logger, path string) status.Code {
	logger.Debug("removing file", "path", path)
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return status.Success
	}
	if err == nil && info.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
	}
	if err == nil {
		err = os.Remove(path)
	}
	if err != nil {
		logger.Error("cannot remove file", "path", path, "err", err)
		return status.Failure
	}
	return status.Success
}

func moveFile(logger *log.Logger, src, dst string, overwrite bool) status.Code {
	if code := copyFile(logger, src, dst, overwrite); code.Failed() {
		return code
	}
	return removeFile(logger, src)
}

func makeDir(logger *log.Logger, path string) status.Code {
	logger.Debug("creating directory", "path", path)
	if err := os.MkdirAll(path, 0o755); err != nil {
		logger.Error("cannot create directory", "path", path, "err", err)
		return status.Failure
	}
	return status.Success
}

func removeDir(logger *log.Logger, path string, recursive bool) status.Code {
	logger.Debug("removing directory", "path", path, "recursive", recursive)
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", path)
	}
	if err == nil {
		if recursive {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
	}
	if err != nil {
		logger.Error("cannot remove directory", "path", path, "err", err)
		return status.Failure
	}
	return status.Success
}

// copyDir copies the tree at src into dst, creating dst when needed. A
// non-empty dst is only accepted with merge.
func copyDir(logger *log.Logger, src, dst string, merge, overwrite bool) status.Code {
	logger.Debug("copying directory", "source", src, "target", dst, "merge", merge, "overwrite", overwrite)

	info, err := os.Stat(src)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", src)
	}
	if err == nil {
		err = os.MkdirAll(dst, 0o755)
	}
	if err != nil {
		logger.Error("cannot copy directory", "source", src, "target", dst, "err", err)
		return status.Failure
	}

	if !merge {
		entries, err := os.ReadDir(dst)
		if err != nil {
			logger.Error("cannot read target directory", "target", dst, "err", err)
			return status.Failure
		}
		if len(entries) > 0 {
			logger.Error("directory not empty", "target", dst)
			return status.DirectoryNotEmpty
		}
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		logger.Debug("copying file", "source", path, "target", target)
		return copyFileContents(path, target, overwrite)
	})
	if err != nil {
		logger.Error("cannot copy directory", "source", src, "target", dst, "err", err)
		return status.Failure
	}
	return status.Success
}

func moveDir(logger *log.Logger, src, dst string, merge, overwrite bool) status.Code {
	if code := copyDir(logger, src, dst, merge, overwrite); code.Failed() {
		return code
	}
	return removeDir(logger, src, true)
}
