// SPDX-License-Identifier: MPL-2.0

package filesystem

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/pkg/status"
)

// extractZip unpacks the archive into a temporary directory and then moves
// the result into dst with the directory copy rules.
func extractZip(logger *log.Logger, archive, dst string, merge, overwrite bool) status.Code {
	logger.Debug("extracting archive", "archive", archive, "target", dst)

	tmp, err := os.MkdirTemp("", "confrun-zip-")
	if err != nil {
		logger.Error("cannot create temporary directory", "err", err)
		return status.Failure
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	if err := unzip(archive, tmp); err != nil {
		logger.Error("cannot extract archive", "archive", archive, "err", err)
		return status.Failure
	}
	return moveDir(logger, tmp, dst, merge, overwrite)
}

func unzip(archive, dst string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	root := filepath.Clean(dst) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(dst, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("archive entry %q escapes the target directory", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) (err error) {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, rc)
	return err
}
