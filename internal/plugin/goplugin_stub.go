// SPDX-License-Identifier: MPL-2.0

//go:build !((linux || darwin || freebsd) && cgo)

package plugin

import (
	"errors"

	"github.com/confrun/confrun/pkg/module"
)

func loadGoPlugin(moduleName, path string) (module.Handler, error) {
	return nil, &LoadError{Module: moduleName, Path: path, Err: errors.ErrUnsupported}
}
