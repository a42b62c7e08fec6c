// SPDX-License-Identifier: MPL-2.0

//go:build (linux || darwin || freebsd) && cgo

package plugin

import (
	goplugin "plugin"

	"github.com/confrun/confrun/pkg/module"
)

func loadGoPlugin(moduleName, path string) (module.Handler, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, &LoadError{Module: moduleName, Path: path, Err: err}
	}
	sym, err := p.Lookup(HandlerSymbol)
	if err != nil {
		return nil, &ShapeError{Module: moduleName, Path: path, Reason: "is not exported"}
	}
	return handlerFromSymbol(moduleName, path, sym)
}
