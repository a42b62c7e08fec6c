// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// handlerFromSymbol accepts an exported Handler variable, a value implementing
// Handler, or a function with the Handle signature.
func handlerFromSymbol(moduleName, path string, sym any) (module.Handler, error) {
	switch h := sym.(type) {
	case *module.Handler:
		if *h == nil {
			return nil, &ShapeError{Module: moduleName, Path: path, Reason: "is nil"}
		}
		return *h, nil
	case module.Handler:
		return h, nil
	case func(*module.ExecutionContext, string, string, module.Escalator, *log.Logger) status.Code:
		return module.HandlerFunc(h), nil
	default:
		return nil, &ShapeError{Module: moduleName, Path: path, Reason: fmt.Sprintf("has unsupported type %T", sym)}
	}
}
