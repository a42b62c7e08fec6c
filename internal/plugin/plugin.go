// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/confrun/confrun/pkg/module"
)

// HandlerSymbol is the name every plugin must export.
const HandlerSymbol = "CommandHandler"

// Plugin file extensions, in probe order.
const (
	ExtGoPlugin = ".so"
	ExtLua      = ".lua"
	ExtShell    = ".sh"
)

var (
	// ErrNotFound is returned when no plugin file exists for a module.
	ErrNotFound = errors.New("plugin not found")
	// ErrInvalidModuleName is returned for module names that cannot name a file.
	ErrInvalidModuleName = errors.New("invalid module name")
)

type (
	// Loader resolves a module name to a Handler.
	Loader interface {
		Load(moduleName string) (module.Handler, error)
	}

	// LoaderFunc adapts an ordinary function to the Loader interface.
	LoaderFunc func(moduleName string) (module.Handler, error)

	// ShapeError reports a plugin whose exported handler has the wrong form.
	ShapeError struct {
		Module string
		Path   string
		Reason string
	}

	// LoadError reports a plugin file that exists but could not be loaded.
	LoadError struct {
		Module string
		Path   string
		Err    error
	}

	// Discoverer loads plugins from a directory.
	Discoverer struct {
		// Dir is the directory searched for plugin files.
		Dir string

		loaded []*luaHandler
	}

	probe struct {
		ext  string
		load func(moduleName, path string) (module.Handler, error)
	}
)

// Load calls f.
func (f LoaderFunc) Load(moduleName string) (module.Handler, error) {
	return f(moduleName)
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("plugin %s (%s): %s %s", e.Module, e.Path, HandlerSymbol, e.Reason)
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("plugin %s (%s): %v", e.Module, e.Path, e.Err)
}

// Unwrap returns the underlying load failure.
func (e *LoadError) Unwrap() error { return e.Err }

// NewDiscoverer creates a Discoverer searching dir.
func NewDiscoverer(dir string) *Discoverer {
	return &Discoverer{Dir: dir}
}

// Load finds and loads the plugin for moduleName.
func (d *Discoverer) Load(moduleName string) (module.Handler, error) {
	if moduleName == "" || moduleName == "." || moduleName == ".." ||
		strings.ContainsAny(moduleName, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModuleName, moduleName)
	}

	probes := []probe{
		{ExtGoPlugin, loadGoPlugin},
		{ExtLua, d.loadLua},
		{ExtShell, loadShell},
	}
	for _, p := range probes {
		path := filepath.Join(d.Dir, moduleName+p.ext)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &LoadError{Module: moduleName, Path: path, Err: err}
		}
		if info.IsDir() {
			return nil, &LoadError{Module: moduleName, Path: path, Err: errors.New("is a directory")}
		}
		return p.load(moduleName, path)
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, moduleName, d.Dir)
}

// Close releases every Lua state opened by the Discoverer.
func (d *Discoverer) Close() {
	for _, h := range d.loaded {
		h.close()
	}
	d.loaded = nil
}
