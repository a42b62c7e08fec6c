// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/confrun/confrun/internal/modules/filesystem"
	"github.com/confrun/confrun/internal/modules/launcher"
	"github.com/confrun/confrun/internal/modules/registry"
	"github.com/confrun/confrun/internal/plugin"
	"github.com/confrun/confrun/pkg/cfgfile"
	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

const (
	// MinVersion is the oldest supported Meta.Version.
	MinVersion = 1
	// MaxVersion is the newest supported Meta.Version.
	MaxVersion = 1

	// ExtendedPrefix is the cosmetic section-name prefix stripped before the
	// module name is derived.
	ExtendedPrefix = "X."
)

type (
	// Dispatcher executes the sections of one Config.
	Dispatcher struct {
		ctx        context.Context
		cfg        *cfgfile.Config
		logger     *log.Logger
		loader     plugin.Loader
		ec         *module.ExecutionContext
		handlers   map[string]module.Handler
		inProgress map[string]struct{}
	}

	// Option configures a Dispatcher.
	Option func(*Dispatcher)
)

// WithLogger sets the log sink handed to every handler.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithLoader sets the plugin loader consulted on handler cache misses.
func WithLoader(l plugin.Loader) Option {
	return func(d *Dispatcher) {
		d.loader = l
	}
}

// WithExecutionContext sets the working directory and environment state of the run.
func WithExecutionContext(ec *module.ExecutionContext) Option {
	return func(d *Dispatcher) {
		if ec != nil {
			d.ec = ec
		}
	}
}

// WithHandler registers h under name, replacing any built-in of the same name.
func WithHandler(name string, h module.Handler) Option {
	return func(d *Dispatcher) {
		d.handlers[name] = h
	}
}

// WithContext makes the run stop between commands once ctx is done.
func WithContext(ctx context.Context) Option {
	return func(d *Dispatcher) {
		if ctx != nil {
			d.ctx = ctx
		}
	}
}

// New creates a Dispatcher for cfg.
func New(cfg *cfgfile.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ctx:        context.Background(),
		cfg:        cfg,
		logger:     log.New(io.Discard),
		inProgress: make(map[string]struct{}),
	}
	d.handlers = map[string]module.Handler{
		module.General:  module.HandlerFunc(d.general),
		filesystem.Name: filesystem.New(),
		launcher.Name:   launcher.New(),
		registry.Name:   registry.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.ec == nil {
		d.ec = module.NewExecutionContext()
	}
	return d
}

// ExecutionContext returns the state shared by the commands of the run.
func (d *Dispatcher) ExecutionContext() *module.ExecutionContext {
	return d.ec
}

// ValidateMeta checks that the Meta section exists and declares a supported
// Version.
func (d *Dispatcher) ValidateMeta() status.Code {
	return ValidateMeta(d.cfg)
}

// ValidateMeta checks cfg's Meta section without running anything.
func ValidateMeta(cfg *cfgfile.Config) status.Code {
	meta, ok := cfg.Section(cfgfile.MetaSection)
	if !ok {
		return status.MetaSectionMissing
	}
	raw, ok := meta.Lookup(cfgfile.VersionKey)
	if !ok {
		return status.UnsupportedVersion
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < MinVersion || v > MaxVersion {
		return status.UnsupportedVersion
	}
	return status.Success
}

// DispatchCommands validates the Meta section and then executes start. An
// empty start selects the Default section.
func (d *Dispatcher) DispatchCommands(start string) status.Code {
	if start == "" {
		start = cfgfile.DefaultSection
	}
	d.logger.Debug("dispatch started", "section", start)

	if code := d.ValidateMeta(); code.Failed() {
		d.logger.Error("invalid Meta section", "status", code)
		return code
	}

	code := d.ExecuteSection(start)
	if code.Failed() {
		d.logger.Error("could not execute starting section", "section", start, "status", code)
		return code
	}
	d.logger.Debug("dispatch succeeded", "section", start)
	return status.Success
}

// ExecuteSection runs every entry of the named section through the handler of
// its module, stopping at the first failure.
func (d *Dispatcher) ExecuteSection(name string) status.Code {
	if _, busy := d.inProgress[name]; busy {
		d.logger.Error("section re-entered while still running", "section", name, "status", status.CyclicSection)
		return status.CyclicSection
	}
	d.inProgress[name] = struct{}{}
	defer delete(d.inProgress, name)

	sec, ok := d.cfg.Section(name)
	if !ok {
		d.logger.Error("section not found", "section", name, "status", status.SectionNotFound)
		return status.SectionNotFound
	}

	moduleName, ok := ModuleName(name)
	if !ok {
		d.logger.Error("invalid section name", "section", name, "status", status.InvalidSectionName)
		return status.InvalidSectionName
	}

	handler, code := d.FindCommandHandler(moduleName)
	if code.Failed() {
		d.logger.Error("cannot find command handler", "section", name, "module", moduleName, "status", code)
		return code
	}

	d.logger.Debug("section started", "section", name, "module", moduleName)
	for _, entry := range sec.Entries {
		if err := d.ctx.Err(); err != nil {
			d.logger.Error("run interrupted", "section", name, "command", entry.Command, "err", err)
			return status.Interrupted
		}

		args := d.ec.Expand(entry.Args)
		code = handler.Handle(d.ec, entry.Command, args, d, d.logger)
		if code.Failed() {
			d.logger.Error("command failed",
				"section", name, "module", moduleName, "line", entry.Line,
				"command", entry.Command, "args", args, "status", code)
			return code
		}
	}
	d.logger.Debug("section succeeded", "section", name)
	return status.Success
}

// Invoke implements module.Escalator.
func (d *Dispatcher) Invoke(moduleName, command, args string) status.Code {
	return d.ExecCommand(moduleName, command, args)
}

// ExecCommand resolves moduleName and hands it a single command. The arguments
// are not expanded again.
func (d *Dispatcher) ExecCommand(moduleName, command, args string) status.Code {
	handler, code := d.FindCommandHandler(moduleName)
	if code.Failed() {
		d.logger.Error("cannot find module",
			"module", moduleName, "command", command, "args", args, "status", code)
		return code
	}

	code = handler.Handle(d.ec, command, args, d, d.logger)
	if code.Failed() {
		d.logger.Error("command handler failed",
			"module", moduleName, "command", command, "args", args, "status", code)
	}
	return code
}

// FindCommandHandler returns the handler for moduleName, loading it as a
// plugin on the first request. Every discovery failure is reported as
// System/PluginNotFound with the cause logged.
func (d *Dispatcher) FindCommandHandler(moduleName string) (module.Handler, status.Code) {
	if h, ok := d.handlers[moduleName]; ok {
		return h, status.Success
	}

	if d.loader == nil {
		d.logger.Warn("no plugin loader configured", "module", moduleName)
		return nil, status.PluginNotFound
	}

	h, err := d.loader.Load(moduleName)
	if err == nil && h == nil {
		err = errors.New("loader returned no handler")
	}
	if err != nil {
		d.logger.Error("plugin discovery failed", "module", moduleName, "err", err)
		return nil, status.PluginNotFound
	}

	d.handlers[moduleName] = h
	d.logger.Debug("plugin loaded", "module", moduleName)
	return h, status.Success
}

// ModuleName derives the owning module of a section. Default belongs to
// General. Any other name, after dropping an optional "X." prefix, must be
// "<Module>.<rest>" with a non-empty module part.
func ModuleName(section string) (string, bool) {
	if section == cfgfile.DefaultSection {
		return module.General, true
	}
	short := strings.TrimPrefix(section, ExtendedPrefix)
	name, _, found := strings.Cut(short, ".")
	if !found || name == "" {
		return "", false
	}
	return name, true
}

// IsBuiltin reports whether name is a module compiled into the dispatcher.
func IsBuiltin(name string) bool {
	switch name {
	case module.General, filesystem.Name, launcher.Name, registry.Name:
		return true
	default:
		return false
	}
}
