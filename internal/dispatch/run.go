// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"

	"github.com/confrun/confrun/pkg/cfgfile"
	"github.com/confrun/confrun/pkg/status"
)

// Run parses the config file at path and dispatches it from start. The
// returned error, when non-nil, is the parse failure; everything else is
// reported through the status code.
func Run(ctx context.Context, path, start string, opts ...Option) (status.Code, error) {
	cfg, err := cfgfile.ParseFile(path)
	if err != nil {
		return status.FromError(err), err
	}
	opts = append([]Option{WithContext(ctx)}, opts...)
	return New(cfg, opts...).DispatchCommands(start), nil
}
