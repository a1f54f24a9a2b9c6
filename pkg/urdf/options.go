// SPDX-License-Identifier: MPL-2.0

package urdf

import "log/slog"

type (
	// parseOptions holds configuration for a single parse.
	parseOptions struct {
		modelName string
		logger    *slog.Logger
	}

	// ParseOption configures parsing behavior.
	ParseOption func(*parseOptions)
)

func defaultParseOptions() parseOptions {
	return parseOptions{
		modelName: "", // empty means use the <robot> name attribute
		logger:    nil,
	}
}

// WithModelName overrides the document's <robot name> as the model instance name.
// It also allows parsing documents whose <robot> has no name.
func WithModelName(name string) ParseOption {
	return func(o *parseOptions) {
		o.modelName = name
	}
}

// WithLogger sets the logger used for debug notes. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ParseOption {
	return func(o *parseOptions) {
		o.logger = logger
	}
}
