// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// MaxFileSize bounds configuration files. They hold a handful of keys and paths.
const MaxFileSize int64 = 1 << 20

// ParseFile reads path, unifies it with the definition in schema and decodes the
// result into a T. A schema that fails to compile, or lacks definition, is a
// programming error and is reported as an internal error.
func ParseFile[T any](schema []byte, path, definition string) (*T, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrTooLarge, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return decode[T](schema, data, path, definition)
}

func decode[T any](schema, data []byte, file, definition string) (*T, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", file, ErrTooLarge, len(data), MaxFileSize)
	}

	ctx := cuecontext.New()
	root := ctx.CompileBytes(schema).LookupPath(cue.ParsePath(definition))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("internal error: schema definition %s: %w", definition, err)
	}

	user := ctx.CompileBytes(data, cue.Filename(file))
	if err := user.Err(); err != nil {
		return nil, newError(err, file)
	}

	unified := root.Unify(user)
	if err := unified.Validate(); err != nil {
		return nil, newError(err, file)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, newError(err, file)
	}
	return &out, nil
}
