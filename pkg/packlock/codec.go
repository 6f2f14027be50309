// SPDX-License-Identifier: MPL-2.0

package packlock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Path returns the manifest path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Write validates pack and writes it to dir/pack.lock.toml, replacing any
// existing manifest atomically.
func Write(pack *ToolPack, dir string) error {
	if err := pack.Validate(); err != nil {
		return err
	}

	data, err := Marshal(pack)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write atomically using temp file + rename
	path := Path(dir)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to rename lock file: %w", err)
	}
	return nil
}

// Marshal encodes pack in manifest form: [pack], then [depends] and [tools]
// when they are non-empty. Table keys are sorted.
func Marshal(pack *ToolPack) ([]byte, error) {
	out := *pack
	if len(out.Depends) == 0 {
		out.Depends = nil
	}
	if len(out.Tools) == 0 {
		out.Tools = nil
	}
	data, err := toml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lock file: %w", err)
	}
	return data, nil
}

// Read loads dir/pack.lock.toml.
func Read(dir string) (*ToolPack, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrLockFileNotFound, path, err)
		}
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}

	pack, err := Unmarshal(path, data)
	if err != nil {
		return nil, err
	}
	return pack, nil
}

// Unmarshal decodes and validates a manifest; path is used in errors only.
func Unmarshal(path string, data []byte) (*ToolPack, error) {
	var pack ToolPack
	if err := toml.Unmarshal(data, &pack); err != nil {
		perr := &ParseError{Path: path, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}

	if len(pack.Depends) == 0 {
		pack.Depends = nil
	}
	if len(pack.Tools) == 0 {
		pack.Tools = nil
	}

	verr := &ValidationError{Path: path}
	if !hasDescription(data) {
		verr.Problems = append(verr.Problems, "pack.description is required")
	}
	var invalid *ValidationError
	if errors.As(pack.Validate(), &invalid) {
		verr.Problems = append(verr.Problems, invalid.Problems...)
	}
	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return &pack, nil
}

// hasDescription reports whether the [pack] table declares a description,
// empty or not. data has already decoded cleanly.
func hasDescription(data []byte) bool {
	var keys struct {
		Pack struct {
			Description *string `toml:"description"`
		} `toml:"pack"`
	}
	if err := toml.Unmarshal(data, &keys); err != nil {
		return false
	}
	return keys.Pack.Description != nil
}
