// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the on-disk encoding of a record file.
type Format string

const (
	// FormatJSONL stores one JSON object per line, in sequence order.
	FormatJSONL Format = "jsonl"
	// FormatCBOR stores a deterministic CBOR snapshot.
	FormatCBOR Format = "cbor"
)

// ErrUnknownFormat is returned when a format cannot be determined from
// configuration or the file extension.
var ErrUnknownFormat = errors.New("unknown record file format")

// FormatForPath picks the format from the file extension: .jsonl,
// .ndjson and .json are JSON Lines; .cbor is CBOR.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	case ".cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("%w: %q (use .jsonl or .cbor)", ErrUnknownFormat, filepath.Base(path))
	}
}

// ResolveFormat returns the named format, or the format implied by
// path when name is empty.
func ResolveFormat(name string, path string) (Format, error) {
	switch Format(name) {
	case "":
		return FormatForPath(path)
	case FormatJSONL, FormatCBOR:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
