// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package column

import (
	"errors"
	"strconv"
	"strings"
)

// Kind is the per-value-type capability set used by editable cells.
type Kind interface {
	// Name identifies the kind in configuration ("text", "number").
	Name() string

	// Render formats a stored value for display in a viewing cell.
	Render(value string) string

	// Seed converts a stored value into the initial editor content
	// when a cell enters editing.
	Seed(value string) string

	// Parse checks editor input against the kind's type and returns
	// the canonical stored form. Empty input parses to the empty
	// string; presence is a separate rule.
	Parse(input string) (string, error)

	// RequestsFocus reports whether entering editing should move
	// input focus to the editor explicitly. Kinds whose widget
	// takes focus on its own return false.
	RequestsFocus() bool
}

// TextField is free text. Parsing trims surrounding whitespace.
type TextField struct{}

func (TextField) Name() string { return "text" }

func (TextField) Render(value string) string { return value }

func (TextField) Seed(value string) string { return value }

func (TextField) Parse(input string) (string, error) {
	return strings.TrimSpace(input), nil
}

func (TextField) RequestsFocus() bool { return true }

// ErrNotANumber is returned by [NumericField.Parse] for input that is
// not a whole number.
var ErrNotANumber = errors.New("must be a whole number")

// ErrNegative is returned by [NumericField.Parse] for negative input.
var ErrNegative = errors.New("must not be negative")

// NumericField is a non-negative whole number stored in its canonical
// decimal form ("007" is stored as "7").
type NumericField struct{}

func (NumericField) Name() string { return "number" }

func (NumericField) Render(value string) string { return value }

func (NumericField) Seed(value string) string { return value }

func (NumericField) Parse(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}
	number, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", ErrNotANumber
	}
	if number < 0 {
		return "", ErrNegative
	}
	return strconv.Itoa(number), nil
}

func (NumericField) RequestsFocus() bool { return false }

// KindByName returns the kind registered under name.
func KindByName(name string) (Kind, bool) {
	switch name {
	case "text", "":
		return TextField{}, true
	case "number":
		return NumericField{}, true
	default:
		return nil, false
	}
}
