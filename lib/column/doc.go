// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package column describes the grid's column schema: which record
// field each column shows, its title, whether it is editable, and the
// [Kind] that renders, seeds and parses its values.
//
// Kinds are a closed variant over [TextField] and [NumericField]. The
// cell state machine holds a Kind and calls its capabilities without
// branching on which variant it has; the schema alone decides.
//
// The operation column (row actions such as delete) is part of the
// schema for layout purposes but is never editable and has no Kind.
package column
