// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package grid implements the editing core of the record grid: the
// collection controller that transforms sequences, the per-row edit
// session that holds and validates pending values, and the per-cell
// state machine that gates commits on validation.
//
// The grid is a controlled component. It never owns the sequence it
// edits: every operation takes the caller's current sequence, produces
// a new one, and hands it to the owner's onChange callback. The owner
// re-supplies the value on the next render.
//
// Control flow for an edit:
//
//	Cell.Activate ── seeds ──> Session
//	Cell.BeginCommit ──> CommitAttempt.Run ──> Session.Validate ──> Validator
//	Cell.Resolve ──> Controller.Save ──> onChange(next)
//
// CommitAttempt.Run is the only step that may block. Interactive
// callers run it off the event loop and deliver the [CommitOutcome]
// back to Resolve on the loop. All other methods on [Cell], [Rows] and
// [Controller] are meant to be called from a single goroutine.
//
// Failure handling degrades to "state unchanged": unknown keys and a
// missing owner make mutations no-ops, and validation failures keep the
// cell editing with its pending input intact.
package grid
