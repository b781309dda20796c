// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gridui implements the terminal user interface of the record
// grid. Built on bubbletea (Elm architecture), it renders a sequence of
// records as an editable table, one inline editor at a time, with a
// per-row delete action behind a confirmation menu.
//
// The model is a controlled component. It is constructed with the
// owner's sequence and an onChange callback; adds, deletes and saves
// go through [grid.Controller] to onChange. The delivered sequence is
// shown at once and the next mutation builds on it; the owner supplying
// it back on the updates channel confirms it, and any other sequence
// the owner supplies replaces it.
// Commit validation runs in a tea.Cmd, so the grid stays responsive
// while it runs, and its outcome is applied on the event loop.
//
// Data flow:
//
//	[record.Store / other owner]
//	        | (updates channel)        ^ (onChange)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package gridui
