// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the record grid TUI.
type KeyMap struct {
	// Grid navigation.
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Activate starts editing the cell under the cursor, or opens the
	// delete confirmation on the operation column.
	Activate key.Binding

	// Row mutations.
	Add    key.Binding
	Delete key.Binding

	// Editor bindings. Submit and every leave binding run the same
	// commit attempt; there is no discard.
	Submit        key.Binding
	LeaveNext     key.Binding // Blur and move one column right.
	LeavePrevious key.Binding // Blur and move one column left.
	LeaveUp       key.Binding // Blur and move one row up.
	LeaveDown     key.Binding // Blur and move one row down.
	Leave         key.Binding // Blur in place.

	// Confirmation shortcuts.
	Confirm key.Binding
	Decline key.Binding

	// Filter.
	FilterActivate key.Binding
	FilterClear    key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style movement
// alongside the arrow keys. Editor bindings use only keys that cannot
// be typed into a field.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left", "shift+tab"),
		key.WithHelp("h/←", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right", "tab"),
		key.WithHelp("l/→", "right"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "edit"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add row"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete row"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "save"),
	),
	LeaveNext: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "save, next"),
	),
	LeavePrevious: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "save, previous"),
	),
	LeaveUp: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "save, up"),
	),
	LeaveDown: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "save, down"),
	),
	Leave: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "save"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Decline: key.NewBinding(
		key.WithKeys("n", "esc", "q"),
		key.WithHelp("n/Esc", "cancel"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
