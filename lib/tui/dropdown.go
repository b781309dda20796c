// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DropdownOption is a single selectable item in a dropdown overlay.
type DropdownOption struct {
	Label string // Display text shown in the dropdown.
	Value string // Value reported on selection.
}

// DropdownOverlay renders a floating menu anchored at a screen
// position. It captures keyboard input while open (up/down to move,
// enter to select, escape to dismiss); the model owns the instance and
// routes keys to it.
type DropdownOverlay struct {
	// Title is an optional first line, rendered faint and not
	// selectable.
	Title   string
	Options []DropdownOption
	Cursor  int
	AnchorX int // Screen X coordinate of the top-left corner.
	AnchorY int // Screen Y coordinate of the top-left corner.
	Target  string
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (dropdown *DropdownOverlay) MoveUp() {
	dropdown.Cursor--
	if dropdown.Cursor < 0 {
		dropdown.Cursor = len(dropdown.Options) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (dropdown *DropdownOverlay) MoveDown() {
	dropdown.Cursor++
	if dropdown.Cursor >= len(dropdown.Options) {
		dropdown.Cursor = 0
	}
}

// Selected returns the currently highlighted option.
func (dropdown *DropdownOverlay) Selected() DropdownOption {
	return dropdown.Options[dropdown.Cursor]
}

// Width returns the visible width of the rendered dropdown.
func (dropdown *DropdownOverlay) Width() int {
	widest := ansi.StringWidth(dropdown.Title)
	for _, option := range dropdown.Options {
		// " > LABEL " without the outer padding.
		widest = max(widest, 2+ansi.StringWidth(option.Label))
	}
	return widest + 2
}

// Height returns the number of rendered lines.
func (dropdown *DropdownOverlay) Height() int {
	if dropdown.Title != "" {
		return len(dropdown.Options) + 1
	}
	return len(dropdown.Options)
}

// Render produces the dropdown lines for [SpliceOverlay]. Every line
// has the same visible width and a solid background; the highlighted
// option uses the selection colors.
func (dropdown *DropdownOverlay) Render(theme Theme) []string {
	totalWidth := dropdown.Width()
	innerWidth := totalWidth - 2

	backgroundStyle := lipgloss.NewStyle().
		Background(theme.TooltipBackground).
		Foreground(theme.TooltipForeground)
	titleStyle := backgroundStyle.Foreground(theme.FaintText)
	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground).
		Reverse(theme.SelectedBackground == "")

	var lines []string
	if dropdown.Title != "" {
		lines = append(lines, titleStyle.Render(" "+FitWidth(dropdown.Title, innerWidth)+" "))
	}
	for index, option := range dropdown.Options {
		marker := " "
		style := backgroundStyle
		if index == dropdown.Cursor {
			marker = ">"
			style = selectedStyle
		}
		content := FitWidth(marker+" "+option.Label, innerWidth)
		lines = append(lines, style.Render(" "+content+" "))
	}
	return lines
}

// ConfirmDropdown returns a two-option confirmation menu with the
// destructive option first and the cursor on the safe one.
func ConfirmDropdown(title, confirmLabel, target string, anchorX, anchorY int) *DropdownOverlay {
	return &DropdownOverlay{
		Title: title,
		Options: []DropdownOption{
			{Label: confirmLabel, Value: "confirm"},
			{Label: "Cancel", Value: "cancel"},
		},
		Cursor:  1,
		AnchorX: anchorX,
		AnchorY: anchorY,
		Target:  target,
	}
}
