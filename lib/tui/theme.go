// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color palette for the record grid. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Cursor cell and selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
	CursorBackground   lipgloss.Color

	// Cells in the editing state, and the pending-commit marker.
	EditingForeground lipgloss.Color
	PendingForeground lipgloss.Color

	// Validation failures in cells and the status bar.
	ErrorForeground lipgloss.Color

	// Row-operation column (the delete affordance).
	OperationForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	AccentColor      lipgloss.Color

	// Animation accents: background tint for recently changed rows.
	// HotAccentPut is used for created and saved rows, HotAccentRemove
	// for rows another process removed.
	HotAccentPut    lipgloss.Color
	HotAccentRemove lipgloss.Color

	// Filter match highlighting.
	SearchHighlightBackground lipgloss.Color

	// Floating menus.
	TooltipForeground lipgloss.Color
	TooltipBackground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
	CursorBackground:   lipgloss.Color("24"),

	EditingForeground: lipgloss.Color("220"), // amber
	PendingForeground: lipgloss.Color("141"), // light purple

	ErrorForeground: lipgloss.Color("196"),

	OperationForeground: lipgloss.Color("174"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	AccentColor:      lipgloss.Color("75"),

	HotAccentPut:    lipgloss.Color("58"), // dark amber background tint
	HotAccentRemove: lipgloss.Color("52"), // dark red background tint

	SearchHighlightBackground: lipgloss.Color("58"),

	TooltipForeground: lipgloss.Color("252"),
	TooltipBackground: lipgloss.Color("237"),
}

// MonochromeTheme drops every color, for terminals without color
// support or when NO_COLOR is set. Selection and editing stay visible
// through the styles that use reverse and bold.
var MonochromeTheme = Theme{}

// ThemeForProfile picks the theme for a terminal color profile.
func ThemeForProfile(profile termenv.Profile) Theme {
	if profile == termenv.Ascii {
		return MonochromeTheme
	}
	return DefaultTheme
}
