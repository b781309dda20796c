// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides terminal components shared by the record grid
// UI: the color theme, floating menus spliced over a rendered view,
// change-highlight animation, the scrollbar, and fzf-backed fuzzy
// matching. Built for bubbletea views; nothing here owns an event loop.
package tui
