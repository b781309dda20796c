// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HeatDecayDuration is how long a row glows after a change. Heat
// starts at 1.0 and decays linearly to 0.0 over this duration.
const HeatDecayDuration = 3 * time.Second

// HeatTickInterval is the re-render interval while any row is hot.
const HeatTickInterval = 100 * time.Millisecond

// HeatKind distinguishes changes for color selection.
type HeatKind int

const (
	// HeatPut marks a created or saved row (amber glow).
	HeatPut HeatKind = iota
	// HeatRemove marks a row removed by another process (red glow).
	HeatRemove
)

type heatEntry struct {
	ignition time.Time
	kind     HeatKind
}

// HeatTracker maps item keys to ignition timestamps for animated
// change highlighting.
type HeatTracker[K comparable] struct {
	entries map[K]heatEntry
}

// NewHeatTracker creates an empty heat tracker.
func NewHeatTracker[K comparable]() *HeatTracker[K] {
	return &HeatTracker[K]{entries: make(map[K]heatEntry)}
}

// Ignite records a change. Resets the decay if the item was already
// hot.
func (tracker *HeatTracker[K]) Ignite(key K, kind HeatKind, now time.Time) {
	tracker.entries[key] = heatEntry{ignition: now, kind: kind}
}

// Heat returns the current intensity for an item: 1.0 at ignition,
// linearly decaying to 0.0 over [HeatDecayDuration].
func (tracker *HeatTracker[K]) Heat(key K, now time.Time) float64 {
	entry, exists := tracker.entries[key]
	if !exists {
		return 0.0
	}
	elapsed := now.Sub(entry.ignition)
	if elapsed >= HeatDecayDuration || elapsed < 0 {
		return 0.0
	}
	return 1.0 - float64(elapsed)/float64(HeatDecayDuration)
}

// Kind returns the heat kind for an item. Only meaningful while Heat
// is above zero.
func (tracker *HeatTracker[K]) Kind(key K) HeatKind {
	return tracker.entries[key].kind
}

// HasHot reports whether any item is still glowing, so the tick should
// keep running. Fully decayed entries are dropped.
func (tracker *HeatTracker[K]) HasHot(now time.Time) bool {
	hot := false
	for key, entry := range tracker.entries {
		if now.Sub(entry.ignition) < HeatDecayDuration {
			hot = true
			continue
		}
		delete(tracker.entries, key)
	}
	return hot
}

// HeatBackground returns the background tint for an item, or false
// when the item has cooled. Heat above one half uses the full accent;
// below that the glow steps down to the selection background before
// disappearing.
func (tracker *HeatTracker[K]) HeatBackground(theme Theme, key K, now time.Time) (lipgloss.Color, bool) {
	heat := tracker.Heat(key, now)
	if heat <= 0 {
		return "", false
	}
	accent := theme.HotAccentPut
	if tracker.Kind(key) == HeatRemove {
		accent = theme.HotAccentRemove
	}
	if heat < 0.5 {
		return theme.SelectedBackground, true
	}
	return accent, true
}
