// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/recordgrid/lib/record"
	"github.com/bureau-foundation/recordgrid/lib/tui"
)

// filterFields are the record fields the row filter matches against.
var filterFields = []record.Field{record.FieldName, record.FieldAddress}

// FilterModel narrows the displayed rows by fuzzy match. It only
// changes the projection shown; mutations still go to the full
// sequence.
type FilterModel struct {
	// Input is the current query text.
	Input string

	// Active is true while the filter input has keyboard focus.
	Active bool

	slab *util.Slab
}

// filterResult is the projection of a sequence through the filter.
type filterResult struct {
	// Keys are the visible rows in sequence order.
	Keys []record.Key

	// Highlights maps visible rows to matched rune positions per
	// field. Nil when the filter is empty.
	Highlights map[record.Key]map[record.Field][]int
}

// Apply projects sequence through the current query. A record is
// visible when any filter field matches; row order stays the sequence
// order.
func (filter *FilterModel) Apply(sequence record.Sequence) filterResult {
	pattern := tui.FuzzyPattern(filter.Input)
	if len(pattern) == 0 {
		return filterResult{Keys: sequence.Keys()}
	}
	if filter.slab == nil {
		filter.slab = tui.NewFuzzySlab()
	}

	result := filterResult{Highlights: make(map[record.Key]map[record.Field][]int)}
	for _, item := range sequence {
		var matched map[record.Field][]int
		for _, field := range filterFields {
			value, _ := item.Get(field)
			fuzzy := tui.FuzzyMatch(value, pattern, filter.slab)
			if !fuzzy.Matched {
				continue
			}
			if matched == nil {
				matched = make(map[record.Field][]int)
			}
			matched[field] = fuzzy.Positions
		}
		if matched == nil {
			continue
		}
		result.Keys = append(result.Keys, item.Key)
		result.Highlights[item.Key] = matched
	}
	return result
}

// HandleRune appends a character to the query.
func (filter *FilterModel) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character. Returns false when the
// query was already empty.
func (filter *FilterModel) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear empties the query.
func (filter *FilterModel) Clear() {
	filter.Input = ""
}

// View renders the filter bar, or "" when the filter is neither active
// nor holding a query.
func (filter *FilterModel) View(theme tui.Theme, width, shown, total int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}
	promptStyle := lipgloss.NewStyle().Foreground(theme.AccentColor).Bold(true)
	inputStyle := lipgloss.NewStyle().Foreground(theme.NormalText)
	countStyle := lipgloss.NewStyle().Foreground(theme.FaintText)

	cursor := ""
	if filter.Active {
		cursor = "█"
	}
	left := promptStyle.Render(" / ") + inputStyle.Render(filter.Input+cursor)
	right := countStyle.Render(fmt.Sprintf("%d/%d ", shown, total))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return tui.FitWidth(left+strings.Repeat(" ", gap)+right, width)
}
