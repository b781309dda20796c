// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/grid"
	"github.com/bureau-foundation/recordgrid/lib/record"
	"github.com/bureau-foundation/recordgrid/lib/tui"
)

// Screen layout: header (or filter bar) and column titles on top, the
// bottom separator and help bar below.
const (
	gridBodyStartY    = 2
	chromeBottomLines = 2

	defaultColumnWidth   = 16
	operationColumnWidth = 8
)

// operationLabel is what the operation column shows in every row.
const operationLabel = "delete"

// columnWidth returns the display width of a column.
func columnWidth(definition column.Column) int {
	if definition.Width > 0 {
		return definition.Width
	}
	if definition.IsOperation() {
		return operationColumnWidth
	}
	return defaultColumnWidth
}

// columnOffset returns the screen X of a column's first character.
func (model Model) columnOffset(index int) int {
	offset := 1 // Gutter.
	for _, definition := range model.schema.Columns[:min(index, len(model.schema.Columns))] {
		offset += columnWidth(definition) + 1
	}
	return offset
}

// visibleHeight returns the number of grid rows that fit on screen.
func (model Model) visibleHeight() int {
	return model.height - gridBodyStartY - chromeBottomLines
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string

	// The filter bar replaces the header so the layout does not shift.
	filterView := model.filter.View(model.theme, model.width, len(model.visible), len(model.value))
	if filterView != "" {
		sections = append(sections, filterView)
	} else {
		sections = append(sections, model.renderHeader())
	}
	sections = append(sections, model.renderColumnTitles())
	sections = append(sections, model.renderBody())

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", max(model.width, 0)))
	sections = append(sections, separator)
	sections = append(sections, model.renderHelp())

	output := strings.Join(sections, "\n")

	if model.confirm != nil {
		output = tui.SpliceOverlay(output, model.confirm.Render(model.theme),
			model.confirm.AnchorX, model.confirm.AnchorY)
	}
	return output
}

// renderHeader renders the top line: title on the left, counts on the
// right, separator fill between.
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	statsStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	editingStyle := lipgloss.NewStyle().Foreground(model.theme.EditingForeground).Bold(true)

	sep := separatorStyle.Render("─")
	left := sep + sep + sep + " " + titleStyle.Render(model.title) + " "
	leftWidth := 3 + 1 + lipgloss.Width(model.title) + 1

	statsText := fmt.Sprintf("%d records", len(model.value))
	right := statsStyle.Render(statsText)
	rightWidth := lipgloss.Width(statsText)

	editing := len(model.rows.Editing())
	if editing > 0 {
		editingText := fmt.Sprintf("%d editing", editing)
		right += "  " + editingStyle.Render(editingText)
		rightWidth += 2 + lipgloss.Width(editingText)
	}
	right = " " + right + " " + sep
	rightWidth += 3

	fillCount := max(model.width-leftWidth-rightWidth, 1)
	return left + strings.Repeat(sep, fillCount) + right
}

// renderColumnTitles renders the column header line.
func (model Model) renderColumnTitles() string {
	style := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	titles := make([]string, len(model.schema.Columns))
	for index, definition := range model.schema.Columns {
		titles[index] = style.Render(tui.FitWidth(definition.Title, columnWidth(definition)))
	}
	return tui.FitWidth(" "+strings.Join(titles, " "), model.width)
}

// renderBody renders the visible rows with the scrollbar in the last
// column.
func (model Model) renderBody() string {
	height := max(model.visibleHeight(), 0)
	if height == 0 {
		return ""
	}
	contentWidth := max(model.width-1, 0)

	scrollbar := make([]string, height)
	if len(model.visible) > height {
		scrollbar = strings.Split(tui.RenderScrollbar(model.theme, height,
			len(model.visible), height, model.scrollOffset), "\n")
	} else {
		for index := range scrollbar {
			scrollbar[index] = " "
		}
	}

	lines := make([]string, height)
	now := model.clock.Now()
	for line := range lines {
		index := model.scrollOffset + line
		content := ""
		switch {
		case index < len(model.visible):
			content = model.renderRow(index, now)
		case line == 0 && len(model.visible) == 0:
			content = model.renderEmpty()
		}
		lines[line] = tui.FitWidth(content, contentWidth) + scrollbar[line]
	}
	return strings.Join(lines, "\n")
}

// renderEmpty is the single line shown when no rows are visible.
func (model Model) renderEmpty() string {
	text := "No records. Press a to add one."
	if model.filter.Input != "" {
		text = "No records match the filter."
	}
	return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" " + text)
}

// renderRow renders one grid row. The cursor row gets the selection
// background; other rows glow while their heat decays.
func (model Model) renderRow(index int, now time.Time) string {
	rowKey := model.visible[index]
	item, _ := model.value.Find(rowKey)
	selected := index == model.cursorRow

	base := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if selected {
		base = base.Background(model.theme.SelectedBackground).Foreground(model.theme.SelectedForeground)
	} else if background, hot := model.heatTracker.HeatBackground(model.theme, rowKey, now); hot {
		base = base.Background(background)
	}

	cells := make([]string, len(model.schema.Columns))
	for columnIndex, definition := range model.schema.Columns {
		atCursor := selected && columnIndex == model.cursorColumn
		cells[columnIndex] = model.renderCell(item, definition, atCursor, base)
	}
	gap := base.Render(" ")
	return gap + strings.Join(cells, gap)
}

// renderCell renders one cell: the open editor, a pending value for a
// cell still editing, or the stored value.
func (model Model) renderCell(item record.Record, definition column.Column, atCursor bool, base lipgloss.Style) string {
	width := columnWidth(definition)
	style := base
	if atCursor {
		style = style.Background(model.theme.CursorBackground).Bold(true)
	}

	if definition.IsOperation() {
		return style.Foreground(model.theme.OperationForeground).Render(tui.FitWidth(operationLabel, width))
	}

	cell, _ := model.rows.Cell(item.Key, definition.Field)
	if cell != nil && cell == model.editing {
		return style.Render(tui.FitWidth(model.editor.View(), width))
	}

	if cell != nil && cell.State() == grid.Editing {
		switch {
		case cell.Pending():
			style = style.Foreground(model.theme.PendingForeground).Italic(true)
		case cell.Err() != nil:
			style = style.Foreground(model.theme.ErrorForeground).Underline(true)
		default:
			style = style.Foreground(model.theme.EditingForeground)
		}
		return style.Render(tui.FitWidth(cell.Value(), width))
	}

	stored, _ := item.Get(definition.Field)
	text := tui.FitWidth(definition.Kind.Render(stored), width)
	if positions := model.highlights[item.Key][definition.Field]; len(positions) > 0 {
		highlight := style.Background(model.theme.SearchHighlightBackground).Bold(true)
		return tui.HighlightMatches(text, positions, style, highlight)
	}
	return style.Render(text)
}

// renderHelp renders the bottom line: the status message while one is
// showing, otherwise key hints for the focus region and the position.
func (model Model) renderHelp() string {
	if model.status.text != "" {
		color := model.theme.AccentColor
		switch {
		case model.status.level >= slog.LevelError:
			color = model.theme.ErrorForeground
		case model.status.level >= slog.LevelWarn:
			color = model.theme.EditingForeground
		}
		style := lipgloss.NewStyle().Foreground(color).Bold(true)
		return style.Render(tui.FitWidth(" "+model.status.text, model.width))
	}

	var help string
	switch model.focusRegion {
	case FocusEditor:
		help = " [EDIT] Enter save  Tab/S-Tab save and move  ↑↓ save and move  Esc save"
	case FocusFilter:
		help = " [FILTER] type to filter  Enter keep  Esc clear"
	case FocusConfirm:
		help = " [CONFIRM] ↑↓ choose  Enter select  y delete  n cancel"
	default:
		help = " [GRID] q quit  ↑↓←→ move  Enter edit  a add  d delete  / filter"
	}
	if len(model.visible) > 0 {
		help += fmt.Sprintf("  %d/%d", model.cursorRow+1, len(model.visible))
	}

	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	return style.Render(tui.FitWidth(help, model.width))
}
