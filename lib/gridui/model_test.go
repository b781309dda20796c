// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/recordgrid/lib/clock"
	"github.com/bureau-foundation/recordgrid/lib/grid"
	"github.com/bureau-foundation/recordgrid/lib/record"
	"github.com/bureau-foundation/recordgrid/lib/testutil"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// harness is a model wired to a real store owner.
type harness struct {
	t       *testing.T
	model   Model
	store   *record.Store
	updates <-chan record.Change
	clock   *clock.FakeClock
}

func newHarness(t *testing.T, initial record.Sequence, options ...Option) *harness {
	t.Helper()
	store := record.NewStore(initial, nil, nil)
	updates := store.Subscribe()
	fake := clock.Fake(testEpoch)
	options = append([]Option{WithUpdates(updates), WithClock(fake)}, options...)
	model := NewModel(initial, store.Replace, options...)
	harness := &harness{t: t, model: model, store: store, updates: updates, clock: fake}
	harness.send(tea.WindowSizeMsg{Width: 100, Height: 20})
	return harness
}

// send delivers one message and returns the command Update produced.
func (harness *harness) send(message tea.Msg) tea.Cmd {
	harness.t.Helper()
	updated, cmd := harness.model.Update(message)
	harness.model = updated.(Model)
	return cmd
}

// press sends keys in order and returns the command of the last one.
func (harness *harness) press(keys ...string) tea.Cmd {
	harness.t.Helper()
	var cmd tea.Cmd
	for _, name := range keys {
		cmd = harness.send(keyMsg(name))
	}
	return cmd
}

// supply waits for the store to publish and hands the new sequence to
// the model, as the listen command would.
func (harness *harness) supply() {
	harness.t.Helper()
	change := testutil.RequireReceive(harness.t, harness.updates, 5*time.Second, "waiting for owner update")
	harness.send(changeMsg{change: change})
}

// commit runs a commit command and applies its outcome.
func (harness *harness) commit(cmd tea.Cmd) {
	harness.t.Helper()
	harness.send(commitResult(harness.t, cmd))
}

func commitResult(t *testing.T, cmd tea.Cmd) commitResultMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a commit command, got nil")
	}
	result, ok := cmd().(commitResultMsg)
	if !ok {
		t.Fatalf("command did not produce a commit result")
	}
	return result
}

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func annSequence() record.Sequence {
	return record.Sequence{{Key: "0", Name: "Ann", Age: "30", Address: "X"}}
}

func twoRows() record.Sequence {
	return record.Sequence{
		{Key: "a", Name: "Ann", Age: "30", Address: "Main St"},
		{Key: "b", Name: "Bob", Age: "40", Address: "Oak Ave"},
	}
}

func (harness *harness) cellState(key record.Key, field record.Field) grid.State {
	harness.t.Helper()
	cell, ok := harness.model.rows.Cell(key, field)
	if !ok {
		harness.t.Fatalf("no cell at (%s, %s)", key, field)
	}
	return cell.State()
}

func TestModelAddEditDeleteScenario(t *testing.T) {
	harness := newHarness(t, annSequence())

	harness.press("a")
	harness.supply()
	value := harness.model.Value()
	if len(value) != 2 {
		t.Fatalf("after add: %d records, want 2", len(value))
	}
	added := value[1]
	if added.Key == "0" || added.Name != "" || added.Age != "" || added.Address != "" {
		t.Fatalf("added record = %+v", added)
	}
	if key, _ := harness.model.cursorKey(); key != added.Key {
		t.Fatalf("cursor on %q, want the added row %q", key, added.Key)
	}

	harness.press("enter")
	if harness.model.FocusRegion() != FocusEditor {
		t.Fatalf("focus = %v, want editor", harness.model.FocusRegion())
	}
	if !harness.model.editor.Focused() {
		t.Fatal("text editor was not focused")
	}
	harness.press("Bob")
	cmd := harness.press("enter")
	if harness.model.FocusRegion() != FocusGrid {
		t.Errorf("focus after submit = %v, want grid", harness.model.FocusRegion())
	}
	harness.commit(cmd)
	harness.supply()

	value = harness.model.Value()
	if value[1].Key != added.Key || value[1].Name != "Bob" {
		t.Errorf("edited record = %+v", value[1])
	}
	if value[0] != annSequence()[0] {
		t.Errorf("record 0 changed: %+v", value[0])
	}
	if state := harness.cellState(added.Key, record.FieldName); state != grid.Viewing {
		t.Errorf("name cell state = %v, want viewing", state)
	}

	harness.press("up", "d")
	if harness.model.FocusRegion() != FocusConfirm {
		t.Fatalf("focus = %v, want confirm", harness.model.FocusRegion())
	}
	harness.press("y")
	harness.supply()

	value = harness.model.Value()
	if len(value) != 1 || value[0].Key != added.Key || value[0].Name != "Bob" {
		t.Errorf("after delete: %+v", value)
	}
}

func TestModelNumericEditorFocusesItself(t *testing.T) {
	harness := newHarness(t, annSequence())

	harness.press("right")
	cmd := harness.press("enter")
	if harness.model.FocusRegion() != FocusEditor {
		t.Fatalf("focus = %v, want editor", harness.model.FocusRegion())
	}
	if cmd != nil {
		t.Error("numeric activation requested focus from the model")
	}
	if !harness.model.editor.Focused() {
		t.Error("numeric editor is not focused")
	}
	if harness.model.editor.Value() != "30" {
		t.Errorf("editor seeded with %q, want 30", harness.model.editor.Value())
	}
}

func TestModelValidationFailureKeepsEditing(t *testing.T) {
	harness := newHarness(t, annSequence())

	harness.press("right", "enter", "x")
	harness.commit(harness.press("enter"))

	if state := harness.cellState("0", record.FieldAge); state != grid.Editing {
		t.Fatalf("age cell state = %v, want editing", state)
	}
	testutil.RequireNoReceive(t, harness.updates, "failed validation reached the owner")
	if !strings.Contains(harness.model.status.text, "whole number") {
		t.Errorf("status = %q, want the age message", harness.model.status.text)
	}
	if got := harness.model.Value()[0].Age; got != "30" {
		t.Errorf("stored age = %q, want 30", got)
	}

	// Reopening shows the pending input, not the stored value.
	harness.press("enter")
	if harness.model.editor.Value() != "30x" {
		t.Fatalf("reopened editor = %q, want 30x", harness.model.editor.Value())
	}
	harness.press("backspace", "1")
	harness.commit(harness.press("enter"))
	harness.supply()

	if got := harness.model.Value()[0].Age; got != "301" {
		t.Errorf("stored age = %q, want 301", got)
	}
	if state := harness.cellState("0", record.FieldAge); state != grid.Viewing {
		t.Errorf("age cell state = %v, want viewing", state)
	}
}

func TestModelBlurKeysCommit(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantRow    int
		wantColumn int
	}{
		{"tab moves right", "tab", 0, 1},
		{"shift+tab moves left", "shift+tab", 0, 0},
		{"down moves down", "down", 1, 0},
		{"esc stays", "esc", 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			harness := newHarness(t, twoRows())
			harness.press("enter", "!")
			cmd := harness.press(test.key)

			if harness.model.FocusRegion() != FocusGrid {
				t.Fatalf("focus = %v, want grid", harness.model.FocusRegion())
			}
			if harness.model.cursorRow != test.wantRow || harness.model.cursorColumn != test.wantColumn {
				t.Errorf("cursor = (%d, %d), want (%d, %d)",
					harness.model.cursorRow, harness.model.cursorColumn, test.wantRow, test.wantColumn)
			}

			result := commitResult(t, cmd)
			if result.outcome.Trigger != grid.TriggerBlur {
				t.Errorf("trigger = %v, want blur", result.outcome.Trigger)
			}
			harness.send(result)
			harness.supply()
			if got := harness.model.Value()[0].Name; got != "Ann!" {
				t.Errorf("name = %q, want Ann!", got)
			}
		})
	}
}

func TestModelConcurrentEditsInDifferentRows(t *testing.T) {
	for _, order := range []string{"b first", "a first"} {
		t.Run(order, func(t *testing.T) {
			harness := newHarness(t, twoRows())

			// Row a, name: start a commit but hold its outcome.
			harness.press("enter", "ie")
			commitA := harness.press("enter")

			// Row b, age.
			harness.press("down", "right", "enter", "backspace", "backspace", "41")
			commitB := harness.press("enter")

			first, second := commitB, commitA
			if order == "a first" {
				first, second = commitA, commitB
			}
			harness.commit(first)
			harness.supply()
			harness.commit(second)
			harness.supply()

			value := harness.model.Value()
			if value[0].Name != "Annie" || value[0].Age != "30" {
				t.Errorf("row a = %+v", value[0])
			}
			if value[1].Age != "41" || value[1].Name != "Bob" {
				t.Errorf("row b = %+v", value[1])
			}
		})
	}
}

func TestModelCommitsBeforeOwnerUpdate(t *testing.T) {
	for _, order := range []string{"b first", "a first"} {
		t.Run(order, func(t *testing.T) {
			harness := newHarness(t, twoRows())

			harness.press("enter", "ie")
			commitA := harness.press("enter")
			harness.press("down", "right", "enter", "backspace", "backspace", "41")
			commitB := harness.press("enter")

			first, second := commitB, commitA
			if order == "a first" {
				first, second = commitA, commitB
			}
			// Both outcomes land before the owner answers either save.
			harness.commit(first)
			harness.commit(second)
			harness.supply()
			testutil.RequireNoReceive(t, harness.updates, "unexpected extra owner update")

			for name, value := range map[string]record.Sequence{
				"grid":  harness.model.Value(),
				"owner": harness.store.Value(),
			} {
				if value[0].Name != "Annie" || value[0].Age != "30" {
					t.Errorf("%s row a = %+v", name, value[0])
				}
				if value[1].Name != "Bob" || value[1].Age != "41" {
					t.Errorf("%s row b = %+v", name, value[1])
				}
			}
			if len(harness.model.unconfirmed) != 0 {
				t.Errorf("%d deliveries still unconfirmed", len(harness.model.unconfirmed))
			}
		})
	}
}

func TestModelQuickAddsBeforeOwnerUpdate(t *testing.T) {
	harness := newHarness(t, twoRows())

	harness.press("a", "a")
	if got := len(harness.model.Value()); got != 4 {
		t.Fatalf("grid shows %d records before the owner answered, want 4", got)
	}
	harness.supply()

	value := harness.store.Value()
	if len(value) != 4 {
		t.Fatalf("owner holds %d records, want 4", len(value))
	}
	if value[2].Key == value[3].Key {
		t.Errorf("both added rows got key %q", value[2].Key)
	}
	if key, _ := harness.model.cursorKey(); key != value[3].Key {
		t.Errorf("cursor on %q, want the last added row %q", key, value[3].Key)
	}
}

func TestModelDeleteThenAddBeforeOwnerUpdate(t *testing.T) {
	harness := newHarness(t, twoRows())

	harness.press("d", "y", "a")
	harness.supply()

	for name, value := range map[string]record.Sequence{
		"grid":  harness.model.Value(),
		"owner": harness.store.Value(),
	} {
		keys := value.Keys()
		if len(keys) != 2 || keys[0] != "b" || keys[1] == "a" {
			t.Errorf("%s keys = %v, want [b <added>]", name, keys)
		}
	}
}

func TestModelOlderEchoKeepsLaterValue(t *testing.T) {
	harness := newHarness(t, annSequence())

	harness.press("a")
	firstEcho := testutil.RequireReceive(t, harness.updates, 5*time.Second, "waiting for first add")
	harness.press("a")
	secondEcho := testutil.RequireReceive(t, harness.updates, 5*time.Second, "waiting for second add")

	harness.send(changeMsg{change: firstEcho})
	if got := len(harness.model.Value()); got != 3 {
		t.Fatalf("older echo rolled the grid back to %d records", got)
	}
	if len(harness.model.unconfirmed) != 1 {
		t.Errorf("unconfirmed = %d, want 1", len(harness.model.unconfirmed))
	}

	harness.send(changeMsg{change: secondEcho})
	if got := len(harness.model.Value()); got != 3 || len(harness.model.unconfirmed) != 0 {
		t.Errorf("after second echo: %d records, %d unconfirmed", got, len(harness.model.unconfirmed))
	}
}

func TestModelExternalChangeReplacesUnconfirmed(t *testing.T) {
	harness := newHarness(t, twoRows())

	harness.press("a")
	external := record.Sequence{{Key: "z", Name: "Zed"}}
	harness.store.Load(external)
	harness.supply()

	if keys := harness.model.Value().Keys(); len(keys) != 1 || keys[0] != "z" {
		t.Errorf("keys = %v, want [z]", keys)
	}
	if len(harness.model.unconfirmed) != 0 {
		t.Errorf("unconfirmed = %d after an external change", len(harness.model.unconfirmed))
	}
}

func TestModelSecondCommitWhilePendingIsRefused(t *testing.T) {
	harness := newHarness(t, annSequence())

	harness.press("enter", "e")
	first := harness.press("enter")

	// Reopen and submit again while the first attempt is in flight.
	harness.press("enter", "!")
	if second := harness.press("enter"); second != nil {
		t.Fatal("a second commit started while the first was pending")
	}

	harness.commit(first)
	harness.supply()
	if got := harness.model.Value()[0].Name; got != "Anne!" {
		t.Errorf("name = %q, want Anne!", got)
	}
}

func TestModelDeleteConfirmation(t *testing.T) {
	t.Run("decline", func(t *testing.T) {
		harness := newHarness(t, twoRows())
		harness.press("d", "n")
		if harness.model.FocusRegion() != FocusGrid {
			t.Errorf("focus = %v, want grid", harness.model.FocusRegion())
		}
		testutil.RequireNoReceive(t, harness.updates, "declined delete reached the owner")
	})

	t.Run("enter on cancel", func(t *testing.T) {
		harness := newHarness(t, twoRows())
		harness.press("d", "enter")
		testutil.RequireNoReceive(t, harness.updates, "cancelled delete reached the owner")
	})

	t.Run("operation column", func(t *testing.T) {
		harness := newHarness(t, twoRows())
		harness.press("down", "right", "right", "right", "enter")
		if harness.model.FocusRegion() != FocusConfirm {
			t.Fatalf("focus = %v, want confirm", harness.model.FocusRegion())
		}
		if !strings.Contains(ansi.Strip(harness.model.View()), "Delete Bob?") {
			t.Error("confirmation menu not rendered")
		}
		harness.press("up", "enter")
		harness.supply()
		value := harness.model.Value()
		if len(value) != 1 || value[0].Key != "a" {
			t.Errorf("after delete: %v", value.Keys())
		}
	})
}

func TestModelCommitOnDeletedRowIsDropped(t *testing.T) {
	harness := newHarness(t, twoRows())

	harness.press("enter", "!")
	cmd := harness.press("enter")
	harness.press("d", "y")
	harness.supply()

	harness.commit(cmd)
	testutil.RequireNoReceive(t, harness.updates, "commit on a deleted row reached the owner")
	if keys := harness.model.Value().Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys = %v, want [b]", keys)
	}
}

func TestModelExternalRemovalClosesEditor(t *testing.T) {
	harness := newHarness(t, twoRows())
	harness.press("enter", "x")

	harness.store.Load(record.Sequence{twoRows()[1]})
	harness.supply()

	if harness.model.FocusRegion() != FocusGrid {
		t.Errorf("focus = %v, want grid", harness.model.FocusRegion())
	}
	if harness.model.editing != nil {
		t.Error("editor still bound to a removed cell")
	}
	if key, _ := harness.model.cursorKey(); key != "b" {
		t.Errorf("cursor on %q, want b", key)
	}
}

func TestModelFilter(t *testing.T) {
	harness := newHarness(t, twoRows())

	harness.press("/", "o", "a", "k")
	if cmd := harness.press("q"); cmd != nil {
		t.Error("q in the filter should be text, not quit")
	}
	harness.press("backspace")
	if harness.model.filter.Input != "oak" {
		t.Fatalf("filter input = %q", harness.model.filter.Input)
	}
	if len(harness.model.visible) != 1 || harness.model.visible[0] != "b" {
		t.Fatalf("visible = %v, want [b]", harness.model.visible)
	}
	if positions := harness.model.highlights["b"][record.FieldAddress]; len(positions) != 3 {
		t.Errorf("address highlights = %v", positions)
	}

	harness.press("enter")
	if harness.model.FocusRegion() != FocusGrid || harness.model.filter.Input != "oak" {
		t.Errorf("enter should keep the filter and return to the grid")
	}

	// Mutations see the full sequence, not the projection.
	harness.press("d", "y")
	harness.supply()
	if keys := harness.model.Value().Keys(); len(keys) != 1 || keys[0] != "a" {
		t.Errorf("keys = %v, want [a]", keys)
	}
	if len(harness.model.visible) != 0 {
		t.Errorf("visible = %v, want none", harness.model.visible)
	}
	if !strings.Contains(ansi.Strip(harness.model.View()), "No records match the filter.") {
		t.Error("empty filter result not rendered")
	}

	harness.press("esc")
	if len(harness.model.visible) != 1 {
		t.Errorf("clearing the filter should show every row, got %v", harness.model.visible)
	}
}

func TestModelAddClearsFilter(t *testing.T) {
	harness := newHarness(t, twoRows())
	harness.press("/", "z", "z", "z", "enter", "a")
	harness.supply()

	if harness.model.filter.Input != "" {
		t.Errorf("filter = %q, want cleared", harness.model.filter.Input)
	}
	value := harness.model.Value()
	if key, _ := harness.model.cursorKey(); key != value[len(value)-1].Key {
		t.Errorf("cursor on %q, want the added row", key)
	}
}

func TestModelWithoutOwner(t *testing.T) {
	model := NewModel(annSequence(), nil)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	updated, _ = updated.Update(keyMsg("a"))
	updated, _ = updated.Update(keyMsg("d"))
	updated, _ = updated.Update(keyMsg("y"))

	if value := updated.(Model).Value(); len(value) != 1 || value[0] != annSequence()[0] {
		t.Errorf("value changed without an owner: %+v", value)
	}
}

func TestModelHeatDecays(t *testing.T) {
	harness := newHarness(t, annSequence())
	harness.press("a")
	harness.supply()

	added := harness.model.Value()[1].Key
	if heat := harness.model.heatTracker.Heat(added, harness.clock.Now()); heat != 1.0 {
		t.Errorf("heat of added row = %v, want 1.0", heat)
	}
	if heat := harness.model.heatTracker.Heat("0", harness.clock.Now()); heat != 0 {
		t.Errorf("unchanged row is hot: %v", heat)
	}
	if !harness.model.tickRunning {
		t.Error("heat tick not started")
	}

	harness.clock.Advance(5 * time.Second)
	if cmd := harness.send(heatTickMsg{}); cmd != nil {
		t.Error("tick rescheduled after every row cooled")
	}
	if harness.model.tickRunning {
		t.Error("tickRunning still set")
	}
}

func TestModelViewShowsGrid(t *testing.T) {
	harness := newHarness(t, twoRows())
	view := ansi.Strip(harness.model.View())

	for _, want := range []string{"recordgrid", "2 records", "name", "age", "address", "operation", "Ann", "Oak Ave", "delete", "[GRID]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Split(view, "\n"); len(lines) != 20 {
		t.Errorf("view has %d lines, want 20", len(lines))
	}

	harness.press("enter")
	view = ansi.Strip(harness.model.View())
	if !strings.Contains(view, "1 editing") || !strings.Contains(view, "[EDIT]") {
		t.Error("editing indicator missing")
	}
}

func TestModelScrollsToCursor(t *testing.T) {
	var many record.Sequence
	for index := range 40 {
		many = append(many, record.Record{Key: record.Key(fmt.Sprintf("k%02d", index)), Name: "n"})
	}
	harness := newHarness(t, many)
	harness.press("G")

	if harness.model.cursorRow != 39 {
		t.Fatalf("cursor = %d, want 39", harness.model.cursorRow)
	}
	visible := harness.model.visibleHeight()
	if harness.model.scrollOffset != 40-visible {
		t.Errorf("scrollOffset = %d, want %d", harness.model.scrollOffset, 40-visible)
	}
	if !strings.Contains(harness.model.View(), "┃") {
		t.Error("scrollbar thumb not rendered")
	}

	harness.press("g")
	if harness.model.cursorRow != 0 || harness.model.scrollOffset != 0 {
		t.Errorf("after home: cursor %d offset %d", harness.model.cursorRow, harness.model.scrollOffset)
	}
}

func TestModelQuit(t *testing.T) {
	harness := newHarness(t, annSequence())
	cmd := harness.press("q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}

	// In the editor q is text; ctrl+c still quits.
	harness.press("enter", "q")
	if harness.model.FocusRegion() != FocusEditor || harness.model.editor.Value() != "Annq" {
		t.Errorf("q in the editor: focus %v, value %q", harness.model.FocusRegion(), harness.model.editor.Value())
	}
	cmd = harness.press("ctrl+c")
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit from the editor")
	}
}

func TestModelCustomValidator(t *testing.T) {
	rejectAll := grid.ValidatorFunc(func(_ context.Context, key record.Key, values grid.Values) (grid.Values, error) {
		fields := make(map[record.Field]string)
		for field := range values {
			fields[field] = "rejected"
		}
		return nil, &grid.ValidationError{Key: key, Fields: fields}
	})
	harness := newHarness(t, annSequence(), WithValidator(rejectAll))

	harness.press("enter", "!")
	harness.commit(harness.press("enter"))

	if harness.model.status.text != "rejected" {
		t.Errorf("status = %q, want rejected", harness.model.status.text)
	}
	if !strings.Contains(ansi.Strip(harness.model.View()), "rejected") {
		t.Error("validation message not shown in the status bar")
	}
	testutil.RequireNoReceive(t, harness.updates, "rejected commit reached the owner")
}
