// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gridui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/recordgrid/lib/clock"
	"github.com/bureau-foundation/recordgrid/lib/column"
	"github.com/bureau-foundation/recordgrid/lib/grid"
	"github.com/bureau-foundation/recordgrid/lib/record"
	"github.com/bureau-foundation/recordgrid/lib/tui"
)

// FocusRegion identifies where keyboard input goes.
type FocusRegion int

const (
	// FocusGrid means keys move the cursor and start row actions.
	FocusGrid FocusRegion = iota
	// FocusEditor means keys go to the inline editor of one cell.
	FocusEditor
	// FocusFilter means keystrokes go to the filter input.
	FocusFilter
	// FocusConfirm means the delete confirmation menu is open. All
	// input routes to it until a choice is made.
	FocusConfirm
)

// changeMsg wraps a new sequence supplied by the owner.
type changeMsg struct {
	change record.Change
}

// maxUnconfirmed bounds the delivered sequences kept while waiting for
// the owner to supply them back.
const maxUnconfirmed = 32

// sentSequences collects what the controller handed to onChange while
// one message was being handled. Model copies share it by pointer.
type sentSequences struct {
	values []record.Sequence
}

// heatTickMsg drives the change-highlight decay. While any row is hot
// a new tick is scheduled after each one.
type heatTickMsg struct{}

// Model is the bubbletea model for the record grid.
//
// The model is a controlled component: it never edits a sequence in
// place. Every mutation goes through the grid controller to onChange.
// The delivered sequence becomes the grid's current value at once, so
// a second mutation before the owner answers builds on the first; the
// owner supplying it back on the updates channel confirms it. Anything
// else the owner supplies replaces the value.
type Model struct {
	title  string
	theme  tui.Theme
	keys   KeyMap
	clock  clock.Clock
	logger *slog.Logger
	ctx    context.Context

	schema     column.Schema
	validator  grid.Validator
	generator  record.KeyGenerator
	controller *grid.Controller
	rows       *grid.Rows

	// value is the latest sequence: the last one delivered to the
	// owner, or the last one the owner supplied, whichever came later.
	value   record.Sequence
	updates <-chan record.Change

	// sent and unconfirmed track delivered sequences the owner has
	// not yet supplied back, oldest first.
	sent        *sentSequences
	unconfirmed []record.Sequence

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	focusRegion FocusRegion

	// Filter projection: the visible row keys in display order and
	// the matched rune positions per row and field.
	filter     FilterModel
	visible    []record.Key
	highlights map[record.Key]map[record.Field][]int

	// Cursor state. selectedKey keeps the cursor on the same record
	// across re-supplied sequences.
	cursorRow    int
	cursorColumn int
	scrollOffset int
	selectedKey  record.Key

	// The cell whose editor is open, if any. Other cells may also be
	// editing (a failed commit leaves them so) without an open editor.
	editing *grid.Cell
	editor  textinput.Model

	confirm *tui.DropdownOverlay

	status *statusLine

	heatTracker *tui.HeatTracker[record.Key]
	tickRunning bool
}

// Option configures a [Model].
type Option func(*Model)

// WithUpdates sets the channel on which the owner re-supplies the
// sequence after each change, usually [record.Store.Subscribe].
func WithUpdates(updates <-chan record.Change) Option {
	return func(model *Model) { model.updates = updates }
}

// WithSchema replaces the default name/age/address column layout.
func WithSchema(schema column.Schema) Option {
	return func(model *Model) { model.schema = schema }
}

// WithValidator replaces the schema validator that edit sessions use.
func WithValidator(validator grid.Validator) Option {
	return func(model *Model) { model.validator = validator }
}

// WithKeyGenerator sets the key generator for added rows.
func WithKeyGenerator(generator record.KeyGenerator) Option {
	return func(model *Model) { model.generator = generator }
}

// WithClock sets the clock for the change-highlight animation.
func WithClock(clock clock.Clock) Option {
	return func(model *Model) { model.clock = clock }
}

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(model *Model) { model.logger = logger }
}

// WithTheme sets the color theme.
func WithTheme(theme tui.Theme) Option {
	return func(model *Model) { model.theme = theme }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(model *Model) { model.keys = keys }
}

// WithTitle sets the label shown at the left of the header.
func WithTitle(title string) Option {
	return func(model *Model) { model.title = title }
}

// WithContext sets the context commit validation runs under.
func WithContext(ctx context.Context) Option {
	return func(model *Model) { model.ctx = ctx }
}

// NewModel creates a grid showing value. Mutations are handed to
// onChange; a nil onChange makes every mutation a no-op.
func NewModel(value record.Sequence, onChange grid.OnChange, options ...Option) Model {
	model := Model{
		title:       "recordgrid",
		theme:       tui.DefaultTheme,
		keys:        DefaultKeyMap,
		clock:       clock.Real(),
		logger:      slog.New(slog.DiscardHandler),
		ctx:         context.Background(),
		schema:      column.DefaultSchema(),
		status:      &statusLine{},
		sent:        &sentSequences{},
		heatTracker: tui.NewHeatTracker[record.Key](),
	}
	for _, option := range options {
		option(&model)
	}
	if model.validator == nil {
		model.validator = grid.SchemaValidator{Schema: model.schema}
	}

	controllerOptions := []grid.ControllerOption{grid.WithLogger(model.logger)}
	if model.generator != nil {
		controllerOptions = append(controllerOptions, grid.WithKeyGenerator(model.generator))
	}
	var deliver grid.OnChange
	if onChange != nil {
		sent := model.sent
		deliver = func(next record.Sequence) {
			sent.values = append(sent.values, next)
			onChange(next)
		}
	}
	model.controller = grid.NewController(deliver, controllerOptions...)
	model.rows = grid.NewRows(model.schema, model.controller, model.validator,
		statusDiagnostics{status: model.status, logger: model.logger})

	model.value = value.Clone()
	model.rows.Sync(model.value)
	model.cursorColumn = model.firstEditableColumn()
	model.applyFilter()
	return model
}

// Value returns the sequence the grid currently displays.
func (model Model) Value() record.Sequence {
	return model.value.Clone()
}

// FocusRegion returns where keyboard input currently goes.
func (model Model) FocusRegion() FocusRegion {
	return model.focusRegion
}

// Init implements tea.Model. Starts listening for owner updates.
func (model Model) Init() tea.Cmd {
	return listenForChange(model.updates)
}

// listenForChange returns a tea.Cmd that blocks until the owner
// supplies a new sequence.
func listenForChange(channel <-chan record.Change) tea.Cmd {
	if channel == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-channel
		if !ok {
			return nil
		}
		return changeMsg{change: change}
	}
}

// Update implements tea.Model. Routes keyboard events by focus region.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch model.focusRegion {
		case FocusEditor:
			return model.handleEditorKeys(message)
		case FocusFilter:
			return model.handleFilterKeys(message)
		case FocusConfirm:
			return model.handleConfirmKeys(message)
		}
		return model.handleGridKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.ensureCursorVisible()

	case changeMsg:
		return model.handleChange(message)

	case commitResultMsg:
		return model.handleCommitResult(message)

	case heatTickMsg:
		return model.handleHeatTick()

	case logRecordMsg:
		return model, model.status.set(message.Summary, message.Level, logRecordFadeDelay)

	case statusFadeMsg:
		model.status.fade(message.generation)

	default:
		// Cursor blink and other widget-internal messages.
		if model.focusRegion == FocusEditor {
			var cmd tea.Cmd
			model.editor, cmd = model.editor.Update(message)
			return model, cmd
		}
	}
	return model, nil
}

// handleGridKeys processes keystrokes while the grid has focus.
func (model Model) handleGridKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		model.moveRow(-1)

	case key.Matches(message, model.keys.Down):
		model.moveRow(1)

	case key.Matches(message, model.keys.Left):
		model.moveColumn(-1)

	case key.Matches(message, model.keys.Right):
		model.moveColumn(1)

	case key.Matches(message, model.keys.PageUp):
		model.moveRow(-max(model.visibleHeight(), 1))

	case key.Matches(message, model.keys.PageDown):
		model.moveRow(max(model.visibleHeight(), 1))

	case key.Matches(message, model.keys.Home):
		model.moveRow(-len(model.visible))

	case key.Matches(message, model.keys.End):
		model.moveRow(len(model.visible))

	case key.Matches(message, model.keys.Activate):
		return model.activateCell()

	case key.Matches(message, model.keys.Add):
		return model, model.addRow()

	case key.Matches(message, model.keys.Delete):
		model.openConfirm()

	case key.Matches(message, model.keys.FilterActivate):
		model.focusRegion = FocusFilter
		model.filter.Active = true

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		}
	}
	return model, nil
}

// activateCell starts editing the cell under the cursor. On the
// operation column it opens the delete confirmation instead.
func (model Model) activateCell() (tea.Model, tea.Cmd) {
	rowKey, ok := model.cursorKey()
	if !ok {
		return model, nil
	}
	definition := model.schema.Columns[model.cursorColumn]
	if definition.IsOperation() {
		model.openConfirm()
		return model, nil
	}

	cell, ok := model.rows.Cell(rowKey, definition.Field)
	if !ok {
		return model, nil
	}
	owning, _ := model.value.Find(rowKey)
	activation, err := cell.Activate(owning)
	if err != nil {
		return model, model.status.set(definition.Title+" is read-only", slog.LevelInfo, validationFadeDelay)
	}

	model.editing = cell
	model.editor = newEditor(definition, activation)
	model.focusRegion = FocusEditor
	if activation.RequestFocus {
		return model, model.editor.Focus()
	}
	return model, nil
}

// handleEditorKeys processes keystrokes while a cell editor is open.
// Submit and every leave binding start the same commit attempt.
func (model Model) handleEditorKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	cell := model.editing
	if cell == nil {
		model.focusRegion = FocusGrid
		return model, nil
	}

	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit
	case key.Matches(message, model.keys.Submit):
		return model.commitEditor(grid.TriggerSubmit, 0, 0)
	case key.Matches(message, model.keys.LeaveNext):
		return model.commitEditor(grid.TriggerBlur, 0, 1)
	case key.Matches(message, model.keys.LeavePrevious):
		return model.commitEditor(grid.TriggerBlur, 0, -1)
	case key.Matches(message, model.keys.LeaveUp):
		return model.commitEditor(grid.TriggerBlur, -1, 0)
	case key.Matches(message, model.keys.LeaveDown):
		return model.commitEditor(grid.TriggerBlur, 1, 0)
	case key.Matches(message, model.keys.Leave):
		return model.commitEditor(grid.TriggerBlur, 0, 0)
	}

	var cmd tea.Cmd
	model.editor, cmd = model.editor.Update(message)
	if err := cell.Input(model.editor.Value()); err != nil {
		model.logger.Debug("editor input dropped",
			"key", cell.Key(),
			"field", cell.Field(),
			"error", err,
		)
	}
	return model, cmd
}

// commitEditor closes the open editor, moves the cursor, and starts a
// commit attempt for the cell the editor belonged to. Validation runs
// in a command; its outcome comes back as a commitResultMsg.
func (model Model) commitEditor(trigger grid.Trigger, rowDelta, columnDelta int) (tea.Model, tea.Cmd) {
	cell := model.editing
	// Re-declare the field: a sibling's commit may have reset the
	// session since the last keystroke.
	if err := cell.Input(model.editor.Value()); err != nil {
		model.logger.Debug("editor input dropped",
			"key", cell.Key(),
			"field", cell.Field(),
			"error", err,
		)
	}
	model.closeEditor()
	model.moveRow(rowDelta)
	model.moveColumn(columnDelta)

	attempt, err := cell.BeginCommit(trigger)
	if err != nil {
		// The previous attempt's outcome still applies when it lands.
		model.logger.Debug("commit not started",
			"key", cell.Key(),
			"field", cell.Field(),
			"trigger", trigger,
			"error", err,
		)
		return model, nil
	}
	model.logger.Debug("commit started",
		"key", cell.Key(),
		"field", cell.Field(),
		"trigger", trigger,
	)
	return model, runCommit(model.ctx, attempt)
}

// closeEditor blurs the editor and returns focus to the grid. The
// cell keeps whatever state the commit protocol gives it.
func (model *Model) closeEditor() {
	model.editor.Blur()
	model.editing = nil
	model.focusRegion = FocusGrid
}

// handleCommitResult applies a finished commit attempt to its cell,
// against the sequence the grid displays now.
func (model Model) handleCommitResult(message commitResultMsg) (tea.Model, tea.Cmd) {
	outcome := message.outcome
	cell, ok := model.rows.Cell(outcome.Key, outcome.Field)
	if !ok {
		model.logger.Debug("commit outcome for removed row dropped",
			"key", outcome.Key,
			"field", outcome.Field,
		)
		return model, nil
	}

	if !cell.Resolve(outcome, model.value) {
		return model, model.status.fadeAfter(validationFadeDelay)
	}
	if model.editing == cell {
		model.closeEditor()
	}
	model.logger.Debug("commit applied",
		"key", outcome.Key,
		"field", outcome.Field,
		"trigger", outcome.Trigger,
	)
	return model, model.adoptSent()
}

// addRow appends a blank row through the controller and parks the
// cursor on it.
func (model *Model) addRow() tea.Cmd {
	added, delivered := model.controller.Add(model.value)
	if !delivered {
		return nil
	}
	model.selectedKey = added.Key
	model.cursorColumn = model.firstEditableColumn()
	model.filter.Clear()
	model.logger.Info("record added", "key", added.Key)
	return model.adoptSent()
}

// openConfirm opens the delete confirmation for the row under the
// cursor.
func (model *Model) openConfirm() {
	rowKey, ok := model.cursorKey()
	if !ok {
		return
	}
	owning, _ := model.value.Find(rowKey)
	label := owning.Name
	if label == "" {
		label = "row " + string(rowKey)
	}

	anchorX := model.columnOffset(model.operationColumn())
	rowY := gridBodyStartY + model.cursorRow - model.scrollOffset
	confirm := tui.ConfirmDropdown(fmt.Sprintf("Delete %s?", label), "Delete", string(rowKey), anchorX, rowY+1)
	if model.height > 0 && confirm.AnchorY+confirm.Height() > model.height-chromeBottomLines {
		confirm.AnchorY = max(rowY-confirm.Height(), 0)
	}
	model.confirm = confirm
	model.focusRegion = FocusConfirm
}

// handleConfirmKeys processes input while the delete confirmation is
// open. Declining is a no-op.
func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.confirm == nil {
		model.focusRegion = FocusGrid
		return model, nil
	}

	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.Decline):
		model.dismissConfirm()

	case key.Matches(message, model.keys.Confirm):
		return model, model.confirmDelete()

	case key.Matches(message, model.keys.Up):
		model.confirm.MoveUp()

	case key.Matches(message, model.keys.Down):
		model.confirm.MoveDown()

	case message.Type == tea.KeyEnter:
		if model.confirm.Selected().Value == "confirm" {
			return model, model.confirmDelete()
		}
		model.dismissConfirm()
	}
	return model, nil
}

func (model *Model) dismissConfirm() {
	model.confirm = nil
	model.focusRegion = FocusGrid
}

// confirmDelete deletes the confirmation's target row.
func (model *Model) confirmDelete() tea.Cmd {
	target := record.Key(model.confirm.Target)
	model.dismissConfirm()
	if !model.controller.Delete(model.value, target) {
		return nil
	}
	model.logger.Info("record deleted", "key", target)
	return model.adoptSent()
}

// handleFilterKeys processes keystrokes when the filter input has
// focus.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		// Esc: clear the query if there is one, otherwise leave.
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		} else {
			model.filter.Active = false
			model.focusRegion = FocusGrid
		}

	case message.Type == tea.KeyEnter:
		model.filter.Active = false
		model.focusRegion = FocusGrid

	case message.Type == tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.applyFilter()
		}

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		if message.Type == tea.KeySpace {
			model.filter.HandleRune(' ')
		}
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
		model.applyFilter()
	}
	return model, nil
}

// handleChange takes a sequence supplied by the owner. A sequence the
// grid delivered itself confirms it and every older delivery; the grid
// already shows it or something later. Anything else replaces the
// value.
func (model Model) handleChange(message changeMsg) (tea.Model, tea.Cmd) {
	listen := listenForChange(model.updates)
	incoming := message.change.Value

	confirmed := slices.IndexFunc(model.unconfirmed, func(sent record.Sequence) bool {
		return slices.Equal(sent, incoming)
	})
	if confirmed >= 0 {
		model.unconfirmed = model.unconfirmed[confirmed+1:]
		return model, listen
	}

	model.unconfirmed = nil
	return model, tea.Batch(listen, model.showSequence(incoming, message.change.Origin))
}

// adoptSent makes the latest sequence delivered while handling the
// current message the grid's value. With an updates channel the
// deliveries wait in unconfirmed until the owner supplies them back.
func (model *Model) adoptSent() tea.Cmd {
	sent := model.sent.values
	if len(sent) == 0 {
		return nil
	}
	model.sent.values = nil

	if model.updates != nil {
		model.unconfirmed = append(model.unconfirmed, sent...)
		if excess := len(model.unconfirmed) - maxUnconfirmed; excess > 0 {
			model.unconfirmed = slices.Delete(model.unconfirmed, 0, excess)
		}
	}
	return model.showSequence(sent[len(sent)-1].Clone(), record.OriginGrid)
}

// showSequence makes next the displayed value: rows are mounted and
// unmounted to match, changed rows glow, and the filter projection and
// cursor are rebuilt.
func (model *Model) showSequence(next record.Sequence, origin record.Origin) tea.Cmd {
	previous := model.value
	model.value = next
	mounted, unmounted := model.rows.Sync(model.value)
	if len(mounted) > 0 || len(unmounted) > 0 {
		model.logger.Debug("rows synced",
			"origin", origin,
			"mounted", len(mounted),
			"unmounted", len(unmounted),
		)
	}

	if model.editing != nil && model.editing.State() != grid.Editing {
		model.closeEditor()
	}
	if model.confirm != nil && !model.value.Contains(record.Key(model.confirm.Target)) {
		model.dismissConfirm()
	}

	now := model.clock.Now()
	for _, item := range model.value {
		if old, found := previous.Find(item.Key); !found || old != item {
			model.heatTracker.Ignite(item.Key, tui.HeatPut, now)
		}
	}

	model.applyFilter()

	if !model.tickRunning && model.heatTracker.HasHot(now) {
		model.tickRunning = true
		return scheduleHeatTick()
	}
	return nil
}

// handleHeatTick keeps the animation running while any row is hot.
func (model Model) handleHeatTick() (tea.Model, tea.Cmd) {
	if model.heatTracker.HasHot(model.clock.Now()) {
		return model, scheduleHeatTick()
	}
	model.tickRunning = false
	return model, nil
}

func scheduleHeatTick() tea.Cmd {
	return tea.Tick(tui.HeatTickInterval, func(time.Time) tea.Msg {
		return heatTickMsg{}
	})
}

// applyFilter rebuilds the visible projection from the current value.
func (model *Model) applyFilter() {
	result := model.filter.Apply(model.value)
	model.visible = result.Keys
	model.highlights = result.Highlights
	model.restoreSelection()
}

// restoreSelection puts the cursor back on selectedKey if it is still
// visible, otherwise clamps the cursor into the visible rows.
func (model *Model) restoreSelection() {
	if len(model.visible) == 0 {
		model.cursorRow = 0
		model.scrollOffset = 0
		return
	}
	if index := slices.Index(model.visible, model.selectedKey); model.selectedKey != "" && index >= 0 {
		model.cursorRow = index
	} else {
		model.cursorRow = min(max(model.cursorRow, 0), len(model.visible)-1)
		model.selectedKey = model.visible[model.cursorRow]
	}
	model.ensureCursorVisible()
}

// cursorKey returns the key of the row under the cursor.
func (model Model) cursorKey() (record.Key, bool) {
	if model.cursorRow < 0 || model.cursorRow >= len(model.visible) {
		return "", false
	}
	return model.visible[model.cursorRow], true
}

func (model *Model) moveRow(delta int) {
	if len(model.visible) == 0 || delta == 0 {
		return
	}
	model.cursorRow = min(max(model.cursorRow+delta, 0), len(model.visible)-1)
	model.selectedKey = model.visible[model.cursorRow]
	model.ensureCursorVisible()
}

func (model *Model) moveColumn(delta int) {
	model.cursorColumn = min(max(model.cursorColumn+delta, 0), len(model.schema.Columns)-1)
}

// firstEditableColumn returns the index of the first editable column,
// or 0 when none is.
func (model Model) firstEditableColumn() int {
	for index, definition := range model.schema.Columns {
		if definition.Editable && !definition.IsOperation() {
			return index
		}
	}
	return 0
}

// operationColumn returns the index of the operation column, or the
// cursor column when the schema has none.
func (model Model) operationColumn() int {
	for index, definition := range model.schema.Columns {
		if definition.IsOperation() {
			return index
		}
	}
	return model.cursorColumn
}

// ensureCursorVisible adjusts scrollOffset so the cursor row is within
// the visible window.
func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}
	maxOffset := max(len(model.visible)-visible, 0)
	if model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}
	if model.cursorRow < model.scrollOffset {
		model.scrollOffset = model.cursorRow
	}
	if model.cursorRow >= model.scrollOffset+visible {
		model.scrollOffset = model.cursorRow - visible + 1
	}
}
