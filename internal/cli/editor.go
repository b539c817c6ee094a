package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockpad/pkg/block"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/io"
	"github.com/matzehuels/blockpad/pkg/toolbox"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// editorMode selects which pane has key focus.
type editorMode int

const (
	modeBrowse editorMode = iota
	modePalette
	modeField
	modeConfirmQuit
)

// editorRow is one visible line of the workspace tree: a block, its nesting
// depth, and the input slot it occupies on its parent (empty for next-chain
// and top-level blocks).
type editorRow struct {
	block *block.Block
	depth int
	slot  string
}

// paletteEntry is one selectable type in the add-block palette.
type paletteEntry struct {
	typeID   string
	category string
}

// =============================================================================
// EditorModel - Interactive block editing
// =============================================================================

// EditorModel is the bubbletea model for the block editor. The workspace is
// mutated in place; Saved reports whether the final state was written back
// to Path when the program exits.
type EditorModel struct {
	Path  string
	Saved bool

	ws   *block.Workspace
	tb   *toolbox.Toolbox
	mode editorMode

	rows   []editorRow
	cursor int
	offset int
	height int

	palette       []paletteEntry
	paletteCursor int
	paletteOffset int

	fields      []*block.Field
	fieldCursor int
	fieldBuf    string

	marked *block.Block
	dirty  bool
	status string
}

// NewEditorModel creates an editor over the given workspace.
func NewEditorModel(ws *block.Workspace, tb *toolbox.Toolbox, path string) EditorModel {
	m := EditorModel{
		Path:    path,
		ws:      ws,
		tb:      tb,
		palette: buildPalette(tb),
		height:  20,
	}
	m.refresh()
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

// refresh recomputes the visible rows after a workspace mutation and clamps
// the cursor into range.
func (m *EditorModel) refresh() {
	m.rows = flattenRows(m.ws)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// current returns the block under the cursor, or nil for an empty workspace.
func (m EditorModel) current() *block.Block {
	if m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].block
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modePalette:
			return m.updatePalette(msg)
		case modeField:
			return m.updateField(msg)
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// =============================================================================
// Browse Mode
// =============================================================================

func (m EditorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.dirty {
			m.mode = modeConfirmQuit
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}

	case "a":
		m.mode = modePalette
		m.paletteCursor = 0
		m.paletteOffset = 0

	case "d":
		b := m.current()
		if b == nil {
			break
		}
		if !b.Deletable() {
			m.status = StyleWarning.Render(b.Type() + " is not deletable")
			break
		}
		b.Dispose(true)
		m.dirty = true
		if m.marked == b {
			m.marked = nil
		}
		m.refresh()

	case "e", "enter":
		b := m.current()
		if b == nil {
			break
		}
		if !b.Editable() {
			m.status = StyleWarning.Render(b.Type() + " is not editable")
			break
		}
		m.fields = blockFields(b)
		if len(m.fields) == 0 {
			m.status = StyleDim.Render(b.Type() + " has no fields")
			break
		}
		m.mode = modeField
		m.fieldCursor = 0
		m.fieldBuf = m.fields[0].Value

	case "c":
		if b := m.current(); b != nil {
			b.SetCollapsed(!b.Collapsed())
			m.dirty = true
		}

	case "x":
		if b := m.current(); b != nil {
			b.SetDisabled(!b.Disabled())
			m.dirty = true
		}

	case "m":
		b := m.current()
		if b == nil {
			break
		}
		if m.marked == b {
			m.marked = nil
		} else {
			m.marked = b
		}

	case "p":
		target := m.current()
		if m.marked == nil || target == nil {
			m.status = StyleDim.Render("mark a block with m first")
			break
		}
		if m.marked == target {
			m.status = StyleWarning.Render("cannot plug a block into itself")
			break
		}
		if err := plugInto(target, m.marked); err != nil {
			m.status = StyleWarning.Render(err.Error())
			break
		}
		m.marked = nil
		m.dirty = true
		m.refresh()

	case "u":
		b := m.current()
		if b == nil {
			break
		}
		if b.IsTopLevel() {
			m.status = StyleDim.Render(b.Type() + " is already top-level")
			break
		}
		b.Unplug(true)
		m.dirty = true
		m.refresh()

	case "s":
		if err := m.save(); err != nil {
			m.status = listErrorStyle.Render("save failed: " + err.Error())
			break
		}
		m.dirty = false
		m.Saved = true
		m.status = StyleSuccess.Render("Saved " + m.Path)
	}

	return m, nil
}

// =============================================================================
// Palette Mode
// =============================================================================

func (m EditorModel) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.mode = modeBrowse

	case "up", "k":
		if m.paletteCursor > 0 {
			m.paletteCursor--
			if m.paletteCursor < m.paletteOffset {
				m.paletteOffset = m.paletteCursor
			}
		}

	case "down", "j":
		if m.paletteCursor < len(m.palette)-1 {
			m.paletteCursor++
			if m.paletteCursor >= m.paletteOffset+m.height {
				m.paletteOffset = m.paletteCursor - m.height + 1
			}
		}

	case "enter":
		if len(m.palette) == 0 {
			m.mode = modeBrowse
			break
		}
		entry := m.palette[m.paletteCursor]
		b, err := m.ws.NewBlock(entry.typeID)
		if err != nil {
			m.status = listErrorStyle.Render(err.Error())
			m.mode = modeBrowse
			break
		}
		m.dirty = true
		m.mode = modeBrowse
		m.refresh()
		for i, r := range m.rows {
			if r.block == b {
				m.cursor = i
				break
			}
		}
		m.status = StyleSuccess.Render("Added " + entry.typeID)
	}

	return m, nil
}

// =============================================================================
// Field Mode
// =============================================================================

func (m EditorModel) updateField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	commit := func() {
		f := m.fields[m.fieldCursor]
		if f.Value != m.fieldBuf {
			if b := m.current(); b != nil {
				if err := b.SetFieldValue(f.Name, m.fieldBuf); err == nil {
					m.dirty = true
				}
			}
		}
	}

	switch msg.String() {
	case "esc":
		m.mode = modeBrowse

	case "enter":
		commit()
		m.mode = modeBrowse

	case "tab", "down":
		commit()
		m.fieldCursor = (m.fieldCursor + 1) % len(m.fields)
		m.fieldBuf = m.fields[m.fieldCursor].Value

	case "shift+tab", "up":
		commit()
		m.fieldCursor = (m.fieldCursor - 1 + len(m.fields)) % len(m.fields)
		m.fieldBuf = m.fields[m.fieldCursor].Value

	case "backspace":
		if len(m.fieldBuf) > 0 {
			runes := []rune(m.fieldBuf)
			m.fieldBuf = string(runes[:len(runes)-1])
		}

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.fieldBuf += msg.String()
		}
	}

	return m, nil
}

// =============================================================================
// Confirm Quit Mode
// =============================================================================

func (m EditorModel) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "q":
		return m, tea.Quit

	case "s":
		if err := m.save(); err != nil {
			m.status = listErrorStyle.Render("save failed: " + err.Error())
			m.mode = modeBrowse
			return m, nil
		}
		m.Saved = true
		return m, tea.Quit

	case "n", "esc":
		m.mode = modeBrowse
	}

	return m, nil
}

// save encodes the workspace and writes it back to Path.
func (m EditorModel) save() error {
	doc, err := document.Encode(m.ws)
	if err != nil {
		return err
	}
	return io.ExportFile(doc, m.Path)
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	switch m.mode {
	case modePalette:
		return m.viewPalette()
	default:
		return m.viewTree()
	}
}

func (m EditorModel) viewTree() string {
	var b strings.Builder

	title := "Blockpad - " + m.Path
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  a add  d delete  e edit  m mark  p plug  u unplug  c collapse  x disable  s save  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty - press a to add a block)"))
		b.WriteString("\n")
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.mode == modeField:
		b.WriteString(m.renderFieldEditor())
	case m.mode == modeConfirmQuit:
		b.WriteString(StyleWarning.Render("Unsaved changes - y discard, s save and quit, n cancel"))
	case m.status != "":
		b.WriteString(m.status)
	case m.marked != nil:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("marked %s - move to a target and press p", m.marked.Type())))
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("[%d blocks]", len(m.rows))))
	}
	b.WriteString("\n")

	return b.String()
}

func (m EditorModel) renderRow(i int) string {
	r := m.rows[i]

	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}

	var line strings.Builder
	line.WriteString(cursor)
	line.WriteString(strings.Repeat("  ", r.depth))
	if r.slot != "" {
		line.WriteString(listDimStyle.Render(r.slot + " "))
	}

	name := r.block.Type()
	if r.block == m.marked {
		name = "◆ " + name
	}
	switch {
	case i == m.cursor:
		line.WriteString(listSelectedStyle.Render(name))
	case r.block.Disabled():
		line.WriteString(listDimStyle.Render(name))
	default:
		line.WriteString(listNormalStyle.Render(name))
	}

	if summary := fieldSummary(r.block); summary != "" {
		line.WriteString(" ")
		line.WriteString(StyleValue.Render(summary))
	}
	if r.block.Collapsed() {
		line.WriteString(listDimStyle.Render(" [collapsed]"))
	}
	if r.block.Disabled() {
		line.WriteString(listDimStyle.Render(" [disabled]"))
	}

	return line.String()
}

func (m EditorModel) renderFieldEditor() string {
	var b strings.Builder
	b.WriteString(listDimStyle.Render("tab next field  enter apply  esc cancel"))
	b.WriteString("\n")
	for i, f := range m.fields {
		value := f.Value
		marker := "  "
		if i == m.fieldCursor {
			value = m.fieldBuf + "▌"
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%s = %s", marker, f.Name, value)
		if i == m.fieldCursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditorModel) viewPalette() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Add Block"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ add  esc cancel"))
	b.WriteString("\n\n")

	end := m.paletteOffset + m.height
	if end > len(m.palette) {
		end = len(m.palette)
	}
	lastCategory := ""
	if m.paletteOffset > 0 {
		lastCategory = m.palette[m.paletteOffset-1].category
	}
	for i := m.paletteOffset; i < end; i++ {
		entry := m.palette[i]
		if entry.category != lastCategory {
			b.WriteString(StyleHighlight.Render("  " + entry.category))
			b.WriteString("\n")
			lastCategory = entry.category
		}

		cursor := "    "
		if i == m.paletteCursor {
			cursor = "  ▸ "
		}
		if i == m.paletteCursor {
			b.WriteString(listSelectedStyle.Render(cursor + entry.typeID))
		} else {
			b.WriteString(listNormalStyle.Render(cursor + entry.typeID))
		}
		if def, ok := m.tb.Definition(entry.typeID); ok && def.Tooltip != "" {
			b.WriteString("  " + listDimStyle.Render(def.Tooltip))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.paletteCursor+1, len(m.palette))))
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// flattenRows turns the workspace forest into display order: each top-level
// stack in workspace order, input children indented beneath their parent,
// next-chain blocks at the same depth.
func flattenRows(ws *block.Workspace) []editorRow {
	var rows []editorRow

	var walk func(b *block.Block, depth int, slot string)
	walk = func(b *block.Block, depth int, slot string) {
		rows = append(rows, editorRow{block: b, depth: depth, slot: slot})
		for _, in := range b.Inputs() {
			if child := in.TargetBlock(); child != nil {
				walk(child, depth+1, in.Name)
			}
		}
		if next := b.NextBlock(); next != nil {
			walk(next, depth, "")
		}
	}

	for _, top := range ws.TopBlocks(true) {
		walk(top, 0, "")
	}
	return rows
}

// buildPalette flattens the toolbox into palette entries, category order
// first, uncategorized types last.
func buildPalette(tb *toolbox.Toolbox) []paletteEntry {
	var entries []paletteEntry
	seen := map[string]bool{}
	for _, cat := range tb.Categories() {
		for _, id := range cat.Blocks {
			if _, ok := tb.Definition(id); !ok {
				continue
			}
			entries = append(entries, paletteEntry{typeID: id, category: cat.Name})
			seen[id] = true
		}
	}
	for _, def := range tb.Definitions() {
		if !seen[def.Type] {
			entries = append(entries, paletteEntry{typeID: def.Type, category: "Other"})
		}
	}
	return entries
}

// blockFields collects a block's editable fields across all input rows.
func blockFields(b *block.Block) []*block.Field {
	var fields []*block.Field
	for _, in := range b.Inputs() {
		fields = append(fields, in.Fields...)
	}
	return fields
}

// fieldSummary condenses a block's field values for the tree view.
func fieldSummary(b *block.Block) string {
	var parts []string
	for _, in := range b.Inputs() {
		for _, f := range in.Fields {
			parts = append(parts, fmt.Sprintf("%s=%q", f.Name, f.Value))
		}
	}
	return strings.Join(parts, " ")
}

// plugInto attaches marked onto target, trying the target's sockets in
// order: the first free value input for value blocks, the next socket then
// statement inputs for statement blocks. Connection rules (kind matching,
// occupancy, cycles) are enforced by the connect call itself.
func plugInto(target, marked *block.Block) error {
	if out := marked.OutputConnection(); out != nil {
		for _, in := range target.Inputs() {
			if in.Kind == block.InputValue && in.Connection != nil && !in.Connection.IsConnected() {
				return in.Connection.Connect(out)
			}
		}
		return fmt.Errorf("%s has no free value input", target.Type())
	}
	if prev := marked.PreviousConnection(); prev != nil {
		if next := target.NextConnection(); next != nil && !next.IsConnected() {
			return next.Connect(prev)
		}
		for _, in := range target.Inputs() {
			if in.Kind == block.InputStatement && in.Connection != nil && !in.Connection.IsConnected() {
				return in.Connection.Connect(prev)
			}
		}
		return fmt.Errorf("%s has no free statement socket", target.Type())
	}
	return fmt.Errorf("%s cannot attach to other blocks", marked.Type())
}
