package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

var (
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

var selectionTint = colorful.Color{R: 0.45, G: 0.45, B: 0.45}

// gridView renders grid items for the terminal and caches the rendered
// cell strings. The canvas calls PrepareGeometryChange before it moves
// or resizes anything, which drops the cache.
type gridView struct {
	cells map[string]string
}

func newGridView() *gridView {
	return &gridView{cells: make(map[string]string)}
}

func (v *gridView) PrepareGeometryChange() {
	if v == nil {
		return
	}
	v.cells = make(map[string]string)
}

// cellMarks are the outline markers drawn on a selected item.
type cellMarks struct {
	left, right, bottom bool
}

func (v *gridView) renderCell(it *GridItem, selected bool, marks cellMarks) string {
	symbolKey := ""
	if it.Symbol != nil {
		symbolKey = it.Symbol.Key().String()
	}
	key := fmt.Sprintf("%s|%s|%s|%d|%t|%v", it.ID(), symbolKey, colorName(it.Color), it.Width, selected, marks)
	if s, ok := v.cells[key]; ok {
		return s
	}

	background, _ := colorful.MakeColor(it.Color)
	if selected {
		background = background.BlendRgb(selectionTint, 0.5)
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(background.Clamped().Hex())).
		Foreground(lipgloss.Color("#000000")).
		Underline(marks.bottom)

	left, right := " ", " "
	if marks.left {
		left = "["
	}
	if marks.right {
		right = "]"
	}
	text := left + cellText(it.Symbol, it.Width*termCellWidth-2) + right

	s := style.Render(text)
	if v.cells == nil {
		v.cells = make(map[string]string)
	}
	v.cells[key] = s
	return s
}

func centerText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "")
	pad := width - runewidth.StringWidth(s)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func cellText(symbol *Symbol, width int) string {
	glyph := ""
	if symbol != nil {
		glyph = symbol.Glyph
	}
	return centerText(glyph, width)
}

// outlineMarks maps item ids to the outline markers of the selection.
func outlineMarks(canvas *Canvas) map[string]cellMarks {
	edges := outlineEdges(canvas.Selection())
	if len(edges) == 0 {
		return nil
	}
	onOutline := make(map[string]bool, len(edges))
	for _, e := range edges {
		onOutline[e.ID()] = true
	}
	marks := make(map[string]cellMarks)
	for _, cell := range canvas.Selection() {
		c, r, w := cell.Column, cell.Row, cell.Width
		m := cellMarks{
			left:  onOutline[edgeID(gridPoint{c, r}, gridPoint{c, r + 1})],
			right: onOutline[edgeID(gridPoint{c + w, r}, gridPoint{c + w, r + 1})],
		}
		for x := c; x < c+w; x++ {
			if onOutline[edgeID(gridPoint{x, r + 1}, gridPoint{x + 1, r + 1})] {
				m.bottom = true
			}
		}
		marks[cell.ID()] = m
	}
	return marks
}

// gridTop is the terminal line of grid row 0.
func (m *model) gridTop() int {
	if len(m.buffers) > 1 {
		return 1
	}
	return 0
}

func (m *model) renderGrid() []string {
	canvas := m.getCanvas()
	numRows, numColumns := canvas.NumRows(), canvas.NumColumns()
	selection := canvas.Selection()
	marks := outlineMarks(canvas)

	lines := make([]string, 0, numRows+1)
	for row := 0; row < numRows; row++ {
		var line strings.Builder
		for column := 0; column < numColumns; {
			it := canvas.ItemAt(column, row)
			if it == nil {
				line.WriteString(strings.Repeat(" ", termCellWidth))
				column++
				continue
			}
			cell := m.view.renderCell(it, selection.Contains(it.Column, it.Row), marks[it.ID()])
			if m.mode != ModeFileInput && row == m.cursorY && m.cursorX >= it.Column && m.cursorX < it.Column+it.Width {
				cell = cursorStyle.Render(" " + cellText(it.Symbol, it.Width*termCellWidth-2) + " ")
			}
			line.WriteString(cell)
			column = it.Column + it.Width
		}
		line.WriteString(labelStyle.Render(" " + strconv.Itoa(numRows-row)))
		lines = append(lines, line.String())
	}

	var labels strings.Builder
	for column := 0; column < numColumns; column++ {
		labels.WriteString(centerText(strconv.Itoa(numColumns-column), termCellWidth))
	}
	lines = append(lines, labelStyle.Render(labels.String()))
	return lines
}

func (m *model) renderLegend(width int) []string {
	canvas := m.getCanvas()
	legend := canvas.Legend()
	if len(legend) == 0 {
		return nil
	}
	lines := []string{headerStyle.Render("Legend")}
	for _, entry := range legend {
		symbol := entry.Symbol.Symbol
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(colorName(entry.Symbol.Color))).
			Foreground(lipgloss.Color("#000000")).
			Render(cellText(symbol, symbol.Width*termCellWidth))
		count := fmt.Sprintf(" x%d", entry.Count)
		room := width - symbol.Width*termCellWidth - runewidth.StringWidth(count) - 1
		description := runewidth.Truncate(entry.Text.Description, max(room, 0), "…")
		line := swatch + " " + description + count
		if entry.Count <= 0 {
			line = swatch + dimStyle.Render(" "+description+" (unused)")
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *model) renderSymbolPicker(height int) []string {
	symbols := m.catalog.Symbols()
	lines := []string{headerStyle.Render("Symbols")}
	if len(symbols) == 0 {
		return append(lines, "(no symbols)")
	}
	visible := max(height-1, 1)
	start := 0
	if m.symbolIndex >= visible {
		start = m.symbolIndex - visible + 1
	}
	end := min(start+visible, len(symbols))
	for i := start; i < end; i++ {
		s := symbols[i]
		line := fmt.Sprintf("%s %-10s %-12s w=%d", centerText(s.Glyph, termCellWidth), s.Category, s.Name, s.Width)
		if i == m.symbolIndex {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *model) renderColorPicker() []string {
	lines := []string{headerStyle.Render("Colors")}
	for i, pc := range m.getCanvas().Colors() {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(colorName(pc.Color))).Render("   ")
		marker := " "
		if pc.Active != 0 {
			marker = "*"
		}
		line := fmt.Sprintf("%s %d %s %s", marker, i, swatch, colorName(pc.Color))
		if i == m.colorIndex {
			line = selectedStyle.Render(fmt.Sprintf("%s %d", marker, i)) + " " + swatch + " " + colorName(pc.Color)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *model) renderBufferBar(width int) string {
	if len(m.buffers) <= 1 {
		return strings.Repeat(" ", width)
	}

	var bar strings.Builder
	bar.WriteString("Open Patterns: ")
	for i, buf := range m.buffers {
		if i > 0 {
			bar.WriteString(" | ")
		}
		name := fmt.Sprintf("Buffer %d", i+1)
		if buf.filename != "" {
			name = strings.TrimSuffix(buf.filename, projectExtension)
		}
		if buf.modified {
			name += "*"
		}
		if i == m.currentBufferIndex {
			bar.WriteString("[" + name + "]")
		} else {
			bar.WriteString(name)
		}
	}
	return runewidth.FillRight(runewidth.Truncate(bar.String(), width, ""), width)
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	canvas := m.getCanvas()
	if canvas == nil {
		return ""
	}

	renderWidth := max(m.width, 1)
	var result strings.Builder
	if len(m.buffers) > 1 {
		result.WriteString(m.renderBufferBar(renderWidth))
		result.WriteString("\n")
	}

	if m.mode == ModeFileInput && m.fileOp == FileOpOpen {
		result.WriteString("Select a saved pattern:\n")
		result.WriteString(strings.Repeat("─", renderWidth))
		result.WriteString("\n")
		if len(m.fileList) == 0 {
			result.WriteString("(No " + projectExtension + " files found)\n")
		}
		for i, file := range m.fileList {
			name := strings.TrimSuffix(file, projectExtension)
			if i == m.selectedFileIndex {
				result.WriteString("> " + name + " <\n")
			} else {
				result.WriteString("  " + name + "\n")
			}
		}
		result.WriteString(strings.Repeat("─", renderWidth))
		result.WriteString("\nFilename: " + m.filename + "█")
	} else {
		grid := m.renderGrid()
		var panel []string
		switch m.mode {
		case ModeSymbolSelect:
			panel = m.renderSymbolPicker(m.height - len(grid) - 2)
		case ModeColorSelect:
			panel = m.renderColorPicker()
		default:
			panel = m.renderLegend(renderWidth)
		}
		result.WriteString(strings.Join(grid, "\n"))
		if len(panel) > 0 {
			result.WriteString("\n\n")
			result.WriteString(strings.Join(panel, "\n"))
		}
	}

	result.WriteString("\n")
	result.WriteString(runewidth.Truncate(m.statusLine(), renderWidth, "…"))
	return result.String()
}

func (m model) statusLine() string {
	canvas := m.getCanvas()
	switch m.mode {
	case ModeFileInput:
		var op string
		switch m.fileOp {
		case FileOpSave:
			op = "Save"
		case FileOpOpen:
			op = "Open"
		case FileOpSavePNG:
			op = "Export PNG"
		case FileOpSaveVisualTXT:
			op = "Export text chart"
		}
		status := fmt.Sprintf("Mode: FILE | %s filename: %s", op, m.filename)
		if m.errorMessage != "" {
			status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		}
		return status + " | Enter=confirm, Esc=cancel"
	case ModeDescriptionEdit:
		text := []rune(m.editText)
		pos := min(m.editCursorPos, len(text))
		display := string(text[:pos]) + "█" + string(text[pos:])
		return fmt.Sprintf("Mode: DESCRIBE | %s/%s | %s | Enter=save, Esc=cancel",
			m.editLegendID.Category, m.editLegendID.Name, display)
	case ModeCountInput:
		return fmt.Sprintf("Mode: COUNT | %s: %s█ | Enter=apply, Esc=cancel", gridEditName(m.pendingEdit), m.countInput)
	case ModeColorSelect:
		status := "Mode: COLOR | ↑/↓=slot, type #rrggbb or a color name, Enter=use, Esc=cancel"
		if m.editText != "" {
			status = fmt.Sprintf("Mode: COLOR | slot %d = %s█ | Enter=set, Esc=cancel", m.colorIndex, m.editText)
		}
		if m.errorMessage != "" {
			status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		}
		return status
	case ModeSymbolSelect:
		return "Mode: SYMBOL | ↑/↓=choose, Enter=activate, Backspace=none, Esc=cancel"
	case ModeConfirm:
		var message string
		switch m.confirmAction {
		case ConfirmQuit:
			message = "Quit sconcho? (y/n)"
		case ConfirmNewPattern:
			message = "Start a new pattern? Unsaved changes will be lost. (y/n)"
		case ConfirmCloseBuffer:
			message = "Close current buffer? Unsaved changes will be lost. (y/n)"
		case ConfirmOverwriteFile:
			message = fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.filename)
		case ConfirmPrint:
			message = fmt.Sprintf("Print with %q? (y/n)", m.config.PrintCommand)
		}
		return "Mode: CONFIRM | " + message
	}

	status := fmt.Sprintf("Mode: %s | Row %d Col %d", m.modeString(),
		canvas.NumRows()-m.cursorY, canvas.NumColumns()-m.cursorX)
	if s := canvas.ActiveSymbol(); s != nil {
		status += " | Symbol: " + s.Key().String()
	}
	for _, pc := range canvas.Colors() {
		if pc.Active != 0 {
			status += " | Color: " + colorName(pc.Color)
			break
		}
	}
	if n := len(canvas.Selection()); n > 0 {
		if ok, w, h := isRectangular(canvas.Selection()); ok {
			status += fmt.Sprintf(" | Selected: %dx%d", w, h)
		} else {
			status += fmt.Sprintf(" | Selected: %d", n)
		}
	}
	if m.successMessage != "" {
		status += " | " + successStyle.Render(m.successMessage)
	}
	if m.errorMessage != "" {
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	} else if m.successMessage == "" {
		status += " | ? for help | q to quit"
	}
	return status
}

func gridEditName(edit GridEdit) string {
	switch edit {
	case EditInsertRows:
		return "Insert rows"
	case EditDeleteRows:
		return "Delete rows"
	case EditInsertColumns:
		return "Insert columns"
	case EditDeleteColumns:
		return "Delete columns"
	default:
		return "Edit"
	}
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeSymbolSelect:
		return "SYMBOL"
	case ModeColorSelect:
		return "COLOR"
	case ModeFileInput:
		return "FILE"
	case ModeDescriptionEdit:
		return "DESCRIBE"
	case ModeCountInput:
		return "COUNT"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"sconcho Help",
	"============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor over the grid",
	"  Shift+h/j/k/l    Move cursor 2x faster",
	"  Mouse click      Toggle a cell, or select a row/column on its label",
	"",
	"Selecting and painting:",
	"-----------------------",
	"  Space            Toggle the cell under the cursor",
	"  V                Select the cursor row",
	"  C                Select the cursor column",
	"  Enter            Paint the selection with the active symbol",
	"  Esc              Clear the selection",
	"  s                Choose the active symbol",
	"  c                Choose or edit the active color",
	"",
	"Rows and columns:",
	"-----------------",
	"  r / R            Insert / delete rows at the cursor",
	"  i / I            Insert / delete columns at the cursor",
	"",
	"Legend:",
	"-------",
	"  d                Edit the legend description of the symbol under the cursor",
	"  p                Remove unused legend entries",
	"",
	"File Operations:",
	"----------------",
	"  w                Save pattern",
	"  o                Open a pattern in the current buffer",
	"  O                Open a pattern in a new buffer",
	"  e                Export as PNG image",
	"  t                Export as text chart",
	"  y                Copy the text chart to the clipboard",
	"  P                Print",
	"",
	"Buffer Operations:",
	"------------------",
	"  {  /  }          Previous / next buffer",
	"  n                New pattern in the current buffer",
	"  N                New pattern in a new buffer",
	"  x                Close current buffer",
	"",
	"General:",
	"  u                Undo",
	"  U / Ctrl+R       Redo",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)
	start := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	end := min(start+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[start:end], "\n")
	result += "\n" + fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		start+1, end, len(helpLines))
	return result
}
