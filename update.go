package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type symbolsChangedMsg struct{}

// waitForSymbolChange turns the next notification of the symbol
// directory watcher into a message.
func waitForSymbolChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return symbolsChangedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return waitForSymbolChange(m.symbolChanges)
}

func (m *model) projectDirectory() string {
	if m.config.SaveDirectory != "" {
		return m.config.SaveDirectory
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

func (m *model) scanProjectFiles() {
	m.fileList = []string{}
	m.selectedFileIndex = -1

	entries, err := os.ReadDir(m.projectDirectory())
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), projectExtension) {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)

	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.filename = strings.TrimSuffix(m.fileList[0], projectExtension)
	}
}

// resolveOpenPath prefers a file named exactly as typed so projects with
// other extensions can still be opened.
func (m *model) resolveOpenPath(name string) string {
	path := m.config.GetSavePath(name)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return m.config.GetSavePath(withExtension(name, projectExtension))
}

func (m *model) saveProject(path string) error {
	if err := SaveProject(path, m.getCanvas().Snapshot()); err != nil {
		return err
	}
	if buf := m.getCurrentBuffer(); buf != nil {
		buf.filename = filepath.Base(path)
		buf.modified = false
	}
	absPath, _ := filepath.Abs(path)
	m.successMessage = fmt.Sprintf("Saved to %s", absPath)
	m.errorMessage = ""
	return nil
}

func (m *model) openProject(path string) error {
	project, err := ReadProject(path)
	if err != nil {
		return err
	}
	canvas := m.newCanvas()
	err = canvas.LoadProject(project)
	if err != nil && !errors.Is(err, ErrInconsistentLegend) {
		return err
	}

	if m.openInNewBuffer {
		m.addNewBuffer(canvas, filepath.Base(path))
		m.openInNewBuffer = false
	} else if buf := m.getCurrentBuffer(); buf != nil {
		*buf = Buffer{canvas: canvas, filename: filepath.Base(path)}
		m.cursorX, m.cursorY = 0, 0
	}
	m.errorMessage = ""
	m.successMessage = "Opened " + filepath.Base(path)
	if err != nil {
		m.successMessage += " (legend partly restored)"
	}
	return nil
}

func (m *model) startFileInput(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.errorMessage = ""
	m.successMessage = ""
	m.filename = ""
	if buf := m.getCurrentBuffer(); buf != nil && buf.filename != "" && op != FileOpOpen {
		m.filename = strings.TrimSuffix(buf.filename, projectExtension)
	}
	if op == FileOpOpen {
		m.scanProjectFiles()
	}
}

func (m *model) confirmOrRun(action ConfirmAction) (tea.Model, tea.Cmd) {
	if m.config.Confirmations {
		m.mode = ModeConfirm
		m.confirmAction = action
		return m, nil
	}
	return m.runConfirmed(action)
}

func (m *model) runConfirmed(action ConfirmAction) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch action {
	case ConfirmQuit:
		return m, tea.Quit
	case ConfirmNewPattern:
		if buf := m.getCurrentBuffer(); buf != nil {
			*buf = Buffer{canvas: m.newCanvas()}
		}
		m.cursorX, m.cursorY = 0, 0
		m.errorMessage = ""
		m.successMessage = ""
	case ConfirmCloseBuffer:
		m.closeCurrentBuffer()
		m.errorMessage = ""
		m.successMessage = ""
	case ConfirmOverwriteFile:
		if err := m.saveProject(m.filename); err != nil {
			m.errorMessage = fmt.Sprintf("Error saving file: %s", err.Error())
			m.mode = ModeFileInput
			return m, nil
		}
		m.filename = ""
	case ConfirmPrint:
		if err := printScene(m.getCanvas(), m.config.PrintCommand, m.config.ExportScale); err != nil {
			m.errorMessage = fmt.Sprintf("Error printing: %s", err.Error())
		} else {
			m.successMessage = "Sent to " + m.config.PrintCommand
			m.errorMessage = ""
		}
	}
	return m, nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case symbolsChangedMsg:
		catalog, err := loadSymbolCatalog(m.config.SymbolDirectory)
		if err != nil {
			log.Printf("reloading symbols: %v", err)
		}
		if catalog != nil {
			n := m.catalog.Merge(catalog)
			m.view.PrepareGeometryChange()
			m.successMessage = fmt.Sprintf("Reloaded %d symbols", n)
		}
		return m, waitForSymbolChange(m.symbolChanges)

	case tea.MouseMsg:
		if m.mode == ModeNormal && !m.help && msg.Type == tea.MouseLeft {
			m.handleMouseClick(msg.X, msg.Y)
		}
		return m, nil

	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "j", "down":
				m.helpScroll++
			case "k", "up":
				if m.helpScroll > 0 {
					m.helpScroll--
				}
			default:
				m.help = false
				m.helpScroll = 0
			}
			return m, nil
		}

		switch m.mode {
		case ModeNormal:
			return m.updateNormal(msg)
		case ModeSymbolSelect:
			return m.updateSymbolSelect(msg)
		case ModeColorSelect:
			return m.updateColorSelect(msg)
		case ModeDescriptionEdit:
			return m.updateDescriptionEdit(msg)
		case ModeCountInput:
			return m.updateCountInput(msg)
		case ModeFileInput:
			return m.updateFileInput(msg)
		case ModeConfirm:
			switch msg.String() {
			case "y", "Y":
				return m.runConfirmed(m.confirmAction)
			case "n", "N", "esc":
				if m.confirmAction == ConfirmOverwriteFile {
					m.mode = ModeFileInput
					m.fileOp = FileOpSave
					m.filename = strings.TrimSuffix(filepath.Base(m.filename), projectExtension)
				} else {
					m.mode = ModeNormal
				}
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	canvas := m.getCanvas()
	key := msg.String()
	if isNavigationKey(key) {
		return m.handleNavigation(key, m.getMoveSpeed(key))
	}
	m.errorMessage = ""

	switch key {
	case "ctrl+c", "q":
		return m.confirmOrRun(ConfirmQuit)
	case "?":
		m.help = true
	case "esc":
		canvas.ClearSelection()
		m.successMessage = ""
	case " ":
		m.recordPaint(canvas.ToggleCell(m.cursorX, m.cursorY))
	case "V":
		m.recordPaint(canvas.SelectRow(m.cursorY))
	case "C":
		m.recordPaint(canvas.SelectColumn(m.cursorX))
	case "enter":
		if len(canvas.Selection()) == 0 {
			return m, nil
		}
		symbol := canvas.ActiveSymbol()
		if symbol == nil {
			m.errorMessage = "no active symbol"
			return m, nil
		}
		result := canvas.PaintSelection()
		if result == nil {
			m.errorMessage = fmt.Sprintf("selection does not fit %s (width %d)", symbol.Name, symbol.Width)
			return m, nil
		}
		m.recordPaint(result)
	case "s":
		m.mode = ModeSymbolSelect
		if s := canvas.ActiveSymbol(); s != nil {
			for i, cs := range m.catalog.Symbols() {
				if cs == s {
					m.symbolIndex = i
				}
			}
		}
	case "c":
		m.mode = ModeColorSelect
		m.editText = ""
		for i, pc := range canvas.Colors() {
			if pc.Active != 0 {
				m.colorIndex = i
			}
		}
	case "r", "R", "i", "I":
		m.mode = ModeCountInput
		m.countInput = ""
		m.pendingEdit = map[string]GridEdit{
			"r": EditInsertRows,
			"R": EditDeleteRows,
			"i": EditInsertColumns,
			"I": EditDeleteColumns,
		}[key]
	case "d":
		it := canvas.ItemAt(m.cursorX, m.cursorY)
		if it == nil || it.Symbol == nil {
			m.errorMessage = "no symbol under cursor"
			return m, nil
		}
		id := computeLegendID(it.Symbol, it.Color)
		entry := canvas.LegendEntry(id)
		if entry == nil {
			m.errorMessage = "symbol has no legend entry"
			return m, nil
		}
		m.mode = ModeDescriptionEdit
		m.editLegendID = id
		m.editText = entry.Text.Description
		m.editCursorPos = len([]rune(m.editText))
	case "p":
		if n := canvas.PruneLegend(); n > 0 {
			m.view.PrepareGeometryChange()
			if buf := m.getCurrentBuffer(); buf != nil {
				buf.modified = true
			}
			m.successMessage = fmt.Sprintf("Removed %d legend entries", n)
		}
	case "u":
		m.undo()
	case "U", "ctrl+r":
		m.redo()
	case "w", "ctrl+s":
		m.startFileInput(FileOpSave)
	case "o":
		m.openInNewBuffer = false
		m.startFileInput(FileOpOpen)
	case "O":
		m.openInNewBuffer = true
		m.startFileInput(FileOpOpen)
	case "e":
		m.startFileInput(FileOpSavePNG)
	case "t":
		m.startFileInput(FileOpSaveVisualTXT)
	case "y":
		if err := copyChartToClipboard(canvas); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "Copied chart to clipboard"
		}
	case "P":
		return m.confirmOrRun(ConfirmPrint)
	case "n":
		return m.confirmOrRun(ConfirmNewPattern)
	case "N":
		m.addNewBuffer(m.newCanvas(), "")
		m.successMessage = ""
	case "x":
		return m.confirmOrRun(ConfirmCloseBuffer)
	case "{":
		if len(m.buffers) > 1 {
			m.currentBufferIndex = (m.currentBufferIndex - 1 + len(m.buffers)) % len(m.buffers)
			m.ensureCursorInBounds()
		}
	case "}", "tab":
		if len(m.buffers) > 1 {
			m.currentBufferIndex = (m.currentBufferIndex + 1) % len(m.buffers)
			m.ensureCursorInBounds()
		}
	}
	return m, nil
}

func (m *model) updateSymbolSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	symbols := m.catalog.Symbols()
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal
	case "up", "k":
		if m.symbolIndex > 0 {
			m.symbolIndex--
		}
	case "down", "j":
		if m.symbolIndex < len(symbols)-1 {
			m.symbolIndex++
		}
	case "backspace":
		m.getCanvas().SetActiveSymbol(nil)
		m.mode = ModeNormal
	case "enter":
		if m.symbolIndex >= 0 && m.symbolIndex < len(symbols) {
			m.recordPaint(m.getCanvas().SetActiveSymbol(symbols[m.symbolIndex]))
		}
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *model) updateColorSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	canvas := m.getCanvas()
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.editText = ""
		m.errorMessage = ""
		return m, nil
	case tea.KeyUp:
		if m.colorIndex > 0 {
			m.colorIndex--
		}
		return m, nil
	case tea.KeyDown:
		if m.colorIndex < len(canvas.Colors())-1 {
			m.colorIndex++
		}
		return m, nil
	case tea.KeyBackspace:
		if m.editText != "" {
			runes := []rune(m.editText)
			m.editText = string(runes[:len(runes)-1])
		}
		return m, nil
	case tea.KeyEnter:
		if m.editText != "" {
			c, err := parseColor(m.editText)
			if err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			canvas.SetColor(m.colorIndex, c)
		}
		canvas.SetActiveColor(m.colorIndex)
		if buf := m.getCurrentBuffer(); buf != nil {
			buf.modified = true
		}
		m.mode = ModeNormal
		m.editText = ""
		m.errorMessage = ""
		return m, nil
	case tea.KeyRunes:
		m.editText += string(msg.Runes)
	}
	return m, nil
}

func (m *model) updateDescriptionEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	runes := []rune(m.editText)
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.editText = ""
	case tea.KeyEnter:
		if err := m.getCanvas().SetLegendDescription(m.editLegendID, m.editText); err != nil {
			m.errorMessage = err.Error()
		} else if buf := m.getCurrentBuffer(); buf != nil {
			buf.modified = true
		}
		m.mode = ModeNormal
		m.editText = ""
	case tea.KeyLeft:
		if m.editCursorPos > 0 {
			m.editCursorPos--
		}
	case tea.KeyRight:
		if m.editCursorPos < len(runes) {
			m.editCursorPos++
		}
	case tea.KeyBackspace:
		if m.editCursorPos > 0 {
			m.editText = string(runes[:m.editCursorPos-1]) + string(runes[m.editCursorPos:])
			m.editCursorPos--
		}
	case tea.KeySpace:
		m.editText = string(runes[:m.editCursorPos]) + " " + string(runes[m.editCursorPos:])
		m.editCursorPos++
	case tea.KeyRunes:
		m.editText = string(runes[:m.editCursorPos]) + string(msg.Runes) + string(runes[m.editCursorPos:])
		m.editCursorPos += len(msg.Runes)
	}
	return m, nil
}

func (m *model) updateCountInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.countInput = ""
	case tea.KeyBackspace:
		if m.countInput != "" {
			m.countInput = m.countInput[:len(m.countInput)-1]
		}
	case tea.KeyEnter:
		count := 1
		if m.countInput != "" {
			n, err := strconv.Atoi(m.countInput)
			if err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			count = n
		}
		if err := m.applyGridEdit(m.pendingEdit, count); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.errorMessage = ""
		}
		m.mode = ModeNormal
		m.countInput = ""
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' {
				m.countInput += string(r)
			}
		}
	}
	return m, nil
}

func (m *model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.filename = ""
		m.errorMessage = ""
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		if m.fileOp != FileOpOpen || len(m.fileList) == 0 {
			return m, nil
		}
		if msg.Type == tea.KeyUp {
			m.selectedFileIndex = (m.selectedFileIndex - 1 + len(m.fileList)) % len(m.fileList)
		} else {
			m.selectedFileIndex = (m.selectedFileIndex + 1) % len(m.fileList)
		}
		m.filename = strings.TrimSuffix(m.fileList[m.selectedFileIndex], projectExtension)
		return m, nil
	case tea.KeyBackspace:
		if m.filename != "" {
			runes := []rune(m.filename)
			m.filename = string(runes[:len(runes)-1])
			m.selectedFileIndex = -1
		}
		return m, nil
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
		m.selectedFileIndex = -1
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	name := strings.TrimSpace(m.filename)
	if name == "" {
		m.errorMessage = "Please enter a filename"
		return m, nil
	}

	canvas := m.getCanvas()
	switch m.fileOp {
	case FileOpSave:
		path := m.config.GetSavePath(withExtension(name, projectExtension))
		if _, err := os.Stat(path); err == nil && m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			m.filename = path
			return m, nil
		}
		if err := m.saveProject(path); err != nil {
			m.errorMessage = fmt.Sprintf("Error saving file: %s", err.Error())
			return m, nil
		}
	case FileOpOpen:
		if err := m.openProject(m.resolveOpenPath(name)); err != nil {
			m.errorMessage = fmt.Sprintf("Error opening file: %s", err.Error())
			return m, nil
		}
	case FileOpSavePNG:
		path := m.config.GetSavePath(withExtension(name, ".png"))
		if err := ExportToPNG(canvas, path, m.config.ExportScale); err != nil {
			m.errorMessage = fmt.Sprintf("Error exporting PNG: %s", err.Error())
			return m, nil
		}
		absPath, _ := filepath.Abs(path)
		m.successMessage = fmt.Sprintf("Exported to %s", absPath)
	case FileOpSaveVisualTXT:
		path := m.config.GetSavePath(withExtension(name, ".txt"))
		if err := exportVisualTXT(canvas, path); err != nil {
			m.errorMessage = fmt.Sprintf("Error exporting chart: %s", err.Error())
			return m, nil
		}
		absPath, _ := filepath.Abs(path)
		m.successMessage = fmt.Sprintf("Exported to %s", absPath)
	}
	m.mode = ModeNormal
	m.filename = ""
	m.errorMessage = ""
	return m, nil
}
