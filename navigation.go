package main

import tea "github.com/charmbracelet/bubbletea"

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
	return m, nil
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func isNavigationKey(key string) bool {
	switch key {
	case "h", "left", "H", "shift+left",
		"l", "right", "L", "shift+right",
		"k", "up", "K", "shift+up",
		"j", "down", "J", "shift+down":
		return true
	}
	return false
}

// ensureCursorInBounds keeps the cursor on the pattern grid.
func (m *model) ensureCursorInBounds() {
	canvas := m.getCanvas()
	if canvas == nil {
		return
	}
	m.cursorX = max(0, min(m.cursorX, canvas.NumColumns()-1))
	m.cursorY = max(0, min(m.cursorY, canvas.NumRows()-1))
}

// handleMouseClick maps a terminal click onto the grid. A click on a cell
// toggles it, a click on a row or column label selects the whole row or
// column.
func (m *model) handleMouseClick(x, y int) {
	canvas := m.getCanvas()
	if canvas == nil {
		return
	}
	column, row := pixelToCell(Point{X: float64(x), Y: float64(y - m.gridTop())}, termCellWidth, 1)
	numColumns, numRows := canvas.NumColumns(), canvas.NumRows()

	var result *PaintResult
	switch {
	case isInGrid(column, row, numColumns, numRows):
		m.cursorX, m.cursorY = column, row
		result = canvas.ToggleCell(column, row)
	case isOnLabelBorder(column, row, numColumns, numRows):
		if column == numColumns || column == -1 {
			result = canvas.SelectRow(row)
		} else {
			result = canvas.SelectColumn(column)
		}
	default:
		return
	}
	m.recordPaint(result)
	m.errorMessage = ""
	m.successMessage = ""
}
