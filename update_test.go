package main

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) *model {
	t.Helper()
	catalog, err := loadSymbolCatalog("")
	require.NoError(t, err)
	config := defaultConfig()
	config.Rows = 4
	config.Columns = 5
	config.Confirmations = false
	config.SaveDirectory = t.TempDir()
	m := initialModel(config, catalog)
	m.width, m.height = 80, 40
	return m
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds the messages through Update and keeps the resulting model.
func press(t *testing.T, m *model, msgs ...tea.Msg) *model {
	t.Helper()
	var next tea.Model = m
	for _, msg := range msgs {
		next, _ = next.Update(msg)
	}
	switch v := next.(type) {
	case *model:
		return v
	case model:
		return &v
	}
	t.Fatalf("unexpected model type %T", next)
	return nil
}

func TestCursorStaysOnGrid(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keys("h"), keys("k"))
	assert.Equal(t, 0, m.cursorX)
	assert.Equal(t, 0, m.cursorY)

	m = press(t, m, keys("L"), keys("L"), keys("L"), keys("J"), keys("J"))
	assert.Equal(t, 4, m.cursorX)
	assert.Equal(t, 3, m.cursorY)
}

func TestPaintAndUndo(t *testing.T) {
	m := newTestModel(t)
	m.getCanvas().SetActiveSymbol(m.catalog.Lookup("basic", "purl"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, m.getCanvas().ItemAt(0, 0).Symbol)
	assert.Len(t, m.getCurrentBuffer().undoStack, 1)
	assert.True(t, m.getCurrentBuffer().modified)

	m = press(t, m, keys("u"))
	assert.Nil(t, m.getCanvas().ItemAt(0, 0).Symbol)
	assert.Len(t, m.getCurrentBuffer().redoStack, 1)

	m = press(t, m, keys("U"))
	assert.Equal(t, "purl", m.getCanvas().ItemAt(0, 0).Symbol.Name)
}

func TestSymbolPickerPaintsSelection(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keys("V"))
	assert.Len(t, m.getCanvas().Selection(), 5)

	m = press(t, m, keys("s"))
	require.Equal(t, ModeSymbolSelect, m.mode)
	for m.catalog.Symbols()[m.symbolIndex].Name != "yo" {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.getCanvas().Selection())
	for column := 0; column < 5; column++ {
		assert.Equal(t, "yo", m.getCanvas().ItemAt(column, 0).Symbol.Name)
	}
}

func TestEnterReportsMisfit(t *testing.T) {
	m := newTestModel(t)
	m.getCanvas().SetActiveSymbol(m.catalog.Lookup("cables", "c4f"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.errorMessage, "does not fit")
}

func TestGridEditWithCountAndUndo(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keys("j"), keys("r"))
	require.Equal(t, ModeCountInput, m.mode)
	m = press(t, m, keys("3"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, 7, m.getCanvas().NumRows())

	m = press(t, m, keys("u"))
	assert.Equal(t, 4, m.getCanvas().NumRows())
	m = press(t, m, keys("U"))
	assert.Equal(t, 7, m.getCanvas().NumRows())

	m = press(t, m, keys("I"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 4, m.getCanvas().NumColumns())
}

func TestGridEditUndoKeepsUnusedLegend(t *testing.T) {
	m := newTestModel(t)
	m.getCanvas().SetActiveSymbol(m.catalog.Lookup("basic", "k2tog"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, keys("u"))
	require.Len(t, m.getCanvas().Legend(), 1)
	require.Zero(t, m.getCanvas().Legend()[0].Count)

	m = press(t, m, keys("r"), tea.KeyMsg{Type: tea.KeyEnter}, keys("u"))
	assert.Equal(t, 4, m.getCanvas().NumRows())
	legend := m.getCanvas().Legend()
	require.Len(t, legend, 1)
	assert.Zero(t, legend[0].Count)
	assert.Equal(t, "knit two together", legend[0].Text.Description)

	m = press(t, m, keys("U"))
	assert.Equal(t, 5, m.getCanvas().NumRows())
	assert.Len(t, m.getCanvas().Legend(), 1)
}

func TestGridEditErrorShown(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keys("R"), keys("9"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.errorMessage, "invalid grid edit")
	assert.Equal(t, 4, m.getCanvas().NumRows())
}

func TestColorPicker(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keys("c"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, keys("teal"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	colors := m.getCanvas().Colors()
	assert.Equal(t, "#008080", colorName(colors[2].Color))
	assert.Equal(t, 1, colors[2].Active)
	assert.Equal(t, 0, colors[0].Active)

	m = press(t, m, keys("c"), keys("nocolor"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeColorSelect, m.mode)
	assert.NotEmpty(t, m.errorMessage)
}

func TestEditLegendDescription(t *testing.T) {
	m := newTestModel(t)
	m.getCanvas().SetActiveSymbol(m.catalog.Lookup("basic", "k2tog"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, keys("d"))
	require.Equal(t, ModeDescriptionEdit, m.mode)

	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}},
		keys("(RS)"),
		tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "knit two togethe (RS)", m.getCanvas().Legend()[0].Text.Description)
}

func TestSaveAndOpenThroughFileInput(t *testing.T) {
	m := newTestModel(t)
	m.getCanvas().SetActiveSymbol(m.catalog.Lookup("basic", "ssk"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	m = press(t, m, keys("w"), keys("lace"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Empty(t, m.errorMessage)
	assert.FileExists(t, filepath.Join(m.config.SaveDirectory, "lace.spf"))
	assert.False(t, m.getCurrentBuffer().modified)

	m = press(t, m, keys("O"))
	require.Equal(t, ModeFileInput, m.mode)
	assert.Equal(t, []string{"lace.spf"}, m.fileList)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Empty(t, m.errorMessage)
	require.Len(t, m.buffers, 2)
	assert.Equal(t, "ssk", m.getCanvas().ItemAt(0, 0).Symbol.Name)
	assert.Contains(t, m.View(), "[lace]")
}

func TestMouseClicks(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.MouseMsg{X: 7, Y: 2, Type: tea.MouseLeft})
	assert.True(t, m.getCanvas().Selection().Contains(2, 2))
	assert.Equal(t, 2, m.cursorX)
	assert.Equal(t, 2, m.cursorY)

	// row label right of the grid
	m = press(t, m, tea.MouseMsg{X: 5 * termCellWidth, Y: 1, Type: tea.MouseLeft})
	for column := 0; column < 5; column++ {
		assert.True(t, m.getCanvas().Selection().Contains(column, 1))
	}

	// column label below the grid
	m.getCanvas().ClearSelection()
	m = press(t, m, tea.MouseMsg{X: 1, Y: 4, Type: tea.MouseLeft})
	assert.Len(t, m.getCanvas().Selection(), 4)
}

func TestViewCacheDroppedOnGeometryChange(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "Mode: NORMAL")
	assert.NotEmpty(t, m.view.cells)

	require.NoError(t, m.getCanvas().InsertRows(0, 1))
	assert.Empty(t, m.view.cells)
}

func TestViewShowsLegendAndOutline(t *testing.T) {
	m := newTestModel(t)
	m.getCanvas().SetActiveSymbol(m.catalog.Lookup("basic", "yo"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.getCanvas().SetActiveSymbol(nil)
	m.getCanvas().SelectRect(1, 1, 2, 2)

	out := m.View()
	assert.Contains(t, out, "Legend")
	assert.Contains(t, out, "yarn over x1")
	assert.Contains(t, out, "Selected: 2x2")
	assert.True(t, strings.Contains(out, "["), "outline markers")
}

func TestQuitWithoutConfirmation(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m.config.Confirmations = true
	m = press(t, m, keys("q"))
	assert.Equal(t, ModeConfirm, m.mode)
	m = press(t, m, keys("n"))
	assert.Equal(t, ModeNormal, m.mode)
}
