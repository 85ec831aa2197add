package main

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSettings = GridSettings{Columns: 4, Rows: 3, CellWidth: 30, CellHeight: 30}

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	catalog, err := loadSymbolCatalog("")
	require.NoError(t, err)
	return NewCanvas(catalog, testSettings)
}

func testSymbol(t *testing.T, c *Canvas, category, name string) *Symbol {
	t.Helper()
	s := c.catalog.Lookup(category, name)
	require.NotNil(t, s, "%s/%s missing from catalog", category, name)
	return s
}

func TestNewCanvas(t *testing.T) {
	c := newTestCanvas(t)
	assert.Equal(t, 3, c.NumRows())
	assert.Equal(t, 4, c.NumColumns())
	assert.Len(t, c.Items(), 12)
	assert.Empty(t, c.Legend())
	for _, it := range c.Items() {
		assert.Nil(t, it.Symbol)
		assert.Equal(t, 1, it.Width)
		assert.Equal(t, Point{float64(it.Column) * 30, float64(it.Row) * 30}, it.Origin)
	}
}

func TestToggleCellPaintsUnitSymbol(t *testing.T) {
	c := newTestCanvas(t)
	knit := testSymbol(t, c, "basic", "knit")

	assert.Nil(t, c.SetActiveSymbol(knit), "nothing selected")

	result := c.ToggleCell(2, 1)
	require.NotNil(t, result)
	assert.Len(t, result.Removed, 1)
	assert.Len(t, result.Added, 1)
	assert.Empty(t, c.Selection())

	it := c.ItemAt(2, 1)
	require.NotNil(t, it)
	assert.Equal(t, knit, it.Symbol)

	legend := c.Legend()
	require.Len(t, legend, 1)
	assert.Equal(t, 1, legend[0].Count)
	assert.Equal(t, knit.Description, legend[0].Text.Description)
}

func TestPaintWideSymbol(t *testing.T) {
	c := newTestCanvas(t)
	lt := testSymbol(t, c, "cables", "LT")
	c.SetActiveSymbol(lt)

	assert.Nil(t, c.ToggleCell(0, 0), "one cell does not fit a two wide symbol")
	assert.True(t, c.Selection().Contains(0, 0))

	result := c.ToggleCell(1, 0)
	require.NotNil(t, result)
	assert.Len(t, result.Removed, 2)
	require.Len(t, result.Added, 1)
	assert.Equal(t, 2, result.Added[0].Width)

	assert.Len(t, c.Items(), 11)
	assert.Same(t, c.ItemAt(0, 0), c.ItemAt(1, 0))
	assert.Equal(t, 1, c.LegendEntry(computeLegendID(lt, c.ItemAt(0, 0).Color)).Count)
}

func TestPaintWideSymbolOverRow(t *testing.T) {
	c := newTestCanvas(t)
	c.SelectRow(2)
	result := c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	require.NotNil(t, result)
	assert.Len(t, result.Added, 2)
	assert.Equal(t, 0, c.ItemAt(1, 2).Column)
	assert.Equal(t, 2, c.ItemAt(3, 2).Column)
}

func TestPaintRejectsGap(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(0, 1)
	assert.Nil(t, c.ToggleCell(2, 1))
	assert.Len(t, c.Selection(), 2)
	assert.Nil(t, c.PaintSelection())
	assert.Len(t, c.Items(), 12)
}

func TestPaintColor(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveColor(1)
	c.SetActiveSymbol(testSymbol(t, c, "basic", "purl"))
	c.ToggleCell(0, 0)
	assert.Equal(t, c.Colors()[1].Color, c.ItemAt(0, 0).Color)

	nostitch := testSymbol(t, c, "basic", "nostitch")
	background, err := parseColor(nostitch.Background)
	require.NoError(t, err)
	c.SetActiveSymbol(nostitch)
	c.ToggleCell(1, 0)
	assert.Equal(t, background, c.ItemAt(1, 0).Color)
	assert.Len(t, c.Legend(), 2)
}

func TestLegendCountsByColor(t *testing.T) {
	c := newTestCanvas(t)
	knit := testSymbol(t, c, "basic", "knit")
	c.SetActiveSymbol(knit)
	c.ToggleCell(0, 0)
	c.ToggleCell(1, 0)
	c.SetActiveColor(2)
	c.ToggleCell(2, 0)

	require.Len(t, c.Legend(), 2)
	assert.Equal(t, 2, c.LegendEntry(computeLegendID(knit, defaultColor)).Count)
	assert.Equal(t, 1, c.LegendEntry(computeLegendID(knit, c.Colors()[2].Color)).Count)
}

func TestLegendLayout(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "basic", "knit"))
	c.ToggleCell(0, 0)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(0, 1)
	c.ToggleCell(1, 1)

	legend := c.Legend()
	require.Len(t, legend, 2)
	assert.Equal(t, Point{0, 150}, legend[0].Symbol.Pos)
	assert.Equal(t, Point{45, 150}, legend[0].Text.Pos)
	assert.Equal(t, Point{0, 195}, legend[1].Symbol.Pos)
	assert.Equal(t, Point{75, 195}, legend[1].Text.Pos)
}

func TestReplaceCellsUndoesPaint(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(2, 2)
	result := c.ToggleCell(3, 2)
	require.NotNil(t, result)

	c.ReplaceCells(result.Added, result.Removed)
	assert.Len(t, c.Items(), 12)
	assert.Nil(t, c.ItemAt(2, 2).Symbol)
	assert.Equal(t, 0, c.Legend()[0].Count)

	c.ReplaceCells(result.Removed, result.Added)
	assert.Len(t, c.Items(), 11)
	assert.Equal(t, 1, c.Legend()[0].Count)
}

func TestSelectRowAndColumn(t *testing.T) {
	c := newTestCanvas(t)
	assert.Nil(t, c.SelectRow(1))
	assert.Len(t, c.Selection(), 4)
	c.ClearSelection()

	c.SelectColumn(3)
	assert.Len(t, c.Selection(), 3)
	ok, columns, rows := isRectangular(c.Selection())
	assert.True(t, ok)
	assert.Equal(t, 1, columns)
	assert.Equal(t, 3, rows)

	assert.Nil(t, c.SelectRow(7))
	assert.Len(t, c.Selection(), 3)
}

func TestSelectColumnIncludesWideItems(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(0, 0)
	require.NotNil(t, c.ToggleCell(1, 0))
	c.SetActiveSymbol(nil)

	c.SelectColumn(1)
	sel := c.Selection()
	assert.Len(t, sel, 3)
	assert.True(t, sel.Contains(0, 0), "wide item starting left of the column")
	assert.True(t, sel.Contains(1, 1))
	assert.True(t, sel.Contains(1, 2))
	assert.False(t, sel.Contains(0, 1))
}

func TestInsertRows(t *testing.T) {
	c := newTestCanvas(t)
	hook := &countingHook{}
	c.SetGeometryHook(hook)
	knit := testSymbol(t, c, "basic", "knit")
	c.SetActiveSymbol(knit)
	c.ToggleCell(1, 1)
	c.SetActiveSymbol(nil)
	c.ToggleCell(0, 2)

	require.NoError(t, c.InsertRows(1, 2))
	assert.Equal(t, 5, c.NumRows())
	assert.Len(t, c.Items(), 20)
	assert.Positive(t, hook.calls)

	moved := c.ItemAt(1, 3)
	require.NotNil(t, moved)
	assert.Equal(t, knit, moved.Symbol)
	assert.Equal(t, Point{30, 90}, moved.Origin)
	assert.Nil(t, c.ItemAt(1, 1).Symbol)

	assert.True(t, c.Selection().Contains(0, 4), "selection follows its rows")
	assert.False(t, c.Selection().Contains(0, 2))

	entry := c.Legend()[0]
	assert.Equal(t, 150.0+60.0, entry.Symbol.Pos.Y)
}

func TestDeleteRows(t *testing.T) {
	c := newTestCanvas(t)
	knit := testSymbol(t, c, "basic", "knit")
	c.SetActiveSymbol(knit)
	c.ToggleCell(0, 0)
	c.ToggleCell(0, 2)

	require.NoError(t, c.DeleteRows(0, 1))
	assert.Equal(t, 2, c.NumRows())
	assert.Len(t, c.Items(), 8)
	assert.Equal(t, knit, c.ItemAt(0, 1).Symbol)
	assert.Equal(t, 1, c.Legend()[0].Count)

	require.NoError(t, c.DeleteRows(1, 1))
	assert.Equal(t, 0, c.Legend()[0].Count, "unused entries stay until pruned")
	assert.Equal(t, 1, c.PruneLegend())
	assert.Empty(t, c.Legend())
}

func TestDeleteRowsRejects(t *testing.T) {
	c := newTestCanvas(t)
	assert.ErrorIs(t, c.DeleteRows(0, 3), ErrInvalidEdit)
	assert.ErrorIs(t, c.DeleteRows(2, 2), ErrInvalidEdit)
	assert.ErrorIs(t, c.DeleteRows(-1, 1), ErrInvalidEdit)
	assert.ErrorIs(t, c.InsertRows(4, 1), ErrInvalidEdit)
	assert.ErrorIs(t, c.InsertRows(0, 0), ErrInvalidEdit)
	assert.Equal(t, 3, c.NumRows())
}

func TestInsertColumnsStraddle(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(0, 0)
	c.ToggleCell(1, 0)

	assert.ErrorIs(t, c.InsertColumns(1, 1), ErrInvalidEdit)
	assert.Equal(t, 4, c.NumColumns())

	require.NoError(t, c.InsertColumns(0, 1))
	assert.Equal(t, 5, c.NumColumns())
	wide := c.ItemAt(2, 0)
	require.NotNil(t, wide)
	assert.Equal(t, 1, wide.Column)
	assert.Equal(t, 2, wide.Width)
	assert.Len(t, c.Items(), 14)
}

func TestDeleteColumns(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(1, 0)
	c.ToggleCell(2, 0)

	assert.ErrorIs(t, c.DeleteColumns(0, 2), ErrInvalidEdit, "column 2 splits the cable")
	assert.ErrorIs(t, c.DeleteColumns(0, 4), ErrInvalidEdit)

	require.NoError(t, c.DeleteColumns(3, 1))
	require.NoError(t, c.DeleteColumns(0, 1))
	assert.Equal(t, 2, c.NumColumns())
	assert.Equal(t, 0, c.ItemAt(1, 0).Column)
	assert.Len(t, c.Items(), 5)
}

func TestContentBounds(t *testing.T) {
	c := newTestCanvas(t)
	assert.Equal(t, Rect{0, 0, 150, 120}, c.ContentBounds(nil))

	c.SetActiveSymbol(testSymbol(t, c, "basic", "knit"))
	c.ToggleCell(0, 0)
	bounds := c.ContentBounds(func(s string) float64 { return 500 })
	assert.Equal(t, Rect{0, 0, 545, 180}, bounds)
}

func paintedCanvas(t *testing.T) *Canvas {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "basic", "purl"))
	c.ToggleCell(0, 0)
	c.SetActiveColor(3)
	c.SetActiveSymbol(testSymbol(t, c, "cables", "LT"))
	c.ToggleCell(2, 1)
	c.ToggleCell(3, 1)
	c.SetColor(4, color.RGBA{0x10, 0x20, 0x30, 0xff})
	require.NoError(t, c.SetLegendDescription(c.LegendIDs()[0], "purl, twisted"))
	return c
}

func TestSnapshotLoadRoundTrip(t *testing.T) {
	c := paintedCanvas(t)
	snapshot := c.Snapshot()
	assert.Len(t, snapshot.GridItems, 11)
	assert.Len(t, snapshot.LegendItems, 2)
	require.NotNil(t, snapshot.ActiveSymbol)

	loaded := newTestCanvas(t)
	require.NoError(t, loaded.LoadProject(snapshot))
	if diff := cmp.Diff(snapshot, loaded.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch after load (-want +got):\n%s", diff)
	}
	assert.Equal(t, "purl, twisted", loaded.Legend()[0].Text.Description)
}

func TestSaveAndOpenCanvas(t *testing.T) {
	c := paintedCanvas(t)
	path := filepath.Join(t.TempDir(), "pattern.spf")
	require.NoError(t, SaveProject(path, c.Snapshot()))

	p, err := ReadProject(path)
	require.NoError(t, err)
	loaded := newTestCanvas(t)
	require.NoError(t, loaded.LoadProject(p))
	if diff := cmp.Diff(c.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Errorf("canvas mismatch after save and open (-want +got):\n%s", diff)
	}
}

func TestLoadProjectGrowsGrid(t *testing.T) {
	p := &Project{GridItems: []GridItemRecord{
		{Category: "basic", Name: "knit", Column: 6, Row: 4, Width: 1, Height: 1, Color: defaultColor},
	}}
	c := newTestCanvas(t)
	require.NoError(t, c.LoadProject(p))
	assert.Equal(t, 7, c.NumColumns())
	assert.Equal(t, 5, c.NumRows())
	assert.Len(t, c.Items(), 35)
	assert.Len(t, c.Colors(), numPaletteSlots)
}

func TestLoadProjectKeepsPalette(t *testing.T) {
	colors := make([]ProjectColor, 12)
	for i := range colors {
		colors[i] = ProjectColor{Color: color.RGBA{uint8(i * 20), 0x40, 0x80, 0xff}}
	}
	colors[11].Active = 1
	grid := []GridItemRecord{{Column: 0, Row: 0, Width: 1, Height: 1, Color: defaultColor}}

	c := newTestCanvas(t)
	require.NoError(t, c.LoadProject(&Project{GridItems: grid, Colors: colors}))
	if diff := cmp.Diff(colors, c.Snapshot().Colors); diff != "" {
		t.Errorf("palette changed on load (-want +got):\n%s", diff)
	}

	short := []ProjectColor{{Color: defaultColor}, {Color: color.RGBA{0xff, 0, 0, 0xff}, Active: 1}}
	require.NoError(t, c.LoadProject(&Project{GridItems: grid, Colors: short}))
	got := c.Colors()
	require.Len(t, got, numPaletteSlots)
	assert.Equal(t, 0, got[0].Active)
	assert.Equal(t, 1, got[1].Active)
	assert.Equal(t, ProjectColor{Color: defaultColor}, got[9])
}

func TestRestoreLegend(t *testing.T) {
	c := newTestCanvas(t)
	c.SetActiveSymbol(testSymbol(t, c, "basic", "knit"))
	result := c.ToggleCell(0, 0)
	require.NotNil(t, result)
	c.ReplaceCells(result.Added, result.Removed)

	unused := c.UnusedLegend()
	require.Len(t, unused, 1)
	require.NoError(t, c.LoadProject(c.Snapshot()))
	assert.Empty(t, c.Legend())

	c.RestoreLegend(unused)
	c.RestoreLegend(unused)
	require.Len(t, c.Legend(), 1)
	assert.Zero(t, c.Legend()[0].Count)
	assert.Equal(t, Point{unused[0].ItemX, unused[0].ItemY}, c.Legend()[0].Symbol.Pos)

	require.NotNil(t, c.ToggleCell(1, 1))
	require.Len(t, c.Legend(), 1)
	assert.Equal(t, 1, c.Legend()[0].Count)
}

func TestLoadProjectInconsistentLegend(t *testing.T) {
	p := &Project{
		GridItems: []GridItemRecord{
			{Category: "basic", Name: "knit", Column: 0, Row: 0, Width: 1, Height: 1, Color: defaultColor},
		},
		LegendItems: []LegendItemRecord{
			{Category: "basic", Name: "yo", ItemX: 0, ItemY: 300, Color: defaultColor},
			{Category: "basic", Name: "knit", ItemX: 5, ItemY: 400, LabelX: 50, LabelY: 400,
				Color: defaultColor, Description: "kept"},
		},
	}
	c := newTestCanvas(t)
	err := c.LoadProject(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistentLegend)

	require.Len(t, c.Legend(), 1)
	assert.Equal(t, Point{5, 400}, c.Legend()[0].Symbol.Pos)
	assert.Equal(t, "kept", c.Legend()[0].Text.Description)
}

func TestLoadProjectRejectsOverlap(t *testing.T) {
	p := &Project{GridItems: []GridItemRecord{
		{Category: "cables", Name: "LT", Column: 0, Row: 0, Width: 2, Height: 1, Color: defaultColor},
		{Column: 1, Row: 0, Width: 1, Height: 1, Color: defaultColor},
	}}
	c := newTestCanvas(t)
	err := c.LoadProject(p)
	assert.ErrorIs(t, err, ErrUnreadableProject)
	assert.Len(t, c.Items(), 12, "canvas untouched")
}

func TestLoadProjectUnknownSymbol(t *testing.T) {
	p := &Project{GridItems: []GridItemRecord{
		{Category: "lace", Name: "nupp", Column: 0, Row: 0, Width: 3, Height: 1, Color: defaultColor},
	}}
	c := newTestCanvas(t)
	require.NoError(t, c.LoadProject(p))

	it := c.ItemAt(2, 0)
	require.NotNil(t, it)
	require.NotNil(t, it.Symbol)
	assert.Equal(t, "nupp", it.Symbol.Name)
	assert.Equal(t, 3, it.Symbol.Width)
	assert.Equal(t, "?", it.Symbol.Glyph)
}

func TestAutoPrune(t *testing.T) {
	c := newTestCanvas(t)
	c.SetAutoPrune(true)
	c.SetActiveSymbol(testSymbol(t, c, "basic", "knit"))
	c.ToggleCell(0, 0)
	c.SetActiveSymbol(testSymbol(t, c, "basic", "purl"))
	c.ToggleCell(0, 0)

	require.Len(t, c.Legend(), 1)
	assert.Equal(t, "purl", c.Legend()[0].Symbol.Symbol.Name)
}

func TestPlaceCellOverlapPanics(t *testing.T) {
	c := newTestCanvas(t)
	assert.Panics(t, func() {
		c.placeCell(GridCell{Column: 1, Row: 1, Width: 1, Color: defaultColor})
	})
}
