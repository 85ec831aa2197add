package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"sort"
)

// ErrInvalidEdit is returned for row and column edits that cannot be
// applied to the current grid.
var ErrInvalidEdit = errors.New("invalid grid edit")

// GridSettings sizes a new canvas.
type GridSettings struct {
	Columns    int
	Rows       int
	CellWidth  float64
	CellHeight float64
}

// Canvas owns the pattern grid, the legend, the palette and the current
// selection of one project.
type Canvas struct {
	numRows    int
	numColumns int
	unitWidth  float64
	unitHeight float64

	items        map[string]*GridItem // keyed by the id of the item's first column
	maxItemWidth int

	selection    Selection
	legend       map[LegendID]*LegendEntry
	legendOrder  []LegendID
	colors       []ProjectColor
	activeSymbol *Symbol

	catalog   *SymbolCatalog
	hook      GeometryHook
	autoPrune bool
}

// PaintResult lists the cells a paint removed and the cells it added.
type PaintResult struct {
	Removed []GridCell
	Added   []GridCell
}

func NewCanvas(catalog *SymbolCatalog, settings GridSettings) *Canvas {
	c := &Canvas{
		numRows:    settings.Rows,
		numColumns: settings.Columns,
		unitWidth:  settings.CellWidth,
		unitHeight: settings.CellHeight,
		catalog:    catalog,
		colors:     defaultProjectColors(),
	}
	c.reset()
	c.setUpGrid()
	return c
}

func (c *Canvas) reset() {
	c.items = make(map[string]*GridItem)
	c.maxItemWidth = 1
	c.selection = NewSelection()
	c.legend = make(map[LegendID]*LegendEntry)
	c.legendOrder = nil
	if c.hook != nil {
		c.hook.PrepareGeometryChange()
	}
}

func (c *Canvas) setUpGrid() {
	for row := 0; row < c.numRows; row++ {
		for column := 0; column < c.numColumns; column++ {
			c.placeCell(c.emptyCell(column, row))
		}
	}
}

func (c *Canvas) emptyCell(column, row int) GridCell {
	return GridCell{Column: column, Row: row, Width: 1, Color: defaultColor}
}

func (c *Canvas) NumRows() int    { return c.numRows }
func (c *Canvas) NumColumns() int { return c.numColumns }

func (c *Canvas) UnitSize() (float64, float64) {
	return c.unitWidth, c.unitHeight
}

func (c *Canvas) SetAutoPrune(on bool) {
	c.autoPrune = on
}

// SetGeometryHook attaches h to every item and legend graphic, present
// and future.
func (c *Canvas) SetGeometryHook(h GeometryHook) {
	c.hook = h
	for _, it := range c.items {
		it.hook = h
	}
	for _, entry := range c.legend {
		entry.Symbol.hook = h
		entry.Text.hook = h
	}
}

// ItemAt returns the item covering (column, row), or nil.
func (c *Canvas) ItemAt(column, row int) *GridItem {
	for k := 0; k < c.maxItemWidth && column-k >= 0; k++ {
		if it, ok := c.items[cellID(column-k, row)]; ok && it.Width > k {
			return it
		}
	}
	return nil
}

// Items returns all grid items ordered by row, then column.
func (c *Canvas) Items() []*GridItem {
	items := make([]*GridItem, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Row != items[j].Row {
			return items[i].Row < items[j].Row
		}
		return items[i].Column < items[j].Column
	})
	return items
}

func (c *Canvas) placeCell(cell GridCell) *GridItem {
	for x := cell.Column; x < cell.Column+cell.Width; x++ {
		if other := c.ItemAt(x, cell.Row); other != nil {
			panic(fmt.Sprintf("grid slot %s already taken by item %s", cellID(x, cell.Row), other.ID()))
		}
	}
	it := &GridItem{
		GridCell: cell,
		Height:   1,
		Origin:   Point{float64(cell.Column) * c.unitWidth, float64(cell.Row) * c.unitHeight},
		hook:     c.hook,
	}
	c.items[cell.ID()] = it
	if cell.Width > c.maxItemWidth {
		c.maxItemWidth = cell.Width
	}
	c.addToLegend(cell)
	return it
}

func (c *Canvas) removeItem(it *GridItem) {
	it.prepareGeometryChange()
	delete(c.items, it.ID())
	c.removeFromLegend(it.GridCell)
}

// rekeyItems rebuilds the item index after items changed row or column.
func (c *Canvas) rekeyItems() {
	items := make(map[string]*GridItem, len(c.items))
	for _, it := range c.items {
		items[it.ID()] = it
	}
	c.items = items
}

// Selection returns the live selection. Callers must not modify it.
func (c *Canvas) Selection() Selection {
	return c.selection
}

// ToggleCell selects or deselects the item covering (column, row) and then
// tries to paint. It returns the paint result, or nil if nothing was
// painted.
func (c *Canvas) ToggleCell(column, row int) *PaintResult {
	it := c.ItemAt(column, row)
	if it == nil {
		return nil
	}
	if !c.selection.Deactivate(it.GridCell) {
		c.selection.Activate(it.GridCell)
	}
	return c.PaintSelection()
}

// SelectRow selects every item of row.
func (c *Canvas) SelectRow(row int) *PaintResult {
	if row < 0 || row >= c.numRows {
		return nil
	}
	for _, it := range c.items {
		if it.Row == row {
			c.selection.Activate(it.GridCell)
		}
	}
	return c.PaintSelection()
}

// SelectColumn selects every item covering column. Wide items starting
// left of column are included.
func (c *Canvas) SelectColumn(column int) *PaintResult {
	if column < 0 || column >= c.numColumns {
		return nil
	}
	cells := make([]GridCell, 0, len(c.items))
	for _, it := range c.items {
		cells = append(cells, it.GridCell)
	}
	byColumn := groupByColumn(cells)
	for start := max(0, column-c.maxItemWidth+1); start <= column; start++ {
		for _, cell := range byColumn[start] {
			if cell.Column+cell.Width > column {
				c.selection.Activate(cell)
			}
		}
	}
	return c.PaintSelection()
}

// SelectRect selects every item covering the unit cells of the rectangle
// between the two corners, inclusive.
func (c *Canvas) SelectRect(col1, row1, col2, row2 int) *PaintResult {
	if col1 > col2 {
		col1, col2 = col2, col1
	}
	if row1 > row2 {
		row1, row2 = row2, row1
	}
	for row := row1; row <= row2; row++ {
		for column := col1; column <= col2; column++ {
			if it := c.ItemAt(column, row); it != nil {
				c.selection.Activate(it.GridCell)
			}
		}
	}
	return c.PaintSelection()
}

func (c *Canvas) ClearSelection() {
	c.selection.Clear()
}

func (c *Canvas) ActiveSymbol() *Symbol {
	return c.activeSymbol
}

// SetActiveSymbol changes the symbol used for painting and tries to paint
// the current selection with it.
func (c *Canvas) SetActiveSymbol(s *Symbol) *PaintResult {
	c.activeSymbol = s
	return c.PaintSelection()
}

// PaintSelection places the active symbol onto the selection. The grid is
// left untouched when the selection cannot hold the symbol.
func (c *Canvas) PaintSelection() *PaintResult {
	if c.activeSymbol == nil || len(c.selection) == 0 {
		return nil
	}
	width := c.activeSymbol.Width
	chunks := chunkify(width, c.selection)
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		for _, cell := range chunk {
			it, ok := c.items[cell.ID()]
			if !ok || it.Width != cell.Width {
				return nil
			}
		}
	}

	paintColor := c.paintColor()
	result := &PaintResult{}
	for _, chunk := range chunks {
		column := chunk[0].Column
		row := chunk[0].Row
		total := numUnitCells(chunk)
		for _, cell := range chunk {
			it := c.items[cell.ID()]
			result.Removed = append(result.Removed, it.GridCell)
			c.removeItem(it)
		}
		for i := 0; i < total/width; i++ {
			cell := GridCell{
				Column: column,
				Row:    row,
				Width:  width,
				Color:  paintColor,
				Symbol: c.activeSymbol,
			}
			c.placeCell(cell)
			result.Added = append(result.Added, cell)
			column += width
		}
	}
	c.selection.Clear()
	c.afterEdit()
	return result
}

// paintColor is the symbol's own background if it has one, otherwise the
// active palette color.
func (c *Canvas) paintColor() color.RGBA {
	if c.activeSymbol != nil && c.activeSymbol.Background != "" {
		if bg, err := parseColor(c.activeSymbol.Background); err == nil {
			return bg
		}
	}
	for _, pc := range c.colors {
		if pc.Active != 0 {
			return pc.Color
		}
	}
	return defaultColor
}

// ReplaceCells removes the items at the ids of remove and places add.
// Undo and redo of a paint go through here.
func (c *Canvas) ReplaceCells(remove, add []GridCell) {
	for _, cell := range remove {
		if it, ok := c.items[cell.ID()]; ok {
			c.removeItem(it)
		}
	}
	for _, cell := range add {
		c.placeCell(cell)
	}
	c.selection.Clear()
	c.afterEdit()
}

func (c *Canvas) afterEdit() {
	if c.autoPrune {
		c.PruneLegend()
	}
}

// Colors returns the palette.
func (c *Canvas) Colors() []ProjectColor {
	return c.colors
}

// SetActiveColor makes palette slot i the painting color.
func (c *Canvas) SetActiveColor(i int) {
	if i < 0 || i >= len(c.colors) {
		return
	}
	for j := range c.colors {
		c.colors[j].Active = 0
	}
	c.colors[i].Active = 1
}

func (c *Canvas) SetColor(i int, col color.RGBA) {
	if i < 0 || i >= len(c.colors) {
		return
	}
	c.colors[i].Color = col
}

func (c *Canvas) addToLegend(cell GridCell) {
	if cell.Symbol == nil {
		return
	}
	id := computeLegendID(cell.Symbol, cell.Color)
	if entry, ok := c.legend[id]; ok {
		changeReferenceCount(entry, 1)
		return
	}

	symbolPos, labelPos := c.nextLegendPositions(cell.Symbol)
	description := cell.Symbol.Description
	if description == "" {
		description = cell.Symbol.Name
	}
	c.legend[id] = &LegendEntry{
		Count: 1,
		Symbol: &LegendSymbol{
			Placement: Placement{Pos: symbolPos, hook: c.hook},
			Symbol:    cell.Symbol,
			Color:     cell.Color,
		},
		Text: &LegendLabel{
			Placement:   Placement{Pos: labelPos, hook: c.hook},
			Description: description,
		},
	}
	c.legendOrder = append(c.legendOrder, id)
}

func (c *Canvas) removeFromLegend(cell GridCell) {
	if cell.Symbol == nil {
		return
	}
	id := computeLegendID(cell.Symbol, cell.Color)
	entry, ok := c.legend[id]
	if !ok {
		panic(fmt.Sprintf("no legend entry for placed symbol %v", id))
	}
	changeReferenceCount(entry, -1)
}

// nextLegendPositions puts a new legend row below everything already in
// the legend, or below the grid labels for the first one.
func (c *Canvas) nextLegendPositions(symbol *Symbol) (Point, Point) {
	y := float64(c.numRows+1)*c.unitHeight + legendTopMargin*c.unitHeight
	if len(c.legend) > 0 {
		y = max(y, maxLegendY(c.legend)+legendRowSpacing*c.unitHeight)
	}
	symbolPos := Point{X: 0, Y: y}
	labelPos := Point{X: float64(symbol.Width)*c.unitWidth + legendLabelGap*c.unitWidth, Y: y}
	return symbolPos, labelPos
}

// Legend returns the legend entries in creation order.
func (c *Canvas) Legend() []*LegendEntry {
	entries := make([]*LegendEntry, 0, len(c.legendOrder))
	for _, id := range c.legendOrder {
		entries = append(entries, c.legend[id])
	}
	return entries
}

// LegendIDs returns the legend keys in creation order.
func (c *Canvas) LegendIDs() []LegendID {
	return append([]LegendID(nil), c.legendOrder...)
}

func (c *Canvas) LegendEntry(id LegendID) *LegendEntry {
	return c.legend[id]
}

// SetLegendDescription changes the label text of a legend entry.
func (c *Canvas) SetLegendDescription(id LegendID, description string) error {
	entry, ok := c.legend[id]
	if !ok {
		return fmt.Errorf("%w: no entry for %s/%s %s", ErrInconsistentLegend, id.Category, id.Name, id.Color)
	}
	entry.Text.Description = description
	return nil
}

// PruneLegend drops legend entries no grid item uses anymore and returns
// how many were removed.
func (c *Canvas) PruneLegend() int {
	kept := c.legendOrder[:0]
	removed := 0
	for _, id := range c.legendOrder {
		if c.legend[id].Count <= 0 {
			delete(c.legend, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.legendOrder = kept
	return removed
}

// InsertRows adds count empty rows so that the first of them has index
// pivot. Everything at or after pivot moves down.
func (c *Canvas) InsertRows(pivot, count int) error {
	if count < 1 || pivot < 0 || pivot > c.numRows {
		return fmt.Errorf("%w: insert %d rows at %d", ErrInvalidEdit, count, pivot)
	}
	for _, it := range c.items {
		if it.Row >= pivot {
			shiftRow(it, count, c.unitHeight)
		}
	}
	c.rekeyItems()
	shiftLegendVertically(c.legend, count, c.unitHeight, c.numColumns, c.unitWidth)
	c.selection = shiftSelectionVertically(c.selection, pivot, count)
	c.numRows += count

	for row := pivot; row < pivot+count; row++ {
		for column := 0; column < c.numColumns; column++ {
			c.placeCell(c.emptyCell(column, row))
		}
	}
	return nil
}

// DeleteRows removes count rows starting at pivot. At least one row
// always remains.
func (c *Canvas) DeleteRows(pivot, count int) error {
	if count < 1 || pivot < 0 || pivot+count > c.numRows || count >= c.numRows {
		return fmt.Errorf("%w: delete %d rows at %d", ErrInvalidEdit, count, pivot)
	}
	end := pivot + count
	for _, it := range c.Items() {
		if it.Row >= pivot && it.Row < end {
			c.removeItem(it)
		}
	}
	for id, cell := range c.selection {
		if cell.Row >= pivot && cell.Row < end {
			delete(c.selection, id)
		}
	}

	for _, it := range c.items {
		if it.Row >= end {
			shiftRow(it, -count, c.unitHeight)
		}
	}
	c.rekeyItems()
	shiftLegendVertically(c.legend, -count, c.unitHeight, c.numColumns, c.unitWidth)
	c.selection = shiftSelectionVertically(c.selection, end, -count)
	c.numRows -= count
	c.afterEdit()
	return nil
}

// straddles reports whether an item crosses the boundary left of column.
func (c *Canvas) straddles(column int) bool {
	for _, it := range c.items {
		if it.Column < column && it.Column+it.Width > column {
			return true
		}
	}
	return false
}

// InsertColumns adds count empty columns so that the first of them has
// index pivot. The pivot may not split a multi-width item.
func (c *Canvas) InsertColumns(pivot, count int) error {
	if count < 1 || pivot < 0 || pivot > c.numColumns {
		return fmt.Errorf("%w: insert %d columns at %d", ErrInvalidEdit, count, pivot)
	}
	if c.straddles(pivot) {
		return fmt.Errorf("%w: column %d splits a multi-width stitch", ErrInvalidEdit, pivot)
	}
	for _, it := range c.items {
		if it.Column >= pivot {
			shiftColumn(it, count, c.unitWidth)
		}
	}
	c.rekeyItems()
	shiftLegendHorizontally(c.legend, count, c.unitWidth, c.numRows, c.unitHeight)
	c.selection = shiftSelectionHorizontally(c.selection, pivot, count)
	c.numColumns += count

	for row := 0; row < c.numRows; row++ {
		for column := pivot; column < pivot+count; column++ {
			c.placeCell(c.emptyCell(column, row))
		}
	}
	return nil
}

// DeleteColumns removes count columns starting at pivot. Neither edge of
// the removed block may split a multi-width item.
func (c *Canvas) DeleteColumns(pivot, count int) error {
	if count < 1 || pivot < 0 || pivot+count > c.numColumns || count >= c.numColumns {
		return fmt.Errorf("%w: delete %d columns at %d", ErrInvalidEdit, count, pivot)
	}
	end := pivot + count
	if c.straddles(pivot) || c.straddles(end) {
		return fmt.Errorf("%w: columns %d-%d split a multi-width stitch", ErrInvalidEdit, pivot, end-1)
	}
	for _, it := range c.Items() {
		if it.Column >= pivot && it.Column < end {
			c.removeItem(it)
		}
	}
	for id, cell := range c.selection {
		if cell.Column >= pivot && cell.Column < end {
			delete(c.selection, id)
		}
	}

	for _, it := range c.items {
		if it.Column >= end {
			shiftColumn(it, -count, c.unitWidth)
		}
	}
	c.rekeyItems()
	shiftLegendHorizontally(c.legend, -count, c.unitWidth, c.numRows, c.unitHeight)
	c.selection = shiftSelectionHorizontally(c.selection, end, -count)
	c.numColumns -= count
	c.afterEdit()
	return nil
}

// GridBounds is the rectangle covered by the grid cells alone.
func (c *Canvas) GridBounds() Rect {
	return Rect{0, 0, float64(c.numColumns) * c.unitWidth, float64(c.numRows) * c.unitHeight}
}

// ContentBounds is the rectangle covering the grid, its labels and the
// legend. textWidth measures a legend description.
func (c *Canvas) ContentBounds(textWidth func(string) float64) Rect {
	bounds := c.GridBounds()
	bounds = bounds.Union(Rect{0, 0, float64(c.numColumns+1) * c.unitWidth, float64(c.numRows+1) * c.unitHeight})
	for _, entry := range c.Legend() {
		symbolWidth := float64(entry.Symbol.Symbol.Width) * c.unitWidth
		bounds = bounds.Union(Rect{entry.Symbol.Pos.X, entry.Symbol.Pos.Y, symbolWidth, c.unitHeight})
		w := c.unitWidth
		if textWidth != nil {
			w = max(w, textWidth(entry.Text.Description))
		}
		bounds = bounds.Union(Rect{entry.Text.Pos.X, entry.Text.Pos.Y, w, c.unitHeight})
	}
	return bounds
}

// Snapshot captures the canvas as a Project. Legend entries nothing uses
// are left out.
func (c *Canvas) Snapshot() *Project {
	p := &Project{}
	for _, it := range c.Items() {
		record := GridItemRecord{
			Column: it.Column,
			Row:    it.Row,
			Width:  it.Width,
			Height: it.Height,
			Color:  it.Color,
		}
		if it.Symbol != nil {
			record.Category = it.Symbol.Category
			record.Name = it.Symbol.Name
		}
		p.GridItems = append(p.GridItems, record)
	}
	for _, entry := range c.Legend() {
		if entry.Count <= 0 {
			continue
		}
		p.LegendItems = append(p.LegendItems, legendRecord(entry))
	}
	p.Colors = append([]ProjectColor(nil), c.colors...)
	if c.activeSymbol != nil {
		key := c.activeSymbol.Key()
		p.ActiveSymbol = &key
	}
	return p
}

func legendRecord(entry *LegendEntry) LegendItemRecord {
	return LegendItemRecord{
		Category:    entry.Symbol.Symbol.Category,
		Name:        entry.Symbol.Symbol.Name,
		ItemX:       entry.Symbol.Pos.X,
		ItemY:       entry.Symbol.Pos.Y,
		LabelX:      entry.Text.Pos.X,
		LabelY:      entry.Text.Pos.Y,
		Color:       entry.Symbol.Color,
		Description: entry.Text.Description,
	}
}

// UnusedLegend returns the legend entries no grid item uses. Snapshot
// leaves them out.
func (c *Canvas) UnusedLegend() []LegendItemRecord {
	var records []LegendItemRecord
	for _, entry := range c.Legend() {
		if entry.Count <= 0 {
			records = append(records, legendRecord(entry))
		}
	}
	return records
}

// RestoreLegend adds records as unused legend entries. Records whose
// entry already exists are skipped.
func (c *Canvas) RestoreLegend(records []LegendItemRecord) {
	for _, rec := range records {
		id := LegendID{Name: rec.Name, Category: rec.Category, Color: colorName(rec.Color)}
		if _, ok := c.legend[id]; ok {
			continue
		}
		symbol := c.catalog.resolve(rec.Category, rec.Name, 1)
		if symbol == nil {
			continue
		}
		c.legend[id] = &LegendEntry{
			Symbol: &LegendSymbol{
				Placement: Placement{Pos: Point{rec.ItemX, rec.ItemY}, hook: c.hook},
				Symbol:    symbol,
				Color:     rec.Color,
			},
			Text: &LegendLabel{
				Placement:   Placement{Pos: Point{rec.LabelX, rec.LabelY}, hook: c.hook},
				Description: rec.Description,
			},
		}
		c.legendOrder = append(c.legendOrder, id)
	}
}

// projectExtent checks that the items of p tile without overlap and
// returns the grid size they need.
func projectExtent(p *Project) (int, int, error) {
	occupied := make(map[string]bool)
	numColumns, numRows := 0, 0
	for _, rec := range p.GridItems {
		if rec.Column < 0 || rec.Row < 0 || rec.Width < 1 {
			return 0, 0, fmt.Errorf("%w: grid item at %s has bad geometry",
				ErrUnreadableProject, cellID(rec.Column, rec.Row))
		}
		for x := rec.Column; x < rec.Column+rec.Width; x++ {
			id := cellID(x, rec.Row)
			if occupied[id] {
				return 0, 0, fmt.Errorf("%w: grid items overlap at %s", ErrUnreadableProject, id)
			}
			occupied[id] = true
		}
		numColumns = max(numColumns, rec.Column+rec.Width)
		numRows = max(numRows, rec.Row+1)
	}
	return numColumns, numRows, nil
}

// LoadProject replaces the canvas content with p. If p is not usable the
// canvas is not touched. Legend records matching no grid item are logged
// and reported as ErrInconsistentLegend after the rest has loaded.
func (c *Canvas) LoadProject(p *Project) error {
	numColumns, numRows, err := projectExtent(p)
	if err != nil {
		return err
	}

	c.reset()
	if len(p.GridItems) > 0 {
		c.numColumns = numColumns
		c.numRows = numRows
	}
	for _, rec := range p.GridItems {
		c.placeCell(GridCell{
			Column: rec.Column,
			Row:    rec.Row,
			Width:  rec.Width,
			Color:  rec.Color,
			Symbol: c.catalog.resolve(rec.Category, rec.Name, rec.Width),
		})
	}
	for row := 0; row < c.numRows; row++ {
		for column := 0; column < c.numColumns; column++ {
			if c.ItemAt(column, row) == nil {
				c.placeCell(c.emptyCell(column, row))
			}
		}
	}

	var errs []error
	order := make([]LegendID, 0, len(c.legendOrder))
	seen := make(map[LegendID]bool)
	for _, rec := range p.LegendItems {
		id := LegendID{Name: rec.Name, Category: rec.Category, Color: colorName(rec.Color)}
		entry, ok := c.legend[id]
		if !ok {
			log.Printf("legend entry %s/%s %s matches no grid item", rec.Category, rec.Name, id.Color)
			errs = append(errs, fmt.Errorf("%w: %s/%s %s", ErrInconsistentLegend, rec.Category, rec.Name, id.Color))
			continue
		}
		entry.Symbol.SetPos(Point{rec.ItemX, rec.ItemY})
		entry.Text.SetPos(Point{rec.LabelX, rec.LabelY})
		entry.Text.Description = rec.Description
		if !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for _, id := range c.legendOrder {
		if !seen[id] {
			order = append(order, id)
		}
	}
	c.legendOrder = order

	if len(p.Colors) > 0 {
		c.colors = padProjectColors(p.Colors)
	} else {
		c.colors = defaultProjectColors()
	}

	c.activeSymbol = nil
	if p.ActiveSymbol != nil {
		c.activeSymbol = c.catalog.Lookup(p.ActiveSymbol.Category, p.ActiveSymbol.Name)
		if c.activeSymbol == nil {
			log.Printf("active symbol %s not in catalog", p.ActiveSymbol)
		}
	}
	return errors.Join(errs...)
}
