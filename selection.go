package main

import (
	"slices"
	"sort"
)

// Selection holds the cells the user has picked, keyed by cell id.
// Entries are copies; shifting the grid does not move them.
type Selection map[string]GridCell

func NewSelection() Selection {
	return make(Selection)
}

// Activate adds cell. Activating a cell that is already present under
// the same id replaces nothing.
func (s Selection) Activate(cell GridCell) {
	id := cell.ID()
	if _, ok := s[id]; ok {
		return
	}
	s[id] = cell
}

// Deactivate removes cell and reports whether it was present.
func (s Selection) Deactivate(cell GridCell) bool {
	id := cell.ID()
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

func (s Selection) Contains(column, row int) bool {
	_, ok := s[cellID(column, row)]
	return ok
}

func (s Selection) Clear() {
	clear(s)
}

// Cells returns the selected cells ordered by row, then column.
func (s Selection) Cells() []GridCell {
	cells := make([]GridCell, 0, len(s))
	for _, cell := range s {
		cells = append(cells, cell)
	}
	sortByRowColumn(cells)
	return cells
}

func sortByRowColumn(cells []GridCell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Column < cells[j].Column
	})
}

// groupByRow groups cells by row, each row ordered by column.
func groupByRow(cells []GridCell) map[int][]GridCell {
	byRow := make(map[int][]GridCell)
	for _, cell := range cells {
		byRow[cell.Row] = append(byRow[cell.Row], cell)
	}
	for _, row := range byRow {
		sort.Slice(row, func(i, j int) bool { return row[i].Column < row[j].Column })
	}
	return byRow
}

// groupByColumn groups cells by column, each column ordered by row.
func groupByColumn(cells []GridCell) map[int][]GridCell {
	byColumn := make(map[int][]GridCell)
	for _, cell := range cells {
		byColumn[cell.Column] = append(byColumn[cell.Column], cell)
	}
	for _, column := range byColumn {
		sort.Slice(column, func(i, j int) bool { return column[i].Row < column[j].Row })
	}
	return byColumn
}

func sortedKeys(groups map[int][]GridCell) []int {
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// numUnitCells is the total width of cells in unit cells.
func numUnitCells(cells []GridCell) int {
	total := 0
	for _, cell := range cells {
		total += cell.Width
	}
	return total
}

// areConsecutive reports whether every chunk is non-empty and each of its
// cells starts where the previous one ends. Chunks must be column sorted.
func areConsecutive(chunks [][]GridCell) bool {
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			return false
		}
		next := chunk[0].Column + chunk[0].Width
		for _, cell := range chunk[1:] {
			if cell.Column != next {
				return false
			}
			next = cell.Column + cell.Width
		}
	}
	return true
}

// chunkify splits the selection into runs whose widths are multiples of
// width, one or more per row. Every row must be gap free. An empty result
// means a symbol of that width cannot be placed on the selection.
func chunkify(width int, sel Selection) [][]GridCell {
	if width < 1 {
		return nil
	}
	cells := sel.Cells()
	total := numUnitCells(cells)
	if total == 0 || total%width != 0 {
		return nil
	}

	byRow := groupByRow(cells)
	for _, row := range byRow {
		if numUnitCells(row)%width != 0 || !areConsecutive([][]GridCell{row}) {
			return nil
		}
	}

	var chunkList [][]GridCell
	for _, rowIndex := range sortedKeys(byRow) {
		var chunks [][]GridCell
		var chunk []GridCell
		length := 0
		for _, cell := range byRow[rowIndex] {
			chunk = append(chunk, cell)
			length += cell.Width
			if length%width == 0 {
				chunks = append(chunks, chunk)
				chunk = nil
				length = 0
			}
		}
		if !areConsecutive(chunks) {
			return nil
		}
		chunkList = append(chunkList, chunks...)
	}
	return chunkList
}

// isRectangular reports whether the selection is a gap free rectangle
// and returns its size in unit columns and rows.
func isRectangular(sel Selection) (bool, int, int) {
	if len(sel) == 0 {
		return false, 0, 0
	}
	byRow := groupByRow(sel.Cells())
	rows := sortedKeys(byRow)
	for i := 1; i < len(rows); i++ {
		if rows[i]-rows[i-1] != 1 {
			return false, 0, 0
		}
	}

	numColumns := -1
	for _, row := range byRow {
		width := numUnitCells(row)
		if numColumns == -1 {
			numColumns = width
		} else if width != numColumns {
			return false, 0, 0
		}
		if !areConsecutive([][]GridCell{row}) {
			return false, 0, 0
		}
	}
	return true, numColumns, len(rows)
}

// canOutline reports whether the selection is connected row to row and
// has no holes within a row. Rows may differ in width.
func canOutline(sel Selection) bool {
	if len(sel) == 0 {
		return false
	}
	byRow := groupByRow(sel.Cells())
	rows := sortedKeys(byRow)

	differences := make(map[int]struct{})
	for i := 1; i < len(rows); i++ {
		differences[rows[i]-rows[i-1]] = struct{}{}
	}
	if len(differences) > 1 {
		return false
	}
	if _, ok := differences[1]; len(differences) == 1 && !ok {
		return false
	}

	for _, row := range byRow {
		if !areConsecutive([][]GridCell{row}) {
			return false
		}
	}
	return true
}

// gridEdge is a unit length edge between two grid points.
type gridEdge struct {
	From, To gridPoint
}

func (e gridEdge) ID() string {
	return edgeID(e.From, e.To)
}

// outlineEdges returns the boundary edges of the selection, sorted by id.
// It returns nil when the selection cannot be outlined.
func outlineEdges(sel Selection) []gridEdge {
	if !canOutline(sel) {
		return nil
	}
	occupied := make(map[gridPoint]bool)
	for _, cell := range sel {
		for x := cell.Column; x < cell.Column+cell.Width; x++ {
			occupied[gridPoint{x, cell.Row}] = true
		}
	}

	edges := make(map[string]gridEdge)
	add := func(a, b gridPoint) {
		e := gridEdge{a, b}
		edges[e.ID()] = e
	}
	for unit := range occupied {
		x, y := unit.Column, unit.Row
		if !occupied[gridPoint{x, y - 1}] {
			add(gridPoint{x, y}, gridPoint{x + 1, y})
		}
		if !occupied[gridPoint{x, y + 1}] {
			add(gridPoint{x, y + 1}, gridPoint{x + 1, y + 1})
		}
		if !occupied[gridPoint{x - 1, y}] {
			add(gridPoint{x, y}, gridPoint{x, y + 1})
		}
		if !occupied[gridPoint{x + 1, y}] {
			add(gridPoint{x + 1, y}, gridPoint{x + 1, y + 1})
		}
	}

	ids := make([]string, 0, len(edges))
	for id := range edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]gridEdge, len(ids))
	for i, id := range ids {
		out[i] = edges[id]
	}
	return out
}
