package main

// shiftRow moves item by delta rows.
func shiftRow(item *GridItem, delta int, unitCellHeight float64) {
	item.prepareGeometryChange()
	item.Row += delta
	item.Origin.Y += float64(delta) * unitCellHeight
}

// shiftColumn moves item by delta columns.
func shiftColumn(item *GridItem, delta int, unitCellWidth float64) {
	item.prepareGeometryChange()
	item.Column += delta
	item.Origin.X += float64(delta) * unitCellWidth
}

// shiftLegendVertically moves legend graphics lying below the top of the
// grid and not right of it down by rowShift rows. Graphics above or to
// the right of the grid stay put. Symbol and text are tested separately.
func shiftLegendVertically(legend map[LegendID]*LegendEntry, rowShift int,
	unitCellHeight float64, numColumns int, unitWidth float64) {

	yShift := Point{Y: float64(rowShift) * unitCellHeight}
	rightEdge := float64(numColumns) * unitWidth
	for _, entry := range legend {
		for _, p := range []*Placement{&entry.Symbol.Placement, &entry.Text.Placement} {
			if p.Pos.Y >= 0 && p.Pos.X <= rightEdge {
				p.MoveBy(yShift)
			}
		}
	}
}

// shiftLegendHorizontally moves legend graphics lying right of the left
// grid edge and within the grid's vertical extent right by columnShift.
func shiftLegendHorizontally(legend map[LegendID]*LegendEntry, columnShift int,
	unitCellWidth float64, numRows int, unitHeight float64) {

	xShift := Point{X: float64(columnShift) * unitCellWidth}
	bottomEdge := float64(numRows) * unitHeight
	for _, entry := range legend {
		for _, p := range []*Placement{&entry.Symbol.Placement, &entry.Text.Placement} {
			if p.Pos.X >= 0 && p.Pos.Y >= 0 && p.Pos.Y <= bottomEdge {
				p.MoveBy(xShift)
			}
		}
	}
}

// shiftSelectionVertically returns a new selection in which every cell at
// or below pivot has moved by rowShift rows, re-keyed by its new id.
func shiftSelectionVertically(sel Selection, pivot, rowShift int) Selection {
	out := make(Selection, len(sel))
	for _, cell := range sel {
		if cell.Row >= pivot {
			cell.Row += rowShift
		}
		out[cell.ID()] = cell
	}
	return out
}

// shiftSelectionHorizontally is the column analog of
// shiftSelectionVertically.
func shiftSelectionHorizontally(sel Selection, pivot, columnShift int) Selection {
	out := make(Selection, len(sel))
	for _, cell := range sel {
		if cell.Column >= pivot {
			cell.Column += columnShift
		}
		out[cell.ID()] = cell
	}
	return out
}
