package main

import (
	"fmt"
	"math"
	"strconv"
)

// Point is a position on the canvas in canvas units.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Rect is an axis aligned rectangle in canvas units.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Union returns the smallest rectangle containing both r and o.
// An empty rectangle is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Adjust grows the rectangle by margin on every side.
func (r Rect) Adjust(margin float64) Rect {
	return Rect{r.X - margin, r.Y - margin, r.W + 2*margin, r.H + 2*margin}
}

// pixelToCell converts a canvas position into a (column, row) pair.
// The result may lie outside the pattern grid.
func pixelToCell(pos Point, cellWidth, cellHeight float64) (int, int) {
	column := int(math.Floor(pos.X / cellWidth))
	row := int(math.Floor(pos.Y / cellHeight))
	return column, row
}

// cellToCenterPixel returns the center of the grid cell at (column, row).
func cellToCenterPixel(column, row int, cellWidth, cellHeight float64) Point {
	return Point{
		X: (float64(column) + 0.5) * cellWidth,
		Y: (float64(row) + 0.5) * cellHeight,
	}
}

func isInGrid(column, row, numColumns, numRows int) bool {
	return column >= 0 && column < numColumns && row >= 0 && row < numRows
}

// isOnLabelBorder reports whether (column, row) is one step outside the
// grid on either side, where the row and column labels live.
func isOnLabelBorder(column, row, numColumns, numRows int) bool {
	onRowLabels := (column == numColumns || column == -1) && row >= 0 && row < numRows
	onColumnLabels := (row == -1 || row == numRows) && column >= 0 && column < numColumns
	return onRowLabels || onColumnLabels
}

// cellID is the lookup key of the cell at (column, row).
func cellID(column, row int) string {
	return strconv.Itoa(column) + ":" + strconv.Itoa(row)
}

// gridPoint is a corner of a grid cell. The upper left corner of a cell
// shares the cell's (column, row); the other corners add one to either.
type gridPoint struct {
	Column, Row int
}

// edgeID names the edge between two grid points.
func edgeID(a, b gridPoint) string {
	return fmt.Sprintf("%d:%d:%d:%d", a.Column, a.Row, b.Column, b.Row)
}
