package main

import (
	"image/color"
)

// GeometryHook is implemented by whatever draws an item. It is invoked
// before the item's row, column or position changes so cached geometry
// can be dropped.
type GeometryHook interface {
	PrepareGeometryChange()
}

// GridCell is one placed item of the pattern grid. A nil Symbol is an
// empty cell. Width is the number of unit cells the item spans.
type GridCell struct {
	Column int
	Row    int
	Width  int
	Color  color.RGBA
	Symbol *Symbol
}

func (c GridCell) ID() string {
	return cellID(c.Column, c.Row)
}

// GridItem is a GridCell placed on the canvas.
type GridItem struct {
	GridCell
	Height int
	Origin Point
	hook   GeometryHook
}

func (it *GridItem) prepareGeometryChange() {
	if it.hook != nil {
		it.hook.PrepareGeometryChange()
	}
}

// Bounds is the item's rectangle in canvas units.
func (it *GridItem) Bounds(unitWidth, unitHeight float64) Rect {
	return Rect{
		X: it.Origin.X,
		Y: it.Origin.Y,
		W: float64(it.Width) * unitWidth,
		H: float64(it.Height) * unitHeight,
	}
}

// Placement is a freely positioned legend graphic.
type Placement struct {
	Pos  Point
	hook GeometryHook
}

func (p *Placement) SetPos(pos Point) {
	if p.hook != nil {
		p.hook.PrepareGeometryChange()
	}
	p.Pos = pos
}

func (p *Placement) MoveBy(d Point) {
	p.SetPos(p.Pos.Add(d))
}

type LegendSymbol struct {
	Placement
	Symbol *Symbol
	Color  color.RGBA
}

type LegendLabel struct {
	Placement
	Description string
}

// LegendEntry pairs a symbol graphic and its description with the
// number of grid items using that symbol and color.
type LegendEntry struct {
	Count  int
	Symbol *LegendSymbol
	Text   *LegendLabel
}

// LegendID deduplicates legend entries sharing a symbol and color.
type LegendID struct {
	Name     string
	Category string
	Color    string
}

func computeLegendID(symbol *Symbol, c color.RGBA) LegendID {
	return LegendID{
		Name:     symbol.Name,
		Category: symbol.Category,
		Color:    colorName(c),
	}
}

// changeReferenceCount returns entry with its count moved by delta.
func changeReferenceCount(entry *LegendEntry, delta int) *LegendEntry {
	entry.Count += delta
	return entry
}

// maxLegendY returns the largest y position of any legend graphic, or 0.
func maxLegendY(legend map[LegendID]*LegendEntry) float64 {
	maxY := 0.0
	for _, entry := range legend {
		if entry.Symbol.Pos.Y > maxY {
			maxY = entry.Symbol.Pos.Y
		}
		if entry.Text.Pos.Y > maxY {
			maxY = entry.Text.Pos.Y
		}
	}
	return maxY
}
