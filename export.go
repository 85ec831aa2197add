package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// renderScene draws the grid, its labels and the legend. The selection is
// cleared first so it does not end up in the picture.
func renderScene(canvas *Canvas, scale float64) (*gg.Context, error) {
	canvas.ClearSelection()
	unitWidth, unitHeight := canvas.UnitSize()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    0.5 * unitHeight * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	textWidth := func(s string) float64 {
		w, _ := measure.MeasureString(s)
		return w / scale
	}

	bounds := canvas.ContentBounds(textWidth).Adjust(exportMargin)
	imageWidth := int(math.Ceil(bounds.W * scale))
	imageHeight := int(math.Ceil(bounds.H * scale))
	tx := func(x float64) float64 { return (x - bounds.X) * scale }
	ty := func(y float64) float64 { return (y - bounds.Y) * scale }

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetLineWidth(1.0)

	for _, it := range canvas.Items() {
		r := it.Bounds(unitWidth, unitHeight)
		drawCellPNG(dc, tx(r.X), ty(r.Y), r.W*scale, r.H*scale, it.Color, it.Symbol)
	}

	// row labels count up from the bottom, column labels from the right
	numRows, numColumns := canvas.NumRows(), canvas.NumColumns()
	dc.SetColor(color.Black)
	labelX := float64(numColumns)*unitWidth + 0.5*unitWidth
	for row := 0; row < numRows; row++ {
		center := cellToCenterPixel(0, row, unitWidth, unitHeight)
		dc.DrawStringAnchored(strconv.Itoa(numRows-row), tx(labelX), ty(center.Y), 0.5, 0.5)
	}
	labelY := float64(numRows)*unitHeight + 0.5*unitHeight
	for column := 0; column < numColumns; column++ {
		center := cellToCenterPixel(column, 0, unitWidth, unitHeight)
		dc.DrawStringAnchored(strconv.Itoa(numColumns-column), tx(center.X), ty(labelY), 0.5, 0.5)
	}

	for _, entry := range canvas.Legend() {
		if entry.Count <= 0 {
			continue
		}
		pos := entry.Symbol.Pos
		width := float64(entry.Symbol.Symbol.Width) * unitWidth
		drawCellPNG(dc, tx(pos.X), ty(pos.Y), width*scale, unitHeight*scale, entry.Symbol.Color, entry.Symbol.Symbol)

		dc.SetColor(color.Black)
		label := entry.Text.Pos
		dc.DrawStringAnchored(entry.Text.Description, tx(label.X), ty(label.Y+0.5*unitHeight), 0, 0.5)
	}
	return dc, nil
}

func drawCellPNG(dc *gg.Context, x, y, w, h float64, background color.RGBA, symbol *Symbol) {
	dc.SetColor(background)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	if symbol != nil && strings.TrimSpace(symbol.Glyph) != "" {
		dc.DrawStringAnchored(symbol.Glyph, x+w/2, y+h/2, 0.5, 0.5)
	}
}

// ExportToPNG writes the whole pattern to a PNG file.
func ExportToPNG(canvas *Canvas, filename string, scale float64) error {
	dc, err := renderScene(canvas, scale)
	if err != nil {
		return err
	}
	return dc.SavePNG(filename)
}

// printScene renders the pattern to a temporary PNG and hands it to the
// print command.
func printScene(canvas *Canvas, command string, scale float64) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("no print command configured")
	}
	tmp, err := os.CreateTemp("", "sconcho-*.png")
	if err != nil {
		return err
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := ExportToPNG(canvas, path, scale); err != nil {
		return err
	}
	fields := strings.Fields(command)
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", fields[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

// renderTextChart draws the pattern with plain characters: one line per
// row with its label, a line of column labels and the legend.
func renderTextChart(canvas *Canvas) []string {
	numRows, numColumns := canvas.NumRows(), canvas.NumColumns()
	lines := make([]string, 0, numRows+len(canvas.Legend())+3)

	for row := 0; row < numRows; row++ {
		var line strings.Builder
		line.WriteString("|")
		for column := 0; column < numColumns; {
			it := canvas.ItemAt(column, row)
			if it == nil {
				line.WriteString(strings.Repeat(" ", termCellWidth) + "|")
				column++
				continue
			}
			line.WriteString(cellText(it.Symbol, it.Width*termCellWidth+it.Width-1))
			line.WriteString("|")
			column = it.Column + it.Width
		}
		line.WriteString(" " + strconv.Itoa(numRows-row))
		lines = append(lines, line.String())
	}

	var labels strings.Builder
	labels.WriteString(" ")
	for column := 0; column < numColumns; column++ {
		labels.WriteString(centerText(strconv.Itoa(numColumns-column), termCellWidth) + " ")
	}
	lines = append(lines, strings.TrimRight(labels.String(), " "))

	legend := canvas.Legend()
	if len(legend) > 0 {
		lines = append(lines, "")
	}
	for _, entry := range legend {
		if entry.Count <= 0 {
			continue
		}
		width := entry.Symbol.Symbol.Width
		lines = append(lines, fmt.Sprintf("[%s] %s",
			cellText(entry.Symbol.Symbol, width*termCellWidth+width-1), entry.Text.Description))
	}
	return lines
}

// exportVisualTXT writes the text chart to a file.
func exportVisualTXT(canvas *Canvas, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range renderTextChart(canvas) {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}
