package main

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
)

var (
	// ErrUnreadableProject marks a project file whose contents cannot be
	// understood, as opposed to one that cannot be opened.
	ErrUnreadableProject = errors.New("unreadable project")

	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported API version", ErrUnreadableProject)
	ErrLegacyField        = fmt.Errorf("%w: bad legacy field", ErrUnreadableProject)

	// ErrInconsistentLegend means a legend record matches no grid item.
	ErrInconsistentLegend = errors.New("inconsistent legend")

	// errNotThisFormat lets a format decline a file so the next format in
	// projectFormats gets a try.
	errNotThisFormat = errors.New("not this format")
)

// GridItemRecord is a persisted grid item. Empty cells have an empty
// category and name.
type GridItemRecord struct {
	Category string
	Name     string
	Column   int
	Row      int
	Width    int
	Height   int
	Color    color.RGBA
}

// LegendItemRecord is a persisted legend entry with the positions of its
// symbol and its label.
type LegendItemRecord struct {
	Category    string
	Name        string
	ItemX       float64
	ItemY       float64
	LabelX      float64
	LabelY      float64
	Color       color.RGBA
	Description string
}

// Project is everything a project file stores. A nil ActiveSymbol means
// no symbol was active.
type Project struct {
	GridItems    []GridItemRecord
	LegendItems  []LegendItemRecord
	Colors       []ProjectColor
	ActiveSymbol *SymbolKey
}

type projectFormat struct {
	name   string
	decode func(data []byte) (*Project, error)
}

// projectFormats are tried in order; the first one that does not decline
// the file decides the outcome.
var projectFormats = []projectFormat{
	{name: "binary", decode: decodeBinaryProject},
	{name: "legacy xml", decode: decodeLegacyProject},
}

func decodeProject(data []byte) (*Project, error) {
	for _, format := range projectFormats {
		p, err := format.decode(data)
		if errors.Is(err, errNotThisFormat) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s format: %w", format.name, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: unrecognized file type", ErrUnreadableProject)
}

// ReadProject loads a project file in any supported format.
func ReadProject(filename string) (*Project, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	p, err := decodeProject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	return p, nil
}

// SaveProject writes p in the binary format. The destination is
// truncated first; a failure part way leaves a partial file behind.
func SaveProject(filename string, p *Project) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	if err := writeProjectTo(file, p); err != nil {
		file.Close()
		return fmt.Errorf("failed to save: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func writeProjectTo(w io.Writer, p *Project) error {
	bw := bufio.NewWriter(w)
	if err := writeBinaryProject(bw, p); err != nil {
		return err
	}
	return bw.Flush()
}
