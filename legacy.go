package main

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"
)

const legacyRootTag = "sconcho"

// xmlNode is a generic element tree; the legacy format is matched tag by
// tag rather than through a fixed schema.
type xmlNode struct {
	XMLName  xml.Name
	Children []xmlNode `xml:",any"`
	Text     string    `xml:",chardata"`
}

func (n *xmlNode) tag() string {
	return n.XMLName.Local
}

func (n *xmlNode) firstChild() *xmlNode {
	if len(n.Children) == 0 {
		return nil
	}
	return &n.Children[0]
}

// fields maps child tag names to their trimmed text. A repeated tag keeps
// its last value.
func (n *xmlNode) fields() map[string]string {
	out := make(map[string]string, len(n.Children))
	for _, child := range n.Children {
		out[child.tag()] = strings.TrimSpace(child.Text)
	}
	return out
}

type legacyFields struct {
	element string
	values  map[string]string
	err     error
}

func (f *legacyFields) text(tag string) string {
	if f.err != nil {
		return ""
	}
	v, ok := f.values[tag]
	if !ok {
		f.err = fmt.Errorf("%w: %s has no %s", ErrLegacyField, f.element, tag)
	}
	return v
}

func (f *legacyFields) int(tag string) int {
	v := f.text(tag)
	if f.err != nil {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		f.err = fmt.Errorf("%w: %s.%s: %v", ErrLegacyField, f.element, tag, err)
	}
	return i
}

func (f *legacyFields) float(tag string) float64 {
	v := f.text(tag)
	if f.err != nil {
		return 0
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.err = fmt.Errorf("%w: %s.%s: %v", ErrLegacyField, f.element, tag, err)
	}
	return x
}

func (f *legacyFields) color(tag string) color.RGBA {
	v := f.text(tag)
	if f.err != nil {
		return color.RGBA{}
	}
	c, err := parseColor(v)
	if err != nil {
		f.err = fmt.Errorf("%w: %s.%s: %v", ErrLegacyField, f.element, tag, err)
	}
	return c
}

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeLegacyProject reads the old XML project format. Data that does not
// look like XML is declined.
func decodeLegacyProject(data []byte) (*Project, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return nil, errNotThisFormat
	}

	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableProject, err)
	}
	if root.tag() != legacyRootTag {
		return nil, fmt.Errorf("%w: root element is %q, not %q",
			ErrUnreadableProject, root.tag(), legacyRootTag)
	}
	log.Printf("reading project in the deprecated XML format")

	p := &Project{}
	for i := range root.Children {
		node := &root.Children[i]
		switch node.tag() {
		case "canvasItem":
			item := node.firstChild()
			if item == nil {
				continue
			}
			switch item.tag() {
			case "patternGridItem":
				record, err := parseLegacyGridItem(item)
				if err != nil {
					return nil, err
				}
				p.GridItems = append(p.GridItems, record)
			case "legendEntry":
				record, err := parseLegacyLegendItem(item)
				if err != nil {
					return nil, err
				}
				p.LegendItems = append(p.LegendItems, record)
			}
		case "projectColors":
			colors, err := parseLegacyColors(node)
			if err != nil {
				return nil, err
			}
			p.Colors = colors
		case "activeSymbol":
			p.ActiveSymbol = parseLegacyActiveSymbol(node)
		}
	}
	return p, nil
}

func parseLegacyGridItem(node *xmlNode) (GridItemRecord, error) {
	f := &legacyFields{element: node.tag(), values: node.fields()}
	record := GridItemRecord{
		Column:   f.int("colIndex"),
		Row:      f.int("rowIndex"),
		Width:    f.int("width"),
		Height:   f.int("height"),
		Color:    f.color("backgroundColor"),
		Category: f.text("patternCategory"),
		Name:     f.text("patternName"),
	}
	return record, f.err
}

func parseLegacyLegendItem(node *xmlNode) (LegendItemRecord, error) {
	f := &legacyFields{element: node.tag(), values: node.fields()}
	record := LegendItemRecord{
		Category:    f.text("patternCategory"),
		Name:        f.text("patternName"),
		ItemX:       f.float("itemXPos"),
		ItemY:       f.float("itemYPos"),
		LabelX:      f.float("labelXPos"),
		LabelY:      f.float("labelYPos"),
		Color:       f.color("backgroundColor"),
		Description: f.text("description"),
	}
	return record, f.err
}

func parseLegacyColors(node *xmlNode) ([]ProjectColor, error) {
	var colors []ProjectColor
	for i := range node.Children {
		child := &node.Children[i]
		if child.tag() != "color" {
			continue
		}
		f := &legacyFields{element: "color", values: child.fields()}
		c := ProjectColor{
			Color:  f.color("name"),
			Active: f.int("active"),
		}
		if f.err != nil {
			return nil, f.err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

func parseLegacyActiveSymbol(node *xmlNode) *SymbolKey {
	values := node.fields()
	name, hasName := values["patternName"]
	category, hasCategory := values["patternCategory"]
	if !hasName || !hasCategory {
		return nil
	}
	return &SymbolKey{Category: category, Name: name}
}
