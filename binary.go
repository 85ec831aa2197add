package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"golang.org/x/text/encoding/unicode"
)

const (
	magicNumber      = 0xA3D1
	apiVersion       = 1
	numReservedSlots = 5

	// a string of this length is a null string
	nullStringLength = 0xFFFFFFFF

	noActiveSymbol = "None"
)

// color models as stored in front of each color
const (
	colorModelInvalid = 0
	colorModelRgb     = 1
	colorModelHsv     = 2
	colorModelCmyk    = 3
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// streamWriter writes big-endian fields and keeps the first error.
type streamWriter struct {
	w   io.Writer
	err error
}

func (s *streamWriter) write(v any) {
	if s.err != nil {
		return
	}
	s.err = binary.Write(s.w, binary.BigEndian, v)
}

func (s *streamWriter) int32(v int) {
	s.write(int32(v))
}

func (s *streamWriter) int16(v int) {
	s.write(int16(v))
}

func (s *streamWriter) double(v float64) {
	s.write(v)
}

// string writes the byte length followed by UTF-16 code units.
func (s *streamWriter) string(v string) {
	if s.err != nil {
		return
	}
	encoded, err := utf16BE.NewEncoder().Bytes([]byte(v))
	if err != nil {
		s.err = fmt.Errorf("encoding %q: %w", v, err)
		return
	}
	s.write(uint32(len(encoded)))
	if s.err == nil {
		_, s.err = s.w.Write(encoded)
	}
}

// color writes the color model, alpha, red, green, blue and padding, each channel
// scaled to 16 bits.
func (s *streamWriter) color(c color.RGBA) {
	s.write(int8(colorModelRgb))
	s.write([5]uint16{
		uint16(c.A) * 0x101,
		uint16(c.R) * 0x101,
		uint16(c.G) * 0x101,
		uint16(c.B) * 0x101,
		0,
	})
}

// streamReader is the reading counterpart of streamWriter.
type streamReader struct {
	r   *bytes.Reader
	err error
}

func newStreamReader(data []byte) *streamReader {
	return &streamReader{r: bytes.NewReader(data)}
}

func (s *streamReader) read(v any) {
	if s.err != nil {
		return
	}
	if err := binary.Read(s.r, binary.BigEndian, v); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		s.err = err
	}
}

func (s *streamReader) int32() int {
	var v int32
	s.read(&v)
	return int(v)
}

func (s *streamReader) int16() int {
	var v int16
	s.read(&v)
	return int(v)
}

func (s *streamReader) double() float64 {
	var v float64
	s.read(&v)
	return v
}

func (s *streamReader) string() string {
	var length uint32
	s.read(&length)
	if s.err != nil || length == nullStringLength {
		return ""
	}
	if length%2 != 0 {
		s.err = fmt.Errorf("odd string length %d", length)
		return ""
	}
	if int64(length) > int64(s.r.Len()) {
		s.err = io.ErrUnexpectedEOF
		return ""
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(s.r, raw); err != nil {
		s.err = io.ErrUnexpectedEOF
		return ""
	}
	decoded, err := utf16BE.NewDecoder().Bytes(raw)
	if err != nil {
		s.err = fmt.Errorf("decoding string: %w", err)
		return ""
	}
	return string(decoded)
}

func (s *streamReader) color() color.RGBA {
	var colorModel int8
	var channels [5]uint16
	s.read(&colorModel)
	s.read(&channels)
	if s.err != nil {
		return color.RGBA{}
	}
	alpha := uint8(channels[0] >> 8)
	switch colorModel {
	case colorModelInvalid:
		return color.RGBA{}
	case colorModelRgb:
		return color.RGBA{
			R: uint8(channels[1] >> 8),
			G: uint8(channels[2] >> 8),
			B: uint8(channels[3] >> 8),
			A: alpha,
		}
	case colorModelHsv:
		hue := 0.0
		if channels[1] != math.MaxUint16 {
			hue = float64(channels[1]) / 100.0
		}
		return hsvColor(hue, float64(channels[2])/65535.0, float64(channels[3])/65535.0, alpha)
	case colorModelCmyk:
		return cmykColor(
			float64(channels[1])/65535.0,
			float64(channels[2])/65535.0,
			float64(channels[3])/65535.0,
			float64(channels[4])/65535.0,
			alpha,
		)
	default:
		s.err = fmt.Errorf("unknown color model %d", colorModel)
		return color.RGBA{}
	}
}

// count reads an item count and rejects values the remaining data
// cannot possibly hold.
func (s *streamReader) count() int {
	n := s.int32()
	if s.err == nil && (n < 0 || n > s.r.Len()) {
		s.err = fmt.Errorf("implausible item count %d", n)
		return 0
	}
	return n
}

func writeBinaryProject(w io.Writer, p *Project) error {
	s := &streamWriter{w: w}

	s.int32(magicNumber)
	s.int32(apiVersion)
	s.int32(len(p.GridItems))
	s.int32(len(p.LegendItems))
	s.int32(len(p.Colors))
	for i := 0; i < numReservedSlots; i++ {
		s.int32(0)
	}

	for _, item := range p.GridItems {
		s.string(item.Category)
		s.string(item.Name)
		s.int32(item.Column)
		s.int32(item.Row)
		s.int32(item.Width)
		s.int32(item.Height)
		s.color(item.Color)
	}

	for _, item := range p.LegendItems {
		s.string(item.Category)
		s.string(item.Name)
		s.double(item.ItemX)
		s.double(item.ItemY)
		s.double(item.LabelX)
		s.double(item.LabelY)
		s.color(item.Color)
		s.string(item.Description)
	}

	for _, c := range p.Colors {
		s.color(c.Color)
		s.int16(c.Active)
	}

	if p.ActiveSymbol != nil {
		s.string(p.ActiveSymbol.Category)
		s.string(p.ActiveSymbol.Name)
	} else {
		s.string(noActiveSymbol)
		s.string(noActiveSymbol)
	}

	return s.err
}

func decodeBinaryProject(data []byte) (*Project, error) {
	s := newStreamReader(data)

	magic := s.int32()
	if s.err != nil || magic != magicNumber {
		return nil, errNotThisFormat
	}
	version := s.int32()
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableProject, s.err)
	}
	if version != apiVersion {
		return nil, fmt.Errorf("%w: file has version %d, supported is %d",
			ErrUnsupportedVersion, version, apiVersion)
	}

	numGridItems := s.count()
	numLegendItems := s.count()
	numColors := s.count()
	for i := 0; i < numReservedSlots; i++ {
		s.int32()
	}
	if s.err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrUnreadableProject, s.err)
	}

	p := &Project{}
	for i := 0; i < numGridItems && s.err == nil; i++ {
		var item GridItemRecord
		item.Category = s.string()
		item.Name = s.string()
		item.Column = s.int32()
		item.Row = s.int32()
		item.Width = s.int32()
		item.Height = s.int32()
		item.Color = s.color()
		p.GridItems = append(p.GridItems, item)
	}

	for i := 0; i < numLegendItems && s.err == nil; i++ {
		var item LegendItemRecord
		item.Category = s.string()
		item.Name = s.string()
		item.ItemX = s.double()
		item.ItemY = s.double()
		item.LabelX = s.double()
		item.LabelY = s.double()
		item.Color = s.color()
		item.Description = s.string()
		p.LegendItems = append(p.LegendItems, item)
	}

	for i := 0; i < numColors && s.err == nil; i++ {
		var c ProjectColor
		c.Color = s.color()
		c.Active = s.int16()
		p.Colors = append(p.Colors, c)
	}

	category := s.string()
	name := s.string()
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableProject, s.err)
	}
	if category != noActiveSymbol {
		p.ActiveSymbol = &SymbolKey{Category: category, Name: name}
	}

	if s.r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes of trailing data", ErrUnreadableProject, s.r.Len())
	}
	return p, nil
}
