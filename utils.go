package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 {
		return nil
	}
	return &m.buffers[m.currentBufferIndex]
}

func (m *model) getCanvas() *Canvas {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.canvas
	}
	return nil
}

func (m *model) newCanvas() *Canvas {
	canvas := NewCanvas(m.catalog, m.config.GridSettings())
	canvas.SetAutoPrune(m.config.AutoPruneLegend)
	canvas.SetGeometryHook(m.view)
	return canvas
}

func (m *model) addNewBuffer(canvas *Canvas, filename string) {
	buffer := Buffer{
		canvas:    canvas,
		undoStack: []Action{},
		redoStack: []Action{},
		filename:  filename,
	}
	m.buffers = append(m.buffers, buffer)
	m.currentBufferIndex = len(m.buffers) - 1
	m.cursorX, m.cursorY = 0, 0
}

func (m *model) closeCurrentBuffer() {
	if len(m.buffers) <= 1 {
		m.buffers[0] = Buffer{canvas: m.newCanvas()}
		m.currentBufferIndex = 0
		return
	}
	m.buffers = append(m.buffers[:m.currentBufferIndex], m.buffers[m.currentBufferIndex+1:]...)
	if m.currentBufferIndex >= len(m.buffers) {
		m.currentBufferIndex = len(m.buffers) - 1
	}
	m.ensureCursorInBounds()
}

func (m *model) recordAction(actionType ActionType, data, inverse interface{}) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	action := Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	}
	buf.undoStack = append(buf.undoStack, action)
	buf.redoStack = buf.redoStack[:0]
	buf.modified = true
}

// applyGridEdit runs a row or column edit at the cursor and records it.
func (m *model) applyGridEdit(edit GridEdit, count int) error {
	canvas := m.getCanvas()
	if canvas == nil {
		return nil
	}
	before := canvas.Snapshot()
	beforeUnused := canvas.UnusedLegend()
	var err error
	var pivot int
	switch edit {
	case EditInsertRows:
		pivot = m.cursorY
		err = canvas.InsertRows(pivot, count)
	case EditDeleteRows:
		pivot = m.cursorY
		err = canvas.DeleteRows(pivot, count)
	case EditInsertColumns:
		pivot = m.cursorX
		err = canvas.InsertColumns(pivot, count)
	case EditDeleteColumns:
		pivot = m.cursorX
		err = canvas.DeleteColumns(pivot, count)
	}
	if err != nil {
		return err
	}
	data := GridEditData{
		Edit:         edit,
		Pivot:        pivot,
		Count:        count,
		Before:       before,
		After:        canvas.Snapshot(),
		BeforeUnused: beforeUnused,
		AfterUnused:  canvas.UnusedLegend(),
	}
	m.recordAction(ActionGridEdit, data, data)
	m.ensureCursorInBounds()
	return nil
}

// withExtension appends ext unless the name already ends in it.
func withExtension(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

func copyChartToClipboard(canvas *Canvas) error {
	text := strings.Join(renderTextChart(canvas), "\n")
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
