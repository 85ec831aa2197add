package main

import "log"

func (m *model) undo() {
	buf := m.getCurrentBuffer()
	if buf == nil || len(buf.undoStack) == 0 {
		return
	}

	lastIndex := len(buf.undoStack) - 1
	action := buf.undoStack[lastIndex]
	buf.undoStack = buf.undoStack[:lastIndex]

	switch action.Type {
	case ActionPaint:
		data := action.Inverse.(PaintData)
		buf.canvas.ReplaceCells(data.Removed, data.Added)
	case ActionGridEdit:
		data := action.Inverse.(GridEditData)
		if err := buf.canvas.LoadProject(data.Before); err != nil {
			log.Printf("undo grid edit: %v", err)
		}
		buf.canvas.RestoreLegend(data.BeforeUnused)
	}

	buf.modified = true
	buf.redoStack = append(buf.redoStack, action)
	m.ensureCursorInBounds()
}

func (m *model) redo() {
	buf := m.getCurrentBuffer()
	if buf == nil || len(buf.redoStack) == 0 {
		return
	}

	lastIndex := len(buf.redoStack) - 1
	action := buf.redoStack[lastIndex]
	buf.redoStack = buf.redoStack[:lastIndex]

	switch action.Type {
	case ActionPaint:
		data := action.Data.(PaintData)
		buf.canvas.ReplaceCells(data.Removed, data.Added)
	case ActionGridEdit:
		data := action.Data.(GridEditData)
		if err := buf.canvas.LoadProject(data.After); err != nil {
			log.Printf("redo grid edit: %v", err)
		}
		buf.canvas.RestoreLegend(data.AfterUnused)
	}

	buf.modified = true
	buf.undoStack = append(buf.undoStack, action)
	m.ensureCursorInBounds()
}

// recordPaint puts a successful paint on the undo stack.
func (m *model) recordPaint(result *PaintResult) {
	if result == nil {
		return
	}
	data := PaintData{Removed: result.Removed, Added: result.Added}
	inverse := PaintData{Removed: result.Added, Added: result.Removed}
	m.recordAction(ActionPaint, data, inverse)
}
