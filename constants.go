package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeSymbolSelect
	ModeColorSelect
	ModeFileInput
	ModeDescriptionEdit
	ModeCountInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveVisualTXT
	FileOpOpen
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmNewPattern
	ConfirmCloseBuffer
	ConfirmOverwriteFile
	ConfirmPrint
)

type ActionType int

const (
	ActionPaint ActionType = iota
	ActionGridEdit
)

// structural edits entered with a count
type GridEdit int

const (
	EditInsertRows GridEdit = iota
	EditDeleteRows
	EditInsertColumns
	EditDeleteColumns
)

const (
	defaultGridRows    = 10
	defaultGridColumns = 10
	defaultCellWidth   = 30.0
	defaultCellHeight  = 30.0

	numPaletteSlots = 10

	// legend layout, in unit cells
	legendTopMargin  = 1.0
	legendRowSpacing = 1.5
	legendLabelGap   = 0.5

	// margin around exported and printed images, in canvas units
	exportMargin = 10.0

	// terminal characters per grid cell
	termCellWidth = 3

	projectExtension = ".spf"
)
