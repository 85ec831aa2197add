package main

type Buffer struct {
	canvas    *Canvas
	undoStack []Action
	redoStack []Action
	filename  string
	modified  bool
}

type model struct {
	width              int
	height             int
	cursorX            int // grid column under the cursor
	cursorY            int // grid row under the cursor
	buffers            []Buffer
	currentBufferIndex int
	mode               Mode
	help               bool
	helpScroll         int
	filename           string
	fileList           []string
	selectedFileIndex  int
	fileOp             FileOperation
	openInNewBuffer    bool
	confirmAction      ConfirmAction
	symbolIndex        int
	colorIndex         int
	editText           string
	editCursorPos      int
	editLegendID       LegendID
	countInput         string
	pendingEdit        GridEdit
	errorMessage       string
	successMessage     string
	config             *Config
	catalog            *SymbolCatalog
	view               *gridView
	symbolChanges      chan struct{}
}

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

// PaintData is what a paint replaced. The inverse swaps the two lists.
type PaintData struct {
	Removed []GridCell
	Added   []GridCell
}

// GridEditData records a structural edit together with the canvas before
// and after it. Unused legend entries are kept apart since snapshots drop
// them.
type GridEditData struct {
	Edit         GridEdit
	Pivot        int
	Count        int
	Before       *Project
	After        *Project
	BeforeUnused []LegendItemRecord
	AfterUnused  []LegendItemRecord
}
