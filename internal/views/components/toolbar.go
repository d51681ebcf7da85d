package components

import (
	"cvview/internal/interaction"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var toolOrder = []interaction.Tool{
	interaction.ToolArrow,
	interaction.ToolRect,
	interaction.ToolOval,
	interaction.ToolZoom,
	interaction.ToolPan,
}

var toolLabels = map[interaction.Tool]string{
	interaction.ToolArrow: "Arrow",
	interaction.ToolRect:  "Rect",
	interaction.ToolOval:  "Oval",
	interaction.ToolZoom:  "Zoom",
	interaction.ToolPan:   "Pan",
}

// Toolbar holds the tool selection and view/ROI action buttons.
type Toolbar struct {
	container      *fyne.Container
	toolButtons    map[interaction.Tool]*widget.Button
	fitButton      *widget.Button
	zoomInButton   *widget.Button
	zoomOutButton  *widget.Button
	saveROIsButton *widget.Button
	loadROIsButton *widget.Button
	snapshotButton *widget.Button

	// Event handlers
	toolHandler     func(interaction.Tool)
	fitHandler      func()
	zoomInHandler   func()
	zoomOutHandler  func()
	saveROIsHandler func()
	loadROIsHandler func()
	snapshotHandler func()

	activeTool interaction.Tool
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	toolbar := &Toolbar{toolButtons: make(map[interaction.Tool]*widget.Button)}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	return toolbar
}

func (t *Toolbar) createComponents() {
	for _, tool := range toolOrder {
		t.toolButtons[tool] = widget.NewButton(toolLabels[tool], nil)
	}

	t.fitButton = widget.NewButtonWithIcon("Fit", theme.ZoomFitIcon(), nil)
	t.zoomInButton = widget.NewButtonWithIcon("", theme.ZoomInIcon(), nil)
	t.zoomOutButton = widget.NewButtonWithIcon("", theme.ZoomOutIcon(), nil)

	t.saveROIsButton = widget.NewButtonWithIcon("Save ROIs", theme.DocumentSaveIcon(), nil)
	t.loadROIsButton = widget.NewButtonWithIcon("Load ROIs", theme.FolderOpenIcon(), nil)
	t.snapshotButton = widget.NewButtonWithIcon("Snapshot", theme.MediaPhotoIcon(), nil)
	t.snapshotButton.Importance = widget.HighImportance
	t.snapshotButton.Disable()

	t.highlight(interaction.ToolArrow)
}

func (t *Toolbar) buildLayout() {
	tools := container.NewHBox()
	for _, tool := range toolOrder {
		tools.Add(t.toolButtons[tool])
	}

	viewSection := container.NewHBox(t.zoomOutButton, t.zoomInButton, t.fitButton)
	roiSection := container.NewHBox(t.saveROIsButton, t.loadROIsButton)

	t.container = container.NewHBox(
		tools,
		widget.NewSeparator(),
		viewSection,
		widget.NewSeparator(),
		roiSection,
		widget.NewSeparator(),
		t.snapshotButton,
	)
}

func (t *Toolbar) setupEventHandlers() {
	for _, tool := range toolOrder {
		t.toolButtons[tool].OnTapped = func() {
			if t.toolHandler != nil {
				t.toolHandler(tool)
			}
		}
	}

	t.fitButton.OnTapped = func() {
		if t.fitHandler != nil {
			t.fitHandler()
		}
	}

	t.zoomInButton.OnTapped = func() {
		if t.zoomInHandler != nil {
			t.zoomInHandler()
		}
	}

	t.zoomOutButton.OnTapped = func() {
		if t.zoomOutHandler != nil {
			t.zoomOutHandler()
		}
	}

	t.saveROIsButton.OnTapped = func() {
		if t.saveROIsHandler != nil {
			t.saveROIsHandler()
		}
	}

	t.loadROIsButton.OnTapped = func() {
		if t.loadROIsHandler != nil {
			t.loadROIsHandler()
		}
	}

	t.snapshotButton.OnTapped = func() {
		if t.snapshotHandler != nil {
			t.snapshotHandler()
		}
	}
}

func (t *Toolbar) SetToolHandler(handler func(interaction.Tool)) {
	t.toolHandler = handler
}

func (t *Toolbar) SetFitHandler(handler func()) {
	t.fitHandler = handler
}

func (t *Toolbar) SetZoomHandlers(in, out func()) {
	t.zoomInHandler = in
	t.zoomOutHandler = out
}

func (t *Toolbar) SetSaveROIsHandler(handler func()) {
	t.saveROIsHandler = handler
}

func (t *Toolbar) SetLoadROIsHandler(handler func()) {
	t.loadROIsHandler = handler
}

func (t *Toolbar) SetSnapshotHandler(handler func()) {
	t.snapshotHandler = handler
}

// SetActiveTool highlights the button of the tool handling input.
func (t *Toolbar) SetActiveTool(tool interaction.Tool) {
	t.highlight(tool)
}

func (t *Toolbar) ActiveTool() interaction.Tool {
	return t.activeTool
}

// EnableFrameOperations toggles actions that need a frame.
func (t *Toolbar) EnableFrameOperations(enabled bool) {
	if enabled {
		t.snapshotButton.Enable()
	} else {
		t.snapshotButton.Disable()
	}
}

func (t *Toolbar) highlight(active interaction.Tool) {
	t.activeTool = active
	for tool, button := range t.toolButtons {
		importance := widget.MediumImportance
		if tool == active {
			importance = widget.HighImportance
		}
		if button.Importance != importance {
			button.Importance = importance
			button.Refresh()
		}
	}
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
