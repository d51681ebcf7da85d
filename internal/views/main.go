package views

import (
	"errors"
	"fmt"

	"cvview/internal/gui/handoff"
	"cvview/internal/gui/widgets"
	"cvview/internal/interaction"
	"cvview/internal/logger"
	"cvview/internal/models"
	"cvview/internal/opencv/annotate"
	"cvview/internal/viewport"
	"cvview/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

var ErrNoFrame = errors.New("no frame to save")

var roiExtensions = []string{".roi", ".yaml", ".yml"}

// MainView places the tool bar above the image display and the status bar
// below it. All methods run on the fyne goroutine.
type MainView struct {
	window    fyne.Window
	content   *fyne.Container
	toolbar   *components.Toolbar
	display   *widgets.ImageDisplay
	statusBar *components.StatusBar
	logger    logger.Logger

	snapshotPath string

	roiChangedHandler func([]models.ROI)
}

// NewMainView builds the view around display. The caller sets it as the
// window content with window.SetContent(view.Content()).
func NewMainView(window fyne.Window, display *widgets.ImageDisplay, log logger.Logger) *MainView {
	view := &MainView{
		window:       window,
		display:      display,
		logger:       log.WithComponent("main_view"),
		snapshotPath: "snapshot.png",
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.toolbar.SetActiveTool(mv.display.ActiveTool())
	mv.statusBar = components.NewStatusBar()
	mv.statusBar.SetZoom(mv.display.Transform().Scale)
}

func (mv *MainView) buildLayout() {
	// The scroll container clips annotations that extend past the display.
	center := container.NewScroll(mv.display)

	mv.content = container.NewBorder(
		mv.toolbar.GetContainer(),   // top
		mv.statusBar.GetContainer(), // bottom
		nil,                         // left
		nil,                         // right
		center,                      // center
	)
}

func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetToolHandler(mv.display.SetTool)
	mv.toolbar.SetFitHandler(mv.display.ZoomFit)
	mv.toolbar.SetZoomHandlers(mv.display.ZoomIn, mv.display.ZoomOut)
	mv.toolbar.SetSaveROIsHandler(mv.showSaveROIsDialog)
	mv.toolbar.SetLoadROIsHandler(mv.showLoadROIsDialog)
	mv.toolbar.SetSnapshotHandler(func() {
		if err := mv.Snapshot(mv.snapshotPath); err != nil {
			mv.showError(err)
		}
	})

	mv.display.OnToolChanged = func(tool interaction.Tool) {
		mv.toolbar.SetActiveTool(tool)
	}
	mv.display.OnViewChanged = func(t viewport.Transform) {
		mv.statusBar.SetZoom(t.Scale)
	}
	mv.display.OnROIChanged = func(rois []models.ROI) {
		mv.statusBar.SetROICount(len(rois))
		if mv.roiChangedHandler != nil {
			mv.roiChangedHandler(rois)
		}
	}
}

// Content is the root object of the view.
func (mv *MainView) Content() fyne.CanvasObject {
	return mv.content
}

func (mv *MainView) Display() *widgets.ImageDisplay {
	return mv.display
}

func (mv *MainView) Toolbar() *components.Toolbar {
	return mv.toolbar
}

func (mv *MainView) StatusBar() *components.StatusBar {
	return mv.statusBar
}

// ShowToolbar shows or hides the tool bar.
func (mv *MainView) ShowToolbar(show bool) {
	if show {
		mv.toolbar.GetContainer().Show()
	} else {
		mv.toolbar.GetContainer().Hide()
	}
	mv.content.Refresh()
}

func (mv *MainView) SetSnapshotPath(path string) {
	mv.snapshotPath = path
}

// SetROIChangedHandler is called with the ROI list after every change.
func (mv *MainView) SetROIChangedHandler(handler func([]models.ROI)) {
	mv.roiChangedHandler = handler
}

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	mv.statusBar.SetStatus(status)
}

// RefreshStatus copies frame and handoff information into the status bar.
func (mv *MainView) RefreshStatus(stats handoff.Stats) {
	if f := mv.display.Frame(); f != nil {
		mv.statusBar.SetFrameInfo(f.Width, f.Height, f.Format)
	}
	mv.toolbar.EnableFrameOperations(mv.display.HasFrame())
	mv.statusBar.SetDropped(stats.Dropped)
	mv.statusBar.SetROICount(len(mv.display.ROIs()))
}

// SaveROIs writes the ROI set to path and reports the outcome in the status
// bar.
func (mv *MainView) SaveROIs(path string) error {
	if err := mv.display.SaveROIs(path); err != nil {
		mv.logger.Error("save rois failed", err, map[string]interface{}{"path": path})
		return err
	}
	mv.statusBar.SetStatus(fmt.Sprintf("Saved %d ROIs", len(mv.display.ROIs())))
	return nil
}

func (mv *MainView) LoadROIs(path string) error {
	if err := mv.display.LoadROIs(path); err != nil {
		mv.logger.Error("load rois failed", err, map[string]interface{}{"path": path})
		return err
	}
	mv.statusBar.SetStatus(fmt.Sprintf("Loaded %d ROIs", len(mv.display.ROIs())))
	return nil
}

// Snapshot writes the current frame with its overlays, texts and ROIs burnt
// in.
func (mv *MainView) Snapshot(path string) error {
	frame := mv.display.Frame()
	if frame == nil {
		return ErrNoFrame
	}

	selected := ""
	if roi, ok := mv.display.SelectedROI(); ok {
		selected = roi.ID
	}
	opts := mv.display.Options()
	scene := annotate.Scene{
		Overlays:      append(mv.display.Overlays(), mv.display.Texts()...),
		ROIs:          mv.display.ROIs(),
		Selected:      selected,
		ROIColor:      opts.ROIColor,
		SelectedColor: opts.SelectedColor,
	}
	if err := annotate.WriteSnapshot(path, frame, scene); err != nil {
		mv.logger.Error("snapshot failed", err, map[string]interface{}{"path": path})
		return err
	}

	mv.logger.Info("snapshot written", map[string]interface{}{"path": path})
	mv.statusBar.SetStatus("Snapshot saved to " + path)
	return nil
}

func (mv *MainView) showSaveROIsDialog() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mv.showError(err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := mv.SaveROIs(path); err != nil {
			mv.showError(err)
		}
	}, mv.window)
	d.SetFileName("rois.roi")
	d.SetFilter(storage.NewExtensionFileFilter(roiExtensions))
	d.Show()
}

func (mv *MainView) showLoadROIsDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.showError(err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := mv.LoadROIs(path); err != nil {
			mv.showError(err)
		}
	}, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter(roiExtensions))
	d.Show()
}

func (mv *MainView) showError(err error) {
	mv.statusBar.SetStatus("Error: " + err.Error())
	if mv.window != nil {
		dialog.ShowError(err, mv.window)
	}
}
