package components

import (
	"fmt"

	"cvview/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays frame, zoom and ROI information. Its methods must run on
// the fyne goroutine.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	frameInfo   *widget.Label
	zoomInfo    *widget.Label
	roiInfo     *widget.Label
	droppedInfo *widget.Label
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.frameInfo = widget.NewLabel("No frame")
	sb.zoomInfo = widget.NewLabel("Zoom: --")
	sb.roiInfo = widget.NewLabel("ROIs: 0")
	sb.droppedInfo = widget.NewLabel("Dropped: 0")
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.frameInfo,
		widget.NewSeparator(),
		sb.zoomInfo,
		widget.NewSeparator(),
		sb.roiInfo,
		widget.NewSeparator(),
		sb.droppedInfo,
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) SetFrameInfo(width, height int, format models.PixelFormat) {
	sb.frameInfo.SetText(fmt.Sprintf("Frame: %dx%d %s", width, height, format))
}

func (sb *StatusBar) SetZoom(scale float64) {
	sb.zoomInfo.SetText(fmt.Sprintf("Zoom: %.0f%%", scale*100))
}

func (sb *StatusBar) SetROICount(n int) {
	sb.roiInfo.SetText(fmt.Sprintf("ROIs: %d", n))
}

func (sb *StatusBar) SetDropped(n uint64) {
	sb.droppedInfo.SetText(fmt.Sprintf("Dropped: %d", n))
}

// Text returns the label texts left to right, for tests and logs.
func (sb *StatusBar) Text() []string {
	return []string{
		sb.statusLabel.Text,
		sb.frameInfo.Text,
		sb.zoomInfo.Text,
		sb.roiInfo.Text,
		sb.droppedInfo.Text,
	}
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
