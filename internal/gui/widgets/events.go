package widgets

import (
	"cvview/internal/interaction"
	"cvview/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

var (
	_ fyne.Draggable     = (*ImageDisplay)(nil)
	_ fyne.Scrollable    = (*ImageDisplay)(nil)
	_ fyne.Tappable      = (*ImageDisplay)(nil)
	_ fyne.Focusable     = (*ImageDisplay)(nil)
	_ desktop.Mouseable  = (*ImageDisplay)(nil)
	_ desktop.Keyable    = (*ImageDisplay)(nil)
	_ desktop.Cursorable = (*ImageDisplay)(nil)
)

// MouseDown records the modifiers for the gesture that follows.
func (d *ImageDisplay) MouseDown(e *desktop.MouseEvent) {
	d.modifier = e.Modifier
	d.requestFocus()
}

func (d *ImageDisplay) MouseUp(e *desktop.MouseEvent) {
	d.modifier = e.Modifier
}

// Tapped handles clicks: the zoom tool zooms in (out with Alt) and centers the
// view on the clicked point, the arrow tool selects the topmost ROI under the
// pointer.
func (d *ImageDisplay) Tapped(e *fyne.PointEvent) {
	d.requestFocus()
	pos := point(e.Position)

	switch d.tools.Current() {
	case interaction.ToolZoom:
		factor := d.opts.ZoomStep
		if d.modifier&fyne.KeyModifierAlt != 0 {
			factor = 1 / factor
		}
		d.autoFit = false
		d.view.ZoomCentered(factor, pos)
		d.viewChanged()
		d.Refresh()
	case interaction.ToolArrow:
		id := ""
		if roi, ok := d.rois.HitTest(d.view.Transform().ToImage(pos)); ok {
			id = roi.ID
		}
		_ = d.SelectROI(id)
	}
}

func (d *ImageDisplay) Dragged(e *fyne.DragEvent) {
	pos := point(e.Position)
	delta := models.Pt(float64(e.Dragged.DX), float64(e.Dragged.DY))
	if !d.dragging {
		d.dragging = true
		d.beginDrag(pos.Sub(delta))
	}

	t := d.view.Transform()
	switch {
	case d.tools.Current() == interaction.ToolPan:
		d.autoFit = false
		d.view.Pan(delta.X, delta.Y)
		d.viewChanged()
	case d.drawing.Active():
		d.drawing.Update(t.ToImage(pos))
	case d.edit.Active():
		roi, ok := d.rois.Get(d.edit.ID())
		if !ok {
			d.edit.End()
			break
		}
		roi.Bounds = d.edit.Update(t.ToImage(pos))
		// Zero-extent boxes are refused; the ROI keeps its last valid shape.
		_ = d.rois.Replace(roi)
	default:
		return
	}
	d.Refresh()
}

func (d *ImageDisplay) DragEnd() {
	d.dragging = false

	switch {
	case d.drawing.Active():
		bounds, shape, ok := d.drawing.Commit()
		if !ok {
			d.logger.Debug("empty drawing discarded", nil)
			d.Refresh()
			return
		}
		roi, err := models.NewROI("", shape, bounds)
		if err == nil {
			roi, err = d.AddROI(roi)
		}
		if err != nil {
			d.logger.Warning("drawn roi rejected", map[string]interface{}{
				"error": err.Error(),
			})
			d.Refresh()
			return
		}
		_ = d.SelectROI(roi.ID)
	case d.edit.Active():
		id, original := d.edit.ID(), d.edit.Original()
		d.edit.End()
		if roi, ok := d.rois.Get(id); ok && roi.Bounds != original {
			d.roisChanged()
		}
	}
}

func (d *ImageDisplay) beginDrag(start models.Point) {
	t := d.view.Transform()
	p := t.ToImage(start)

	switch tool := d.tools.Current(); tool {
	case interaction.ToolRect, interaction.ToolOval:
		if d.frame == nil {
			return
		}
		shape, _ := tool.Shape()
		d.drawing.Begin(p, shape)
	case interaction.ToolArrow:
		if roi, ok := d.SelectedROI(); ok {
			size := float64(d.opts.HandleSize) / t.Scale
			if h := interaction.HandleAt(roi.Bounds, p, size); h != interaction.HandleNone {
				d.edit.BeginResize(roi.ID, roi.Bounds, h, p)
				return
			}
		}
		if roi, ok := d.rois.HitTest(p); ok {
			_ = d.SelectROI(roi.ID)
			d.edit.BeginMove(roi.ID, roi.Bounds, p)
		}
	}
}

// cancelGesture drops an unfinished drawing or edit.
func (d *ImageDisplay) cancelGesture() {
	if d.drawing.Active() {
		d.drawing.Cancel()
	}
	if d.edit.Active() {
		if roi, ok := d.rois.Get(d.edit.ID()); ok {
			roi.Bounds = d.edit.Original()
			_ = d.rois.Replace(roi)
		}
		d.edit.End()
	}
	d.dragging = false
}

// Scrolled zooms about the pointer, one step per wheel notch.
func (d *ImageDisplay) Scrolled(e *fyne.ScrollEvent) {
	switch {
	case e.Scrolled.DY > 0:
		d.zoomAt(d.opts.ZoomStep, point(e.Position))
	case e.Scrolled.DY < 0:
		d.zoomAt(1/d.opts.ZoomStep, point(e.Position))
	}
}

// KeyDown starts a temporary pan while Space is held.
func (d *ImageDisplay) KeyDown(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeySpace:
		if d.tools.BeginTemporaryPan() {
			d.cancelGesture()
			d.toolChanged()
		}
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		d.modifier |= fyne.KeyModifierAlt
	}
}

func (d *ImageDisplay) KeyUp(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeySpace:
		if d.tools.EndTemporaryPan() {
			d.dragging = false
			d.toolChanged()
		}
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		d.modifier &^= fyne.KeyModifierAlt
	}
}

// TypedKey removes the selected ROI on Delete or Backspace and aborts the
// current gesture on Escape.
func (d *ImageDisplay) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		if d.selected != "" {
			id := d.selected
			if err := d.RemoveROI(id); err != nil {
				d.logger.Warning("remove selected roi failed", map[string]interface{}{
					"id":    id,
					"error": err.Error(),
				})
			}
		}
	case fyne.KeyEscape:
		d.cancelGesture()
		_ = d.SelectROI("")
		d.Refresh()
	}
}

func (d *ImageDisplay) TypedRune(r rune) {
	switch r {
	case '+', '=':
		d.ZoomIn()
	case '-':
		d.ZoomOut()
	case '0':
		d.ZoomFit()
	}
}

func (d *ImageDisplay) FocusGained() { d.focused = true }
func (d *ImageDisplay) FocusLost()   { d.focused = false }

// Cursor implements desktop.Cursorable.
func (d *ImageDisplay) Cursor() desktop.Cursor {
	switch d.tools.Current() {
	case interaction.ToolRect, interaction.ToolOval, interaction.ToolZoom:
		return desktop.CrosshairCursor
	case interaction.ToolPan:
		return desktop.PointerCursor
	default:
		return desktop.DefaultCursor
	}
}

func (d *ImageDisplay) requestFocus() {
	if d.focused {
		return
	}
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	if c := app.Driver().CanvasForObject(d); c != nil {
		c.Focus(d)
	}
}
