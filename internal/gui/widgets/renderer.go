package widgets

import (
	"image/color"

	"cvview/internal/interaction"
	"cvview/internal/models"
	"cvview/internal/viewport"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

const (
	minDisplayWidth  = 64
	minDisplayHeight = 48
	roiStroke        = 1.5
	selectedStroke   = 2.5
	labelSize        = 12
)

// imageDisplayRenderer draws the frame into a raster and rebuilds the
// annotation objects above it on every refresh.
type imageDisplayRenderer struct {
	display *ImageDisplay
	raster  *canvas.Raster
	shapes  []fyne.CanvasObject
	objects []fyne.CanvasObject
}

func newImageDisplayRenderer(d *ImageDisplay) *imageDisplayRenderer {
	r := &imageDisplayRenderer{display: d}
	r.raster = canvas.NewRaster(d.renderImage)
	r.raster.ScaleMode = canvas.ImageScalePixels
	r.rebuild()
	return r
}

func (r *imageDisplayRenderer) Layout(size fyne.Size) {
	r.display.setViewSize(size)
	r.raster.Move(fyne.NewPos(0, 0))
	r.raster.Resize(size)
	r.rebuild()
}

func (r *imageDisplayRenderer) MinSize() fyne.Size {
	return fyne.NewSize(minDisplayWidth, minDisplayHeight)
}

func (r *imageDisplayRenderer) Refresh() {
	r.rebuild()
	r.raster.Refresh()
	canvas.Refresh(r.display)
}

func (r *imageDisplayRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *imageDisplayRenderer) Destroy() {}

func (r *imageDisplayRenderer) rebuild() {
	d := r.display
	t := d.view.Transform()
	vw, vh := d.view.ViewSize()
	viewBounds := models.R(0, 0, vw, vh)

	shapes := r.shapes[:0]
	add := func(o fyne.CanvasObject, bounds models.Rect) {
		if o != nil && (vw <= 0 || intersects(bounds, viewBounds)) {
			shapes = append(shapes, o)
		}
	}

	if d.frame != nil {
		for _, o := range d.overlays {
			obj, bounds := r.overlayObject(o, t)
			add(obj, bounds)
		}
		for _, name := range d.textOrder {
			obj, bounds := r.overlayObject(d.texts[name], t)
			add(obj, bounds)
		}

		for _, roi := range d.rois.All() {
			selected := roi.ID == d.selected
			c, width := d.opts.ROIColor, float32(roiStroke)
			if selected {
				c, width = d.opts.SelectedColor, selectedStroke
			}
			vr := t.RectToView(roi.Bounds)
			add(outline(roi.Shape, vr, c, width), vr)
			if roi.Name != "" {
				label, lb := textObject(roi.Name, models.Pt(vr.X, vr.Y-labelSize-4), labelSize, c)
				add(label, lb)
			}
			if selected {
				for _, h := range interaction.AllHandles {
					hr := interaction.HandleRect(vr, h, float64(d.opts.HandleSize))
					add(handleObject(hr, d.opts.HandleColor, c), hr)
				}
			}
		}

		if d.drawing.Active() {
			vr := t.RectToView(d.drawing.Preview())
			add(outline(d.drawing.Shape(), vr, d.opts.SelectedColor, roiStroke), vr)
		}
	}

	r.shapes = shapes
	r.objects = append(r.objects[:0], r.raster)
	r.objects = append(r.objects, r.shapes...)
}

func (r *imageDisplayRenderer) overlayObject(o models.Overlay, t viewport.Transform) (fyne.CanvasObject, models.Rect) {
	if !o.Drawable() {
		return nil, models.Rect{}
	}
	c := o.Color
	if c == nil {
		c = r.display.opts.OverlayColor
	}
	width := o.StrokeWidth
	if width <= 0 {
		width = 1
	}
	switch o.Kind {
	case models.OverlayText:
		size := o.TextSize
		if size <= 0 {
			size = r.display.opts.TextSize
		}
		return textObject(o.Text, t.ToView(o.Position), size, c)
	case models.OverlayEllipse:
		vr := t.RectToView(o.Bounds)
		return outline(models.ShapeEllipse, vr, c, width), vr
	default:
		vr := t.RectToView(o.Bounds)
		return outline(models.ShapeRect, vr, c, width), vr
	}
}

func outline(shape models.Shape, vr models.Rect, c color.Color, width float32) fyne.CanvasObject {
	var obj fyne.CanvasObject
	if shape == models.ShapeEllipse {
		circle := canvas.NewCircle(color.Transparent)
		circle.StrokeColor = c
		circle.StrokeWidth = width
		obj = circle
	} else {
		rect := canvas.NewRectangle(color.Transparent)
		rect.StrokeColor = c
		rect.StrokeWidth = width
		obj = rect
	}
	place(obj, vr)
	return obj
}

func handleObject(vr models.Rect, fill, stroke color.Color) fyne.CanvasObject {
	rect := canvas.NewRectangle(fill)
	rect.StrokeColor = stroke
	rect.StrokeWidth = 1
	place(rect, vr)
	return rect
}

func textObject(text string, pos models.Point, size float32, c color.Color) (fyne.CanvasObject, models.Rect) {
	txt := canvas.NewText(text, c)
	txt.TextSize = size
	txt.Move(fyne.NewPos(float32(pos.X), float32(pos.Y)))
	extent := txt.MinSize()
	txt.Resize(extent)
	return txt, models.R(pos.X, pos.Y, float64(extent.Width), float64(extent.Height))
}

func place(obj fyne.CanvasObject, vr models.Rect) {
	obj.Move(fyne.NewPos(float32(vr.X), float32(vr.Y)))
	obj.Resize(fyne.NewSize(float32(vr.W), float32(vr.H)))
}

func intersects(a, b models.Rect) bool {
	return a.X <= b.X+b.W && b.X <= a.X+a.W && a.Y <= b.Y+b.H && b.Y <= a.Y+a.H
}
