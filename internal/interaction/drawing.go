package interaction

import "cvview/internal/models"

// Drawing is the in-progress state of an ROI being dragged out. Points are in
// image coordinates.
type Drawing struct {
	active bool
	shape  models.Shape
	start  models.Point
	end    models.Point
}

func (d *Drawing) Active() bool        { return d.active }
func (d *Drawing) Shape() models.Shape { return d.shape }

func (d *Drawing) Begin(p models.Point, shape models.Shape) {
	d.active = true
	d.shape = shape
	d.start = p
	d.end = p
}

func (d *Drawing) Update(p models.Point) {
	if d.active {
		d.end = p
	}
}

// Preview is the normalized box spanned so far.
func (d *Drawing) Preview() models.Rect {
	return models.RectFromPoints(d.start, d.end)
}

// Commit ends the drawing. It reports false for a drawing that never started
// or has zero extent, which callers discard.
func (d *Drawing) Commit() (models.Rect, models.Shape, bool) {
	if !d.active {
		return models.Rect{}, d.shape, false
	}
	r := d.Preview()
	d.active = false
	return r, d.shape, !r.Empty()
}

func (d *Drawing) Cancel() {
	d.active = false
}
