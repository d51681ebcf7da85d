// Package viewport maps between image and view coordinates. A view point v
// relates to an image point p by v = p*Scale + Offset.
package viewport

import (
	"math"

	"cvview/internal/models"
)

// Transform is the scale and offset applied when rendering.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

var Identity = Transform{Scale: 1}

func (t Transform) ToView(p models.Point) models.Point {
	return models.Point{X: p.X*t.Scale + t.OffsetX, Y: p.Y*t.Scale + t.OffsetY}
}

func (t Transform) ToImage(v models.Point) models.Point {
	return models.Point{X: (v.X - t.OffsetX) / t.Scale, Y: (v.Y - t.OffsetY) / t.Scale}
}

func (t Transform) RectToView(r models.Rect) models.Rect {
	origin := t.ToView(r.Min())
	return models.Rect{X: origin.X, Y: origin.Y, W: r.W * t.Scale, H: r.H * t.Scale}
}

// Limits bound the transform. MinVisible is the extent, in view units, of the
// image that must stay inside the view on each axis.
type Limits struct {
	MinScale   float64
	MaxScale   float64
	MinVisible float64
}

var DefaultLimits = Limits{MinScale: 0.05, MaxScale: 40, MinVisible: 32}

// Viewport owns the current transform for an image shown in a view of a given
// size. The zero image or view size leaves offsets unclamped.
type Viewport struct {
	limits Limits
	t      Transform
	imageW float64
	imageH float64
	viewW  float64
	viewH  float64
}

func New(limits Limits) *Viewport {
	if limits.MinScale <= 0 {
		limits.MinScale = DefaultLimits.MinScale
	}
	if limits.MaxScale < limits.MinScale {
		limits.MaxScale = limits.MinScale
	}
	if limits.MinVisible < 0 {
		limits.MinVisible = 0
	}
	return &Viewport{limits: limits, t: Identity}
}

func (v *Viewport) Transform() Transform { return v.t }
func (v *Viewport) Limits() Limits       { return v.limits }
func (v *Viewport) Scale() float64       { return v.t.Scale }

func (v *Viewport) ViewSize() (float64, float64)  { return v.viewW, v.viewH }

// SetImageSize records new image dimensions and refits the view when they
// changed. It reports whether a refit happened.
func (v *Viewport) SetImageSize(w, h float64) bool {
	if w == v.imageW && h == v.imageH {
		return false
	}
	v.imageW, v.imageH = w, h
	v.Fit()
	return true
}

// SetViewSize records the view dimensions and re-clamps.
func (v *Viewport) SetViewSize(w, h float64) {
	if w == v.viewW && h == v.viewH {
		return
	}
	v.viewW, v.viewH = w, h
	v.clamp()
}

// Fit scales the image down to fit the view, never up, and centers it.
func (v *Viewport) Fit() {
	scale := 1.0
	if v.imageW > 0 && v.imageH > 0 && v.viewW > 0 && v.viewH > 0 {
		if v.imageW > v.viewW || v.imageH > v.viewH {
			scale = math.Min(v.viewW/v.imageW, v.viewH/v.imageH)
		}
	}
	v.t.Scale = v.clampScale(scale)
	v.t.OffsetX, v.t.OffsetY = 0, 0
	if v.viewW > 0 && v.viewH > 0 {
		v.t.OffsetX = (v.viewW - v.imageW*v.t.Scale) / 2
		v.t.OffsetY = (v.viewH - v.imageH*v.t.Scale) / 2
	}
	v.clamp()
}

// Zoom multiplies the scale by factor keeping the image point under anchor
// (view coordinates) fixed, subject to clamping.
func (v *Viewport) Zoom(factor float64, anchor models.Point) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	p := v.t.ToImage(anchor)
	v.t.Scale = v.clampScale(v.t.Scale * factor)
	v.t.OffsetX = anchor.X - p.X*v.t.Scale
	v.t.OffsetY = anchor.Y - p.Y*v.t.Scale
	v.clamp()
}

// ZoomCentered zooms by factor and then pans so the image point under anchor
// moves to the view center.
func (v *Viewport) ZoomCentered(factor float64, anchor models.Point) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	p := v.t.ToImage(anchor)
	v.t.Scale = v.clampScale(v.t.Scale * factor)
	v.t.OffsetX = v.viewW/2 - p.X*v.t.Scale
	v.t.OffsetY = v.viewH/2 - p.Y*v.t.Scale
	v.clamp()
}

// Pan shifts the image by (dx, dy) view units.
func (v *Viewport) Pan(dx, dy float64) {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return
	}
	v.t.OffsetX += dx
	v.t.OffsetY += dy
	v.clamp()
}

// OffsetBounds returns the allowed offset range on each axis for the current
// scale.
func (v *Viewport) OffsetBounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = axisBounds(v.imageW*v.t.Scale, v.viewW, v.limits.MinVisible)
	minY, maxY = axisBounds(v.imageH*v.t.Scale, v.viewH, v.limits.MinVisible)
	return minX, maxX, minY, maxY
}

func (v *Viewport) clampScale(s float64) float64 {
	return math.Max(v.limits.MinScale, math.Min(v.limits.MaxScale, s))
}

func (v *Viewport) clamp() {
	if v.imageW <= 0 || v.imageH <= 0 || v.viewW <= 0 || v.viewH <= 0 {
		return
	}
	minX, maxX, minY, maxY := v.OffsetBounds()
	v.t.OffsetX = math.Max(minX, math.Min(maxX, v.t.OffsetX))
	v.t.OffsetY = math.Max(minY, math.Min(maxY, v.t.OffsetY))
}

// axisBounds keeps at least m = min(minVisible, content, view) of the content
// inside [0, view].
func axisBounds(content, view, minVisible float64) (float64, float64) {
	m := math.Min(minVisible, math.Min(content, view))
	return m - content, view - m
}
