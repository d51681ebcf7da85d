package models

import "image/color"

type OverlayKind int

const (
	OverlayText OverlayKind = iota
	OverlayRect
	OverlayEllipse
)

// Overlay is a non-interactive annotation drawn over the current frame in
// image coordinates. Text overlays use Position as their top-left corner;
// shapes use Bounds.
type Overlay struct {
	Name        string
	Kind        OverlayKind
	Text        string
	Position    Point
	Bounds      Rect
	Color       color.Color
	StrokeWidth float32
	TextSize    float32
}

func TextOverlay(name, text string, pos Point, c color.Color) Overlay {
	return Overlay{Name: name, Kind: OverlayText, Text: text, Position: pos, Color: c}
}

func RectOverlay(name string, bounds Rect, c color.Color) Overlay {
	return Overlay{Name: name, Kind: OverlayRect, Bounds: bounds, Color: c, StrokeWidth: 1}
}

func EllipseOverlay(name string, bounds Rect, c color.Color) Overlay {
	return Overlay{Name: name, Kind: OverlayEllipse, Bounds: bounds, Color: c, StrokeWidth: 1}
}

// Drawable reports whether the overlay has something to render.
func (o Overlay) Drawable() bool {
	if o.Kind == OverlayText {
		return o.Text != ""
	}
	return !o.Bounds.Empty()
}
