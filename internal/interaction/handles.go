package interaction

import "cvview/internal/models"

// Handle identifies one of the eight resize grips around a selected ROI.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopMiddle
	HandleTopRight
	HandleMiddleLeft
	HandleMiddleRight
	HandleBottomLeft
	HandleBottomMiddle
	HandleBottomRight
)

// AllHandles lists the grips in drawing order.
var AllHandles = []Handle{
	HandleTopLeft, HandleTopMiddle, HandleTopRight,
	HandleMiddleLeft, HandleMiddleRight,
	HandleBottomLeft, HandleBottomMiddle, HandleBottomRight,
}

// HandleRect returns the square grip of the given size centered on the
// matching point of r's outline.
func HandleRect(r models.Rect, h Handle, size float64) models.Rect {
	var c models.Point
	switch h {
	case HandleTopLeft:
		c = models.Pt(r.X, r.Y)
	case HandleTopMiddle:
		c = models.Pt(r.X+r.W/2, r.Y)
	case HandleTopRight:
		c = models.Pt(r.X+r.W, r.Y)
	case HandleMiddleLeft:
		c = models.Pt(r.X, r.Y+r.H/2)
	case HandleMiddleRight:
		c = models.Pt(r.X+r.W, r.Y+r.H/2)
	case HandleBottomLeft:
		c = models.Pt(r.X, r.Y+r.H)
	case HandleBottomMiddle:
		c = models.Pt(r.X+r.W/2, r.Y+r.H)
	case HandleBottomRight:
		c = models.Pt(r.X+r.W, r.Y+r.H)
	default:
		return models.Rect{}
	}
	return models.Rect{X: c.X - size/2, Y: c.Y - size/2, W: size, H: size}
}

// HandleAt returns the grip of r under p, or HandleNone.
func HandleAt(r models.Rect, p models.Point, size float64) Handle {
	for _, h := range AllHandles {
		if HandleRect(r, h, size).Contains(p) {
			return h
		}
	}
	return HandleNone
}

// Resize moves the edges belonging to h by delta, starting from the box
// captured at press time. Dragging an edge past its opposite flips the box
// instead of producing a negative extent.
func Resize(pressed models.Rect, h Handle, delta models.Point) models.Rect {
	left, top := pressed.X, pressed.Y
	right, bottom := pressed.X+pressed.W, pressed.Y+pressed.H

	switch h {
	case HandleTopLeft:
		left += delta.X
		top += delta.Y
	case HandleTopMiddle:
		top += delta.Y
	case HandleTopRight:
		right += delta.X
		top += delta.Y
	case HandleMiddleLeft:
		left += delta.X
	case HandleMiddleRight:
		right += delta.X
	case HandleBottomLeft:
		left += delta.X
		bottom += delta.Y
	case HandleBottomMiddle:
		bottom += delta.Y
	case HandleBottomRight:
		right += delta.X
		bottom += delta.Y
	default:
		return pressed
	}
	return models.Rect{X: left, Y: top, W: right - left, H: bottom - top}.Normalize()
}
