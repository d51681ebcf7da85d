package interaction

import "cvview/internal/models"

type EditKind int

const (
	EditNone EditKind = iota
	EditMove
	EditResize
)

// Edit tracks a drag that moves or resizes an existing ROI. Geometry is
// always derived from the box and pointer captured at press time so that
// rounding does not accumulate over a long drag.
type Edit struct {
	kind      EditKind
	id        string
	handle    Handle
	pressPos  models.Point
	pressRect models.Rect
}

func (e *Edit) Active() bool   { return e.kind != EditNone }
func (e *Edit) Kind() EditKind { return e.kind }
func (e *Edit) ID() string     { return e.id }

func (e *Edit) BeginMove(id string, bounds models.Rect, p models.Point) {
	*e = Edit{kind: EditMove, id: id, pressPos: p, pressRect: bounds}
}

func (e *Edit) BeginResize(id string, bounds models.Rect, h Handle, p models.Point) {
	*e = Edit{kind: EditResize, id: id, handle: h, pressPos: p, pressRect: bounds}
}

// Update returns the bounds for pointer position p.
func (e *Edit) Update(p models.Point) models.Rect {
	delta := p.Sub(e.pressPos)
	switch e.kind {
	case EditMove:
		return e.pressRect.Translate(delta)
	case EditResize:
		return Resize(e.pressRect, e.handle, delta)
	default:
		return e.pressRect
	}
}

// Original is the box captured when the edit began.
func (e *Edit) Original() models.Rect { return e.pressRect }

func (e *Edit) End() {
	*e = Edit{}
}
