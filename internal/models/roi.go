package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Shape is the representation of an ROI.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeEllipse
)

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeEllipse:
		return "ellipse"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ParseShape accepts "rect"/"rectangle" and "ellipse"/"oval".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rect", "rectangle":
		return ShapeRect, nil
	case "ellipse", "oval":
		return ShapeEllipse, nil
	default:
		return ShapeRect, fmt.Errorf("unknown roi shape %q", s)
	}
}

func (s Shape) MarshalText() ([]byte, error) {
	if s != ShapeRect && s != ShapeEllipse {
		return nil, fmt.Errorf("unknown roi shape %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(b []byte) error {
	parsed, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ROI is a named editable region. Bounds is the canonical geometry for both
// shapes: a rectangle is Bounds itself, an ellipse is inscribed in Bounds.
type ROI struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name,omitempty"`
	Shape  Shape  `yaml:"shape"`
	Bounds Rect   `yaml:"bounds"`
}

// NewROI validates the geometry and assigns a fresh ID.
func NewROI(name string, shape Shape, bounds Rect) (ROI, error) {
	roi := ROI{ID: uuid.NewString(), Name: name, Shape: shape, Bounds: bounds}
	if err := roi.Validate(); err != nil {
		return ROI{}, err
	}
	return roi, nil
}

// NewEllipseROI builds an ellipse ROI from its center and radii.
func NewEllipseROI(name string, e Ellipse) (ROI, error) {
	return NewROI(name, ShapeEllipse, e.Bounds())
}

func (r ROI) Validate() error {
	if r.Shape != ShapeRect && r.Shape != ShapeEllipse {
		return &InvalidROIError{ID: r.ID, Bounds: r.Bounds, Reason: "unknown shape"}
	}
	if r.Bounds.Empty() {
		return &InvalidROIError{ID: r.ID, Bounds: r.Bounds, Reason: "zero or negative extent"}
	}
	return nil
}

// Ellipse returns the ellipse inscribed in the ROI bounds.
func (r ROI) Ellipse() Ellipse {
	return EllipseInRect(r.Bounds)
}

// Contains hit-tests p against the ROI's actual shape.
func (r ROI) Contains(p Point) bool {
	if r.Shape == ShapeEllipse {
		return r.Ellipse().Contains(p)
	}
	return r.Bounds.Contains(p)
}

// ConvertROI maps roi to the target representation. A rectangle becomes the
// ellipse inscribed in it and an ellipse becomes its bounding box, so the
// bounds are preserved exactly and a round trip is lossless.
func ConvertROI(roi ROI, target Shape) (ROI, error) {
	if err := roi.Validate(); err != nil {
		return ROI{}, err
	}
	if target != ShapeRect && target != ShapeEllipse {
		return ROI{}, &InvalidROIError{ID: roi.ID, Bounds: roi.Bounds, Reason: "unknown target shape"}
	}
	roi.Shape = target
	return roi, nil
}

// ROIMatrix lays out rows x cols ROIs of size w x h, the first at (x, y) and
// neighbours dx / dy apart.
func ROIMatrix(shape Shape, rows, cols int, dx, dy, x, y, w, h float64) ([]ROI, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("roi matrix needs positive rows and cols, got %dx%d", rows, cols)
	}
	rois := make([]ROI, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			roi, err := NewROI(fmt.Sprintf("r%dc%d", i, j), shape,
				R(x+float64(j)*dx, y+float64(i)*dy, w, h))
			if err != nil {
				return nil, err
			}
			rois = append(rois, roi)
		}
	}
	return rois, nil
}
