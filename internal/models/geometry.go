package models

import (
	"fmt"
	"math"
)

// Point is a position in image coordinates.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned box given by its top-left corner and extent.
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"width"`
	H float64 `yaml:"height"`
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints spans the box between two arbitrary corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

func (r Rect) Min() Point    { return Point{X: r.X, Y: r.Y} }
func (r Rect) Max() Point    { return Point{X: r.X + r.W, Y: r.Y + r.H} }
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Empty reports zero, negative or non-finite extent.
func (r Rect) Empty() bool {
	if !finite(r.X) || !finite(r.Y) || !finite(r.W) || !finite(r.H) {
		return true
	}
	return r.W <= 0 || r.H <= 0
}

// Normalize flips negative extents so W and H are non-negative.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Ellipse is an axis-aligned ellipse.
type Ellipse struct {
	Center Point
	RX     float64
	RY     float64
}

// EllipseInRect returns the ellipse inscribed in r.
func EllipseInRect(r Rect) Ellipse {
	return Ellipse{Center: r.Center(), RX: r.W / 2, RY: r.H / 2}
}

// Bounds returns the bounding box of the ellipse.
func (e Ellipse) Bounds() Rect {
	return Rect{X: e.Center.X - e.RX, Y: e.Center.Y - e.RY, W: 2 * e.RX, H: 2 * e.RY}
}

// Contains reports whether p lies inside or on the ellipse.
func (e Ellipse) Contains(p Point) bool {
	if e.RX <= 0 || e.RY <= 0 {
		return false
	}
	dx := (p.X - e.Center.X) / e.RX
	dy := (p.Y - e.Center.Y) / e.RY
	return dx*dx+dy*dy <= 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
