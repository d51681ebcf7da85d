// Package annotate burns overlays and ROIs into image pixels.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"cvview/internal/models"
	"cvview/internal/opencv/conversion"

	"gocv.io/x/gocv"
)

const (
	defaultTextSize = 14
	// Hershey simplex glyphs are roughly this many pixels tall at scale 1.
	hersheyHeight = 22
)

// Scene is everything drawn on top of a frame.
type Scene struct {
	Overlays      []models.Overlay
	ROIs          []models.ROI
	Selected      string
	ROIColor      color.Color
	SelectedColor color.Color
}

// Draw renders the scene into mat in image coordinates.
func Draw(mat *gocv.Mat, scene Scene) {
	for _, o := range scene.Overlays {
		if !o.Drawable() {
			continue
		}
		c := rgba(o.Color, color.White)
		thickness := strokeWidth(o.StrokeWidth)
		switch o.Kind {
		case models.OverlayText:
			drawText(mat, o.Text, o.Position, o.TextSize, c)
		case models.OverlayRect:
			gocv.Rectangle(mat, intRect(o.Bounds), c, thickness)
		case models.OverlayEllipse:
			drawEllipse(mat, o.Bounds, c, thickness)
		}
	}

	for _, roi := range scene.ROIs {
		c := rgba(scene.ROIColor, color.RGBA{G: 255, A: 255})
		thickness := 1
		if roi.ID == scene.Selected {
			c = rgba(scene.SelectedColor, color.RGBA{R: 255, G: 255, A: 255})
			thickness = 2
		}
		switch roi.Shape {
		case models.ShapeEllipse:
			drawEllipse(mat, roi.Bounds, c, thickness)
		default:
			gocv.Rectangle(mat, intRect(roi.Bounds), c, thickness)
		}
		if roi.Name != "" {
			drawText(mat, roi.Name, models.Pt(roi.Bounds.X, roi.Bounds.Y-defaultTextSize-2), defaultTextSize, c)
		}
	}
}

// WriteSnapshot draws the scene over a copy of frame and writes it to path.
// The file format follows the extension.
func WriteSnapshot(path string, frame *models.Frame, scene Scene) error {
	if filepath.Ext(path) == "" {
		return fmt.Errorf("snapshot path %q has no extension", path)
	}
	mat, err := conversion.MatFromFrame(frame)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer mat.Close()

	Draw(&mat, scene)

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to write snapshot %s", path)
	}
	return nil
}

func drawText(mat *gocv.Mat, text string, pos models.Point, size float32, c color.RGBA) {
	if size <= 0 {
		size = defaultTextSize
	}
	scale := float64(size) / hersheyHeight
	extent := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, 1)
	origin := image.Pt(round(pos.X), round(pos.Y)+extent.Y)
	gocv.PutText(mat, text, origin, gocv.FontHersheySimplex, scale, c, 1)
}

func drawEllipse(mat *gocv.Mat, bounds models.Rect, c color.RGBA, thickness int) {
	e := models.EllipseInRect(bounds)
	center := image.Pt(round(e.Center.X), round(e.Center.Y))
	axes := image.Pt(round(e.RX), round(e.RY))
	gocv.Ellipse(mat, center, axes, 0, 0, 360, c, thickness)
}

func intRect(r models.Rect) image.Rectangle {
	return image.Rect(round(r.X), round(r.Y), round(r.X+r.W), round(r.Y+r.H))
}

func rgba(c, def color.Color) color.RGBA {
	if c == nil {
		c = def
	}
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func strokeWidth(w float32) int {
	if w < 1 {
		return 1
	}
	return int(math.Round(float64(w)))
}

func round(v float64) int {
	return int(math.Round(v))
}
