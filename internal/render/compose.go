package render

import (
	"image"
	"image/color"

	"cvview/internal/viewport"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Quality selects the resampling kernel.
type Quality int

const (
	QualityFast Quality = iota
	QualitySmooth
)

// pixelPeepScale is the zoom above which individual pixels are shown as
// sharp blocks even in smooth mode.
const pixelPeepScale = 2.0

func interpolator(q Quality, scale float64) draw.Interpolator {
	if q == QualityFast || scale >= pixelPeepScale {
		return draw.NearestNeighbor
	}
	return draw.ApproxBiLinear
}

// Compose fills dst with bg and draws src through t. pixelScale converts view
// units to dst pixels (the canvas scale on high-DPI screens).
func Compose(dst *image.RGBA, src image.Image, t viewport.Transform, pixelScale float64, q Quality, bg color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if src == nil {
		return
	}
	if pixelScale <= 0 {
		pixelScale = 1
	}
	s := t.Scale * pixelScale
	s2d := f64.Aff3{
		s, 0, t.OffsetX * pixelScale,
		0, s, t.OffsetY * pixelScale,
	}
	interpolator(q, t.Scale).Transform(dst, s2d, src, src.Bounds(), draw.Over, nil)
}

// Compositor reuses its destination buffer between renders of equal size.
type Compositor struct {
	buf *image.RGBA
}

func (c *Compositor) Render(w, h int, src image.Image, t viewport.Transform, pixelScale float64, q Quality, bg color.Color) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	if c.buf == nil || c.buf.Rect.Dx() != w || c.buf.Rect.Dy() != h {
		c.buf = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	Compose(c.buf, src, t, pixelScale, q, bg)
	return c.buf
}
