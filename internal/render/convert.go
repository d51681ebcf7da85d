// Package render turns frames into Go images and composes them into the
// widget's raster.
package render

import (
	"image"

	"cvview/internal/models"
)

// ToImage copies f into a Go image. Gray frames become *image.Gray, three
// channel frames *image.RGBA and four channel frames *image.NRGBA (OpenCV
// alpha is not premultiplied). BGR orders are swapped to RGB.
func ToImage(f *models.Frame) (image.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, f.Width, f.Height)

	switch f.Format {
	case models.FormatGray8:
		img := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			copy(img.Pix[y*img.Stride:], f.Row(y))
		}
		return img, nil

	case models.FormatRGB24, models.FormatBGR24:
		img := image.NewRGBA(rect)
		r, b := 0, 2
		if f.Format == models.FormatBGR24 {
			r, b = 2, 0
		}
		for y := 0; y < f.Height; y++ {
			src := f.Row(y)
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < f.Width; x++ {
				s, d := x*3, x*4
				dst[d] = src[s+r]
				dst[d+1] = src[s+1]
				dst[d+2] = src[s+b]
				dst[d+3] = 0xff
			}
		}
		return img, nil

	case models.FormatRGBA32, models.FormatBGRA32:
		img := image.NewNRGBA(rect)
		for y := 0; y < f.Height; y++ {
			copy(img.Pix[y*img.Stride:], f.Row(y))
		}
		if f.Format == models.FormatBGRA32 {
			for i := 0; i+3 < len(img.Pix); i += 4 {
				img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
			}
		}
		return img, nil
	}

	return nil, &models.InvalidFrameError{Reason: "unsupported pixel format", Width: f.Width, Height: f.Height, Format: f.Format}
}
