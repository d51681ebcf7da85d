// Package imageio loads still images into frames.
package imageio

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"cvview/internal/models"

	"github.com/disintegration/imaging"
)

var supported = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Supported reports whether path has an extension Load can decode.
func Supported(path string) bool {
	return supported[strings.ToLower(filepath.Ext(path))]
}

// Load decodes the image at path, applies its EXIF orientation and returns it
// as an RGBA32 frame.
func Load(path string) (*models.Frame, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return FrameFromImage(img)
}

// FrameFromImage copies any image.Image into a tightly packed RGBA32 frame.
func FrameFromImage(img image.Image) (*models.Frame, error) {
	if img == nil {
		return nil, &models.InvalidFrameError{Reason: "nil image"}
	}
	// Clone normalizes to NRGBA with a zero origin.
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	if nrgba.Stride == b.Dx()*4 {
		return models.NewFrame(b.Dx(), b.Dy(), models.FormatRGBA32, nrgba.Pix)
	}
	data := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := 0; y < b.Dy(); y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+b.Dx()*4]
		data = append(data, row...)
	}
	return models.NewFrame(b.Dx(), b.Dy(), models.FormatRGBA32, data)
}
