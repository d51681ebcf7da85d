// Package conversion moves pixels between gocv Mats and frames.
package conversion

import (
	"fmt"
	"runtime"

	"cvview/internal/models"

	"gocv.io/x/gocv"
)

// FrameFromMat copies an 8-bit Mat into a frame. Channel order is kept as
// OpenCV stores it, so 3 and 4 channel Mats become BGR24 and BGRA32.
func FrameFromMat(mat gocv.Mat) (*models.Frame, error) {
	if err := ValidateMat(mat, "frame conversion"); err != nil {
		return nil, err
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	format, err := FormatForMatType(src.Type())
	if err != nil {
		return nil, err
	}
	return models.NewFrame(src.Cols(), src.Rows(), format, src.ToBytes())
}

// MatFromFrame builds a BGR-ordered Mat from a frame. The caller owns the
// returned Mat and must Close it.
func MatFromFrame(f *models.Frame) (gocv.Mat, error) {
	if err := f.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	matType, err := MatTypeForFormat(f.Format)
	if err != nil {
		return gocv.NewMat(), err
	}

	data := packed(f)
	view, err := gocv.NewMatFromBytes(f.Height, f.Width, matType, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("mat creation failed: %w", err)
	}
	// view may alias data; everything returned is a copy.
	defer runtime.KeepAlive(data)
	defer view.Close()

	var code gocv.ColorConversionCode
	switch f.Format {
	case models.FormatRGB24:
		code = gocv.ColorRGBToBGR
	case models.FormatRGBA32:
		code = gocv.ColorRGBAToBGRA
	default:
		return view.Clone(), nil
	}

	bgr := gocv.NewMat()
	gocv.CvtColor(view, &bgr, code)
	if bgr.Empty() {
		bgr.Close()
		return gocv.NewMat(), fmt.Errorf("color conversion from %s failed", f.Format)
	}
	return bgr, nil
}

// FormatForMatType maps 8-bit Mat types onto pixel formats.
func FormatForMatType(t gocv.MatType) (models.PixelFormat, error) {
	switch t {
	case gocv.MatTypeCV8UC1:
		return models.FormatGray8, nil
	case gocv.MatTypeCV8UC3:
		return models.FormatBGR24, nil
	case gocv.MatTypeCV8UC4:
		return models.FormatBGRA32, nil
	default:
		return models.FormatUnknown, fmt.Errorf("unsupported MatType %d", int(t))
	}
}

// MatTypeForFormat is the inverse of FormatForMatType; RGB formats map onto
// the Mat type with the same channel count.
func MatTypeForFormat(p models.PixelFormat) (gocv.MatType, error) {
	switch p.Channels() {
	case 1:
		return gocv.MatTypeCV8UC1, nil
	case 3:
		return gocv.MatTypeCV8UC3, nil
	case 4:
		return gocv.MatTypeCV8UC4, nil
	default:
		return gocv.MatTypeCV8UC1, fmt.Errorf("unsupported pixel format %s", p)
	}
}

// packed returns the frame's pixels without row padding.
func packed(f *models.Frame) []byte {
	rowBytes := f.Width * f.Format.Channels()
	if f.Stride == rowBytes {
		return f.Data
	}
	out := make([]byte, 0, rowBytes*f.Height)
	for y := 0; y < f.Height; y++ {
		out = append(out, f.Row(y)...)
	}
	return out
}
