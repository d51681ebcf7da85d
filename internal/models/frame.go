package models

import (
	"fmt"
	"time"
)

// PixelFormat describes the channel layout of a frame buffer. All formats use
// one byte per channel.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatGray8
	FormatBGR24
	FormatRGB24
	FormatBGRA32
	FormatRGBA32
)

func (p PixelFormat) Channels() int {
	switch p {
	case FormatGray8:
		return 1
	case FormatBGR24, FormatRGB24:
		return 3
	case FormatBGRA32, FormatRGBA32:
		return 4
	default:
		return 0
	}
}

func (p PixelFormat) String() string {
	switch p {
	case FormatGray8:
		return "Gray8"
	case FormatBGR24:
		return "BGR24"
	case FormatRGB24:
		return "RGB24"
	case FormatBGRA32:
		return "BGRA32"
	case FormatRGBA32:
		return "RGBA32"
	default:
		return "Unknown"
	}
}

// FormatForChannels returns the OpenCV-convention format for an HxWxC array.
func FormatForChannels(channels int) (PixelFormat, error) {
	switch channels {
	case 1:
		return FormatGray8, nil
	case 3:
		return FormatBGR24, nil
	case 4:
		return FormatBGRA32, nil
	default:
		return FormatUnknown, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// maxDimension bounds either side of a frame.
const maxDimension = 32768

// Frame is one raster image. Rows are Stride bytes apart; Data holds exactly
// Stride*Height bytes.
type Frame struct {
	Width     int
	Height    int
	Format    PixelFormat
	Stride    int
	Data      []byte
	Seq       uint64
	Timestamp time.Time
}

// NewFrame builds a tightly packed frame and validates it.
func NewFrame(width, height int, format PixelFormat, data []byte) (*Frame, error) {
	f := &Frame{
		Width:  width,
		Height: height,
		Format: format,
		Stride: width * format.Channels(),
		Data:   data,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFrameHWC builds a frame from a height x width x channels byte array as
// produced by OpenCV.
func NewFrameHWC(height, width, channels int, data []byte) (*Frame, error) {
	format, err := FormatForChannels(channels)
	if err != nil {
		return nil, &InvalidFrameError{Reason: err.Error(), Width: width, Height: height, Length: len(data)}
	}
	return NewFrame(width, height, format, data)
}

// Validate checks dimensions, format and buffer size.
func (f *Frame) Validate() error {
	if f == nil {
		return &InvalidFrameError{Reason: "nil frame"}
	}
	fail := func(reason string, expected int) error {
		return &InvalidFrameError{
			Reason:   reason,
			Width:    f.Width,
			Height:   f.Height,
			Format:   f.Format,
			Length:   len(f.Data),
			Expected: expected,
		}
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fail("non-positive dimensions", 0)
	}
	if f.Width > maxDimension || f.Height > maxDimension {
		return fail("dimensions exceed maximum", 0)
	}
	channels := f.Format.Channels()
	if channels == 0 {
		return fail("unknown pixel format", 0)
	}
	if len(f.Data) == 0 {
		return fail("empty buffer", 0)
	}
	if f.Stride < f.Width*channels {
		return fail(fmt.Sprintf("stride %d shorter than row", f.Stride), 0)
	}
	// Stride <= len(Data) keeps Stride*Height in range.
	if f.Stride > len(f.Data) {
		return fail(fmt.Sprintf("stride %d exceeds buffer", f.Stride), 0)
	}
	if expected := f.Stride * f.Height; len(f.Data) != expected {
		return fail("buffer size mismatch", expected)
	}
	return nil
}

// Size returns width and height.
func (f *Frame) Size() (int, int) {
	return f.Width, f.Height
}

// Row returns the pixel bytes of row y without padding.
func (f *Frame) Row(y int) []byte {
	start := y * f.Stride
	return f.Data[start : start+f.Width*f.Format.Channels()]
}
