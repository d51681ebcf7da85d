package models

import (
	"errors"
	"fmt"
)

var (
	ErrROINotFound  = errors.New("roi not found")
	ErrDuplicateROI = errors.New("roi id already present")
	ErrTextNotFound = errors.New("text not found")
)

// InvalidFrameError reports a frame whose dimensions, format or buffer cannot
// be displayed.
type InvalidFrameError struct {
	Reason   string
	Width    int
	Height   int
	Format   PixelFormat
	Length   int
	Expected int
}

func (e *InvalidFrameError) Error() string {
	if e.Expected > 0 {
		return fmt.Sprintf("invalid frame %dx%d %s: %s (got %d bytes, want %d)",
			e.Width, e.Height, e.Format, e.Reason, e.Length, e.Expected)
	}
	return fmt.Sprintf("invalid frame %dx%d %s: %s", e.Width, e.Height, e.Format, e.Reason)
}

// InvalidROIError reports degenerate ROI geometry.
type InvalidROIError struct {
	ID     string
	Bounds Rect
	Reason string
}

func (e *InvalidROIError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid roi %s %v: %s", e.ID, e.Bounds, e.Reason)
	}
	return fmt.Sprintf("invalid roi %v: %s", e.Bounds, e.Reason)
}
