package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrameReadBack(t *testing.T) {
	data := make([]byte, 640*480*3)
	f, err := NewFrame(640, 480, FormatRGB24, data)
	require.NoError(t, err)

	w, h := f.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, FormatRGB24, f.Format)
	assert.Equal(t, 640*3, f.Stride)
}

func TestNewFrameHWC(t *testing.T) {
	f, err := NewFrameHWC(2, 3, 1, make([]byte, 6))
	require.NoError(t, err)
	assert.Equal(t, FormatGray8, f.Format)
	assert.Equal(t, 3, f.Width)
	assert.Equal(t, 2, f.Height)

	_, err = NewFrameHWC(2, 3, 2, make([]byte, 12))
	var frameErr *InvalidFrameError
	require.True(t, errors.As(err, &frameErr))
}

func TestFrameValidateRejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		frame *Frame
	}{
		{"nil", nil},
		{"zero width", &Frame{Width: 0, Height: 4, Format: FormatGray8, Stride: 0, Data: []byte{1}}},
		{"negative height", &Frame{Width: 4, Height: -1, Format: FormatGray8, Stride: 4, Data: []byte{1}}},
		{"unknown format", &Frame{Width: 1, Height: 1, Stride: 1, Data: []byte{1}}},
		{"empty buffer", &Frame{Width: 2, Height: 2, Format: FormatGray8, Stride: 2}},
		{"short buffer", &Frame{Width: 2, Height: 2, Format: FormatBGR24, Stride: 6, Data: make([]byte, 11)}},
		{"long buffer", &Frame{Width: 2, Height: 2, Format: FormatBGR24, Stride: 6, Data: make([]byte, 13)}},
		{"short stride", &Frame{Width: 2, Height: 2, Format: FormatRGBA32, Stride: 4, Data: make([]byte, 8)}},
		{"overflowing stride", &Frame{Width: 1, Height: 4, Format: FormatGray8, Stride: 1<<62 + 1, Data: make([]byte, 4)}},
		{"too large", &Frame{Width: maxDimension + 1, Height: 1, Format: FormatGray8, Stride: maxDimension + 1, Data: make([]byte, maxDimension+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.frame.Validate()
			var frameErr *InvalidFrameError
			require.True(t, errors.As(err, &frameErr), "got %v", err)
		})
	}
}

func TestFrameWithPaddedStride(t *testing.T) {
	f := &Frame{Width: 2, Height: 2, Format: FormatGray8, Stride: 4, Data: []byte{1, 2, 0, 0, 3, 4, 0, 0}}
	require.NoError(t, f.Validate())
	assert.Equal(t, []byte{3, 4}, f.Row(1))
}

func TestInvalidFrameErrorMessage(t *testing.T) {
	err := (&Frame{Width: 2, Height: 2, Format: FormatGray8, Stride: 2, Data: make([]byte, 3)}).Validate()
	assert.EqualError(t, err, "invalid frame 2x2 Gray8: buffer size mismatch (got 3 bytes, want 4)")
}
