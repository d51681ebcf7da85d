package models

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROISetAddRemove(t *testing.T) {
	set := NewROISet()
	a := ROI{ID: "a", Shape: ShapeRect, Bounds: R(0, 0, 10, 10)}
	b := ROI{ID: "b", Shape: ShapeEllipse, Bounds: R(5, 5, 10, 10)}

	require.NoError(t, set.Add(a))
	require.NoError(t, set.Add(b))
	assert.True(t, errors.Is(set.Add(a), ErrDuplicateROI))
	assert.Equal(t, []ROI{a, b}, set.All())

	require.NoError(t, set.Remove("a"))
	assert.True(t, errors.Is(set.Remove("a"), ErrROINotFound))
	assert.Equal(t, 1, set.Len())
}

func TestROISetRejectsInvalidWithoutChange(t *testing.T) {
	set := NewROISet()
	err := set.Add(ROI{ID: "bad", Bounds: R(0, 0, -1, 4)})
	var roiErr *InvalidROIError
	require.True(t, errors.As(err, &roiErr))
	assert.Zero(t, set.Len())

	require.NoError(t, set.Add(ROI{ID: "ok", Bounds: R(0, 0, 1, 1)}))
	assert.Error(t, set.Replace(ROI{ID: "ok", Bounds: R(0, 0, 0, 1)}))
	got, _ := set.Get("ok")
	assert.Equal(t, R(0, 0, 1, 1), got.Bounds)
}

func TestROISetHitTestPrefersTopmost(t *testing.T) {
	set := NewROISet()
	require.NoError(t, set.Add(ROI{ID: "under", Bounds: R(0, 0, 20, 20)}))
	require.NoError(t, set.Add(ROI{ID: "over", Bounds: R(5, 5, 5, 5)}))

	hit, ok := set.HitTest(Pt(6, 6))
	require.True(t, ok)
	assert.Equal(t, "over", hit.ID)

	hit, ok = set.HitTest(Pt(1, 1))
	require.True(t, ok)
	assert.Equal(t, "under", hit.ID)

	_, ok = set.HitTest(Pt(100, 100))
	assert.False(t, ok)
}

func TestROIFileRoundTrip(t *testing.T) {
	rois := []ROI{
		{ID: "a", Name: "left", Shape: ShapeRect, Bounds: R(1, 2, 3, 4)},
		{ID: "b", Shape: ShapeEllipse, Bounds: R(10.5, 20, 5, 6)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteROIs(&buf, rois))
	assert.Contains(t, buf.String(), "shape: ellipse")

	got, err := ReadROIs(&buf)
	require.NoError(t, err)
	assert.Equal(t, rois, got)

	path := filepath.Join(t.TempDir(), "set.roi")
	require.NoError(t, SaveROIFile(path, rois))
	got, err = LoadROIFile(path)
	require.NoError(t, err)
	assert.Equal(t, rois, got)
}

func TestReadROIsValidates(t *testing.T) {
	doc := `version: 1
rois:
  - shape: oval
    bounds: {x: 0, y: 0, width: 4, height: 2}
  - id: flat
    shape: rect
    bounds: {x: 0, y: 0, width: 0, height: 2}
`
	_, err := ReadROIs(strings.NewReader(doc))
	var roiErr *InvalidROIError
	require.True(t, errors.As(err, &roiErr))

	doc = `version: 1
rois:
  - shape: oval
    bounds: {x: 0, y: 0, width: 4, height: 2}
`
	rois, err := ReadROIs(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rois, 1)
	assert.NotEmpty(t, rois[0].ID)
	assert.Equal(t, ShapeEllipse, rois[0].Shape)

	_, err = ReadROIs(strings.NewReader("version: 2\n"))
	assert.Error(t, err)
}
