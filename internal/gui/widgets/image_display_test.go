package widgets

import (
	"image/color"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"cvview/internal/gui/handoff"
	"cvview/internal/interaction"
	"cvview/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ handoff.FrameSink = (*ImageDisplay)(nil)

func rgbFrame(t *testing.T, w, h int, c color.RGBA) *models.Frame {
	t.Helper()
	data := make([]byte, w*h*3)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = c.R, c.G, c.B
	}
	f, err := models.NewFrame(w, h, models.FormatRGB24, data)
	require.NoError(t, err)
	return f
}

// newDisplay returns a 640x480 display showing a 640x480 frame at scale 1.
func newDisplay(t *testing.T) *ImageDisplay {
	t.Helper()
	test.NewTempApp(t)

	d := NewImageDisplay(DefaultOptions())
	require.NoError(t, d.SetFrame(rgbFrame(t, 640, 480, color.RGBA{R: 200, A: 255})))
	d.Resize(fyne.NewSize(640, 480))
	require.Equal(t, 1.0, d.Transform().Scale)
	return d
}

func drag(d *ImageDisplay, from, to fyne.Position) {
	d.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: to},
		Dragged:    fyne.NewDelta(to.X-from.X, to.Y-from.Y),
	})
	d.DragEnd()
}

func TestSetFrameReadBack(t *testing.T) {
	d := newDisplay(t)

	w, h := d.FrameSize()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.True(t, d.HasFrame())
	assert.Equal(t, models.FormatRGB24, d.Frame().Format)
	assert.Equal(t, uint64(1), d.Stats().Frames)
}

func TestSetFrameInvalidKeepsPrevious(t *testing.T) {
	d := newDisplay(t)
	previous := d.Frame()

	err := d.SetFrame(&models.Frame{Width: 10, Height: 10, Format: models.FormatRGB24, Stride: 30, Data: make([]byte, 12)})
	var invalid *models.InvalidFrameError
	require.ErrorAs(t, err, &invalid)

	require.Error(t, d.SetFrame(nil))

	assert.Same(t, previous, d.Frame())
	assert.Equal(t, uint64(2), d.Stats().Rejected)
}

func TestSetFrameRefitsOnSizeChange(t *testing.T) {
	d := newDisplay(t)
	d.ZoomIn()
	require.Greater(t, d.Transform().Scale, 1.0)

	// same size keeps the user's zoom
	require.NoError(t, d.SetFrame(rgbFrame(t, 640, 480, color.RGBA{G: 10, A: 255})))
	assert.Greater(t, d.Transform().Scale, 1.0)

	require.NoError(t, d.SetFrame(rgbFrame(t, 1280, 960, color.RGBA{G: 10, A: 255})))
	assert.InDelta(t, 0.5, d.Transform().Scale, 1e-9)
}

func TestAddROIAndConvert(t *testing.T) {
	d := newDisplay(t)

	roi, err := d.AddROI(models.ROI{Shape: models.ShapeRect, Bounds: models.R(10, 10, 50, 50)})
	require.NoError(t, err)
	require.NotEmpty(t, roi.ID)

	converted, err := d.ConvertROIByID(roi.ID, models.ShapeEllipse)
	require.NoError(t, err)
	e := converted.Ellipse()
	assert.Equal(t, models.Pt(35, 35), e.Center)
	assert.Equal(t, 25.0, e.RX)
	assert.Equal(t, 25.0, e.RY)

	back, err := d.ConvertROIByID(roi.ID, models.ShapeRect)
	require.NoError(t, err)
	assert.Equal(t, models.R(10, 10, 50, 50), back.Bounds)
}

func TestAddROIRejectsWithoutChange(t *testing.T) {
	d := newDisplay(t)
	changes := 0
	d.OnROIChanged = func([]models.ROI) { changes++ }

	_, err := d.AddROI(models.ROI{Shape: models.ShapeRect, Bounds: models.R(10, 10, 0, 5)})
	var invalid *models.InvalidROIError
	require.ErrorAs(t, err, &invalid)

	roi, err := d.AddROI(models.ROI{ID: "a", Shape: models.ShapeRect, Bounds: models.R(1, 1, 5, 5)})
	require.NoError(t, err)
	_, err = d.AddROI(roi)
	require.ErrorIs(t, err, models.ErrDuplicateROI)

	assert.Len(t, d.ROIs(), 1)
	assert.Equal(t, 1, changes)
}

func TestRemoveROI(t *testing.T) {
	d := newDisplay(t)
	roi, err := d.AddROI(models.ROI{Shape: models.ShapeEllipse, Bounds: models.R(1, 1, 5, 5)})
	require.NoError(t, err)
	require.NoError(t, d.SelectROI(roi.ID))

	require.NoError(t, d.RemoveROI(roi.ID))
	_, selected := d.SelectedROI()
	assert.False(t, selected)
	assert.ErrorIs(t, d.RemoveROI(roi.ID), models.ErrROINotFound)
	assert.ErrorIs(t, d.SelectROI("missing"), models.ErrROINotFound)
}

func TestDrawRectROI(t *testing.T) {
	d := newDisplay(t)
	d.SetTool(interaction.ToolRect)

	var got []models.ROI
	d.OnROIChanged = func(rois []models.ROI) { got = rois }

	drag(d, fyne.NewPos(60, 40), fyne.NewPos(10, 10))

	require.Len(t, got, 1)
	assert.Equal(t, models.ShapeRect, got[0].Shape)
	assert.Equal(t, models.R(10, 10, 50, 30), got[0].Bounds)
	selected, ok := d.SelectedROI()
	require.True(t, ok)
	assert.Equal(t, got[0].ID, selected.ID)
}

func TestDrawOvalROIUnderZoom(t *testing.T) {
	d := newDisplay(t)
	d.ZoomFit()
	d.zoomAt(2, models.Pt(0, 0))
	require.Equal(t, 2.0, d.Transform().Scale)
	d.SetTool(interaction.ToolOval)

	drag(d, fyne.NewPos(20, 20), fyne.NewPos(120, 60))

	rois := d.ROIs()
	require.Len(t, rois, 1)
	assert.Equal(t, models.ShapeEllipse, rois[0].Shape)
	assert.Equal(t, models.R(10, 10, 50, 20), rois[0].Bounds)
}

func TestZeroExtentDrawingDiscarded(t *testing.T) {
	d := newDisplay(t)
	d.SetTool(interaction.ToolRect)

	drag(d, fyne.NewPos(30, 30), fyne.NewPos(30, 30))
	drag(d, fyne.NewPos(30, 30), fyne.NewPos(80, 30))

	assert.Empty(t, d.ROIs())
}

func TestMoveAndResizeWithArrow(t *testing.T) {
	d := newDisplay(t)
	roi, err := d.AddROI(models.ROI{Shape: models.ShapeRect, Bounds: models.R(100, 100, 50, 50)})
	require.NoError(t, err)

	drag(d, fyne.NewPos(120, 120), fyne.NewPos(150, 130))
	moved, _ := d.ROI(roi.ID)
	assert.Equal(t, models.R(130, 110, 50, 50), moved.Bounds)

	// the move selected the ROI, so its handles are live
	drag(d, fyne.NewPos(180, 160), fyne.NewPos(200, 170))
	resized, _ := d.ROI(roi.ID)
	assert.Equal(t, models.R(130, 110, 70, 60), resized.Bounds)
}

func TestTapSelectsTopmost(t *testing.T) {
	d := newDisplay(t)
	_, err := d.AddROI(models.ROI{ID: "below", Shape: models.ShapeRect, Bounds: models.R(0, 0, 100, 100)})
	require.NoError(t, err)
	_, err = d.AddROI(models.ROI{ID: "above", Shape: models.ShapeRect, Bounds: models.R(50, 50, 100, 100)})
	require.NoError(t, err)

	d.Tapped(&fyne.PointEvent{Position: fyne.NewPos(75, 75)})
	roi, ok := d.SelectedROI()
	require.True(t, ok)
	assert.Equal(t, "above", roi.ID)

	d.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 400)})
	_, ok = d.SelectedROI()
	assert.False(t, ok)
}

func TestDeleteKeyRemovesSelected(t *testing.T) {
	d := newDisplay(t)
	roi, err := d.AddROI(models.ROI{Shape: models.ShapeRect, Bounds: models.R(1, 1, 5, 5)})
	require.NoError(t, err)
	require.NoError(t, d.SelectROI(roi.ID))

	d.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})

	assert.Empty(t, d.ROIs())
}

func TestTemporaryPan(t *testing.T) {
	d := newDisplay(t)
	d.SetTool(interaction.ToolOval)

	var tools []interaction.Tool
	d.OnToolChanged = func(tool interaction.Tool) { tools = append(tools, tool) }

	d.KeyDown(&fyne.KeyEvent{Name: fyne.KeySpace})
	assert.Equal(t, interaction.ToolPan, d.ActiveTool())
	assert.Equal(t, desktop.PointerCursor, d.Cursor())

	d.SetTool(interaction.ToolRect)
	assert.Equal(t, interaction.ToolPan, d.ActiveTool())
	assert.Equal(t, interaction.ToolRect, d.Tool())

	d.KeyUp(&fyne.KeyEvent{Name: fyne.KeySpace})
	assert.Equal(t, interaction.ToolRect, d.ActiveTool())
	assert.Equal(t, []interaction.Tool{interaction.ToolPan, interaction.ToolRect}, tools)
}

func TestZoomToolWithAlt(t *testing.T) {
	d := newDisplay(t)
	d.SetTool(interaction.ToolZoom)

	d.Tapped(&fyne.PointEvent{Position: fyne.NewPos(100, 100)})
	assert.InDelta(t, 1.2, d.Transform().Scale, 1e-9)
	// the clicked image point moves to the view center
	center := d.Transform().ToView(models.Pt(100, 100))
	assert.InDelta(t, 320, center.X, 1e-9)
	assert.InDelta(t, 240, center.Y, 1e-9)

	d.MouseDown(&desktop.MouseEvent{Modifier: fyne.KeyModifierAlt})
	d.Tapped(&fyne.PointEvent{Position: fyne.NewPos(320, 240)})
	assert.InDelta(t, 1.0, d.Transform().Scale, 1e-9)
	center = d.Transform().ToView(models.Pt(100, 100))
	assert.InDelta(t, 320, center.X, 1e-9)
	assert.InDelta(t, 240, center.Y, 1e-9)
}

func TestPanToolDragMovesView(t *testing.T) {
	d := newDisplay(t)
	d.SetTool(interaction.ToolPan)

	drag(d, fyne.NewPos(100, 100), fyne.NewPos(130, 80))

	tr := d.Transform()
	assert.InDelta(t, 30, tr.OffsetX, 1e-9)
	assert.InDelta(t, -20, tr.OffsetY, 1e-9)
}

func TestZeroOptionsUseDefaults(t *testing.T) {
	test.NewTempApp(t)
	d := NewImageDisplay(Options{})
	require.NoError(t, d.SetFrame(rgbFrame(t, 64, 48, color.RGBA{G: 90, A: 255})))
	d.Resize(fyne.NewSize(640, 480))

	assert.Equal(t, 1.0, d.Transform().Scale)
	d.ZoomIn()
	assert.InDelta(t, defaultZoomStep, d.Transform().Scale, 1e-9)

	img := d.renderImage(640, 480)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0x20, 0x20, 0x20}, []uint32{r >> 8, g >> 8, b >> 8})
	_, g, _, _ = img.At(320, 240).RGBA()
	assert.Equal(t, uint32(90), g>>8)
}

func TestGesturesStayClamped(t *testing.T) {
	d := newDisplay(t)
	d.SetTool(interaction.ToolPan)
	rng := rand.New(rand.NewSource(7))
	limits := d.view.Limits()

	for i := 0; i < 2000; i++ {
		pos := fyne.NewPos(rng.Float32()*640, rng.Float32()*480)
		if rng.Intn(2) == 0 {
			d.Scrolled(&fyne.ScrollEvent{
				PointEvent: fyne.PointEvent{Position: pos},
				Scrolled:   fyne.NewDelta(0, rng.Float32()*20-10),
			})
		} else {
			to := fyne.NewPos(pos.X+rng.Float32()*4000-2000, pos.Y+rng.Float32()*4000-2000)
			drag(d, pos, to)
		}

		tr := d.Transform()
		require.GreaterOrEqual(t, tr.Scale, limits.MinScale)
		require.LessOrEqual(t, tr.Scale, limits.MaxScale)
		minX, maxX, minY, maxY := d.view.OffsetBounds()
		require.GreaterOrEqual(t, tr.OffsetX, minX-1e-9)
		require.LessOrEqual(t, tr.OffsetX, maxX+1e-9)
		require.GreaterOrEqual(t, tr.OffsetY, minY-1e-9)
		require.LessOrEqual(t, tr.OffsetY, maxY+1e-9)
	}
}

func TestZoomFitAfterZoom(t *testing.T) {
	d := newDisplay(t)
	d.ZoomIn()
	d.ZoomIn()
	d.ZoomOut()
	assert.InDelta(t, 1.2, d.Transform().Scale, 1e-9)

	d.ZoomFit()
	assert.Equal(t, 1.0, d.Transform().Scale)

	// a fitted view follows resizes
	d.Resize(fyne.NewSize(320, 240))
	assert.InDelta(t, 0.5, d.Transform().Scale, 1e-9)
}

func TestNamedTexts(t *testing.T) {
	d := newDisplay(t)

	d.AddText("fps", "30 fps", models.Pt(0, 0), nil)
	require.NoError(t, d.UpdateText("fps", "25 fps"))
	o, ok := d.Text("fps")
	require.True(t, ok)
	assert.Equal(t, "25 fps", o.Text)

	require.NoError(t, d.RemoveText("fps"))
	assert.ErrorIs(t, d.UpdateText("fps", "x"), models.ErrTextNotFound)
	assert.ErrorIs(t, d.RemoveText("fps"), models.ErrTextNotFound)
}

func TestROIMatrix(t *testing.T) {
	d := newDisplay(t)

	grid, err := d.AddROIMatrix(models.ShapeEllipse, 2, 3, 20, 30, 5, 5, 10, 10)
	require.NoError(t, err)
	assert.Len(t, grid, 6)
	assert.Len(t, d.ROIs(), 6)

	_, err = d.AddROIMatrix(models.ShapeRect, 2, 2, 20, 20, 0, 0, 0, 10)
	require.Error(t, err)
	assert.Len(t, d.ROIs(), 6)
}

func TestSaveLoadROIs(t *testing.T) {
	d := newDisplay(t)
	_, err := d.AddROI(models.ROI{Name: "left", Shape: models.ShapeRect, Bounds: models.R(1, 2, 3, 4)})
	require.NoError(t, err)
	_, err = d.AddROI(models.ROI{Name: "right", Shape: models.ShapeEllipse, Bounds: models.R(10, 20, 30, 40)})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "set.roi")
	require.NoError(t, d.SaveROIs(path))
	want := d.ROIs()

	d.ClearROIs()
	require.Empty(t, d.ROIs())
	require.NoError(t, d.LoadROIs(path))
	assert.Equal(t, want, d.ROIs())

	require.Error(t, d.LoadROIs(filepath.Join(t.TempDir(), "missing.roi")))
	assert.Equal(t, want, d.ROIs())
}

func TestRendererObjects(t *testing.T) {
	d := newDisplay(t)
	r := test.WidgetRenderer(d)
	assert.Len(t, r.Objects(), 1)

	roi, err := d.AddROI(models.ROI{Shape: models.ShapeRect, Bounds: models.R(10, 10, 50, 50)})
	require.NoError(t, err)
	assert.Len(t, r.Objects(), 2)

	require.NoError(t, d.SelectROI(roi.ID))
	assert.Len(t, r.Objects(), 2+len(interaction.AllHandles))

	// fully off-screen annotations are skipped
	d.SetOverlays([]models.Overlay{
		models.RectOverlay("visible", models.R(0, 0, 5, 5), color.White),
		models.RectOverlay("offscreen", models.R(5000, 5000, 5, 5), color.White),
	})
	assert.Len(t, r.Objects(), 3+len(interaction.AllHandles))
}

func TestRenderImage(t *testing.T) {
	d := newDisplay(t)
	d.opts.FrameBudget = time.Hour

	img := d.renderImage(640, 480)
	assert.Equal(t, 640, img.Bounds().Dx())
	r, g, b, _ := img.At(320, 240).RGBA()
	assert.Equal(t, uint32(200), r>>8)
	assert.Zero(t, g)
	assert.Zero(t, b)

	stats := d.Stats()
	assert.Equal(t, uint64(1), stats.Renders)
	assert.Zero(t, stats.OverBudget)
}
