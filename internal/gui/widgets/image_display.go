package widgets

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"cvview/internal/interaction"
	"cvview/internal/logger"
	"cvview/internal/models"
	"cvview/internal/render"
	"cvview/internal/viewport"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
)

// Stats counts display activity since the widget was created.
type Stats struct {
	Frames     uint64
	Rejected   uint64
	Renders    uint64
	OverBudget uint64
	LastRender time.Duration
}

// ImageDisplay shows the current frame composited with host overlays, named
// texts and editable ROIs, under a zoom and pan transform.
//
// It is not safe for concurrent use. Every method runs on the fyne goroutine;
// producers on other goroutines hand frames over through handoff.Coordinator.
type ImageDisplay struct {
	widget.BaseWidget

	opts   Options
	logger logger.Logger

	frame *models.Frame
	image image.Image

	overlays  []models.Overlay
	texts     map[string]models.Overlay
	textOrder []string

	rois     *models.ROISet
	selected string

	view    *viewport.Viewport
	autoFit bool
	tools   *interaction.ToolState
	drawing interaction.Drawing
	edit    interaction.Edit

	dragging bool
	modifier fyne.KeyModifier
	focused  bool

	compositor render.Compositor
	stats      Stats

	// OnROIChanged receives the full ROI list after any change to it.
	OnROIChanged func([]models.ROI)
	// OnViewChanged fires after the transform changes.
	OnViewChanged func(viewport.Transform)
	// OnToolChanged fires when the active tool changes, including temporary
	// pans.
	OnToolChanged func(interaction.Tool)
}

// NewImageDisplay creates the widget. Unset fields of opts take the values of
// DefaultOptions.
func NewImageDisplay(opts Options) *ImageDisplay {
	opts = opts.withDefaults()

	d := &ImageDisplay{
		opts:    opts,
		logger:  opts.Logger.WithComponent("image_display"),
		texts:   make(map[string]models.Overlay),
		rois:    models.NewROISet(),
		view:    viewport.New(opts.Limits),
		autoFit: true,
		tools:   interaction.NewToolState(opts.Tool),
	}
	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget.
func (d *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return newImageDisplayRenderer(d)
}

// SetFrame makes f the current frame. A malformed frame is rejected with an
// *models.InvalidFrameError and the previous frame stays on screen. When the
// frame size differs from the previous one the view is refitted.
func (d *ImageDisplay) SetFrame(f *models.Frame) error {
	img, err := render.ToImage(f)
	if err != nil {
		d.stats.Rejected++
		d.logger.Warning("frame rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	d.frame = f
	d.image = img
	d.stats.Frames++
	if d.view.SetImageSize(float64(f.Width), float64(f.Height)) {
		d.autoFit = true
		d.logger.Debug("frame size changed", map[string]interface{}{
			"width":  f.Width,
			"height": f.Height,
			"format": f.Format.String(),
		})
		d.viewChanged()
	}
	d.Refresh()
	return nil
}

// Frame returns the current frame, nil before the first valid one.
func (d *ImageDisplay) Frame() *models.Frame {
	return d.frame
}

func (d *ImageDisplay) FrameSize() (int, int) {
	if d.frame == nil {
		return 0, 0
	}
	return d.frame.Size()
}

func (d *ImageDisplay) HasFrame() bool {
	return d.frame != nil
}

// SetOverlays replaces the host overlays drawn on the next render.
func (d *ImageDisplay) SetOverlays(overlays []models.Overlay) {
	d.overlays = append([]models.Overlay(nil), overlays...)
	d.Refresh()
}

func (d *ImageDisplay) Overlays() []models.Overlay {
	return append([]models.Overlay(nil), d.overlays...)
}

// AddText places a named label at pos in image coordinates, replacing any
// label with the same name. A nil color uses the configured overlay color.
func (d *ImageDisplay) AddText(name, text string, pos models.Point, c color.Color) {
	if c == nil {
		c = d.opts.OverlayColor
	}
	if _, exists := d.texts[name]; !exists {
		d.textOrder = append(d.textOrder, name)
	}
	o := models.TextOverlay(name, text, pos, c)
	o.TextSize = d.opts.TextSize
	d.texts[name] = o
	d.Refresh()
}

func (d *ImageDisplay) UpdateText(name, text string) error {
	o, ok := d.texts[name]
	if !ok {
		return fmt.Errorf("update text %q: %w", name, models.ErrTextNotFound)
	}
	o.Text = text
	d.texts[name] = o
	d.Refresh()
	return nil
}

func (d *ImageDisplay) RemoveText(name string) error {
	if _, ok := d.texts[name]; !ok {
		return fmt.Errorf("remove text %q: %w", name, models.ErrTextNotFound)
	}
	delete(d.texts, name)
	for i, n := range d.textOrder {
		if n == name {
			d.textOrder = append(d.textOrder[:i], d.textOrder[i+1:]...)
			break
		}
	}
	d.Refresh()
	return nil
}

// Texts returns the named labels in insertion order.
func (d *ImageDisplay) Texts() []models.Overlay {
	out := make([]models.Overlay, 0, len(d.textOrder))
	for _, name := range d.textOrder {
		out = append(out, d.texts[name])
	}
	return out
}

// Text returns the named label.
func (d *ImageDisplay) Text(name string) (models.Overlay, bool) {
	o, ok := d.texts[name]
	return o, ok
}

// AddROI stores roi, assigning an ID when it has none. Degenerate geometry is
// rejected with *models.InvalidROIError and a taken ID with
// models.ErrDuplicateROI; neither changes state.
func (d *ImageDisplay) AddROI(roi models.ROI) (models.ROI, error) {
	if roi.ID == "" {
		roi.ID = uuid.NewString()
	}
	if err := d.rois.Add(roi); err != nil {
		return models.ROI{}, err
	}
	d.roisChanged()
	return roi, nil
}

func (d *ImageDisplay) RemoveROI(id string) error {
	if err := d.rois.Remove(id); err != nil {
		return err
	}
	if d.selected == id {
		d.selected = ""
	}
	if d.edit.Active() && d.edit.ID() == id {
		d.edit.End()
	}
	d.roisChanged()
	return nil
}

func (d *ImageDisplay) ROI(id string) (models.ROI, bool) {
	return d.rois.Get(id)
}

func (d *ImageDisplay) ROIs() []models.ROI {
	return d.rois.All()
}

func (d *ImageDisplay) ClearROIs() {
	if d.rois.Len() == 0 {
		return
	}
	d.rois.Clear()
	d.selected = ""
	d.edit.End()
	d.roisChanged()
}

// ConvertROIByID switches a stored ROI between rectangle and ellipse, keeping
// its bounding box.
func (d *ImageDisplay) ConvertROIByID(id string, shape models.Shape) (models.ROI, error) {
	roi, ok := d.rois.Get(id)
	if !ok {
		return models.ROI{}, fmt.Errorf("convert roi %s: %w", id, models.ErrROINotFound)
	}
	converted, err := models.ConvertROI(roi, shape)
	if err != nil {
		return models.ROI{}, err
	}
	if err := d.rois.Replace(converted); err != nil {
		return models.ROI{}, err
	}
	d.roisChanged()
	return converted, nil
}

// AddROIMatrix adds a rows x cols grid of w x h ROIs whose top-left corners
// start at (x, y) and step by (dx, dy). Either every ROI is added or none.
func (d *ImageDisplay) AddROIMatrix(shape models.Shape, rows, cols int, dx, dy, x, y, w, h float64) ([]models.ROI, error) {
	grid, err := models.ROIMatrix(shape, rows, cols, dx, dy, x, y, w, h)
	if err != nil {
		return nil, err
	}
	for i, roi := range grid {
		if err := d.rois.Add(roi); err != nil {
			for _, added := range grid[:i] {
				_ = d.rois.Remove(added.ID)
			}
			return nil, err
		}
	}
	d.roisChanged()
	return grid, nil
}

// SaveROIs writes the current ROI set to path.
func (d *ImageDisplay) SaveROIs(path string) error {
	if err := models.SaveROIFile(path, d.rois.All()); err != nil {
		return err
	}
	d.logger.Info("rois saved", map[string]interface{}{
		"path":  path,
		"count": d.rois.Len(),
	})
	return nil
}

// LoadROIs replaces the ROI set with the contents of path. On any error the
// current set is kept.
func (d *ImageDisplay) LoadROIs(path string) error {
	loaded, err := models.LoadROIFile(path)
	if err != nil {
		return err
	}
	set := models.NewROISet()
	for _, roi := range loaded {
		if err := set.Add(roi); err != nil {
			return fmt.Errorf("load rois %s: %w", path, err)
		}
	}
	d.rois = set
	d.selected = ""
	d.edit.End()
	d.logger.Info("rois loaded", map[string]interface{}{
		"path":  path,
		"count": set.Len(),
	})
	d.roisChanged()
	return nil
}

// SelectROI selects the ROI with id; an empty id clears the selection.
func (d *ImageDisplay) SelectROI(id string) error {
	if id != "" {
		if _, ok := d.rois.Get(id); !ok {
			return fmt.Errorf("select roi %s: %w", id, models.ErrROINotFound)
		}
	}
	if d.selected != id {
		d.selected = id
		d.Refresh()
	}
	return nil
}

func (d *ImageDisplay) SelectedROI() (models.ROI, bool) {
	if d.selected == "" {
		return models.ROI{}, false
	}
	return d.rois.Get(d.selected)
}

// SetTool selects the tool the user works with. During a temporary pan the
// choice takes effect once the pan key is released.
func (d *ImageDisplay) SetTool(t interaction.Tool) {
	before := d.tools.Current()
	d.tools.Select(t)
	d.cancelGesture()
	if d.tools.Current() != before {
		d.toolChanged()
	}
}

// Tool is the tool the user selected.
func (d *ImageDisplay) Tool() interaction.Tool {
	return d.tools.Selected()
}

// ActiveTool is the tool handling input right now; it is ToolPan while the
// pan key is held.
func (d *ImageDisplay) ActiveTool() interaction.Tool {
	return d.tools.Current()
}

func (d *ImageDisplay) ZoomIn() {
	d.zoomAt(d.opts.ZoomStep, d.viewCenter())
}

func (d *ImageDisplay) ZoomOut() {
	d.zoomAt(1/d.opts.ZoomStep, d.viewCenter())
}

// ZoomFit scales the frame down to fit the view, never up, and centers it.
// The fit is kept when the view is resized, until the next zoom or pan.
func (d *ImageDisplay) ZoomFit() {
	d.autoFit = true
	d.view.Fit()
	d.viewChanged()
	d.Refresh()
}

// Transform is the current image-to-view transform.
func (d *ImageDisplay) Transform() viewport.Transform {
	return d.view.Transform()
}

// ImagePoint maps a position in widget coordinates to image coordinates.
func (d *ImageDisplay) ImagePoint(pos fyne.Position) models.Point {
	return d.view.Transform().ToImage(point(pos))
}

func (d *ImageDisplay) Options() Options {
	return d.opts
}

func (d *ImageDisplay) Stats() Stats {
	return d.stats
}

func (d *ImageDisplay) zoomAt(factor float64, anchor models.Point) {
	d.autoFit = false
	d.view.Zoom(factor, anchor)
	d.viewChanged()
	d.Refresh()
}

func (d *ImageDisplay) viewCenter() models.Point {
	w, h := d.view.ViewSize()
	return models.Pt(w/2, h/2)
}

// setViewSize is called by the renderer on layout.
func (d *ImageDisplay) setViewSize(size fyne.Size) {
	w, h := float64(size.Width), float64(size.Height)
	if vw, vh := d.view.ViewSize(); vw == w && vh == h {
		return
	}
	d.view.SetViewSize(w, h)
	if d.autoFit {
		d.view.Fit()
	}
	d.viewChanged()
}

// renderImage composes the frame for a w x h pixel raster.
func (d *ImageDisplay) renderImage(w, h int) image.Image {
	start := time.Now()

	pixelScale := 1.0
	if size := d.Size(); size.Width > 0 {
		pixelScale = float64(w) / float64(size.Width)
	}
	out := d.compositor.Render(w, h, d.image, d.view.Transform(), pixelScale, d.opts.Quality, d.opts.Background)

	elapsed := time.Since(start)
	d.stats.Renders++
	d.stats.LastRender = elapsed
	if d.opts.FrameBudget > 0 && elapsed > d.opts.FrameBudget {
		d.stats.OverBudget++
		d.logger.Debug("render over budget", map[string]interface{}{
			"elapsed_ms": float64(elapsed.Microseconds()) / 1000,
			"budget_ms":  float64(d.opts.FrameBudget.Microseconds()) / 1000,
			"width":      w,
			"height":     h,
		})
	}
	return out
}

func (d *ImageDisplay) roisChanged() {
	if d.OnROIChanged != nil {
		d.OnROIChanged(d.rois.All())
	}
	d.Refresh()
}

func (d *ImageDisplay) viewChanged() {
	if d.OnViewChanged != nil {
		d.OnViewChanged(d.view.Transform())
	}
}

func (d *ImageDisplay) toolChanged() {
	if d.OnToolChanged != nil {
		d.OnToolChanged(d.tools.Current())
	}
	d.Refresh()
}

func point(p fyne.Position) models.Point {
	return models.Pt(float64(p.X), float64(p.Y))
}
