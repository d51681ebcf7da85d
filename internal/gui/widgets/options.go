package widgets

import (
	"fmt"
	"image/color"
	"time"

	"cvview/internal/config"
	"cvview/internal/interaction"
	"cvview/internal/logger"
	"cvview/internal/render"
	"cvview/internal/viewport"
)

const (
	defaultZoomStep    = 1.2
	defaultHandleSize  = 8
	defaultTextSize    = 14
	defaultFrameBudget = 16 * time.Millisecond
)

// Options configure an ImageDisplay.
type Options struct {
	Limits        viewport.Limits
	ZoomStep      float64
	Tool          interaction.Tool
	ROIColor      color.Color
	SelectedColor color.Color
	HandleColor   color.Color
	OverlayColor  color.Color
	Background    color.Color
	HandleSize    float32
	TextSize      float32
	Quality       render.Quality
	FrameBudget   time.Duration
	Logger        logger.Logger
}

func DefaultOptions() Options {
	roi := color.NRGBA{G: 0xff, A: 0xff}
	return Options{
		Limits:        viewport.DefaultLimits,
		ZoomStep:      defaultZoomStep,
		Tool:          interaction.ToolArrow,
		ROIColor:      roi,
		SelectedColor: render.Highlight(roi),
		HandleColor:   color.White,
		OverlayColor:  color.White,
		Background:    color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
		HandleSize:    defaultHandleSize,
		TextSize:      defaultTextSize,
		Quality:       render.QualitySmooth,
		FrameBudget:   defaultFrameBudget,
		Logger:        logger.NoOpLogger{},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	if o.Limits == (viewport.Limits{}) {
		o.Limits = def.Limits
	}
	if o.ZoomStep <= 1 {
		o.ZoomStep = def.ZoomStep
	}
	if o.ROIColor == nil {
		o.ROIColor = def.ROIColor
	}
	if o.SelectedColor == nil {
		o.SelectedColor = render.Highlight(o.ROIColor)
	}
	if o.HandleColor == nil {
		o.HandleColor = def.HandleColor
	}
	if o.OverlayColor == nil {
		o.OverlayColor = def.OverlayColor
	}
	if o.Background == nil {
		o.Background = def.Background
	}
	if o.HandleSize <= 0 {
		o.HandleSize = def.HandleSize
	}
	if o.TextSize <= 0 {
		o.TextSize = def.TextSize
	}
	return o
}

// OptionsFromConfig maps viewer settings onto widget options. Malformed
// colors fall back to the defaults; an unknown tool is an error.
func OptionsFromConfig(c config.ViewerConfig, log logger.Logger) (Options, error) {
	opts := DefaultOptions()
	opts.Logger = log

	tool, err := interaction.ParseTool(c.DefaultTool)
	if err != nil {
		return opts, fmt.Errorf("viewer.default_tool: %w", err)
	}
	opts.Tool = tool

	opts.Limits = viewport.Limits{MinScale: c.MinScale, MaxScale: c.MaxScale, MinVisible: c.MinVisible}
	if c.ZoomStep > 1 {
		opts.ZoomStep = c.ZoomStep
	}
	opts.ROIColor = render.ColorOr(c.ROIColor, opts.ROIColor)
	opts.SelectedColor = render.ColorOr(c.SelectedColor, render.Highlight(opts.ROIColor))
	opts.HandleColor = render.ColorOr(c.HandleColor, opts.HandleColor)
	opts.OverlayColor = render.ColorOr(c.OverlayColor, opts.OverlayColor)
	opts.Background = render.ColorOr(c.Background, opts.Background)
	if c.HandleSize > 0 {
		opts.HandleSize = c.HandleSize
	}
	if c.TextSize > 0 {
		opts.TextSize = c.TextSize
	}
	if !c.Smooth {
		opts.Quality = render.QualityFast
	}
	opts.FrameBudget = time.Duration(c.FrameBudgetMS * float64(time.Millisecond))
	return opts, nil
}
