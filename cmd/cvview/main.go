package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"cvview/internal/config"
	"cvview/internal/gui/handoff"
	"cvview/internal/gui/widgets"
	"cvview/internal/imageio"
	"cvview/internal/logger"
	"cvview/internal/models"
	"cvview/internal/opencv/capture"
	"cvview/internal/shutdown"
	"cvview/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/pflag"
)

const (
	AppName    = "cvview"
	AppID      = "com.cvview.viewer"
	AppVersion = "0.1.0"

	statusInterval = 500 * time.Millisecond
)

// Application wires a frame source to the main view.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	cfg     config.Config

	view     *views.MainView
	display  *widgets.ImageDisplay
	coord    *handoff.Coordinator
	source   *capture.Source
	shutdown *shutdown.Manager
}

type flags struct {
	config string
	image  string
	video  string
	device int
	rois   string
}

func main() {
	f := parseFlags()

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
	f.apply(&cfg)

	application, err := NewApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}

	application.Run()
}

func parseFlags() flags {
	var f flags
	pflag.StringVarP(&f.config, "config", "c", "", "configuration file (toml, yaml or json)")
	pflag.StringVarP(&f.image, "image", "i", "", "display a still image")
	pflag.StringVarP(&f.video, "video", "v", "", "play a video file")
	pflag.IntVarP(&f.device, "device", "d", -1, "capture from camera `n`")
	pflag.StringVarP(&f.rois, "rois", "r", "", "load ROIs from `file` at startup")
	pflag.Parse()
	if pflag.NArg() > 0 && f.image == "" {
		f.image = pflag.Arg(0)
	}
	return f
}

// apply lets explicit flags win over the configuration file.
func (f flags) apply(cfg *config.Config) {
	if f.image != "" {
		cfg.Source.Image = f.image
	}
	if f.video != "" {
		cfg.Source.Video = f.video
	}
	if pflag.CommandLine.Changed("device") {
		cfg.Source.Device = f.device
	}
	if f.rois != "" {
		cfg.ROI.File = f.rois
	}
}

// NewApplication builds the window, the widget and the view, and opens the
// configured frame source.
func NewApplication(cfg config.Config) (*Application, error) {
	appLogger := logger.New(cfg.Log.Format, logger.ParseLevel(cfg.Log.Level))

	opts, err := widgets.OptionsFromConfig(cfg.Viewer, appLogger)
	if err != nil {
		return nil, fmt.Errorf("viewer options: %w", err)
	}

	fyneApp := app.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(cfg.Window.Title)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()

	display := widgets.NewImageDisplay(opts)
	view := views.NewMainView(window, display, appLogger)
	view.ShowToolbar(cfg.Viewer.ShowToolbar)
	view.SetSnapshotPath(cfg.ROI.Snapshot)
	window.SetContent(view.Content())

	application := &Application{
		fyneApp:  fyneApp,
		window:   window,
		logger:   appLogger.WithComponent("app"),
		cfg:      cfg,
		view:     view,
		display:  display,
		shutdown: shutdown.NewManager(appLogger),
	}

	if err := application.openSource(); err != nil {
		return nil, err
	}
	application.loadROIs()
	application.setupWindowEvents()

	application.logger.Info("application initialized", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"window":     fmt.Sprintf("%.0fx%.0f", cfg.Window.Width, cfg.Window.Height),
		"source":     application.sourceName(),
	})
	return application, nil
}

// openSource loads the still image or opens the video/camera. A still image
// wins over a video, a video over a camera.
func (a *Application) openSource() error {
	src := a.cfg.Source
	switch {
	case src.Image != "":
		frame, err := imageio.Load(src.Image)
		if err != nil {
			return err
		}
		if err := a.display.SetFrame(frame); err != nil {
			return fmt.Errorf("display %s: %w", src.Image, err)
		}
		a.view.UpdateStatus("Loaded " + src.Image)
		return nil
	case src.Video != "":
		s, err := capture.OpenFile(src.Video, src.FPS, src.Loop, a.logger)
		if err != nil {
			return err
		}
		a.source = s
	case src.Device >= 0:
		s, err := capture.OpenDevice(src.Device, src.FPS, a.logger)
		if err != nil {
			return err
		}
		a.source = s
	default:
		a.view.UpdateStatus("No source; load ROIs or start with -image")
		return nil
	}

	a.logger.Info("capture opened", map[string]interface{}{
		"source": a.source.Name(),
		"fps":    a.source.FPS(),
	})
	a.coord = handoff.NewCoordinator(a.display, a.logger)
	// Shutdown runs in reverse: the source stops before the coordinator.
	a.shutdown.Register(a.coord)
	a.shutdown.Register(a.source)
	return nil
}

func (a *Application) loadROIs() {
	if a.cfg.ROI.File == "" {
		return
	}
	if err := a.view.LoadROIs(a.cfg.ROI.File); err != nil {
		a.logger.Warning("startup roi file not loaded", map[string]interface{}{
			"path":  a.cfg.ROI.File,
			"error": err.Error(),
		})
	}
}

func (a *Application) sourceName() string {
	switch {
	case a.source != nil:
		return a.source.Name()
	case a.cfg.Source.Image != "":
		return a.cfg.Source.Image
	default:
		return "none"
	}
}

// Run starts the producers and blocks in the fyne event loop.
func (a *Application) Run() {
	ctx := a.shutdown.Context()

	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	if a.source != nil {
		go a.coord.Run(ctx)
		go func() {
			err := a.source.Run(ctx, a.coord.Submit)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("capture stopped", err, map[string]interface{}{
					"source": a.source.Name(),
				})
				fyne.Do(func() {
					a.view.UpdateStatus("Capture stopped: " + err.Error())
				})
			}
		}()
	}
	go a.monitorStatus(ctx)

	a.window.ShowAndRun()
	a.shutdown.Shutdown()
}

func (a *Application) setupWindowEvents() {
	a.view.SetROIChangedHandler(func(rois []models.ROI) {
		a.logger.Debug("rois changed", map[string]interface{}{"count": len(rois)})
	})
	a.window.SetOnClosed(func() {
		a.logger.Info("window closed", nil)
	})
}

// monitorStatus pushes handoff counters to the status bar.
func (a *Application) monitorStatus(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var stats handoff.Stats
			if a.coord != nil {
				stats = a.coord.Stats()
			}
			fyne.Do(func() {
				a.view.RefreshStatus(stats)
			})
		}
	}
}
