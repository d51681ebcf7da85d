package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Window WindowConfig
	Log    LogConfig
	Viewer ViewerConfig
	Source SourceConfig
	ROI    ROIConfig
}

type WindowConfig struct {
	Width  float32
	Height float32
	Title  string
}

type LogConfig struct {
	Level  string
	Format string
}

// ViewerConfig holds display widget settings.
type ViewerConfig struct {
	ZoomStep      float64 `mapstructure:"zoom_step"`
	MinScale      float64 `mapstructure:"min_scale"`
	MaxScale      float64 `mapstructure:"max_scale"`
	MinVisible    float64 `mapstructure:"min_visible"`
	DefaultTool   string  `mapstructure:"default_tool"`
	ROIColor      string  `mapstructure:"roi_color"`
	SelectedColor string  `mapstructure:"selected_color"`
	HandleColor   string  `mapstructure:"handle_color"`
	OverlayColor  string  `mapstructure:"overlay_color"`
	Background    string  `mapstructure:"background"`
	HandleSize    float32 `mapstructure:"handle_size"`
	TextSize      float32 `mapstructure:"text_size"`
	Smooth        bool    `mapstructure:"smooth"`
	ShowToolbar   bool    `mapstructure:"show_toolbar"`
	FrameBudgetMS float64 `mapstructure:"frame_budget_ms"`
}

// SourceConfig selects where frames come from. Device < 0 disables the
// camera.
type SourceConfig struct {
	Image  string
	Video  string
	Device int
	FPS    float64
	Loop   bool
}

type ROIConfig struct {
	File     string
	Snapshot string
}

const maxFPS = 240

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 680)
	v.SetDefault("window.title", "Image Viewer")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("viewer.zoom_step", 1.2)
	v.SetDefault("viewer.min_scale", 0.05)
	v.SetDefault("viewer.max_scale", 40.0)
	v.SetDefault("viewer.min_visible", 32.0)
	v.SetDefault("viewer.default_tool", "arrow")
	v.SetDefault("viewer.roi_color", "#00ff00")
	v.SetDefault("viewer.selected_color", "#ffff00")
	v.SetDefault("viewer.handle_color", "#ffffff")
	v.SetDefault("viewer.overlay_color", "#ffffff")
	v.SetDefault("viewer.background", "#202020")
	v.SetDefault("viewer.handle_size", 8.0)
	v.SetDefault("viewer.smooth", true)
	v.SetDefault("viewer.show_toolbar", true)
	v.SetDefault("viewer.frame_budget_ms", 16.0)
	v.SetDefault("viewer.text_size", 14.0)

	v.SetDefault("source.image", "")
	v.SetDefault("source.video", "")
	v.SetDefault("source.device", -1)
	v.SetDefault("source.fps", 30.0)
	v.SetDefault("source.loop", true)

	v.SetDefault("roi.file", "")
	v.SetDefault("roi.snapshot", "snapshot.png")
}

// Load reads configuration from path (or the default search path when empty)
// and the environment. Env var overrides use prefix CVVIEW_, e.g.
// CVVIEW_VIEWER_ZOOM_STEP. Finding no file on the search path is not an
// error; an explicit path that cannot be read is.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CVVIEW_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cvview")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "cvview"))
		}
	}

	v.SetEnvPrefix("CVVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !notFound(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Log.Level = logLevelOverride(c.Log.Level)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the viewer cannot work with.
func (c Config) Validate() error {
	if c.Viewer.ZoomStep <= 1 {
		return fmt.Errorf("viewer.zoom_step must be greater than 1, got %g", c.Viewer.ZoomStep)
	}
	if c.Viewer.MinScale <= 0 || c.Viewer.MaxScale < c.Viewer.MinScale {
		return fmt.Errorf("viewer scale range [%g, %g] is invalid", c.Viewer.MinScale, c.Viewer.MaxScale)
	}
	if c.Source.FPS <= 0 || c.Source.FPS > maxFPS {
		return fmt.Errorf("source.fps must be in (0, %d], got %g", maxFPS, c.Source.FPS)
	}
	return nil
}

// LOG_LEVEL and DEBUG=1 win over the file.
func logLevelOverride(level string) string {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		return strings.ToLower(v)
	}
	if os.Getenv("DEBUG") == "1" || strings.EqualFold(os.Getenv("DEBUG"), "true") {
		return "debug"
	}
	return level
}

func notFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}
