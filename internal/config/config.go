// Package config provides renderer configuration: TOML config files,
// defaults, and live-reload watching.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration so TOML values can be written as
// human-readable strings like "10ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the renderer configuration.
type Config struct {
	// ThemeFile is the path of the JSON theme file, empty for the
	// built-in theme.
	ThemeFile string `toml:"theme_file"`

	// BackgroundOpacity scales default-background alpha, in (0, 1].
	BackgroundOpacity float64 `toml:"background_opacity"`

	// FontSize is the font size in points.
	FontSize float64 `toml:"font_size"`

	// FontThickening enables glyph thickening. Changing it forces a
	// full glyph re-render.
	FontThickening bool `toml:"font_thickening"`

	// ShaperFeatures are font feature flags passed to the shaper.
	ShaperFeatures []string `toml:"shaper_features"`

	// RenderInterval is the delay between a wakeup and the frame
	// rebuild it triggers.
	RenderInterval Duration `toml:"render_interval"`

	// DrawInterval is the animation redraw interval.
	DrawInterval Duration `toml:"draw_interval"`

	// CursorBlinkInterval is the cursor blink half-period.
	CursorBlinkInterval Duration `toml:"cursor_blink_interval"`

	// CacheFactor scales row-cache capacity relative to the visible
	// row count.
	CacheFactor int `toml:"cache_factor"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `toml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		BackgroundOpacity:   1.0,
		FontSize:            13,
		RenderInterval:      Duration(10 * time.Millisecond),
		DrawInterval:        Duration(33 * time.Millisecond),
		CursorBlinkInterval: Duration(600 * time.Millisecond),
		CacheFactor:         4,
		LogLevel:            "info",
	}
}

// Load reads a TOML config file over the defaults. A missing file is
// not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func Save(cfg Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.BackgroundOpacity <= 0 || c.BackgroundOpacity > 1 {
		return fmt.Errorf("%w: background_opacity %v out of range (0, 1]", ErrInvalidConfig, c.BackgroundOpacity)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("%w: font_size must be positive", ErrInvalidConfig)
	}
	if c.RenderInterval <= 0 || c.DrawInterval <= 0 || c.CursorBlinkInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	if c.CacheFactor < 1 {
		return fmt.Errorf("%w: cache_factor must be at least 1", ErrInvalidConfig)
	}
	return nil
}
