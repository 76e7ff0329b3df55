package theme

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/glint/internal/renderer/core"
)

// Load reads a theme from a JSON file. Missing keys keep their
// defaults, so a theme file may override as little as one color.
//
// Recognized keys:
//
//	foreground, background, cursor     "#RRGGBB" strings
//	selection.foreground, selection.background
//	background_opacity                 number in (0, 1]
//	palette                            array of up to 256 hex strings
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses JSON theme data over the default theme.
func Parse(data []byte) (*Theme, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid theme JSON")
	}

	t := Default()
	doc := gjson.ParseBytes(data)

	if v := doc.Get("foreground"); v.Exists() {
		c, err := parseHex(v.String())
		if err != nil {
			return nil, err
		}
		t.Foreground = c
	}
	if v := doc.Get("background"); v.Exists() {
		c, err := parseHex(v.String())
		if err != nil {
			return nil, err
		}
		t.Background = c
	}
	if v := doc.Get("cursor"); v.Exists() {
		c, err := parseHex(v.String())
		if err != nil {
			return nil, err
		}
		t.Cursor = c
	}
	if v := doc.Get("selection.foreground"); v.Exists() {
		c, err := parseHex(v.String())
		if err != nil {
			return nil, err
		}
		t.SelectionForeground = &c
	}
	if v := doc.Get("selection.background"); v.Exists() {
		c, err := parseHex(v.String())
		if err != nil {
			return nil, err
		}
		t.SelectionBackground = &c
	}
	if v := doc.Get("background_opacity"); v.Exists() {
		op := v.Float()
		if op <= 0 || op > 1 {
			return nil, fmt.Errorf("background_opacity %v out of range (0, 1]", op)
		}
		t.BackgroundOpacity = op
	}
	if v := doc.Get("palette"); v.IsArray() {
		var err error
		v.ForEach(func(key, value gjson.Result) bool {
			i := int(key.Int())
			if i < 0 || i > 255 {
				return true
			}
			var c core.RGBA
			c, err = parseHex(value.String())
			if err != nil {
				return false
			}
			t.Palette[i] = c
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Save writes the theme's scalar colors to a JSON file. The palette
// is written only when it differs from the default xterm table.
func Save(t *Theme, path string) error {
	out := "{}"
	var err error

	set := func(key, value string) {
		if err != nil {
			return
		}
		out, err = sjson.Set(out, key, value)
	}

	set("foreground", hexString(t.Foreground))
	set("background", hexString(t.Background))
	set("cursor", hexString(t.Cursor))
	if t.SelectionForeground != nil {
		set("selection.foreground", hexString(*t.SelectionForeground))
	}
	if t.SelectionBackground != nil {
		set("selection.background", hexString(*t.SelectionBackground))
	}
	if err == nil {
		out, err = sjson.Set(out, "background_opacity", t.BackgroundOpacity)
	}

	def := Default()
	if err == nil && t.Palette != def.Palette {
		hexes := make([]string, 256)
		for i, c := range t.Palette {
			hexes[i] = hexString(c)
		}
		out, err = sjson.Set(out, "palette", hexes)
	}

	if err != nil {
		return fmt.Errorf("encoding theme: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing theme file %s: %w", path, err)
	}
	return nil
}

// parseHex parses "#RGB" or "#RRGGBB" hex color strings.
func parseHex(hex string) (core.RGBA, error) {
	hex = strings.TrimPrefix(hex, "#")

	var r, g, b uint64
	var err error

	switch len(hex) {
	case 3:
		r, err = strconv.ParseUint(string(hex[0])+string(hex[0]), 16, 8)
		if err == nil {
			g, err = strconv.ParseUint(string(hex[1])+string(hex[1]), 16, 8)
		}
		if err == nil {
			b, err = strconv.ParseUint(string(hex[2])+string(hex[2]), 16, 8)
		}
	case 6:
		r, err = strconv.ParseUint(hex[0:2], 16, 8)
		if err == nil {
			g, err = strconv.ParseUint(hex[2:4], 16, 8)
		}
		if err == nil {
			b, err = strconv.ParseUint(hex[4:6], 16, 8)
		}
	default:
		return core.RGBA{}, fmt.Errorf("invalid hex color length: %s", hex)
	}

	if err != nil {
		return core.RGBA{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	return core.RGB(uint8(r), uint8(g), uint8(b)), nil
}

func hexString(c core.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
