package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts "#rgb", "#rrggbb" and "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// ColorOr parses s and falls back to def when s is empty or malformed.
func ColorOr(s string, def color.Color) color.Color {
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

// Highlight returns c lightened in CIE L*a*b* space, used for selected ROIs.
func Highlight(c color.Color) color.Color {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	l, a, b := cf.Lab()
	l += 0.25
	if l > 1 {
		l = 1
	}
	r, g, bl := colorful.Lab(l, a, b).Clamped().RGB255()
	_, _, _, alpha := c.RGBA()
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(alpha >> 8)}
}
