package slide

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorRGB is an 8-bit display color for a spectral channel.
type ColorRGB struct {
	R, G, B uint8
}

// Pack returns the color as 0x00RRGGBB.
func (c ColorRGB) Pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// String renders the color as "r,g,b".
func (c ColorRGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// ParseColorRGB parses a "r,g,b" triple with components in [0,255].
func ParseColorRGB(s string) (ColorRGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ColorRGB{}, fmt.Errorf("invalid RGB triple %q", s)
	}
	var vals [3]uint8
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 255 {
			return ColorRGB{}, fmt.Errorf("invalid RGB component %q (must be in [0, 255])", part)
		}
		vals[i] = uint8(n)
	}
	return ColorRGB{R: vals[0], G: vals[1], B: vals[2]}, nil
}

// Channel is the per-channel record of a spectral slide.
type Channel struct {
	Name         string
	Biomarker    string
	Color        ColorRGB
	ExposureTime uint32
	SignalUnits  uint32
}

// DefaultChannelName is the name used when a format supplies none.
// Channel indices are 0-based; the display name is 1-based.
func DefaultChannelName(index int) string {
	return fmt.Sprintf("Channel %d", index+1)
}

// DefaultBiomarker is the biomarker label used when a format supplies
// none.
func DefaultBiomarker(index int) string {
	return fmt.Sprintf("Unknown Biomarker %d", index+1)
}

// DefaultChannelColor returns the display color assigned to a channel
// index when the format does not carry one. The first six channels get
// fixed primaries; later channels walk the hue circle in 128 degree
// steps, dimming slightly every ten channels so long channel lists stay
// distinguishable.
func DefaultChannelColor(index int) ColorRGB {
	if index >= 360 {
		index %= 360
	}
	switch index {
	case 0:
		return ColorRGB{R: 255}
	case 1:
		return ColorRGB{G: 255}
	case 2:
		return ColorRGB{B: 255}
	case 3:
		return ColorRGB{R: 255, G: 224}
	case 4:
		return ColorRGB{G: 224, B: 224}
	case 5:
		return ColorRGB{R: 255, B: 224}
	}
	hue := float64((index * 128) % 360)
	level := clampUnit(1.0 - float64(index/10)/20.0)
	r, g, b := colorful.Hsv(hue, level, level).RGB255()
	return ColorRGB{R: r, G: g, B: b}
}

func clampUnit(v float64) float64 {
	if v < 0.2 {
		return 0.2
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// FillChannelDefaults populates the empty fields of a channel list read
// from a format. A zero color counts as unsupplied; a format that wants
// a genuinely black channel should use (1,1,1) or carry explicit
// metadata.
func FillChannelDefaults(channels []Channel) []Channel {
	out := make([]Channel, len(channels))
	for i, ch := range channels {
		if ch.Name == "" {
			ch.Name = DefaultChannelName(i)
		}
		if ch.Biomarker == "" {
			ch.Biomarker = DefaultBiomarker(i)
		}
		if ch.Color == (ColorRGB{}) {
			ch.Color = DefaultChannelColor(i)
		}
		out[i] = ch
	}
	return out
}
