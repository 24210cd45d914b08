// # Spectral Compositing
//
// Package render turns N-channel spectral pixel data into a viewable
// RGB image. Each channel is windowed to an intensity range, normalized,
// tinted with the channel's display color, and the tinted layers are
// blended additively, which is how multiplexed fluorescence data is
// conventionally displayed.
package render

import (
	"fmt"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blend"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/slide"
)

// Window is one channel's display intensity range: samples at or below
// Low render black, samples at or above High render at full channel
// color.
type Window struct {
	Low, High float64
}

// Options controls compositing.
type Options struct {
	// Windows supplies a fixed window per channel. When empty (or for
	// any zero-valued entry) the window is derived from the data.
	Windows []Window
	// LowQuantile and HighQuantile set the auto-window percentiles.
	// Zero values default to 0.01 and 0.998.
	LowQuantile  float64
	HighQuantile float64
}

func (o *Options) quantiles() (float64, float64) {
	low, high := o.LowQuantile, o.HighQuantile
	if low == 0 {
		low = 0.01
	}
	if high == 0 {
		high = 0.998
	}
	return low, high
}

// AutoWindow derives a display window for one channel from its sample
// distribution. Degenerate (constant) channels get a unit-width window
// so they render either black or full color rather than dividing by
// zero.
func AutoWindow(values []float64, lowQ, highQ float64) Window {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	w := Window{
		Low:  stat.Quantile(lowQ, stat.Empirical, sorted, nil),
		High: stat.Quantile(highQ, stat.Empirical, sorted, nil),
	}
	if w.High <= w.Low {
		w.High = w.Low + 1
	}
	return w
}

// Composite renders a spectral image to 8-bit RGB. The channels slice
// supplies one display color per image channel; a mismatched length is
// an error. Gray images composite as a single channel the same way.
func Composite(img *pixel.Image, channels []slide.Channel, opts Options) (*pixel.Image, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: composite of empty image", pixel.ErrUnsupported)
	}
	if img.Format() != pixel.Spectral && img.Format() != pixel.Gray {
		return nil, fmt.Errorf("%w: composite of %s image", pixel.ErrUnsupported, img.Format())
	}
	if uint32(len(channels)) != img.Channels() {
		return nil, fmt.Errorf("%w: %d channel records for %d channels",
			pixel.ErrTypeMismatch, len(channels), img.Channels())
	}

	lowQ, highQ := opts.quantiles()
	w, h := int(img.Width()), int(img.Height())
	var composite *image.RGBA
	for c := uint32(0); c < img.Channels(); c++ {
		values, err := img.FloatPlane(c)
		if err != nil {
			return nil, err
		}
		window := Window{}
		if int(c) < len(opts.Windows) {
			window = opts.Windows[c]
		}
		if window.High <= window.Low {
			window = AutoWindow(values, lowQ, highQ)
		}
		layer := tintLayer(values, w, h, window, channels[c].Color)
		if composite == nil {
			composite = layer
		} else {
			composite = blend.Add(composite, layer)
		}
	}

	out, err := pixel.FromGoImage(composite)
	if err != nil {
		return nil, err
	}
	return out.ToRGB()
}

// tintLayer renders one windowed, normalized channel in its display
// color.
func tintLayer(values []float64, w, h int, window Window, color slide.ColorRGB) *image.RGBA {
	layer := image.NewRGBA(image.Rect(0, 0, w, h))
	scale := 1.0 / (window.High - window.Low)
	for i, v := range values {
		norm := (v - window.Low) * scale
		if norm < 0 {
			norm = 0
		} else if norm > 1 {
			norm = 1
		}
		off := i * 4
		layer.Pix[off+0] = uint8(norm*float64(color.R) + 0.5)
		layer.Pix[off+1] = uint8(norm*float64(color.G) + 0.5)
		layer.Pix[off+2] = uint8(norm*float64(color.B) + 0.5)
		layer.Pix[off+3] = 0xFF
	}
	return layer
}
