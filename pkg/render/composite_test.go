package render

import (
	"errors"
	"testing"

	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/slide"
)

func createTwoChannel(t *testing.T) *pixel.Image {
	t.Helper()
	img, err := pixel.NewSpectral(pixel.Dimensions{Width: 4, Height: 1}, 2, pixel.UInt16)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	for x, v := range []uint16{0, 50, 100, 200} {
		pixel.Set[uint16](img, uint32(x), 0, 0, v)
	}
	// Channel 1 stays zero.
	return img
}

func testChannels() []slide.Channel {
	return []slide.Channel{
		{Name: "A", Color: slide.ColorRGB{R: 255}},
		{Name: "B", Color: slide.ColorRGB{G: 255}},
	}
}

func TestComposite_FixedWindows(t *testing.T) {
	img := createTwoChannel(t)

	out, err := Composite(img, testChannels(), Options{
		Windows: []Window{{Low: 0, High: 200}, {Low: 0, High: 1}},
	})
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if out.Format() != pixel.RGB || out.DataType() != pixel.UInt8 {
		t.Fatalf("result shape: %s", out.Description())
	}
	if out.Width() != 4 || out.Height() != 1 {
		t.Fatalf("result size: got %dx%d", out.Width(), out.Height())
	}

	// Channel 0 is red with a 0..200 window: 0, 50, 100, 200 normalize
	// to 0, 0.25, 0.5, 1.0 of full red.
	wantRed := []uint8{0, 64, 128, 255}
	for x := uint32(0); x < 4; x++ {
		r, _ := pixel.At[uint8](out, x, 0, 0)
		g, _ := pixel.At[uint8](out, x, 0, 1)
		if r != wantRed[x] {
			t.Errorf("red at %d: got %d, want %d", x, r, wantRed[x])
		}
		if g != 0 {
			t.Errorf("green at %d: got %d, want 0 (empty channel)", x, g)
		}
	}
}

func TestComposite_AdditiveBlend(t *testing.T) {
	img, _ := pixel.NewSpectral(pixel.Dimensions{Width: 1, Height: 1}, 2, pixel.UInt8)
	pixel.Set[uint8](img, 0, 0, 0, 255)
	pixel.Set[uint8](img, 0, 0, 1, 255)

	channels := []slide.Channel{
		{Color: slide.ColorRGB{R: 200, G: 100}},
		{Color: slide.ColorRGB{G: 100, B: 50}},
	}
	out, err := Composite(img, channels, Options{
		Windows: []Window{{High: 255}, {High: 255}},
	})
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	r, _ := pixel.At[uint8](out, 0, 0, 0)
	g, _ := pixel.At[uint8](out, 0, 0, 1)
	b, _ := pixel.At[uint8](out, 0, 0, 2)
	if r != 200 || g != 200 || b != 50 {
		t.Errorf("blended color: got (%d,%d,%d), want (200,200,50)", r, g, b)
	}
}

func TestComposite_AutoWindow(t *testing.T) {
	img, _ := pixel.NewSpectral(pixel.Dimensions{Width: 16, Height: 16}, 1, pixel.Float32)
	for y := uint32(0); y < 16; y++ {
		for x := uint32(0); x < 16; x++ {
			pixel.Set[float32](img, x, y, 0, float32(x)*float32(y))
		}
	}

	out, err := Composite(img, []slide.Channel{{Color: slide.ColorRGB{B: 255}}}, Options{})
	if err != nil {
		t.Fatalf("Composite with auto window failed: %v", err)
	}

	// The brightest corner should be at or near full channel color, the
	// darkest at zero.
	bright, _ := pixel.At[uint8](out, 15, 15, 2)
	dark, _ := pixel.At[uint8](out, 0, 0, 2)
	if bright < 250 {
		t.Errorf("brightest pixel: got %d, want near 255", bright)
	}
	if dark != 0 {
		t.Errorf("darkest pixel: got %d, want 0", dark)
	}
}

func TestComposite_ConstantChannel(t *testing.T) {
	img, _ := pixel.NewSpectral(pixel.Dimensions{Width: 4, Height: 4}, 1, pixel.UInt8)
	if _, err := Composite(img, []slide.Channel{{Color: slide.ColorRGB{R: 255}}}, Options{}); err != nil {
		t.Errorf("constant channel should render, not fail: %v", err)
	}
}

func TestComposite_Errors(t *testing.T) {
	spectral := createTwoChannel(t)

	if _, err := Composite(spectral, testChannels()[:1], Options{}); !errors.Is(err, pixel.ErrTypeMismatch) {
		t.Errorf("channel count mismatch: got %v, want ErrTypeMismatch", err)
	}

	rgb, _ := pixel.New(pixel.Dimensions{Width: 2, Height: 2}, pixel.RGB, pixel.UInt8)
	if _, err := Composite(rgb, testChannels(), Options{}); !errors.Is(err, pixel.ErrUnsupported) {
		t.Errorf("RGB input: got %v, want ErrUnsupported", err)
	}
}

func TestAutoWindow(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	w := AutoWindow(values, 0.1, 0.9)
	if w.Low < 5 || w.Low > 15 || w.High < 85 || w.High > 95 {
		t.Errorf("window: got %+v, want roughly [10, 90]", w)
	}

	flat := AutoWindow([]float64{5, 5, 5}, 0.01, 0.998)
	if flat.High <= flat.Low {
		t.Errorf("degenerate window not widened: %+v", flat)
	}
}
