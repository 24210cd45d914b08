package pixel

import (
	"errors"
	"math"
	"testing"
)

func TestToGrayscale_IntegerWeights(t *testing.T) {
	// Integer grayscale uses (250R + 500G + 125B) / 1000, and callers
	// depend on the exact quotients.
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 223},
		{"pure red", 255, 0, 0, 63},
		{"pure green", 0, 255, 0, 127},
		{"pure blue", 0, 0, 255, 31},
		{"mid gray", 128, 128, 128, 112},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, _ := New(Dimensions{Width: 1, Height: 1}, RGB, UInt8)
			Set[uint8](img, 0, 0, 0, tt.r)
			Set[uint8](img, 0, 0, 1, tt.g)
			Set[uint8](img, 0, 0, 2, tt.b)

			gray, err := img.ToGrayscale()
			if err != nil {
				t.Fatalf("ToGrayscale failed: %v", err)
			}
			if gray.Format() != Gray || gray.Channels() != 1 {
				t.Fatalf("result shape: %s", gray.Description())
			}
			got, _ := At[uint8](gray, 0, 0, 0)
			if got != tt.want {
				t.Errorf("gray(%d,%d,%d): got %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestToGrayscale_UInt16(t *testing.T) {
	img, _ := New(Dimensions{Width: 1, Height: 1}, RGB, UInt16)
	Set[uint16](img, 0, 0, 0, 40000)
	Set[uint16](img, 0, 0, 1, 20000)
	Set[uint16](img, 0, 0, 2, 10000)

	gray, err := img.ToGrayscale()
	if err != nil {
		t.Fatalf("ToGrayscale failed: %v", err)
	}
	got, _ := At[uint16](gray, 0, 0, 0)
	if want := uint16((250*40000 + 500*20000 + 125*10000) / 1000); got != want {
		t.Errorf("uint16 gray: got %d, want %d", got, want)
	}
}

func TestToGrayscale_FloatWeights(t *testing.T) {
	img, _ := New(Dimensions{Width: 1, Height: 1}, RGB, Float32)
	Set[float32](img, 0, 0, 0, 1.0)
	Set[float32](img, 0, 0, 1, 0.5)
	Set[float32](img, 0, 0, 2, 0.25)

	gray, err := img.ToGrayscale()
	if err != nil {
		t.Fatalf("ToGrayscale failed: %v", err)
	}
	got, _ := At[float32](gray, 0, 0, 0)
	want := 0.299*1.0 + 0.587*0.5 + 0.114*0.25
	if math.Abs(float64(got)-want) > 1e-6 {
		t.Errorf("float gray: got %v, want %v", got, want)
	}
}

func TestToGrayscale_DropsAlpha(t *testing.T) {
	img, _ := New(Dimensions{Width: 1, Height: 1}, RGBA, UInt8)
	Set[uint8](img, 0, 0, 0, 100)
	Set[uint8](img, 0, 0, 1, 100)
	Set[uint8](img, 0, 0, 2, 100)
	Set[uint8](img, 0, 0, 3, 0) // alpha must not affect the result

	gray, err := img.ToGrayscale()
	if err != nil {
		t.Fatalf("ToGrayscale failed: %v", err)
	}
	got, _ := At[uint8](gray, 0, 0, 0)
	if got != 87 {
		t.Errorf("rgba gray: got %d, want 87", got)
	}
}

func TestToGrayscale_Unsupported(t *testing.T) {
	spectral, _ := NewSpectral(Dimensions{Width: 2, Height: 2}, 5, UInt16)
	if _, err := spectral.ToGrayscale(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("grayscale of spectral: got %v, want ErrUnsupported", err)
	}
}

func TestToRGB(t *testing.T) {
	t.Run("gray replicates", func(t *testing.T) {
		img, _ := New(Dimensions{Width: 2, Height: 1}, Gray, UInt8)
		Set[uint8](img, 1, 0, 0, 77)

		rgb, err := img.ToRGB()
		if err != nil {
			t.Fatalf("ToRGB failed: %v", err)
		}
		for c := uint32(0); c < 3; c++ {
			got, _ := At[uint8](rgb, 1, 0, c)
			if got != 77 {
				t.Errorf("channel %d: got %d, want 77", c, got)
			}
		}
	})

	t.Run("rgba drops alpha", func(t *testing.T) {
		img, _ := New(Dimensions{Width: 1, Height: 1}, RGBA, UInt8)
		Set[uint8](img, 0, 0, 0, 10)
		Set[uint8](img, 0, 0, 1, 20)
		Set[uint8](img, 0, 0, 2, 30)
		Set[uint8](img, 0, 0, 3, 40)

		rgb, err := img.ToRGB()
		if err != nil {
			t.Fatalf("ToRGB failed: %v", err)
		}
		if rgb.Channels() != 3 {
			t.Fatalf("channels: got %d, want 3", rgb.Channels())
		}
		got, _ := At[uint8](rgb, 0, 0, 2)
		if got != 30 {
			t.Errorf("blue: got %d, want 30", got)
		}
	})

	t.Run("spectral refused", func(t *testing.T) {
		spectral, _ := NewSpectral(Dimensions{Width: 2, Height: 2}, 3, UInt8)
		if _, err := spectral.ToRGB(); !errors.Is(err, ErrUnsupported) {
			t.Errorf("ToRGB on spectral: got %v, want ErrUnsupported", err)
		}
	})
}

func TestExtractChannels(t *testing.T) {
	src := createRampSpectral(4, 3, 6, Contiguous)

	tests := []struct {
		name       string
		indices    []uint32
		wantFormat Format
	}{
		{"single becomes gray", []uint32{4}, Gray},
		{"three become rgb", []uint32{0, 2, 5}, RGB},
		{"two stay spectral", []uint32{1, 3}, Spectral},
		{"four stay spectral", []uint32{0, 1, 2, 3}, Spectral},
		{"repeats allowed", []uint32{2, 2, 2}, RGB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := src.ExtractChannels(tt.indices)
			if err != nil {
				t.Fatalf("ExtractChannels failed: %v", err)
			}
			if out.Format() != tt.wantFormat {
				t.Errorf("format: got %s, want %s", out.Format(), tt.wantFormat)
			}
			if out.Channels() != uint32(len(tt.indices)) {
				t.Errorf("channels: got %d, want %d", out.Channels(), len(tt.indices))
			}
			for c, sc := range tt.indices {
				got, _ := At[uint16](out, 3, 2, uint32(c))
				want, _ := At[uint16](src, 3, 2, sc)
				if got != want {
					t.Errorf("channel %d (from %d): got %d, want %d", c, sc, got, want)
				}
			}
		})
	}
}

func TestExtractChannels_Invalid(t *testing.T) {
	src := createRampSpectral(4, 3, 6, Contiguous)

	if _, err := src.ExtractChannels([]uint32{6}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("out-of-range index: got %v, want ErrOutOfRange", err)
	}
	if _, err := src.ExtractChannels(nil); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("empty index list: got %v, want ErrOutOfRange", err)
	}
}

func TestConvertLayout_RoundTrip(t *testing.T) {
	src := createRampSpectral(5, 4, 3, Contiguous)

	planar, err := src.ToPlanar()
	if err != nil {
		t.Fatalf("ToPlanar failed: %v", err)
	}
	back, err := planar.ToInterleaved()
	if err != nil {
		t.Fatalf("ToInterleaved failed: %v", err)
	}

	for c := uint32(0); c < 3; c++ {
		for y := uint32(0); y < 4; y++ {
			for x := uint32(0); x < 5; x++ {
				want, _ := At[uint16](src, x, y, c)
				got, _ := At[uint16](back, x, y, c)
				if got != want {
					t.Fatalf("round trip at (%d,%d,%d): got %d, want %d", x, y, c, got, want)
				}
			}
		}
	}
}
