package pixel

import (
	"errors"
	"testing"
)

func TestAtSet_RoundTrip(t *testing.T) {
	img, _ := New(Dimensions{Width: 4, Height: 4}, Gray, Int16)

	if err := Set[int16](img, 2, 3, 0, -1234); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := At[int16](img, 2, 3, 0)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if got != -1234 {
		t.Errorf("round trip: got %d, want -1234", got)
	}
}

func TestAt_TypeMismatch(t *testing.T) {
	img, _ := New(Dimensions{Width: 4, Height: 4}, Gray, UInt16)

	// Same size, different signedness: must not reinterpret.
	if _, err := At[int16](img, 0, 0, 0); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("At[int16] on uint16 image: got %v, want ErrTypeMismatch", err)
	}
	if err := Set[uint8](img, 0, 0, 0, 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set[uint8] on uint16 image: got %v, want ErrTypeMismatch", err)
	}
	if _, err := Data[float32](img); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Data[float32] on uint16 image: got %v, want ErrTypeMismatch", err)
	}
}

func TestAt_OutOfRange(t *testing.T) {
	img, _ := New(Dimensions{Width: 10, Height: 5}, RGB, UInt8)

	tests := []struct {
		name          string
		x, y, channel uint32
	}{
		{"x at width", 10, 0, 0},
		{"y at height", 0, 5, 0},
		{"channel at count", 0, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := At[uint8](img, tt.x, tt.y, tt.channel); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("At(%d,%d,%d): got %v, want ErrOutOfRange", tt.x, tt.y, tt.channel, err)
			}
		})
	}
}

func TestAt_LayoutAgreement(t *testing.T) {
	// The same logical samples must come back identically from both
	// layouts.
	contig := createRampSpectral(6, 4, 3, Contiguous)
	planar := createRampSpectral(6, 4, 3, Separate)

	for c := uint32(0); c < 3; c++ {
		for y := uint32(0); y < 4; y++ {
			for x := uint32(0); x < 6; x++ {
				a, _ := At[uint16](contig, x, y, c)
				b, _ := At[uint16](planar, x, y, c)
				if a != b {
					t.Fatalf("layout disagreement at (%d,%d,%d): contig %d, planar %d", x, y, c, a, b)
				}
			}
		}
	}
}

func TestData_AliasesBuffer(t *testing.T) {
	img, _ := New(Dimensions{Width: 2, Height: 2}, Gray, Float32)
	samples, err := Data[float32](img)
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("Data length: got %d, want 4", len(samples))
	}

	samples[3] = 2.5
	got, _ := At[float32](img, 1, 1, 0)
	if got != 2.5 {
		t.Errorf("Data slice should alias the image: got %v, want 2.5", got)
	}
}

func TestRow(t *testing.T) {
	planar := createRampSpectral(6, 4, 3, Separate)
	row, err := Row[uint16](planar, 2, 1)
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	if len(row) != 6 {
		t.Fatalf("row length: got %d, want 6", len(row))
	}
	if want := uint16(1*1000 + 2*6); row[0] != want {
		t.Errorf("row start: got %d, want %d", row[0], want)
	}

	contig := createRampSpectral(6, 4, 3, Contiguous)
	row, err = Row[uint16](contig, 0, 0)
	if err != nil {
		t.Fatalf("Row on contiguous failed: %v", err)
	}
	if len(row) != 6*3 {
		t.Errorf("contiguous row length: got %d, want 18", len(row))
	}

	if _, err := Row[uint16](contig, 0, 1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("per-channel row on contiguous image: got %v, want ErrUnsupported", err)
	}
	if _, err := Row[uint16](planar, 4, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("row past height: got %v, want ErrOutOfRange", err)
	}
}
