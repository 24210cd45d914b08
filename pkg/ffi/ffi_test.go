package ffi

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/wholeslide/pkg/pixel"
)

func TestCreateImage(t *testing.T) {
	h, status := CreateImage(32, 16, int32(pixel.RGB), int32(pixel.UInt8), int32(pixel.Contiguous))
	if status != OK || h == 0 {
		t.Fatalf("CreateImage: handle %d, status %v", h, status)
	}
	defer DestroyImage(h)

	info, status := GetImageInfo(h)
	if status != OK {
		t.Fatalf("GetImageInfo: %v", status)
	}
	if info.Width != 32 || info.Height != 16 || info.Channels != 3 || info.SizeBytes != 32*16*3 {
		t.Errorf("info: %+v", info)
	}
}

func TestCreateImage_BadArguments(t *testing.T) {
	tests := []struct {
		name                     string
		format, datatype, planar int32
	}{
		{"spectral via CreateImage", int32(pixel.Spectral), int32(pixel.UInt8), int32(pixel.Contiguous)},
		{"bogus format", 99, int32(pixel.UInt8), int32(pixel.Contiguous)},
		{"bogus datatype", int32(pixel.RGB), 99, int32(pixel.Contiguous)},
		{"bogus planar", int32(pixel.RGB), int32(pixel.UInt8), 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, status := CreateImage(8, 8, tt.format, tt.datatype, tt.planar)
			if status == OK || h != 0 {
				t.Errorf("got handle %d, status %v; want zero handle and error", h, status)
			}
		})
	}
}

func TestInvalidHandles(t *testing.T) {
	const bogus = Handle(999999)

	if status := DestroyImage(bogus); status != StatusInvalidHandle {
		t.Errorf("DestroyImage: %v", status)
	}
	if _, status := GetImageInfo(bogus); status != StatusInvalidHandle {
		t.Errorf("GetImageInfo: %v", status)
	}
	if _, status := ImageToGrayscale(bogus); status != StatusInvalidHandle {
		t.Errorf("ImageToGrayscale: %v", status)
	}
	if _, status := GetLevelCount(bogus); status != StatusInvalidHandle {
		t.Errorf("GetLevelCount: %v", status)
	}
	if status := CloseSlide(bogus); status != StatusInvalidHandle {
		t.Errorf("CloseSlide: %v", status)
	}
}

func TestHandleNotReusedAfterDestroy(t *testing.T) {
	h, _ := CreateImage(4, 4, int32(pixel.Gray), int32(pixel.UInt8), int32(pixel.Contiguous))
	if status := DestroyImage(h); status != OK {
		t.Fatalf("DestroyImage: %v", status)
	}
	if status := DestroyImage(h); status != StatusInvalidHandle {
		t.Errorf("double destroy: %v, want StatusInvalidHandle", status)
	}
	if _, status := GetImageInfo(h); status != StatusInvalidHandle {
		t.Errorf("stale handle lookup: %v, want StatusInvalidHandle", status)
	}
}

func TestImageConversions(t *testing.T) {
	h, _ := CreateSpectralImage(8, 8, 5, int32(pixel.UInt16), int32(pixel.Contiguous))
	defer DestroyImage(h)

	sub, status := ImageExtractChannels(h, []uint32{0, 2, 4})
	if status != OK {
		t.Fatalf("ImageExtractChannels: %v", status)
	}
	defer DestroyImage(sub)
	info, _ := GetImageInfo(sub)
	if info.Channels != 3 || info.Format != int32(pixel.RGB) {
		t.Errorf("extracted info: %+v", info)
	}

	if _, status := ImageExtractChannels(h, []uint32{9}); status != StatusOutOfRange {
		t.Errorf("bad index: %v, want StatusOutOfRange", status)
	}
	if _, status := ImageToRGB(h); status != StatusUnsupported {
		t.Errorf("spectral to RGB: %v, want StatusUnsupported", status)
	}

	planar, status := ImageToPlanar(h)
	if status != OK {
		t.Fatalf("ImageToPlanar: %v", status)
	}
	defer DestroyImage(planar)
	info, _ = GetImageInfo(planar)
	if info.PlanarConfig != int32(pixel.Separate) {
		t.Errorf("planar info: %+v", info)
	}
}

func TestImagePaste(t *testing.T) {
	dst, _ := CreateImage(16, 16, int32(pixel.RGB), int32(pixel.UInt8), int32(pixel.Contiguous))
	src, _ := CreateImage(8, 8, int32(pixel.RGB), int32(pixel.UInt8), int32(pixel.Contiguous))
	wrong, _ := CreateImage(8, 8, int32(pixel.RGB), int32(pixel.UInt16), int32(pixel.Contiguous))
	defer DestroyImage(dst)
	defer DestroyImage(src)
	defer DestroyImage(wrong)

	if status := ImagePaste(dst, src, 4, 4, 0, 0, 0, 0); status != OK {
		t.Errorf("paste: %v", status)
	}
	if status := ImagePaste(dst, wrong, 0, 0, 0, 0, 0, 0); status != StatusTypeMismatch {
		t.Errorf("mismatched paste: %v, want StatusTypeMismatch", status)
	}
	if status := ImagePaste(dst, Handle(999999), 0, 0, 0, 0, 0, 0); status != StatusInvalidHandle {
		t.Errorf("bogus source: %v, want StatusInvalidHandle", status)
	}
}

func TestCopyImageData(t *testing.T) {
	h, _ := CreateImage(2, 2, int32(pixel.Gray), int32(pixel.UInt8), int32(pixel.Contiguous))
	defer DestroyImage(h)

	data, status := CopyImageData(h)
	if status != OK || len(data) != 4 {
		t.Fatalf("CopyImageData: %d bytes, status %v", len(data), status)
	}
	// The copy is owned by the caller; mutating it must not touch the
	// image.
	data[0] = 0xFF
	again, _ := CopyImageData(h)
	if again[0] != 0 {
		t.Error("CopyImageData should return an independent copy")
	}
}

// writeSlideFixture writes a minimal single-level pyramiddir slide.
func writeSlideFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	manifest := `kind: rgb
tile_size: {width: 64, height: 64}
levels:
  - {width: 100, height: 80, downsample: 1}
associated:
  thumbnail: thumb.png
`
	if err := os.WriteFile(filepath.Join(root, "slide.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "level_0"), 0o755); err != nil {
		t.Fatal(err)
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			w := 64
			if col == 1 {
				w = 36
			}
			h := 64
			if row == 1 {
				h = 16
			}
			tile := image.NewNRGBA(image.Rect(0, 0, w, h))
			for i := range tile.Pix {
				tile.Pix[i] = 0xFF
			}
			writeFixturePNG(t, filepath.Join(root, "level_0", fmt.Sprintf("tile_%d_%d.png", col, row)), tile)
		}
	}
	thumb := image.NewNRGBA(image.Rect(0, 0, 10, 8))
	thumb.SetNRGBA(0, 0, color.NRGBA{R: 9, A: 255})
	writeFixturePNG(t, filepath.Join(root, "thumb.png"), thumb)
	return root
}

func writeFixturePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func TestSlideSurface(t *testing.T) {
	h, status := OpenSlide(writeSlideFixture(t))
	if status != OK {
		t.Fatalf("OpenSlide: %v", status)
	}
	defer CloseSlide(h)

	if count, status := GetLevelCount(h); status != OK || count != 1 {
		t.Errorf("GetLevelCount: %d, %v", count, status)
	}
	w, hgt, ds, status := GetLevelInfo(h, 0)
	if status != OK || w != 100 || hgt != 80 || ds != 1 {
		t.Errorf("GetLevelInfo: %dx%d @%v, %v", w, hgt, ds, status)
	}
	if _, _, _, status := GetLevelInfo(h, 5); status != StatusInvalidArgument {
		t.Errorf("bad level: %v, want StatusInvalidArgument", status)
	}

	keys, status := GetPropertyKeys(h)
	if status != OK || len(keys) == 0 {
		t.Errorf("GetPropertyKeys: %v, %v", keys, status)
	}
	if v, status := GetPropertyString(h, "format"); status != OK || v != "pyramiddir" {
		t.Errorf("format property: %q, %v", v, status)
	}
	if levels, status := GetPropertyUint(h, "levels"); status != OK || levels != 1 {
		t.Errorf("levels property: %d, %v", levels, status)
	}
	if _, status := GetPropertyString(h, "no_such_key"); status != StatusNotFound {
		t.Errorf("unknown key: %v, want StatusNotFound", status)
	}

	names, status := GetAssociatedImageNames(h)
	if status != OK || len(names) != 1 || names[0] != "thumbnail" {
		t.Errorf("associated names: %v, %v", names, status)
	}
	thumb, status := ReadAssociatedImage(h, "thumbnail")
	if status != OK {
		t.Fatalf("ReadAssociatedImage: %v", status)
	}
	defer DestroyImage(thumb)
	if _, status := ReadAssociatedImage(h, "label"); status != StatusNotFound {
		t.Errorf("unknown associated image: %v, want StatusNotFound", status)
	}
}

func TestSlideRegionCalls(t *testing.T) {
	h, status := OpenSlide(writeSlideFixture(t))
	if status != OK {
		t.Fatalf("OpenSlide: %v", status)
	}
	defer CloseSlide(h)

	img, status := ReadRegionAt(h, 10, 10, 50, 40, 0)
	if status != OK {
		t.Fatalf("ReadRegionAt: %v", status)
	}
	defer DestroyImage(img)
	info, _ := GetImageInfo(img)
	if info.Width != 50 || info.Height != 40 {
		t.Errorf("region info: %+v", info)
	}

	if _, status := ReadRegionAt(h, 500, 500, 10, 10, 0); status != StatusInvalidArgument {
		t.Errorf("outside read: %v, want StatusInvalidArgument", status)
	}

	valid, status := IsRegionValid(h, RegionSpec{X: 10, Y: 10, Width: 10, Height: 10})
	if status != OK || !valid {
		t.Errorf("IsRegionValid inside: %v, %v", valid, status)
	}
	valid, _ = IsRegionValid(h, RegionSpec{X: 500, Y: 0, Width: 10, Height: 10})
	if valid {
		t.Error("IsRegionValid outside: want false")
	}

	clamped, status := ClampRegion(h, RegionSpec{X: 90, Y: 70, Width: 100, Height: 100})
	if status != OK || clamped.Width != 10 || clamped.Height != 10 {
		t.Errorf("ClampRegion: %+v, %v", clamped, status)
	}
}

func TestOpenSlide_BadPath(t *testing.T) {
	h, status := OpenSlide("/nonexistent/slide")
	if status != StatusNotFound || h != 0 {
		t.Errorf("OpenSlide on missing path: handle %d, status %v", h, status)
	}
}
