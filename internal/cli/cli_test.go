package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseChannelList(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint32
		wantErr bool
	}{
		{"0,2,4", []uint32{0, 2, 4}, false},
		{" 1 , 3 ", []uint32{1, 3}, false},
		{"7", []uint32{7}, false},
		{"a,b", nil, true},
		{"1,-2", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseChannelList(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// createCLISlide writes a tiny pyramiddir slide for command tests.
func createCLISlide(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	manifest := `kind: rgb
tile_size: {width: 64, height: 64}
levels:
  - {width: 64, height: 64, downsample: 1}
properties:
  scanner_model: TestScanner
`
	if err := os.WriteFile(filepath.Join(root, "slide.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "level_0"), 0o755); err != nil {
		t.Fatal(err)
	}
	tile := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			tile.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	file, err := os.Create(filepath.Join(root, "level_0", "tile_0_0.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, tile); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestInfoCommand(t *testing.T) {
	var out bytes.Buffer
	infoCmd.SetOut(&out)
	defer infoCmd.SetOut(nil)

	if err := runInfo(infoCmd, []string{createCLISlide(t)}); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Format: pyramiddir (rgb)",
		"Dimensions: 64x64",
		"Tile size: 64x64",
		"0: 64x64  downsample 1",
		"scanner_model: TestScanner",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("info output missing %q:\n%s", want, text)
		}
	}
}

func TestCacheCommand(t *testing.T) {
	var out bytes.Buffer
	cacheCmd.SetOut(&out)
	defer cacheCmd.SetOut(nil)

	if err := runCache(cacheCmd, nil); err != nil {
		t.Fatalf("cache failed: %v", err)
	}
	if !strings.Contains(out.String(), "Capacity:") {
		t.Errorf("cache output: %s", out.String())
	}
}
