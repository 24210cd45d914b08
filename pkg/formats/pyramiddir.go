package formats

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/wholeslide/pkg/metadata"
	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/slide"
	"github.com/ironsheep/wholeslide/pkg/tiling"
)

// descriptorFile is the marker and manifest of a pyramid directory.
const descriptorFile = "slide.yaml"

func init() {
	Register(Descriptor{
		Name:  "pyramiddir",
		Probe: probePyramidDir,
		Open:  openPyramidDir,
	})
}

func probePyramidDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(path, descriptorFile))
	return err == nil
}

// pyramidManifest is the slide.yaml schema: pyramid geometry, channel
// metadata, free-form properties, and associated image files, all
// relative to the slide directory.
//
// RGB slides store one PNG per tile, "level_{L}/tile_{col}_{row}.png".
// Spectral slides store one 16-bit grayscale PNG per channel per tile,
// "level_{L}/tile_c{C}_{col}_{row}.png".
type pyramidManifest struct {
	Kind     string `yaml:"kind"` // "rgb" (default) or "spectral"
	TileSize struct {
		Width  uint32 `yaml:"width"`
		Height uint32 `yaml:"height"`
	} `yaml:"tile_size"`
	Levels []struct {
		Width      uint32  `yaml:"width"`
		Height     uint32  `yaml:"height"`
		Downsample float64 `yaml:"downsample"`
	} `yaml:"levels"`
	Bounds *struct {
		X      uint32 `yaml:"x"`
		Y      uint32 `yaml:"y"`
		Width  uint32 `yaml:"width"`
		Height uint32 `yaml:"height"`
	} `yaml:"bounds"`
	Channels []struct {
		Name         string `yaml:"name"`
		Biomarker    string `yaml:"biomarker"`
		Color        string `yaml:"color"` // "r,g,b"
		ExposureTime uint32 `yaml:"exposure_time"`
		SignalUnits  uint32 `yaml:"signal_units"`
	} `yaml:"channels"`
	Properties map[string]string `yaml:"properties"`
	Associated map[string]string `yaml:"associated"`
}

// pyramidDir reads a directory-based slide: a slide.yaml manifest plus
// PNG tile files. It exists both as a usable interchange format and as
// the end-to-end exercise of the region-access stack.
type pyramidDir struct {
	root     string
	manifest pyramidManifest
	geom     *tiling.Geometry
	kind     slide.ImageKind
	channels []slide.Channel
	props    *metadata.Metadata
}

func openPyramidDir(path string) (slide.Format, error) {
	raw, err := os.ReadFile(filepath.Join(path, descriptorFile))
	if err != nil {
		return nil, err
	}
	var manifest pyramidManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", descriptorFile, err)
	}

	f := &pyramidDir{root: path, manifest: manifest}
	if err := f.build(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *pyramidDir) build() error {
	m := &f.manifest
	if len(m.Levels) == 0 {
		return fmt.Errorf("%s declares no levels", descriptorFile)
	}
	if m.TileSize.Width == 0 || m.TileSize.Height == 0 {
		return fmt.Errorf("%s declares no tile size", descriptorFile)
	}
	f.geom = &tiling.Geometry{
		TileSize: pixel.Dimensions{Width: m.TileSize.Width, Height: m.TileSize.Height},
	}
	for i, lvl := range m.Levels {
		if i == 0 && lvl.Downsample == 0 {
			lvl.Downsample = 1
		}
		f.geom.Levels = append(f.geom.Levels, tiling.LevelInfo{
			Dimensions: pixel.Dimensions{Width: lvl.Width, Height: lvl.Height},
			Downsample: lvl.Downsample,
		})
	}

	switch m.Kind {
	case "", "rgb":
		f.kind = slide.KindRGB
	case "spectral":
		f.kind = slide.KindSpectral
		if len(m.Channels) == 0 {
			return fmt.Errorf("spectral slide declares no channels")
		}
	default:
		return fmt.Errorf("unknown slide kind %q", m.Kind)
	}

	f.channels = make([]slide.Channel, len(m.Channels))
	for i, ch := range m.Channels {
		f.channels[i] = slide.Channel{
			Name:         ch.Name,
			Biomarker:    ch.Biomarker,
			ExposureTime: ch.ExposureTime,
			SignalUnits:  ch.SignalUnits,
		}
		if ch.Color != "" {
			color, err := slide.ParseColorRGB(ch.Color)
			if err != nil {
				return fmt.Errorf("channel %d: %w", i, err)
			}
			f.channels[i].Color = color
		}
	}
	f.channels = slide.FillChannelDefaults(f.channels)

	f.props = metadata.New()
	f.props.SetString(metadata.KeyFormat, "pyramiddir")
	f.props.SetUint(metadata.KeyLevels, uint64(len(m.Levels)))
	if len(f.channels) > 0 {
		f.props.SetUint(metadata.KeyChannels, uint64(len(f.channels)))
	}
	for key, value := range m.Properties {
		f.props.SetString(key, value)
	}
	return f.props.Validate()
}

func (f *pyramidDir) ID() string                     { return f.root }
func (f *pyramidDir) Name() string                   { return "pyramiddir" }
func (f *pyramidDir) Geometry() *tiling.Geometry     { return f.geom }
func (f *pyramidDir) Kind() slide.ImageKind          { return f.kind }
func (f *pyramidDir) Channels() []slide.Channel      { return f.channels }
func (f *pyramidDir) Properties() *metadata.Metadata { return f.props }
func (f *pyramidDir) Close() error                   { return nil }

func (f *pyramidDir) Bounds() slide.Bounds {
	if b := f.manifest.Bounds; b != nil {
		return slide.Bounds{X: b.X, Y: b.Y, Size: pixel.Dimensions{Width: b.Width, Height: b.Height}}
	}
	return slide.Bounds{Size: f.geom.Levels[0].Dimensions}
}

func (f *pyramidDir) AssociatedImages() []string {
	names := make([]string, 0, len(f.manifest.Associated))
	for name := range f.manifest.Associated {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *pyramidDir) AssociatedImageDimensions(name string) (pixel.Dimensions, error) {
	img, err := f.ReadAssociatedImage(name)
	if err != nil {
		return pixel.Dimensions{}, err
	}
	return img.Dimensions(), nil
}

func (f *pyramidDir) ReadAssociatedImage(name string) (*pixel.Image, error) {
	file, ok := f.manifest.Associated[name]
	if !ok {
		return nil, fmt.Errorf("%w: associated image %q", slide.ErrNotFound, name)
	}
	decoded, err := imaging.Open(filepath.Join(f.root, file))
	if err != nil {
		return nil, fmt.Errorf("%w: associated image %q: %v", slide.ErrDecode, name, err)
	}
	return pixel.FromGoImage(decoded)
}

// expectedTileSize returns the extent of tile (col, row) at a level,
// clipped at the level edge.
func (f *pyramidDir) expectedTileSize(level int, col, row uint32) (pixel.Dimensions, error) {
	if level < 0 || level >= len(f.geom.Levels) {
		return pixel.Dimensions{}, fmt.Errorf("%w: level %d of %d",
			tiling.ErrInvalidLevel, level, len(f.geom.Levels))
	}
	bounds := f.geom.Levels[level].Dimensions
	left := col * f.geom.TileSize.Width
	top := row * f.geom.TileSize.Height
	if left >= bounds.Width || top >= bounds.Height {
		return pixel.Dimensions{}, fmt.Errorf("%w: tile (%d,%d) at level %d",
			slide.ErrNotFound, col, row, level)
	}
	size := pixel.Dimensions{
		Width:  f.geom.TileSize.Width,
		Height: f.geom.TileSize.Height,
	}
	if left+size.Width > bounds.Width {
		size.Width = bounds.Width - left
	}
	if top+size.Height > bounds.Height {
		size.Height = bounds.Height - top
	}
	return size, nil
}

func (f *pyramidDir) DecodeTile(level int, col, row uint32) (*pixel.Image, error) {
	want, err := f.expectedTileSize(level, col, row)
	if err != nil {
		return nil, err
	}
	if f.kind == slide.KindSpectral {
		return f.decodeSpectralTile(level, col, row, want)
	}
	return f.decodeRGBTile(level, col, row, want)
}

func (f *pyramidDir) decodeRGBTile(level int, col, row uint32, want pixel.Dimensions) (*pixel.Image, error) {
	path := filepath.Join(f.root, fmt.Sprintf("level_%d", level),
		fmt.Sprintf("tile_%d_%d.png", col, row))
	decoded, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", slide.ErrDecode, path, err)
	}
	img, err := pixel.FromGoImage(decoded)
	if err != nil {
		return nil, err
	}
	if img.Dimensions() != want {
		return nil, fmt.Errorf("%w: %s is %dx%d, expected %dx%d",
			slide.ErrDecode, path, img.Width(), img.Height(), want.Width, want.Height)
	}
	return img, nil
}

// decodeSpectralTile assembles one spectral tile from its per-channel
// 16-bit grayscale PNGs.
func (f *pyramidDir) decodeSpectralTile(level int, col, row uint32, want pixel.Dimensions) (*pixel.Image, error) {
	img, err := pixel.NewSpectral(want, uint32(len(f.channels)), pixel.UInt16)
	if err != nil {
		return nil, err
	}
	for c := range f.channels {
		path := filepath.Join(f.root, fmt.Sprintf("level_%d", level),
			fmt.Sprintf("tile_c%d_%d_%d.png", c, col, row))
		decoded, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", slide.ErrDecode, path, err)
		}
		if err := fillChannelFromGray(img, uint32(c), decoded, want); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", slide.ErrDecode, path, err)
		}
	}
	return img, nil
}

func fillChannelFromGray(dst *pixel.Image, channel uint32, src image.Image, want pixel.Dimensions) error {
	bounds := src.Bounds()
	if uint32(bounds.Dx()) != want.Width || uint32(bounds.Dy()) != want.Height {
		return fmt.Errorf("channel plane is %dx%d, expected %dx%d",
			bounds.Dx(), bounds.Dy(), want.Width, want.Height)
	}
	gray, ok := src.(*image.Gray16)
	if !ok {
		// 8-bit planes are accepted and widened.
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				luma, _, _, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				pixel.Set[uint16](dst, uint32(x), uint32(y), channel, uint16(luma))
			}
		}
		return nil
	}
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			pixel.Set[uint16](dst, uint32(x), uint32(y), channel,
				gray.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
		}
	}
	return nil
}
