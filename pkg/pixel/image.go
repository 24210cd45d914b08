package pixel

import (
	"fmt"
	"math"
)

// Image is a generic pixel container with flexible format, datatype, and
// memory layout. The zero value is an empty, uninitialized image.
//
// An Image owns its buffer exclusively. Clone performs a deep copy, and
// every conversion method returns a new Image; nothing mutates the
// receiver except Paste, Fill, and typed Set access, which are the
// documented write paths.
type Image struct {
	dims        Dimensions
	format      Format
	dtype       DataType
	channels    uint32
	planar      PlanarConfig
	data        []byte
	initialized bool
}

// maxBufferBytes caps a single image buffer. Whole-slide regions are
// large but bounded; anything past this is a size-computation error, not
// a real request.
const maxBufferBytes = math.MaxInt32

// bufferSize computes width*height*channels*bytesPerSample, guarding
// against overflow at every step.
func bufferSize(dims Dimensions, channels uint32, dtype DataType) (int, error) {
	bps := uint64(dtype.Size())
	total := uint64(dims.Width) * uint64(dims.Height)
	if channels != 0 && total > maxBufferBytes/uint64(channels) {
		return 0, fmt.Errorf("%w: %dx%dx%d %s", ErrTooLarge, dims.Width, dims.Height, channels, dtype)
	}
	total *= uint64(channels)
	if bps != 0 && total > maxBufferBytes/bps {
		return 0, fmt.Errorf("%w: %dx%dx%d %s", ErrTooLarge, dims.Width, dims.Height, channels, dtype)
	}
	return int(total * bps), nil
}

// New creates a zero-filled image for one of the fixed-channel formats.
//
// Layout defaults to Contiguous when config is omitted. The only failure
// mode is an overflowing buffer-size computation (ErrTooLarge); Spectral
// must go through NewSpectral because its channel count is not implied by
// the format.
func New(dims Dimensions, format Format, dtype DataType, config ...PlanarConfig) (*Image, error) {
	if format == Spectral {
		return nil, fmt.Errorf("%w: use NewSpectral for spectral images", ErrUnsupported)
	}
	return newImage(dims, format, format.Channels(), dtype, pickConfig(config))
}

// NewSpectral creates a zero-filled N-channel spectral image.
func NewSpectral(dims Dimensions, channels uint32, dtype DataType, config ...PlanarConfig) (*Image, error) {
	if channels == 0 {
		return nil, fmt.Errorf("%w: spectral image needs at least one channel", ErrOutOfRange)
	}
	return newImage(dims, Spectral, channels, dtype, pickConfig(config))
}

// NewBlank creates an uninitialized image with known dimensions only.
// Format, datatype, channel count, and layout are adopted from the first
// image pasted into it; until then the image reports Empty.
func NewBlank(dims Dimensions) *Image {
	return &Image{
		dims:   dims,
		format: Spectral,
		planar: Contiguous,
	}
}

// NewLike creates an image with new dimensions but the format, datatype,
// channel count, and layout of a reference image. The buffer is
// allocated but not zero-filled; callers are expected to Paste over it.
func NewLike(ref *Image, dims Dimensions) (*Image, error) {
	size, err := bufferSize(dims, ref.channels, ref.dtype)
	if err != nil {
		return nil, err
	}
	return &Image{
		dims:        dims,
		format:      ref.format,
		dtype:       ref.dtype,
		channels:    ref.channels,
		planar:      ref.planar,
		data:        make([]byte, size),
		initialized: true,
	}, nil
}

func pickConfig(config []PlanarConfig) PlanarConfig {
	if len(config) > 0 {
		return config[0]
	}
	return Contiguous
}

func newImage(dims Dimensions, format Format, channels uint32, dtype DataType, planar PlanarConfig) (*Image, error) {
	size, err := bufferSize(dims, channels, dtype)
	if err != nil {
		return nil, err
	}
	return &Image{
		dims:        dims,
		format:      format,
		dtype:       dtype,
		channels:    channels,
		planar:      planar,
		data:        make([]byte, size),
		initialized: true,
	}, nil
}

// Dimensions returns the image extent in pixels.
func (img *Image) Dimensions() Dimensions { return img.dims }

// Width returns the image width in pixels.
func (img *Image) Width() uint32 { return img.dims.Width }

// Height returns the image height in pixels.
func (img *Image) Height() uint32 { return img.dims.Height }

// Channels returns the channel count.
func (img *Image) Channels() uint32 { return img.channels }

// Format returns the pixel format family.
func (img *Image) Format() Format { return img.format }

// DataType returns the per-sample storage type.
func (img *Image) DataType() DataType { return img.dtype }

// PlanarConfig returns the memory layout.
func (img *Image) PlanarConfig() PlanarConfig { return img.planar }

// BytesPerSample returns the sample width in bytes.
func (img *Image) BytesPerSample() int { return img.dtype.Size() }

// SizeBytes returns the total buffer size in bytes, always exactly
// width*height*channels*bytesPerSample.
func (img *Image) SizeBytes() int { return len(img.data) }

// PixelCount returns width*height.
func (img *Image) PixelCount() int {
	return int(img.dims.Width) * int(img.dims.Height)
}

// Empty reports whether the image holds no pixel data, either because an
// extent is zero or because a blank image has not yet adopted a format.
func (img *Image) Empty() bool {
	return img.dims.IsZero() || img.channels == 0 || !img.initialized
}

// Initialized reports whether format and datatype have been fixed.
func (img *Image) Initialized() bool { return img.initialized }

// Bytes returns the raw backing buffer. The slice aliases the image;
// mutating it mutates the image.
func (img *Image) Bytes() []byte { return img.data }

// Clone returns a deep copy sharing no memory with the receiver.
func (img *Image) Clone() *Image {
	dup := *img
	dup.data = make([]byte, len(img.data))
	copy(dup.data, img.data)
	return &dup
}

// Description returns a human-readable summary of the image shape, such
// as "RGB 512x512x3 uint8 Contig".
func (img *Image) Description() string {
	if !img.initialized {
		return fmt.Sprintf("Uninitialized %dx%d", img.dims.Width, img.dims.Height)
	}
	return fmt.Sprintf("%s %dx%dx%d %s %s",
		img.format, img.dims.Width, img.dims.Height, img.channels, img.dtype, img.planar)
}

// sampleIndex computes the sample index of (x, y, channel) under the
// image layout. Callers must have validated the coordinates.
func (img *Image) sampleIndex(x, y, channel uint32) int {
	if img.planar == Contiguous {
		return (int(y)*int(img.dims.Width)+int(x))*int(img.channels) + int(channel)
	}
	plane := img.PixelCount()
	return int(channel)*plane + int(y)*int(img.dims.Width) + int(x)
}

func (img *Image) validateCoords(x, y, channel uint32) error {
	if x >= img.dims.Width || y >= img.dims.Height || channel >= img.channels {
		return fmt.Errorf("%w: (%d,%d) channel %d in %s", ErrOutOfRange, x, y, channel, img.Description())
	}
	return nil
}

// adopt initializes a blank image with the shape properties of a source
// image, keeping the blank's own dimensions.
func (img *Image) adopt(src *Image) error {
	if img.dims.IsZero() {
		return fmt.Errorf("%w: cannot paste into image with zero dimensions", ErrOutOfRange)
	}
	size, err := bufferSize(img.dims, src.channels, src.dtype)
	if err != nil {
		return err
	}
	img.format = src.format
	img.dtype = src.dtype
	img.channels = src.channels
	img.planar = src.planar
	img.data = make([]byte, size)
	img.initialized = true
	return nil
}

// Paste copies a sub-rectangle of src into the receiver at (destX,
// destY). srcW or srcH of 0 means "the full remaining extent from the
// source offset". The copied region is clipped to both the source and
// destination bounds; a destination created with NewBlank adopts the
// source's format, datatype, channel count, and layout on first use.
//
// Source and destination must agree on datatype, channel count, and
// layout; a mismatch is reported as ErrTypeMismatch rather than being
// converted implicitly.
func (img *Image) Paste(src *Image, destX, destY, srcX, srcY, srcW, srcH uint32) error {
	if src == nil || src.Empty() {
		return nil // nothing to paste
	}
	if !img.initialized {
		if err := img.adopt(src); err != nil {
			return err
		}
	}
	if img.Empty() {
		return nil
	}
	if img.dtype != src.dtype {
		return fmt.Errorf("%w: paste %s into %s", ErrTypeMismatch, src.dtype, img.dtype)
	}
	if img.channels != src.channels {
		return fmt.Errorf("%w: paste %d channels into %d", ErrTypeMismatch, src.channels, img.channels)
	}
	if img.planar != src.planar {
		return fmt.Errorf("%w: paste %s layout into %s", ErrTypeMismatch, src.planar, img.planar)
	}

	if srcW == 0 {
		srcW = src.dims.Width
	}
	if srcH == 0 {
		srcH = src.dims.Height
	}
	if srcX >= src.dims.Width || srcY >= src.dims.Height {
		return nil // source offset outside the source image
	}
	srcW = min32(srcW, src.dims.Width-srcX)
	srcH = min32(srcH, src.dims.Height-srcY)
	if destX >= img.dims.Width || destY >= img.dims.Height {
		return nil
	}
	copyW := min32(srcW, img.dims.Width-destX)
	copyH := min32(srcH, img.dims.Height-destY)
	if copyW == 0 || copyH == 0 {
		return nil
	}

	bps := img.dtype.Size()
	if img.planar == Contiguous {
		rowBytes := int(copyW) * int(img.channels) * bps
		srcStride := int(src.dims.Width) * int(img.channels) * bps
		dstStride := int(img.dims.Width) * int(img.channels) * bps
		srcOff := (int(srcY)*int(src.dims.Width) + int(srcX)) * int(img.channels) * bps
		dstOff := (int(destY)*int(img.dims.Width) + int(destX)) * int(img.channels) * bps
		for row := 0; row < int(copyH); row++ {
			copy(img.data[dstOff:dstOff+rowBytes], src.data[srcOff:srcOff+rowBytes])
			srcOff += srcStride
			dstOff += dstStride
		}
		return nil
	}

	// Planar: copy each channel plane scanline by scanline.
	rowBytes := int(copyW) * bps
	srcPlane := src.PixelCount() * bps
	dstPlane := img.PixelCount() * bps
	srcStride := int(src.dims.Width) * bps
	dstStride := int(img.dims.Width) * bps
	for ch := 0; ch < int(img.channels); ch++ {
		srcOff := ch*srcPlane + (int(srcY)*int(src.dims.Width)+int(srcX))*bps
		dstOff := ch*dstPlane + (int(destY)*int(img.dims.Width)+int(destX))*bps
		for row := 0; row < int(copyH); row++ {
			copy(img.data[dstOff:dstOff+rowBytes], src.data[srcOff:srcOff+rowBytes])
			srcOff += srcStride
			dstOff += dstStride
		}
	}
	return nil
}

// Fill sets every pixel of an RGB image to the given color. Component
// values are converted to the image datatype; out-of-range values wrap
// the way a plain Go conversion would.
func (img *Image) Fill(r, g, b float64) error {
	if img.format != RGB {
		return fmt.Errorf("%w: fill requires an RGB image, have %s", ErrUnsupported, img.format)
	}
	color := [3]float64{r, g, b}
	for ch := uint32(0); ch < 3; ch++ {
		for y := uint32(0); y < img.dims.Height; y++ {
			for x := uint32(0); x < img.dims.Width; x++ {
				img.putSampleFloat(x, y, ch, color[ch])
			}
		}
	}
	return nil
}

// putSampleFloat stores a float value at (x, y, channel) converted to the
// image datatype. Internal helper; coordinates must be valid.
func (img *Image) putSampleFloat(x, y, channel uint32, v float64) {
	idx := img.sampleIndex(x, y, channel)
	switch img.dtype {
	case UInt8:
		sliceOf[uint8](img)[idx] = uint8(v)
	case UInt16:
		sliceOf[uint16](img)[idx] = uint16(v)
	case Int16:
		sliceOf[int16](img)[idx] = int16(v)
	case UInt32:
		sliceOf[uint32](img)[idx] = uint32(v)
	case Int32:
		sliceOf[int32](img)[idx] = int32(v)
	case Float32:
		sliceOf[float32](img)[idx] = float32(v)
	case Float64:
		sliceOf[float64](img)[idx] = v
	}
}

// sampleFloat loads the sample at (x, y, channel) widened to float64.
// Internal helper; coordinates must be valid.
func (img *Image) sampleFloat(x, y, channel uint32) float64 {
	idx := img.sampleIndex(x, y, channel)
	switch img.dtype {
	case UInt8:
		return float64(sliceOf[uint8](img)[idx])
	case UInt16:
		return float64(sliceOf[uint16](img)[idx])
	case Int16:
		return float64(sliceOf[int16](img)[idx])
	case UInt32:
		return float64(sliceOf[uint32](img)[idx])
	case Int32:
		return float64(sliceOf[int32](img)[idx])
	case Float32:
		return float64(sliceOf[float32](img)[idx])
	default:
		return sliceOf[float64](img)[idx]
	}
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
