package pixel

import "fmt"

// ToGrayscale converts an RGB or RGBA image to single-channel Gray.
//
// Integer datatypes use the fixed-point weighting (250*R + 500*G +
// 125*B) / 1000, which callers depend on bit-for-bit across platforms;
// floating-point datatypes use the standard luma weights 0.299, 0.587,
// 0.114. A Gray input is returned as a clone; Spectral images have no
// defined color interpretation and fail with ErrUnsupported.
func (img *Image) ToGrayscale() (*Image, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: grayscale of empty image", ErrUnsupported)
	}
	switch img.format {
	case Gray:
		return img.Clone(), nil
	case RGB, RGBA:
		// handled below
	default:
		return nil, fmt.Errorf("%w: grayscale of %s image", ErrUnsupported, img.format)
	}
	out, err := newImage(img.dims, Gray, 1, img.dtype, img.planar)
	if err != nil {
		return nil, err
	}
	switch img.dtype {
	case UInt8:
		grayInt[uint8](img, out)
	case UInt16:
		grayInt[uint16](img, out)
	case Int16:
		grayInt[int16](img, out)
	case UInt32:
		grayInt[uint32](img, out)
	case Int32:
		grayInt[int32](img, out)
	case Float32:
		grayFloat[float32](img, out)
	case Float64:
		grayFloat[float64](img, out)
	}
	return out, nil
}

func grayInt[T uint8 | uint16 | int16 | uint32 | int32](src, dst *Image) {
	in := sliceOf[T](src)
	out := sliceOf[T](dst)
	for i := range out {
		x := uint32(i) % src.dims.Width
		y := uint32(i) / src.dims.Width
		r := int64(in[src.sampleIndex(x, y, 0)])
		g := int64(in[src.sampleIndex(x, y, 1)])
		b := int64(in[src.sampleIndex(x, y, 2)])
		out[i] = T((250*r + 500*g + 125*b) / 1000)
	}
}

func grayFloat[T float32 | float64](src, dst *Image) {
	in := sliceOf[T](src)
	out := sliceOf[T](dst)
	for i := range out {
		x := uint32(i) % src.dims.Width
		y := uint32(i) / src.dims.Width
		r := float64(in[src.sampleIndex(x, y, 0)])
		g := float64(in[src.sampleIndex(x, y, 1)])
		b := float64(in[src.sampleIndex(x, y, 2)])
		out[i] = T(0.299*r + 0.587*g + 0.114*b)
	}
}

// ToRGB converts the image to three-channel RGB. Gray replicates the
// single channel; RGBA drops alpha; RGB returns a clone. Spectral images
// carry no color semantics, so converting one is unsupported rather than
// silently picking channels.
func (img *Image) ToRGB() (*Image, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: RGB conversion of empty image", ErrUnsupported)
	}
	switch img.format {
	case RGB:
		return img.Clone(), nil
	case Gray:
		out, err := newImage(img.dims, RGB, 3, img.dtype, img.planar)
		if err != nil {
			return nil, err
		}
		copySamples(img, out, []uint32{0, 0, 0})
		return out, nil
	case RGBA:
		out, err := newImage(img.dims, RGB, 3, img.dtype, img.planar)
		if err != nil {
			return nil, err
		}
		copySamples(img, out, []uint32{0, 1, 2})
		return out, nil
	default:
		return nil, fmt.Errorf("%w: RGB conversion of %s image", ErrUnsupported, img.format)
	}
}

// ExtractChannels builds a new image from a subset of channels, in the
// requested order. Indices may repeat. The result format follows the
// channel count: 1 is Gray, 3 is RGB, anything else is Spectral; an
// index past the source channel count fails with ErrOutOfRange.
func (img *Image) ExtractChannels(indices []uint32) (*Image, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: channel extraction from empty image", ErrUnsupported)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no channels requested", ErrOutOfRange)
	}
	for _, idx := range indices {
		if idx >= img.channels {
			return nil, fmt.Errorf("%w: channel %d of %d", ErrOutOfRange, idx, img.channels)
		}
	}
	format := Spectral
	switch len(indices) {
	case 1:
		format = Gray
	case 3:
		format = RGB
	}
	out, err := newImage(img.dims, format, uint32(len(indices)), img.dtype, img.planar)
	if err != nil {
		return nil, err
	}
	copySamples(img, out, indices)
	return out, nil
}

// copySamples fills dst channel c from src channel srcChannels[c],
// preserving datatype and layout. Shapes must already agree.
func copySamples(src, dst *Image, srcChannels []uint32) {
	bps := src.dtype.Size()
	for c, sc := range srcChannels {
		for y := uint32(0); y < src.dims.Height; y++ {
			for x := uint32(0); x < src.dims.Width; x++ {
				si := src.sampleIndex(x, y, sc) * bps
				di := dst.sampleIndex(x, y, uint32(c)) * bps
				copy(dst.data[di:di+bps], src.data[si:si+bps])
			}
		}
	}
}

// ConvertLayout returns a copy of the image in the requested memory
// layout. Converting to the current layout returns a clone.
func (img *Image) ConvertLayout(config PlanarConfig) (*Image, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: layout conversion of empty image", ErrUnsupported)
	}
	if img.planar == config {
		return img.Clone(), nil
	}
	out := &Image{
		dims:        img.dims,
		format:      img.format,
		dtype:       img.dtype,
		channels:    img.channels,
		planar:      config,
		data:        make([]byte, len(img.data)),
		initialized: true,
	}
	bps := img.dtype.Size()
	for c := uint32(0); c < img.channels; c++ {
		for y := uint32(0); y < img.dims.Height; y++ {
			for x := uint32(0); x < img.dims.Width; x++ {
				si := img.sampleIndex(x, y, c) * bps
				di := out.sampleIndex(x, y, c) * bps
				copy(out.data[di:di+bps], img.data[si:si+bps])
			}
		}
	}
	return out, nil
}

// FloatPlane returns one channel widened to float64, in row-major
// order. Rendering code uses this to window and normalize a channel
// without caring about the storage datatype.
func (img *Image) FloatPlane(channel uint32) ([]float64, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: float plane of empty image", ErrUnsupported)
	}
	if channel >= img.channels {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrOutOfRange, channel, img.channels)
	}
	out := make([]float64, img.PixelCount())
	i := 0
	for y := uint32(0); y < img.dims.Height; y++ {
		for x := uint32(0); x < img.dims.Width; x++ {
			out[i] = img.sampleFloat(x, y, channel)
			i++
		}
	}
	return out, nil
}

// ToPlanar is shorthand for ConvertLayout(Separate).
func (img *Image) ToPlanar() (*Image, error) { return img.ConvertLayout(Separate) }

// ToInterleaved is shorthand for ConvertLayout(Contiguous).
func (img *Image) ToInterleaved() (*Image, error) { return img.ConvertLayout(Contiguous) }
