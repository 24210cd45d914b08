package pixel

import (
	"fmt"
	"image"
	"image/draw"
)

// FromGoImage converts a standard library image into an 8-bit RGBA
// Image with contiguous layout. Any source color model is accepted; the
// pixels are drawn through image/draw, so premultiplied formats are
// unmultiplied on the way in.
func FromGoImage(src image.Image) (*Image, error) {
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: source image has empty bounds", ErrOutOfRange)
	}
	nrgba, ok := src.(*image.NRGBA)
	if !ok || !bounds.Min.Eq(image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	}
	out, err := New(Dimensions{Width: uint32(bounds.Dx()), Height: uint32(bounds.Dy())}, RGBA, UInt8)
	if err != nil {
		return nil, err
	}
	rowBytes := bounds.Dx() * 4
	for y := 0; y < bounds.Dy(); y++ {
		copy(out.data[y*rowBytes:(y+1)*rowBytes], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+rowBytes])
	}
	return out, nil
}

// GoImage converts the image to a standard library image for use with
// encoders and the processing libraries built on image.Image.
//
// Supported shapes are 8-bit Gray, RGB, and RGBA and 16-bit Gray;
// anything else (spectral stacks, signed or float samples) has no
// stdlib equivalent and must be rendered or converted first.
func (img *Image) GoImage() (image.Image, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: cannot export empty image", ErrUnsupported)
	}
	src := img
	if img.planar == Separate {
		var err error
		if src, err = img.ToInterleaved(); err != nil {
			return nil, err
		}
	}
	w, h := int(src.dims.Width), int(src.dims.Height)
	rect := image.Rect(0, 0, w, h)
	switch {
	case src.format == Gray && src.dtype == UInt8:
		out := image.NewGray(rect)
		copyRows(out.Pix, out.Stride, src.data, w)
		return out, nil
	case src.format == Gray && src.dtype == UInt16:
		out := image.NewGray16(rect)
		// image.Gray16 stores big-endian samples.
		for i, v := range sliceOf[uint16](src) {
			out.Pix[i*2] = byte(v >> 8)
			out.Pix[i*2+1] = byte(v)
		}
		return out, nil
	case src.format == RGBA && src.dtype == UInt8:
		out := image.NewNRGBA(rect)
		copyRows(out.Pix, out.Stride, src.data, w*4)
		return out, nil
	case src.format == RGB && src.dtype == UInt8:
		out := image.NewNRGBA(rect)
		for p := 0; p < w*h; p++ {
			out.Pix[p*4+0] = src.data[p*3+0]
			out.Pix[p*4+1] = src.data[p*3+1]
			out.Pix[p*4+2] = src.data[p*3+2]
			out.Pix[p*4+3] = 0xFF
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: no stdlib image for %s", ErrUnsupported, src.Description())
	}
}

func copyRows(dst []byte, dstStride int, src []byte, rowBytes int) {
	for y := 0; rowBytes > 0 && y*rowBytes < len(src); y++ {
		copy(dst[y*dstStride:y*dstStride+rowBytes], src[y*rowBytes:(y+1)*rowBytes])
	}
}
