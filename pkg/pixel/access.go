package pixel

import (
	"fmt"
	"unsafe"
)

// sliceOf reinterprets the image buffer as a sample slice without
// copying. Callers are responsible for matching T against the image
// datatype; the typed entry points At/Set/Data do that check.
func sliceOf[T Sample](img *Image) []T {
	if len(img.data) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&img.data[0])), len(img.data)/img.dtype.Size())
}

func checkType[T Sample](img *Image) error {
	if want := dataTypeOf[T](); want != img.dtype {
		return fmt.Errorf("%w: image holds %s, requested %s", ErrTypeMismatch, img.dtype, want)
	}
	return nil
}

// At reads the sample at (x, y, channel). The type parameter must match
// the image datatype exactly; reading a uint16 image as int16 fails with
// ErrTypeMismatch rather than reinterpreting bits. Coordinates outside
// the image fail with ErrOutOfRange.
func At[T Sample](img *Image, x, y, channel uint32) (T, error) {
	var zero T
	if err := checkType[T](img); err != nil {
		return zero, err
	}
	if err := img.validateCoords(x, y, channel); err != nil {
		return zero, err
	}
	return sliceOf[T](img)[img.sampleIndex(x, y, channel)], nil
}

// Set writes the sample at (x, y, channel), with the same type and
// bounds rules as At.
func Set[T Sample](img *Image, x, y, channel uint32, value T) error {
	if err := checkType[T](img); err != nil {
		return err
	}
	if err := img.validateCoords(x, y, channel); err != nil {
		return err
	}
	sliceOf[T](img)[img.sampleIndex(x, y, channel)] = value
	return nil
}

// Data returns the whole buffer as a typed sample slice, in layout
// order: channel-interleaved rows for Contiguous, whole channel planes
// for Separate. The slice aliases the image buffer.
func Data[T Sample](img *Image) ([]T, error) {
	if err := checkType[T](img); err != nil {
		return nil, err
	}
	return sliceOf[T](img), nil
}

// Row returns the typed samples of one scanline of one channel plane.
// For Contiguous images the row contains interleaved samples of all
// channels and the channel argument must be 0.
func Row[T Sample](img *Image, y, channel uint32) ([]T, error) {
	if err := checkType[T](img); err != nil {
		return nil, err
	}
	if y >= img.dims.Height {
		return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfRange, y, img.dims.Height)
	}
	all := sliceOf[T](img)
	if img.planar == Contiguous {
		if channel != 0 {
			return nil, fmt.Errorf("%w: contiguous rows interleave all channels", ErrUnsupported)
		}
		stride := int(img.dims.Width) * int(img.channels)
		off := int(y) * stride
		return all[off : off+stride], nil
	}
	if channel >= img.channels {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrOutOfRange, channel, img.channels)
	}
	stride := int(img.dims.Width)
	off := int(channel)*img.PixelCount() + int(y)*stride
	return all[off : off+stride], nil
}
