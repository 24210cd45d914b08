package pixel

import "errors"

// Errors reported by pixel-buffer operations. Callers should match them
// with errors.Is; wrapped messages carry the offending values.
var (
	// ErrOutOfRange indicates a pixel coordinate or channel index outside
	// the image bounds.
	ErrOutOfRange = errors.New("coordinate or channel index out of range")

	// ErrTypeMismatch indicates a typed access whose Go type does not match
	// the image datatype, or a paste between incompatible images.
	ErrTypeMismatch = errors.New("sample type mismatch")

	// ErrUnsupported indicates an operation that is not defined for the
	// image's format/datatype combination.
	ErrUnsupported = errors.New("operation not supported for this image")

	// ErrTooLarge indicates image dimensions whose buffer size computation
	// overflows.
	ErrTooLarge = errors.New("image dimensions too large")
)

// Dimensions is a width/height pair in pixels. A 0x0 value denotes an
// empty extent.
type Dimensions struct {
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

// IsZero reports whether either extent is zero.
func (d Dimensions) IsZero() bool {
	return d.Width == 0 || d.Height == 0
}

// Format identifies the pixel format family. The numeric values of the
// fixed-channel formats equal their channel counts; Spectral is 0 because
// its channel count is determined at construction.
type Format int

const (
	Spectral Format = 0 // N channels, count fixed at construction
	Gray     Format = 1 // single-channel grayscale
	RGB      Format = 3 // red, green, blue
	RGBA     Format = 4 // red, green, blue, alpha
)

// Channels returns the channel count implied by the format, or 0 for
// Spectral.
func (f Format) Channels() uint32 {
	if f == Spectral {
		return 0
	}
	return uint32(f)
}

func (f Format) String() string {
	switch f {
	case Gray:
		return "Gray"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	case Spectral:
		return "Spectral"
	}
	return "unknown"
}

// DataType identifies the per-sample storage type.
type DataType int

const (
	UInt8 DataType = iota
	UInt16
	Int16
	UInt32
	Int32
	Float32
	Float64
)

// Size returns the sample width in bytes.
func (dt DataType) Size() int {
	switch dt {
	case UInt8:
		return 1
	case UInt16, Int16:
		return 2
	case UInt32, Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

func (dt DataType) String() string {
	switch dt {
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case Int16:
		return "int16"
	case UInt32:
		return "uint32"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return "unknown"
}

// PlanarConfig selects the memory layout of a multi-channel buffer. The
// numeric values follow the libtiff PLANARCONFIG convention.
type PlanarConfig int

const (
	// Contiguous stores samples pixel-major (interleaved): RGBRGBRGB...
	Contiguous PlanarConfig = 1

	// Separate stores samples plane-major (planar): RRR...GGG...BBB...
	Separate PlanarConfig = 2
)

func (pc PlanarConfig) String() string {
	switch pc {
	case Contiguous:
		return "Contig"
	case Separate:
		return "Separate"
	}
	return "unknown"
}

// Sample is the closed set of Go types that can back an image buffer.
// The constraint intentionally lists concrete types only so that typed
// access can match the image datatype exactly.
type Sample interface {
	uint8 | uint16 | int16 | uint32 | int32 | float32 | float64
}

// dataTypeOf maps a Sample type parameter to its DataType tag.
func dataTypeOf[T Sample]() DataType {
	var v T
	switch any(v).(type) {
	case uint8:
		return UInt8
	case uint16:
		return UInt16
	case int16:
		return Int16
	case uint32:
		return UInt32
	case int32:
		return Int32
	case float32:
		return Float32
	default:
		return Float64
	}
}
