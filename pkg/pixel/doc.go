// Package pixel implements the raw pixel-buffer data model used throughout
// the library.
//
// The central type is Image: a contiguous byte buffer plus the shape and
// format metadata needed to interpret it (dimensions, pixel format, sample
// datatype, and memory layout). An Image owns its buffer exclusively; every
// conversion returns a new, independently owned Image and never mutates its
// receiver.
//
// # Pixel Formats and Datatypes
//
// Four format families are supported: single-channel grayscale, RGB, RGBA,
// and N-channel spectral images whose channel count is fixed at
// construction. Each is crossed with seven sample datatypes (uint8 through
// float64) and two memory layouts:
//
//   - Contiguous (interleaved): RGBRGBRGB..., pixel-major
//   - Separate (planar): RRR...GGG...BBB..., plane-major
//
// Contiguous is the default for all newly created images, including
// spectral images, where it gives better cache locality for per-pixel
// spectral access.
//
// # Typed Access
//
// The sample datatype is a runtime value, so typed access goes through
// generic functions (At, Set, Data) that verify the requested Go type
// matches the image datatype exactly before touching the buffer. A
// mismatch is reported as ErrTypeMismatch, never silently reinterpreted;
// int16 and uint16 are distinct even though their sizes agree.
//
// # Coordinate System
//
// Coordinates are 0-based with the origin at the top-left corner. X grows
// rightward, Y grows downward. All bounds violations are reported as
// ErrOutOfRange.
package pixel
