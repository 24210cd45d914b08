// # Foreign Call Boundary
//
// Package ffi exposes the engine behind opaque integer handles with
// explicit status returns, the surface a host-language binding wraps.
// No call panics on bad input: unknown handles, invalid regions, and
// unknown keys all come back as a status, never as a crash in the host
// process.
//
// Handles are process-global. An image produced by any call (creation,
// conversion, region read) must be released with DestroyImage; slides
// opened with OpenSlide must be released with CloseSlide.
package ffi

import (
	"errors"
	"sync"

	"github.com/ironsheep/wholeslide/pkg/cache"
	"github.com/ironsheep/wholeslide/pkg/formats"
	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/slide"
	"github.com/ironsheep/wholeslide/pkg/tiling"
)

// Handle identifies one image or slide held by the boundary. Zero is
// never a valid handle.
type Handle int64

// Status is the result code every fallible call returns.
type Status int32

const (
	OK Status = iota
	StatusInvalidHandle
	StatusInvalidArgument
	StatusNotFound
	StatusOutOfRange
	StatusTypeMismatch
	StatusUnsupported
	StatusDecodeFailed
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case StatusInvalidHandle:
		return "invalid handle"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusNotFound:
		return "not found"
	case StatusOutOfRange:
		return "out of range"
	case StatusTypeMismatch:
		return "type mismatch"
	case StatusUnsupported:
		return "unsupported"
	case StatusDecodeFailed:
		return "decode failed"
	default:
		return "internal error"
	}
}

func statusOf(err error) Status {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, pixel.ErrOutOfRange):
		return StatusOutOfRange
	case errors.Is(err, pixel.ErrTypeMismatch):
		return StatusTypeMismatch
	case errors.Is(err, pixel.ErrUnsupported):
		return StatusUnsupported
	case errors.Is(err, pixel.ErrTooLarge),
		errors.Is(err, tiling.ErrInvalidLevel),
		errors.Is(err, tiling.ErrEmptyRegion),
		errors.Is(err, tiling.ErrOutsideBounds):
		return StatusInvalidArgument
	case errors.Is(err, slide.ErrNotFound), errors.Is(err, formats.ErrUnknownFormat):
		return StatusNotFound
	case errors.Is(err, slide.ErrDecode):
		return StatusDecodeFailed
	default:
		return StatusInternal
	}
}

// table is a synchronized handle registry. Handle values are never
// reused within a process, so a stale handle reliably misses.
type table[T any] struct {
	mu   sync.Mutex
	next Handle
	m    map[Handle]T
}

func newTable[T any]() *table[T] {
	return &table[T]{next: 1, m: make(map[Handle]T)}
}

func (t *table[T]) put(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.m[h] = v
	return h
}

func (t *table[T]) get(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[h]
	return v, ok
}

func (t *table[T]) del(h Handle) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[h]
	if ok {
		delete(t.m, h)
	}
	return v, ok
}

var (
	imageTable = newTable[*pixel.Image]()
	slideTable = newTable[*slide.Reader]()
)

// ImageInfo is the shape record of an image handle.
type ImageInfo struct {
	Width, Height  uint32
	Channels       uint32
	Format         int32
	DataType       int32
	PlanarConfig   int32
	BytesPerSample int32
	SizeBytes      int64
}

// RegionSpec mirrors tiling.RegionSpec for the boundary.
type RegionSpec struct {
	X, Y          uint32
	Width, Height uint32
	Level         int32
}

func (r RegionSpec) toTiling() tiling.RegionSpec {
	return tiling.RegionSpec{
		X: r.X, Y: r.Y,
		Size:  pixel.Dimensions{Width: r.Width, Height: r.Height},
		Level: int(r.Level),
	}
}

// CreateImage allocates a zero-filled image and returns its handle.
func CreateImage(width, height uint32, format, datatype, planar int32) (Handle, Status) {
	f := pixel.Format(format)
	switch f {
	case pixel.Gray, pixel.RGB, pixel.RGBA:
	default:
		return 0, StatusInvalidArgument
	}
	dt, ok := validDataType(datatype)
	if !ok {
		return 0, StatusInvalidArgument
	}
	pc, ok := validPlanar(planar)
	if !ok {
		return 0, StatusInvalidArgument
	}
	img, err := pixel.New(pixel.Dimensions{Width: width, Height: height}, f, dt, pc)
	if err != nil {
		return 0, statusOf(err)
	}
	return imageTable.put(img), OK
}

// CreateSpectralImage allocates a zero-filled N-channel image.
func CreateSpectralImage(width, height, channels uint32, datatype, planar int32) (Handle, Status) {
	dt, ok := validDataType(datatype)
	if !ok {
		return 0, StatusInvalidArgument
	}
	pc, ok := validPlanar(planar)
	if !ok {
		return 0, StatusInvalidArgument
	}
	img, err := pixel.NewSpectral(pixel.Dimensions{Width: width, Height: height}, channels, dt, pc)
	if err != nil {
		return 0, statusOf(err)
	}
	return imageTable.put(img), OK
}

func validDataType(datatype int32) (pixel.DataType, bool) {
	dt := pixel.DataType(datatype)
	switch dt {
	case pixel.UInt8, pixel.UInt16, pixel.Int16, pixel.UInt32, pixel.Int32, pixel.Float32, pixel.Float64:
		return dt, true
	}
	return 0, false
}

func validPlanar(planar int32) (pixel.PlanarConfig, bool) {
	pc := pixel.PlanarConfig(planar)
	if pc == pixel.Contiguous || pc == pixel.Separate {
		return pc, true
	}
	return 0, false
}

// DestroyImage releases an image handle.
func DestroyImage(h Handle) Status {
	if _, ok := imageTable.del(h); !ok {
		return StatusInvalidHandle
	}
	return OK
}

// GetImageInfo returns the shape of an image handle.
func GetImageInfo(h Handle) (ImageInfo, Status) {
	img, ok := imageTable.get(h)
	if !ok {
		return ImageInfo{}, StatusInvalidHandle
	}
	return ImageInfo{
		Width:          img.Width(),
		Height:         img.Height(),
		Channels:       img.Channels(),
		Format:         int32(img.Format()),
		DataType:       int32(img.DataType()),
		PlanarConfig:   int32(img.PlanarConfig()),
		BytesPerSample: int32(img.BytesPerSample()),
		SizeBytes:      int64(img.SizeBytes()),
	}, OK
}

// CopyImageData copies the raw buffer of an image handle. The returned
// slice is owned by the caller.
func CopyImageData(h Handle) ([]byte, Status) {
	img, ok := imageTable.get(h)
	if !ok {
		return nil, StatusInvalidHandle
	}
	out := make([]byte, img.SizeBytes())
	copy(out, img.Bytes())
	return out, OK
}

func convertImage(h Handle, op func(*pixel.Image) (*pixel.Image, error)) (Handle, Status) {
	img, ok := imageTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	out, err := op(img)
	if err != nil {
		return 0, statusOf(err)
	}
	return imageTable.put(out), OK
}

// ImageToGrayscale converts an image handle, returning a new handle.
func ImageToGrayscale(h Handle) (Handle, Status) {
	return convertImage(h, (*pixel.Image).ToGrayscale)
}

// ImageToRGB converts an image handle, returning a new handle.
func ImageToRGB(h Handle) (Handle, Status) {
	return convertImage(h, (*pixel.Image).ToRGB)
}

// ImageToPlanar relayouts an image handle, returning a new handle.
func ImageToPlanar(h Handle) (Handle, Status) {
	return convertImage(h, (*pixel.Image).ToPlanar)
}

// ImageToInterleaved relayouts an image handle, returning a new handle.
func ImageToInterleaved(h Handle) (Handle, Status) {
	return convertImage(h, (*pixel.Image).ToInterleaved)
}

// ImageExtractChannels builds a channel subset, returning a new handle.
func ImageExtractChannels(h Handle, indices []uint32) (Handle, Status) {
	return convertImage(h, func(img *pixel.Image) (*pixel.Image, error) {
		return img.ExtractChannels(indices)
	})
}

// ImageClone deep-copies an image handle.
func ImageClone(h Handle) (Handle, Status) {
	return convertImage(h, func(img *pixel.Image) (*pixel.Image, error) {
		return img.Clone(), nil
	})
}

// ImagePaste copies a source sub-rectangle into a destination handle.
func ImagePaste(dst, src Handle, destX, destY, srcX, srcY, srcW, srcH uint32) Status {
	dstImg, ok := imageTable.get(dst)
	if !ok {
		return StatusInvalidHandle
	}
	srcImg, ok := imageTable.get(src)
	if !ok {
		return StatusInvalidHandle
	}
	return statusOf(dstImg.Paste(srcImg, destX, destY, srcX, srcY, srcW, srcH))
}

// OpenSlide opens a slide path with the registered formats, sharing the
// process-wide tile cache.
func OpenSlide(path string) (Handle, Status) {
	reader, err := formats.Open(path)
	if err != nil {
		return 0, statusOf(err)
	}
	return slideTable.put(reader), OK
}

// CloseSlide releases a slide handle and its plugin resources.
func CloseSlide(h Handle) Status {
	reader, ok := slideTable.del(h)
	if !ok {
		return StatusInvalidHandle
	}
	if err := reader.Close(); err != nil {
		return StatusInternal
	}
	return OK
}

// GetLevelCount returns a slide's pyramid depth.
func GetLevelCount(h Handle) (int32, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return int32(reader.LevelCount()), OK
}

// GetLevelInfo returns one level's extent and downsample factor.
func GetLevelInfo(h Handle, level int32) (width, height uint32, downsample float64, status Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, 0, 0, StatusInvalidHandle
	}
	info, err := reader.LevelInfo(int(level))
	if err != nil {
		return 0, 0, 0, statusOf(err)
	}
	return info.Dimensions.Width, info.Dimensions.Height, info.Downsample, OK
}

// GetBestLevelForDownsample returns the level to read for a target
// downsample factor.
func GetBestLevelForDownsample(h Handle, target float64) (int32, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	return int32(reader.BestLevelForDownsample(target)), OK
}

// GetPropertyKeys enumerates a slide's metadata keys, sorted.
func GetPropertyKeys(h Handle) ([]string, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return nil, StatusInvalidHandle
	}
	return reader.Properties().Keys(), OK
}

// GetPropertyString looks up one metadata key as a string.
func GetPropertyString(h Handle, key string) (string, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return "", StatusInvalidHandle
	}
	v, found := reader.Properties().Get(key)
	if !found {
		return "", StatusNotFound
	}
	return v.AsString(), OK
}

// GetPropertyUint looks up one metadata key as an unsigned integer.
func GetPropertyUint(h Handle, key string) (uint64, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	v, found := reader.Properties().Get(key)
	if !found {
		return 0, StatusNotFound
	}
	u, canConvert := v.AsUint()
	if !canConvert {
		return 0, StatusTypeMismatch
	}
	return u, OK
}

// GetPropertyFloat looks up one metadata key as a float.
func GetPropertyFloat(h Handle, key string) (float64, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	v, found := reader.Properties().Get(key)
	if !found {
		return 0, StatusNotFound
	}
	f, canConvert := v.AsFloat()
	if !canConvert {
		return 0, StatusTypeMismatch
	}
	return f, OK
}

// GetAssociatedImageNames enumerates a slide's associated images.
func GetAssociatedImageNames(h Handle) ([]string, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return nil, StatusInvalidHandle
	}
	return reader.AssociatedImages(), OK
}

// ReadAssociatedImage decodes an associated image into a new image
// handle.
func ReadAssociatedImage(h Handle, name string) (Handle, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	img, err := reader.ReadAssociatedImage(name)
	if err != nil {
		return 0, statusOf(err)
	}
	return imageTable.put(img), OK
}

// ReadRegion reads a region into a new image handle.
func ReadRegion(h Handle, region RegionSpec) (Handle, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return 0, StatusInvalidHandle
	}
	img, err := reader.ReadRegion(region.toTiling())
	if err != nil {
		return 0, statusOf(err)
	}
	return imageTable.put(img), OK
}

// ReadRegionAt reads a region given by bare coordinates.
func ReadRegionAt(h Handle, x, y, width, height uint32, level int32) (Handle, Status) {
	return ReadRegion(h, RegionSpec{X: x, Y: y, Width: width, Height: height, Level: level})
}

// IsRegionValid reports whether a region request would succeed.
func IsRegionValid(h Handle, region RegionSpec) (bool, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return false, StatusInvalidHandle
	}
	return reader.ValidRegion(region.toTiling()), OK
}

// ClampRegion clips a region request to its level bounds.
func ClampRegion(h Handle, region RegionSpec) (RegionSpec, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return RegionSpec{}, StatusInvalidHandle
	}
	clamped, err := reader.ClampRegion(region.toTiling())
	if err != nil {
		return RegionSpec{}, statusOf(err)
	}
	return RegionSpec{
		X: clamped.X, Y: clamped.Y,
		Width: clamped.Size.Width, Height: clamped.Size.Height,
		Level: int32(clamped.Level),
	}, OK
}

// SetVisibleChannels restricts subsequent region reads to a channel
// subset.
func SetVisibleChannels(h Handle, indices []uint32) Status {
	reader, ok := slideTable.get(h)
	if !ok {
		return StatusInvalidHandle
	}
	return statusOf(reader.SetVisibleChannels(indices))
}

// GetVisibleChannels returns the active channel subset, or nil when all
// channels are visible.
func GetVisibleChannels(h Handle) ([]uint32, Status) {
	reader, ok := slideTable.get(h)
	if !ok {
		return nil, StatusInvalidHandle
	}
	return reader.VisibleChannels(), OK
}

// ShowAllChannels clears a slide's channel selection.
func ShowAllChannels(h Handle) Status {
	reader, ok := slideTable.get(h)
	if !ok {
		return StatusInvalidHandle
	}
	reader.ShowAllChannels()
	return OK
}

// CacheStats returns the shared tile cache counters.
func CacheStats() cache.Stats {
	return cache.Default().Stats()
}
