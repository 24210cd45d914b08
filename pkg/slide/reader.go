package slide

import (
	"fmt"
	"sync"

	"github.com/ironsheep/wholeslide/pkg/cache"
	"github.com/ironsheep/wholeslide/pkg/metadata"
	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/tiling"
)

// Reader is the format-agnostic slide facade. It is safe for concurrent
// use: the tile cache is internally synchronized and the channel
// visibility state is guarded here. Concurrent reads of different
// regions may decode tiles in parallel; two readers of the same slide
// sharing a cache also share its tiles.
type Reader struct {
	format Format
	cache  *cache.TileCache

	mu      sync.RWMutex
	visible []uint32 // nil means all channels in natural order
}

// Option configures a Reader.
type Option func(*Reader)

// WithCache gives the reader its own tile cache instead of the shared
// process-wide one.
func WithCache(c *cache.TileCache) Option {
	return func(r *Reader) { r.cache = c }
}

// NewReader wraps a format plugin. The plugin's properties must satisfy
// the mandatory-key contract.
func NewReader(format Format, opts ...Option) (*Reader, error) {
	if err := format.Properties().Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", format.Name(), err)
	}
	r := &Reader{format: format, cache: cache.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Format returns the underlying format plugin.
func (r *Reader) Format() Format { return r.format }

// Close closes the underlying format plugin.
func (r *Reader) Close() error { return r.format.Close() }

// LevelCount returns the number of pyramid levels.
func (r *Reader) LevelCount() int { return len(r.format.Geometry().Levels) }

// LevelInfo returns one level's dimensions and downsample factor.
func (r *Reader) LevelInfo(level int) (tiling.LevelInfo, error) {
	levels := r.format.Geometry().Levels
	if level < 0 || level >= len(levels) {
		return tiling.LevelInfo{}, fmt.Errorf("%w: level %d of %d", tiling.ErrInvalidLevel, level, len(levels))
	}
	return levels[level], nil
}

// Dimensions returns the level-0 extent.
func (r *Reader) Dimensions() pixel.Dimensions {
	return r.format.Geometry().Levels[0].Dimensions
}

// Bounds returns the content bounding box in level-0 coordinates.
func (r *Reader) Bounds() Bounds { return r.format.Bounds() }

// Properties returns the slide property map.
func (r *Reader) Properties() *metadata.Metadata { return r.format.Properties() }

// Channels returns the per-channel metadata.
func (r *Reader) Channels() []Channel { return r.format.Channels() }

// AssociatedImages returns the bundled non-pyramidal image names.
func (r *Reader) AssociatedImages() []string { return r.format.AssociatedImages() }

// ReadAssociatedImage decodes one associated image by name.
func (r *Reader) ReadAssociatedImage(name string) (*pixel.Image, error) {
	return r.format.ReadAssociatedImage(name)
}

// BestLevelForDownsample selects the level to read for a target
// downsample factor: the highest-index level whose factor does not
// exceed the target, or level 0 when every factor does. Requesting a
// factor that exactly matches a level returns that level.
func (r *Reader) BestLevelForDownsample(target float64) int {
	best := 0
	for i, level := range r.format.Geometry().Levels {
		if level.Downsample <= target {
			best = i
		}
	}
	return best
}

// SetVisibleChannels restricts all subsequent ReadRegion results to an
// ordered subset of channels. Indices out of range fail without
// changing the current selection.
func (r *Reader) SetVisibleChannels(indices []uint32) error {
	count := uint32(len(r.format.Channels()))
	if r.format.Kind() != KindSpectral {
		return fmt.Errorf("%w: channel visibility on a %s slide", pixel.ErrUnsupported, r.format.Kind())
	}
	if len(indices) == 0 {
		return fmt.Errorf("%w: empty channel selection", pixel.ErrOutOfRange)
	}
	for _, idx := range indices {
		if idx >= count {
			return fmt.Errorf("%w: channel %d of %d", pixel.ErrOutOfRange, idx, count)
		}
	}
	selection := make([]uint32, len(indices))
	copy(selection, indices)
	r.mu.Lock()
	r.visible = selection
	r.mu.Unlock()
	return nil
}

// VisibleChannels returns the active selection, or nil when all
// channels are visible.
func (r *Reader) VisibleChannels() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.visible == nil {
		return nil
	}
	out := make([]uint32, len(r.visible))
	copy(out, r.visible)
	return out
}

// ShowAllChannels clears the channel selection.
func (r *Reader) ShowAllChannels() {
	r.mu.Lock()
	r.visible = nil
	r.mu.Unlock()
}

// ValidRegion reports whether a region request would succeed, without
// reading anything.
func (r *Reader) ValidRegion(region tiling.RegionSpec) bool {
	_, err := r.format.Geometry().ClampRegion(region)
	return err == nil
}

// ClampRegion clips a region request to the level bounds.
func (r *Reader) ClampRegion(region tiling.RegionSpec) (tiling.RegionSpec, error) {
	return r.format.Geometry().ClampRegion(region)
}

// ReadRegion reads one rectangular region at a pyramid level and
// assembles it into a single image. The request is clamped to the level
// bounds; the result is sized to the clamped request. Tiles come from
// the cache when present and are decoded and cached otherwise. If any
// tile fails to decode the whole read fails; no partially assembled
// image is returned. An active channel selection is applied to the
// result before returning.
func (r *Reader) ReadRegion(region tiling.RegionSpec) (*pixel.Image, error) {
	plan, err := r.format.Geometry().BuildPlan(region)
	if err != nil {
		return nil, err
	}

	dest := pixel.NewBlank(plan.Region.Size)
	for _, op := range plan.Ops {
		tile, err := r.fetchTile(plan.Region.Level, op.Col, op.Row)
		if err != nil {
			return nil, err
		}
		err = dest.Paste(tile, op.Dest.X, op.Dest.Y,
			op.Source.X, op.Source.Y, op.Source.Width, op.Source.Height)
		if err != nil {
			return nil, fmt.Errorf("assembling tile (%d,%d) at level %d: %w",
				op.Col, op.Row, plan.Region.Level, err)
		}
	}

	r.mu.RLock()
	visible := r.visible
	r.mu.RUnlock()
	if visible != nil {
		return dest.ExtractChannels(visible)
	}
	return dest, nil
}

// fetchTile returns a cached tile or decodes and caches it. Concurrent
// misses on the same tile may both decode; the last Put wins, which is
// harmless because tile content is deterministic.
func (r *Reader) fetchTile(level int, col, row uint32) (*pixel.Image, error) {
	key := cache.TileKey{Slide: r.format.ID(), Level: level, Col: col, Row: row}
	if tile := r.cache.Get(key); tile != nil {
		return tile, nil
	}
	tile, err := r.format.DecodeTile(level, col, row)
	if err != nil {
		return nil, fmt.Errorf("%w: tile (%d,%d) at level %d: %v", ErrDecode, col, row, level, err)
	}
	r.cache.Put(key, tile)
	return tile, nil
}
