// # Slide Reading
//
// Package slide defines the format-plugin contract and the Reader that
// turns it into a uniform region-access API. A plugin only has to
// describe its pyramid geometry and decode single tiles; the Reader
// handles region validation, tile planning, caching, assembly, and
// channel visibility.
package slide

import (
	"errors"

	"github.com/ironsheep/wholeslide/pkg/metadata"
	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/tiling"
)

var (
	// ErrNotFound marks an unknown level, associated image, or key.
	ErrNotFound = errors.New("not found")
	// ErrDecode wraps a tile or associated-image decode failure from
	// the underlying format.
	ErrDecode = errors.New("decode failed")
)

// ImageKind is the pixel interpretation a format declares for its
// pyramid: plain color or an N-channel spectral stack.
type ImageKind int

const (
	KindRGB ImageKind = iota
	KindSpectral
)

func (k ImageKind) String() string {
	if k == KindSpectral {
		return "spectral"
	}
	return "rgb"
}

// Bounds is the bounding box of non-empty slide content in level-0
// coordinates. It is independent of the level dimensions; scanners
// often pad the pyramid past the scanned area.
type Bounds struct {
	X, Y uint32
	Size pixel.Dimensions
}

// Format is the contract a format plugin implements. All methods must
// be safe for concurrent use; DecodeTile in particular is called in
// parallel for different tiles.
type Format interface {
	// ID returns a stable identity for this open slide, unique across
	// concurrently open slides. The slide path is the usual choice.
	ID() string
	// Name returns the format name, e.g. "pyramiddir".
	Name() string
	// Geometry returns the pyramid levels and nominal tile size.
	Geometry() *tiling.Geometry
	// Bounds returns the content bounding box in level-0 coordinates.
	Bounds() Bounds
	// Kind returns the pixel interpretation of the pyramid.
	Kind() ImageKind
	// Channels returns the per-channel metadata, already defaulted.
	// For KindRGB slides the list may be empty.
	Channels() []Channel
	// Properties returns the slide property map. The map must satisfy
	// the mandatory-key contract and is treated as read-only.
	Properties() *metadata.Metadata
	// AssociatedImages returns the names of the bundled non-pyramidal
	// images (label, thumbnail, macro).
	AssociatedImages() []string
	// AssociatedImageDimensions returns the extent of one associated
	// image, or ErrNotFound for an unknown name.
	AssociatedImageDimensions(name string) (pixel.Dimensions, error)
	// ReadAssociatedImage decodes one associated image, or returns
	// ErrNotFound for an unknown name.
	ReadAssociatedImage(name string) (*pixel.Image, error)
	// DecodeTile decodes the tile at (col, row) of a level. Edge tiles
	// may be smaller than the nominal tile size. Called on cache miss.
	DecodeTile(level int, col, row uint32) (*pixel.Image, error)
	// Close releases the plugin's resources.
	Close() error
}
