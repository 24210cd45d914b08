// # Region To Tile Conversion
//
// Package tiling turns a rectangular region request at one pyramid level
// into the ordered list of tile fetches needed to assemble it: which
// tiles overlap the region, which sub-rectangle of each tile to copy,
// and where that sub-rectangle lands in the output buffer.
//
// The conversion is pure geometry. It never touches pixel data, so it
// can be tested exhaustively against pyramid shapes without decoding
// anything.
package tiling

import (
	"errors"
	"fmt"

	"github.com/ironsheep/wholeslide/pkg/pixel"
)

var (
	// ErrInvalidLevel marks a level index outside the pyramid.
	ErrInvalidLevel = errors.New("invalid pyramid level")
	// ErrEmptyRegion marks a zero-size region request.
	ErrEmptyRegion = errors.New("empty region")
	// ErrOutsideBounds marks a region with no overlap with the level.
	ErrOutsideBounds = errors.New("region outside level bounds")
)

// LevelInfo describes one pyramid level. Downsample is the ratio of
// level-0 resolution to this level's resolution; level 0 is 1.0 and the
// factor grows with the level index, but it need not be an integer or a
// power of two.
type LevelInfo struct {
	Dimensions pixel.Dimensions
	Downsample float64
}

// Geometry is the pyramid shape a format plugin declares: per-level
// extents and the nominal tile size shared by all levels.
type Geometry struct {
	Levels   []LevelInfo
	TileSize pixel.Dimensions
}

// RegionSpec is a caller's region request: a top-left corner and size in
// the coordinate space of the requested level.
type RegionSpec struct {
	X, Y  uint32
	Size  pixel.Dimensions
	Level int
}

// Rect is a sub-rectangle in tile-local coordinates.
type Rect struct {
	X, Y, Width, Height uint32
}

// Point is a destination offset in the assembled output.
type Point struct {
	X, Y uint32
}

// TileOp is one tile fetch: read tile (Col, Row), copy Source out of it,
// and place the pixels at Dest in the output image.
type TileOp struct {
	Col, Row uint32
	Source   Rect
	Dest     Point
}

// Plan is the converter output. Region is the clamped request the
// output image should be sized to; Ops are in row-major order (ascending
// row, then ascending column), which callers may rely on.
type Plan struct {
	Region RegionSpec
	Ops    []TileOp
}

// TilesAcross returns the number of tile columns at a level, or 0 for a
// level outside the pyramid.
func (g *Geometry) TilesAcross(level int) uint32 {
	if level < 0 || level >= len(g.Levels) {
		return 0
	}
	return tileCount(g.Levels[level].Dimensions.Width, g.TileSize.Width)
}

// TilesDown returns the number of tile rows at a level, or 0 for a
// level outside the pyramid.
func (g *Geometry) TilesDown(level int) uint32 {
	if level < 0 || level >= len(g.Levels) {
		return 0
	}
	return tileCount(g.Levels[level].Dimensions.Height, g.TileSize.Height)
}

func tileCount(extent, tile uint32) uint32 {
	if tile == 0 {
		return 0
	}
	return (extent + tile - 1) / tile
}

// ClampRegion clips a region to the level bounds. It reports
// ErrInvalidLevel for a bad level, ErrEmptyRegion for a zero-size
// request, and ErrOutsideBounds when the region has no overlap with the
// level at all; a region that merely overhangs an edge is clipped and
// returned smaller.
func (g *Geometry) ClampRegion(region RegionSpec) (RegionSpec, error) {
	if region.Level < 0 || region.Level >= len(g.Levels) {
		return RegionSpec{}, fmt.Errorf("%w: level %d of %d", ErrInvalidLevel, region.Level, len(g.Levels))
	}
	if region.Size.Width == 0 || region.Size.Height == 0 {
		return RegionSpec{}, fmt.Errorf("%w: %dx%d", ErrEmptyRegion, region.Size.Width, region.Size.Height)
	}
	bounds := g.Levels[region.Level].Dimensions
	if region.X >= bounds.Width || region.Y >= bounds.Height {
		return RegionSpec{}, fmt.Errorf("%w: (%d,%d) beyond %dx%d at level %d",
			ErrOutsideBounds, region.X, region.Y, bounds.Width, bounds.Height, region.Level)
	}
	// Widen before adding: X+Width can wrap uint32 and a wrapped sum
	// would sneak past the comparison unclamped.
	clamped := region
	if uint64(region.X)+uint64(region.Size.Width) > uint64(bounds.Width) {
		clamped.Size.Width = bounds.Width - region.X
	}
	if uint64(region.Y)+uint64(region.Size.Height) > uint64(bounds.Height) {
		clamped.Size.Height = bounds.Height - region.Y
	}
	return clamped, nil
}

// BuildPlan converts a region request into an ordered tile plan. The
// request is validated and clamped first; see ClampRegion for the error
// cases. Boundary tiles yield source rectangles smaller than the
// nominal tile size, clipped both to the region and to the level edge.
func (g *Geometry) BuildPlan(region RegionSpec) (*Plan, error) {
	clamped, err := g.ClampRegion(region)
	if err != nil {
		return nil, err
	}
	bounds := g.Levels[clamped.Level].Dimensions
	tileW, tileH := g.TileSize.Width, g.TileSize.Height
	if tileW == 0 || tileH == 0 {
		return nil, fmt.Errorf("%w: zero tile size", ErrOutsideBounds)
	}

	regionRight := clamped.X + clamped.Size.Width
	regionBottom := clamped.Y + clamped.Size.Height

	firstCol := clamped.X / tileW
	lastCol := (regionRight - 1) / tileW
	firstRow := clamped.Y / tileH
	lastRow := (regionBottom - 1) / tileH

	plan := &Plan{
		Region: clamped,
		Ops:    make([]TileOp, 0, (lastCol-firstCol+1)*(lastRow-firstRow+1)),
	}
	for row := firstRow; row <= lastRow; row++ {
		tileTop := row * tileH
		tileBottom := addCapped(tileTop, tileH, bounds.Height)
		for col := firstCol; col <= lastCol; col++ {
			tileLeft := col * tileW
			tileRight := addCapped(tileLeft, tileW, bounds.Width)

			interLeft := max32(clamped.X, tileLeft)
			interTop := max32(clamped.Y, tileTop)
			interRight := min32(regionRight, tileRight)
			interBottom := min32(regionBottom, tileBottom)
			if interRight <= interLeft || interBottom <= interTop {
				continue
			}

			plan.Ops = append(plan.Ops, TileOp{
				Col: col,
				Row: row,
				Source: Rect{
					X:      interLeft - tileLeft,
					Y:      interTop - tileTop,
					Width:  interRight - interLeft,
					Height: interBottom - interTop,
				},
				Dest: Point{
					X: interLeft - clamped.X,
					Y: interTop - clamped.Y,
				},
			})
		}
	}
	return plan, nil
}

// addCapped returns min(a+b, bound) with the sum taken in uint64 so a
// tile edge near the top of the uint32 range cannot wrap.
func addCapped(a, b, bound uint32) uint32 {
	if s := uint64(a) + uint64(b); s < uint64(bound) {
		return uint32(s)
	}
	return bound
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
