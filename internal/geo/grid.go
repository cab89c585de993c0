package geo

import (
	"fmt"
	"math"

	"github.com/roach88/geocapsule/internal/capsule"
)

// DefaultCellDegrees is the default grid cell size in degrees. It matches
// rounding coordinates to four decimal places (≈11 m at the equator), the
// bucket size the persisted data was built around.
const DefaultCellDegrees = 0.0001

// Grid buckets coordinates into fixed-size cells for hotspot aggregation.
//
// A coordinate maps to the cell whose center multiple of the cell size is
// nearest; ties (exact midpoints) round half away from zero, so the default
// cell size reproduces 4-decimal rounding exactly. Two points just under one
// cell apart can still land in different cells near a boundary; callers that
// need true radius grouping must not use the grid for it.
type Grid struct {
	cell float64
}

// NewGrid creates a grid with the given cell size in degrees.
// Sizes <= 0 fall back to DefaultCellDegrees.
func NewGrid(cellDegrees float64) Grid {
	if cellDegrees <= 0 {
		cellDegrees = DefaultCellDegrees
	}
	return Grid{cell: cellDegrees}
}

// CellDegrees returns the cell size in degrees.
func (g Grid) CellDegrees() float64 {
	return g.cell
}

// Cell is a grid cell index pair.
type Cell struct {
	Lat int64
	Lon int64
}

// Key returns a stable string form of the cell, usable as a hotspot id.
func (c Cell) Key() string {
	return fmt.Sprintf("cell_%d_%d", c.Lat, c.Lon)
}

// CellOf maps a location to its grid cell.
func (g Grid) CellOf(loc capsule.Location) Cell {
	return Cell{
		Lat: quantize(loc.Latitude, g.cell),
		Lon: quantize(loc.Longitude, g.cell),
	}
}

// quantize returns the index of the nearest cell multiple, rounding half
// away from zero.
func quantize(v, cell float64) int64 {
	return int64(math.Round(v / cell))
}
