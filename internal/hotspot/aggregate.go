// Package hotspot groups capsules into map hotspots by spatial grid cell.
//
// Aggregation is a full recompute on every call. Output is deterministic:
// hotspots appear
// in the order their cells were first encountered in the input, and each
// hotspot's location is the first capsule seen in its cell.
package hotspot

import (
	"time"

	"github.com/roach88/geocapsule/internal/capsule"
	"github.com/roach88/geocapsule/internal/engine"
	"github.com/roach88/geocapsule/internal/geo"
)

// Aggregator buckets capsules into hotspots on a fixed-size grid.
type Aggregator struct {
	grid geo.Grid
}

// New creates an aggregator over the given grid.
func New(grid geo.Grid) *Aggregator {
	return &Aggregator{grid: grid}
}

// Aggregate produces one hotspot per occupied grid cell.
//
// capsuleCount is the cell's bucket size, so the counts always sum to
// len(capsules). hasUnlocked reports whether the viewer can unlock or
// re-read at least one capsule in the cell right now (geofence, time and
// visibility guards with no key supplied, or an already-committed unlock);
// a nil viewer makes every hotspot report false.
func (a *Aggregator) Aggregate(capsules []capsule.TimeCapsule, viewer *geo.Point, now time.Time) []capsule.MapHotspot {
	hotspots := make([]capsule.MapHotspot, 0, len(capsules))
	index := make(map[geo.Cell]int, len(capsules))

	for _, c := range capsules {
		cell := a.grid.CellOf(c.Location)
		i, seen := index[cell]
		if !seen {
			index[cell] = len(hotspots)
			hotspots = append(hotspots, capsule.MapHotspot{
				ID:       cell.Key(),
				Location: c.Location,
			})
			i = index[cell]
		}
		hotspots[i].CapsuleCount++
		if !hotspots[i].HasUnlocked && viewer != nil && engine.EligibleNow(c, viewer, now) {
			hotspots[i].HasUnlocked = true
		}
	}

	return hotspots
}

// Select resolves a hotspot back to the capsules in its grid cell, in input
// order. A single-capsule result resolves a click directly; disambiguating
// a multi-capsule cell is the caller's concern.
func (a *Aggregator) Select(capsules []capsule.TimeCapsule, hotspotID string) []capsule.TimeCapsule {
	var matched []capsule.TimeCapsule
	for _, c := range capsules {
		if a.grid.CellOf(c.Location).Key() == hotspotID {
			matched = append(matched, c)
		}
	}
	return matched
}
