// Package spatial indexes occluder segments in an R-tree so a view radius can
// skip walls that are too far away to matter.
package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"

	"chosenoffset.com/sightline/internal/core/shadows"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// minExtent pads axis-aligned segments, which have a zero-width box.
	minExtent = 1e-6
)

// segmentEntry wraps a scene segment so it can live in the tree.
type segmentEntry struct {
	index  int
	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *segmentEntry) Bounds() rtreego.Rect {
	return e.bounds
}

// Index answers "which segments may be within radius of this point" for one
// scene. Indices refer to the scene's segment slice, so the Index must be
// rebuilt whenever the scene changes.
type Index struct {
	tree  *rtreego.Rtree
	count int
}

// NewIndex builds an R-tree over segments.
func NewIndex(segments []shadows.Segment) (*Index, error) {
	entries := make([]rtreego.Spatial, 0, len(segments))
	for i, seg := range segments {
		bounds, err := segmentBounds(seg)
		if err != nil {
			return nil, errors.Wrapf(err, "indexing segment %d", i)
		}
		entries = append(entries, &segmentEntry{index: i, bounds: bounds})
	}

	return &Index{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren, entries...),
		count: len(segments),
	}, nil
}

func segmentBounds(seg shadows.Segment) (rtreego.Rect, error) {
	minX, maxX := math.Min(seg.A.X, seg.B.X), math.Max(seg.A.X, seg.B.X)
	minY, maxY := math.Min(seg.A.Y, seg.B.Y), math.Max(seg.A.Y, seg.B.Y)
	return rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, minExtent), math.Max(maxY-minY, minExtent)},
	)
}

// Len returns the number of indexed segments.
func (ix *Index) Len() int {
	return ix.count
}

// Near implements shadows.Culler. It returns, in ascending order, the indices
// of segments whose bounding box overlaps the square of half-size radius
// around center. A non-positive or unusable radius returns every segment.
func (ix *Index) Near(center shadows.Point, radius float64) []int {
	if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		return ix.all()
	}

	query, err := rtreego.NewRect(
		rtreego.Point{center.X - radius, center.Y - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return ix.all()
	}

	found := ix.tree.SearchIntersect(query)
	indices := make([]int, 0, len(found))
	for _, s := range found {
		indices = append(indices, s.(*segmentEntry).index)
	}
	// Scene order keeps nearest-hit ties identical to an unculled build.
	sort.Ints(indices)
	return indices
}

func (ix *Index) all() []int {
	indices := make([]int, ix.count)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
