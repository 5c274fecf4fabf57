package shadows

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrDegenerateGeometry is returned for zero-length or non-finite ray or
	// segment directions, which would otherwise poison hit comparisons with
	// NaN or Inf.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidObserver is returned when the observer has a NaN or infinite coordinate.
	ErrInvalidObserver = errors.New("invalid observer position")
)

// Scene is the ordered, read-only set of occluders for a frame.
type Scene struct {
	Segments []Segment
}

// NewScene creates a scene from segments. The slice is not copied.
func NewScene(segments []Segment) Scene {
	return Scene{Segments: segments}
}

// Validate rejects segments with zero length or non-finite endpoints.
func (s Scene) Validate() error {
	for i, seg := range s.Segments {
		if err := validateSegment(seg); err != nil {
			return errors.Wrapf(err, "segment %d (%v -> %v)", i, seg.A, seg.B)
		}
	}
	return nil
}

func validateSegment(seg Segment) error {
	if !seg.A.IsFinite() || !seg.B.IsFinite() {
		return errors.Wrap(ErrDegenerateGeometry, "non-finite endpoint")
	}
	if seg.A.Equals(seg.B) {
		return errors.Wrap(ErrDegenerateGeometry, "zero-length segment")
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of every segment endpoint.
// An empty scene yields two zero points.
func (s Scene) Bounds() (min, max Point) {
	if len(s.Segments) == 0 {
		return Point{}, Point{}
	}
	min = Point{math.Inf(1), math.Inf(1)}
	max = Point{math.Inf(-1), math.Inf(-1)}
	for _, seg := range s.Segments {
		for _, p := range [2]Point{seg.A, seg.B} {
			min.X = math.Min(min.X, p.X)
			min.Y = math.Min(min.Y, p.Y)
			max.X = math.Max(max.X, p.X)
			max.Y = math.Max(max.Y, p.Y)
		}
	}
	return min, max
}

// Extent returns the larger side of the scene's bounding box.
func (s Scene) Extent() float64 {
	min, max := s.Bounds()
	return math.Max(max.X-min.X, max.Y-min.Y)
}

// Tolerance controls the floating-point comparisons of the intersector and
// the vertex extractor. The zero value compares exactly.
type Tolerance struct {
	// Point is the per-coordinate distance under which two vertices are merged.
	Point float64
	// Parallel is the largest |cross| of two unit directions treated as parallel.
	Parallel float64
	// Param widens the accepted segment parameter range to [-Param, 1+Param].
	Param float64
}

const (
	relativePointTolerance = 1e-9
	parallelTolerance      = 1e-12
	paramTolerance         = 1e-9
)

// ExactTolerance compares points and directions bit for bit.
func ExactTolerance() Tolerance {
	return Tolerance{}
}

// ScaledTolerance returns a tolerance whose point epsilon grows with the
// scene extent, so large and small scenes round the same way.
func ScaledTolerance(extent float64) Tolerance {
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		extent = 1
	}
	return Tolerance{
		Point:    extent * relativePointTolerance,
		Parallel: parallelTolerance,
		Param:    paramTolerance,
	}
}
