package shadows

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// DefaultAngleEpsilon is the angular offset of the two extra rays cast on
// either side of every vertex.
const DefaultAngleEpsilon = 0.0001

// Strategy selects how sampling directions are chosen.
type Strategy int

const (
	// StrategyRayCast casts three rays per vertex: angle-eps, angle, angle+eps.
	StrategyRayCast Strategy = iota
	// StrategySweep walks the angular intervals between vertices and resolves
	// the nearest segment of each interval.
	StrategySweep
)

func (s Strategy) String() string {
	switch s {
	case StrategyRayCast:
		return "raycast"
	case StrategySweep:
		return "sweep"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name back into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "raycast", "":
		return StrategyRayCast, nil
	case "sweep":
		return StrategySweep, nil
	}
	return StrategyRayCast, errors.Errorf("unknown visibility strategy %q", name)
}

// Culler narrows a scene to the segments that may matter within radius of
// center. It returns indices into the Scene it was built from.
type Culler interface {
	Near(center Point, radius float64) []int
}

// Options configures a Builder.
type Options struct {
	Strategy     Strategy
	AngleEpsilon float64
	// Tolerance overrides the comparisons; nil means ScaledTolerance(scene extent).
	Tolerance *Tolerance
	// MaxDistance limits how far a ray may travel. Zero means unbounded.
	MaxDistance float64
	// FillMisses emits the point at MaxDistance for rays that hit nothing.
	// Without it those angles are dropped and counted in Polygon.Misses.
	FillMisses bool
	// Culler, when set together with MaxDistance, prefilters the segments.
	Culler Culler
}

// DefaultOptions returns the ray casting configuration with scaled tolerance.
func DefaultOptions() Options {
	return Options{
		Strategy:     StrategyRayCast,
		AngleEpsilon: DefaultAngleEpsilon,
	}
}

// Builder computes visibility polygons. It keeps no per-frame state and is
// safe to share.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Options returns the builder's configuration.
func (b *Builder) Options() Options {
	return b.opts
}

// ComputeVisibilityPolygon calculates what the viewer can see from their position.
// Everything outside the returned ring is in shadow.
func ComputeVisibilityPolygon(viewerPos Point, segments []Segment, opts Options) (Polygon, error) {
	return NewBuilder(opts).Build(NewScene(segments), viewerPos)
}

// Build computes the visibility polygon of observer within scene.
func (b *Builder) Build(scene Scene, observer Point) (Polygon, error) {
	if !observer.IsFinite() {
		return Polygon{}, errors.Wrapf(ErrInvalidObserver, "observer %v", observer)
	}
	if err := scene.Validate(); err != nil {
		return Polygon{}, err
	}

	tol := b.tolerance(scene)
	// Angles come from the whole scene even when culling: far corners still
	// decide where the rays within the radius go.
	vertices := UniqueVertices(scene.Segments, tol)
	candidates := b.candidates(scene, observer)

	switch b.opts.Strategy {
	case StrategySweep:
		return b.sweep(scene, vertices, candidates, observer, tol)
	case StrategyRayCast:
		return b.rayCast(scene, vertices, candidates, observer, tol)
	default:
		return Polygon{}, errors.Errorf("unknown visibility strategy %d", int(b.opts.Strategy))
	}
}

func (b *Builder) tolerance(scene Scene) Tolerance {
	if b.opts.Tolerance != nil {
		return *b.opts.Tolerance
	}
	return ScaledTolerance(scene.Extent())
}

// candidates returns the indices of the segments rays are tested against. A
// culler may only drop segments that cannot be hit within MaxDistance, so the
// result matches an unculled build.
func (b *Builder) candidates(scene Scene, observer Point) []int {
	if b.opts.Culler != nil && b.opts.MaxDistance > 0 {
		return b.opts.Culler.Near(observer, b.opts.MaxDistance)
	}
	all := make([]int, len(scene.Segments))
	for i := range all {
		all[i] = i
	}
	return all
}

func (b *Builder) rayCast(scene Scene, vertices []Point, candidates []int, observer Point, tol Tolerance) (Polygon, error) {
	angles := sampleAngles(vertices, observer, b.opts.AngleEpsilon)

	poly := Polygon{Observer: observer}
	hits := make([]Intersection, 0, len(angles))
	for _, angle := range angles {
		hit, err := b.nearestHit(scene, candidates, observer, angle, tol)
		if err != nil {
			return Polygon{}, err
		}
		if !hit.Hit {
			fallback, ok := b.fallback(observer, angle)
			if !ok {
				poly.Misses++
				continue
			}
			hit = fallback
		}
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Angle < hits[j].Angle
	})

	poly.Hits = hits
	poly.Points = closeRing(hits)
	return poly, nil
}

// sampleAngles emits angle-eps, angle and angle+eps for every vertex, each
// normalized into (-pi, pi].
func sampleAngles(vertices []Point, observer Point, eps float64) []float64 {
	angles := make([]float64, 0, len(vertices)*3)
	for _, v := range vertices {
		angle := v.Angle(observer)
		angles = append(angles,
			normalizeAngle(angle-eps),
			angle,
			normalizeAngle(angle+eps),
		)
	}
	return angles
}

// nearestHit casts one ray and keeps the hit with the smallest T1. Ties keep
// the earlier segment.
func (b *Builder) nearestHit(scene Scene, candidates []int, observer Point, angle float64, tol Tolerance) (Intersection, error) {
	ray := RayFromAngle(observer, angle)

	closest := noHit
	for _, idx := range candidates {
		hit, err := Intersect(ray, scene.Segments[idx], tol)
		if err != nil {
			return noHit, errors.Wrapf(err, "segment %d", idx)
		}
		if !hit.Hit {
			continue
		}
		if b.opts.MaxDistance > 0 && hit.T1 > b.opts.MaxDistance {
			continue
		}
		if !closest.Hit || hit.T1 < closest.T1 {
			hit.Segment = idx
			closest = hit
		}
	}

	closest.Angle = angle
	return closest, nil
}

// fallback returns the point at MaxDistance along angle when FillMisses is
// enabled. The result has Hit == false and Segment == -1.
func (b *Builder) fallback(observer Point, angle float64) (Intersection, bool) {
	if !b.opts.FillMisses || b.opts.MaxDistance <= 0 {
		return noHit, false
	}
	return Intersection{
		Point:   RayFromAngle(observer, angle).At(b.opts.MaxDistance),
		T1:      b.opts.MaxDistance,
		T2:      math.NaN(),
		Angle:   angle,
		Segment: -1,
	}, true
}

// closeRing copies the hit points and repeats the first one at the end.
func closeRing(hits []Intersection) []Point {
	if len(hits) == 0 {
		return nil
	}
	ring := make([]Point, 0, len(hits)+1)
	for _, h := range hits {
		ring = append(ring, h.Point)
	}
	return append(ring, ring[0])
}
