package shadows

import (
	"math"
	"sort"
)

// minIntervalWidth is the smallest angular gap kept between two event angles.
const minIntervalWidth = 1e-12

// sweep resolves the polygon interval by interval. Segment endpoints are the
// only angles at which the nearest segment can change, as long as segments
// do not cross each other, so one ray through the middle of each interval
// identifies the segment that bounds the whole interval. Its supporting line
// is then clipped to the two bounding rays.
func (b *Builder) sweep(scene Scene, vertices []Point, candidates []int, observer Point, tol Tolerance) (Polygon, error) {
	poly := Polygon{Observer: observer}
	angles := eventAngles(vertices, observer)
	if len(angles) == 0 {
		return poly, nil
	}

	var hits []Intersection
	for i, a0 := range angles {
		a1 := angles[0] + 2*math.Pi
		if i+1 < len(angles) {
			a1 = angles[i+1]
		}

		mid := (a0 + a1) / 2
		hit, err := b.nearestHit(scene, candidates, observer, normalizeAngle(mid), tol)
		if err != nil {
			return Polygon{}, err
		}

		if !hit.Hit {
			begin, ok := b.fallback(observer, a0)
			if !ok {
				poly.Misses++
				continue
			}
			end, _ := b.fallback(observer, a1)
			hits = append(hits, begin, end)
			continue
		}

		seg := scene.Segments[hit.Segment]
		begin, okBegin := rayLineIntersection(RayFromAngle(observer, a0), seg)
		end, okEnd := rayLineIntersection(RayFromAngle(observer, a1), seg)
		if !okBegin || !okEnd {
			poly.Misses++
			continue
		}
		begin.Angle, begin.Segment = a0, hit.Segment
		end.Angle, end.Segment = a1, hit.Segment
		hits = append(hits, begin, end)
	}

	hits = dropRepeats(hits, tol.Point)
	poly.Hits = hits
	poly.Points = closeRing(hits)
	return poly, nil
}

// eventAngles returns the sorted, deduplicated angles of vertices around observer.
func eventAngles(vertices []Point, observer Point) []float64 {
	angles := make([]float64, 0, len(vertices))
	for _, v := range vertices {
		if v.Equals(observer) {
			continue
		}
		angles = append(angles, v.Angle(observer))
	}
	sort.Float64s(angles)

	unique := angles[:0]
	for _, a := range angles {
		if len(unique) > 0 && a-unique[len(unique)-1] < minIntervalWidth {
			continue
		}
		unique = append(unique, a)
	}
	return unique
}

// rayLineIntersection intersects r with the infinite line through s. Only
// points in front of the ray origin are accepted.
func rayLineIntersection(r Ray, s Segment) (Intersection, bool) {
	rd, sd := r.Direction, s.Direction()

	denom := sd.X*rd.Y - sd.Y*rd.X
	if denom == 0 {
		return noHit, false
	}
	t2 := (rd.X*(s.A.Y-r.Origin.Y) + rd.Y*(r.Origin.X-s.A.X)) / denom
	p := s.A.Add(sd.Scale(t2))

	t1 := p.Sub(r.Origin).Dot(rd) / rd.Dot(rd)
	if t1 < 0 {
		return noHit, false
	}
	return Intersection{Hit: true, Point: p, T1: t1, T2: t2, Segment: -1}, true
}

// dropRepeats removes consecutive points that match within eps, including a
// trailing point that repeats the first.
func dropRepeats(hits []Intersection, eps float64) []Intersection {
	out := hits[:0]
	for _, h := range hits {
		if len(out) > 0 && out[len(out)-1].Point.ApproxEquals(h.Point, eps) {
			continue
		}
		out = append(out, h)
	}
	if len(out) > 1 && out[len(out)-1].Point.ApproxEquals(out[0].Point, eps) {
		out = out[:len(out)-1]
	}
	return out
}
