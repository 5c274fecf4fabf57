package shadows

import (
	"math"

	"github.com/pkg/errors"
)

// Intersect casts ray r against segment s.
//
// Both are read parametrically: r.Origin + T1*r.Direction and
// s.A + T2*(s.B-s.A). A hit requires T1 >= 0 (in front of the origin) and
// T2 within [0, 1] widened by tol.Param. Parallel or anti-parallel pairs never
// hit. Zero-length or non-finite directions return ErrDegenerateGeometry.
func Intersect(r Ray, s Segment, tol Tolerance) (Intersection, error) {
	rp, rd := r.Origin, r.Direction
	sp, sd := s.A, s.Direction()

	rMag := rd.Length()
	if rMag == 0 || math.IsNaN(rMag) || math.IsInf(rMag, 0) || !rp.IsFinite() {
		return noHit, errors.Wrapf(ErrDegenerateGeometry, "ray from %v along %v", rp, rd)
	}
	sMag := sd.Length()
	if sMag == 0 || math.IsNaN(sMag) || math.IsInf(sMag, 0) || !sp.IsFinite() {
		return noHit, errors.Wrapf(ErrDegenerateGeometry, "segment %v -> %v", s.A, s.B)
	}

	rUnit := Point{rd.X / rMag, rd.Y / rMag}
	sUnit := Point{sd.X / sMag, sd.Y / sMag}
	if math.Abs(rUnit.Cross(sUnit)) <= tol.Parallel {
		return noHit, nil
	}

	denom := sd.X*rd.Y - sd.Y*rd.X
	if denom == 0 {
		return noHit, nil
	}
	t2 := (rd.X*(sp.Y-rp.Y) + rd.Y*(rp.X-sp.X)) / denom

	// Solve T1 on the dominant axis so axis-aligned rays never divide by zero.
	var t1 float64
	if math.Abs(rd.X) >= math.Abs(rd.Y) {
		t1 = (sp.X + sd.X*t2 - rp.X) / rd.X
	} else {
		t1 = (sp.Y + sd.Y*t2 - rp.Y) / rd.Y
	}

	if t1 < 0 {
		return noHit, nil
	}
	if t2 < -tol.Param || t2 > 1+tol.Param {
		return noHit, nil
	}

	return Intersection{
		Hit:     true,
		Point:   r.At(t1),
		T1:      t1,
		T2:      t2,
		Segment: -1,
	}, nil
}
