package shadows

import "math"

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p * f.
func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the z component of the 3D cross product of p and q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Length returns the magnitude of p treated as a vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Unit returns p divided by its length. The zero vector stays zero.
func (p Point) Unit() Point {
	l := p.Length()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Equals compares both coordinates for exact equality, with no tolerance.
func (p Point) Equals(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

// ApproxEquals compares both coordinates within eps. eps == 0 is Equals.
func (p Point) ApproxEquals(q Point, eps float64) bool {
	if eps <= 0 {
		return p.Equals(q)
	}
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Angle returns the direction of p seen from origin, in (-pi, pi].
func (p Point) Angle(origin Point) float64 {
	return math.Atan2(p.Y-origin.Y, p.X-origin.X)
}

// PointFromAngle returns the unit vector (cos(angle), sin(angle)).
func PointFromAngle(angle float64) Point {
	return Point{math.Cos(angle), math.Sin(angle)}
}

// normalizeAngle maps an angle into (-pi, pi].
func normalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// IsFacingPoint checks if a segment is facing towards a given point
// Uses cross product to determine if the point is on the "front" side of the segment
func IsFacingPoint(seg Segment, point Point) bool {
	return seg.Direction().Cross(point.Sub(seg.A)) > 0
}

// PointInPolygon tests if a point is inside a polygon using ray casting algorithm
func PointInPolygon(point Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PolygonArea returns the signed shoelace area of a ring. A trailing point
// equal to the first contributes nothing, so open and closed rings agree.
func PolygonArea(ring []Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	sum := 0.0
	j := len(ring) - 1
	for i := range ring {
		sum += ring[j].Cross(ring[i])
		j = i
	}
	return sum / 2
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return b.Sub(a).Length()
}
