package shadows

// Point represents a 2D point in space. It doubles as a direction vector.
type Point struct {
	X, Y float64
}

// Coord represents a tile coordinate
type Coord struct {
	X, Y int
}

// Segment represents an opaque wall segment that blocks line of sight
type Segment struct {
	A, B         Point
	TileX        int     // Grid coordinates of the first tile this segment belongs to (tile walls only)
	TileY        int
	TilesCovered []Coord // All tiles this segment covers (for merged segments)
	EdgeType     string  // "top", "bottom", "left", "right" for tile walls, empty otherwise
}

// NewSegment creates a free-standing segment from two endpoints.
func NewSegment(a, b Point) Segment {
	return Segment{A: a, B: b, TileX: -1, TileY: -1}
}

// Direction returns B - A.
func (s Segment) Direction() Point {
	return s.B.Sub(s.A)
}

// Ray is a half-line anchored at Origin, extending along Direction.
type Ray struct {
	Origin    Point
	Direction Point
}

// RayFromAngle builds a ray with a unit direction (cos(angle), sin(angle)).
func RayFromAngle(origin Point, angle float64) Ray {
	return Ray{Origin: origin, Direction: PointFromAngle(angle)}
}

// B returns the second defining point of the ray, Origin + Direction.
func (r Ray) B() Point {
	return r.Origin.Add(r.Direction)
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Point {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Intersection is the result of casting a ray against a segment.
type Intersection struct {
	Hit   bool
	Point Point
	T1    float64 // parameter along the ray; smaller is nearer
	T2    float64 // normalized position along the segment
	Angle float64 // sampling angle that produced the ray
	// Segment is the index of the segment hit within the scene, -1 when none.
	Segment int
}

// noHit is the zero result for a ray that does not cross a segment.
var noHit = Intersection{Segment: -1}

// Polygon is the visibility polygon computed for one observer position.
type Polygon struct {
	Observer Point
	// Points is the closed boundary ring: sorted by angle, last == first.
	Points []Point
	// Hits holds the retained intersection behind each ring point except the
	// closing duplicate.
	Hits []Intersection
	// Misses counts sampling angles that produced no boundary point.
	Misses int
}

// Closed reports whether the ring is non-empty and ends on its first point.
func (p Polygon) Closed() bool {
	n := len(p.Points)
	return n > 1 && p.Points[0].Equals(p.Points[n-1])
}

// Area returns the unsigned area enclosed by the ring.
func (p Polygon) Area() float64 {
	a := PolygonArea(p.Points)
	if a < 0 {
		return -a
	}
	return a
}

// Contains reports whether point lies strictly inside the ring.
func (p Polygon) Contains(point Point) bool {
	return PointInPolygon(point, p.Points)
}
