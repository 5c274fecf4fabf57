package shadows

// UniqueVertices collects the distinct endpoints of segments in first-seen
// order: segments in slice order, A before B. Two points are the same vertex
// when they match within tol.Point (exactly, for the zero tolerance).
//
// The accumulator is scanned linearly for every endpoint, which is quadratic
// in the vertex count and fine for hand-authored scenes.
func UniqueVertices(segments []Segment, tol Tolerance) []Point {
	vertices := make([]Point, 0, len(segments)*2)

	for _, seg := range segments {
		vertices = appendUnique(vertices, seg.A, tol.Point)
		vertices = appendUnique(vertices, seg.B, tol.Point)
	}

	return vertices
}

func appendUnique(vertices []Point, p Point, eps float64) []Point {
	for _, v := range vertices {
		if v.ApproxEquals(p, eps) {
			return vertices
		}
	}
	return append(vertices, p)
}
