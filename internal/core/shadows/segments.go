package shadows

// Grid is a tile map that knows which cells block line of sight.
type Grid interface {
	Size() (width, height int)
	BlocksSight(x, y int) bool
}

// CreateWallSegmentsFromGrid generates wall segments using a contour-based approach.
// Instead of emitting four edges per tile, it extracts the perimeter of contiguous
// sight-blocking regions and merges colinear edges into longer walls.
func CreateWallSegmentsFromGrid(grid Grid, tileSize float64) []Segment {
	width, height := grid.Size()

	// Step 1: Find all contiguous regions of sight-blocking tiles
	regions := findContiguousRegions(grid, width, height)

	// Step 2: Extract perimeter segments for each region
	var allSegments []Segment
	for _, region := range regions {
		allSegments = append(allSegments, extractPerimeterSegments(region, tileSize)...)
	}

	// Step 3: Merge colinear segments to create longer wall segments
	return mergeColinearSegments(allSegments)
}

// BorderSegments returns the four edges of a width x height rectangle anchored
// at the origin, wound clockwise in screen coordinates.
func BorderSegments(width, height float64) []Segment {
	return PolygonSegments([]Point{
		{0, 0},
		{width, 0},
		{width, height},
		{0, height},
	})
}

// PolygonSegments closes a polyline into one segment per edge. Repeated
// consecutive points are skipped so no zero-length segment is produced.
func PolygonSegments(points []Point) []Segment {
	if len(points) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(points))
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		if a.Equals(b) {
			continue
		}
		segments = append(segments, NewSegment(a, b))
	}
	return segments
}

// findContiguousRegions identifies all connected regions of sight-blocking tiles
func findContiguousRegions(grid Grid, width, height int) [][]Coord {
	visited := make(map[Coord]bool)
	var regions [][]Coord

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			coord := Coord{X: x, Y: y}
			if visited[coord] || !grid.BlocksSight(x, y) {
				continue
			}

			region := floodFill(grid, coord, width, height, visited)
			if len(region) > 0 {
				regions = append(regions, region)
			}
		}
	}

	return regions
}

// floodFill performs BFS to find all connected sight-blocking tiles
func floodFill(grid Grid, start Coord, width, height int, visited map[Coord]bool) []Coord {
	var region []Coord
	queue := []Coord{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		region = append(region, current)

		// 4-connected, no diagonals
		neighbors := [4]Coord{
			{X: current.X, Y: current.Y - 1},
			{X: current.X + 1, Y: current.Y},
			{X: current.X, Y: current.Y + 1},
			{X: current.X - 1, Y: current.Y},
		}

		for _, n := range neighbors {
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				continue
			}
			if visited[n] || !grid.BlocksSight(n.X, n.Y) {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}

	return region
}

// extractPerimeterSegments finds all exposed edges of a region
func extractPerimeterSegments(region []Coord, tileSize float64) []Segment {
	var segments []Segment

	regionSet := make(map[Coord]bool, len(region))
	for _, coord := range region {
		regionSet[coord] = true
	}

	edge := func(a, b Point, c Coord, edgeType string) Segment {
		return Segment{
			A:            a,
			B:            b,
			TileX:        c.X,
			TileY:        c.Y,
			TilesCovered: []Coord{c},
			EdgeType:     edgeType,
		}
	}

	for _, c := range region {
		left := float64(c.X) * tileSize
		top := float64(c.Y) * tileSize
		right := left + tileSize
		bottom := top + tileSize

		if !regionSet[Coord{X: c.X, Y: c.Y - 1}] {
			segments = append(segments, edge(Point{left, top}, Point{right, top}, c, "top"))
		}
		if !regionSet[Coord{X: c.X + 1, Y: c.Y}] {
			segments = append(segments, edge(Point{right, top}, Point{right, bottom}, c, "right"))
		}
		if !regionSet[Coord{X: c.X, Y: c.Y + 1}] {
			segments = append(segments, edge(Point{right, bottom}, Point{left, bottom}, c, "bottom"))
		}
		if !regionSet[Coord{X: c.X - 1, Y: c.Y}] {
			segments = append(segments, edge(Point{left, bottom}, Point{left, top}, c, "left"))
		}
	}

	return segments
}

// mergeColinearSegments combines adjacent parallel segments into longer segments
func mergeColinearSegments(segments []Segment) []Segment {
	if len(segments) == 0 {
		return segments
	}

	merged := make([]bool, len(segments))
	var result []Segment

	for i := range segments {
		if merged[i] {
			continue
		}

		current := segments[i]
		merged[i] = true

		// Keep extending until no neighbour joins
		extended := true
		for extended {
			extended = false

			for j := range segments {
				if merged[j] {
					continue
				}
				if canMergeSegments(current, segments[j]) {
					current = mergeSegments(current, segments[j])
					merged[j] = true
					extended = true
					break
				}
			}
		}

		result = append(result, current)
	}

	return result
}

const mergeEpsilon = 0.001

// canMergeSegments checks if two segments are adjacent and colinear
func canMergeSegments(seg1, seg2 Segment) bool {
	if seg1.EdgeType != seg2.EdgeType {
		return false
	}

	switch seg1.EdgeType {
	case "top", "bottom":
		if abs(seg1.A.Y-seg2.A.Y) > mergeEpsilon {
			return false
		}
		return abs(seg1.B.X-seg2.A.X) < mergeEpsilon || abs(seg1.A.X-seg2.B.X) < mergeEpsilon

	case "left", "right":
		if abs(seg1.A.X-seg2.A.X) > mergeEpsilon {
			return false
		}
		return abs(seg1.B.Y-seg2.A.Y) < mergeEpsilon || abs(seg1.A.Y-seg2.B.Y) < mergeEpsilon
	}

	return false
}

// mergeSegments combines two adjacent colinear segments into one, keeping the
// winding of seg1 so IsFacingPoint still sees the open side.
func mergeSegments(seg1, seg2 Segment) Segment {
	result := seg1

	switch seg1.EdgeType {
	case "top", "bottom":
		lo := min(seg1.A.X, seg1.B.X, seg2.A.X, seg2.B.X)
		hi := max(seg1.A.X, seg1.B.X, seg2.A.X, seg2.B.X)
		if seg1.A.X <= seg1.B.X {
			result.A.X, result.B.X = lo, hi
		} else {
			result.A.X, result.B.X = hi, lo
		}

	case "left", "right":
		lo := min(seg1.A.Y, seg1.B.Y, seg2.A.Y, seg2.B.Y)
		hi := max(seg1.A.Y, seg1.B.Y, seg2.A.Y, seg2.B.Y)
		if seg1.A.Y <= seg1.B.Y {
			result.A.Y, result.B.Y = lo, hi
		} else {
			result.A.Y, result.B.Y = hi, lo
		}
	}

	covered := make([]Coord, 0, len(seg1.TilesCovered)+len(seg2.TilesCovered))
	covered = append(covered, seg1.TilesCovered...)
	result.TilesCovered = append(covered, seg2.TilesCovered...)

	return result
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
