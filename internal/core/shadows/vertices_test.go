package shadows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueVerticesSharedEndpoint(t *testing.T) {
	segments := []Segment{
		NewSegment(Point{0, 0}, Point{10, 0}),
		NewSegment(Point{10, 0}, Point{10, 10}),
		NewSegment(Point{10, 10}, Point{0, 0}),
	}

	vertices := UniqueVertices(segments, ExactTolerance())

	assert.Equal(t, []Point{{0, 0}, {10, 0}, {10, 10}}, vertices)
}

func TestUniqueVerticesFirstSeenOrder(t *testing.T) {
	segments := []Segment{
		NewSegment(Point{5, 5}, Point{1, 1}),
		NewSegment(Point{3, 3}, Point{5, 5}),
		NewSegment(Point{1, 1}, Point{7, 7}),
	}

	vertices := UniqueVertices(segments, ExactTolerance())

	assert.Equal(t, []Point{{5, 5}, {1, 1}, {3, 3}, {7, 7}}, vertices)
}

func TestUniqueVerticesTolerance(t *testing.T) {
	a, b := 0.1, 0.2
	sum := a + b
	segments := []Segment{
		NewSegment(Point{0, 0}, Point{sum, 0}),
		NewSegment(Point{0.3, 0}, Point{0.3, 1}),
	}

	exact := UniqueVertices(segments, ExactTolerance())
	assert.Len(t, exact, 4, "0.1+0.2 and 0.3 differ in the last bit")

	scaled := UniqueVertices(segments, ScaledTolerance(1))
	assert.Equal(t, []Point{{0, 0}, {sum, 0}, {0.3, 1}}, scaled)
}

func TestUniqueVerticesEmpty(t *testing.T) {
	assert.Empty(t, UniqueVertices(nil, ExactTolerance()))
}
