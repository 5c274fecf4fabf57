package shadows

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointEquality(t *testing.T) {
	p := Point{1, 2}

	assert.True(t, p.Equals(Point{1, 2}))
	assert.False(t, p.Equals(Point{1, 2 + 1e-12}))

	assert.True(t, p.ApproxEquals(Point{1, 2 + 1e-12}, 1e-9))
	assert.False(t, p.ApproxEquals(Point{1, 2 + 1e-12}, 0))
	assert.False(t, p.ApproxEquals(Point{1.1, 2}, 1e-9))
}

func TestVectorArithmetic(t *testing.T) {
	a := Point{3, 4}
	b := Point{1, -2}

	assert.Equal(t, Point{4, 2}, a.Add(b))
	assert.Equal(t, Point{2, 6}, a.Sub(b))
	assert.Equal(t, Point{6, 8}, a.Scale(2))
	assert.Equal(t, -5.0, a.Dot(b))
	assert.Equal(t, -10.0, a.Cross(b))
	assert.Equal(t, 5.0, a.Length())
	assert.Equal(t, Point{0.6, 0.8}, a.Unit())
	assert.Equal(t, Point{}, Point{}.Unit())
	assert.Equal(t, 5.0, Distance(Point{0, 0}, a))
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{math.Pi + 0.5, -math.Pi + 0.5},
		{-math.Pi - 0.5, math.Pi - 0.5},
		{2*math.Pi + 1, 1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, normalizeAngle(tt.in), 1e-12, "normalizeAngle(%v)", tt.in)
	}
}

func TestPolygonArea(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	closed := append(append([]Point{}, square...), square[0])

	assert.Equal(t, 100.0, PolygonArea(square))
	assert.Equal(t, 100.0, PolygonArea(closed))
	assert.Equal(t, 0.0, PolygonArea(square[:2]))
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	assert.True(t, PointInPolygon(Point{5, 5}, square))
	assert.False(t, PointInPolygon(Point{15, 5}, square))
	assert.False(t, PointInPolygon(Point{5, -1}, square))
}

func TestIsFacingPoint(t *testing.T) {
	seg := NewSegment(Point{0, 0}, Point{10, 0})

	assert.True(t, IsFacingPoint(seg, Point{5, 5}))
	assert.False(t, IsFacingPoint(seg, Point{5, -5}))
}
