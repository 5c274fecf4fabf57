// Package maploader reads scene files: the occluders, the observer spawn and
// the static lights of one visibility scene.
package maploader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"chosenoffset.com/sightline/internal/core/shadows"
)

// PointData is a point as written in a scene file.
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point converts p to a shadows.Point.
func (p PointData) Point() shadows.Point {
	return shadows.Point{X: p.X, Y: p.Y}
}

// SegmentData is a single free-standing occluder.
type SegmentData struct {
	A PointData `json:"a"`
	B PointData `json:"b"`
}

// GridData describes a tile map whose blocking tiles become walls.
type GridData struct {
	TileSize float64  `json:"tile_size"`
	Blocking string   `json:"blocking"` // every rune in this string blocks sight
	Rows     []string `json:"rows"`     // [y] rows of tiles, all the same width
}

// LightData is a static light placed in the scene.
type LightData struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"` // "RRGGBB", optional
}

// SceneData represents the loaded scene file
type SceneData struct {
	Name     string        `json:"name"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Border   bool          `json:"border"` // add the four edges of the width x height frame
	Observer PointData     `json:"observer"`
	Segments []SegmentData `json:"segments"`
	Polygons [][]PointData `json:"polygons"` // closed outlines
	Grid     *GridData     `json:"grid,omitempty"`
	Lights   []LightData   `json:"lights"`
}

// Map is a loaded scene with its occluders assembled.
type Map struct {
	Data  *SceneData
	Scene shadows.Scene

	rows [][]rune
}

// LoadMap loads a scene from a JSON file
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scene file %s", path)
	}

	m, err := ParseMap(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene file %s", path)
	}
	return m, nil
}

// ParseMap decodes and validates scene JSON and builds its segments.
// Segment order is: border, free segments, polygon edges, grid walls.
func ParseMap(data []byte) (*Map, error) {
	var sceneData SceneData
	if err := json.Unmarshal(data, &sceneData); err != nil {
		return nil, errors.Wrap(err, "failed to parse scene")
	}

	if err := validateSceneData(&sceneData); err != nil {
		return nil, errors.Wrap(err, "invalid scene data")
	}

	m := &Map{Data: &sceneData}
	if sceneData.Grid != nil {
		m.rows = make([][]rune, len(sceneData.Grid.Rows))
		for y, row := range sceneData.Grid.Rows {
			m.rows[y] = []rune(row)
		}
	}

	m.Scene = shadows.NewScene(m.buildSegments())
	if err := m.Scene.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scene geometry")
	}

	return m, nil
}

// validateSceneData checks if the scene data is valid
func validateSceneData(data *SceneData) error {
	if data.Width <= 0 || data.Height <= 0 {
		return errors.Errorf("invalid scene dimensions: %gx%g", data.Width, data.Height)
	}

	for i, seg := range data.Segments {
		if seg.A == seg.B {
			return errors.Errorf("segment %d has zero length", i)
		}
	}

	for i, poly := range data.Polygons {
		if len(poly) < 3 {
			return errors.Errorf("polygon %d needs at least 3 points, got %d", i, len(poly))
		}
	}

	if grid := data.Grid; grid != nil {
		if grid.TileSize <= 0 {
			return errors.Errorf("invalid grid tile size: %g", grid.TileSize)
		}
		if grid.Blocking == "" {
			return errors.New("grid needs at least one blocking tile rune")
		}
		for y, row := range grid.Rows {
			if len([]rune(row)) != len([]rune(grid.Rows[0])) {
				return errors.Errorf("grid width mismatch at row %d: expected %d, got %d",
					y, len([]rune(grid.Rows[0])), len([]rune(row)))
			}
		}
	}

	for i, light := range data.Lights {
		if light.Radius <= 0 {
			return errors.Errorf("light %d has invalid radius %g", i, light.Radius)
		}
		if light.Intensity < 0 || light.Intensity > 1 {
			return errors.Errorf("light %d intensity %g outside [0, 1]", i, light.Intensity)
		}
		if light.Color != "" && !validHexColor(light.Color) {
			return errors.Errorf("light %d has invalid colour %q: want RRGGBB", i, light.Color)
		}
	}

	return nil
}

// validHexColor accepts "RRGGBB" or "#RRGGBB".
func validHexColor(s string) bool {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 32)
	return err == nil
}

func (m *Map) buildSegments() []shadows.Segment {
	var segments []shadows.Segment

	if m.Data.Border {
		segments = append(segments, shadows.BorderSegments(m.Data.Width, m.Data.Height)...)
	}

	for _, seg := range m.Data.Segments {
		segments = append(segments, shadows.NewSegment(seg.A.Point(), seg.B.Point()))
	}

	for _, poly := range m.Data.Polygons {
		points := make([]shadows.Point, len(poly))
		for i, p := range poly {
			points[i] = p.Point()
		}
		segments = append(segments, shadows.PolygonSegments(points)...)
	}

	if m.Data.Grid != nil {
		segments = append(segments, shadows.CreateWallSegmentsFromGrid(m, m.Data.Grid.TileSize)...)
	}

	return segments
}

// Size returns the grid dimensions in tiles, or zero without a grid.
func (m *Map) Size() (width, height int) {
	if len(m.rows) == 0 {
		return 0, 0
	}
	return len(m.rows[0]), len(m.rows)
}

// GetTileAt returns the tile rune at the given grid coordinates
func (m *Map) GetTileAt(x, y int) (rune, error) {
	width, height := m.Size()
	if x < 0 || x >= width || y < 0 || y >= height {
		return 0, errors.Errorf("coordinates out of bounds: (%d, %d)", x, y)
	}
	return m.rows[y][x], nil
}

// BlocksSight returns whether the tile at the given coordinates blocks line of sight
func (m *Map) BlocksSight(x, y int) bool {
	tile, err := m.GetTileAt(x, y)
	if err != nil {
		return false
	}
	return strings.ContainsRune(m.Data.Grid.Blocking, tile)
}

// ObserverSpawn returns the initial observer position.
func (m *Map) ObserverSpawn() shadows.Point {
	return m.Data.Observer.Point()
}
