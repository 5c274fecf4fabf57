// Package lighting turns visibility polygons into light fans: it keeps the
// light sources of a scene, recomputes what each one can see, and builds the
// triangle meshes the renderer draws.
package lighting

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/world/maploader"
)

// maxFanVertices is the largest mesh a uint16 index can address.
const maxFanVertices = math.MaxUint16 + 1

// LightSource represents a single light source in the scene
type LightSource struct {
	X         float64     // World X position (in pixels)
	Y         float64     // World Y position (in pixels)
	Radius    float64     // Light radius (in pixels)
	Intensity float64     // Light intensity (0.0 to 1.0)
	Color     color.NRGBA // Light color
}

// Position returns the light's position as a point.
func (l LightSource) Position() shadows.Point {
	return shadows.Point{X: l.X, Y: l.Y}
}

// Lit is a light together with the region it illuminates.
type Lit struct {
	Light   LightSource
	Polygon shadows.Polygon
}

// Manager handles all light sources in the scene
type Manager struct {
	builder       *shadows.Builder
	lights        []LightSource
	ambientLight  float64 // Global ambient light level (0.0 = pitch black, 1.0 = fully lit)
	observerLight *LightSource
	observerOn    bool
	lit           []Lit
}

// NewManager creates a lighting manager that computes polygons with builder.
func NewManager(builder *shadows.Builder) *Manager {
	return &Manager{
		builder:      builder,
		ambientLight: 0.15,
		observerOn:   true,
	}
}

// SetBuilder swaps the builder, e.g. after the strategy changed.
func (m *Manager) SetBuilder(builder *shadows.Builder) {
	m.builder = builder
}

// Builder returns the builder the manager computes polygons with.
func (m *Manager) Builder() *shadows.Builder {
	return m.builder
}

// SetAmbientLight sets the global ambient light level
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = level
}

// GetAmbientLight returns the current ambient light level
func (m *Manager) GetAmbientLight() float64 {
	return m.ambientLight
}

// SetObserverLight configures the light carried by the observer
func (m *Manager) SetObserverLight(x, y, radius, intensity float64, col color.NRGBA) {
	if m.observerLight == nil {
		m.observerLight = &LightSource{}
	}
	m.observerLight.X = x
	m.observerLight.Y = y
	m.observerLight.Radius = radius
	m.observerLight.Intensity = intensity
	m.observerLight.Color = col
}

// EnableObserverLight turns the observer's light on or off
func (m *Manager) EnableObserverLight(enabled bool) {
	m.observerOn = enabled
}

// IsObserverLightOn returns whether the observer's light is currently on
func (m *Manager) IsObserverLightOn() bool {
	return m.observerOn
}

// UpdateObserverPosition moves the observer's light (called each frame)
func (m *Manager) UpdateObserverPosition(x, y float64) {
	if m.observerLight != nil {
		m.observerLight.X = x
		m.observerLight.Y = y
	}
}

// AddLight adds a static light source.
func (m *Manager) AddLight(light LightSource) {
	m.lights = append(m.lights, light)
}

// SceneLights converts the lights declared in a scene file. Lights without a
// colour are warm white. Nothing is returned unless every light parses.
func SceneLights(lights []maploader.LightData) ([]LightSource, error) {
	sources := make([]LightSource, 0, len(lights))
	for i, data := range lights {
		lightColor := color.NRGBA{255, 200, 100, 255} // Warm torch light
		if data.Color != "" {
			c, err := ParseHexColor(data.Color)
			if err != nil {
				return nil, errors.Wrapf(err, "light %d", i)
			}
			lightColor = c
		}

		sources = append(sources, LightSource{
			X:         data.X,
			Y:         data.Y,
			Radius:    data.Radius,
			Intensity: data.Intensity,
			Color:     lightColor,
		})
	}
	return sources, nil
}

// AddSceneLights adds the static lights declared in a scene file. On error
// the manager is left untouched.
func (m *Manager) AddSceneLights(lights []maploader.LightData) error {
	sources, err := SceneLights(lights)
	if err != nil {
		return err
	}
	m.lights = append(m.lights, sources...)
	return nil
}

// SetLights replaces all static lights, e.g. when switching scenes.
func (m *Manager) SetLights(lights []LightSource) {
	m.lights = append([]LightSource(nil), lights...)
	m.lit = nil
}

// ClearLights removes all static lights (called when loading a new scene)
func (m *Manager) ClearLights() {
	m.lights = nil
	m.lit = nil
}

// GetAllLights returns all active light sources, the observer's first.
func (m *Manager) GetAllLights() []LightSource {
	lights := make([]LightSource, 0, len(m.lights)+1)
	if m.observerOn && m.observerLight != nil {
		lights = append(lights, *m.observerLight)
	}
	return append(lights, m.lights...)
}

// Update recomputes the visibility polygon of every active light within
// scene. Lights sitting on invalid positions are reported, not skipped.
func (m *Manager) Update(scene shadows.Scene) ([]Lit, error) {
	lights := m.GetAllLights()
	lit := make([]Lit, 0, len(lights))
	for i, light := range lights {
		poly, err := m.builder.Build(scene, light.Position())
		if err != nil {
			return nil, errors.Wrapf(err, "light %d at (%.1f, %.1f)", i, light.X, light.Y)
		}
		lit = append(lit, Lit{Light: light, Polygon: poly})
	}
	m.lit = lit
	return lit, nil
}

// Lit returns the result of the last Update.
func (m *Manager) Lit() []Lit {
	return m.lit
}

// FanMesh triangulates a visibility polygon as a fan around its observer.
// Vertex 0 is the observer, vertices 1..n are the ring points in order, and
// triangle i is (0, i+1, i+2). All vertices take clr and sample the source
// image at (0.5, 0.5), so a 1x1 white image gives a flat fill.
func FanMesh(poly shadows.Polygon, clr color.Color) ([]render.Vertex, []uint16, error) {
	ring := poly.Points
	if len(ring) < 2 {
		return nil, nil, nil
	}
	if len(ring)+1 > maxFanVertices {
		return nil, nil, errors.Errorf("fan of %d points exceeds %d vertices", len(ring), maxFanVertices)
	}

	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	r, g, b, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	vertex := func(p shadows.Point) render.Vertex {
		return render.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: r,
			ColorG: g,
			ColorB: b,
			ColorA: a,
		}
	}

	vertices := make([]render.Vertex, 0, len(ring)+1)
	vertices = append(vertices, vertex(poly.Observer))
	for _, p := range ring {
		vertices = append(vertices, vertex(p))
	}

	indices := make([]uint16, 0, 3*(len(ring)-1))
	for i := 0; i < len(ring)-1; i++ {
		indices = append(indices, 0, uint16(i+1), uint16(i+2))
	}

	return vertices, indices, nil
}

// LightMesh is FanMesh for a light: colour scaled by intensity, with the alpha
// of each ring vertex fading linearly to zero at the light's radius.
func LightMesh(l Lit) ([]render.Vertex, []uint16, error) {
	c := l.Light.Color
	c.A = uint8(math.Round(255 * clamp01(l.Light.Intensity)))

	vertices, indices, err := FanMesh(l.Polygon, c)
	if err != nil || l.Light.Radius <= 0 {
		return vertices, indices, err
	}

	center := l.Light.Position()
	for i := 1; i < len(vertices); i++ {
		p := shadows.Point{X: float64(vertices[i].DstX), Y: float64(vertices[i].DstY)}
		fade := 1 - shadows.Distance(center, p)/l.Light.Radius
		vertices[i].ColorA *= float32(clamp01(fade))
	}
	return vertices, indices, nil
}

// ParseHexColor parses "RRGGBB" or "#RRGGBB" into an opaque colour.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, errors.Errorf("invalid colour %q: want RRGGBB", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Errorf("invalid colour %q: want RRGGBB", s)
	}
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
