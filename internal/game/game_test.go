package game

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/sightline/internal/config"
	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/scenescanner"
	"chosenoffset.com/sightline/internal/world/maploader"
)

type fakeImage struct {
	w, h        int
	triangles   int
	additive    int
	shaderDraws []*render.DrawRectShaderOptions
	imageDraws  int
	disposed    bool
}

func (i *fakeImage) Bounds() image.Rectangle { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int) { return i.w, i.h }
func (i *fakeImage) Fill(color.Color) {}
func (i *fakeImage) Clear() {}
func (i *fakeImage) Dispose() { i.disposed = true }
func (i *fakeImage) DrawImage(render.Image, *render.DrawImageOptions) { i.imageDraws++ }

func (i *fakeImage) DrawTriangles(vertices []render.Vertex, indices []uint16, _ render.Image, opts *render.DrawTrianglesOptions) {
	i.triangles += len(indices) / 3
	if opts != nil && opts.Additive {
		i.additive++
	}
}

func (i *fakeImage) DrawRectShader(_, _ int, _ render.Shader, opts *render.DrawRectShaderOptions) {
	i.shaderDraws = append(i.shaderDraws, opts)
}

type fakeShader struct{}

func (fakeShader) Dispose() {}

type fakeRenderer struct {
	lines   int
	texts   []string
	compile error
}

func (r *fakeRenderer) NewImage(w, h int) render.Image { return &fakeImage{w: w, h: h} }
func (r *fakeRenderer) FillCircle(render.Image, float32, float32, float32, color.Color) {}
func (r *fakeRenderer) StrokeCircle(render.Image, float32, float32, float32, float32, color.Color) {
}

func (r *fakeRenderer) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {
	r.lines++
}

func (r *fakeRenderer) DrawText(_ render.Image, text string, _, _ int, _ color.Color, _ float64) {
	r.texts = append(r.texts, text)
}

func (r *fakeRenderer) CompileShader([]byte) (render.Shader, error) {
	if r.compile != nil {
		return nil, r.compile
	}
	return fakeShader{}, nil
}

type fakeInput struct {
	pressed map[render.Key]bool
	just    map[render.Key]bool
	x, y    int
}

func newFakeInput() *fakeInput {
	return &fakeInput{pressed: map[render.Key]bool{}, just: map[render.Key]bool{}}
}

func (in *fakeInput) IsKeyPressed(k render.Key) bool { return in.pressed[k] }
func (in *fakeInput) IsKeyJustPressed(k render.Key) bool { return in.just[k] }
func (in *fakeInput) GetCursorPosition() (int, int) { return in.x, in.y }

// tap presses k for a single Update.
func (in *fakeInput) tap(t *testing.T, g *Game, k render.Key) error {
	t.Helper()
	in.just[k] = true
	defer delete(in.just, k)
	return g.Update()
}

const roomScene = `{
	"name": "room",
	"width": 200, "height": 100,
	"border": true,
	"observer": {"x": 30, "y": 50},
	"polygons": [[{"x": 90, "y": 40}, {"x": 110, "y": 40}, {"x": 110, "y": 60}, {"x": 90, "y": 60}]],
	"lights": [{"x": 180, "y": 20, "radius": 80, "intensity": 0.6}]
}`

func newTestGame(t *testing.T, cfg *config.Config, shader []byte) (*Game, *fakeRenderer, *fakeInput) {
	t.Helper()
	m, err := maploader.ParseMap([]byte(roomScene))
	require.NoError(t, err)

	r := &fakeRenderer{}
	in := newFakeInput()
	g, err := NewGame(cfg, m, r, in, shader)
	require.NoError(t, err)
	return g, r, in
}

func TestNewGameComputesInitialPolygon(t *testing.T) {
	g, _, _ := newTestGame(t, config.DefaultConfig(), nil)

	assert.Equal(t, shadows.Point{X: 30, Y: 50}, g.Polygon.Observer)
	assert.True(t, g.Polygon.Closed())
	assert.Equal(t, 0, g.Polygon.Misses)
	assert.False(t, g.Polygon.Contains(shadows.Point{X: 150, Y: 50}), "behind the box")
	assert.Len(t, g.LightingManager.Lit(), 2)
}

func TestCursorMovesObserver(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)

	in.x, in.y = 150, 20
	require.NoError(t, g.Update())
	assert.Equal(t, shadows.Point{X: 150, Y: 20}, g.Observer.Pos)
	assert.Equal(t, g.Observer.Pos, g.Polygon.Observer)

	// Off-screen cursors are clamped inside the frame.
	in.x, in.y = -40, 500
	require.NoError(t, g.Update())
	assert.Equal(t, shadows.Point{X: 1, Y: 99}, g.Observer.Pos)
}

func TestKeyboardMovesObserver(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)

	in.pressed[render.KeyD] = true
	in.pressed[render.KeyUp] = true
	require.NoError(t, g.Update())
	assert.Equal(t, shadows.Point{X: 33, Y: 47}, g.Observer.Pos)
}

func TestTabSwitchesStrategy(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)
	rayArea := g.Polygon.Area()

	require.NoError(t, in.tap(t, g, render.KeyTab))
	assert.Equal(t, shadows.StrategySweep, g.Strategy)
	assert.Equal(t, shadows.StrategySweep, g.LightingManager.Builder().Options().Strategy)
	assert.InEpsilon(t, rayArea, g.Polygon.Area(), 5e-3)
	require.Len(t, g.Messages, 1)
	assert.Contains(t, g.Messages[0].Text, "sweep")

	require.NoError(t, in.tap(t, g, render.KeyTab))
	assert.Equal(t, shadows.StrategyRayCast, g.Strategy)
}

func TestEscapeTerminates(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)
	err := in.tap(t, g, render.KeyEscape)
	assert.True(t, errors.Is(err, render.ErrTerminate))
}

func TestLightToggle(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)

	lit := g.Polygon

	require.NoError(t, in.tap(t, g, render.KeyL))
	assert.False(t, g.LightingManager.IsObserverLightOn())
	assert.Len(t, g.LightingManager.Lit(), 1)
	// Only the light goes out: the observer's view is still computed.
	assert.Equal(t, lit.Points, g.Polygon.Points)

	in.x, in.y = 150, 20
	require.NoError(t, g.Update())
	assert.Equal(t, shadows.Point{X: 150, Y: 20}, g.Polygon.Observer)
	assert.True(t, g.Polygon.Closed())

	screen := &fakeImage{w: 200, h: 100}
	g.Draw(screen)
	assert.Zero(t, g.MaskTexture.(*fakeImage).triangles)

	require.NoError(t, in.tap(t, g, render.KeyL))
	assert.True(t, g.LightingManager.IsObserverLightOn())
	assert.Len(t, g.LightingManager.Lit(), 2)
}

func TestMessagesExpire(t *testing.T) {
	g, _, _ := newTestGame(t, config.DefaultConfig(), nil)
	g.ShowMessage("hello")

	for i := 0; i < 200; i++ {
		require.NoError(t, g.Update())
	}
	assert.Empty(t, g.Messages)
}

func TestDrawWithShader(t *testing.T) {
	cfg := config.DefaultConfig()
	g, r, _ := newTestGame(t, cfg, []byte("shader"))
	require.NotNil(t, g.VisibilityShader)

	screen := &fakeImage{w: 200, h: 100}
	g.Draw(screen)

	require.Len(t, screen.shaderDraws, 1)
	opts := screen.shaderDraws[0]
	assert.Equal(t, []float32{30, 50}, opts.Uniforms["Observer"])
	assert.Equal(t, float32(cfg.Render.Falloff), opts.Uniforms["Radius"])
	assert.Same(t, g.MaskTexture, opts.Images[1])

	mask := g.MaskTexture.(*fakeImage)
	assert.Equal(t, len(g.Polygon.Points)-1, mask.triangles)
	assert.Equal(t, 1, g.LightTexture.(*fakeImage).additive)

	assert.Equal(t, len(g.Scene.Segments), r.lines)
	require.NotEmpty(t, r.texts)
	assert.Contains(t, r.texts[0], "raycast")
}

func TestDrawWithoutShader(t *testing.T) {
	g, r, in := newTestGame(t, config.DefaultConfig(), nil)
	require.NoError(t, in.tap(t, g, render.KeyF))
	assert.False(t, g.ShowOutlines)

	screen := &fakeImage{w: 200, h: 100}
	g.Draw(screen)

	assert.Empty(t, screen.shaderDraws)
	assert.Equal(t, 2, screen.imageDraws)
	assert.Positive(t, screen.triangles)
	assert.Zero(t, r.lines)
}

func TestDrawResizesTextures(t *testing.T) {
	g, _, _ := newTestGame(t, config.DefaultConfig(), nil)

	g.Draw(&fakeImage{w: 200, h: 100})
	old := g.SceneTexture.(*fakeImage)

	g.Draw(&fakeImage{w: 400, h: 200})
	assert.True(t, old.disposed)
	w, h := g.SceneTexture.Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 200, h)
}

func TestNewGameErrors(t *testing.T) {
	m, err := maploader.ParseMap([]byte(roomScene))
	require.NoError(t, err)

	_, err = NewGame(config.DefaultConfig(), m, &fakeRenderer{compile: errors.New("bad kage")}, newFakeInput(), []byte("x"))
	assert.ErrorContains(t, err, "bad kage")

	cfg := config.DefaultConfig()
	cfg.Render.LightColor = "nope"
	_, err = NewGame(cfg, m, &fakeRenderer{}, newFakeInput(), nil)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Visibility.Strategy = "bogus"
	_, err = NewGame(cfg, m, &fakeRenderer{}, newFakeInput(), nil)
	assert.Error(t, err)
}

func TestIndexedViewer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Visibility.UseIndex = true
	cfg.Visibility.MaxDistance = 60
	cfg.Visibility.FillMisses = true

	g, _, _ := newTestGame(t, cfg, nil)
	require.NotNil(t, g.Index)
	assert.NotNil(t, g.LightingManager.Builder().Options().Culler)
	assert.True(t, g.Polygon.Contains(shadows.Point{X: 50, Y: 50}))
}

func TestNextSceneCycles(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)

	scenes, err := scenescanner.ScanScenes(filepath.Join("..", "..", "data", "scenes"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(scenes), 2)
	g.SetScenes(scenes, -1)

	require.NoError(t, in.tap(t, g, render.KeyN))
	assert.Equal(t, 0, g.SceneIndex)
	assert.Equal(t, scenes[0].Name, g.Map.Data.Name)
	assert.Equal(t, g.Map.ObserverSpawn(), g.Observer.Pos)
	assert.Equal(t, g.Map.Scene.Segments, g.Scene.Segments)
	assert.Len(t, g.LightingManager.GetAllLights(), len(g.Map.Data.Lights)+1)
	assert.Equal(t, 0, g.Polygon.Misses)

	for range scenes {
		require.NoError(t, in.tap(t, g, render.KeyN))
	}
	assert.Equal(t, 0, g.SceneIndex, "wraps around")
}

func TestLoadSceneBadLightKeepsScene(t *testing.T) {
	g, _, _ := newTestGame(t, config.DefaultConfig(), nil)
	lights := g.LightingManager.GetAllLights()
	poly := g.Polygon

	next, err := maploader.ParseMap([]byte(`{
		"name": "next", "width": 50, "height": 50, "border": true,
		"lights": [{"x": 5, "y": 5, "radius": 10, "intensity": 1}, {"x": 9, "y": 9, "radius": 10, "intensity": 1}]
	}`))
	require.NoError(t, err)
	next.Data.Lights[1].Color = "zzzzzz"

	assert.ErrorContains(t, g.LoadScene(next), "zzzzzz")
	assert.Equal(t, "room", g.Map.Data.Name)
	assert.Equal(t, lights, g.LightingManager.GetAllLights())

	require.NoError(t, g.Update())
	assert.Equal(t, poly.Points, g.Polygon.Points)
}

func TestNextSceneBadFile(t *testing.T) {
	g, _, in := newTestGame(t, config.DefaultConfig(), nil)
	g.SetScenes([]scenescanner.SceneEntry{{Name: "gone", Path: filepath.Join(t.TempDir(), "gone.json")}}, -1)

	require.NoError(t, in.tap(t, g, render.KeyN))
	assert.Equal(t, "room", g.Map.Data.Name)
	require.NotEmpty(t, g.Messages)
	assert.Contains(t, g.Messages[len(g.Messages)-1].Text, "gone")
}
