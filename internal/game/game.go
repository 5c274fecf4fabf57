// Package game is the interactive visibility viewer: it moves the observer,
// recomputes every light's visibility polygon each tick and draws the scene
// through the render abstraction.
package game

import (
	"log"

	"github.com/pkg/errors"

	"chosenoffset.com/sightline/internal/config"
	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/render/lighting"
	"chosenoffset.com/sightline/internal/scenescanner"
	"chosenoffset.com/sightline/internal/spatial"
	"chosenoffset.com/sightline/internal/world/maploader"
)

// observerMargin keeps the observer strictly inside the scene frame.
const observerMargin = 1.0

// Game holds all viewer state and logic.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Config       *config.Config
	Map          *maploader.Map
	Scene        shadows.Scene
	Index        *spatial.Index
	Observer     Observer
	Strategy     shadows.Strategy
	Polygon      shadows.Polygon // what the observer sees

	Renderer         render.Renderer
	InputMgr         render.InputManager
	WhiteImg         render.Image
	VisibilityShader render.Shader
	SceneTexture     render.Image
	MaskTexture      render.Image
	LightTexture     render.Image
	LightingManager  *lighting.Manager

	// Scenes the N key cycles through
	Scenes     []scenescanner.SceneEntry
	SceneIndex int

	// UI state
	ShowOutlines bool
	Messages     []Message

	cursorX, cursorY int
	lastErr          string
}

// NewGame wires a loaded scene, the config and a renderer into a viewer.
// shaderSrc may be nil, in which case the mask is drawn without a shader.
func NewGame(cfg *config.Config, m *maploader.Map, r render.Renderer, input render.InputManager, shaderSrc []byte) (*Game, error) {
	opts, err := cfg.BuilderOptions()
	if err != nil {
		return nil, err
	}

	g := &Game{
		ScreenWidth:  cfg.Window.Width,
		ScreenHeight: cfg.Window.Height,
		Config:       cfg,
		Strategy:     opts.Strategy,
		Renderer:     r,
		InputMgr:     input,
		ShowOutlines: cfg.Render.ShowOutlines,
		SceneIndex:   -1,
	}

	if shaderSrc != nil {
		g.VisibilityShader, err = r.CompileShader(shaderSrc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to compile visibility shader")
		}
	}

	lightColor, err := lighting.ParseHexColor(cfg.Render.LightColor)
	if err != nil {
		return nil, errors.Wrap(err, "render.light_color")
	}

	g.LightingManager = lighting.NewManager(nil)
	g.LightingManager.SetObserverLight(0, 0, cfg.Render.Falloff, 1.0, lightColor)

	g.WhiteImg = r.NewImage(1, 1)
	g.WhiteImg.Fill(whiteColor)

	g.cursorX, g.cursorY = input.GetCursorPosition()
	if err := g.LoadScene(m); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadScene replaces the current scene: the index, the static lights and the
// observer spawn all come from m. On error the current scene stays loaded.
func (g *Game) LoadScene(m *maploader.Map) error {
	var index *spatial.Index
	if g.Config.Visibility.UseIndex {
		var err error
		index, err = spatial.NewIndex(m.Scene.Segments)
		if err != nil {
			return errors.Wrap(err, "failed to index scene")
		}
	}

	lights, err := lighting.SceneLights(m.Data.Lights)
	if err != nil {
		return errors.Wrap(err, "failed to add scene lights")
	}

	if index != nil {
		log.Printf("Indexed %d segments", index.Len())
	}
	g.LightingManager.SetLights(lights)
	g.Map = m
	g.Scene = m.Scene
	g.Index = index
	g.Observer = Observer{Pos: m.ObserverSpawn(), Speed: 3.0}
	g.LightingManager.UpdateObserverPosition(g.Observer.Pos.X, g.Observer.Pos.Y)
	g.LightingManager.SetBuilder(g.builderFor(g.Strategy))
	g.recompute()
	return nil
}

// SetScenes gives the viewer a list to cycle through; current is the index
// of the loaded scene, or -1.
func (g *Game) SetScenes(scenes []scenescanner.SceneEntry, current int) {
	g.Scenes = scenes
	g.SceneIndex = current
}

// NextScene loads the scene after the current one. A scene that fails to
// load is reported and skipped over on the next press.
func (g *Game) NextScene() {
	if len(g.Scenes) == 0 {
		return
	}
	g.SceneIndex = (g.SceneIndex + 1) % len(g.Scenes)
	entry := g.Scenes[g.SceneIndex]

	m, err := maploader.LoadMap(entry.Path)
	if err == nil {
		err = g.LoadScene(m)
	}
	if err != nil {
		log.Printf("Failed to load scene %s: %v", entry.Path, err)
		g.ShowMessage("Cannot load " + entry.Name)
		return
	}
	g.ShowMessage("Scene: " + entry.Name)
}

// builderFor creates a builder for strategy from the configured options,
// attaching the spatial index when a view radius makes culling useful.
func (g *Game) builderFor(strategy shadows.Strategy) *shadows.Builder {
	opts, _ := g.Config.BuilderOptions() // validated in NewGame
	opts.Strategy = strategy
	if g.Index != nil && opts.MaxDistance > 0 {
		opts.Culler = g.Index
	}
	return shadows.NewBuilder(opts)
}

// Update handles input and recomputes the visibility polygons.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0
	g.updateMessages(dt)

	if g.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrTerminate
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyTab) {
		g.SetStrategy(nextStrategy(g.Strategy))
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyN) {
		g.NextScene()
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyF) {
		g.ShowOutlines = !g.ShowOutlines
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyL) {
		on := !g.LightingManager.IsObserverLightOn()
		g.LightingManager.EnableObserverLight(on)
		if on {
			g.ShowMessage("Observer light on")
		} else {
			g.ShowMessage("Observer light off")
		}
	}

	g.moveObserver()
	g.recompute()
	return nil
}

// moveObserver follows the cursor when it moved, otherwise WASD/arrows.
func (g *Game) moveObserver() {
	x, y := g.InputMgr.GetCursorPosition()
	if x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		g.SetObserver(shadows.Point{X: float64(x), Y: float64(y)})
		return
	}

	var dx, dy float64
	if g.InputMgr.IsKeyPressed(render.KeyW) || g.InputMgr.IsKeyPressed(render.KeyUp) {
		dy -= g.Observer.Speed
	}
	if g.InputMgr.IsKeyPressed(render.KeyS) || g.InputMgr.IsKeyPressed(render.KeyDown) {
		dy += g.Observer.Speed
	}
	if g.InputMgr.IsKeyPressed(render.KeyA) || g.InputMgr.IsKeyPressed(render.KeyLeft) {
		dx -= g.Observer.Speed
	}
	if g.InputMgr.IsKeyPressed(render.KeyD) || g.InputMgr.IsKeyPressed(render.KeyRight) {
		dx += g.Observer.Speed
	}
	if dx != 0 || dy != 0 {
		g.SetObserver(g.Observer.Pos.Add(shadows.Point{X: dx, Y: dy}))
	}
}

// SetObserver moves the observer, clamped to the scene frame.
func (g *Game) SetObserver(p shadows.Point) {
	w, h := g.Map.Data.Width, g.Map.Data.Height
	p.X = max(observerMargin, min(p.X, w-observerMargin))
	p.Y = max(observerMargin, min(p.Y, h-observerMargin))
	g.Observer.Pos = p
	g.LightingManager.UpdateObserverPosition(p.X, p.Y)
}

// SetStrategy switches how polygons are computed.
func (g *Game) SetStrategy(s shadows.Strategy) {
	g.Strategy = s
	g.LightingManager.SetBuilder(g.builderFor(s))
	g.ShowMessage("Strategy: " + s.String())
}

func nextStrategy(s shadows.Strategy) shadows.Strategy {
	if s == shadows.StrategyRayCast {
		return shadows.StrategySweep
	}
	return shadows.StrategyRayCast
}

// recompute refreshes the observer's polygon and all light polygons. A failed
// frame keeps the previous polygons and logs the error once.
func (g *Game) recompute() {
	lit, err := g.LightingManager.Update(g.Scene)
	var poly shadows.Polygon
	if err == nil {
		if g.LightingManager.IsObserverLightOn() && len(lit) > 0 {
			poly = lit[0].Polygon
		} else {
			// The light is off but the observer still sees.
			poly, err = g.LightingManager.Builder().Build(g.Scene, g.Observer.Pos)
		}
	}
	if err != nil {
		if msg := err.Error(); msg != g.lastErr {
			log.Printf("Visibility failed: %v", err)
			g.lastErr = msg
		}
		return
	}

	g.lastErr = ""
	g.Polygon = poly
}

// Layout returns the viewer's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	log.Printf("Message: %s", text)
}
