package game

import (
	"fmt"
	"image/color"
	"log"

	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/render/lighting"
)

var (
	whiteColor      = color.NRGBA{255, 255, 255, 255}
	backgroundColor = color.NRGBA{52, 58, 70, 255}
	outlineColor    = color.NRGBA{230, 230, 240, 255}
	observerColor   = color.NRGBA{255, 255, 100, 255}
	lightMarker     = color.NRGBA{255, 180, 80, 255}
)

// Draw renders the viewer to the screen.
func (g *Game) Draw(screen render.Image) {
	w, h := screen.Size()
	g.SceneTexture = g.ensureTexture(g.SceneTexture, w, h)
	g.MaskTexture = g.ensureTexture(g.MaskTexture, w, h)
	g.LightTexture = g.ensureTexture(g.LightTexture, w, h)

	// Step 1: the unlit scene
	g.SceneTexture.Fill(backgroundColor)
	for _, light := range g.LightingManager.GetAllLights()[g.observerLights():] {
		g.Renderer.FillCircle(g.SceneTexture, float32(light.X), float32(light.Y), 4, lightMarker)
	}

	// Step 2: what the observer sees, and what the static lights reach
	g.drawMask()
	g.drawLightMap()

	// Step 3: compose
	g.applyVisibilityShader(screen)

	// Step 4: overlays, unaffected by shading
	if g.ShowOutlines {
		g.drawOutlines(screen)
	}
	g.Renderer.FillCircle(screen, float32(g.Observer.Pos.X), float32(g.Observer.Pos.Y), 5, observerColor)
	g.drawUI(screen)
}

func (g *Game) ensureTexture(img render.Image, w, h int) render.Image {
	if img != nil && !needsResize(img, w, h) {
		return img
	}
	if img != nil {
		img.Dispose()
	}
	return g.Renderer.NewImage(w, h)
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

// observerLights is 1 when the first light of the manager is the observer's.
func (g *Game) observerLights() int {
	if g.LightingManager.IsObserverLightOn() {
		return 1
	}
	return 0
}

func (g *Game) drawMask() {
	g.MaskTexture.Clear()
	if !g.LightingManager.IsObserverLightOn() {
		return
	}

	vertices, indices, err := lighting.FanMesh(g.Polygon, whiteColor)
	if err != nil {
		log.Printf("Skipping visibility mask: %v", err)
		return
	}
	if len(indices) == 0 {
		return
	}
	g.MaskTexture.DrawTriangles(vertices, indices, g.WhiteImg, &render.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) drawLightMap() {
	g.LightTexture.Clear()

	lit := g.LightingManager.Lit()
	for _, l := range lit[min(g.observerLights(), len(lit)):] {
		vertices, indices, err := lighting.LightMesh(l)
		if err != nil {
			log.Printf("Skipping light at (%.0f, %.0f): %v", l.Light.X, l.Light.Y, err)
			continue
		}
		if len(indices) == 0 {
			continue
		}
		g.LightTexture.DrawTriangles(vertices, indices, g.WhiteImg, &render.DrawTrianglesOptions{
			AntiAlias: true,
			Additive:  true,
		})
	}
}

func (g *Game) applyVisibilityShader(screen render.Image) {
	if g.VisibilityShader == nil {
		g.drawWithoutShader(screen)
		return
	}

	c, _ := lighting.ParseHexColor(g.Config.Render.LightColor) // validated in NewGame
	w, h := screen.Size()
	opts := &render.DrawRectShaderOptions{
		Uniforms: map[string]interface{}{
			"Observer":   []float32{float32(g.Observer.Pos.X), float32(g.Observer.Pos.Y)},
			"Radius":     float32(g.Config.Render.Falloff),
			"Darkness":   float32(g.Config.Render.Darkness),
			"LightColor": []float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255},
		},
	}
	opts.Images[0] = g.SceneTexture
	opts.Images[1] = g.MaskTexture
	opts.Images[2] = g.LightTexture

	screen.DrawRectShader(w, h, g.VisibilityShader, opts)
}

// drawWithoutShader stacks the scene, the light map and a translucent fan.
func (g *Game) drawWithoutShader(screen render.Image) {
	screen.DrawImage(g.SceneTexture, nil)
	screen.DrawImage(g.LightTexture, &render.DrawImageOptions{Additive: true})

	if !g.LightingManager.IsObserverLightOn() {
		return
	}
	tint := color.NRGBA{255, 240, 200, 90}
	vertices, indices, err := lighting.FanMesh(g.Polygon, tint)
	if err != nil || len(indices) == 0 {
		return
	}
	screen.DrawTriangles(vertices, indices, g.WhiteImg, &render.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) drawOutlines(screen render.Image) {
	for _, seg := range g.Scene.Segments {
		g.Renderer.StrokeLine(screen,
			float32(seg.A.X), float32(seg.A.Y), float32(seg.B.X), float32(seg.B.Y),
			1.5, outlineColor)
	}
}

func (g *Game) drawUI(screen render.Image) {
	status := fmt.Sprintf("%s | %d points | %d misses | Tab: strategy  N: scene  F: outlines  L: light",
		g.Strategy, len(g.Polygon.Points), g.Polygon.Misses)
	g.Renderer.DrawText(screen, status, 8, 8, whiteColor, 1.0)

	// Draw on-screen messages
	y := 30.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 8, int(y), color.NRGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}
