package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"chosenoffset.com/sightline/internal/config"
	"chosenoffset.com/sightline/internal/game"
	ebitenrender "chosenoffset.com/sightline/internal/render/ebiten"
	"chosenoffset.com/sightline/internal/scenescanner"
	"chosenoffset.com/sightline/internal/world/maploader"
)

func main() {
	scenePath := flag.String("scene", "data/scenes/demo.json", "scene file to view")
	configPath := flag.String("config", "sightline.json", "config file (defaults when missing)")
	strategy := flag.String("strategy", "", "override visibility.strategy: raycast or sweep")
	radius := flag.Float64("radius", -1, "override visibility.max_distance (0 = unbounded)")
	useIndex := flag.Bool("index", false, "cull segments with the R-tree when a radius is set")
	shaderPath := flag.String("shader", "", "override render.shader_path")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *strategy != "" {
		cfg.Visibility.Strategy = *strategy
	}
	if *radius >= 0 {
		cfg.Visibility.MaxDistance = *radius
		cfg.Visibility.FillMisses = *radius > 0
	}
	if *useIndex {
		cfg.Visibility.UseIndex = true
	}
	if *shaderPath != "" {
		cfg.Render.ShaderPath = *shaderPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	log.Printf("Loading scene %s", *scenePath)
	sceneMap, err := maploader.LoadMap(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	log.Printf("Scene %q: %d segments, %d lights", sceneMap.Data.Name, len(sceneMap.Scene.Segments), len(sceneMap.Data.Lights))

	// A missing shader is not fatal: the mask is drawn untextured instead.
	shaderSrc, err := os.ReadFile(cfg.Render.ShaderPath)
	if err != nil {
		log.Printf("Warning: Failed to load visibility shader: %v", err)
		shaderSrc = nil
	}

	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	viewer, err := game.NewGame(cfg, sceneMap, renderer, inputMgr, shaderSrc)
	if err != nil {
		log.Fatalf("Failed to start viewer: %v", err)
	}

	// Scan the scene's directory so N can cycle through its neighbours
	scenes, err := scenescanner.ScanScenes(filepath.Dir(*scenePath))
	if err != nil {
		log.Printf("Warning: Failed to scan scenes: %v", err)
	}
	viewer.SetScenes(scenes, scenescanner.Find(scenes, *scenePath))
	log.Printf("Found %d scenes", len(scenes))

	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title + " - " + sceneMap.Data.Name)
	engine.SetWindowResizable(true)

	log.Printf("Starting viewer (%s)", viewer.Strategy)
	if err := engine.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
