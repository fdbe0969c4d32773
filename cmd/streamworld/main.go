package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"streamworld/internal/assets"
	"streamworld/internal/game"
	"streamworld/internal/world"
)

var (
	configPath  = flag.String("config", "world.json", "World config file")
	palettePath = flag.String("palette", "palette.json", "Viewer palette file")
	soundPath   = flag.String("monster-sound", "", "Looping sound attached to monsters")
)

func main() {
	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}
	flag.Parse()

	cfg, err := world.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	palette, err := assets.LoadPalette(*palettePath)
	if err != nil {
		log.Fatalf("Failed to load palette: %v", err)
	}

	g := game.New(cfg, palette, *soundPath, log.Default())
	g.Run()
}
