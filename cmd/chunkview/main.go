// Terminal view of the streamed world: one character per chunk, arrow keys
// move the window.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/chunkgen"
	"streamworld/internal/termview"
	"streamworld/internal/world"
)

var (
	configPath = flag.String("config", "world.json", "World config file")
	logPath    = flag.String("log", "", "Write logs to this file instead of discarding them")
)

func main() {
	flag.Parse()

	cfg, err := world.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The screen owns the terminal, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := log.New(out, "", log.LstdFlags)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	flags := world.NewFlagStore()
	w := world.New(cfg, chunkgen.NewGenerator(cfg.Seed, cfg.ChunkSize, flags, logger), flags, logger)
	loop := world.NewLoop(w, logger)

	var pos rl.Vector3
	w.SetCameraPosition(pos)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(cfg.TickDuration())
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				step := cfg.ChunkSize
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return
				case ev.Key() == tcell.KeyUp:
					pos.Y += step
				case ev.Key() == tcell.KeyDown:
					pos.Y -= step
				case ev.Key() == tcell.KeyLeft:
					pos.X -= step
				case ev.Key() == tcell.KeyRight:
					pos.X += step
				}
				loop.SetCameraPosition(pos)
			case *tcell.EventResize:
				screen.Sync()
			}
		case now := <-ticker.C:
			loop.Advance(now.Sub(last))
			last = now

			screen.Clear()
			termview.Draw(screen, w)
			_, h := screen.Size()
			termview.DrawText(screen, 0, h-1,
				fmt.Sprintf(" tick %d  arrows move, q quits", loop.TickCount()), tcell.StyleDefault)
			screen.Show()
		}
	}
}
