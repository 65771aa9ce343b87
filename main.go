package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"

	"github.com/milk9111/slotengine/prefabs"
)

func main() {
	config := flag.String("config", "engine.yaml", "engine spec in prefabs/")
	debug := flag.Bool("debug", false, "draw colliders and grid cells (toggle with F3)")
	watch := flag.Bool("watch", true, "reload scripts, prefabs and textures when they change on disk")
	profileMode := flag.String("profile", "", "write a profile to the working directory: cpu, mem or trace")
	flag.Parse()

	if p := startProfile(*profileMode); p != nil {
		defer p.Stop()
	}

	spec, err := prefabs.LoadEngineSpec(*config)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle(spec.Title)
	ebiten.SetWindowSize(int(float64(spec.Window.Width)*spec.Window.Scale), int(float64(spec.Window.Height)*spec.Window.Scale))
	if spec.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(spec.TickRate)

	game, err := NewGame(spec, *debug, *watch)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Printf("run: %v", err)
	}
}

func startProfile(mode string) interface{ Stop() } {
	switch mode {
	case "":
		return nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	case "trace":
		return profile.Start(profile.TraceProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		log.Printf("profile: unknown mode %q", mode)
		return nil
	}
}
