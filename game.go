package main

import (
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/slotengine/assets"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/ecs/render"
	"github.com/milk9111/slotengine/ecs/system"
	"github.com/milk9111/slotengine/engine"
	"github.com/milk9111/slotengine/prefabs"
	"github.com/milk9111/slotengine/script"
)

type Game struct {
	spec      *prefabs.EngineSpec
	world     *engine.World
	host      *script.TengoHost
	presenter *render.ScreenPresenter
	watcher   *prefabs.Watcher

	keys  []ebiten.Key
	clear color.Color
	debug bool
}

func NewGame(spec *prefabs.EngineSpec, debug, watch bool) (*Game, error) {
	world := engine.NewWorld(engine.Options{
		CellSize: spec.CellSize,
		Loader:   render.NewLoader(assets.Overlay{Dir: assets.Dir}, render.EbitenUpload),
	})
	host := script.NewTengoHost(world)
	world.SetHost(host)

	g := &Game{
		spec:      spec,
		world:     world,
		host:      host,
		presenter: render.NewScreenPresenter(nil),
		clear:     color.Black,
		debug:     debug,
	}
	if spec.ClearColor != nil {
		g.clear = spec.ClearColor.Color
	}

	bindAliases(world.Inputs, spec.Inputs)

	if spec.Script != "" {
		if err := g.loadScript(spec.Script); err != nil {
			world.Close()
			return nil, err
		}
	}
	if _, err := world.Boot(spec); err != nil {
		world.Close()
		return nil, err
	}

	if watch {
		g.startWatcher()
	}
	return g, nil
}

// bindAliases resolves key names to ebiten key codes.
func bindAliases(inputs *system.InputSystem, aliases []prefabs.InputAliasSpec) {
	for _, a := range aliases {
		param := a.Param
		if a.Key != "" {
			var key ebiten.Key
			if err := key.UnmarshalText([]byte(a.Key)); err != nil {
				log.Printf("input: alias %s: %v", a.Name, err)
				continue
			}
			param = int64(key)
		}
		inputs.Bind(a.Alias(param))
	}
}

func (g *Game) loadScript(name string) error {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return err
	}
	return g.host.Load(filepath.Base(name), src)
}

func (g *Game) startWatcher() {
	var dirs []string
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts"), assets.Dir} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return
	}
	w, err := prefabs.Watch(prefabs.WatchOptions{
		Dirs:       dirs,
		Extensions: append([]string{".png"}, prefabs.DefaultExtensions...),
	})
	if err != nil {
		log.Printf("watch: %v", err)
		return
	}
	g.watcher = w
}

func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	if err := g.watcher.DrainErrors(); err != nil {
		log.Printf("watch: %v", err)
	}
	for _, path := range g.watcher.Drain() {
		name := filepath.Base(path)
		switch {
		case prefabs.IsScriptFile(path):
			if err := g.loadScript(name); err != nil {
				log.Printf("reload: %v", err)
			}
		case prefabs.IsSpecFile(path):
			g.world.InvalidatePrefabs()
			log.Printf("reload: %s", name)
		case strings.EqualFold(filepath.Ext(path), ".png"):
			if err := g.world.Textures.Reload(name); err != nil {
				log.Printf("reload: %v", err)
			}
		}
	}
}

func (g *Game) Update() error {
	g.reload()

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.world.Inputs.Push(component.InputEvent{Name: system.EventKeyDown, Param: int64(k)})
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.world.Inputs.Push(component.InputEvent{Name: system.EventKeyUp, Param: int64(k)})
	}

	g.world.Update(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.clear)
	g.presenter.Reset(screen)
	g.world.Draw(g.presenter)

	if g.debug {
		system.DrawCollisionDebug(screen, g.world.Collisions, g.world.Physics, g.world.Cameras)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.spec.Window.Width, g.spec.Window.Height
}

func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			log.Printf("watch: %v", err)
		}
	}
	g.world.Close()
}
