package prefabs

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/milk9111/slotengine/common"
	"gopkg.in/yaml.v3"
)

func TestYAMLColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    color.Color
		wantErr bool
	}{
		{"hex", `"#1d2433"`, color.NRGBA{R: 0x1d, G: 0x24, B: 0x33, A: 0xff}, false},
		{"hex_alpha", `"#ff000080"`, color.NRGBA{R: 0xff, A: 0x80}, false},
		{"no_hash", `"00ff00"`, color.NRGBA{G: 0xff, A: 0xff}, false},
		{"name", `CornflowerBlue`, color.RGBA{R: 0x64, G: 0x95, B: 0xed, A: 0xff}, false},
		{"short", `"#fff"`, nil, true},
		{"not_hex", `"#gggggg"`, nil, true},
		{"not_scalar", `[1, 2]`, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c YAMLColor
			err := yaml.Unmarshal([]byte(tc.in), &c)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %v", c.Color)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if c.Color != tc.want {
				t.Fatalf("color = %#v, want %#v", c.Color, tc.want)
			}
		})
	}
}

func TestLoadPrefab(t *testing.T) {
	src := Source{FS: fstest.MapFS{
		"box.yaml": {Data: []byte(`
transform:
  scale_x: 2
sprite:
  image: box.png
  layer: 400
  source: {x: 16, y: 0, width: 16, height: 8}
collider:
  width: 8
  height: 4
  offset_x: 1
  mask: 3
physics:
  gravity: {y: 9}
  ghost: true
`)},
		"named.yaml": {Data: []byte("name: hero\ntype: Player\n")},
		"bad.yaml":   {Data: []byte("sprite: [\n")},
	}}

	box, err := LoadPrefab(src, "box")
	if err != nil {
		t.Fatalf("load box: %v", err)
	}
	if box.Name != "box" || box.Type != "box" {
		t.Fatalf("name and type should default to the file name, got %q %q", box.Name, box.Type)
	}
	if box.Sprite == nil || box.Sprite.LayerIndex() != 255 {
		t.Fatalf("layer should clamp to 255")
	}
	if box.Sprite.Source.Image() != image.Rect(16, 0, 32, 8) {
		t.Fatalf("source = %v", box.Sprite.Source.Image())
	}
	if box.Collider.Rect() != common.R(1, 0, 8, 4) || box.Collider.Mask != 3 {
		t.Fatalf("collider = %+v", box.Collider)
	}
	if !box.Physics.Ghost || box.Physics.Gravity.Vector() != common.Vec(0, 9) {
		t.Fatalf("physics = %+v", box.Physics)
	}
	if box.Animation != nil || box.Camera != nil || box.Script != nil {
		t.Fatalf("unset components should stay nil")
	}

	tr := box.Transform.Transform(common.Vec(10, 20))
	if tr.Position != common.Vec(10, 20) || tr.Scale != common.Vec(2, 1) {
		t.Fatalf("transform = %+v", tr)
	}

	named, err := LoadPrefab(src, "named.yaml")
	if err != nil {
		t.Fatalf("load named: %v", err)
	}
	if named.Name != "hero" || named.Type != "Player" {
		t.Fatalf("explicit name and type should be kept, got %q %q", named.Name, named.Type)
	}

	if _, err := LoadPrefab(src, "bad"); err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Fatalf("expected an unmarshal error naming the file, got %v", err)
	}
	if _, err := LoadPrefab(src, "missing"); err == nil {
		t.Fatalf("expected an error for a missing prefab")
	}
}

func TestAnimatedSprite(t *testing.T) {
	src := Source{FS: fstest.MapFS{"anim.yaml": {Data: []byte(`
default: idle
clips:
  - name: idle
    frames:
      - {duration: 0.5, x: 0, y: 0, width: 16, height: 16}
      - {duration: 0.5, x: 16, y: 0, width: 16, height: 16}
  - name: land
    loop: false
    frames:
      - {duration: 0.1, x: 0, y: 16, width: 16, height: 16}
`)}}}

	spec, err := LoadAnimation(src, "anim.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	anim := spec.AnimatedSprite()
	if anim.Default != "idle" || len(anim.Animations) != 2 {
		t.Fatalf("animation = %+v", anim)
	}
	idle, land := anim.Animations[0], anim.Animations[1]
	if !idle.Loop || land.Loop {
		t.Fatalf("clips loop unless loop is false, got idle=%v land=%v", idle.Loop, land.Loop)
	}
	if len(idle.Frames) != 2 || idle.Frames[1].Source != image.Rect(16, 0, 32, 16) || idle.Frames[1].Duration != 0.5 {
		t.Fatalf("idle frames = %+v", idle.Frames)
	}
}

func TestEngineSpecDefaults(t *testing.T) {
	var spec EngineSpec
	spec.applyDefaults()
	if spec.Title == "" || spec.Window.Width != 640 || spec.Window.Height != 360 || spec.Window.Scale != 1 {
		t.Fatalf("window defaults = %+v", spec.Window)
	}
	if spec.TickRate != 60 || spec.CellSize != 100 {
		t.Fatalf("tick_rate=%d cell_size=%v", spec.TickRate, spec.CellSize)
	}
}

func TestEmbeddedSpecs(t *testing.T) {
	spec, err := LoadEngineSpec("engine.yaml")
	if err != nil {
		t.Fatalf("engine.yaml: %v", err)
	}
	if spec.Script == "" || spec.Map == "" || len(spec.Spawn) == 0 {
		t.Fatalf("engine.yaml should name a script, a map and a spawn: %+v", spec)
	}
	if spec.ClearColor == nil {
		t.Fatalf("clear_color should parse")
	}
	if _, err := LoadScript(spec.Script); err != nil {
		t.Fatalf("script %s: %v", spec.Script, err)
	}

	for _, s := range spec.Spawn {
		p, err := LoadPrefab(Default, s.Prefab)
		if err != nil {
			t.Fatalf("prefab %s: %v", s.Prefab, err)
		}
		if p.Animation != nil && p.Animation.File != "" {
			if _, err := LoadAnimation(Default, p.Animation.File); err != nil {
				t.Fatalf("animation %s: %v", p.Animation.File, err)
			}
		}
	}
	if _, err := LoadPrefab(Default, "crate"); err != nil {
		t.Fatalf("crate: %v", err)
	}
}

func TestCleanPaths(t *testing.T) {
	tests := []struct {
		in, prefab, script string
	}{
		{"hero.yaml", "hero.yaml", "scripts/hero.yaml"},
		{"prefabs/hero.yaml", "hero.yaml", "scripts/hero.yaml"},
		{"prefabs/scripts/main.tengo", "scripts/main.tengo", "scripts/main.tengo"},
		{"scripts/main.tengo", "scripts/main.tengo", "scripts/main.tengo"},
		{"main.tengo", "main.tengo", "scripts/main.tengo"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := cleanPrefabPath(tc.in); got != tc.prefab {
				t.Fatalf("cleanPrefabPath(%q) = %q, want %q", tc.in, got, tc.prefab)
			}
			if got := cleanScriptPath(tc.in); got != tc.script {
				t.Fatalf("cleanScriptPath(%q) = %q, want %q", tc.in, got, tc.script)
			}
		})
	}
}
