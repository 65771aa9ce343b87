package prefabs

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs/component"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	return LoadSpecFrom[T](Default, filename)
}

// LoadSpecFrom decodes the YAML file filename read from src into a T.
func LoadSpecFrom[T any](src Source, filename string) (T, error) {
	var zero T
	data, err := src.Read(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// EngineSpec configures the runtime and the demo window.
type EngineSpec struct {
	Title      string           `yaml:"title"`
	Window     WindowSpec       `yaml:"window"`
	TickRate   int              `yaml:"tick_rate"`
	CellSize   float64          `yaml:"cell_size"`
	Script     string           `yaml:"script"`
	Map        string           `yaml:"map"`
	Spawn      []SpawnSpec      `yaml:"spawn"`
	Camera     CameraSpec       `yaml:"camera"`
	Inputs     []InputAliasSpec `yaml:"inputs"`
	ClearColor *YAMLColor       `yaml:"clear_color"`
}

func LoadEngineSpec(filename string) (*EngineSpec, error) {
	spec, err := LoadSpec[EngineSpec](filename)
	if err != nil {
		return nil, err
	}
	spec.applyDefaults()
	return &spec, nil
}

func (s *EngineSpec) applyDefaults() {
	if s.Title == "" {
		s.Title = "slotengine"
	}
	if s.Window.Width <= 0 {
		s.Window.Width = 640
	}
	if s.Window.Height <= 0 {
		s.Window.Height = 360
	}
	if s.Window.Scale <= 0 {
		s.Window.Scale = 1
	}
	if s.TickRate <= 0 {
		s.TickRate = 60
	}
	if s.CellSize <= 0 {
		s.CellSize = 100
	}
}

// PrefabSpec describes an entity spawned from YAML. Every component is
// optional; the transform is always created.
type PrefabSpec struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	Transform TransformSpec  `yaml:"transform"`
	Sprite    *SpriteSpec    `yaml:"sprite"`
	Collider  *ColliderSpec  `yaml:"collider"`
	Physics   *PhysicsSpec   `yaml:"physics"`
	Animation *AnimationSpec `yaml:"animation"`
	Camera    *CameraSpec    `yaml:"camera"`
	Script    *ScriptSpec    `yaml:"script"`
}

// LoadPrefab reads name, adding the .yaml extension when it has none.
func LoadPrefab(src Source, name string) (*PrefabSpec, error) {
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	spec, err := LoadSpecFrom[PrefabSpec](src, name)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if spec.Type == "" {
		spec.Type = spec.Name
	}
	return &spec, nil
}

type WindowSpec struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Scale     float64 `yaml:"scale"`
	Resizable bool    `yaml:"resizable"`
}

type CameraSpec struct {
	Centered   bool      `yaml:"centered"`
	FillTarget bool      `yaml:"fill_target"`
	Viewport   *RectSpec `yaml:"viewport"`
	Follow     string    `yaml:"follow"`
}

// SpawnSpec places a prefab when the engine starts.
type SpawnSpec struct {
	Prefab string  `yaml:"prefab"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

// InputAliasSpec re-dispatches Event as Name. Key names a keyboard key and
// is resolved by the presentation layer; Param is used as is otherwise.
type InputAliasSpec struct {
	Name  string `yaml:"name"`
	Event string `yaml:"event"`
	Key   string `yaml:"key"`
	Param int64  `yaml:"param"`
}

// Alias converts the spec using param as the event parameter.
func (s InputAliasSpec) Alias(param int64) component.InputAlias {
	return component.InputAlias{Name: s.Name, Event: s.Event, Param: param}
}

type RectSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func (r RectSpec) Image() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
}

type TransformSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
	FlipH    bool    `yaml:"flip_h"`
	FlipV    bool    `yaml:"flip_v"`
}

// Transform builds a transform at the spec position plus at. Zero scales
// read as 1.
func (s TransformSpec) Transform(at cp.Vector) component.Transform {
	t := component.NewTransform(at.Add(cp.Vector{X: s.X, Y: s.Y}))
	if s.ScaleX != 0 {
		t.Scale.X = s.ScaleX
	}
	if s.ScaleY != 0 {
		t.Scale.Y = s.ScaleY
	}
	t.Rotation = s.Rotation
	t.FlipH = s.FlipH
	t.FlipV = s.FlipV
	return t
}

type SpriteSpec struct {
	Image   string    `yaml:"image"`
	Layer   int       `yaml:"layer"`
	OffsetX float64   `yaml:"offset_x"`
	OffsetY float64   `yaml:"offset_y"`
	Source  *RectSpec `yaml:"source"`
}

// LayerIndex clamps Layer to the valid draw layers.
func (s SpriteSpec) LayerIndex() uint8 {
	return uint8(min(max(s.Layer, 0), component.LayerCount-1))
}

type ColliderSpec struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	Mask    uint64  `yaml:"mask"`
}

func (s ColliderSpec) Rect() common.Rect {
	return common.R(s.OffsetX, s.OffsetY, s.Width, s.Height)
}

type PhysicsSpec struct {
	Velocity     VectorSpec `yaml:"velocity"`
	Acceleration VectorSpec `yaml:"acceleration"`
	Gravity      VectorSpec `yaml:"gravity"`
	MaxSpeed     VectorSpec `yaml:"max_speed"`
	// Ghost objects move without collision handling.
	Ghost bool `yaml:"ghost"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v VectorSpec) Vector() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// AnimationSpec lists the clips of an animated sprite. File points at a
// separate animation file and replaces the inline clips when set.
type AnimationSpec struct {
	File    string     `yaml:"file"`
	Default string     `yaml:"default"`
	Play    string     `yaml:"play"`
	Clips   []ClipSpec `yaml:"clips"`
}

type ClipSpec struct {
	Name   string      `yaml:"name"`
	Loop   *bool       `yaml:"loop"`
	Frames []FrameSpec `yaml:"frames"`
}

type FrameSpec struct {
	Duration float64 `yaml:"duration"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
}

// LoadAnimation reads an animation file from src.
func LoadAnimation(src Source, filename string) (AnimationSpec, error) {
	return LoadSpecFrom[AnimationSpec](src, filename)
}

// AnimatedSprite converts the clips. Clips loop unless loop is false.
func (s AnimationSpec) AnimatedSprite() component.AnimatedSprite {
	anim := component.AnimatedSprite{Default: s.Default}
	for _, clip := range s.Clips {
		a := component.Animation{Name: clip.Name, Loop: clip.Loop == nil || *clip.Loop}
		for _, f := range clip.Frames {
			a.Frames = append(a.Frames, component.Frame{
				Duration: f.Duration,
				Source:   image.Rect(f.X, f.Y, f.X+f.Width, f.Y+f.Height),
			})
		}
		anim.Animations = append(anim.Animations, a)
	}
	return anim
}

// ScriptSpec binds script handlers to a spawned prefab.
type ScriptSpec struct {
	Tick   string            `yaml:"tick"`
	Inputs map[string]string `yaml:"inputs"`
	Spawn  string            `yaml:"spawn"`
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG color name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(strings.TrimSpace(value.Value))]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
