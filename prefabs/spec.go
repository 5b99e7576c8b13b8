package prefabs

import (
	"fmt"
	"image/color"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/milk9111/hallways/common"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DirectorSpec configures progression and the prefabs the director spawns.
type DirectorSpec struct {
	Name          string  `yaml:"name"`
	TotalSegments int     `yaml:"total_segments"`
	SegmentLength float64 `yaml:"segment_length"`
	AnomalyChance float64 `yaml:"anomaly_chance"`
	ChanceScript  string  `yaml:"chance_script"`
	SettleSeconds float64 `yaml:"settle_seconds"`
	PoolSize      int     `yaml:"pool_size"`
	Hallway       string  `yaml:"hallway"`
	Lift          string  `yaml:"lift"`
	Player        string  `yaml:"player"`
	WeirdLoop     string  `yaml:"weird_loop"`
}

func LoadDirectorSpec(name string) (*DirectorSpec, error) {
	if name == "" {
		name = "director.yaml"
	}
	spec, err := LoadSpec[DirectorSpec](name)
	if err != nil {
		return nil, err
	}
	if spec.TotalSegments < 1 {
		return nil, fmt.Errorf("prefabs: %s: total_segments must be at least 1, got %d", name, spec.TotalSegments)
	}
	if spec.SegmentLength <= 0 {
		return nil, fmt.Errorf("prefabs: %s: segment_length must be positive", name)
	}
	if spec.AnomalyChance < 0 || spec.AnomalyChance > 1 {
		return nil, fmt.Errorf("prefabs: %s: anomaly_chance must be within [0,1], got %v", name, spec.AnomalyChance)
	}
	return &spec, nil
}

type HallwaySpec struct {
	Name      string               `yaml:"name"`
	Length    float64              `yaml:"length"`
	Width     float64              `yaml:"width"`
	Height    float64              `yaml:"height"`
	Door      DoorSpec             `yaml:"door"`
	Lights    []LightSpec          `yaml:"lights"`
	Switch    PartSpec             `yaml:"switch"`
	Parts     []PartSpec           `yaml:"parts"`
	Swaps     map[string]PartSpec  `yaml:"swaps"`
	Anomalies []ChangeSpec         `yaml:"anomalies"`
	Entry     TriggerSpec          `yaml:"entry"`
	Audio     map[string]AudioSpec `yaml:"audio"`
	Extra     map[string]any       `yaml:",inline"`
}

type DoorSpec struct {
	OpenSpeed float64   `yaml:"open_speed"`
	OpenAngle float64   `yaml:"open_angle"`
	Curve     string    `yaml:"curve"`
	AutoClose bool      `yaml:"auto_close"`
	Locked    bool      `yaml:"locked"`
	Size      Vec3Spec  `yaml:"size"`
	Color     YAMLColor `yaml:"color"`
	PassDepth float64   `yaml:"pass_depth"`
}

type LightSpec struct {
	Name      string    `yaml:"name"`
	Position  Vec3Spec  `yaml:"position"`
	Intensity float64   `yaml:"intensity"`
	OnColor   YAMLColor `yaml:"on_color"`
	OffColor  YAMLColor `yaml:"off_color"`
}

// PartSpec is a named prop inside a prefab. Anomalies target parts by name.
type PartSpec struct {
	Name     string    `yaml:"name"`
	Mesh     string    `yaml:"mesh"`
	Position Vec3Spec  `yaml:"position"`
	Rotation Vec3Spec  `yaml:"rotation"`
	Scale    Vec3Spec  `yaml:"scale"`
	Size     Vec3Spec  `yaml:"size"`
	Color    YAMLColor `yaml:"color"`
	Hidden   bool      `yaml:"hidden"`
	Layer    int       `yaml:"layer"`
}

type ChangeSpec struct {
	Kind       string    `yaml:"kind"`
	Target     string    `yaml:"target"`
	Color      YAMLColor `yaml:"color"`
	Offset     Vec3Spec  `yaml:"offset"`
	Multiplier Vec3Spec  `yaml:"multiplier"`
	Prefab     string    `yaml:"prefab"`
	Flip       bool      `yaml:"flip"`
	Sound      string    `yaml:"sound"`
	Volume     float64   `yaml:"volume"`
}

type TriggerSpec struct {
	Offset      Vec3Spec `yaml:"offset"`
	HalfExtents Vec3Spec `yaml:"half_extents"`
}

type AudioSpec struct {
	Name   string  `yaml:"name"`
	File   string  `yaml:"file"`
	Volume float64 `yaml:"volume"`
}

func LoadHallwaySpec(name string) (*HallwaySpec, error) {
	if name == "" {
		name = "hallway.yaml"
	}
	spec, err := LoadSpec[HallwaySpec](name)
	if err != nil {
		return nil, err
	}
	if spec.Length <= 0 {
		return nil, fmt.Errorf("prefabs: %s: length must be positive", name)
	}
	if spec.Door.OpenSpeed <= 0 {
		return nil, fmt.Errorf("prefabs: %s: door.open_speed must be positive", name)
	}
	if len(spec.Extra) > 0 {
		keys := make([]string, 0, len(spec.Extra))
		for k := range spec.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		log.Printf("prefabs: %s: ignoring unknown keys %s", name, strings.Join(keys, ", "))
	}
	return &spec, nil
}

type LiftSpec struct {
	Name               string      `yaml:"name"`
	Size               Vec3Spec    `yaml:"size"`
	Color              YAMLColor   `yaml:"color"`
	Button             PartSpec    `yaml:"button"`
	ButtonPush         Vec3Spec    `yaml:"button_push"`
	LeftDoor           PartSpec    `yaml:"left_door"`
	RightDoor          PartSpec    `yaml:"right_door"`
	DoorTravel         float64     `yaml:"door_travel"`
	Entry              TriggerSpec `yaml:"entry"`
	ButtonPressSeconds float64     `yaml:"button_press_seconds"`
	ButtonDelay        float64     `yaml:"button_delay"`
	DoorCloseSeconds   float64     `yaml:"door_close_seconds"`
	PostCloseDelay     float64     `yaml:"post_close_delay"`
	FadeSeconds        float64     `yaml:"fade_seconds"`
	FadeCurve          string      `yaml:"fade_curve"`
	CreditsSeconds     float64     `yaml:"credits_seconds"`
}

func LoadLiftSpec(name string) (*LiftSpec, error) {
	if name == "" {
		name = "lift.yaml"
	}
	spec, err := LoadSpec[LiftSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type PlayerSpec struct {
	Name           string     `yaml:"name"`
	MoveSpeed      float64    `yaml:"move_speed"`
	TurnSpeed      float64    `yaml:"turn_speed"`
	Spawn          Vec3Spec   `yaml:"spawn"`
	ColliderRadius float64    `yaml:"collider_radius"`
	ColliderPath   []PartSpec `yaml:"collider_path"`
	ReachDistance  float64    `yaml:"reach_distance"`
}

func LoadPlayerSpec(name string) (*PlayerSpec, error) {
	if name == "" {
		name = "player.yaml"
	}
	spec, err := LoadSpec[PlayerSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Vec3Spec decodes from a three element sequence or an x/y/z mapping.
type Vec3Spec struct {
	common.Vec3
	Set bool
}

func (v *Vec3Spec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("vector must have 3 components, got %d", len(xs))
		}
		v.Vec3 = common.V3(xs[0], xs[1], xs[2])
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		v.Vec3 = common.V3(m.X, m.Y, m.Z)
	default:
		return fmt.Errorf("vector must be a sequence or mapping")
	}
	v.Set = true
	return nil
}

// Or returns the decoded vector, or def when the field was absent.
func (v Vec3Spec) Or(def common.Vec3) common.Vec3 {
	if !v.Set {
		return def
	}
	return v.Vec3
}

type YAMLColor struct {
	color.NRGBA
	Set bool
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
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

	c.NRGBA = color.NRGBA{R: r, G: g, B: b, A: a}
	c.Set = true
	return nil
}

// Or returns the decoded color, or def when the field was absent.
func (c YAMLColor) Or(def color.NRGBA) color.NRGBA {
	if !c.Set {
		return def
	}
	return c.NRGBA
}
