package effect

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/typewriter"
)

// Config is the raw effect configuration as supplied by a user or a file.
// Values are not trusted; pass the Config through Resolve before use.
//
// Start from DefaultConfig and override fields: a zero Config resolves to
// the bottom of every range rather than to the defaults.
type Config struct {
	// Strength is the overall effect strength, 0–100.
	Strength float64 `toml:"strength"`

	// Order lists stage ids in execution order. Unknown ids are ignored.
	Order []string `toml:"order"`

	Sections   SectionsConfig   `toml:"sections"`
	Enable     EnableConfig     `toml:"enable"`
	Ink        InkConfig        `toml:"ink"`
	Ribbon     RibbonConfig     `toml:"ribbon"`
	Bias       BiasConfig       `toml:"bias"`
	Noise      NoiseConfig      `toml:"noise"`
	CenterEdge CenterEdgeConfig `toml:"center_edge"`
	Dropouts   DropoutsConfig   `toml:"dropouts"`
	Texture    TextureConfig    `toml:"texture"`
	EdgeFuzz   EdgeFuzzConfig   `toml:"edge_fuzz"`
	Smudge     SmudgeConfig     `toml:"smudge"`
	Punch      PunchConfig      `toml:"punch"`
	Grain      GrainConfig      `toml:"grain"`
}

// SectionConfig toggles and tunes one section.
type SectionConfig struct {
	Enabled  bool    `toml:"enabled"`
	Strength float64 `toml:"strength"` // 0–100
	Quality  float64 `toml:"quality"`  // 0–200 percent
}

// SectionsConfig holds one SectionConfig per stage plus grain.
type SectionsConfig struct {
	Fill       SectionConfig `toml:"fill"`
	Dropouts   SectionConfig `toml:"dropouts"`
	Texture    SectionConfig `toml:"texture"`
	CenterEdge SectionConfig `toml:"center_edge"`
	Punch      SectionConfig `toml:"punch"`
	Fuzz       SectionConfig `toml:"fuzz"`
	Smudge     SectionConfig `toml:"smudge"`
	Grain      SectionConfig `toml:"grain"`
}

// Stage returns the section of a stage id.
func (s *SectionsConfig) Stage(id StageID) *SectionConfig {
	switch id {
	case StageFill:
		return &s.Fill
	case StageDropouts:
		return &s.Dropouts
	case StageTexture:
		return &s.Texture
	case StageCenterEdge:
		return &s.CenterEdge
	case StagePunch:
		return &s.Punch
	case StageFuzz:
		return &s.Fuzz
	case StageSmudge:
		return &s.Smudge
	}
	return nil
}

// EnableConfig toggles sub-features of the fill stage.
type EnableConfig struct {
	ToneCore bool `toml:"tone_core"`
	Rim      bool `toml:"rim"`
	Ribbon   bool `toml:"ribbon"`
}

// InkConfig shapes the base tone.
type InkConfig struct {
	Pressure          float64 `toml:"pressure"`
	PressureLowScale  float64 `toml:"pressure_low_scale"`
	PressureHighScale float64 `toml:"pressure_high_scale"`
	PressureMix       float64 `toml:"pressure_mix"`
	Gamma             float64 `toml:"gamma"`
	RimStrength       float64 `toml:"rim_strength"`
}

// RibbonConfig describes horizontal ribbon banding.
type RibbonConfig struct {
	Amount float64 `toml:"amount"`
	Bands  float64 `toml:"bands"`
	Phase  float64 `toml:"phase"`
}

// BiasConfig steers where defects land.
type BiasConfig struct {
	Punch   float64 `toml:"punch"`
	Dropout float64 `toml:"dropout"`
}

// NoiseConfig holds the global seed and adaptive detail threshold.
type NoiseConfig struct {
	Seed            uint32  `toml:"seed"`
	DetailThreshold float64 `toml:"detail_threshold"`
}

// CenterEdgeConfig shapes coverage by depth inside the stroke.
type CenterEdgeConfig struct {
	Center  float64 `toml:"center"`
	Edge    float64 `toml:"edge"`
	Levels  float64 `toml:"levels"`
	Falloff float64 `toml:"falloff"`
}

// DropoutsConfig describes missed-ink streaks and pinholes.
type DropoutsConfig struct {
	Amount    float64 `toml:"amount"`
	Threshold float64 `toml:"threshold"`
	Scale     float64 `toml:"scale"`
	EdgeWidth float64 `toml:"edge_width"`
}

// TextureConfig describes grain specks inside strokes.
type TextureConfig struct {
	Density float64 `toml:"density"`
	Dark    float64 `toml:"dark"`
	Light   float64 `toml:"light"`
	Scale   float64 `toml:"scale"`
}

// EdgeFuzzConfig describes the fuzzy edge band.
type EdgeFuzzConfig struct {
	Amount      float64 `toml:"amount"`
	Width       float64 `toml:"width"`
	InwardShare float64 `toml:"inward_share"`
	Scale       float64 `toml:"scale"`
	HashMix     float64 `toml:"hash_mix"`
}

// SmudgeConfig describes the directional halo outside strokes.
type SmudgeConfig struct {
	Amount float64 `toml:"amount"`
	Radius float64 `toml:"radius"`
	DirX   float64 `toml:"dir_x"`
	DirY   float64 `toml:"dir_y"`
	Spread float64 `toml:"spread"`
	Scale  float64 `toml:"scale"`
}

// PunchConfig describes punched-through holes.
type PunchConfig struct {
	Count        float64 `toml:"count"`
	Chance       float64 `toml:"chance"`
	Intensity    float64 `toml:"intensity"`
	RadiusMin    float64 `toml:"radius_min"`
	RadiusMax    float64 `toml:"radius_max"`
	Eccentricity float64 `toml:"eccentricity"`
	Softness     float64 `toml:"softness"`
}

// GrainConfig describes the page grain overlay.
type GrainConfig struct {
	Octaves  int     `toml:"octaves"`
	Scale    float64 `toml:"scale"`
	Amount   float64 `toml:"amount"`
	Tiled    bool    `toml:"tiled"`
	TileSize float64 `toml:"tile_size"`
	Blend    string  `toml:"blend"`
}

// DefaultConfig returns the stock typewriter look.
func DefaultConfig() Config {
	on := SectionConfig{Enabled: true, Strength: 100, Quality: 100}
	return Config{
		Strength: 100,
		Order:    stageNames(DefaultOrder()),
		Sections: SectionsConfig{
			Fill: on, Dropouts: on, Texture: on, CenterEdge: on,
			Punch: on, Fuzz: on, Smudge: on, Grain: on,
		},
		Enable: EnableConfig{ToneCore: true, Rim: true, Ribbon: false},
		Ink: InkConfig{
			Pressure:          0.35,
			PressureLowScale:  6,
			PressureHighScale: 0.9,
			PressureMix:       0.35,
			Gamma:             1.15,
			RimStrength:       0.25,
		},
		Ribbon:     RibbonConfig{Amount: 0.12, Bands: 1, Phase: 0},
		Bias:       BiasConfig{Punch: 0.3, Dropout: 0.6},
		Noise:      NoiseConfig{Seed: 0x5eed, DetailThreshold: 2},
		CenterEdge: CenterEdgeConfig{Center: 1.08, Edge: 0.88, Levels: 8, Falloff: 0.7},
		Dropouts:   DropoutsConfig{Amount: 0.55, Threshold: 0.68, Scale: 1.6, EdgeWidth: 1.2},
		Texture:    TextureConfig{Density: 0.35, Dark: 0.25, Light: 0.3, Scale: 0.7},
		EdgeFuzz:   EdgeFuzzConfig{Amount: 0.35, Width: 0.8, InwardShare: 0.4, Scale: 0.5, HashMix: 0.35},
		Smudge:     SmudgeConfig{Amount: 0.18, Radius: 1.5, DirX: 0.3, DirY: 1, Spread: 0.6, Scale: 2},
		Punch: PunchConfig{
			Count: 1.2, Chance: 0.35, Intensity: 0.6,
			RadiusMin: 0.25, RadiusMax: 0.6, Eccentricity: 0.4, Softness: 0.5,
		},
		Grain: GrainConfig{Octaves: 3, Scale: 3, Amount: 0.12, Tiled: true, TileSize: 256, Blend: BlendMultiply},
	}
}

// Decode reads a TOML effect configuration from r on top of DefaultConfig,
// so keys missing from the document keep their default values.
func Decode(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("effect: decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		typewriter.LoggerFor("effect").Warn("ignoring unknown config keys", "keys", fmt.Sprint(undecoded))
	}
	return cfg, nil
}

// Load reads a TOML effect configuration file.
func Load(path string) (Config, error) {
	// #nosec G304 -- config path is provided by the user
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("effect: open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("effect: encode config: %w", err)
	}
	return nil
}

func stageNames(ids []StageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
