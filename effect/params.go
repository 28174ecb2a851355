package effect

// Grain blend modes.
const (
	BlendMultiply  = "multiply"
	BlendOverlay   = "overlay"
	BlendSoftLight = "soft-light"
	BlendDarken    = "darken"
	BlendNormal    = "normal"
)

// Params is a resolved, clamped effect configuration. Every value lies in
// its documented range, so consumers never re-validate.
//
// Params is treated as immutable once returned by Resolve.
type Params struct {
	// Strength is the overall strength in [0, 1].
	Strength float32

	// Order is the configured stage order: known ids only, no duplicates.
	Order []StageID

	Sections [NumStages]Section
	Grain    Grain

	Enable     Enable
	Ink        Ink
	Ribbon     Ribbon
	Bias       Bias
	Noise      Noise
	CenterEdge CenterEdge
	Dropouts   Dropouts
	Texture    Texture
	EdgeFuzz   EdgeFuzz
	Smudge     Smudge
	Punch      Punch
}

// Section is the resolved state of one stage.
type Section struct {
	Enabled  bool
	Strength float32 // [0, 1]
	Detail   Detail
}

// Detail is the resolution-adaptive setting of a section.
type Detail struct {
	// Scale is the working-resolution factor in [0.05, 1].
	Scale float32
	// Quality is the sampling-effort factor in [0, 2].
	Quality float32
}

// DetailFor maps a quality percentage to a Detail. 100% runs at half
// resolution with nominal sampling; 200% runs at full resolution.
func DetailFor(percent float64) Detail {
	f := float32(percent / 100)
	return Detail{
		Scale:   min(max(0.5*f, 0.05), 1),
		Quality: f,
	}
}

// EffectiveScale returns the working scale for a stage rendering at
// dpPerCSS device pixels per CSS pixel. Reduced detail only kicks in at
// high density, above threshold.
func (d Detail) EffectiveScale(dpPerCSS, threshold float32) float32 {
	if dpPerCSS > threshold {
		return d.Scale
	}
	return 1
}

// Enable toggles sub-features of the fill stage.
type Enable struct {
	ToneCore bool
	Rim      bool
	Ribbon   bool
}

// Ink shapes the base tone.
type Ink struct {
	Pressure          float32 // [0, 1]
	PressureLowScale  float32 // CSS px, [0.5, 64]
	PressureHighScale float32 // CSS px, [0.1, 16]
	PressureMix       float32 // [0, 1]
	Gamma             float32 // [0.2, 4]
	RimStrength       float32 // [0, 1]
}

// Ribbon describes horizontal ribbon banding.
type Ribbon struct {
	Amount float32 // [-1, 1]
	Bands  float32 // [0.25, 16]
	Phase  float32 // [0, 1]
}

// Bias steers where defects land.
type Bias struct {
	Punch   float32 // [-1, 1]; positive favours the stroke interior
	Dropout float32 // [0, 1]; concentrates dropouts near edges
}

// Noise holds the global seed and the adaptive-detail threshold.
type Noise struct {
	Seed            uint32
	DetailThreshold float32 // dp per CSS px, [0.5, 16]
}

// CenterEdge shapes coverage by depth inside the stroke.
type CenterEdge struct {
	Center  float32 // [0, 2]
	Edge    float32 // [0, 2]
	Levels  int     // [2, 64]
	Falloff float32 // [0.1, 4]
}

// Dropouts describes missed-ink streaks and pinholes.
type Dropouts struct {
	Amount    float32 // [0, 1]
	Threshold float32 // [0, 0.99]
	Scale     float32 // CSS px, [0.2, 32]
	EdgeWidth float32 // CSS px, [0.1, 16]
}

// Texture describes grain specks inside strokes.
type Texture struct {
	Density float32 // [0, 1]
	Dark    float32 // [0, 1]
	Light   float32 // [0, 1]
	Scale   float32 // CSS px, [0.1, 16]
}

// EdgeFuzz describes the fuzzy edge band.
type EdgeFuzz struct {
	Amount      float32 // [0, 1]
	Width       float32 // CSS px, [0, 8]
	InwardShare float32 // [0, 1]
	Scale       float32 // CSS px, [0.1, 16]
	HashMix     float32 // [0, 1]
}

// Smudge describes the directional halo outside strokes.
type Smudge struct {
	Amount float32 // [0, 1]
	Radius float32 // CSS px, [0, 16]
	// DirX, DirY is a unit vector.
	DirX, DirY float32
	Spread     float32 // [0, 1]
	Scale      float32 // CSS px, [0.1, 32]
}

// Punch describes punched-through holes.
type Punch struct {
	Count        float32 // [0, 8]
	Chance       float32 // [0, 1]
	Intensity    float32 // [0, 1]
	RadiusMin    float32 // CSS px, [0.05, 8]
	RadiusMax    float32 // CSS px, [0.05, 8], >= RadiusMin
	Eccentricity float32 // [0, 1]
	Softness     float32 // [0, 1]
}

// Grain describes the page grain overlay.
type Grain struct {
	Section  Section
	Octaves  int     // [1, 6]
	Scale    float32 // CSS px, [0.5, 256]
	Amount   float32 // [0, 1]
	Tiled    bool
	TileSize float32 // CSS px, [32, 2048]
	Blend    string  // one of the Blend* constants
}

// Stage returns the section of id. Unknown ids return a disabled section.
func (p *Params) Stage(id StageID) Section {
	i := id.Index()
	if i < 0 {
		return Section{}
	}
	return p.Sections[i]
}

// ActiveOrder returns the stages that will actually run: configured order,
// enabled, with positive strength. An overall strength of zero yields none.
func (p *Params) ActiveOrder() []StageID {
	if p.Strength <= 0 {
		return nil
	}
	out := make([]StageID, 0, len(p.Order))
	for _, id := range p.Order {
		s := p.Stage(id)
		if s.Enabled && s.Strength > 0 {
			out = append(out, id)
		}
	}
	return out
}

// StrengthBucket quantizes the overall strength to whole percent.
func (p *Params) StrengthBucket() int {
	return int(p.Strength*100 + 0.5)
}
