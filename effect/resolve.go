package effect

import (
	"math"
	"strings"
)

// Resolve clamps a raw configuration into Params. Non-finite numbers fall
// back to the default value of their field, inverted ranges are swapped and
// the stage order keeps the first occurrence of each known id. An order with
// no known ids becomes DefaultOrder.
//
// Resolve never fails: any Config yields usable Params.
func Resolve(cfg Config) Params {
	def := DefaultConfig()

	p := Params{
		Strength: num(cfg.Strength, def.Strength, 0, 100) / 100,
		Order:    resolveOrder(cfg.Order),
	}
	for i, id := range defaultOrder {
		p.Sections[i] = resolveSection(*cfg.Sections.Stage(id), *def.Sections.Stage(id))
	}

	p.Enable = Enable(cfg.Enable)

	ci, di := cfg.Ink, def.Ink
	p.Ink = Ink{
		Pressure:          num(ci.Pressure, di.Pressure, 0, 1),
		PressureLowScale:  num(ci.PressureLowScale, di.PressureLowScale, 0.5, 64),
		PressureHighScale: num(ci.PressureHighScale, di.PressureHighScale, 0.1, 16),
		PressureMix:       num(ci.PressureMix, di.PressureMix, 0, 1),
		Gamma:             num(ci.Gamma, di.Gamma, 0.2, 4),
		RimStrength:       num(ci.RimStrength, di.RimStrength, 0, 1),
	}

	p.Ribbon = Ribbon{
		Amount: num(cfg.Ribbon.Amount, def.Ribbon.Amount, -1, 1),
		Bands:  num(cfg.Ribbon.Bands, def.Ribbon.Bands, 0.25, 16),
		Phase:  num(cfg.Ribbon.Phase, def.Ribbon.Phase, 0, 1),
	}

	p.Bias = Bias{
		Punch:   num(cfg.Bias.Punch, def.Bias.Punch, -1, 1),
		Dropout: num(cfg.Bias.Dropout, def.Bias.Dropout, 0, 1),
	}

	p.Noise = Noise{
		Seed:            cfg.Noise.Seed,
		DetailThreshold: num(cfg.Noise.DetailThreshold, def.Noise.DetailThreshold, 0.5, 16),
	}

	cc, dc := cfg.CenterEdge, def.CenterEdge
	p.CenterEdge = CenterEdge{
		Center:  num(cc.Center, dc.Center, 0, 2),
		Edge:    num(cc.Edge, dc.Edge, 0, 2),
		Levels:  int(math.Round(float64(num(cc.Levels, dc.Levels, 2, 64)))),
		Falloff: num(cc.Falloff, dc.Falloff, 0.1, 4),
	}

	cd, dd := cfg.Dropouts, def.Dropouts
	p.Dropouts = Dropouts{
		Amount:    num(cd.Amount, dd.Amount, 0, 1),
		Threshold: num(cd.Threshold, dd.Threshold, 0, 0.99),
		Scale:     num(cd.Scale, dd.Scale, 0.2, 32),
		EdgeWidth: num(cd.EdgeWidth, dd.EdgeWidth, 0.1, 16),
	}

	ct, dt := cfg.Texture, def.Texture
	p.Texture = Texture{
		Density: num(ct.Density, dt.Density, 0, 1),
		Dark:    num(ct.Dark, dt.Dark, 0, 1),
		Light:   num(ct.Light, dt.Light, 0, 1),
		Scale:   num(ct.Scale, dt.Scale, 0.1, 16),
	}

	cf, df := cfg.EdgeFuzz, def.EdgeFuzz
	p.EdgeFuzz = EdgeFuzz{
		Amount:      num(cf.Amount, df.Amount, 0, 1),
		Width:       num(cf.Width, df.Width, 0, 8),
		InwardShare: num(cf.InwardShare, df.InwardShare, 0, 1),
		Scale:       num(cf.Scale, df.Scale, 0.1, 16),
		HashMix:     num(cf.HashMix, df.HashMix, 0, 1),
	}

	cs, ds := cfg.Smudge, def.Smudge
	dirX := num(cs.DirX, ds.DirX, -1, 1)
	dirY := num(cs.DirY, ds.DirY, -1, 1)
	if l := float32(math.Hypot(float64(dirX), float64(dirY))); l > 1e-6 {
		dirX, dirY = dirX/l, dirY/l
	} else {
		dirX, dirY = 0, 1
	}
	p.Smudge = Smudge{
		Amount: num(cs.Amount, ds.Amount, 0, 1),
		Radius: num(cs.Radius, ds.Radius, 0, 16),
		DirX:   dirX,
		DirY:   dirY,
		Spread: num(cs.Spread, ds.Spread, 0, 1),
		Scale:  num(cs.Scale, ds.Scale, 0.1, 32),
	}

	cp, dp := cfg.Punch, def.Punch
	rmin := num(cp.RadiusMin, dp.RadiusMin, 0.05, 8)
	rmax := num(cp.RadiusMax, dp.RadiusMax, 0.05, 8)
	if rmin > rmax {
		rmin, rmax = rmax, rmin
	}
	p.Punch = Punch{
		Count:        num(cp.Count, dp.Count, 0, 8),
		Chance:       num(cp.Chance, dp.Chance, 0, 1),
		Intensity:    num(cp.Intensity, dp.Intensity, 0, 1),
		RadiusMin:    rmin,
		RadiusMax:    rmax,
		Eccentricity: num(cp.Eccentricity, dp.Eccentricity, 0, 1),
		Softness:     num(cp.Softness, dp.Softness, 0, 1),
	}

	cg, dg := cfg.Grain, def.Grain
	p.Grain = Grain{
		Section:  resolveSection(cfg.Sections.Grain, def.Sections.Grain),
		Octaves:  min(max(cg.Octaves, 1), 6),
		Scale:    num(cg.Scale, dg.Scale, 0.5, 256),
		Amount:   num(cg.Amount, dg.Amount, 0, 1),
		Tiled:    cg.Tiled,
		TileSize: num(cg.TileSize, dg.TileSize, 32, 2048),
		Blend:    resolveBlend(cg.Blend),
	}

	return p
}

func resolveSection(s, def SectionConfig) Section {
	return Section{
		Enabled:  s.Enabled,
		Strength: num(s.Strength, def.Strength, 0, 100) / 100,
		Detail:   DetailFor(float64(num(s.Quality, def.Quality, 0, 200))),
	}
}

func resolveOrder(names []string) []StageID {
	seen := make(map[StageID]bool, NumStages)
	out := make([]StageID, 0, NumStages)
	for _, n := range names {
		id := StageID(strings.TrimSpace(n))
		if !id.Valid() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return DefaultOrder()
	}
	return out
}

func resolveBlend(mode string) string {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case BlendMultiply, BlendOverlay, BlendSoftLight, BlendDarken, BlendNormal:
		return m
	case "softlight", "soft_light":
		return BlendSoftLight
	}
	return BlendMultiply
}

// num clamps v to [lo, hi], substituting def when v is NaN or infinite.
func num(v, def, lo, hi float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = def
	}
	return float32(min(max(v, lo), hi))
}
