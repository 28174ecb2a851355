package effect

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// OrderSignature identifies the active stage order.
func (p *Params) OrderSignature() string {
	ids := p.ActiveOrder()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return digest(strings.Join(names, ","))
}

// StageSignature identifies every parameter that changes what a glyph
// stage produces, excluding detail settings and the order.
func (p *Params) StageSignature() string {
	var b strings.Builder
	for i, s := range p.Sections {
		fmt.Fprintf(&b, "%s:%t:%g;", defaultOrder[i], s.Enabled, s.Strength)
	}
	fmt.Fprintf(&b, "%+v|%+v|%+v|%+v|%d|", p.Enable, p.Ink, p.Ribbon, p.Bias, p.Noise.Seed)
	fmt.Fprintf(&b, "%+v|%+v|%+v|%+v|%+v|%+v", p.CenterEdge, p.Dropouts, p.Texture, p.EdgeFuzz, p.Smudge, p.Punch)
	return digest(b.String())
}

// QualitySignature identifies the detail settings of every stage.
func (p *Params) QualitySignature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "threshold:%g;", p.Noise.DetailThreshold)
	for i, s := range p.Sections {
		fmt.Fprintf(&b, "%s:%g:%g;", defaultOrder[i], s.Detail.Scale, s.Detail.Quality)
	}
	return digest(b.String())
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
