package effect

// StageID names one glyph compositing stage.
type StageID string

// Stage identifiers. The set is fixed; their order is configurable.
const (
	StageFill       StageID = "fill"
	StageDropouts   StageID = "dropouts"
	StageTexture    StageID = "texture"
	StageCenterEdge StageID = "centerEdge"
	StagePunch      StageID = "punch"
	StageFuzz       StageID = "fuzz"
	StageSmudge     StageID = "smudge"
)

// SectionGrain is the page-level grain section. It is configured like a
// stage section but never runs per glyph.
const SectionGrain = "grain"

// NumStages is the number of glyph stages.
const NumStages = 7

var defaultOrder = [NumStages]StageID{
	StageFill, StageDropouts, StageTexture, StageCenterEdge, StagePunch, StageFuzz, StageSmudge,
}

// DefaultOrder returns the default stage order.
func DefaultOrder() []StageID {
	out := make([]StageID, NumStages)
	copy(out, defaultOrder[:])
	return out
}

// Index returns the position of id in the default order, or -1 if id is
// not a known stage.
func (id StageID) Index() int {
	for i, s := range defaultOrder {
		if s == id {
			return i
		}
	}
	return -1
}

// Valid reports whether id names a known stage.
func (id StageID) Valid() bool {
	return id.Index() >= 0
}

func (id StageID) String() string {
	return string(id)
}
