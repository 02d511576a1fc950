package planner

// SegmentKind identifies a branded segment's role.
type SegmentKind int

const (
	SegmentIntro SegmentKind = iota
	SegmentMiddle
	SegmentOutro
)

// String returns the lowercase kind name used in temp file names and logs.
func (k SegmentKind) String() string {
	switch k {
	case SegmentIntro:
		return "intro"
	case SegmentMiddle:
		return "middle"
	case SegmentOutro:
		return "outro"
	}
	return "unknown"
}

// Segment is one contiguous time range of the source video, [Start, End).
type Segment struct {
	Kind  SegmentKind
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// SegmentPlan is the ordered list of segments to render. Zero-length
// segments are omitted, so the plan holds two or three entries.
type SegmentPlan struct {
	Total    float64
	Segments []Segment
}

// AssetKind identifies which logo an overlay instruction draws.
type AssetKind int

const (
	AssetStatic AssetKind = iota
	AssetAnimated
)

// OverlayInstruction places one logo on a segment. X/Y/Width/Height are
// resolved absolute output-frame pixels; symbolic anchors are gone by the
// time an instruction exists.
type OverlayInstruction struct {
	Asset   AssetKind
	Path    string
	X, Y    int
	Width   int
	Height  int
	Opacity float64 // In [0, 1].
}

// OverlayPlan is the full overlay set for one segment: exactly one
// instruction (static) for middle segments, exactly two (static then
// animated) for intro and outro.
type OverlayPlan struct {
	Segment      SegmentKind
	Instructions []OverlayInstruction
}
