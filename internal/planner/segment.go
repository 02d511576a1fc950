// Package planner contains the pure decision functions of the branding
// pipeline: splitting a video into intro/middle/outro time ranges and
// resolving overlay geometry per segment. No I/O, no side effects;
// identical inputs always yield identical plans.
package planner

import "errors"

// ErrTooShort rejects videos whose duration cannot hold the configured
// intro and outro (or is below the configured minimum). Deterministic,
// never retried.
var ErrTooShort = errors.New("video too short for configured segments")

// PlanSegments splits total into intro/middle/outro ranges.
//
// The ranges are contiguous and cover [0, total] exactly:
// end(intro) = start(middle), end(middle) = start(outro),
// end(outro) = total. When intro+outro equals total, the middle has zero
// length and is omitted rather than producing a zero-duration render.
func PlanSegments(total, intro, outro, min float64) (SegmentPlan, error) {
	if total < intro+outro || total < min {
		return SegmentPlan{}, ErrTooShort
	}

	plan := SegmentPlan{Total: total}
	middleEnd := total - outro

	for _, seg := range []Segment{
		{Kind: SegmentIntro, Start: 0, End: intro},
		{Kind: SegmentMiddle, Start: intro, End: middleEnd},
		{Kind: SegmentOutro, Start: middleEnd, End: total},
	} {
		if seg.Duration() > 0 {
			plan.Segments = append(plan.Segments, seg)
		}
	}
	return plan, nil
}
