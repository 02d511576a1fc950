package planner

import (
	"errors"
	"math"
	"testing"
)

func TestPlanSegments_ThreeWay(t *testing.T) {
	plan, err := PlanSegments(10, 3, 3, 6)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}

	want := []Segment{
		{SegmentIntro, 0, 3},
		{SegmentMiddle, 3, 7},
		{SegmentOutro, 7, 10},
	}
	if len(plan.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(plan.Segments), len(want))
	}
	for i, seg := range plan.Segments {
		if seg != want[i] {
			t.Errorf("segment %d: got %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestPlanSegments_ZeroMiddleOmitted(t *testing.T) {
	plan, err := PlanSegments(6, 3, 3, 6)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if len(plan.Segments) != 2 {
		t.Fatalf("got %d segments, want 2 (zero-length middle omitted)", len(plan.Segments))
	}
	if plan.Segments[0].Kind != SegmentIntro || plan.Segments[1].Kind != SegmentOutro {
		t.Errorf("got kinds %v/%v, want intro/outro", plan.Segments[0].Kind, plan.Segments[1].Kind)
	}
	if plan.Segments[0].End != plan.Segments[1].Start {
		t.Error("intro and outro are not contiguous")
	}
}

func TestPlanSegments_TooShort(t *testing.T) {
	tests := []struct {
		name                      string
		total, intro, outro, min  float64
	}{
		{"below intro+outro", 5, 3, 3, 0},
		{"below min", 5, 3, 3, 6},
		{"meets segments, below min", 7, 3, 3, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanSegments(tt.total, tt.intro, tt.outro, tt.min)
			if !errors.Is(err, ErrTooShort) {
				t.Errorf("got %v, want ErrTooShort", err)
			}
		})
	}
}

func TestPlanSegments_ContiguousAndComplete(t *testing.T) {
	durations := []float64{6, 6.5, 7, 10, 59.94, 3600, 12345.678}
	for _, d := range durations {
		plan, err := PlanSegments(d, 3, 3, 6)
		if err != nil {
			t.Fatalf("duration %v: %v", d, err)
		}

		var sum float64
		prev := 0.0
		for _, seg := range plan.Segments {
			if seg.Start != prev {
				t.Errorf("duration %v: segment %v starts at %v, want %v", d, seg.Kind, seg.Start, prev)
			}
			if seg.Duration() <= 0 {
				t.Errorf("duration %v: segment %v has non-positive length", d, seg.Kind)
			}
			sum += seg.Duration()
			prev = seg.End
		}
		if prev != d {
			t.Errorf("duration %v: last segment ends at %v", d, prev)
		}
		if math.Abs(sum-d) > 1e-9 {
			t.Errorf("duration %v: segment lengths sum to %v", d, sum)
		}
	}
}

func TestPlanSegments_ZeroIntroOmitted(t *testing.T) {
	plan, err := PlanSegments(10, 0, 3, 0)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if len(plan.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(plan.Segments))
	}
	if plan.Segments[0].Kind != SegmentMiddle {
		t.Errorf("first segment: got %v, want middle", plan.Segments[0].Kind)
	}
}
