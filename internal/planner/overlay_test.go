package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/BigAddict/VideoEditor/internal/assets"
	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/probe"
)

// --- Helper builders ---

func testBundle() *assets.Bundle {
	return &assets.Bundle{
		Static: assets.Logo{
			Path: "assets/static_logo.png",
			Info: probe.AssetInfo{Width: 400, Height: 160},
		},
		Animated: assets.Logo{
			Path: "assets/video_logo.mp4",
			Info: probe.AssetInfo{Width: 640, Height: 320, Duration: 4},
		},
	}
}

func testLogos() *config.LogoConfig {
	s := config.DefaultSettings()
	return &s.Logos
}

func TestPlanOverlays_MiddleHasStaticOnly(t *testing.T) {
	plan, err := PlanOverlays(SegmentMiddle, 1920, 1080, testBundle(), testLogos())
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}
	if len(plan.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(plan.Instructions))
	}
	if plan.Instructions[0].Asset != AssetStatic {
		t.Errorf("asset: got %v, want static", plan.Instructions[0].Asset)
	}
}

func TestPlanOverlays_IntroOutroHaveBoth(t *testing.T) {
	for _, kind := range []SegmentKind{SegmentIntro, SegmentOutro} {
		plan, err := PlanOverlays(kind, 1920, 1080, testBundle(), testLogos())
		if err != nil {
			t.Fatalf("PlanOverlays(%v): %v", kind, err)
		}
		if len(plan.Instructions) != 2 {
			t.Fatalf("%v: got %d instructions, want 2", kind, len(plan.Instructions))
		}
		if plan.Instructions[0].Asset != AssetStatic || plan.Instructions[1].Asset != AssetAnimated {
			t.Errorf("%v: instruction order wrong: %v, %v",
				kind, plan.Instructions[0].Asset, plan.Instructions[1].Asset)
		}
	}
}

func TestPlanOverlays_StaticGeometry(t *testing.T) {
	plan, err := PlanOverlays(SegmentMiddle, 1920, 1080, testBundle(), testLogos())
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}

	// Default: height 80, width derived from the 400x160 asset (2.5:1).
	got := plan.Instructions[0]
	if got.X != 20 || got.Y != 20 {
		t.Errorf("position: got (%d,%d), want (20,20)", got.X, got.Y)
	}
	if got.Height != 80 {
		t.Errorf("height: got %d, want 80", got.Height)
	}
	if got.Width != 200 {
		t.Errorf("width: got %d, want 200 (aspect preserved)", got.Width)
	}
	if got.Opacity != 1.0 {
		t.Errorf("opacity: got %v, want 1.0", got.Opacity)
	}
}

func TestPlanOverlays_CenteredAnimatedPosition(t *testing.T) {
	bundle := testBundle()
	// 2:1 aspect so configured height 100 gives width 200.
	bundle.Animated.Info = probe.AssetInfo{Width: 500, Height: 250, Duration: 4}
	logos := testLogos()
	logos.Animated.Height = 100
	logos.Animated.BottomMargin = 120

	plan, err := PlanOverlays(SegmentIntro, 1920, 1080, bundle, logos)
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}

	an := plan.Instructions[1]
	if an.Width != 200 || an.Height != 100 {
		t.Fatalf("size: got %dx%d, want 200x100", an.Width, an.Height)
	}
	if an.X != 860 || an.Y != 860 {
		t.Errorf("position: got (%d,%d), want (860,860)", an.X, an.Y)
	}
}

func TestPlanOverlays_ExplicitAnimatedPositionIgnoresMargin(t *testing.T) {
	logos := testLogos()
	logos.Animated.Position = "[100,200]"
	logos.Animated.BottomMargin = 500 // must be ignored

	plan, err := PlanOverlays(SegmentOutro, 1920, 1080, testBundle(), logos)
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}
	an := plan.Instructions[1]
	if an.X != 100 || an.Y != 200 {
		t.Errorf("position: got (%d,%d), want (100,200)", an.X, an.Y)
	}
}

func TestPlanOverlays_ScaleFactor(t *testing.T) {
	logos := testLogos()
	logos.Static.Scale = 0.5

	plan, err := PlanOverlays(SegmentMiddle, 1920, 1080, testBundle(), logos)
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}
	got := plan.Instructions[0]
	if got.Width != 100 || got.Height != 40 {
		t.Errorf("scaled size: got %dx%d, want 100x40", got.Width, got.Height)
	}
}

func TestPlanOverlays_ExplicitWidthAndHeight(t *testing.T) {
	logos := testLogos()
	logos.Static.Width = 300
	logos.Static.Height = 90

	plan, err := PlanOverlays(SegmentMiddle, 1920, 1080, testBundle(), logos)
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}
	got := plan.Instructions[0]
	if got.Width != 300 || got.Height != 90 {
		t.Errorf("size: got %dx%d, want 300x90", got.Width, got.Height)
	}
}

func TestPlanOverlays_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.LogoConfig)
		outW   int
		outH   int
	}{
		{
			"static larger than frame",
			func(l *config.LogoConfig) { l.Static.Height = 2000 },
			1920, 1080,
		},
		{
			"animated bottom margin pushes off frame",
			func(l *config.LogoConfig) { l.Animated.BottomMargin = 1080 },
			1920, 1080,
		},
		{
			"explicit position off frame",
			func(l *config.LogoConfig) { l.Animated.Position = "[1900,900]" },
			1920, 1080,
		},
		{
			"tiny output frame",
			func(l *config.LogoConfig) {},
			64, 48,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logos := testLogos()
			tt.mutate(logos)
			_, err := PlanOverlays(SegmentIntro, tt.outW, tt.outH, testBundle(), logos)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("got %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestPlanOverlays_Deterministic(t *testing.T) {
	a, err := PlanOverlays(SegmentIntro, 1280, 720, testBundle(), testLogos())
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}
	b, err := PlanOverlays(SegmentIntro, 1280, 720, testBundle(), testLogos())
	if err != nil {
		t.Fatalf("PlanOverlays: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different plans:\n%+v\n%+v", a, b)
	}
}
