package planner

import (
	"fmt"
	"math"

	"github.com/BigAddict/VideoEditor/internal/assets"
	"github.com/BigAddict/VideoEditor/internal/config"
)

// ErrInvalidGeometry rejects overlay placements that would be degenerate:
// non-positive size, or an overlay extending past the output frame. The
// caller must reject the configuration rather than render a broken filter
// graph.
var ErrInvalidGeometry = fmt.Errorf("overlay geometry invalid for output frame")

// PlanOverlays resolves the overlay set for one segment kind against the
// output frame dimensions. Middle segments get the static logo only; intro
// and outro get static plus animated.
func PlanOverlays(kind SegmentKind, outW, outH int, bundle *assets.Bundle, logos *config.LogoConfig) (OverlayPlan, error) {
	plan := OverlayPlan{Segment: kind}

	st, err := planStatic(outW, outH, &bundle.Static, &logos.Static)
	if err != nil {
		return OverlayPlan{}, err
	}
	plan.Instructions = append(plan.Instructions, st)

	if kind == SegmentMiddle {
		return plan, nil
	}

	an, err := planAnimated(outW, outH, &bundle.Animated, &logos.Animated)
	if err != nil {
		return OverlayPlan{}, err
	}
	plan.Instructions = append(plan.Instructions, an)
	return plan, nil
}

func planStatic(outW, outH int, logo *assets.Logo, cfg *config.StaticLogo) (OverlayInstruction, error) {
	w, h := scaleLogo(logo.Info.Width, logo.Info.Height, cfg.Width, cfg.Height, cfg.Scale)

	inst := OverlayInstruction{
		Asset:   AssetStatic,
		Path:    logo.Path,
		X:       cfg.Position[0],
		Y:       cfg.Position[1],
		Width:   w,
		Height:  h,
		Opacity: cfg.Opacity,
	}
	if err := checkGeometry(inst, outW, outH); err != nil {
		return OverlayInstruction{}, err
	}
	return inst, nil
}

func planAnimated(outW, outH int, logo *assets.Logo, cfg *config.AnimatedLogo) (OverlayInstruction, error) {
	w, h := scaleLogo(logo.Info.Width, logo.Info.Height, cfg.Width, cfg.Height, cfg.Scale)

	// The symbolic anchor resolves against the output frame, not the logo:
	// horizontally centered, bottom edge BottomMargin px above the frame's.
	pos, err := config.ParsePosition(cfg.Position)
	if err != nil {
		return OverlayInstruction{}, err
	}
	x, y := pos.X, pos.Y
	if pos.Centered {
		x = (outW - w) / 2
		y = outH - cfg.BottomMargin - h
	}

	inst := OverlayInstruction{
		Asset:   AssetAnimated,
		Path:    logo.Path,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Opacity: cfg.Opacity,
	}
	if err := checkGeometry(inst, outW, outH); err != nil {
		return OverlayInstruction{}, err
	}
	return inst, nil
}

// scaleLogo resolves the target overlay size from the asset's native size
// and the configured width/height. With both set, both are honored; with
// one set, the other is derived from the native aspect ratio. The scale
// factor multiplies the result.
func scaleLogo(nativeW, nativeH, cfgW, cfgH int, scale float64) (int, int) {
	w, h := cfgW, cfgH
	switch {
	case w > 0 && h > 0:
		// explicit
	case w > 0:
		h = roundRatio(nativeH, w, nativeW)
	default:
		w = roundRatio(nativeW, h, nativeH)
	}
	if scale != 1.0 {
		w = int(math.Round(float64(w) * scale))
		h = int(math.Round(float64(h) * scale))
	}
	return w, h
}

// roundRatio returns base * num / den rounded to nearest, guarding den == 0.
func roundRatio(base, num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(float64(base) * float64(num) / float64(den)))
}

func checkGeometry(inst OverlayInstruction, outW, outH int) error {
	if inst.Width <= 0 || inst.Height <= 0 {
		return fmt.Errorf("%w: %s logo resolves to %dx%d", ErrInvalidGeometry, inst.Asset, inst.Width, inst.Height)
	}
	if inst.X < 0 || inst.Y < 0 || inst.X+inst.Width > outW || inst.Y+inst.Height > outH {
		return fmt.Errorf("%w: %s logo %dx%d at (%d,%d) exceeds %dx%d frame",
			ErrInvalidGeometry, inst.Asset, inst.Width, inst.Height, inst.X, inst.Y, outW, outH)
	}
	return nil
}

// String returns the lowercase asset name for error messages and logs.
func (a AssetKind) String() string {
	if a == AssetAnimated {
		return "animated"
	}
	return "static"
}
