// Package assets resolves the two logo overlay assets at startup: both must
// exist and be readable, and their geometry is captured once for the overlay
// planner. A missing asset is a startup-class failure since it would fail
// every job identically.
package assets

import (
	"context"
	"fmt"
	"os"

	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/probe"
)

// Logo pairs an asset path with its probed geometry.
type Logo struct {
	Path string
	Info probe.AssetInfo
}

// Bundle holds both resolved logos.
type Bundle struct {
	Static   Logo // Still image, fixed top-left placement.
	Animated Logo // Clip, bottom-center placement on intro/outro.
}

// Resolve verifies both configured logo assets and probes their geometry.
func Resolve(ctx context.Context, logos *config.LogoConfig) (*Bundle, error) {
	st, err := resolveOne(ctx, logos.Static.File)
	if err != nil {
		return nil, fmt.Errorf("static logo: %w", err)
	}
	an, err := resolveOne(ctx, logos.Animated.File)
	if err != nil {
		return nil, fmt.Errorf("animated logo: %w", err)
	}
	return &Bundle{Static: st, Animated: an}, nil
}

func resolveOne(ctx context.Context, path string) (Logo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Logo{}, fmt.Errorf("asset not found: %q", path)
	}
	if fi.IsDir() {
		return Logo{}, fmt.Errorf("asset %q is a directory", path)
	}

	info, err := probe.ProbeAsset(ctx, path)
	if err != nil {
		return Logo{}, err
	}
	return Logo{Path: path, Info: *info}, nil
}
