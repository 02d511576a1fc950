package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// AssetInfo is the probed geometry of an overlay asset. Duration is 0 for
// still images.
type AssetInfo struct {
	Width    int
	Height   int
	Duration float64
}

// ProbeAsset introspects a logo asset. Unlike Probe it accepts still images
// (ffprobe reports them as a single video stream with no duration); it only
// requires positive dimensions.
func ProbeAsset(ctx context.Context, path string) (*AssetInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe asset %q: %w", path, err)
	}
	return ParseAssetJSON(path, out)
}

// ParseAssetJSON converts raw ffprobe JSON output into an AssetInfo.
// Exported for testing without a real ffprobe binary.
func ParseAssetJSON(path string, data []byte) (*AssetInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON for %q: %w", path, err)
	}

	info := &AssetInfo{Duration: parseFloat(raw.Format.Duration)}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" {
			continue
		}
		info.Width = s.Width
		info.Height = s.Height
		if info.Duration <= 0 {
			info.Duration = parseFloat(s.Duration)
		}
		break
	}

	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("asset %q has no usable image or video stream", path)
	}
	return info, nil
}
