// Package probe wraps ffprobe introspection: a single JSON call per file,
// parsed into the descriptor the rest of the pipeline consumes.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnreadable marks files ffprobe cannot parse as video: missing, corrupt,
// no video stream, or non-positive duration. Structurally unrecoverable.
var ErrUnreadable = errors.New("not a readable video")

// Probe runs a single ffprobe JSON call against path and returns the parsed
// descriptor.
func Probe(ctx context.Context, path string) (*VideoDescriptor, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w: %v", path, ErrUnreadable, err)
	}

	return ParseJSON(path, out)
}

// ParseJSON converts raw ffprobe JSON output into a VideoDescriptor.
// Exported for testing without a real ffprobe binary.
func ParseJSON(path string, data []byte) (*VideoDescriptor, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON for %q: %w", path, err)
	}
	return buildDescriptor(path, &raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ffprobeStream struct {
	CodecType    string         `json:"codec_type"`
	CodecName    string         `json:"codec_name"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Duration     string         `json:"duration"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	Disposition  map[string]int `json:"disposition"`
}

// --- Conversion from wire types to the domain descriptor ---

func buildDescriptor(path string, raw *ffprobeOutput) (*VideoDescriptor, error) {
	d := &VideoDescriptor{
		Path:     path,
		Duration: parseFloat(raw.Format.Duration),
		Size:     parseInt64(raw.Format.Size),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			// Cover art embedded in audio files shows up as an attached pic.
			if s.Disposition["attached_pic"] == 1 {
				continue
			}
			if d.Width == 0 {
				d.Width = s.Width
				d.Height = s.Height
				d.FPS = parseFrameRate(s.AvgFrameRate)
				if d.Duration <= 0 {
					d.Duration = parseFloat(s.Duration)
				}
			}
		case "audio":
			d.HasAudio = true
		}
	}

	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%q: no video stream: %w", path, ErrUnreadable)
	}
	if d.Duration <= 0 {
		return nil, fmt.Errorf("%q: non-positive duration: %w", path, ErrUnreadable)
	}
	return d, nil
}

// parseFrameRate converts ffprobe's rational frame rate ("30000/1001") to a
// float. Returns 0 for missing or degenerate values ("0/0").
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

// ffprobe returns numbers as strings.

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
