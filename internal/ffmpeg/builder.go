// Package ffmpeg builds and executes the external encoder commands: segment
// renders with overlay filter graphs, and the lossless concat that rejoins
// them.
package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/planner"
)

// BuildRender constructs the ffmpeg argument slice for one segment render:
// time-range extraction, overlay compositing per the plan, and codec options
// from settings. The overlay assets follow the source as inputs 1..n in
// instruction order.
func BuildRender(s *config.Settings, src string, seg planner.Segment, ov planner.OverlayPlan, hasAudio bool, outPath string) []string {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Inputs: trimmed source, then one input per overlay asset ---
	args = append(args,
		"-ss", formatSeconds(seg.Start),
		"-t", formatSeconds(seg.Duration()),
		"-i", src,
	)
	for _, inst := range ov.Instructions {
		args = append(args, "-i", inst.Path)
	}

	// --- Overlay filter graph ---
	args = append(args, "-filter_complex", BuildFilterGraph(ov), "-map", "[vout]")

	// --- Audio ---
	if hasAudio && s.FileManagement.PreserveAudio {
		args = append(args, "-map", "0:a?", "-c:a", s.Output.AudioCodec)
		if s.Output.AudioBitrate != "" {
			args = append(args, "-b:a", s.Output.AudioBitrate)
		}
	} else {
		args = append(args, "-an")
	}

	// --- Video codec ---
	args = appendVideoCodec(args, s)

	args = append(args, outPath)
	return args
}

// BuildFilterGraph renders the overlay plan as a filter_complex expression.
// Each instruction becomes a scale (plus an alpha mix when opacity < 1)
// feeding an overlay at its resolved pixel position; eof_action=repeat keeps
// the last logo frame on screen when an asset is shorter than the segment.
func BuildFilterGraph(ov planner.OverlayPlan) string {
	var b strings.Builder
	prev := "[0:v]"

	for i, inst := range ov.Instructions {
		logoIn := fmt.Sprintf("[%d:v]", i+1)
		logoOut := fmt.Sprintf("[logo%d]", i)

		b.WriteString(logoIn)
		fmt.Fprintf(&b, "scale=%d:%d", inst.Width, inst.Height)
		if inst.Opacity < 1.0 {
			fmt.Fprintf(&b, ",format=rgba,colorchannelmixer=aa=%.2f", inst.Opacity)
		}
		b.WriteString(logoOut)
		b.WriteString(";")

		out := fmt.Sprintf("[ov%d]", i)
		if i == len(ov.Instructions)-1 {
			out = "[vout]"
		}
		fmt.Fprintf(&b, "%s%soverlay=%d:%d:eof_action=repeat%s", prev, logoOut, inst.X, inst.Y, out)
		if i != len(ov.Instructions)-1 {
			b.WriteString(";")
		}
		prev = out
	}
	return b.String()
}

// appendVideoCodec adds the encoder selection and rate-control arguments.
// Hardware acceleration swaps the configured GPU codec in for the CPU one.
func appendVideoCodec(args []string, s *config.Settings) []string {
	codec := s.Output.VideoCodec
	if s.Quality.EnableHardwareAccel {
		codec = s.Quality.GPUCodec
	}
	args = append(args, "-c:v", codec)

	if s.Output.Preset != "" {
		args = append(args, "-preset", s.Output.Preset)
	}
	if s.Output.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(s.Output.CRF))
	}
	if s.Output.Bitrate != "" {
		args = append(args, "-b:v", s.Output.Bitrate)
	}
	if s.Output.FPS > 0 {
		args = append(args, "-r", formatSeconds(s.Output.FPS))
	}
	if s.Quality.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(s.Quality.Threads))
	}
	if s.Quality.BufferSize != "" {
		args = append(args, "-bufsize", s.Quality.BufferSize)
	}
	return args
}

// BuildConcat constructs the lossless concat command: the segment outputs
// listed in listPath are stitched with stream copy, no re-encode.
func BuildConcat(listPath, outPath string) []string {
	return []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
}

// formatSeconds prints a float without trailing zeros ("3", "7.5", "0.04").
func formatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
