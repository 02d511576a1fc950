// Package compose is the composition engine: it turns a segment plus its
// overlay plan into a concrete encoder invocation, rejoins the rendered
// segments losslessly, and validates the final file.
package compose

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/ffmpeg"
	"github.com/BigAddict/VideoEditor/internal/planner"
	"github.com/BigAddict/VideoEditor/internal/probe"
)

// Failure classes reported to the scheduler. None are swallowed here; the
// retry decision belongs to the scheduler alone.
var (
	ErrEncodeFailed = errors.New("encoder invocation failed")
	ErrAssetMissing = errors.New("overlay asset missing or unreadable")
	ErrTransientIO  = errors.New("transient resource condition")
	ErrCorrupt      = errors.New("output failed validation")
)

// durationTolerance is the maximum deviation between the joined output's
// probed duration and the expected total before the file is declared corrupt.
const durationTolerance = 1.0

// Engine renders and joins branded segments inside a per-job working
// directory owned by the caller.
type Engine struct {
	settings *config.Settings
	probeFn  func(ctx context.Context, path string) (*probe.VideoDescriptor, error)
}

// New returns an Engine bound to the settings snapshot.
func New(s *config.Settings) *Engine {
	return &Engine{settings: s, probeFn: probe.Probe}
}

// Render encodes one segment of src with its overlay plan applied, writing
// <kind>.mp4 into workDir and returning its path.
func (e *Engine) Render(ctx context.Context, workDir string, src *probe.VideoDescriptor, seg planner.Segment, ov planner.OverlayPlan) (string, error) {
	outPath := filepath.Join(workDir, seg.Kind.String()+".mp4")

	args := ffmpeg.BuildRender(e.settings, src.Path, seg, ov, src.HasAudio, outPath)
	res := ffmpeg.Execute(ctx, args, false)
	if res.Err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("render %s: %w: %s", seg.Kind, renderFailure(res.Stderr), stderrTail(res.Stderr))
	}

	fi, err := os.Stat(outPath)
	if err != nil || fi.Size() == 0 {
		os.Remove(outPath)
		return "", fmt.Errorf("render %s: %w: empty output", seg.Kind, ErrEncodeFailed)
	}
	return outPath, nil
}

// Join concatenates the rendered segments with stream copy, preserving the
// order given (intro, middle, outro regardless of render completion order).
// Returns the path of the joined file inside workDir.
func (e *Engine) Join(ctx context.Context, workDir string, parts []string) (string, error) {
	listPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatList(listPath, parts); err != nil {
		return "", fmt.Errorf("join: %w", err)
	}

	outPath := filepath.Join(workDir, "joined.mp4")
	res := ffmpeg.Execute(ctx, ffmpeg.BuildConcat(listPath, outPath), false)
	if res.Err != nil {
		os.Remove(outPath)
		// A segment temp file missing at join time is attempt-local, not
		// a structural asset problem, so only the transient class is
		// distinguished here.
		werr := ErrEncodeFailed
		if ffmpeg.MatchTransientIO(res.Stderr) {
			werr = ErrTransientIO
		}
		return "", fmt.Errorf("join: %w: %s", werr, stderrTail(res.Stderr))
	}
	return outPath, nil
}

// Validate re-probes the joined output and rejects it when unreadable or
// when its duration deviates from the expected total by more than the
// tolerance.
func (e *Engine) Validate(ctx context.Context, path string, wantDuration float64) error {
	d, err := e.probeFn(ctx, path)
	if err != nil {
		return fmt.Errorf("validate %q: %w: %v", filepath.Base(path), ErrCorrupt, err)
	}
	if diff := math.Abs(d.Duration - wantDuration); diff > durationTolerance {
		return fmt.Errorf("validate %q: %w: duration %.2fs, expected %.2fs",
			filepath.Base(path), ErrCorrupt, d.Duration, wantDuration)
	}
	return nil
}

// renderFailure maps an encoder failure's stderr onto the failure class the
// scheduler's retry decision consumes: structural missing input, transient
// resource conditions, and plain encode failure.
func renderFailure(stderr string) error {
	switch {
	case ffmpeg.MatchMissingInput(stderr):
		return ErrAssetMissing
	case ffmpeg.MatchTransientIO(stderr):
		return ErrTransientIO
	default:
		return ErrEncodeFailed
	}
}

// writeConcatList writes the ffmpeg concat demuxer list file. Paths are
// absolute so -safe 0 input resolution never depends on the cwd.
func writeConcatList(listPath string, parts []string) error {
	var b strings.Builder
	for _, p := range parts {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		// The concat demuxer quotes with single quotes; escape embedded ones.
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return os.WriteFile(listPath, []byte(b.String()), 0o644)
}

// stderrTail returns the last non-empty stderr line for compact error
// messages; full output is available to the executor's tee mode.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return "no encoder output"
}
