// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe, and the configured
// encoders.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/BigAddict/VideoEditor/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrEncoderFailed   = errors.New("video encoder test failed")
	ErrGPUEncodeFailed = errors.New("GPU acceleration enabled but the GPU codec test encode failed")
)

// Logger is the minimal logging interface needed by RunCheck. Defined here
// (rather than importing the logging package) so that check stays
// dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of ffmpeg,
// ffprobe, the configured video and audio codecs, and the GPU codec when
// hardware acceleration is enabled. Informational only.
func RunCheck(s *config.Settings, log Logger) {
	log.Info("=== System Check ===")

	checkFfmpeg(log)
	checkFfprobe(log)
	checkVideoCodec(s.Output.VideoCodec, log)
	checkAudioCodec(s.Output.AudioCodec, log)
	if s.Quality.EnableHardwareAccel {
		checkVideoCodec(s.Quality.GPUCodec, log)
	}
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(log Logger) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Error("ffmpeg not found")
		return
	}
	cmd := exec.Command("ffmpeg", "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s", firstLine)
}

func checkFfprobe(log Logger) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		log.Error("ffprobe not found")
		return
	}
	log.Success("ffprobe: found")
}

func checkVideoCodec(codec string, log Logger) {
	log.Info("Testing %s...", codec)
	if runSilent("ffmpeg", videoTestArgs(codec)...) {
		log.Success("%s works", codec)
	} else {
		log.Error("%s test encode failed", codec)
	}
}

func checkAudioCodec(codec string, log Logger) {
	log.Info("Testing %s...", codec)
	if runSilent("ffmpeg",
		"-hide_banner", "-nostdin",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", codec, "-f", "null", "-",
	) {
		log.Success("%s works", codec)
	} else {
		log.Error("%s encoder test failed", codec)
	}
}

// CheckDeps is the pre-pipeline validation: ffmpeg and ffprobe must be on
// PATH and the configured video codec must pass a short test encode. With
// hardware acceleration enabled the GPU codec is tested too, since a bad
// driver would otherwise fail every single job the same way at render time.
// Returns a sentinel error on failure.
func CheckDeps(s *config.Settings) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}

	if !runSilent("ffmpeg", videoTestArgs(s.Output.VideoCodec)...) {
		return ErrEncoderFailed
	}
	if s.Quality.EnableHardwareAccel {
		if !runSilent("ffmpeg", videoTestArgs(s.Quality.GPUCodec)...) {
			return ErrGPUEncodeFailed
		}
	}
	return nil
}

// --- internal helpers ---

// videoTestArgs returns the ffmpeg arguments for a minimal test encode with
// the given codec. Shared by RunCheck and CheckDeps to keep the two paths
// honest about what "works" means.
func videoTestArgs(codec string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", codec,
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
