// Package config holds the settings model: JSON file loading, defaults, and
// load-time validation. Settings are read once at startup and treated as an
// immutable snapshot; nothing re-reads configuration mid-run.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// --- Enum types for validated string fields ---

// NamingPolicy selects how output filenames are generated.
type NamingPolicy string

const (
	NamingTimestamp  NamingPolicy = "timestamp"  // <stem>_branded_<YYYYMMDD_HHMMSS>.mp4 (default).
	NamingSequential NamingPolicy = "sequential" // <stem>_branded_NNN.mp4 from a durable counter.
	NamingSimple     NamingPolicy = "simple"     // <stem>_branded.mp4.
)

// LogLevel gates debug output.
type LogLevel string

const (
	LogInfo  LogLevel = "info"  // Default.
	LogDebug LogLevel = "debug" // Enables Debug lines.
)

// Settings is the validated, immutable snapshot of all tunables. The JSON
// shape mirrors settings.json section by section.
type Settings struct {
	VideoProcessing VideoProcessing `json:"video_processing"`
	Logos           LogoConfig      `json:"logo_configuration"`
	Output          OutputSettings  `json:"output_settings"`
	Quality         QualitySettings `json:"quality_settings"`
	Performance     Performance     `json:"performance_settings"`
	FileManagement  FileManagement  `json:"file_management"`
	Advanced        Advanced        `json:"advanced_settings"`
}

// VideoProcessing controls segmentation and working paths.
type VideoProcessing struct {
	InputDir      string  `json:"input_dir"`          // Default: "input".
	OutputDir     string  `json:"output_dir"`         // Default: "output".
	ProcessedDir  string  `json:"processed_dir"`      // Default: "processed".
	FailedDir     string  `json:"failed_dir"`         // Optional; empty leaves failed sources in place.
	TempDir       string  `json:"temp_dir"`           // Default: "temp". Per-job subtrees live under it.
	IntroDuration float64 `json:"intro_duration"`     // Seconds. Required, >= 0.
	OutroDuration float64 `json:"outro_duration"`     // Seconds. Required, >= 0.
	MinDuration   float64 `json:"min_video_duration"` // Default: 6.
}

// LogoConfig holds both overlay assets.
type LogoConfig struct {
	Static   StaticLogo   `json:"static_logo"`
	Animated AnimatedLogo `json:"animated_logo"`
}

// StaticLogo is the image overlay applied to every segment, anchored at an
// absolute offset from the top-left corner.
type StaticLogo struct {
	File     string  `json:"file"`     // Default: "assets/static_logo.png".
	Width    int     `json:"width"`    // Optional; 0 derives width from aspect ratio.
	Height   int     `json:"height"`   // Default: 80.
	Position [2]int  `json:"position"` // [x, y] from top-left. Default: [20, 20].
	Opacity  float64 `json:"opacity"`  // Default: 1.0.
	Scale    float64 `json:"scale"`    // Multiplier on Height. Default: 1.0.
}

// AnimatedLogo is the clip overlay applied to intro and outro segments.
// Position is either the symbolic "center" (horizontally centered, anchored
// BottomMargin px above the bottom edge) or an explicit "[x,y]".
type AnimatedLogo struct {
	File         string  `json:"file"`          // Default: "assets/video_logo.mp4".
	Width        int     `json:"width"`         // Optional; 0 derives width from aspect ratio.
	Height       int     `json:"height"`        // Default: 100.
	Position     string  `json:"position"`      // "center" or "[x,y]". Default: "center".
	BottomMargin int     `json:"bottom_margin"` // Default: 120. Ignored for explicit positions.
	Opacity      float64 `json:"opacity"`       // Default: 1.0.
	Scale        float64 `json:"scale"`         // Multiplier on Height. Default: 1.0.
}

// OutputSettings selects codecs and rate control for segment renders.
type OutputSettings struct {
	VideoCodec   string  `json:"video_codec"`   // Default: "libx264".
	AudioCodec   string  `json:"audio_codec"`   // Default: "aac".
	FPS          float64 `json:"fps"`           // 0 keeps the source frame rate.
	Preset       string  `json:"preset"`        // Optional, e.g. "medium".
	CRF          int     `json:"crf"`           // 0 omits; 1-51 passed through.
	Bitrate      string  `json:"bitrate"`       // Optional, e.g. "4M".
	AudioBitrate string  `json:"audio_bitrate"` // Optional, e.g. "192k".
}

// QualitySettings holds encoder tuning and the hardware-acceleration switch.
type QualitySettings struct {
	Threads             int    `json:"threads"`     // 0 lets ffmpeg decide.
	BufferSize          string `json:"buffer_size"` // Optional -bufsize value.
	EnableHardwareAccel bool   `json:"enable_hardware_acceleration"`
	GPUCodec            string `json:"gpu_codec"` // Default: "h264_nvenc". Used when hw accel is on.
}

// Performance bounds concurrency and memory.
type Performance struct {
	MaxConcurrent      int   `json:"max_concurrent_processes"` // Default: 1.
	ParallelProcessing bool  `json:"parallel_processing"`      // Segment-level render parallelism.
	MemoryLimitMB      int64 `json:"memory_limit_mb"`          // Default: 2048.
	CleanupTempFiles   bool  `json:"cleanup_temp_files"`       // Default: true. False retains per-job temp dirs.
}

// FileManagement controls naming and source disposal.
type FileManagement struct {
	OutputNaming  NamingPolicy `json:"output_naming"`  // Default: "timestamp".
	DeleteSource  bool         `json:"delete_source"`  // Default: false (move to processed_dir).
	PreserveAudio bool         `json:"preserve_audio"` // Default: true.
}

// Advanced holds retry policy, validation, and logging knobs.
type Advanced struct {
	RetryFailed      bool     `json:"retry_failed_processing"` // Default: true.
	MaxRetryAttempts int      `json:"max_retry_attempts"`      // Default: 3.
	ValidateOutput   bool     `json:"validate_output"`         // Default: true.
	LogLevel         LogLevel `json:"log_level"`               // Default: "info".
	LogFile          string   `json:"log_file"`                // Optional log file path.
}

// DefaultSettings returns a Settings with every field at its documented
// default. Used as the base before Load applies the settings file on top.
func DefaultSettings() Settings {
	return Settings{
		VideoProcessing: VideoProcessing{
			InputDir:      "input",
			OutputDir:     "output",
			ProcessedDir:  "processed",
			TempDir:       "temp",
			IntroDuration: 3,
			OutroDuration: 3,
			MinDuration:   6,
		},
		Logos: LogoConfig{
			Static: StaticLogo{
				File:     "assets/static_logo.png",
				Height:   80,
				Position: [2]int{20, 20},
				Opacity:  1.0,
				Scale:    1.0,
			},
			Animated: AnimatedLogo{
				File:         "assets/video_logo.mp4",
				Height:       100,
				Position:     "center",
				BottomMargin: 120,
				Opacity:      1.0,
				Scale:        1.0,
			},
		},
		Output: OutputSettings{
			VideoCodec: "libx264",
			AudioCodec: "aac",
		},
		Quality: QualitySettings{
			GPUCodec: "h264_nvenc",
		},
		Performance: Performance{
			MaxConcurrent:    1,
			MemoryLimitMB:    2048,
			CleanupTempFiles: true,
		},
		FileManagement: FileManagement{
			OutputNaming:  NamingTimestamp,
			PreserveAudio: true,
		},
		Advanced: Advanced{
			RetryFailed:      true,
			MaxRetryAttempts: 3,
			ValidateOutput:   true,
			LogLevel:         LogInfo,
		},
	}
}

// RetryBudget returns the number of retries allowed for recoverable
// failures: 0 when retries are disabled, MaxRetryAttempts otherwise.
func (s *Settings) RetryBudget() int {
	if !s.Advanced.RetryFailed {
		return 0
	}
	return s.Advanced.MaxRetryAttempts
}

// Validate checks every tunable once at load time so failures surface at
// startup instead of mid-pipeline.
func (s *Settings) Validate() error {
	vp := &s.VideoProcessing
	if vp.IntroDuration < 0 {
		return errors.New("video_processing.intro_duration must be >= 0")
	}
	if vp.OutroDuration < 0 {
		return errors.New("video_processing.outro_duration must be >= 0")
	}
	if vp.MinDuration < 0 {
		return errors.New("video_processing.min_video_duration must be >= 0")
	}
	if vp.InputDir == "" || vp.OutputDir == "" {
		return errors.New("video_processing.input_dir and output_dir must not be empty")
	}

	if err := validateStaticLogo(&s.Logos.Static); err != nil {
		return err
	}
	if err := validateAnimatedLogo(&s.Logos.Animated); err != nil {
		return err
	}

	if s.Output.CRF < 0 || s.Output.CRF > 51 {
		return fmt.Errorf("output_settings.crf %d out of range 0-51", s.Output.CRF)
	}
	if s.Output.FPS < 0 {
		return errors.New("output_settings.fps must be >= 0")
	}
	if s.Output.VideoCodec == "" {
		return errors.New("output_settings.video_codec must not be empty")
	}

	if s.Quality.Threads < 0 {
		return errors.New("quality_settings.threads must be >= 0")
	}
	if s.Quality.EnableHardwareAccel && s.Quality.GPUCodec == "" {
		return errors.New("quality_settings.gpu_codec required when hardware acceleration is enabled")
	}

	if s.Performance.MaxConcurrent < 1 {
		return errors.New("performance_settings.max_concurrent_processes must be >= 1")
	}
	if s.Performance.MemoryLimitMB <= 0 {
		return errors.New("performance_settings.memory_limit_mb must be > 0")
	}

	switch s.FileManagement.OutputNaming {
	case NamingTimestamp, NamingSequential, NamingSimple:
		// valid
	default:
		return fmt.Errorf("file_management.output_naming %q invalid (use 'timestamp', 'sequential' or 'simple')", s.FileManagement.OutputNaming)
	}

	if s.Advanced.MaxRetryAttempts < 0 {
		return errors.New("advanced_settings.max_retry_attempts must be >= 0")
	}
	switch s.Advanced.LogLevel {
	case LogInfo, LogDebug:
		// valid
	default:
		return fmt.Errorf("advanced_settings.log_level %q invalid (use 'info' or 'debug')", s.Advanced.LogLevel)
	}

	return nil
}

func validateStaticLogo(l *StaticLogo) error {
	if l.File == "" {
		return errors.New("logo_configuration.static_logo.file must not be empty")
	}
	if l.Opacity < 0 || l.Opacity > 1 {
		return fmt.Errorf("logo_configuration.static_logo.opacity %.2f out of range 0-1", l.Opacity)
	}
	if l.Scale <= 0 {
		return errors.New("logo_configuration.static_logo.scale must be > 0")
	}
	if l.Width < 0 || l.Height < 0 {
		return errors.New("logo_configuration.static_logo dimensions must be >= 0")
	}
	if l.Width == 0 && l.Height == 0 {
		return errors.New("logo_configuration.static_logo needs width or height")
	}
	if l.Position[0] < 0 || l.Position[1] < 0 {
		return errors.New("logo_configuration.static_logo.position must be non-negative")
	}
	return nil
}

func validateAnimatedLogo(l *AnimatedLogo) error {
	if l.File == "" {
		return errors.New("logo_configuration.animated_logo.file must not be empty")
	}
	if l.Opacity < 0 || l.Opacity > 1 {
		return fmt.Errorf("logo_configuration.animated_logo.opacity %.2f out of range 0-1", l.Opacity)
	}
	if l.Scale <= 0 {
		return errors.New("logo_configuration.animated_logo.scale must be > 0")
	}
	if l.Width < 0 || l.Height < 0 {
		return errors.New("logo_configuration.animated_logo dimensions must be >= 0")
	}
	if l.Width == 0 && l.Height == 0 {
		return errors.New("logo_configuration.animated_logo needs width or height")
	}
	if _, err := ParsePosition(l.Position); err != nil {
		return fmt.Errorf("logo_configuration.animated_logo.position: %w", err)
	}
	if l.BottomMargin < 0 {
		return errors.New("logo_configuration.animated_logo.bottom_margin must be >= 0")
	}
	return nil
}

// Position is the tagged variant for overlay placement: either an absolute
// [x,y] offset or the symbolic centered anchor resolved against the output
// frame by the overlay planner.
type Position struct {
	Centered bool
	X, Y     int
}

// ParsePosition parses the animated logo position field. Accepted forms:
// "center" (or empty, which defaults to centered) and "[x,y]".
func ParsePosition(raw string) (Position, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" || s == "center" {
		return Position{Centered: true}, nil
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("invalid position %q (use 'center' or '[x,y]')", raw)
	}
	x, errX := parseNonNegInt(parts[0])
	y, errY := parseNonNegInt(parts[1])
	if errX != nil || errY != nil {
		return Position{}, fmt.Errorf("invalid position %q (use 'center' or '[x,y]')", raw)
	}
	return Position{X: x, Y: y}, nil
}

func parseNonNegInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative")
	}
	return n, nil
}
