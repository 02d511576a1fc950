// Command videobrand is the folder-watching branding daemon: it picks up
// videos dropped into the input directory, stamps the configured logo
// overlays onto them, and files the results away.
//
// It parses flags, loads and validates settings, and either runs system
// diagnostics (--check) or the watch/process loop until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/BigAddict/VideoEditor/internal/assets"
	"github.com/BigAddict/VideoEditor/internal/check"
	"github.com/BigAddict/VideoEditor/internal/compose"
	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/lifecycle"
	"github.com/BigAddict/VideoEditor/internal/logging"
	"github.com/BigAddict/VideoEditor/internal/pipeline"
	"github.com/BigAddict/VideoEditor/internal/watch"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

const settingsEnv = "VIDEOBRAND_SETTINGS"

func main() {
	os.Exit(run())
}

func run() int {
	// Bootstrap: the logger doesn't exist yet, so errors go directly to
	// stderr. Once logging.New succeeds, all output goes through it.
	_ = godotenv.Load()

	settingsPath := flag.String("settings", defaultSettingsPath(), "path to the settings JSON file")
	checkOnly := flag.Bool("check", false, "run system diagnostics and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("videobrand v%s (%s)\n", version, commit)
		return 0
	}

	settings, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "videobrand: %v\n", err)
		return 1
	}

	log, err := logging.New(&settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "videobrand: %v\n", err)
		return 1
	}
	defer log.Close()

	if *checkOnly {
		check.RunCheck(&settings, log)
		return 0
	}

	log.Info("=== videobrand v%s (%s) ===", version, commit)
	log.Info("In:  %s", settings.VideoProcessing.InputDir)
	log.Info("Out: %s", settings.VideoProcessing.OutputDir)

	// Fail fast if ffmpeg/ffprobe or the configured encoders are unusable;
	// every job would otherwise fail the same way.
	if err := check.CheckDeps(&settings); err != nil {
		log.Error("%v", err)
		return 1
	}

	vp := &settings.VideoProcessing
	for _, dir := range []string{vp.InputDir, vp.OutputDir, vp.ProcessedDir, vp.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("Cannot create directory %s: %v", dir, err)
			return 1
		}
	}

	// Cancel on SIGINT/SIGTERM so running jobs stop cleanly and their
	// sources stay in the input directory for the next run.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, shutting down…")
		cancel()
	}()

	// Both logo assets must resolve before any job runs.
	bundle, err := assets.Resolve(ctx, &settings.Logos)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	log.Info("static logo: %s (%dx%d)", bundle.Static.Path, bundle.Static.Info.Width, bundle.Static.Info.Height)
	log.Info("animated logo: %s (%dx%d, %.1fs)", bundle.Animated.Path,
		bundle.Animated.Info.Width, bundle.Animated.Info.Height, bundle.Animated.Info.Duration)

	finalizer, err := lifecycle.New(&settings, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	sched := pipeline.New(&settings, log, bundle, compose.New(&settings), finalizer)
	sched.Start(ctx)

	watcher := watch.New(vp.InputDir, log, sched.Submit)
	if err := watcher.Run(ctx); err != nil {
		log.Error("%v", err)
		cancel()
		sched.Wait()
		return 1
	}

	sched.Wait()
	stats := sched.Snapshot()
	log.Info("done: %d submitted, %d succeeded, %d failed, %d cancelled, %d retries",
		stats.Submitted, stats.Succeeded, stats.Failed, stats.Cancelled, stats.Retries)
	if stats.Failed > 0 {
		return 1
	}
	return 0
}

// defaultSettingsPath honors the environment override so deployments can
// point at a shared settings file without flags.
func defaultSettingsPath() string {
	if p := os.Getenv(settingsEnv); p != "" {
		return p
	}
	return "settings.json"
}
