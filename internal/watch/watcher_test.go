package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BigAddict/VideoEditor/internal/logging"
)

func TestIsVideoFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"clip.mp4", true},
		{"CLIP.MP4", true},
		{"a/b/movie.mkv", true},
		{"clip.webm", true},
		{"clip.txt", false},
		{"clip.mp4.part", false},
		{"noext", false},
		{".mp4", true},
	}
	for _, tc := range cases {
		if got := IsVideoFile(tc.path); got != tc.want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

// collectSubmits runs a watcher over dir and gathers submitted paths until
// the deadline passes.
func collectSubmits(t *testing.T, dir string, after func(), window time.Duration) []string {
	t.Helper()
	got := make(chan string, 16)
	w := New(dir, logging.Discard(), func(path string) bool {
		got <- path
		return true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	if after != nil {
		after()
	}

	var paths []string
	deadline := time.After(window)
	for {
		select {
		case p := <-got:
			paths = append(paths, p)
		case <-deadline:
			cancel()
			if err := <-errc; err != nil {
				t.Fatalf("watcher: %v", err)
			}
			return paths
		}
	}
}

func TestInitialScanSubmitsExistingVideos(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"b.mp4":      "data",
		"a.mkv":      "data",
		"notes.txt":  "ignored",
		"frame.jpeg": "ignored",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths := collectSubmits(t, dir, nil, 5*time.Second)
	if len(paths) != 2 {
		t.Fatalf("submitted %v, want the two videos", paths)
	}
	// Scan order is name order.
	if filepath.Base(paths[0]) != "a.mkv" || filepath.Base(paths[1]) != "b.mp4" {
		t.Fatalf("submitted %v, want [a.mkv b.mp4]", paths)
	}
}

func TestWatcherPicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	paths := collectSubmits(t, dir, func() {
		time.Sleep(200 * time.Millisecond) // Let the watch establish.
		if err := os.WriteFile(filepath.Join(dir, "new.mp4"), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}, 5*time.Second)

	if len(paths) == 0 {
		t.Fatal("new file never submitted")
	}
	for _, p := range paths {
		if filepath.Base(p) != "new.mp4" {
			t.Fatalf("unexpected submit %s", p)
		}
	}
}

func TestEmptyFileNeverSubmitted(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.mp4"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	paths := collectSubmits(t, dir, nil, 3*time.Second)
	if len(paths) != 0 {
		t.Fatalf("empty file submitted: %v", paths)
	}
}

func TestGrowingFileWaitsForSettle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copying.mp4")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Simulate a slow copy: grow for ~1.5s, then stop.
		for i := 0; i < 5; i++ {
			if _, err := f.WriteString("chunk"); err != nil {
				return
			}
			time.Sleep(300 * time.Millisecond)
		}
		f.Close()
	}()

	paths := collectSubmits(t, dir, func() { <-done }, 6*time.Second)
	if len(paths) == 0 {
		t.Fatal("settled file never submitted")
	}
}
