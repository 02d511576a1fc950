package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/logging"
	"github.com/BigAddict/VideoEditor/internal/pipeline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	root := t.TempDir()
	s := config.DefaultSettings()
	s.VideoProcessing.InputDir = filepath.Join(root, "input")
	s.VideoProcessing.OutputDir = filepath.Join(root, "output")
	s.VideoProcessing.ProcessedDir = filepath.Join(root, "processed")
	s.VideoProcessing.TempDir = filepath.Join(root, "temp")
	s.FileManagement.OutputNaming = config.NamingSimple
	return &s
}

func succeededJob(t *testing.T, s *config.Settings) *pipeline.Job {
	t.Helper()
	job := pipeline.NewJob(filepath.Join(s.VideoProcessing.InputDir, "clip.mp4"))
	writeFile(t, job.SourcePath, "source")
	job.JoinedPath = filepath.Join(s.VideoProcessing.TempDir, "joined.mp4")
	writeFile(t, job.JoinedPath, "branded")
	job.State = pipeline.StateSucceeded
	return job
}

func TestFinalizeSuccessPromotesAndRetires(t *testing.T) {
	s := testSettings(t)
	m, err := New(s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	job := succeededJob(t, s)

	if err := m.Finalize(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(s.VideoProcessing.OutputDir, "clip_branded.mp4")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if string(data) != "branded" {
		t.Fatalf("output content = %q", data)
	}
	if _, err := os.Stat(job.SourcePath); !os.IsNotExist(err) {
		t.Fatal("source still in input dir")
	}
	if _, err := os.Stat(filepath.Join(s.VideoProcessing.ProcessedDir, "clip.mp4")); err != nil {
		t.Fatalf("source not retired to processed: %v", err)
	}
}

func TestFinalizeDeleteSource(t *testing.T) {
	s := testSettings(t)
	s.FileManagement.DeleteSource = true
	m, err := New(s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	job := succeededJob(t, s)

	if err := m.Finalize(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(job.SourcePath); !os.IsNotExist(err) {
		t.Fatal("source should be deleted")
	}
	if _, err := os.Stat(s.VideoProcessing.ProcessedDir); !os.IsNotExist(err) {
		t.Fatal("processed dir should not be created when deleting sources")
	}
}

func TestFinalizeFailedParksWhenConfigured(t *testing.T) {
	s := testSettings(t)
	s.VideoProcessing.FailedDir = filepath.Join(filepath.Dir(s.VideoProcessing.InputDir), "failed")
	m, err := New(s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	job := pipeline.NewJob(filepath.Join(s.VideoProcessing.InputDir, "bad.mp4"))
	writeFile(t, job.SourcePath, "bad")
	job.State = pipeline.StateFailed
	job.Reason = pipeline.FailureUnreadable

	if err := m.Finalize(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(s.VideoProcessing.FailedDir, "bad.mp4")); err != nil {
		t.Fatalf("source not parked: %v", err)
	}
	if _, err := os.Stat(s.VideoProcessing.OutputDir); !os.IsNotExist(err) {
		t.Fatal("failed job must not create output")
	}
}

func TestFinalizeFailedLeavesSourceWithoutFailedDir(t *testing.T) {
	s := testSettings(t)
	m, err := New(s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	job := pipeline.NewJob(filepath.Join(s.VideoProcessing.InputDir, "bad.mp4"))
	writeFile(t, job.SourcePath, "bad")
	job.State = pipeline.StateFailed
	job.Reason = pipeline.FailureEncodeFailed

	if err := m.Finalize(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(job.SourcePath); err != nil {
		t.Fatalf("source should stay in place: %v", err)
	}
}

func TestFinalizeCancelledTouchesNothing(t *testing.T) {
	s := testSettings(t)
	s.VideoProcessing.FailedDir = filepath.Join(filepath.Dir(s.VideoProcessing.InputDir), "failed")
	m, err := New(s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	job := pipeline.NewJob(filepath.Join(s.VideoProcessing.InputDir, "clip.mp4"))
	writeFile(t, job.SourcePath, "source")
	job.State = pipeline.StateFailed
	job.Reason = pipeline.FailureCancelled

	if err := m.Finalize(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(job.SourcePath); err != nil {
		t.Fatalf("cancelled source must stay put: %v", err)
	}
	if _, err := os.Stat(s.VideoProcessing.FailedDir); !os.IsNotExist(err) {
		t.Fatal("cancelled job must not be parked as failed")
	}
}

func TestFinalizeSequentialNaming(t *testing.T) {
	s := testSettings(t)
	s.FileManagement.OutputNaming = config.NamingSequential
	m, err := New(s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 2; i++ {
		job := succeededJob(t, s)
		if err := m.Finalize(context.Background(), job); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []string{"clip_branded_001.mp4", "clip_branded_002.mp4"} {
		if _, err := os.Stat(filepath.Join(s.VideoProcessing.OutputDir, want)); err != nil {
			t.Fatalf("%s missing: %v", want, err)
		}
	}
}

func TestMoveFileCopyFallbackPreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dest := filepath.Join(dir, "sub", "b.mp4")
	writeFile(t, src, "payload")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := moveFile(src, dest); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Fatalf("dest = %q, %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("src should be gone")
	}
}

func TestCopyFallbackLeavesNoTempResidue(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	destDir := filepath.Join(dir, "out")
	writeFile(t, src, "payload")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, filepath.Join(destDir, "b.mp4")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "b.mp4" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dest dir holds %v, want only the final file", names)
	}
}

func TestCopyFallbackMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := copyFile(filepath.Join(dir, "absent.mp4"), filepath.Join(dir, "b.mp4")); err == nil {
		t.Fatal("expected error for missing source")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("dest dir holds %d entries after failed copy", len(entries))
	}
}
