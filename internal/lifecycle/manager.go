// Package lifecycle settles finished jobs on disk: promoting joined output
// to the output directory, retiring the source to processed (or deleting
// it), and parking failed sources when a failed directory is configured.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/logging"
	"github.com/BigAddict/VideoEditor/internal/naming"
	"github.com/BigAddict/VideoEditor/internal/pipeline"
)

// Manager moves terminal jobs' files to their resting places.
type Manager struct {
	settings *config.Settings
	log      *logging.Logger
	seq      *naming.SequenceCounter
}

// New builds a Manager. With sequential naming the durable counter file is
// opened next to the output directory so numbering survives restarts.
func New(s *config.Settings, log *logging.Logger) (*Manager, error) {
	m := &Manager{settings: s, log: log}
	if s.FileManagement.OutputNaming == config.NamingSequential {
		seq, err := naming.OpenSequenceCounter(filepath.Join(s.VideoProcessing.OutputDir, ".sequence"))
		if err != nil {
			return nil, fmt.Errorf("sequence counter: %w", err)
		}
		m.seq = seq
	}
	return m, nil
}

// Finalize settles one terminal job. Cancelled jobs are left exactly as they
// were: the source stays in the input directory for the next run.
func (m *Manager) Finalize(ctx context.Context, job *pipeline.Job) error {
	switch {
	case job.State == pipeline.StateSucceeded:
		return m.promote(job)
	case job.Reason == pipeline.FailureCancelled:
		return nil
	default:
		return m.park(job)
	}
}

// promote moves the joined file into the output directory under the
// configured naming policy, then retires the source.
func (m *Manager) promote(job *pipeline.Job) error {
	s := m.settings
	if err := os.MkdirAll(s.VideoProcessing.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	dest, err := naming.OutputPath(s.VideoProcessing.OutputDir, job.SourcePath,
		s.FileManagement.OutputNaming, m.seq, time.Now())
	if err != nil {
		return err
	}
	if err := moveFile(job.JoinedPath, dest); err != nil {
		return fmt.Errorf("promote output: %w", err)
	}
	m.log.Info("output: %s", dest)

	if s.FileManagement.DeleteSource {
		if err := os.Remove(job.SourcePath); err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
		return nil
	}
	processed := naming.ProcessedPath(s.VideoProcessing.ProcessedDir, job.SourcePath, time.Now())
	if err := os.MkdirAll(s.VideoProcessing.ProcessedDir, 0o755); err != nil {
		return fmt.Errorf("processed dir: %w", err)
	}
	if err := moveFile(job.SourcePath, processed); err != nil {
		return fmt.Errorf("retire source: %w", err)
	}
	return nil
}

// park moves a failed job's source to the failed directory when one is
// configured; otherwise the source stays put for manual inspection.
func (m *Manager) park(job *pipeline.Job) error {
	dir := m.settings.VideoProcessing.FailedDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed dir: %w", err)
	}
	dest := naming.ProcessedPath(dir, job.SourcePath, time.Now())
	if err := moveFile(job.SourcePath, dest); err != nil {
		return fmt.Errorf("park source: %w", err)
	}
	m.log.Info("failed source parked: %s", dest)
	return nil
}
