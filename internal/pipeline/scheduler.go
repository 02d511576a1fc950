package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BigAddict/VideoEditor/internal/assets"
	"github.com/BigAddict/VideoEditor/internal/compose"
	"github.com/BigAddict/VideoEditor/internal/config"
	"github.com/BigAddict/VideoEditor/internal/logging"
	"github.com/BigAddict/VideoEditor/internal/planner"
	"github.com/BigAddict/VideoEditor/internal/probe"
)

// Engine renders, joins and validates segments. Satisfied by compose.Engine;
// the indirection exists so scheduler tests can substitute a scripted engine.
type Engine interface {
	Render(ctx context.Context, workDir string, src *probe.VideoDescriptor, seg planner.Segment, ov planner.OverlayPlan) (string, error)
	Join(ctx context.Context, workDir string, parts []string) (string, error)
	Validate(ctx context.Context, path string, wantDuration float64) error
}

// Finalizer moves a terminal job's files to their resting places: output and
// processed dirs on success, the failed dir (if configured) on failure.
type Finalizer interface {
	Finalize(ctx context.Context, job *Job) error
}

// Stats counts terminal outcomes across the scheduler's lifetime.
type Stats struct {
	Submitted int
	Succeeded int
	Failed    int
	Cancelled int
	Retries   int
}

// backoffBase is the delay before the first retry; each further retry
// doubles it, up to backoffMax.
const (
	backoffBase = time.Second
	backoffMax  = time.Minute
)

// pressurePause is how long a worker idles when the host itself is short
// on memory before re-checking.
const pressurePause = 5 * time.Second

// Scheduler admits jobs in FIFO order under the memory budget and runs each
// one through probe, plan, render, join, validate and finalize on a fixed
// pool of workers.
type Scheduler struct {
	settings  *config.Settings
	log       *logging.Logger
	bundle    *assets.Bundle
	engine    Engine
	finalizer Finalizer
	budget    *MemoryBudget
	probeFn   func(ctx context.Context, path string) (*probe.VideoDescriptor, error)

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*Job
	tracked  map[string]bool // Source paths queued or in flight; suppresses duplicates.
	stats    Stats
	draining bool

	wg sync.WaitGroup
}

// New wires a scheduler. Start must be called before Submit has any effect.
func New(s *config.Settings, log *logging.Logger, bundle *assets.Bundle, engine Engine, finalizer Finalizer) *Scheduler {
	sched := &Scheduler{
		settings:  s,
		log:       log,
		bundle:    bundle,
		engine:    engine,
		finalizer: finalizer,
		budget:    NewMemoryBudget(s.Performance.MemoryLimitMB),
		probeFn:   probe.Probe,
		tracked:   make(map[string]bool),
	}
	sched.cond = sync.NewCond(&sched.mu)
	return sched
}

// Start launches the worker pool. Workers exit once ctx is cancelled and the
// queue has been drained of running work; Wait blocks until then.
func (s *Scheduler) Start(ctx context.Context) {
	n := s.settings.Performance.MaxConcurrent
	s.log.Info("scheduler: %d worker(s), %d MB budget", n, s.settings.Performance.MemoryLimitMB)
	for i := 0; i < n; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.workerLoop(ctx)
		}()
	}
	// Wake blocked workers when the context dies so they can exit.
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.draining = true
		s.mu.Unlock()
		s.cond.Broadcast()
	}()
}

// Wait blocks until all workers have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Snapshot returns the outcome counters.
func (s *Scheduler) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Submit enqueues a source file. Returns false when the path is already
// queued or running, which absorbs duplicate watcher events for one file.
func (s *Scheduler) Submit(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining || s.tracked[path] {
		return false
	}
	job := NewJob(path)
	s.tracked[path] = true
	s.queue = append(s.queue, job)
	s.stats.Submitted++
	s.cond.Signal()
	s.log.Info("queued %s (job %s)", filepath.Base(path), job.ID[:8])
	return true
}

// requeue puts a job back at the tail after a recoverable failure. The
// backoff timer runs detached so the worker is free immediately.
func (s *Scheduler) requeue(job *Job, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.draining {
			// Shutdown won the race; the source stays in place untouched.
			delete(s.tracked, job.SourcePath)
			return
		}
		job.State = StateQueued
		job.Reason = FailureNone
		s.queue = append(s.queue, job)
		s.cond.Signal()
	})
}

// nextAdmitted blocks until the head job fits under the budget, then pops
// it with its reservation charged. Returns nil when shutting down.
func (s *Scheduler) nextAdmitted(ctx context.Context) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if len(s.queue) > 0 {
			job := s.queue[0]
			reserve := s.budget.WorstCaseReservation()
			if s.budget.TryAdmit(reserve) {
				s.queue = s.queue[1:]
				job.reserved = reserve
				return job
			}
		}
		s.cond.Wait()
	}
}

// release returns a job's reservation and wakes workers blocked on admission.
func (s *Scheduler) release(job *Job) {
	if job.reserved == 0 {
		return
	}
	s.budget.Release(job.reserved)
	job.reserved = 0
	s.cond.Broadcast()
}

func (s *Scheduler) workerLoop(ctx context.Context) {
	for {
		job := s.nextAdmitted(ctx)
		if job == nil {
			return
		}
		for ctx.Err() == nil && SystemPressure(s.settings.Performance.MemoryLimitMB) {
			s.log.Warn("system memory pressure, pausing %s before %s", pressurePause, filepath.Base(job.SourcePath))
			select {
			case <-ctx.Done():
			case <-time.After(pressurePause):
			}
		}
		s.runJob(ctx, job)
	}
}

// runJob executes one attempt end to end and settles the outcome: success,
// retry with backoff, or terminal failure.
func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	job.Attempts++
	start := time.Now()
	name := filepath.Base(job.SourcePath)
	s.log.Info("processing %s (attempt %d)", name, job.Attempts)

	err := s.attempt(ctx, job)
	if err == nil {
		job.State = StateSucceeded
		job.FinishedAt = time.Now()
		s.finish(ctx, job)
		s.log.Success("%s done in %s", name, time.Since(start).Round(time.Millisecond))
		return
	}

	if ctx.Err() != nil {
		// Shutdown interrupted the attempt. Not charged against the
		// retry budget and never promoted to output.
		job.fail(FailureCancelled, err)
		job.FinishedAt = time.Now()
		s.cleanup(job)
		s.release(job)
		s.mu.Lock()
		delete(s.tracked, job.SourcePath)
		s.stats.Cancelled++
		s.mu.Unlock()
		s.log.Warn("%s cancelled mid-attempt", name)
		return
	}

	reason := classify(err)
	job.fail(reason, err)

	if reason.Recoverable() && job.Attempts <= s.settings.RetryBudget() {
		delay := backoffBase << (job.Attempts - 1)
		if delay > backoffMax {
			delay = backoffMax
		}
		s.log.Warn("%s failed (%s), retry %d/%d in %s: %v",
			name, reason, job.Attempts, s.settings.RetryBudget(), delay, err)
		s.cleanup(job)
		s.release(job)
		s.mu.Lock()
		s.stats.Retries++
		s.mu.Unlock()
		s.requeue(job, delay)
		return
	}

	job.FinishedAt = time.Now()
	s.log.Error("%s failed (%s): %v", name, reason, err)
	s.finish(ctx, job)
}

// attempt runs the pipeline states for one try. Any error aborts the
// attempt; classification happens in the caller.
func (s *Scheduler) attempt(ctx context.Context, job *Job) error {
	job.State = StateProbing
	desc, err := s.probeFn(ctx, job.SourcePath)
	if err != nil {
		return err
	}
	job.Video = desc
	job.reserved = s.budget.Shrink(job.reserved, EstimateJobBytes(desc.Width, desc.Height))
	s.cond.Broadcast()
	s.log.Debug("%s: %s, %.2fs, audio=%v", filepath.Base(job.SourcePath), desc.Resolution(), desc.Duration, desc.HasAudio)

	job.State = StatePlanning
	vp := &s.settings.VideoProcessing
	plan, err := planner.PlanSegments(desc.Duration, vp.IntroDuration, vp.OutroDuration, vp.MinDuration)
	if err != nil {
		return err
	}
	job.Segments = plan

	overlays := make([]planner.OverlayPlan, len(plan.Segments))
	for i, seg := range plan.Segments {
		ov, err := planner.PlanOverlays(seg.Kind, desc.Width, desc.Height, s.bundle, &s.settings.Logos)
		if err != nil {
			return err
		}
		overlays[i] = ov
	}

	job.State = StateRendering
	workDir := filepath.Join(s.settings.VideoProcessing.TempDir,
		fmt.Sprintf("job-%s-a%d", job.ID[:8], job.Attempts))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	job.WorkDir = workDir

	parts := make([]string, len(plan.Segments))
	if s.settings.Performance.ParallelProcessing && len(plan.Segments) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, seg := range plan.Segments {
			i, seg := i, seg
			g.Go(func() error {
				out, err := s.engine.Render(gctx, workDir, desc, seg, overlays[i])
				if err != nil {
					return err
				}
				parts[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i, seg := range plan.Segments {
			out, err := s.engine.Render(ctx, workDir, desc, seg, overlays[i])
			if err != nil {
				return err
			}
			parts[i] = out
		}
	}

	job.State = StateJoining
	joined, err := s.engine.Join(ctx, workDir, parts)
	if err != nil {
		return err
	}
	job.JoinedPath = joined

	if s.settings.Advanced.ValidateOutput {
		job.State = StateValidating
		if err := s.engine.Validate(ctx, joined, plan.Total); err != nil {
			return err
		}
	}
	return nil
}

// finish runs the finalizer for a terminal job and reclaims its resources.
func (s *Scheduler) finish(ctx context.Context, job *Job) {
	if err := s.finalizer.Finalize(ctx, job); err != nil {
		s.log.Error("finalize %s: %v", filepath.Base(job.SourcePath), err)
		if job.State == StateSucceeded {
			job.fail(FailureEncodeFailed, err)
		}
	}
	s.cleanup(job)
	s.release(job)
	s.mu.Lock()
	delete(s.tracked, job.SourcePath)
	switch job.State {
	case StateSucceeded:
		s.stats.Succeeded++
	default:
		s.stats.Failed++
	}
	s.mu.Unlock()
}

// cleanup removes the attempt's temp subtree unless retention is configured.
func (s *Scheduler) cleanup(job *Job) {
	if job.WorkDir == "" || !s.settings.Performance.CleanupTempFiles {
		return
	}
	if err := os.RemoveAll(job.WorkDir); err != nil {
		s.log.Warn("temp cleanup %s: %v", job.WorkDir, err)
	}
	job.WorkDir = ""
}

// classify maps an attempt error onto the failure taxonomy.
func classify(err error) FailureReason {
	switch {
	case errors.Is(err, probe.ErrUnreadable):
		return FailureUnreadable
	case errors.Is(err, planner.ErrTooShort):
		return FailureTooShort
	case errors.Is(err, planner.ErrInvalidGeometry):
		return FailureInvalidGeometry
	case errors.Is(err, compose.ErrAssetMissing):
		return FailureAssetMissing
	case errors.Is(err, compose.ErrTransientIO):
		return FailureTransientIO
	case errors.Is(err, compose.ErrCorrupt):
		return FailureCorrupt
	default:
		return FailureEncodeFailed
	}
}
