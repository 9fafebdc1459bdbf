package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ergosense/posture.report/internal/ergo"
	"github.com/ergosense/posture.report/internal/monitoring"
	"github.com/ergosense/posture.report/internal/pose"
	"github.com/ergosense/posture.report/internal/timeutil"
)

// ErrEndOfStream is returned by FrameSource.Next when the recording is
// exhausted.
var ErrEndOfStream = errors.New("analysis: end of stream")

// Frame is one pose-estimated video frame. Detected is false when the
// upstream estimator found no person; such frames count as skipped.
type Frame struct {
	Landmarks pose.Landmarks
	Detected  bool
}

// FrameSource yields frames sequentially. Total may return 0 when the
// length is unknown up front.
type FrameSource interface {
	Next() (Frame, error)
	Total() int
	Seek(index int) error
	Close() error
}

// Events are the worker's progress callbacks. Nil callbacks are skipped.
// All callbacks fire from the worker goroutine.
type Events struct {
	Progress  func(current, total int)
	Completed func(*Result)
	Cancelled func(*Result, WorkerCheckpoint)
	Skipped   func(count int)
	Error     func(error)
}

// WorkerStatus is the lifecycle state of a Worker.
type WorkerStatus string

const (
	WorkerIdle      WorkerStatus = "idle"
	WorkerRunning   WorkerStatus = "running"
	WorkerCompleted WorkerStatus = "completed"
	WorkerCancelled WorkerStatus = "cancelled"
	WorkerFailed    WorkerStatus = "failed"
)

// WorkerConfig configures a scan over a recording.
type WorkerConfig struct {
	// Params configure the movement analyzer. The worker applies the
	// sampling itself, so Params.SampleInterval also controls which
	// frames are scored at all.
	Params AnalyzerParams

	// Resume restores a previous cancelled run's checkpoint before
	// scanning.
	Resume *WorkerCheckpoint

	// Clock times the scan; defaults to the real clock.
	Clock timeutil.Clock

	Events Events
}

// Worker scans every frame of a recording, scores each detected posture
// with RULA and REBA and feeds the movement analyzer. It runs in a
// background goroutine and supports cancellation with a resumable
// checkpoint.
type Worker struct {
	source FrameSource
	cfg    WorkerConfig

	mu     sync.Mutex
	status WorkerStatus
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// NewWorker creates a worker over the given source. The worker owns the
// source and releases it exactly once when the scan finishes or the
// worker is closed.
func NewWorker(source FrameSource, cfg WorkerConfig) *Worker {
	return &Worker{
		source: source,
		cfg:    cfg,
		status: WorkerIdle,
	}
}

// Status returns the worker's lifecycle state.
func (w *Worker) Status() WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Start begins the scan in a background goroutine. It fails if the
// worker is already running or has already run.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == WorkerRunning {
		return fmt.Errorf("analysis already in progress")
	}
	if w.done != nil {
		return fmt.Errorf("worker already ran; create a new one")
	}

	scanCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.status = WorkerRunning

	go w.scan(scanCtx)
	return nil
}

// Stop requests cancellation. The worker emits a Cancelled event with a
// resumable checkpoint once the current frame finishes.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the scan goroutine exits. Returns immediately if the
// worker never started.
func (w *Worker) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close releases the frame source. Safe to call multiple times and
// concurrently with a finished scan.
func (w *Worker) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.source.Close() })
	return err
}

func (w *Worker) setStatus(s WorkerStatus) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()
}

func (w *Worker) scan(ctx context.Context) {
	defer close(w.done)
	defer w.Close()

	clock := w.cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	params := w.cfg.Params.withDefaults()
	analyzer := NewMovementAnalyzer(params)
	rulaCalc := ergo.RULACalculator{}
	rebaCalc := ergo.REBACalculator{}

	total := w.source.Total()
	frameIndex := 0
	skipped := 0
	var resumeElapsed float64

	if cp := w.cfg.Resume; cp != nil {
		if err := analyzer.Restore(cp.Analyzer); err != nil {
			w.fail(fmt.Errorf("restore checkpoint: %w", err))
			return
		}
		frameIndex = cp.FrameIndex
		skipped = cp.SkippedFrames
		resumeElapsed = cp.ElapsedSeconds
		if frameIndex > 0 {
			if err := w.source.Seek(frameIndex); err != nil {
				w.fail(fmt.Errorf("seek to frame %d: %w", frameIndex, err))
				return
			}
		}
		monitoring.Logf("[AnalysisWorker] resuming at frame %d/%d", frameIndex, total)
	}

	stopped := false
	for {
		select {
		case <-ctx.Done():
			stopped = true
		default:
		}
		if stopped {
			break
		}

		frame, err := w.source.Next()
		if errors.Is(err, ErrEndOfStream) {
			break
		}
		if err != nil {
			w.fail(fmt.Errorf("read frame %d: %w", frameIndex, err))
			return
		}

		if frameIndex%params.SampleInterval != 0 {
			frameIndex++
			continue
		}

		if !frame.Detected {
			skipped++
			frameIndex++
			w.emitProgress(frameIndex, total)
			if w.cfg.Events.Skipped != nil {
				w.cfg.Events.Skipped(skipped)
			}
			continue
		}

		angles := pose.AllAngles(frame.Landmarks)
		rula := rulaCalc.Calculate(angles, frame.Landmarks)
		reba := rebaCalc.Calculate(angles, frame.Landmarks)
		analyzer.Update(angles, rula, reba, -1)

		frameIndex++
		w.emitProgress(frameIndex, total)
	}

	elapsed := clock.Since(start).Seconds() + resumeElapsed
	result := analyzer.Result()
	result.TotalFrames = frameIndex
	result.SkippedFrames = skipped
	result.DurationSeconds = elapsed
	result.SampleInterval = params.SampleInterval

	if stopped {
		cp := WorkerCheckpoint{
			Version:        CheckpointVersion,
			Analyzer:       analyzer.State(),
			FrameIndex:     frameIndex,
			SkippedFrames:  skipped,
			ElapsedSeconds: elapsed,
		}
		w.setStatus(WorkerCancelled)
		monitoring.Logf("[AnalysisWorker] cancelled after %d/%d frames", frameIndex, total)
		if w.cfg.Events.Cancelled != nil {
			w.cfg.Events.Cancelled(result, cp)
		}
		return
	}

	w.setStatus(WorkerCompleted)
	monitoring.Logf("[AnalysisWorker] completed %d frames in %.1fs", frameIndex, elapsed)
	if w.cfg.Events.Completed != nil {
		w.cfg.Events.Completed(result)
	}
}

func (w *Worker) emitProgress(current, total int) {
	if w.cfg.Events.Progress != nil {
		w.cfg.Events.Progress(current, total)
	}
}

func (w *Worker) fail(err error) {
	w.setStatus(WorkerFailed)
	monitoring.Logf("[AnalysisWorker] error: %v", err)
	if w.cfg.Events.Error != nil {
		w.cfg.Events.Error(err)
	}
}
