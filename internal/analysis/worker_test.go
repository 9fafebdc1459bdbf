package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ergosense/posture.report/internal/pose"
	"github.com/ergosense/posture.report/internal/timeutil"
)

// syntheticRecording builds n detected frames of slowly tilting posture,
// with undetected frames at the given indices.
func syntheticRecording(n int, undetected ...int) *Recording {
	missing := make(map[int]bool, len(undetected))
	for _, i := range undetected {
		missing[i] = true
	}

	frames := make([]Frame, n)
	for i := range frames {
		if missing[i] {
			continue
		}
		lms := make(pose.Landmarks, pose.NumLandmarks)
		lean := float64(i) * 0.01
		set := func(idx int, x, y float64) {
			lms[idx] = pose.Landmark{X: x, Y: y, Visibility: 1}
		}
		set(pose.Nose, 0.50+lean, 0.10)
		set(pose.LeftShoulder, 0.60+lean, 0.25)
		set(pose.RightShoulder, 0.40+lean, 0.25)
		set(pose.LeftElbow, 0.60+lean, 0.40)
		set(pose.RightElbow, 0.40+lean, 0.40)
		set(pose.LeftWrist, 0.60+lean, 0.55)
		set(pose.RightWrist, 0.40+lean, 0.55)
		set(pose.LeftIndex, 0.60+lean, 0.60)
		set(pose.RightIndex, 0.40+lean, 0.60)
		set(pose.LeftHip, 0.55, 0.55)
		set(pose.RightHip, 0.45, 0.55)
		set(pose.LeftKnee, 0.55, 0.75)
		set(pose.RightKnee, 0.45, 0.75)
		set(pose.LeftAnkle, 0.55, 0.95)
		set(pose.RightAnkle, 0.45, 0.95)
		set(pose.LeftFootIndex, 0.58, 0.97)
		set(pose.RightFootIndex, 0.42, 0.97)
		frames[i] = Frame{Landmarks: lms, Detected: true}
	}
	return NewRecording(frames)
}

func runToCompletion(t *testing.T, rec *Recording, params AnalyzerParams) *Result {
	t.Helper()
	var result *Result
	w := NewWorker(rec, WorkerConfig{
		Params: params,
		Events: Events{Completed: func(r *Result) { result = r }},
	})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Wait()
	if w.Status() != WorkerCompleted {
		t.Fatalf("status = %s, want completed", w.Status())
	}
	if result == nil {
		t.Fatalf("completed event not delivered")
	}
	return result
}

func TestWorkerScansWholeRecording(t *testing.T) {
	res := runToCompletion(t, syntheticRecording(10), AnalyzerParams{})
	if res.TotalFrames != 10 {
		t.Fatalf("total = %d, want 10", res.TotalFrames)
	}
	if res.AnalyzedFrames != 10 {
		t.Fatalf("analyzed = %d, want 10", res.AnalyzedFrames)
	}
	if res.SkippedFrames != 0 {
		t.Fatalf("skipped = %d, want 0", res.SkippedFrames)
	}
}

func TestWorkerSampling(t *testing.T) {
	res := runToCompletion(t, syntheticRecording(10), AnalyzerParams{SampleInterval: 2})
	if res.AnalyzedFrames != 5 {
		t.Fatalf("analyzed = %d, want 5", res.AnalyzedFrames)
	}
	if res.SampleInterval != 2 {
		t.Fatalf("sample interval = %d, want 2", res.SampleInterval)
	}
}

func TestWorkerCountsUndetectedFramesAsSkipped(t *testing.T) {
	var lastSkipped int
	w := NewWorker(syntheticRecording(8, 2, 5), WorkerConfig{
		Events: Events{Skipped: func(n int) { lastSkipped = n }},
	})
	var result *Result
	w.cfg.Events.Completed = func(r *Result) { result = r }

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Wait()

	if result.SkippedFrames != 2 {
		t.Fatalf("skipped = %d, want 2", result.SkippedFrames)
	}
	if lastSkipped != 2 {
		t.Fatalf("skipped event = %d, want 2", lastSkipped)
	}
	if result.AnalyzedFrames != 6 {
		t.Fatalf("analyzed = %d, want 6", result.AnalyzedFrames)
	}
}

func TestWorkerCancelAndResumeMatchesStraightRun(t *testing.T) {
	const frames = 12
	const stopAt = 5
	params := AnalyzerParams{SampleInterval: 2}

	want := runToCompletion(t, syntheticRecording(frames), params)

	// First leg: stop once progress reaches stopAt frames.
	var partialCP *WorkerCheckpoint
	first := NewWorker(syntheticRecording(frames), WorkerConfig{Params: params})
	first.cfg.Events.Progress = func(current, total int) {
		if current >= stopAt {
			first.Stop()
		}
	}
	first.cfg.Events.Cancelled = func(_ *Result, cp WorkerCheckpoint) { partialCP = &cp }

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first leg: %v", err)
	}
	first.Wait()
	if first.Status() != WorkerCancelled {
		t.Fatalf("first leg status = %s, want cancelled", first.Status())
	}
	if partialCP == nil {
		t.Fatalf("cancelled event carried no checkpoint")
	}
	if partialCP.FrameIndex >= frames {
		t.Fatalf("first leg consumed the whole recording; cancel did not take effect")
	}

	// Second leg: resume from the checkpoint over a fresh source.
	var got *Result
	second := NewWorker(syntheticRecording(frames), WorkerConfig{
		Params: params,
		Resume: partialCP,
		Events: Events{Completed: func(r *Result) { got = r }},
	})
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("start second leg: %v", err)
	}
	second.Wait()
	if got == nil {
		t.Fatalf("second leg did not complete")
	}

	ignoreElapsed := cmpopts.IgnoreFields(Result{}, "DurationSeconds")
	if diff := cmp.Diff(want, got, ignoreElapsed); diff != "" {
		t.Fatalf("resumed result differs from straight run (-want +got):\n%s", diff)
	}
}

func TestWorkerStartTwiceFails(t *testing.T) {
	w := NewWorker(syntheticRecording(3), WorkerConfig{})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Wait()
	if err := w.Start(context.Background()); err == nil {
		t.Fatalf("second Start succeeded, want error")
	}
}

func TestWorkerStopBeforeAnyFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var cp *WorkerCheckpoint
	w := NewWorker(syntheticRecording(5), WorkerConfig{
		Events: Events{Cancelled: func(_ *Result, c WorkerCheckpoint) { cp = &c }},
	})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Wait()

	if w.Status() != WorkerCancelled {
		t.Fatalf("status = %s, want cancelled", w.Status())
	}
	if cp == nil || cp.FrameIndex != 0 {
		t.Fatalf("checkpoint = %+v, want frame index 0", cp)
	}
}

func TestWorkerWaitWithoutStart(t *testing.T) {
	w := NewWorker(syntheticRecording(1), WorkerConfig{})
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Wait blocked with no started scan")
	}
}

func TestWorkerDurationUsesClockAndResumeOffset(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	var result *Result
	w := NewWorker(syntheticRecording(3), WorkerConfig{
		Clock: clock,
		Resume: &WorkerCheckpoint{
			Version:        CheckpointVersion,
			Analyzer:       NewMovementAnalyzer(AnalyzerParams{}).State(),
			ElapsedSeconds: 2.5,
		},
		Events: Events{Completed: func(r *Result) { result = r }},
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	w.Wait()

	if result == nil {
		t.Fatal("worker did not complete")
	}
	// The mock clock never advances, so the duration is exactly the
	// checkpoint's carried-over elapsed time.
	if result.DurationSeconds != 2.5 {
		t.Errorf("DurationSeconds = %v, want 2.5", result.DurationSeconds)
	}
}
