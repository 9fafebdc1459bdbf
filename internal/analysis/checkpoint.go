package analysis

import (
	"fmt"

	"github.com/ergosense/posture.report/internal/pose"
)

// CheckpointVersion is the current analyzer checkpoint schema version.
const CheckpointVersion = 1

// Checkpoint is the serialized accumulator state of a MovementAnalyzer.
// Joint accumulators are keyed by joint name so the layout survives
// reordering of the joint enumeration.
type Checkpoint struct {
	Version int `json:"version"`

	PrevAngles map[string]float64 `json:"prev_angles,omitempty"`

	TotalFrames    int `json:"total_frames"`
	AnalyzedFrames int `json:"analyzed_frames"`
	SkippedFrames  int `json:"skipped_frames"`

	MovementCounts map[string]int     `json:"movement_counts"`
	HighRiskFrames map[string]int     `json:"high_risk_frames"`
	AngleSums      map[string]float64 `json:"angle_sums"`
	AngleCounts    map[string]int     `json:"angle_counts"`
	MaxAngles      map[string]float64 `json:"max_angles"`
	MinAngles      map[string]float64 `json:"min_angles"`
	RiskScoreSums  map[string]float64 `json:"risk_score_sums"`
}

// State snapshots the analyzer's accumulators for later restoration.
func (a *MovementAnalyzer) State() Checkpoint {
	cp := Checkpoint{
		Version:        CheckpointVersion,
		TotalFrames:    a.totalFrames,
		AnalyzedFrames: a.analyzedFrames,
		SkippedFrames:  a.skippedFrames,
		MovementCounts: make(map[string]int, pose.NumJoints),
		HighRiskFrames: make(map[string]int, pose.NumJoints),
		AngleSums:      make(map[string]float64, pose.NumJoints),
		AngleCounts:    make(map[string]int, pose.NumJoints),
		MaxAngles:      make(map[string]float64, pose.NumJoints),
		MinAngles:      make(map[string]float64, pose.NumJoints),
		RiskScoreSums:  make(map[string]float64, pose.NumJoints),
	}
	if a.hasPrev {
		cp.PrevAngles = a.prevAngles.Map()
	}
	for _, j := range pose.Joints() {
		name := j.String()
		cp.MovementCounts[name] = a.movementCounts[j]
		cp.HighRiskFrames[name] = a.highRiskFrames[j]
		cp.AngleSums[name] = a.angleSums[j]
		cp.AngleCounts[name] = a.angleCounts[j]
		cp.MaxAngles[name] = a.maxAngles[j]
		cp.MinAngles[name] = a.minAngles[j]
		cp.RiskScoreSums[name] = a.riskScoreSums[j]
	}
	return cp
}

// Restore loads a checkpoint, after which the analyzer accumulates
// exactly as if it had never stopped.
func (a *MovementAnalyzer) Restore(cp Checkpoint) error {
	if cp.Version != CheckpointVersion {
		return fmt.Errorf("unsupported checkpoint version %d (expected %d)", cp.Version, CheckpointVersion)
	}

	a.hasPrev = cp.PrevAngles != nil
	if a.hasPrev {
		a.prevAngles = pose.AnglesFromMap(cp.PrevAngles)
	} else {
		a.prevAngles = pose.JointAngles{}
	}
	a.totalFrames = cp.TotalFrames
	a.analyzedFrames = cp.AnalyzedFrames
	a.skippedFrames = cp.SkippedFrames

	for _, j := range pose.Joints() {
		name := j.String()
		a.movementCounts[j] = cp.MovementCounts[name]
		a.highRiskFrames[j] = cp.HighRiskFrames[name]
		a.angleSums[j] = cp.AngleSums[name]
		a.angleCounts[j] = cp.AngleCounts[name]
		a.maxAngles[j] = cp.MaxAngles[name]
		a.minAngles[j] = cp.MinAngles[name]
		a.riskScoreSums[j] = cp.RiskScoreSums[name]
	}
	return nil
}

// NewFromCheckpoint constructs an analyzer and restores a checkpoint in
// one step.
func NewFromCheckpoint(params AnalyzerParams, cp Checkpoint) (*MovementAnalyzer, error) {
	a := NewMovementAnalyzer(params)
	if err := a.Restore(cp); err != nil {
		return nil, err
	}
	return a, nil
}

// WorkerCheckpoint bundles the analyzer state with the worker's scan
// position so a cancelled run can resume where it left off.
type WorkerCheckpoint struct {
	Version        int        `json:"version"`
	Analyzer       Checkpoint `json:"analyzer"`
	FrameIndex     int        `json:"frame_index"`
	SkippedFrames  int        `json:"skipped_frames"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
}
