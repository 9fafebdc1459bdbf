// Package analysis accumulates per-joint movement and risk statistics over
// streams of scored posture frames, and drives whole-recording scans with a
// cancellable, checkpointable worker.
package analysis

import (
	"math"

	"github.com/ergosense/posture.report/internal/ergo"
	"github.com/ergosense/posture.report/internal/pose"
)

// Defaults for AnalyzerParams.
const (
	DefaultMovementThreshold     = 15.0
	DefaultRULAHighRiskThreshold = 4
	DefaultREBAHighRiskThreshold = 4
)

// rulaJointRegions maps each joint to the RULA region total that covers it.
// Joints absent here are covered by REBA only.
var rulaJointRegions = map[pose.Joint]func(ergo.RULAResult) int{
	pose.JointLeftShoulder:  func(r ergo.RULAResult) int { return r.UpperArm.Total },
	pose.JointRightShoulder: func(r ergo.RULAResult) int { return r.UpperArm.Total },
	pose.JointLeftElbow:     func(r ergo.RULAResult) int { return r.LowerArm.Total },
	pose.JointRightElbow:    func(r ergo.RULAResult) int { return r.LowerArm.Total },
	pose.JointLeftWrist:     func(r ergo.RULAResult) int { return r.Wrist.Total },
	pose.JointRightWrist:    func(r ergo.RULAResult) int { return r.Wrist.Total },
	pose.JointNeck:          func(r ergo.RULAResult) int { return r.Neck.Total },
	pose.JointLeftHip:       func(r ergo.RULAResult) int { return r.Trunk.Total },
	pose.JointRightHip:      func(r ergo.RULAResult) int { return r.Trunk.Total },
}

// rebaOnlyJointRegions maps the joints RULA's region mapping omits to the
// REBA region that covers them.
var rebaOnlyJointRegions = map[pose.Joint]func(ergo.REBAResult) int{
	pose.JointLeftKnee:   func(r ergo.REBAResult) int { return r.Legs.Total },
	pose.JointRightKnee:  func(r ergo.REBAResult) int { return r.Legs.Total },
	pose.JointLeftAnkle:  func(r ergo.REBAResult) int { return r.Legs.Total },
	pose.JointRightAnkle: func(r ergo.REBAResult) int { return r.Legs.Total },
}

// AnalyzerParams configure a MovementAnalyzer.
type AnalyzerParams struct {
	// MovementThreshold is the angle delta in degrees that counts as a
	// movement between consecutive analyzed frames. Strictly greater-than.
	MovementThreshold float64

	// SampleInterval analyzes every Nth frame when frame indices are
	// supplied to Update. 1 analyzes everything.
	SampleInterval int

	// Region totals at or above these thresholds count as high risk.
	RULAHighRiskThreshold int
	REBAHighRiskThreshold int
}

func (p AnalyzerParams) withDefaults() AnalyzerParams {
	if p.MovementThreshold <= 0 {
		p.MovementThreshold = DefaultMovementThreshold
	}
	if p.SampleInterval < 1 {
		p.SampleInterval = 1
	}
	if p.RULAHighRiskThreshold <= 0 {
		p.RULAHighRiskThreshold = DefaultRULAHighRiskThreshold
	}
	if p.REBAHighRiskThreshold <= 0 {
		p.REBAHighRiskThreshold = DefaultREBAHighRiskThreshold
	}
	return p
}

// MovementAnalyzer accumulates per-joint movement frequency, angle ranges
// and high-risk exposure over a stream of scored frames. It is not safe
// for concurrent use; the owning worker serializes access.
type MovementAnalyzer struct {
	params AnalyzerParams

	prevAngles pose.JointAngles
	hasPrev    bool

	totalFrames    int
	analyzedFrames int
	skippedFrames  int

	movementCounts [pose.NumJoints]int
	highRiskFrames [pose.NumJoints]int
	angleSums      [pose.NumJoints]float64
	angleCounts    [pose.NumJoints]int
	maxAngles      [pose.NumJoints]float64
	minAngles      [pose.NumJoints]float64
	riskScoreSums  [pose.NumJoints]float64
}

// NewMovementAnalyzer constructs an analyzer with zeroed accumulators.
func NewMovementAnalyzer(params AnalyzerParams) *MovementAnalyzer {
	return &MovementAnalyzer{params: params.withDefaults()}
}

// Params returns the effective parameters after defaulting.
func (a *MovementAnalyzer) Params() AnalyzerParams { return a.params }

// Reset returns the analyzer to its freshly constructed state.
func (a *MovementAnalyzer) Reset() {
	*a = MovementAnalyzer{params: a.params}
}

// Update accumulates one scored frame. frameIndex -1 disables sampling;
// with a nonnegative index, frames off the sampling grid are counted in
// the total but not accumulated. Movement deltas always compare against
// the previous analyzed frame, so sampling does not break continuity.
func (a *MovementAnalyzer) Update(angles pose.JointAngles, rula ergo.RULAResult, reba ergo.REBAResult, frameIndex int) {
	a.totalFrames++

	if frameIndex >= 0 && frameIndex%a.params.SampleInterval != 0 {
		return
	}
	a.analyzedFrames++

	for j := 0; j < pose.NumJoints; j++ {
		angle := angles[j]

		a.angleSums[j] += angle
		a.angleCounts[j]++
		if a.angleCounts[j] == 1 {
			a.maxAngles[j] = angle
			a.minAngles[j] = angle
		} else {
			if angle > a.maxAngles[j] {
				a.maxAngles[j] = angle
			}
			if angle < a.minAngles[j] {
				a.minAngles[j] = angle
			}
		}

		if a.hasPrev {
			if math.Abs(angle-a.prevAngles[j]) > a.params.MovementThreshold {
				a.movementCounts[j]++
			}
		}
	}

	a.updateHighRisk(rula, reba)
	a.updateRiskSums(rula)

	a.prevAngles = angles
	a.hasPrev = true
}

// updateHighRisk counts each joint at most once per frame. RULA's region
// mapping takes precedence; REBA supplies the joints RULA omits.
func (a *MovementAnalyzer) updateHighRisk(rula ergo.RULAResult, reba ergo.REBAResult) {
	for joint, region := range rulaJointRegions {
		if region(rula) >= a.params.RULAHighRiskThreshold {
			a.highRiskFrames[joint]++
		}
	}
	for joint, region := range rebaOnlyJointRegions {
		if region(reba) >= a.params.REBAHighRiskThreshold {
			a.highRiskFrames[joint]++
		}
	}
}

// updateRiskSums feeds the cumulative-score numerator from the RULA
// region totals only.
func (a *MovementAnalyzer) updateRiskSums(rula ergo.RULAResult) {
	for joint, region := range rulaJointRegions {
		a.riskScoreSums[joint] += float64(region(rula))
	}
}

// Result snapshots the accumulated statistics. The analyzer remains
// usable and may keep accumulating after a snapshot.
func (a *MovementAnalyzer) Result() *Result {
	res := &Result{
		BodyParts:      make(map[string]BodyPartStats, pose.NumJoints),
		TotalFrames:    a.totalFrames,
		AnalyzedFrames: a.analyzedFrames,
		SkippedFrames:  a.skippedFrames,
		SampleInterval: a.params.SampleInterval,
	}

	for _, j := range pose.Joints() {
		count := a.angleCounts[j]
		stats := BodyPartStats{
			JointName:      j.String(),
			DisplayName:    j.DisplayName(),
			TotalFrames:    count,
			MovementCount:  a.movementCounts[j],
			HighRiskFrames: a.highRiskFrames[j],
			MaxAngle:       a.maxAngles[j],
			MinAngle:       a.minAngles[j],
		}
		if count > 0 {
			stats.AvgAngle = a.angleSums[j] / float64(count)
			stats.HighRiskRatio = float64(a.highRiskFrames[j]) / float64(count)
			avgRisk := a.riskScoreSums[j] / float64(count)
			stats.CumulativeScore = float64(a.movementCounts[j]) * avgRisk
		}
		res.BodyParts[j.String()] = stats
	}
	return res
}
