package analysis

import "sort"

// BodyPartStats is the terminal statistic set for one joint.
type BodyPartStats struct {
	JointName       string  `json:"joint_name"`
	DisplayName     string  `json:"display_name"`
	TotalFrames     int     `json:"total_frames"`
	MovementCount   int     `json:"movement_count"`
	HighRiskFrames  int     `json:"high_risk_frames"`
	HighRiskRatio   float64 `json:"high_risk_ratio"`
	MaxAngle        float64 `json:"max_angle"`
	MinAngle        float64 `json:"min_angle"`
	AvgAngle        float64 `json:"avg_angle"`
	CumulativeScore float64 `json:"cumulative_score"`
}

// Result is the snapshot of a movement analysis run. It serializes to
// JSON without loss and round-trips through Checkpoint persistence.
type Result struct {
	BodyParts       map[string]BodyPartStats `json:"body_parts"`
	TotalFrames     int                      `json:"total_frames"`
	AnalyzedFrames  int                      `json:"analyzed_frames"`
	SkippedFrames   int                      `json:"skipped_frames"`
	SampleInterval  int                      `json:"sample_interval"`
	DurationSeconds float64                  `json:"duration_seconds"`
}

// SortedByMovement returns the per-joint stats ordered by movement count,
// most active first. Ties keep a stable joint-name order.
func (r *Result) SortedByMovement() []BodyPartStats {
	return r.sorted(func(a, b BodyPartStats) bool {
		if a.MovementCount != b.MovementCount {
			return a.MovementCount > b.MovementCount
		}
		return a.JointName < b.JointName
	})
}

// SortedByRisk returns the per-joint stats ordered by high-risk ratio,
// riskiest first. Ties keep a stable joint-name order.
func (r *Result) SortedByRisk() []BodyPartStats {
	return r.sorted(func(a, b BodyPartStats) bool {
		if a.HighRiskRatio != b.HighRiskRatio {
			return a.HighRiskRatio > b.HighRiskRatio
		}
		return a.JointName < b.JointName
	})
}

func (r *Result) sorted(less func(a, b BodyPartStats) bool) []BodyPartStats {
	parts := make([]BodyPartStats, 0, len(r.BodyParts))
	for _, stats := range r.BodyParts {
		parts = append(parts, stats)
	}
	sort.Slice(parts, func(i, j int) bool { return less(parts[i], parts[j]) })
	return parts
}
