package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary condenses a Result into headline figures for reports and the
// run listing API.
type Summary struct {
	MovementMean   float64 `json:"movement_mean"`
	MovementStdDev float64 `json:"movement_stddev"`
	MovementMedian float64 `json:"movement_median"`

	HighRiskRatioMean float64 `json:"high_risk_ratio_mean"`
	HighRiskRatioMax  float64 `json:"high_risk_ratio_max"`

	AngleRangeMean float64 `json:"angle_range_mean"`

	TopMovementJoint string `json:"top_movement_joint"`
	TopRiskJoint     string `json:"top_risk_joint"`
}

// Summarize computes distribution statistics across all joints of a
// result. An empty result yields a zero summary.
func Summarize(res *Result) Summary {
	if len(res.BodyParts) == 0 {
		return Summary{}
	}

	movements := make([]float64, 0, len(res.BodyParts))
	ratios := make([]float64, 0, len(res.BodyParts))
	ranges := make([]float64, 0, len(res.BodyParts))
	for _, stats := range res.BodyParts {
		movements = append(movements, float64(stats.MovementCount))
		ratios = append(ratios, stats.HighRiskRatio)
		ranges = append(ranges, stats.MaxAngle-stats.MinAngle)
	}
	sort.Float64s(movements)

	s := Summary{
		MovementMean:      stat.Mean(movements, nil),
		MovementStdDev:    stat.StdDev(movements, nil),
		MovementMedian:    stat.Quantile(0.5, stat.Empirical, movements, nil),
		HighRiskRatioMean: stat.Mean(ratios, nil),
		AngleRangeMean:    stat.Mean(ranges, nil),
	}
	for _, r := range ratios {
		if r > s.HighRiskRatioMax {
			s.HighRiskRatioMax = r
		}
	}

	if parts := res.SortedByMovement(); len(parts) > 0 {
		s.TopMovementJoint = parts[0].JointName
	}
	if parts := res.SortedByRisk(); len(parts) > 0 {
		s.TopRiskJoint = parts[0].JointName
	}
	return s
}
