package ergo

// Strain Index multiplier tables, indexed by ordinal level 1-5.
var (
	siIntensity   = [5]float64{1.0, 3.0, 6.0, 9.0, 13.0}
	siDuration    = [5]float64{0.5, 1.0, 1.5, 2.0, 3.0}
	siEfforts     = [5]float64{0.5, 1.0, 1.5, 2.0, 3.0}
	siHandPosture = [5]float64{1.0, 1.0, 1.5, 2.0, 3.0}
	siSpeed       = [5]float64{1.0, 1.0, 1.0, 1.5, 2.0}
	siDailyHours  = [5]float64{0.25, 0.50, 0.75, 1.00, 1.50}
)

// SITask holds the six ordinal ratings (1-5) of the Moore-Garg Strain
// Index. Out-of-range levels are clamped.
type SITask struct {
	Intensity   int `json:"intensity"`
	Duration    int `json:"duration"`
	Efforts     int `json:"efforts"`
	HandPosture int `json:"hand_posture"`
	Speed       int `json:"speed"`
	DailyHours  int `json:"daily_hours"`
}

// SIResult carries the six resolved multipliers and their product.
type SIResult struct {
	IntensityM   float64 `json:"intensity_multiplier"`
	DurationM    float64 `json:"duration_multiplier"`
	EffortsM     float64 `json:"efforts_multiplier"`
	HandPostureM float64 `json:"hand_posture_multiplier"`
	SpeedM       float64 `json:"speed_multiplier"`
	DailyHoursM  float64 `json:"daily_hours_multiplier"`

	Score     float64   `json:"score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Action    string    `json:"action_required"`
}

func siMultiplier(table [5]float64, level int) float64 {
	if level < 1 {
		level = 1
	} else if level > 5 {
		level = 5
	}
	return table[level-1]
}

// SICalculator evaluates the Moore-Garg Strain Index.
type SICalculator struct{}

// Calculate resolves each rating to its multiplier and returns their
// product as the strain score.
func (SICalculator) Calculate(task SITask) SIResult {
	ie := siMultiplier(siIntensity, task.Intensity)
	de := siMultiplier(siDuration, task.Duration)
	em := siMultiplier(siEfforts, task.Efforts)
	hwp := siMultiplier(siHandPosture, task.HandPosture)
	sw := siMultiplier(siSpeed, task.Speed)
	dd := siMultiplier(siDailyHours, task.DailyHours)

	score := ie * de * em * hwp * sw * dd
	level := SIRiskLevel(score)
	return SIResult{
		IntensityM:   ie,
		DurationM:    de,
		EffortsM:     em,
		HandPostureM: hwp,
		SpeedM:       sw,
		DailyHoursM:  dd,
		Score:        score,
		RiskLevel:    level,
		Action:       ActionRequired(level),
	}
}
