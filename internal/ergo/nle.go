package ergo

import (
	"math"
)

// LoadConstant is the NIOSH lifting equation load constant in kg.
const LoadConstant = 23.0

// Frequency multiplier rows, keyed by lifts per minute. Columns are
// [duration bucket][vertical bucket]; duration buckets are <=1h, <=2h,
// <=8h and the vertical split is V below / at-or-above 75 cm.
var fmRows = []struct {
	freq float64
	m    [3][2]float64
}{
	{0.2, [3][2]float64{{1.00, 1.00}, {0.95, 0.95}, {0.85, 0.85}}},
	{0.5, [3][2]float64{{0.97, 0.97}, {0.92, 0.92}, {0.81, 0.81}}},
	{1, [3][2]float64{{0.94, 0.94}, {0.88, 0.88}, {0.75, 0.75}}},
	{2, [3][2]float64{{0.91, 0.91}, {0.84, 0.84}, {0.65, 0.65}}},
	{3, [3][2]float64{{0.88, 0.88}, {0.79, 0.79}, {0.55, 0.55}}},
	{4, [3][2]float64{{0.84, 0.84}, {0.72, 0.72}, {0.45, 0.45}}},
	{5, [3][2]float64{{0.80, 0.80}, {0.60, 0.60}, {0.35, 0.35}}},
	{6, [3][2]float64{{0.75, 0.75}, {0.50, 0.50}, {0.27, 0.27}}},
	{7, [3][2]float64{{0.70, 0.70}, {0.42, 0.42}, {0.22, 0.22}}},
	{8, [3][2]float64{{0.60, 0.60}, {0.35, 0.35}, {0.18, 0.18}}},
	{9, [3][2]float64{{0.52, 0.52}, {0.30, 0.30}, {0.00, 0.15}}},
	{10, [3][2]float64{{0.45, 0.45}, {0.26, 0.26}, {0.00, 0.13}}},
	{11, [3][2]float64{{0.41, 0.41}, {0.00, 0.23}, {0.00, 0.00}}},
	{12, [3][2]float64{{0.37, 0.37}, {0.00, 0.21}, {0.00, 0.00}}},
	{13, [3][2]float64{{0.00, 0.34}, {0.00, 0.00}, {0.00, 0.00}}},
	{14, [3][2]float64{{0.00, 0.31}, {0.00, 0.00}, {0.00, 0.00}}},
	{15, [3][2]float64{{0.00, 0.28}, {0.00, 0.00}, {0.00, 0.00}}},
}

// Coupling multiplier by grip quality (1 good, 2 fair, 3 poor) and the
// same vertical split as the frequency table.
var cmTable = [3][2]float64{
	{1.00, 1.00},
	{0.95, 1.00},
	{0.90, 0.90},
}

// NLETask is one lifting task for the NIOSH equation. Distances are in
// cm, the asymmetry angle in degrees and the load in kg.
type NLETask struct {
	Horizontal    float64 `json:"horizontal_cm"`
	Vertical      float64 `json:"vertical_cm"`
	Distance      float64 `json:"distance_cm"`
	Asymmetry     float64 `json:"asymmetry_deg"`
	Frequency     float64 `json:"frequency_per_min"`
	DurationHours float64 `json:"duration_hours"`
	Coupling      int     `json:"coupling"`
	Load          float64 `json:"load_kg"`
}

// NLEResult carries the six multipliers, the recommended weight limit and
// the lifting index for a task.
type NLEResult struct {
	HM float64 `json:"hm"`
	VM float64 `json:"vm"`
	DM float64 `json:"dm"`
	AM float64 `json:"am"`
	FM float64 `json:"fm"`
	CM float64 `json:"cm"`

	RWL          float64   `json:"rwl_kg"`
	LiftingIndex float64   `json:"lifting_index"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Action       string    `json:"action_required"`
}

// HorizontalMultiplier is 25/H capped at 1; a nonpositive H scores 0.
func HorizontalMultiplier(h float64) float64 {
	if h <= 0 {
		return 0
	}
	return math.Min(25.0/h, 1.0)
}

// VerticalMultiplier penalizes departure from the 75 cm knuckle height.
func VerticalMultiplier(v float64) float64 {
	return math.Max(1.0-0.003*math.Abs(v-75.0), 0)
}

// DistanceMultiplier is 0.82 + 4.5/D capped at 1; a nonpositive D scores 1.
func DistanceMultiplier(d float64) float64 {
	if d <= 0 {
		return 1
	}
	return math.Min(0.82+4.5/d, 1.0)
}

// AsymmetryMultiplier penalizes twisting away from the sagittal plane.
func AsymmetryMultiplier(a float64) float64 {
	return math.Max(1.0-0.0032*math.Abs(a), 0)
}

// FrequencyMultiplier looks up the FM for the nearest tabulated lift rate.
func FrequencyMultiplier(freq, durationHours, v float64) float64 {
	dur := 2
	switch {
	case durationHours <= 1:
		dur = 0
	case durationHours <= 2:
		dur = 1
	}
	vpos := 0
	if v >= 75 {
		vpos = 1
	}

	best := fmRows[0]
	for _, row := range fmRows[1:] {
		if math.Abs(row.freq-freq) < math.Abs(best.freq-freq) {
			best = row
		}
	}
	return best.m[dur][vpos]
}

// CouplingMultiplier looks up the CM for a grip quality, clamped to 1-3.
func CouplingMultiplier(coupling int, v float64) float64 {
	if coupling < 1 {
		coupling = 1
	} else if coupling > 3 {
		coupling = 3
	}
	vpos := 0
	if v >= 75 {
		vpos = 1
	}
	return cmTable[coupling-1][vpos]
}

// NLECalculator evaluates the revised NIOSH lifting equation.
type NLECalculator struct{}

// Calculate computes the six multipliers, RWL and lifting index for a
// task. Multipliers are rounded to 3 decimal places; RWL and LI to 2.
// A zero RWL yields LI 0 for an unloaded task and +Inf otherwise.
func (NLECalculator) Calculate(task NLETask) NLEResult {
	hm := round3(HorizontalMultiplier(task.Horizontal))
	vm := round3(VerticalMultiplier(task.Vertical))
	dm := round3(DistanceMultiplier(task.Distance))
	am := round3(AsymmetryMultiplier(task.Asymmetry))
	fm := round3(FrequencyMultiplier(task.Frequency, task.DurationHours, task.Vertical))
	cm := round3(CouplingMultiplier(task.Coupling, task.Vertical))

	rwl := round2(LoadConstant * hm * vm * dm * am * fm * cm)

	var li float64
	switch {
	case rwl > 0:
		li = round2(task.Load / rwl)
	case task.Load > 0:
		li = math.Inf(1)
	}

	level := NLERiskLevel(li)
	return NLEResult{
		HM:           hm,
		VM:           vm,
		DM:           dm,
		AM:           am,
		FM:           fm,
		CM:           cm,
		RWL:          rwl,
		LiftingIndex: li,
		RiskLevel:    level,
		Action:       ActionRequired(level),
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
