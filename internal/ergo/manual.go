package ergo

import "fmt"

// RULAParts are manually entered RULA region scores plus the muscle-use
// and force/load adjustments that the geometric path cannot observe.
type RULAParts struct {
	UpperArm   int `json:"upper_arm"`
	LowerArm   int `json:"lower_arm"`
	Wrist      int `json:"wrist"`
	WristTwist int `json:"wrist_twist"`
	Neck       int `json:"neck"`
	Trunk      int `json:"trunk"`
	Legs       int `json:"legs"`

	MuscleUseA int `json:"muscle_use_a"` // 0 or 1
	ForceLoadA int `json:"force_load_a"` // 0-3
	MuscleUseB int `json:"muscle_use_b"` // 0 or 1
	ForceLoadB int `json:"force_load_b"` // 0-3
}

// RULAFromParts scores a manually entered RULA worksheet. Score A and B
// are the table lookups plus their muscle-use and force/load adjustments;
// the final score is the Table C lookup on the adjusted group scores.
func RULAFromParts(p RULAParts) RULAResult {
	scoreA := RULATableA(p.UpperArm, p.LowerArm, p.Wrist, p.WristTwist) + p.MuscleUseA + p.ForceLoadA
	scoreB := RULATableB(p.Neck, p.Trunk, p.Legs) + p.MuscleUseB + p.ForceLoadB
	final := RULATableC(scoreA, scoreB)

	level := RULARiskLevel(final)
	return RULAResult{
		UpperArm:   baseRegion(p.UpperArm, 6),
		LowerArm:   baseRegion(p.LowerArm, 3),
		Wrist:      baseRegion(p.Wrist, 4),
		WristTwist: baseRegion(p.WristTwist, 2),
		Neck:       baseRegion(p.Neck, 6),
		Trunk:      baseRegion(p.Trunk, 6),
		Legs:       baseRegion(p.Legs, 2),
		ScoreA:     scoreA,
		ScoreB:     scoreB,
		FinalScore: final,
		RiskLevel:  level,
		Action:     ActionRequired(level),
		Details: map[string]int{
			"upper_arm":    clampRegion(p.UpperArm, 6),
			"lower_arm":    clampRegion(p.LowerArm, 3),
			"wrist":        clampRegion(p.Wrist, 4),
			"wrist_twist":  clampRegion(p.WristTwist, 2),
			"neck":         clampRegion(p.Neck, 6),
			"trunk":        clampRegion(p.Trunk, 6),
			"legs":         clampRegion(p.Legs, 2),
			"muscle_use_a": p.MuscleUseA,
			"force_load_a": p.ForceLoadA,
			"muscle_use_b": p.MuscleUseB,
			"force_load_b": p.ForceLoadB,
		},
	}
}

// REBAParts are manually entered REBA region scores plus the load/force,
// coupling and activity adjustments.
type REBAParts struct {
	Neck     int `json:"neck"`
	Trunk    int `json:"trunk"`
	Legs     int `json:"legs"`
	UpperArm int `json:"upper_arm"`
	LowerArm int `json:"lower_arm"`
	Wrist    int `json:"wrist"`

	LoadForce int `json:"load_force"` // 0-3
	Coupling  int `json:"coupling"`   // 0-3
	Activity  int `json:"activity"`   // 0-3
}

// REBAFromParts scores a manually entered REBA worksheet. Load/force is
// added to the Table A lookup, coupling to Table B, and activity to the
// Table C result.
func REBAFromParts(p REBAParts) REBAResult {
	scoreA := REBATableA(p.Neck, p.Trunk, p.Legs) + p.LoadForce
	scoreB := REBATableB(p.UpperArm, p.LowerArm, p.Wrist) + p.Coupling
	final := REBATableC(scoreA, scoreB) + p.Activity

	level := REBARiskLevel(final)
	return REBAResult{
		Neck:       baseRegion(p.Neck, 3),
		Trunk:      baseRegion(p.Trunk, 5),
		Legs:       baseRegion(p.Legs, 4),
		UpperArm:   baseRegion(p.UpperArm, 6),
		LowerArm:   baseRegion(p.LowerArm, 2),
		Wrist:      baseRegion(p.Wrist, 3),
		ScoreA:     scoreA,
		ScoreB:     scoreB,
		FinalScore: final,
		RiskLevel:  level,
		Action:     ActionRequired(level),
		Details: map[string]int{
			"neck":       clampRegion(p.Neck, 3),
			"trunk":      clampRegion(p.Trunk, 5),
			"legs":       clampRegion(p.Legs, 4),
			"upper_arm":  clampRegion(p.UpperArm, 6),
			"lower_arm":  clampRegion(p.LowerArm, 2),
			"wrist":      clampRegion(p.Wrist, 3),
			"load_force": p.LoadForce,
			"coupling":   p.Coupling,
			"activity":   p.Activity,
		},
	}
}

// OWASFromParts builds an OWAS result from manually entered posture
// codes.
func OWASFromParts(back, arms, legs, load int) OWASResult {
	back = clampRegion(back, 4)
	arms = clampRegion(arms, 3)
	legs = clampRegion(legs, 7)
	load = clampRegion(load, 3)

	ac := OWASActionCategory(back, arms, legs)
	level := OWASRiskLevel(ac)
	return OWASResult{
		BackCode:       back,
		ArmsCode:       arms,
		LegsCode:       legs,
		LoadCode:       load,
		PostureCode:    fmt.Sprintf("%d%d%d%d", back, arms, legs, load),
		ActionCategory: ac,
		RiskLevel:      level,
		Action:         ActionRequired(level),
		Details: map[string]int{
			"back":            back,
			"arms":            arms,
			"legs":            legs,
			"load":            load,
			"action_category": ac,
		},
	}
}

func clampRegion(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
