package ergo

import (
	"math"

	"github.com/ergosense/posture.report/internal/pose"
)

// Modifier names shared by the RULA and REBA region decompositions.
const (
	ModAbducted       = "abducted"
	ModShoulderRaised = "shoulder_raised"
	ModSupported      = "supported"
	ModWorkingAcross  = "working_across"
	ModBentMidline    = "bent_midline"
	ModTwisted        = "twisted"
	ModSideBending    = "side_bending"
	ModKnee30To60     = "knee_30_60"
	ModKneeOver60     = "knee_over_60"
)

// Default geometric detection thresholds, in normalized image coordinates.
// The effective threshold is the default scaled by the calculator's
// detection sensitivity.
const (
	defaultRULAAbductionOffset = 0.05
	defaultREBAAbductionOffset = 0.08
	defaultNeckTwistOffset     = 0.05
	defaultSideBendOffset      = 0.03
)

// RULAResult is a full RULA assessment with per-region decompositions.
type RULAResult struct {
	UpperArm   RegionScore `json:"upper_arm"`
	LowerArm   RegionScore `json:"lower_arm"`
	Wrist      RegionScore `json:"wrist"`
	WristTwist RegionScore `json:"wrist_twist"`
	Neck       RegionScore `json:"neck"`
	Trunk      RegionScore `json:"trunk"`
	Legs       RegionScore `json:"legs"`

	ScoreA     int       `json:"score_a"`
	ScoreB     int       `json:"score_b"`
	FinalScore int       `json:"final_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Action     string    `json:"action_required"`

	// Details carries the named sub-scores for audit and for the
	// movement analyzer's high-risk attribution.
	Details map[string]int `json:"details"`
}

// RULACalculator scores a posture with the Rapid Upper Limb Assessment.
// Sensitivity scales the geometric detection thresholds; 1 is nominal,
// larger values make modifier detection less sensitive.
type RULACalculator struct {
	Sensitivity float64
}

func (c RULACalculator) sensitivity() float64 {
	if c.Sensitivity <= 0 {
		return 1
	}
	return c.Sensitivity
}

// Calculate runs the full RULA assessment for one frame.
func (c RULACalculator) Calculate(angles pose.JointAngles, lms pose.Landmarks) RULAResult {
	upperArm := c.upperArmScore(angles, lms)
	lowerArm := c.lowerArmScore(angles)
	wrist := c.wristScore(angles)
	wristTwist := baseRegion(1, 2)
	neck := c.neckScore(angles, lms)
	trunk := c.trunkScore(lms)
	legs := c.legScore(angles)

	scoreA := RULATableA(upperArm.Total, lowerArm.Total, wrist.Total, wristTwist.Total)
	scoreB := RULATableB(neck.Total, trunk.Total, legs.Total)
	final := RULATableC(scoreA, scoreB)

	level := RULARiskLevel(final)
	return RULAResult{
		UpperArm:   upperArm,
		LowerArm:   lowerArm,
		Wrist:      wrist,
		WristTwist: wristTwist,
		Neck:       neck,
		Trunk:      trunk,
		Legs:       legs,
		ScoreA:     scoreA,
		ScoreB:     scoreB,
		FinalScore: final,
		RiskLevel:  level,
		Action:     ActionRequired(level),
		Details: map[string]int{
			"upper_arm":   upperArm.Total,
			"lower_arm":   lowerArm.Total,
			"wrist":       wrist.Total,
			"wrist_twist": wristTwist.Total,
			"neck":        neck.Total,
			"trunk":       trunk.Total,
			"legs":        legs.Total,
		},
	}
}

// upperArmScore scores upper-arm flexion (1-4 base) with an abduction
// modifier when the elbow sits laterally outside the shoulder.
func (c RULACalculator) upperArmScore(angles pose.JointAngles, lms pose.Landmarks) RegionScore {
	flexion := 180 - angles.Get(pose.JointLeftShoulder)

	var base int
	switch {
	case flexion <= 20:
		base = 1
	case flexion <= 45:
		base = 2
	case flexion <= 90:
		base = 3
	default:
		base = 4
	}

	abducted := 0
	if len(lms) > 0 {
		shoulder := lms.Point(pose.LeftShoulder)
		elbow := lms.Point(pose.LeftElbow)
		if elbow.X < shoulder.X-defaultRULAAbductionOffset*c.sensitivity() {
			abducted = 1
		}
	}

	return newRegionScore(base, 6, Modifier{Name: ModAbducted, Value: abducted})
}

func (c RULACalculator) lowerArmScore(angles pose.JointAngles) RegionScore {
	elbow := angles.Get(pose.JointLeftElbow)
	base := 2
	if elbow >= 60 && elbow <= 100 {
		base = 1
	}
	return baseRegion(base, 3)
}

func (c RULACalculator) wristScore(angles pose.JointAngles) RegionScore {
	deviation := math.Abs(180 - angles.Get(pose.JointLeftWrist))
	var base int
	switch {
	case deviation <= 5:
		base = 1
	case deviation <= 15:
		base = 2
	default:
		base = 3
	}
	return baseRegion(base, 4)
}

// neckScore scores neck flexion with a twist modifier when the nose drifts
// laterally from the shoulder centre.
func (c RULACalculator) neckScore(angles pose.JointAngles, lms pose.Landmarks) RegionScore {
	flexion := 180 - angles.Get(pose.JointNeck)

	var base int
	switch {
	case flexion <= 10:
		base = 1
	case flexion <= 20:
		base = 2
	default:
		base = 3
	}

	twisted := 0
	if len(lms) > 0 {
		nose := lms.Point(pose.Nose)
		centre := lms.Midpoint(pose.LeftShoulder, pose.RightShoulder)
		if math.Abs(nose.X-centre.X) > defaultNeckTwistOffset*c.sensitivity() {
			twisted = 1
		}
	}

	return newRegionScore(base, 6, Modifier{Name: ModTwisted, Value: twisted})
}

// trunkScore scores trunk flexion from the vertical with a side-bending
// modifier from inter-shoulder height asymmetry.
func (c RULACalculator) trunkScore(lms pose.Landmarks) RegionScore {
	if len(lms) == 0 {
		return baseRegion(1, 6)
	}

	shoulderCentre := lms.Midpoint(pose.LeftShoulder, pose.RightShoulder)
	hipCentre := lms.Midpoint(pose.LeftHip, pose.RightHip)
	flexion := pose.AngleFromVertical(shoulderCentre, hipCentre)

	var base int
	switch {
	case flexion <= 5:
		base = 1
	case flexion <= 20:
		base = 2
	case flexion <= 60:
		base = 3
	default:
		base = 4
	}

	sideBend := 0
	ls := lms.Point(pose.LeftShoulder)
	rs := lms.Point(pose.RightShoulder)
	if math.Abs(ls.Y-rs.Y) > defaultSideBendOffset*c.sensitivity() {
		sideBend = 1
	}

	return newRegionScore(base, 6, Modifier{Name: ModSideBending, Value: sideBend})
}

// legScore is 1 for balanced standing (both knees near straight), else 2.
func (c RULACalculator) legScore(angles pose.JointAngles) RegionScore {
	left := angles.Get(pose.JointLeftKnee)
	right := angles.Get(pose.JointRightKnee)
	base := 2
	if left > 160 && right > 160 {
		base = 1
	}
	return baseRegion(base, 2)
}
