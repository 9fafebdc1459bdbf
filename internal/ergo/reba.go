package ergo

import (
	"math"

	"github.com/ergosense/posture.report/internal/pose"
)

// REBAResult is a full REBA assessment with per-region decompositions.
type REBAResult struct {
	Neck     RegionScore `json:"neck"`
	Trunk    RegionScore `json:"trunk"`
	Legs     RegionScore `json:"legs"`
	UpperArm RegionScore `json:"upper_arm"`
	LowerArm RegionScore `json:"lower_arm"`
	Wrist    RegionScore `json:"wrist"`

	ScoreA     int       `json:"score_a"`
	ScoreB     int       `json:"score_b"`
	FinalScore int       `json:"final_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Action     string    `json:"action_required"`

	Details map[string]int `json:"details"`
}

// REBACalculator scores a posture with the Rapid Entire Body Assessment.
type REBACalculator struct {
	Sensitivity float64
}

func (c REBACalculator) sensitivity() float64 {
	if c.Sensitivity <= 0 {
		return 1
	}
	return c.Sensitivity
}

// Calculate runs the full REBA assessment for one frame.
func (c REBACalculator) Calculate(angles pose.JointAngles, lms pose.Landmarks) REBAResult {
	neck := c.neckScore(angles, lms)
	trunk := c.trunkScore(lms)
	legs := c.legScore(angles)
	upperArm := c.upperArmScore(angles, lms)
	lowerArm := c.lowerArmScore(angles)
	wrist := c.wristScore(angles)

	scoreA := REBATableA(neck.Total, trunk.Total, legs.Total)
	scoreB := REBATableB(upperArm.Total, lowerArm.Total, wrist.Total)
	final := REBATableC(scoreA, scoreB)

	level := REBARiskLevel(final)
	return REBAResult{
		Neck:       neck,
		Trunk:      trunk,
		Legs:       legs,
		UpperArm:   upperArm,
		LowerArm:   lowerArm,
		Wrist:      wrist,
		ScoreA:     scoreA,
		ScoreB:     scoreB,
		FinalScore: final,
		RiskLevel:  level,
		Action:     ActionRequired(level),
		Details: map[string]int{
			"neck":      neck.Total,
			"trunk":     trunk.Total,
			"legs":      legs.Total,
			"upper_arm": upperArm.Total,
			"lower_arm": lowerArm.Total,
			"wrist":     wrist.Total,
		},
	}
}

func (c REBACalculator) neckScore(angles pose.JointAngles, lms pose.Landmarks) RegionScore {
	flexion := 180 - angles.Get(pose.JointNeck)
	base := 2
	if flexion <= 20 {
		base = 1
	}

	twisted := 0
	if len(lms) > 0 {
		nose := lms.Point(pose.Nose)
		centre := lms.Midpoint(pose.LeftShoulder, pose.RightShoulder)
		if math.Abs(nose.X-centre.X) > defaultNeckTwistOffset*c.sensitivity() {
			twisted = 1
		}
	}

	return newRegionScore(base, 3, Modifier{Name: ModTwisted, Value: twisted})
}

func (c REBACalculator) trunkScore(lms pose.Landmarks) RegionScore {
	if len(lms) == 0 {
		return baseRegion(1, 5)
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

	return newRegionScore(base, 5, Modifier{Name: ModSideBending, Value: sideBend})
}

// legScore grades knee flexion from the straighter leg's deficit against a
// straight 180 degree knee.
func (c REBACalculator) legScore(angles pose.JointAngles) RegionScore {
	left := angles.Get(pose.JointLeftKnee)
	right := angles.Get(pose.JointRightKnee)
	flexion := 180 - math.Min(left, right)

	mid, deep := 0, 0
	switch {
	case flexion > 60:
		deep = 2
	case flexion >= 30:
		mid = 1
	}

	return newRegionScore(1, 4,
		Modifier{Name: ModKnee30To60, Value: mid},
		Modifier{Name: ModKneeOver60, Value: deep})
}

func (c REBACalculator) upperArmScore(angles pose.JointAngles, lms pose.Landmarks) RegionScore {
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
		if elbow.X < shoulder.X-defaultREBAAbductionOffset*c.sensitivity() {
			abducted = 1
		}
	}

	return newRegionScore(base, 6, Modifier{Name: ModAbducted, Value: abducted})
}

func (c REBACalculator) lowerArmScore(angles pose.JointAngles) RegionScore {
	elbow := angles.Get(pose.JointLeftElbow)
	base := 2
	if elbow >= 60 && elbow <= 100 {
		base = 1
	}
	return baseRegion(base, 2)
}

func (c REBACalculator) wristScore(angles pose.JointAngles) RegionScore {
	deviation := math.Abs(180 - angles.Get(pose.JointLeftWrist))
	base := 2
	if deviation <= 15 {
		base = 1
	}
	return baseRegion(base, 3)
}
