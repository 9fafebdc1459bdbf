package ergo

import (
	"testing"

	"github.com/ergosense/posture.report/internal/pose"
)

// uprightLandmarks builds a neutral standing posture in normalized image
// coordinates, arms hanging at the sides.
func uprightLandmarks() pose.Landmarks {
	lms := make(pose.Landmarks, pose.NumLandmarks)
	set := func(i int, x, y float64) {
		lms[i] = pose.Landmark{X: x, Y: y, Visibility: 1}
	}

	set(pose.Nose, 0.50, 0.10)
	set(pose.LeftShoulder, 0.60, 0.25)
	set(pose.RightShoulder, 0.40, 0.25)
	set(pose.LeftElbow, 0.60, 0.40)
	set(pose.RightElbow, 0.40, 0.40)
	set(pose.LeftWrist, 0.60, 0.55)
	set(pose.RightWrist, 0.40, 0.55)
	set(pose.LeftIndex, 0.60, 0.60)
	set(pose.RightIndex, 0.40, 0.60)
	set(pose.LeftHip, 0.55, 0.55)
	set(pose.RightHip, 0.45, 0.55)
	set(pose.LeftKnee, 0.55, 0.75)
	set(pose.RightKnee, 0.45, 0.75)
	set(pose.LeftAnkle, 0.55, 0.95)
	set(pose.RightAnkle, 0.45, 0.95)
	set(pose.LeftFootIndex, 0.58, 0.97)
	set(pose.RightFootIndex, 0.42, 0.97)
	return lms
}

func TestRULAUprightPosture(t *testing.T) {
	lms := uprightLandmarks()
	angles := pose.AllAngles(lms)

	res := RULACalculator{}.Calculate(angles, lms)
	if res.Trunk.Base != 1 {
		t.Fatalf("upright trunk base = %d, want 1", res.Trunk.Base)
	}
	if res.Legs.Total != 1 {
		t.Fatalf("upright legs = %d, want 1", res.Legs.Total)
	}
	if res.UpperArm.Modifier(ModAbducted) != 0 {
		t.Fatalf("upright arm flagged abducted: %+v", res.UpperArm)
	}
	if res.Wrist.Total != 1 {
		t.Fatalf("straight wrist = %d, want 1", res.Wrist.Total)
	}
	if res.FinalScore != RULATableC(res.ScoreA, res.ScoreB) {
		t.Fatalf("final score %d does not match Table C of %d/%d", res.FinalScore, res.ScoreA, res.ScoreB)
	}
}

func TestRULADecompositionSumsEqualTotals(t *testing.T) {
	lms := uprightLandmarks()
	// Push the left elbow laterally outside the shoulder to force the
	// abduction modifier, and tilt the shoulders for side bending.
	lms[pose.LeftElbow] = pose.Landmark{X: 0.45, Y: 0.40, Visibility: 1}
	lms[pose.RightShoulder] = pose.Landmark{X: 0.40, Y: 0.32, Visibility: 1}
	angles := pose.AllAngles(lms)

	res := RULACalculator{}.Calculate(angles, lms)
	for name, region := range map[string]RegionScore{
		"upper_arm":   res.UpperArm,
		"lower_arm":   res.LowerArm,
		"wrist":       res.Wrist,
		"wrist_twist": res.WristTwist,
		"neck":        res.Neck,
		"trunk":       res.Trunk,
		"legs":        res.Legs,
	} {
		if region.Sum() != region.Total {
			t.Fatalf("%s: base+modifiers = %d, total = %d", name, region.Sum(), region.Total)
		}
	}
	if res.Trunk.Modifier(ModSideBending) != 1 {
		t.Fatalf("tilted shoulders did not set side_bending: %+v", res.Trunk)
	}
}

func TestRULAAbductionUsesElbowOffset(t *testing.T) {
	lms := uprightLandmarks()
	angles := pose.AllAngles(lms)
	res := RULACalculator{}.Calculate(angles, lms)
	if res.UpperArm.Modifier(ModAbducted) != 0 {
		t.Fatalf("neutral arm flagged abducted: %+v", res.UpperArm)
	}

	lms[pose.LeftElbow] = pose.Landmark{X: 0.50, Y: 0.40, Visibility: 1}
	angles = pose.AllAngles(lms)
	res = RULACalculator{}.Calculate(angles, lms)
	if res.UpperArm.Modifier(ModAbducted) != 1 {
		t.Fatalf("offset elbow not flagged abducted: %+v", res.UpperArm)
	}
}

func TestRULAFlexionLadder(t *testing.T) {
	cases := []struct {
		shoulderAngle float64
		wantBase      int
	}{
		{170, 1},
		{150, 2},
		{100, 3},
		{45, 4},
	}
	for _, tc := range cases {
		var angles pose.JointAngles
		angles[pose.JointLeftShoulder] = tc.shoulderAngle
		res := RULACalculator{}.Calculate(angles, nil)
		if res.UpperArm.Base != tc.wantBase {
			t.Fatalf("shoulder %v: upper arm base = %d, want %d",
				tc.shoulderAngle, res.UpperArm.Base, tc.wantBase)
		}
	}
}

func TestRULANoLandmarksSkipsGeometricModifiers(t *testing.T) {
	var angles pose.JointAngles
	angles[pose.JointLeftShoulder] = 170
	angles[pose.JointLeftElbow] = 80
	angles[pose.JointLeftWrist] = 180
	angles[pose.JointNeck] = 175
	angles[pose.JointLeftKnee] = 175
	angles[pose.JointRightKnee] = 175

	res := RULACalculator{}.Calculate(angles, nil)
	if len(res.UpperArm.Modifiers) != 0 || len(res.Neck.Modifiers) != 0 {
		t.Fatalf("modifiers present without landmarks: %+v", res)
	}
	if res.Trunk.Total != 1 {
		t.Fatalf("trunk without landmarks = %d, want 1", res.Trunk.Total)
	}
	if res.FinalScore != 1 {
		t.Fatalf("neutral angles final score = %d, want 1", res.FinalScore)
	}
}
