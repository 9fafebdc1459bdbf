package ergo

import (
	"fmt"
	"math"

	"github.com/ergosense/posture.report/internal/pose"
)

// Geometric thresholds for the OWAS posture code derivation.
const (
	owasBackFlexionDeg = 20
	owasTwistOffset    = 0.04
	owasKneeBentDeg    = 150
	owasKneelingDeg    = 90
	owasSittingHipDeg  = 120
)

// OWASResult is an OWAS assessment. The posture code concatenates the four
// digits back, arms, legs, load; the action category ignores load.
type OWASResult struct {
	BackCode       int       `json:"back_code"`
	ArmsCode       int       `json:"arms_code"`
	LegsCode       int       `json:"legs_code"`
	LoadCode       int       `json:"load_code"`
	PostureCode    string    `json:"posture_code"`
	ActionCategory int       `json:"action_category"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Action         string    `json:"action_required"`

	Details map[string]int `json:"details"`
}

// OWASCalculator derives a 4-digit Ovako working posture code from the
// detected landmarks and joint angles.
type OWASCalculator struct{}

// Calculate runs the OWAS assessment for one frame. loadCode is the
// manually supplied load class (1-3); values outside that range are
// clamped.
func (OWASCalculator) Calculate(angles pose.JointAngles, lms pose.Landmarks, loadCode int) OWASResult {
	if loadCode < 1 {
		loadCode = 1
	} else if loadCode > 3 {
		loadCode = 3
	}

	back := backCode(lms)
	arms := armsCode(lms)
	legs := legsCode(angles)
	ac := OWASActionCategory(back, arms, legs)

	level := OWASRiskLevel(ac)
	return OWASResult{
		BackCode:       back,
		ArmsCode:       arms,
		LegsCode:       legs,
		LoadCode:       loadCode,
		PostureCode:    fmt.Sprintf("%d%d%d%d", back, arms, legs, loadCode),
		ActionCategory: ac,
		RiskLevel:      level,
		Action:         ActionRequired(level),
		Details: map[string]int{
			"back":            back,
			"arms":            arms,
			"legs":            legs,
			"load":            loadCode,
			"action_category": ac,
		},
	}
}

// backCode classifies the back as 1 upright, 2 flexed, 3 twisted,
// 4 flexed and twisted.
func backCode(lms pose.Landmarks) int {
	if len(lms) == 0 {
		return 1
	}

	shoulderCentre := lms.Midpoint(pose.LeftShoulder, pose.RightShoulder)
	hipCentre := lms.Midpoint(pose.LeftHip, pose.RightHip)
	bent := pose.AngleFromVertical(shoulderCentre, hipCentre) > owasBackFlexionDeg

	ls := lms.Point(pose.LeftShoulder)
	rs := lms.Point(pose.RightShoulder)
	lh := lms.Point(pose.LeftHip)
	rh := lms.Point(pose.RightHip)
	twisted := math.Abs(ls.Y-rs.Y) > owasTwistOffset || math.Abs(lh.Y-rh.Y) > owasTwistOffset

	switch {
	case bent && twisted:
		return 4
	case twisted:
		return 3
	case bent:
		return 2
	default:
		return 1
	}
}

// armsCode is 1 with both arms below shoulder level, 2 with one arm
// raised, 3 with both raised. An arm counts as raised when its wrist or
// elbow sits above the shoulder.
func armsCode(lms pose.Landmarks) int {
	if len(lms) == 0 {
		return 1
	}

	raised := func(shoulder, elbow, wrist int) bool {
		s := lms.Point(shoulder)
		return lms.Point(wrist).Y < s.Y || lms.Point(elbow).Y < s.Y
	}

	left := raised(pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist)
	right := raised(pose.RightShoulder, pose.RightElbow, pose.RightWrist)

	switch {
	case left && right:
		return 3
	case left || right:
		return 2
	default:
		return 1
	}
}

// legsCode classifies the legs from hip and knee flexion: 1 sitting,
// 2 standing on straight legs, 4 squatting, 5 one knee bent, 6 kneeling.
func legsCode(angles pose.JointAngles) int {
	leftKnee := angles.Get(pose.JointLeftKnee)
	rightKnee := angles.Get(pose.JointRightKnee)
	leftHip := angles.Get(pose.JointLeftHip)
	rightHip := angles.Get(pose.JointRightHip)

	sitting := leftHip < owasSittingHipDeg && rightHip < owasSittingHipDeg
	leftBent := leftKnee < owasKneeBentDeg
	rightBent := rightKnee < owasKneeBentDeg

	switch {
	case sitting:
		return 1
	case leftBent && rightBent:
		if leftKnee < owasKneelingDeg && rightKnee < owasKneelingDeg {
			return 6
		}
		return 4
	case leftBent || rightBent:
		return 5
	default:
		return 2
	}
}
