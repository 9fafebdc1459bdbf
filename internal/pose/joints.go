package pose

// Joint enumerates the 13 named joints tracked by the angle calculator and
// the movement analyzer. The closed enumeration lets per-joint statistics
// live in fixed-size arrays instead of string-keyed maps.
type Joint int

const (
	JointNeck Joint = iota
	JointLeftShoulder
	JointRightShoulder
	JointLeftElbow
	JointRightElbow
	JointLeftWrist
	JointRightWrist
	JointLeftHip
	JointRightHip
	JointLeftKnee
	JointRightKnee
	JointLeftAnkle
	JointRightAnkle

	NumJoints = 13
)

var jointNames = [NumJoints]string{
	"neck",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
}

var jointDisplayNames = [NumJoints]string{
	"Neck",
	"Left Shoulder",
	"Right Shoulder",
	"Left Elbow",
	"Right Elbow",
	"Left Wrist",
	"Right Wrist",
	"Left Hip",
	"Right Hip",
	"Left Knee",
	"Right Knee",
	"Left Ankle",
	"Right Ankle",
}

func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return "unknown"
	}
	return jointNames[j]
}

// DisplayName returns the human-readable joint label used in reports.
func (j Joint) DisplayName() string {
	if j < 0 || j >= NumJoints {
		return "Unknown"
	}
	return jointDisplayNames[j]
}

// JointFromName resolves a serialized joint key back to its enum value.
func JointFromName(name string) (Joint, bool) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), true
		}
	}
	return 0, false
}

// Joints returns all joints in enumeration order.
func Joints() []Joint {
	out := make([]Joint, NumJoints)
	for i := range out {
		out[i] = Joint(i)
	}
	return out
}

// angleTriples defines, per joint, the (start, vertex, end) landmark indices
// whose vertex angle is reported for that joint. The neck is the angle at
// the nose between the two shoulders; wrists and ankles use the index-finger
// and foot-index points respectively.
var angleTriples = [NumJoints][3]int{
	JointNeck:          {LeftShoulder, Nose, RightShoulder},
	JointLeftShoulder:  {LeftElbow, LeftShoulder, LeftHip},
	JointRightShoulder: {RightElbow, RightShoulder, RightHip},
	JointLeftElbow:     {LeftShoulder, LeftElbow, LeftWrist},
	JointRightElbow:    {RightShoulder, RightElbow, RightWrist},
	JointLeftWrist:     {LeftElbow, LeftWrist, LeftIndex},
	JointRightWrist:    {RightElbow, RightWrist, RightIndex},
	JointLeftHip:       {LeftShoulder, LeftHip, LeftKnee},
	JointRightHip:      {RightShoulder, RightHip, RightKnee},
	JointLeftKnee:      {LeftHip, LeftKnee, LeftAnkle},
	JointRightKnee:     {RightHip, RightKnee, RightAnkle},
	JointLeftAnkle:     {LeftKnee, LeftAnkle, LeftFootIndex},
	JointRightAnkle:    {RightKnee, RightAnkle, RightFootIndex},
}

// JointAngles holds one angle in degrees per joint, indexed by Joint.
// Values are always in [0,180]; joints whose landmarks were missing or
// degenerate hold 0.
type JointAngles [NumJoints]float64

// Get returns the angle for j, or 0 for an out-of-range joint.
func (a JointAngles) Get(j Joint) float64 {
	if j < 0 || j >= NumJoints {
		return 0
	}
	return a[j]
}

// Map renders the angle set as a name-keyed map for serialization.
func (a JointAngles) Map() map[string]float64 {
	m := make(map[string]float64, NumJoints)
	for i, v := range a {
		m[jointNames[i]] = v
	}
	return m
}

// AnglesFromMap rebuilds a JointAngles from a name-keyed map. Unknown keys
// are ignored; missing keys stay 0.
func AnglesFromMap(m map[string]float64) JointAngles {
	var a JointAngles
	for name, v := range m {
		if j, ok := JointFromName(name); ok {
			a[j] = v
		}
	}
	return a
}
