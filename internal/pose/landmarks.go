// Package pose defines the landmark and joint-angle model shared by the
// ergonomic calculators and the movement analyzer. Landmarks follow the
// standard 33-point body layout with normalized [0,1] image coordinates.
package pose

// Landmark indices in the 33-point body layout.
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32

	NumLandmarks = 33
)

// Point is a plain 3D coordinate used by the angle math.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Landmark is one tracked body point in normalized image coordinates with a
// visibility confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Landmarks is an ordered landmark sequence. A well-formed set has
// NumLandmarks entries, but consumers never assume that: out-of-range
// lookups degrade to the origin rather than failing.
type Landmarks []Landmark

// Point returns the coordinates of landmark i. Missing entries yield the
// zero point so a truncated or absent landmark set never faults a consumer.
func (l Landmarks) Point(i int) Point {
	if i < 0 || i >= len(l) {
		return Point{}
	}
	return Point{X: l[i].X, Y: l[i].Y, Z: l[i].Z}
}

// Has reports whether landmark i is present in the set.
func (l Landmarks) Has(i int) bool {
	return i >= 0 && i < len(l)
}

// Midpoint returns the point halfway between landmarks i and j.
func (l Landmarks) Midpoint(i, j int) Point {
	a := l.Point(i)
	b := l.Point(j)
	return Point{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}
