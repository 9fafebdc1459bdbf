package pose

import "math"

// angleEpsilon guards the denominator of the cosine computation so
// zero-length rays cannot divide by zero.
const angleEpsilon = 1e-10

// Angle computes the angle at vertex b between rays b->a and b->c, in
// degrees in [0,180]. The cosine is clamped to [-1,1] before the inverse
// cosine so floating-point drift on near-collinear rays cannot produce a
// domain error.
func Angle(a, b, c Point) float64 {
	bax := a.X - b.X
	bay := a.Y - b.Y
	baz := a.Z - b.Z
	bcx := c.X - b.X
	bcy := c.Y - b.Y
	bcz := c.Z - b.Z

	dot := bax*bcx + bay*bcy + baz*bcz
	na := math.Sqrt(bax*bax + bay*bay + baz*baz)
	nc := math.Sqrt(bcx*bcx + bcy*bcy + bcz*bcz)

	cosine := dot / (na*nc + angleEpsilon)
	cosine = math.Max(-1, math.Min(1, cosine))

	return math.Acos(cosine) * 180 / math.Pi
}

// AngleFromVertical returns the angle, in degrees, between the vertical
// axis and the segment from top to bottom. 0 means vertical, 90 horizontal.
func AngleFromVertical(top, bottom Point) float64 {
	dx := bottom.X - top.X
	dy := bottom.Y - top.Y
	if dy == 0 {
		return 90
	}
	return math.Atan(math.Abs(dx)/math.Abs(dy)) * 180 / math.Pi
}

// AllAngles derives the full 13-joint angle set from a landmark sequence.
// Failures are isolated per joint: a joint whose triple references a
// missing landmark, or whose rays are degenerate (zero length), reports 0
// without affecting the other joints.
func AllAngles(lms Landmarks) JointAngles {
	var out JointAngles
	for j := Joint(0); j < NumJoints; j++ {
		t := angleTriples[j]
		if !lms.Has(t[0]) || !lms.Has(t[1]) || !lms.Has(t[2]) {
			continue
		}
		a := lms.Point(t[0])
		b := lms.Point(t[1])
		c := lms.Point(t[2])
		if degenerate(a, b) || degenerate(c, b) {
			continue
		}
		out[j] = Angle(a, b, c)
	}
	return out
}

func degenerate(p, vertex Point) bool {
	return p.X == vertex.X && p.Y == vertex.Y && p.Z == vertex.Z
}
