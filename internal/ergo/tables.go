package ergo

// Score lookup tables for RULA, REBA and OWAS, transcribed from the
// published method worksheets. Lookup helpers clamp every index into the
// table's valid range so the functions are total.

// rulaTableA maps [upper arm][lower arm][wrist][wrist twist] to the RULA
// group A (arm and wrist) score.
var rulaTableA = [6][3][4][2]int{
	{ // upper arm 1
		{{1, 2}, {2, 2}, {2, 3}, {3, 3}},
		{{2, 2}, {2, 2}, {3, 3}, {3, 3}},
		{{2, 3}, {3, 3}, {3, 3}, {4, 4}},
	},
	{ // upper arm 2
		{{2, 3}, {3, 3}, {3, 4}, {4, 4}},
		{{3, 3}, {3, 3}, {3, 4}, {4, 4}},
		{{3, 4}, {4, 4}, {4, 4}, {5, 5}},
	},
	{ // upper arm 3
		{{3, 3}, {4, 4}, {4, 4}, {5, 5}},
		{{3, 4}, {4, 4}, {4, 4}, {5, 5}},
		{{4, 4}, {4, 4}, {4, 5}, {5, 5}},
	},
	{ // upper arm 4
		{{4, 4}, {4, 4}, {4, 5}, {5, 5}},
		{{4, 4}, {4, 4}, {4, 5}, {5, 5}},
		{{4, 4}, {4, 5}, {5, 5}, {6, 6}},
	},
	{ // upper arm 5
		{{5, 5}, {5, 5}, {5, 6}, {6, 7}},
		{{5, 6}, {6, 6}, {6, 7}, {7, 7}},
		{{6, 6}, {6, 7}, {7, 7}, {7, 8}},
	},
	{ // upper arm 6
		{{7, 7}, {7, 7}, {7, 8}, {8, 9}},
		{{8, 8}, {8, 8}, {8, 9}, {9, 9}},
		{{9, 9}, {9, 9}, {9, 9}, {9, 9}},
	},
}

// rulaTableB maps [neck][trunk][legs] to the RULA group B score.
var rulaTableB = [6][6][2]int{
	{{1, 3}, {2, 3}, {3, 4}, {5, 5}, {6, 6}, {7, 7}}, // neck 1
	{{2, 3}, {2, 3}, {4, 5}, {5, 5}, {6, 7}, {7, 7}}, // neck 2
	{{3, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 7}}, // neck 3
	{{5, 5}, {5, 6}, {6, 7}, {7, 7}, {7, 7}, {8, 8}}, // neck 4
	{{7, 7}, {7, 7}, {7, 8}, {8, 8}, {8, 8}, {8, 8}}, // neck 5
	{{8, 8}, {8, 8}, {8, 8}, {8, 9}, {9, 9}, {9, 9}}, // neck 6
}

// rulaTableC maps [group A][group B] to the RULA grand score.
var rulaTableC = [8][7]int{
	{1, 2, 3, 3, 4, 5, 5},
	{2, 2, 3, 4, 4, 5, 5},
	{3, 3, 3, 4, 4, 5, 6},
	{3, 3, 3, 4, 5, 6, 6},
	{4, 4, 4, 5, 6, 7, 7},
	{4, 4, 5, 6, 6, 7, 7},
	{5, 5, 6, 6, 7, 7, 7},
	{5, 5, 6, 7, 7, 7, 7},
}

// rebaTableA maps [neck][trunk][legs] to the REBA group A score.
var rebaTableA = [3][5][4]int{
	{ // neck 1
		{1, 2, 3, 4}, {2, 3, 4, 5}, {2, 4, 5, 6}, {3, 5, 6, 7}, {4, 6, 7, 8},
	},
	{ // neck 2
		{1, 2, 3, 4}, {3, 4, 5, 6}, {4, 5, 6, 7}, {5, 6, 7, 8}, {6, 7, 8, 9},
	},
	{ // neck 3
		{3, 3, 5, 6}, {4, 5, 6, 7}, {5, 6, 7, 8}, {6, 7, 8, 9}, {7, 8, 9, 9},
	},
}

// rebaTableB maps [upper arm][lower arm][wrist] to the REBA group B score.
var rebaTableB = [6][2][3]int{
	{{1, 2, 2}, {1, 2, 3}}, // upper arm 1
	{{1, 2, 3}, {2, 3, 4}}, // upper arm 2
	{{3, 4, 5}, {4, 5, 5}}, // upper arm 3
	{{4, 5, 5}, {5, 6, 7}}, // upper arm 4
	{{6, 7, 8}, {7, 8, 8}}, // upper arm 5
	{{7, 8, 8}, {8, 9, 9}}, // upper arm 6
}

// rebaTableC maps [score A][score B] to the REBA grand score.
var rebaTableC = [12][12]int{
	{1, 1, 1, 2, 3, 3, 4, 5, 6, 7, 7, 7},
	{1, 2, 2, 3, 4, 4, 5, 6, 6, 7, 7, 8},
	{2, 3, 3, 3, 4, 5, 6, 7, 7, 8, 8, 8},
	{3, 4, 4, 4, 5, 6, 7, 8, 8, 9, 9, 9},
	{4, 4, 4, 5, 6, 7, 8, 8, 9, 9, 9, 9},
	{6, 6, 6, 7, 8, 8, 9, 9, 10, 10, 10, 10},
	{7, 7, 7, 8, 9, 9, 9, 10, 10, 11, 11, 11},
	{8, 8, 8, 9, 10, 10, 10, 10, 10, 11, 11, 11},
	{9, 9, 9, 10, 10, 10, 11, 11, 11, 12, 12, 12},
	{10, 10, 10, 11, 11, 11, 11, 12, 12, 12, 12, 12},
	{11, 11, 11, 11, 12, 12, 12, 12, 12, 12, 12, 12},
	{12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12},
}

// owasActionTable maps [back-1][arms-1][legs-1] to the OWAS Action
// Category. The load code deliberately does not participate: it is part of
// the displayed posture code only.
var owasActionTable = [4][3][7]int{
	{ // back 1: upright
		{1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1},
	},
	{ // back 2: flexed
		{2, 2, 2, 2, 2, 2, 2},
		{2, 2, 2, 2, 2, 2, 2},
		{2, 2, 2, 2, 2, 3, 3},
	},
	{ // back 3: twisted
		{1, 1, 1, 1, 1, 2, 2},
		{2, 2, 2, 2, 2, 2, 2},
		{2, 2, 3, 3, 3, 3, 3},
	},
	{ // back 4: flexed and twisted
		{2, 2, 3, 3, 3, 3, 3},
		{3, 3, 3, 3, 3, 3, 3},
		{3, 3, 4, 4, 4, 4, 4},
	},
}

// clampIndex converts a 1-based score into a 0-based table index within
// [0,max].
func clampIndex(score, max int) int {
	i := score - 1
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// RULATableA looks up the RULA group A score. Inputs are 1-based region
// scores; out-of-range values are clamped.
func RULATableA(upperArm, lowerArm, wrist, wristTwist int) int {
	ua := clampIndex(upperArm, 5)
	la := clampIndex(lowerArm, 2)
	w := clampIndex(wrist, 3)
	wt := clampIndex(wristTwist, 1)
	return rulaTableA[ua][la][w][wt]
}

// RULATableB looks up the RULA group B score.
func RULATableB(neck, trunk, legs int) int {
	n := clampIndex(neck, 5)
	t := clampIndex(trunk, 5)
	l := clampIndex(legs, 1)
	return rulaTableB[n][t][l]
}

// RULATableC looks up the RULA grand score from the two group scores.
func RULATableC(scoreA, scoreB int) int {
	a := clampIndex(scoreA, 7)
	b := clampIndex(scoreB, 6)
	return rulaTableC[a][b]
}

// REBATableA looks up the REBA group A score.
func REBATableA(neck, trunk, legs int) int {
	n := clampIndex(neck, 2)
	t := clampIndex(trunk, 4)
	l := clampIndex(legs, 3)
	return rebaTableA[n][t][l]
}

// REBATableB looks up the REBA group B score.
func REBATableB(upperArm, lowerArm, wrist int) int {
	ua := clampIndex(upperArm, 5)
	la := clampIndex(lowerArm, 1)
	w := clampIndex(wrist, 2)
	return rebaTableB[ua][la][w]
}

// REBATableC looks up the REBA grand score from the two group scores.
func REBATableC(scoreA, scoreB int) int {
	a := clampIndex(scoreA, 11)
	b := clampIndex(scoreB, 11)
	return rebaTableC[a][b]
}

// OWASActionCategory looks up the OWAS Action Category for a posture.
// Codes are clamped into their documented ranges; the load code never
// influences the category.
func OWASActionCategory(back, arms, legs int) int {
	b := clampIndex(back, 3)
	a := clampIndex(arms, 2)
	l := clampIndex(legs, 6)
	return owasActionTable[b][a][l]
}
