package ergo

// Modifier is one named posture adjustment contributing to a region score,
// e.g. "abducted" on the upper arm or "side_bending" on the trunk.
type Modifier struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RegionScore decomposes a body-region score into its base value and the
// posture modifiers applied on top. Total is the clamped sum of Base and
// all modifier values; downstream consumers reconstruct the total from the
// parts, so modifiers carry exactly what was applied.
type RegionScore struct {
	Base      int        `json:"base"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	Total     int        `json:"total"`
}

// newRegionScore assembles a region score, dropping zero-valued modifiers
// and clamping the total to the region's documented maximum.
func newRegionScore(base, max int, mods ...Modifier) RegionScore {
	rs := RegionScore{Base: base}
	total := base
	for _, m := range mods {
		if m.Value == 0 {
			continue
		}
		rs.Modifiers = append(rs.Modifiers, m)
		total += m.Value
	}
	if total > max {
		total = max
	}
	rs.Total = total
	return rs
}

// Sum returns base plus all modifier values, before clamping.
func (r RegionScore) Sum() int {
	s := r.Base
	for _, m := range r.Modifiers {
		s += m.Value
	}
	return s
}

// Modifier returns the value of the named modifier, 0 when absent.
func (r RegionScore) Modifier(name string) int {
	for _, m := range r.Modifiers {
		if m.Name == name {
			return m.Value
		}
	}
	return 0
}

// baseRegion is shorthand for a modifier-free region score.
func baseRegion(base, max int) RegionScore {
	return newRegionScore(base, max)
}
