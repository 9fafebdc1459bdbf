package ergo

import "testing"

func TestRULATableATotality(t *testing.T) {
	for ua := 1; ua <= 6; ua++ {
		for la := 1; la <= 3; la++ {
			for w := 1; w <= 4; w++ {
				for wt := 1; wt <= 2; wt++ {
					got := RULATableA(ua, la, w, wt)
					if got < 1 || got > 9 {
						t.Fatalf("RULATableA(%d,%d,%d,%d) = %d, out of range", ua, la, w, wt, got)
					}
				}
			}
		}
	}
}

func TestRULATableBTotality(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for tr := 1; tr <= 6; tr++ {
			for l := 1; l <= 2; l++ {
				got := RULATableB(n, tr, l)
				if got < 1 || got > 9 {
					t.Fatalf("RULATableB(%d,%d,%d) = %d, out of range", n, tr, l, got)
				}
			}
		}
	}
}

func TestRULATableCClampsHighGroupScores(t *testing.T) {
	// Group scores above the table bounds clamp to the last row/column.
	if got, want := RULATableC(12, 9), RULATableC(8, 7); got != want {
		t.Fatalf("RULATableC(12,9) = %d, want clamp to %d", got, want)
	}
	if got := RULATableC(0, 0); got != 1 {
		t.Fatalf("RULATableC(0,0) = %d, want 1", got)
	}
}

func TestREBATableTotality(t *testing.T) {
	for n := 1; n <= 3; n++ {
		for tr := 1; tr <= 5; tr++ {
			for l := 1; l <= 4; l++ {
				if got := REBATableA(n, tr, l); got < 1 || got > 9 {
					t.Fatalf("REBATableA(%d,%d,%d) = %d, out of range", n, tr, l, got)
				}
			}
		}
	}
	for ua := 1; ua <= 6; ua++ {
		for la := 1; la <= 2; la++ {
			for w := 1; w <= 3; w++ {
				if got := REBATableB(ua, la, w); got < 1 || got > 9 {
					t.Fatalf("REBATableB(%d,%d,%d) = %d, out of range", ua, la, w, got)
				}
			}
		}
	}
	for a := 1; a <= 12; a++ {
		for b := 1; b <= 12; b++ {
			if got := REBATableC(a, b); got < 1 || got > 12 {
				t.Fatalf("REBATableC(%d,%d) = %d, out of range", a, b, got)
			}
		}
	}
}

func TestOWASActionCategoryTotality(t *testing.T) {
	for back := 1; back <= 4; back++ {
		for arms := 1; arms <= 3; arms++ {
			for legs := 1; legs <= 7; legs++ {
				if got := OWASActionCategory(back, arms, legs); got < 1 || got > 4 {
					t.Fatalf("OWASActionCategory(%d,%d,%d) = %d, out of range", back, arms, legs, got)
				}
			}
		}
	}
}

func TestOWASActionCategorySpotChecks(t *testing.T) {
	cases := []struct {
		back, arms, legs, want int
	}{
		{1, 1, 1, 1},
		{2, 3, 6, 3},
		{3, 1, 6, 2},
		{4, 3, 3, 4},
		{4, 1, 1, 2},
	}
	for _, tc := range cases {
		if got := OWASActionCategory(tc.back, tc.arms, tc.legs); got != tc.want {
			t.Fatalf("OWASActionCategory(%d,%d,%d) = %d, want %d", tc.back, tc.arms, tc.legs, got, tc.want)
		}
	}
}

func TestRiskLevelLadders(t *testing.T) {
	if got := RULARiskLevel(2); got != RULAAcceptable {
		t.Fatalf("RULARiskLevel(2) = %s", got)
	}
	if got := RULARiskLevel(7); got != RULAChangeNow {
		t.Fatalf("RULARiskLevel(7) = %s", got)
	}
	if got := REBARiskLevel(1); got != REBANegligible {
		t.Fatalf("REBARiskLevel(1) = %s", got)
	}
	if got := REBARiskLevel(11); got != REBAVeryHigh {
		t.Fatalf("REBARiskLevel(11) = %s", got)
	}
	if got := NLERiskLevel(1.0); got != NLESafe {
		t.Fatalf("NLERiskLevel(1.0) = %s", got)
	}
	if got := NLERiskLevel(3.5); got != NLEHigh {
		t.Fatalf("NLERiskLevel(3.5) = %s", got)
	}
	if got := SIRiskLevel(2.99); got != SISafe {
		t.Fatalf("SIRiskLevel(2.99) = %s", got)
	}
	if got := SIRiskLevel(7); got != SIHazardous {
		t.Fatalf("SIRiskLevel(7) = %s", got)
	}
}
