// Package ergo implements the table-driven ergonomic risk assessments:
// RULA, REBA and OWAS from detected posture landmarks, and the NIOSH
// Lifting Equation and Strain Index from manually supplied task parameters.
//
// All table lookups are total functions: indices derived from noisy
// upstream geometry are clamped into the table's valid range rather than
// rejected, so a calculator never fails on out-of-range input.
package ergo

// RiskLevel tags an assessment outcome. Each method draws from its own
// closed set of levels.
type RiskLevel string

// RULA risk levels.
const (
	RULAAcceptable  RiskLevel = "acceptable"
	RULAInvestigate RiskLevel = "investigate"
	RULAChangeSoon  RiskLevel = "change_soon"
	RULAChangeNow   RiskLevel = "change_now"
)

// REBA risk levels.
const (
	REBANegligible RiskLevel = "negligible"
	REBALow        RiskLevel = "low"
	REBAMedium     RiskLevel = "medium"
	REBAHigh       RiskLevel = "high"
	REBAVeryHigh   RiskLevel = "very_high"
)

// OWAS risk levels, one per Action Category.
const (
	OWASNormal      RiskLevel = "normal"
	OWASSlight      RiskLevel = "slight"
	OWASHarmful     RiskLevel = "harmful"
	OWASVeryHarmful RiskLevel = "very_harmful"
)

// NLE risk levels over the Lifting Index.
const (
	NLESafe      RiskLevel = "safe"
	NLEIncreased RiskLevel = "increased"
	NLEHigh      RiskLevel = "high"
)

// SI risk levels over the Strain Index score.
const (
	SISafe      RiskLevel = "safe"
	SIUncertain RiskLevel = "uncertain"
	SIHazardous RiskLevel = "hazardous"
)

// RULARiskLevel classifies a final RULA score.
func RULARiskLevel(score int) RiskLevel {
	switch {
	case score <= 2:
		return RULAAcceptable
	case score <= 4:
		return RULAInvestigate
	case score <= 6:
		return RULAChangeSoon
	default:
		return RULAChangeNow
	}
}

// REBARiskLevel classifies a final REBA score.
func REBARiskLevel(score int) RiskLevel {
	switch {
	case score <= 1:
		return REBANegligible
	case score <= 3:
		return REBALow
	case score <= 7:
		return REBAMedium
	case score <= 10:
		return REBAHigh
	default:
		return REBAVeryHigh
	}
}

// OWASRiskLevel classifies an OWAS Action Category.
func OWASRiskLevel(actionCategory int) RiskLevel {
	switch actionCategory {
	case 1:
		return OWASNormal
	case 2:
		return OWASSlight
	case 3:
		return OWASHarmful
	default:
		return OWASVeryHarmful
	}
}

// NLERiskLevel classifies a Lifting Index.
func NLERiskLevel(li float64) RiskLevel {
	switch {
	case li <= 1.0:
		return NLESafe
	case li <= 3.0:
		return NLEIncreased
	default:
		return NLEHigh
	}
}

// SIRiskLevel classifies a Strain Index score.
func SIRiskLevel(score float64) RiskLevel {
	switch {
	case score < 3:
		return SISafe
	case score < 7:
		return SIUncertain
	default:
		return SIHazardous
	}
}

var actionText = map[RiskLevel]string{
	RULAAcceptable:  "Posture is acceptable; no change required.",
	RULAInvestigate: "Further investigation of the working posture is needed.",
	RULAChangeSoon:  "Investigate and change the working posture soon.",
	RULAChangeNow:   "Investigate and change the working posture immediately.",

	REBANegligible: "No action required.",
	REBALow:        "Change may be needed.",
	REBAMedium:     "Further investigation; change soon.",
	REBAHigh:       "Investigate and implement change soon.",
	REBAVeryHigh:   "Implement change immediately.",

	OWASNormal:      "No corrective action required.",
	OWASSlight:      "Corrective action needed in the near future.",
	OWASHarmful:     "Corrective action needed as soon as possible.",
	OWASVeryHarmful: "Corrective action needed immediately.",

	// NLEHigh ("high") and SISafe ("safe") share string values with
	// REBAHigh and NLESafe; a map keyed by RiskLevel can hold only one
	// entry per string, so the earlier entries cover them.
	NLESafe:      "Maintain current lifting conditions.",
	NLEIncreased: "Review and improve lifting conditions.",

	SIUncertain: "Task outcome is uncertain; monitor exposure.",
	SIHazardous: "Task is probably hazardous; redesign required.",
}

// ActionRequired returns the recommended action for a risk level.
func ActionRequired(level RiskLevel) string {
	return actionText[level]
}
