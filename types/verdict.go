package types

import (
	"strings"
	"time"
)

// VerdictLabel is the truth classification assigned to a claim.
type VerdictLabel string

const (
	VerdictTrue         VerdictLabel = "true"
	VerdictMostlyTrue   VerdictLabel = "mostly_true"
	VerdictMixed        VerdictLabel = "mixed"
	VerdictMostlyFalse  VerdictLabel = "mostly_false"
	VerdictFalse        VerdictLabel = "false"
	VerdictUnverifiable VerdictLabel = "unverifiable"
)

// Lie-detection thresholds. A claim is flagged as a lie when the verifier
// is at least LieConfidence sure the claim is false or mostly false; the
// resulting alert escalates to critical at CriticalConfidence.
const (
	LieConfidence      = 0.8
	CriticalConfidence = 0.9
)

// NormalizeVerdict maps a free-form verdict string onto the closed
// six-value set. Unknown values normalize to unverifiable so a sloppy
// verifier response can never invent a new category.
func NormalizeVerdict(s string) VerdictLabel {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	v = strings.ReplaceAll(v, "-", "_")
	switch VerdictLabel(v) {
	case VerdictTrue, VerdictMostlyTrue, VerdictMixed, VerdictMostlyFalse, VerdictFalse, VerdictUnverifiable:
		return VerdictLabel(v)
	default:
		return VerdictUnverifiable
	}
}

// ClampConfidence clamps a confidence score to [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// IsLie applies the fixed lie rule: high confidence and a false-leaning
// verdict.
func IsLie(verdict VerdictLabel, confidence float64) bool {
	if confidence < LieConfidence {
		return false
	}
	return verdict == VerdictFalse || verdict == VerdictMostlyFalse
}

// ClaimVerdict records the verification outcome for a single claim
// extracted from a turn. Created once per claim per turn, never mutated.
type ClaimVerdict struct {
	ID            string       `json:"id"`
	DebateID      string       `json:"debate_id"`
	TurnID        string       `json:"turn_id"`
	ParticipantID string       `json:"participant_id"`
	Claim         string       `json:"claim"`
	Verdict       VerdictLabel `json:"verdict"`
	Explanation   string       `json:"explanation,omitempty"`
	Confidence    float64      `json:"confidence"`
	Lie           bool         `json:"is_lie"`
	Sources       []string     `json:"sources,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// AlertSeverity grades a lie alert.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// SeverityFor returns the alert severity for a lie with the given
// confidence.
func SeverityFor(confidence float64) AlertSeverity {
	if confidence >= CriticalConfidence {
		return SeverityCritical
	}
	return SeverityWarning
}

// Alert is raised for every claim verdict flagged as a lie.
type Alert struct {
	ID              string        `json:"id"`
	DebateID        string        `json:"debate_id"`
	VerdictID       string        `json:"verdict_id"`
	ParticipantName string        `json:"participant_name"`
	Claim           string        `json:"claim"`
	Explanation     string        `json:"explanation,omitempty"`
	Severity        AlertSeverity `json:"severity"`
	CreatedAt       time.Time     `json:"created_at"`
}
