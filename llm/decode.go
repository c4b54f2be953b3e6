package llm

import (
	"encoding/json"
	"strings"
)

// ArgumentPayload is the structured shape requested from argument
// generation.
type ArgumentPayload struct {
	Argument  string            `json:"argument"`
	Citations []CitationPayload `json:"citations,omitempty"`
	Claims    []string          `json:"claims,omitempty"`
}

// CitationPayload is one cited reference in an argument response.
type CitationPayload struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// VerdictPayload is the per-claim shape requested from claim
// verification.
type VerdictPayload struct {
	Claim       string   `json:"claim"`
	Verdict     string   `json:"verdict"`
	Explanation string   `json:"explanation,omitempty"`
	Confidence  float64  `json:"confidence"`
	Sources     []string `json:"sources,omitempty"`
}

// verdictEnvelope tolerates both a bare array and a wrapped object.
type verdictEnvelope struct {
	Verdicts []VerdictPayload `json:"verdicts"`
}

// SourcePayload is one ranked source in a summary response.
type SourcePayload struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Reliability float64 `json:"reliability"`
}

// SummaryPayload is the structured shape requested from summary
// synthesis.
type SummaryPayload struct {
	Overall         string             `json:"overall"`
	WinnerAnalysis  string             `json:"winner_analysis,omitempty"`
	AccuracyScores  map[string]float64 `json:"accuracy_scores,omitempty"`
	KeyArguments    []string           `json:"key_arguments,omitempty"`
	VerdictCounts   map[string]int     `json:"verdict_counts,omitempty"`
	Sources         []SourcePayload    `json:"sources,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// Decode attempts a strict JSON decode of raw into v; on failure it
// extracts the first balanced JSON value (markdown fences tolerated) and
// retries. The caller supplies the third stage: a fixed fallback value
// when Decode returns false.
func Decode(raw string, v any) bool {
	trimmed := strings.TrimSpace(raw)
	if json.Unmarshal([]byte(trimmed), v) == nil {
		return true
	}
	if extracted, ok := extractJSON(trimmed); ok {
		return json.Unmarshal([]byte(extracted), v) == nil
	}
	return false
}

// extractJSON pulls the first balanced JSON object or array out of text
// that may surround it with prose or markdown fences.
func extractJSON(s string) (string, bool) {
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = rest[:j]
		}
	}

	start := -1
	for i, r := range s {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// DecodeArgument decodes an argument response. On structural failure the
// raw text becomes the argument with empty citations and claims, so a
// turn is degraded rather than lost.
func DecodeArgument(raw string) ArgumentPayload {
	var p ArgumentPayload
	if Decode(raw, &p) && strings.TrimSpace(p.Argument) != "" {
		return p
	}
	return ArgumentPayload{Argument: strings.TrimSpace(raw)}
}

// DecodeVerdicts decodes a verification response covering claims. On
// structural failure it emits one unverifiable, zero-confidence record
// per input claim so no claim is dropped silently. Claims the response
// omits get the same fallback record.
func DecodeVerdicts(raw string, claims []string) []VerdictPayload {
	var payloads []VerdictPayload
	if !Decode(raw, &payloads) {
		var env verdictEnvelope
		if Decode(raw, &env) {
			payloads = env.Verdicts
		}
	}

	out := make([]VerdictPayload, 0, len(claims))
	for i, claim := range claims {
		if i < len(payloads) {
			p := payloads[i]
			if strings.TrimSpace(p.Claim) == "" {
				p.Claim = claim
			}
			out = append(out, p)
			continue
		}
		out = append(out, VerdictPayload{Claim: claim, Verdict: "unverifiable", Confidence: 0})
	}
	return out
}

// DecodeSummary decodes a summary response. On structural failure the raw
// text becomes the overall narrative.
func DecodeSummary(raw string) SummaryPayload {
	var p SummaryPayload
	if Decode(raw, &p) && strings.TrimSpace(p.Overall) != "" {
		return p
	}
	return SummaryPayload{Overall: strings.TrimSpace(raw)}
}
