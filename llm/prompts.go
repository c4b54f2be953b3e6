package llm

import (
	"fmt"
	"strings"

	"github.com/agoralive/agora/types"
)

// ArgumentPrompt carries everything argument generation needs: framing,
// persona, visible history, research context, and citable documents.
type ArgumentPrompt struct {
	Topic    string
	Side     types.Role
	TurnType types.TurnType
	Persona  string

	// History is the prior transcript relabeled from the speaker's
	// perspective ("self" / "opponent"), already trimmed to budget.
	History string

	// ResearchContext is the combined research bundle text for this side.
	ResearchContext string

	// Documents lists the citable documents available to this speaker.
	Documents []string
}

// sideFraming phrases the stance for each debater role.
func sideFraming(side types.Role) string {
	if side == types.RoleCon {
		return "You argue AGAINST the motion."
	}
	return "You argue FOR the motion."
}

// turnFraming phrases the expectation for each turn type.
func turnFraming(t types.TurnType) string {
	switch t {
	case types.TurnOpening:
		return "Deliver your opening statement. Lay out your strongest case; do not respond to the opponent."
	case types.TurnClosing:
		return "Deliver your closing statement. Consolidate your case and address the opponent's strongest points."
	default:
		return "Deliver a rebuttal. Engage directly with the opponent's most recent argument, quoting their actual words where useful."
	}
}

// System returns the system framing for argument generation.
func (p ArgumentPrompt) System() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a debater in a formal adversarial debate on the motion: %q.\n", p.Topic)
	b.WriteString(sideFraming(p.Side))
	b.WriteString("\n")
	b.WriteString(turnFraming(p.TurnType))
	if p.Persona != "" {
		fmt.Fprintf(&b, "\nPersona: %s", p.Persona)
	}
	b.WriteString("\n\nRespond with a single JSON object:\n")
	b.WriteString(`{"argument": "...", "citations": [{"label": "...", "url": "..."}], "claims": ["..."]}` + "\n")
	b.WriteString("claims lists every individually verifiable factual assertion in your argument, verbatim.")
	return b.String()
}

// User returns the user context for argument generation.
func (p ArgumentPrompt) User() string {
	var b strings.Builder
	if p.History != "" {
		b.WriteString("Debate so far:\n")
		b.WriteString(p.History)
		b.WriteString("\n\n")
	}
	if p.ResearchContext != "" {
		b.WriteString("Research context:\n")
		b.WriteString(p.ResearchContext)
		b.WriteString("\n\n")
	}
	if len(p.Documents) > 0 {
		b.WriteString("Citable documents:\n")
		for _, d := range p.Documents {
			b.WriteString("- ")
			b.WriteString(d)
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		b.WriteString("No prior turns. Open the debate.")
	}
	return b.String()
}

// VerifyPrompt carries a batched claim-verification request.
type VerifyPrompt struct {
	Topic    string
	Argument string
	Claims   []string

	// ResearchContext grounds verification in the same material the
	// debaters saw.
	ResearchContext string
}

// System returns the system framing for claim verification.
func (p VerifyPrompt) System() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a real-time fact checker for a debate on: %q.\n", p.Topic)
	b.WriteString("For every claim, judge its factual accuracy.\n\n")
	b.WriteString("Respond with a JSON array, one object per claim, in the same order:\n")
	b.WriteString(`[{"claim": "...", "verdict": "true|mostly_true|mixed|mostly_false|false|unverifiable", "explanation": "...", "confidence": 0.0, "sources": ["..."]}]`)
	return b.String()
}

// User returns the user context for claim verification.
func (p VerifyPrompt) User() string {
	var b strings.Builder
	b.WriteString("Argument:\n")
	b.WriteString(p.Argument)
	b.WriteString("\n\nClaims to verify:\n")
	for i, c := range p.Claims {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	if p.ResearchContext != "" {
		b.WriteString("\nResearch context:\n")
		b.WriteString(p.ResearchContext)
	}
	return b.String()
}

// SummaryPrompt carries a post-debate summary synthesis request.
type SummaryPrompt struct {
	Topic      string
	Transcript string
	Verdicts   string
	Votes      types.VoteTally
}

// System returns the system framing for summary synthesis.
func (p SummaryPrompt) System() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an analyst producing the post-debate report for: %q.\n\n", p.Topic)
	b.WriteString("Respond with a single JSON object:\n")
	b.WriteString(`{"overall": "...", "winner_analysis": "...", "accuracy_scores": {"name": 0.0}, "key_arguments": ["..."], "verdict_counts": {"true": 0}, "sources": [{"title": "...", "url": "...", "reliability": 0.0}], "recommendations": ["..."]}`)
	return b.String()
}

// User returns the user context for summary synthesis.
func (p SummaryPrompt) User() string {
	var b strings.Builder
	b.WriteString("Transcript:\n")
	b.WriteString(p.Transcript)
	b.WriteString("\n\nFact-check verdicts:\n")
	if p.Verdicts == "" {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(p.Verdicts)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nAudience votes: pro=%d con=%d\n", p.Votes.ProVotes, p.Votes.ConVotes)
	return b.String()
}
