package types

import "time"

// Status represents the lifecycle phase of a debate.
//
// The phase order is fixed: setup → researching → live → voting →
// summarizing → completed. The only other legal edge is the failure edge,
// which jumps from any non-terminal phase straight to completed.
type Status string

const (
	StatusSetup       Status = "setup"
	StatusResearching Status = "researching"
	StatusLive        Status = "live"
	StatusVoting      Status = "voting"
	StatusSummarizing Status = "summarizing"
	StatusCompleted   Status = "completed"
)

// phaseOrder maps each status to its position in the fixed phase sequence.
var phaseOrder = map[Status]int{
	StatusSetup:       0,
	StatusResearching: 1,
	StatusLive:        2,
	StatusVoting:      3,
	StatusSummarizing: 4,
	StatusCompleted:   5,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := phaseOrder[s]
	return ok
}

// IsTerminal reports whether s is the terminal status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// CanTransitionTo reports whether moving from s to next is legal: either
// the immediate successor in the phase order, or the failure edge to
// completed from any non-terminal phase.
func (s Status) CanTransitionTo(next Status) bool {
	cur, ok := phaseOrder[s]
	if !ok {
		return false
	}
	to, ok := phaseOrder[next]
	if !ok {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == StatusCompleted {
		return true
	}
	return to == cur+1
}

// Role identifies a participant's function in the debate.
type Role string

const (
	RolePro         Role = "pro"
	RoleCon         Role = "con"
	RoleFactChecker Role = "fact_checker"
	RoleModerator   Role = "moderator"
)

// Opponent returns the opposing debater role. It is only meaningful for
// RolePro and RoleCon.
func (r Role) Opponent() Role {
	switch r {
	case RolePro:
		return RoleCon
	case RoleCon:
		return RolePro
	default:
		return r
	}
}

// ResearchDepth selects how deep the pre-debate research lookup goes.
type ResearchDepth string

const (
	ResearchBasic    ResearchDepth = "basic"
	ResearchAdvanced ResearchDepth = "advanced"
)

// DebateConfig holds the per-debate knobs fixed at creation time.
// Immutable once research begins.
type DebateConfig struct {
	// MaxTurns is the total number of turns across both sides. Must be ≥ 2
	// and even so turns can be processed in pro/con pairs.
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// TurnSeconds is the per-turn generation time budget, advisory only.
	TurnSeconds int `json:"turn_seconds" yaml:"turn_seconds"`

	// ResearchDepth selects the research lookup tier.
	ResearchDepth ResearchDepth `json:"research_depth" yaml:"research_depth"`

	// EnableFactCheck toggles the claim-verification side pipeline.
	EnableFactCheck bool `json:"enable_fact_check" yaml:"enable_fact_check"`

	// EnableSpeech toggles per-turn speech synthesis.
	EnableSpeech bool `json:"enable_speech" yaml:"enable_speech"`
}

// Debate is the root aggregate. Status is the only field the orchestrator
// mutates after setup; on failure the error marker is written into
// Description so a completed-with-error debate stays inspectable.
type Debate struct {
	ID          string       `json:"id"`
	Topic       string       `json:"topic"`
	Description string       `json:"description,omitempty"`
	Status      Status       `json:"status"`
	Config      DebateConfig `json:"config"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Participant is one agent taking part in a debate. Exactly one pro and one
// con participant must exist before orchestration starts.
type Participant struct {
	ID       string `json:"id"`
	DebateID string `json:"debate_id"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Persona  string `json:"persona,omitempty"`
	VoiceID  string `json:"voice_id,omitempty"`
}
