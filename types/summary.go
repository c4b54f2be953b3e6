package types

import "time"

// VoteTally is the aggregate audience vote for a debate. The engine does
// not own vote recording; it reads the tally once at summary time.
type VoteTally struct {
	DebateID string `json:"debate_id"`
	ProVotes int    `json:"pro_votes"`
	ConVotes int    `json:"con_votes"`
}

// Total returns the combined vote count.
func (v VoteTally) Total() int {
	return v.ProVotes + v.ConVotes
}

// RankedSource is a research source cited across the debate, scored for
// reliability by the summary synthesis.
type RankedSource struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Reliability float64 `json:"reliability"`
}

// Summary is the post-hoc analytical report produced at the end of the
// summarizing phase. Exactly one is created per debate.
type Summary struct {
	ID              string               `json:"id"`
	DebateID        string               `json:"debate_id"`
	Overall         string               `json:"overall"`
	WinnerAnalysis  string               `json:"winner_analysis,omitempty"`
	AccuracyScores  map[string]float64   `json:"accuracy_scores,omitempty"`
	KeyArguments    []string             `json:"key_arguments,omitempty"`
	VerdictCounts   map[VerdictLabel]int `json:"verdict_counts,omitempty"`
	Sources         []RankedSource       `json:"sources,omitempty"`
	Recommendations []string             `json:"recommendations,omitempty"`
	Votes           VoteTally            `json:"votes"`
	CreatedAt       time.Time            `json:"created_at"`
}
