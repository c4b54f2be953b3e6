package types

import "time"

// TurnType tags a turn by its position in the debate.
type TurnType string

const (
	TurnOpening  TurnType = "opening"
	TurnRebuttal TurnType = "rebuttal"
	TurnClosing  TurnType = "closing"
)

// Citation is a labelled reference attached to a turn's argument.
type Citation struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// SourceSnippet attributes a research source used while generating a turn.
type SourceSnippet struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Turn is one participant's contribution at a fixed position in the debate
// sequence. Turn numbers are 1-based and contiguous per debate. Turns are
// immutable once persisted.
type Turn struct {
	ID            string          `json:"id"`
	DebateID      string          `json:"debate_id"`
	ParticipantID string          `json:"participant_id"`
	Number        int             `json:"number"`
	Type          TurnType        `json:"type"`
	Argument      string          `json:"argument"`
	Citations     []Citation      `json:"citations,omitempty"`
	Sources       []SourceSnippet `json:"sources,omitempty"`
	AudioURL      string          `json:"audio_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// WordCount returns the number of whitespace-separated words in the
// argument text. Used to estimate spoken display duration.
func (t *Turn) WordCount() int {
	n := 0
	inWord := false
	for _, r := range t.Argument {
		switch r {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				n++
				inWord = true
			}
		}
	}
	return n
}
