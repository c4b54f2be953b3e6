package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/agoralive/agora/types"
)

// historyEncoding is the tokenizer used to budget prompt history.
const historyEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// countTokens measures text against the history budget. When the
// tokenizer is unavailable it falls back to a bytes/4 estimate.
func countTokens(text string) int {
	encOnce.Do(func() {
		enc, _ = tiktoken.GetEncoding(historyEncoding)
	})
	if enc == nil {
		return len(text)/4 + 1
	}
	return len(enc.Encode(text, nil, nil))
}

// HistoryBuilder renders the prior transcript from one speaker's
// perspective, newest-first trimmed to a token budget.
type HistoryBuilder struct {
	// TokenBudget caps the rendered history; zero means unlimited.
	TokenBudget int
}

// Build renders turns for a speaker with the given role. Each entry is
// labeled "self" or "opponent" so the prompt never leaks participant
// identities, and entries stay in chronological order. When the budget
// is exceeded the oldest turns are dropped first.
func (b HistoryBuilder) Build(turns []*types.Turn, roles map[string]types.Role, self types.Role) string {
	if len(turns) == 0 {
		return ""
	}

	entries := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "opponent"
		if roles[t.ParticipantID] == self {
			label = "self"
		}
		entries = append(entries, fmt.Sprintf("[%s, %s #%d]: %s", label, t.Type, t.Number, t.Argument))
	}

	if b.TokenBudget <= 0 {
		return strings.Join(entries, "\n\n")
	}

	// Keep the newest entries that fit. The newest entry is always
	// included even when it alone exceeds the budget.
	total := 0
	first := len(entries)
	for i := len(entries) - 1; i >= 0; i-- {
		cost := countTokens(entries[i])
		if first < len(entries) && total+cost > b.TokenBudget {
			break
		}
		total += cost
		first = i
	}
	return strings.Join(entries[first:], "\n\n")
}
