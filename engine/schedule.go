package engine

import (
	"time"

	"github.com/agoralive/agora/types"
)

// TurnTypeFor classifies a 1-based turn number within a debate of
// maxTurns total turns. The first two turns are openings, the last two
// closings, everything between a rebuttal. The opening rule wins when
// the windows overlap, so a two-turn debate is two openings.
func TurnTypeFor(number, maxTurns int) types.TurnType {
	switch {
	case number <= 2:
		return types.TurnOpening
	case number > maxTurns-2:
		return types.TurnClosing
	default:
		return types.TurnRebuttal
	}
}

// RoleFor maps a 1-based turn number to the speaking side. Pro speaks
// the odd turns, con the even ones.
func RoleFor(number int) types.Role {
	if number%2 == 1 {
		return types.RolePro
	}
	return types.RoleCon
}

// displayDelay paces turn publication against human reading speed: the
// time to speak the argument at wordsPerMinute, floored at minDisplay.
func displayDelay(wordCount, wordsPerMinute int, minDisplay time.Duration) time.Duration {
	if wordsPerMinute <= 0 {
		return minDisplay
	}
	spoken := time.Duration(float64(wordCount) / float64(wordsPerMinute) * float64(time.Minute))
	if spoken < minDisplay {
		return minDisplay
	}
	return spoken
}
