package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	// Normal phase order.
	assert.True(t, StatusSetup.CanTransitionTo(StatusResearching))
	assert.True(t, StatusResearching.CanTransitionTo(StatusLive))
	assert.True(t, StatusLive.CanTransitionTo(StatusVoting))
	assert.True(t, StatusVoting.CanTransitionTo(StatusSummarizing))
	assert.True(t, StatusSummarizing.CanTransitionTo(StatusCompleted))

	// No skipping or revisiting.
	assert.False(t, StatusSetup.CanTransitionTo(StatusLive))
	assert.False(t, StatusLive.CanTransitionTo(StatusResearching))
	assert.False(t, StatusVoting.CanTransitionTo(StatusVoting))

	// Failure edge: any non-terminal state may jump to completed.
	for _, s := range []Status{StatusSetup, StatusResearching, StatusLive, StatusVoting, StatusSummarizing} {
		assert.True(t, s.CanTransitionTo(StatusCompleted), "failure edge from %s", s)
	}

	// Terminal state is sticky.
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusSetup))
}

func TestRoleOpponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RoleCon, RolePro.Opponent())
	assert.Equal(t, RolePro, RoleCon.Opponent())
	assert.Equal(t, RoleModerator, RoleModerator.Opponent())
}

func TestTurnWordCount(t *testing.T) {
	t.Parallel()

	turn := &Turn{Argument: "one two  three\nfour\t five"}
	assert.Equal(t, 5, turn.WordCount())

	empty := &Turn{}
	assert.Equal(t, 0, empty.WordCount())
}
