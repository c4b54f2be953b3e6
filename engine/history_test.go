package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/agora/types"
)

func historyFixture() ([]*types.Turn, map[string]types.Role) {
	turns := []*types.Turn{
		{ParticipantID: "p-pro", Number: 1, Type: types.TurnOpening, Argument: "pro opening"},
		{ParticipantID: "p-con", Number: 2, Type: types.TurnOpening, Argument: "con opening"},
		{ParticipantID: "p-pro", Number: 3, Type: types.TurnRebuttal, Argument: "pro rebuttal"},
	}
	roles := map[string]types.Role{"p-pro": types.RolePro, "p-con": types.RoleCon}
	return turns, roles
}

func TestHistoryRelabelsPerSpeaker(t *testing.T) {
	t.Parallel()

	turns, roles := historyFixture()
	b := HistoryBuilder{}

	forPro := b.Build(turns, roles, types.RolePro)
	assert.Contains(t, forPro, "[self, opening #1]: pro opening")
	assert.Contains(t, forPro, "[opponent, opening #2]: con opening")
	assert.Contains(t, forPro, "[self, rebuttal #3]: pro rebuttal")

	forCon := b.Build(turns, roles, types.RoleCon)
	assert.Contains(t, forCon, "[opponent, opening #1]: pro opening")
	assert.Contains(t, forCon, "[self, opening #2]: con opening")
	assert.NotContains(t, forCon, "p-pro", "participant IDs must not leak into prompts")
}

func TestHistoryKeepsChronologicalOrder(t *testing.T) {
	t.Parallel()

	turns, roles := historyFixture()
	out := HistoryBuilder{}.Build(turns, roles, types.RolePro)

	first := strings.Index(out, "#1")
	last := strings.Index(out, "#3")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, last, first)
}

func TestHistoryBudgetDropsOldestFirst(t *testing.T) {
	t.Parallel()

	turns, roles := historyFixture()
	// A budget that fits roughly one entry.
	out := HistoryBuilder{TokenBudget: 12}.Build(turns, roles, types.RolePro)

	assert.Contains(t, out, "#3", "the newest turn is always kept")
	assert.NotContains(t, out, "#1")
}

func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, HistoryBuilder{}.Build(nil, nil, types.RolePro))
}
