package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/agora/types"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()

	s, err := Open(Options{Driver: "sqlite", DSN: ":memory:"}, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestDebate(t *testing.T, s *GormStore) *types.Debate {
	t.Helper()

	d := &types.Debate{
		ID:     uuid.New().String(),
		Topic:  "Renewables will outcompete fossil fuels by 2035",
		Status: types.StatusSetup,
		Config: types.DebateConfig{MaxTurns: 4, ResearchDepth: types.ResearchBasic},
	}
	require.NoError(t, s.CreateDebate(context.Background(), d))
	return d
}

func TestDebateRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	got, err := s.GetDebate(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Topic, got.Topic)
	assert.Equal(t, types.StatusSetup, got.Status)
	assert.Equal(t, 4, got.Config.MaxTurns)

	require.NoError(t, s.UpdateDebateStatus(ctx, d.ID, types.StatusResearching))
	got, err = s.GetDebate(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusResearching, got.Status)

	require.NoError(t, s.UpdateDebateDescription(ctx, d.ID, "failed: boom"))
	got, err = s.GetDebate(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed: boom", got.Description)
}

func TestGetDebateNotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	_, err := s.GetDebate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdateDebateStatus(context.Background(), "missing", types.StatusLive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParticipants(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	pro := &types.Participant{ID: uuid.New().String(), DebateID: d.ID, Role: types.RolePro, Name: "Ada"}
	con := &types.Participant{ID: uuid.New().String(), DebateID: d.ID, Role: types.RoleCon, Name: "Ned"}
	require.NoError(t, s.CreateParticipant(ctx, pro))
	require.NoError(t, s.CreateParticipant(ctx, con))

	got, err := s.ListParticipants(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTurnIdempotentByNaturalKey(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	first := &types.Turn{
		ID:       uuid.New().String(),
		DebateID: d.ID,
		Number:   1,
		Type:     types.TurnOpening,
		Argument: "original",
		Citations: []types.Citation{
			{Label: "IEA", URL: "https://iea.org"},
		},
	}
	require.NoError(t, s.CreateTurn(ctx, first))

	// A duplicate write for the same (debate, number) is a no-op.
	dup := &types.Turn{ID: uuid.New().String(), DebateID: d.ID, Number: 1, Argument: "replayed"}
	require.NoError(t, s.CreateTurn(ctx, dup))

	turns, err := s.ListTurns(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "original", turns[0].Argument)
	require.Len(t, turns[0].Citations, 1)
	assert.Equal(t, "IEA", turns[0].Citations[0].Label)
}

func TestListTurnsOrderedByNumber(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, s.CreateTurn(ctx, &types.Turn{
			ID: uuid.New().String(), DebateID: d.ID, Number: n, Argument: "t",
		}))
	}

	turns, err := s.ListTurns(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	for i, turn := range turns {
		assert.Equal(t, i+1, turn.Number)
	}
}

func TestVerdictsAndAlerts(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	v := &types.ClaimVerdict{
		ID:         uuid.New().String(),
		DebateID:   d.ID,
		TurnID:     uuid.New().String(),
		Claim:      "Coal use rose 40% in 2024",
		Verdict:    types.VerdictFalse,
		Confidence: 0.92,
		Lie:        true,
		Sources:    []string{"https://iea.org"},
	}
	require.NoError(t, s.CreateVerdict(ctx, v))
	require.NoError(t, s.CreateAlert(ctx, &types.Alert{
		ID:        uuid.New().String(),
		DebateID:  d.ID,
		VerdictID: v.ID,
		Claim:     v.Claim,
		Severity:  types.SeverityCritical,
	}))

	verdicts, err := s.ListVerdicts(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.True(t, verdicts[0].Lie)
	assert.Equal(t, []string{"https://iea.org"}, verdicts[0].Sources)

	alerts, err := s.ListAlerts(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, types.SeverityCritical, alerts[0].Severity)
}

func TestSummarySingletonPerDebate(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	first := &types.Summary{
		ID:       uuid.New().String(),
		DebateID: d.ID,
		Overall:  "first",
		Votes:    types.VoteTally{DebateID: d.ID, ProVotes: 2, ConVotes: 1},
	}
	require.NoError(t, s.CreateSummary(ctx, first))

	// The second write is swallowed by the natural-key conflict.
	require.NoError(t, s.CreateSummary(ctx, &types.Summary{
		ID: uuid.New().String(), DebateID: d.ID, Overall: "second",
	}))

	got, err := s.GetSummary(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Overall)
	assert.Equal(t, 2, got.Votes.ProVotes)
}

func TestVotes(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	// Zero tally before any vote.
	tally, err := s.GetTally(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, tally.Total())

	require.NoError(t, s.AddVote(ctx, d.ID, types.RolePro))
	require.NoError(t, s.AddVote(ctx, d.ID, types.RolePro))
	require.NoError(t, s.AddVote(ctx, d.ID, types.RoleCon))
	assert.Error(t, s.AddVote(ctx, d.ID, types.RoleModerator))

	tally, err = s.GetTally(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tally.ProVotes)
	assert.Equal(t, 1, tally.ConVotes)
}

func TestDocuments(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	d := newTestDebate(t, s)

	require.NoError(t, s.SaveDocument(ctx, &Document{
		ID:       uuid.New().String(),
		DebateID: d.ID,
		Side:     types.RolePro,
		Title:    "IEA World Energy Outlook",
		URL:      "https://iea.org/weo",
	}))

	docs, err := s.ListDocuments(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, types.RolePro, docs[0].Side)
}

func TestWritesPublishChangeEvents(t *testing.T) {
	t.Parallel()

	notifier := NewMemoryNotifier(nil)
	s, err := Open(Options{Driver: "sqlite", DSN: ":memory:"}, notifier, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	d := newTestDebate(t, s)

	ch, cancel, err := notifier.Subscribe(ctx, d.ID, TableTurns)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, s.CreateTurn(ctx, &types.Turn{
		ID: uuid.New().String(), DebateID: d.ID, Number: 1, Argument: "x",
	}))

	ev := <-ch
	assert.Equal(t, TableTurns, ev.Table)
	assert.Equal(t, "insert", ev.Action)
	assert.Equal(t, d.ID, ev.DebateID)
}
