package factcheck

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/agora/testutil/mocks"
	"github.com/agoralive/agora/types"
)

type verdictRecorder struct {
	mu       sync.Mutex
	verdicts []*types.ClaimVerdict
	alerts   []*types.Alert
	err      error
}

func (r *verdictRecorder) CreateVerdict(_ context.Context, v *types.ClaimVerdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.verdicts = append(r.verdicts, v)
	return nil
}

func (r *verdictRecorder) ListVerdicts(context.Context, string) ([]*types.ClaimVerdict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verdicts, nil
}

func (r *verdictRecorder) CreateAlert(_ context.Context, a *types.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *verdictRecorder) ListAlerts(context.Context, string) ([]*types.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerts, nil
}

func fixtureDebate() (*types.Debate, *types.Turn, *types.Participant) {
	debate := &types.Debate{ID: "d1", Topic: "nuclear power is safe"}
	turn := &types.Turn{ID: "t1", DebateID: "d1", ParticipantID: "p1", Number: 1, Argument: "some argument"}
	speaker := &types.Participant{ID: "p1", Name: "Dr. Atom", Role: types.RolePro}
	return debate, turn, speaker
}

func TestVerifySkipsWithoutClaims(t *testing.T) {
	t.Parallel()

	provider := mocks.NewProvider()
	rec := &verdictRecorder{}
	v := NewVerifier(provider, rec, nil)

	debate, turn, speaker := fixtureDebate()
	verdicts, err := v.Verify(context.Background(), debate, turn, speaker, nil, "")

	require.NoError(t, err)
	assert.Nil(t, verdicts)
	assert.Zero(t, provider.CallCount())
	assert.Empty(t, rec.verdicts)
}

func TestVerifyFlagsLiesAndAlerts(t *testing.T) {
	t.Parallel()

	provider := mocks.NewProvider(`{"verdicts": [
		{"verdict": "false", "explanation": "contradicted by WHO data", "confidence": 0.85},
		{"verdict": "false", "explanation": "fabricated statistic", "confidence": 0.95},
		{"verdict": "mixed", "explanation": "partially supported", "confidence": 0.85},
		{"verdict": "mostly_true", "explanation": "broadly accurate", "confidence": 0.9}
	]}`)
	rec := &verdictRecorder{}
	v := NewVerifier(provider, rec, nil)

	debate, turn, speaker := fixtureDebate()
	claims := []string{"claim one", "claim two", "claim three", "claim four"}
	verdicts, err := v.Verify(context.Background(), debate, turn, speaker, claims, "research notes")
	require.NoError(t, err)
	require.Len(t, verdicts, 4)

	assert.True(t, verdicts[0].Lie)
	assert.True(t, verdicts[1].Lie)
	assert.False(t, verdicts[2].Lie, "mixed is never a lie")
	assert.False(t, verdicts[3].Lie)
	assert.Equal(t, "claim one", verdicts[0].Claim)
	assert.Equal(t, types.VerdictFalse, verdicts[0].Verdict)
	assert.Equal(t, "d1", verdicts[0].DebateID)
	assert.Equal(t, "t1", verdicts[0].TurnID)

	assert.Len(t, rec.verdicts, 4)
	require.Len(t, rec.alerts, 2)
	severities := map[string]types.AlertSeverity{}
	for _, a := range rec.alerts {
		assert.Equal(t, "Dr. Atom", a.ParticipantName)
		assert.Equal(t, "d1", a.DebateID)
		severities[a.Claim] = a.Severity
	}
	assert.Equal(t, types.SeverityWarning, severities["claim one"])
	assert.Equal(t, types.SeverityCritical, severities["claim two"])
}

func TestVerifyProviderFailureDegradesToUnverifiable(t *testing.T) {
	t.Parallel()

	provider := mocks.NewProvider()
	provider.Err = errors.New("upstream timeout")
	rec := &verdictRecorder{}
	v := NewVerifier(provider, rec, nil)

	debate, turn, speaker := fixtureDebate()
	verdicts, err := v.Verify(context.Background(), debate, turn, speaker, []string{"a", "b"}, "")
	require.NoError(t, err)
	require.Len(t, verdicts, 2)

	for _, verdict := range verdicts {
		assert.Equal(t, types.VerdictUnverifiable, verdict.Verdict)
		assert.Zero(t, verdict.Confidence)
		assert.False(t, verdict.Lie)
	}
	assert.Empty(t, rec.alerts)
}

func TestVerifyGarbageResponseDegrades(t *testing.T) {
	t.Parallel()

	provider := mocks.NewProvider("I cannot verify these claims, sorry.")
	rec := &verdictRecorder{}
	v := NewVerifier(provider, rec, nil)

	debate, turn, speaker := fixtureDebate()
	verdicts, err := v.Verify(context.Background(), debate, turn, speaker, []string{"a"}, "")
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, types.VerdictUnverifiable, verdicts[0].Verdict)
}

func TestVerifyPersistenceFailureSurfaces(t *testing.T) {
	t.Parallel()

	provider := mocks.NewProvider(`{"verdicts": [{"verdict": "true", "confidence": 0.7}]}`)
	rec := &verdictRecorder{err: errors.New("db down")}
	v := NewVerifier(provider, rec, nil)

	debate, turn, speaker := fixtureDebate()
	_, err := v.Verify(context.Background(), debate, turn, speaker, []string{"a"}, "")
	assert.Error(t, err)
}
