package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVerdict(t *testing.T) {
	t.Parallel()

	cases := map[string]VerdictLabel{
		"true":         VerdictTrue,
		"TRUE":         VerdictTrue,
		" Mostly True": VerdictMostlyTrue,
		"mostly-false": VerdictMostlyFalse,
		"mixed":        VerdictMixed,
		"false":        VerdictFalse,
		"unverifiable": VerdictUnverifiable,
		"banana":       VerdictUnverifiable,
		"":             VerdictUnverifiable,
	}

	for in, want := range cases {
		assert.Equal(t, want, NormalizeVerdict(in), "input %q", in)
	}
}

func TestIsLie(t *testing.T) {
	t.Parallel()

	// High confidence + false-leaning verdict.
	assert.True(t, IsLie(VerdictFalse, 0.85))
	assert.True(t, IsLie(VerdictMostlyFalse, 0.8))

	// High confidence but not false-leaning.
	assert.False(t, IsLie(VerdictMixed, 0.85))
	assert.False(t, IsLie(VerdictTrue, 0.99))
	assert.False(t, IsLie(VerdictUnverifiable, 1.0))

	// False-leaning but below threshold.
	assert.False(t, IsLie(VerdictFalse, 0.79))
}

func TestSeverityFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SeverityWarning, SeverityFor(0.85))
	assert.Equal(t, SeverityCritical, SeverityFor(0.9))
	assert.Equal(t, SeverityCritical, SeverityFor(1.0))
}

func TestClampConfidence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ClampConfidence(-0.3))
	assert.Equal(t, 1.0, ClampConfidence(1.7))
	assert.Equal(t, 0.5, ClampConfidence(0.5))
}
