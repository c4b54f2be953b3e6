// Package factcheck implements the claim-verification side pipeline that
// runs off every generated turn: batch-verify the turn's extracted
// claims, flag high-confidence falsehoods as lies, and persist verdicts
// and alerts.
package factcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agoralive/agora/llm"
	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/types"
)

// Verifier checks the factual claims of a turn and records the outcome.
type Verifier struct {
	provider llm.Provider
	store    store.VerdictStore
	logger   *zap.Logger
}

// NewVerifier creates a claim verifier.
func NewVerifier(provider llm.Provider, st store.VerdictStore, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		provider: provider,
		store:    st,
		logger:   logger.With(zap.String("component", "factcheck")),
	}
}

// Verify runs one batched verification for all claims of a turn and
// persists every verdict plus an alert per detected lie. Verification is
// claim-gated: an empty claim list is a no-op.
//
// A structurally broken verification response degrades to one
// unverifiable, zero-confidence verdict per claim; only persistence
// failures surface as errors.
func (v *Verifier) Verify(ctx context.Context, debate *types.Debate, turn *types.Turn, speaker *types.Participant, claims []string, researchContext string) ([]*types.ClaimVerdict, error) {
	if len(claims) == 0 {
		return nil, nil
	}

	start := time.Now()
	logger := v.logger.With(
		zap.String("debate_id", debate.ID),
		zap.Int("turn", turn.Number),
		zap.Int("claims", len(claims)),
	)

	prompt := llm.VerifyPrompt{
		Topic:           debate.Topic,
		Argument:        turn.Argument,
		Claims:          claims,
		ResearchContext: researchContext,
	}

	raw, err := v.provider.Complete(ctx, prompt.System(), prompt.User())
	if err != nil {
		// Treated like a structural failure: conservative fallback
		// records instead of dropped claims.
		logger.Warn("verification call failed, recording unverifiable verdicts", zap.Error(err))
		raw = ""
	}

	payloads := llm.DecodeVerdicts(raw, claims)
	verdicts := make([]*types.ClaimVerdict, 0, len(payloads))
	for _, p := range payloads {
		label := types.NormalizeVerdict(p.Verdict)
		confidence := types.ClampConfidence(p.Confidence)
		verdicts = append(verdicts, &types.ClaimVerdict{
			ID:            uuid.New().String(),
			DebateID:      debate.ID,
			TurnID:        turn.ID,
			ParticipantID: turn.ParticipantID,
			Claim:         p.Claim,
			Verdict:       label,
			Explanation:   p.Explanation,
			Confidence:    confidence,
			Lie:           types.IsLie(label, confidence),
			Sources:       p.Sources,
		})
	}

	if err := v.persist(ctx, verdicts, speaker); err != nil {
		return nil, err
	}

	lies := 0
	for _, verdict := range verdicts {
		if verdict.Lie {
			lies++
		}
	}
	logger.Info("claim verification completed",
		zap.Int("verdicts", len(verdicts)),
		zap.Int("lies", lies),
		zap.Duration("elapsed", time.Since(start)),
	)
	return verdicts, nil
}

// persist writes all verdicts, and an alert per lie, concurrently.
// Claims of the same turn have no ordering requirement between them.
func (v *Verifier) persist(ctx context.Context, verdicts []*types.ClaimVerdict, speaker *types.Participant) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, verdict := range verdicts {
		g.Go(func() error {
			if err := v.store.CreateVerdict(gctx, verdict); err != nil {
				return fmt.Errorf("persist verdict for claim %q: %w", verdict.Claim, err)
			}
			if !verdict.Lie {
				return nil
			}
			alert := &types.Alert{
				ID:              uuid.New().String(),
				DebateID:        verdict.DebateID,
				VerdictID:       verdict.ID,
				ParticipantName: speaker.Name,
				Claim:           verdict.Claim,
				Explanation:     verdict.Explanation,
				Severity:        types.SeverityFor(verdict.Confidence),
			}
			if err := v.store.CreateAlert(gctx, alert); err != nil {
				return fmt.Errorf("persist alert for claim %q: %w", verdict.Claim, err)
			}
			return nil
		})
	}
	return g.Wait()
}
