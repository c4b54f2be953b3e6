package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agoralive/agora/llm"
	"github.com/agoralive/agora/types"
)

// runSummary synthesizes the one-per-debate post-hoc report from the
// transcript, the fact-check record, and the vote tally. A generation
// failure degrades to a minimal summary rather than failing the debate;
// the summarizing phase guarantees exactly one summary either way.
func (e *Engine) runSummary(ctx context.Context, debate *types.Debate, pro, con *types.Participant) error {
	start := time.Now()
	logger := e.logger.With(zap.String("debate_id", debate.ID))

	if existing, err := e.store.GetSummary(ctx, debate.ID); err == nil && existing != nil {
		logger.Info("summary already exists, skipping synthesis")
		return nil
	}

	turns, err := e.store.ListTurns(ctx, debate.ID)
	if err != nil {
		return types.NewError(types.ErrPersistenceFailed, "list turns").WithCause(err)
	}
	verdicts, err := e.store.ListVerdicts(ctx, debate.ID)
	if err != nil {
		return types.NewError(types.ErrPersistenceFailed, "list verdicts").WithCause(err)
	}
	tally, err := e.store.GetTally(ctx, debate.ID)
	if err != nil {
		return types.NewError(types.ErrPersistenceFailed, "read vote tally").WithCause(err)
	}

	names := map[string]string{pro.ID: pro.Name, con.ID: con.Name}
	prompt := llm.SummaryPrompt{
		Topic:      debate.Topic,
		Transcript: renderTranscript(turns, names),
		Verdicts:   renderVerdicts(verdicts),
		Votes:      *tally,
	}

	callStart := time.Now()
	raw, err := e.provider.Complete(ctx, prompt.System(), prompt.User())
	e.metrics.ExternalCall("llm", "summary", time.Since(callStart))
	if err != nil {
		logger.Warn("summary generation failed, storing minimal summary", zap.Error(err))
		raw = ""
	}

	payload := llm.DecodeSummary(raw)
	if strings.TrimSpace(payload.Overall) == "" {
		payload.Overall = "Summary synthesis was unavailable for this debate."
	}

	summary := &types.Summary{
		ID:              uuid.New().String(),
		DebateID:        debate.ID,
		Overall:         payload.Overall,
		WinnerAnalysis:  payload.WinnerAnalysis,
		AccuracyScores:  payload.AccuracyScores,
		KeyArguments:    payload.KeyArguments,
		VerdictCounts:   toVerdictCounts(payload.VerdictCounts),
		Sources:         toRankedSources(payload.Sources),
		Recommendations: payload.Recommendations,
		Votes:           *tally,
	}
	if err := e.store.CreateSummary(ctx, summary); err != nil {
		return types.NewError(types.ErrPersistenceFailed, "persist summary").WithCause(err)
	}

	logger.Info("summary published",
		zap.Int("turns", len(turns)),
		zap.Int("verdicts", len(verdicts)),
		zap.Int("votes", tally.Total()),
	)
	e.metrics.PhaseDone(string(types.StatusSummarizing), time.Since(start))
	return nil
}

// renderTranscript flattens the turn sequence into prompt text with
// participant names resolved.
func renderTranscript(turns []*types.Turn, names map[string]string) string {
	var b strings.Builder
	for _, t := range turns {
		name := names[t.ParticipantID]
		if name == "" {
			name = t.ParticipantID
		}
		fmt.Fprintf(&b, "[#%d %s] %s: %s\n\n", t.Number, t.Type, name, t.Argument)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderVerdicts flattens the fact-check record into prompt text.
func renderVerdicts(verdicts []*types.ClaimVerdict) string {
	var b strings.Builder
	for _, v := range verdicts {
		fmt.Fprintf(&b, "- %q: %s (confidence %.2f)", v.Claim, v.Verdict, v.Confidence)
		if v.Lie {
			b.WriteString(" [flagged as lie]")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func toVerdictCounts(in map[string]int) map[types.VerdictLabel]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[types.VerdictLabel]int, len(in))
	for k, n := range in {
		out[types.NormalizeVerdict(k)] += n
	}
	return out
}

func toRankedSources(in []llm.SourcePayload) []types.RankedSource {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.RankedSource, 0, len(in))
	for _, s := range in {
		out = append(out, types.RankedSource{Title: s.Title, URL: s.URL, Reliability: s.Reliability})
	}
	return out
}
