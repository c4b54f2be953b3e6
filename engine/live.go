package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agoralive/agora/llm"
	"github.com/agoralive/agora/research"
	"github.com/agoralive/agora/types"
)

// snippetLimit caps the research excerpt attached to a turn.
const snippetLimit = 240

// generatedTurn pairs a turn with the verifiable claims extracted from
// its argument. Claims ride alongside rather than on the turn because
// they matter only until verification has run.
type generatedTurn struct {
	turn   *types.Turn
	claims []string
}

// runLive generates and publishes every turn of the live phase. Opening
// turns of a pair are generated concurrently since neither debater has
// anything to respond to; every later turn sees the opponent's
// persisted turn first. Returns the full transcript in order.
func (e *Engine) runLive(ctx context.Context, debate *types.Debate, pro, con *types.Participant, bundles map[types.Role]*research.Bundle) ([]*types.Turn, error) {
	start := time.Now()
	logger := e.logger.With(zap.String("debate_id", debate.ID))

	turns, err := e.store.ListTurns(ctx, debate.ID)
	if err != nil {
		return nil, types.NewError(types.ErrPersistenceFailed, "list turns").WithCause(err)
	}
	if len(turns) > 0 {
		logger.Info("resuming live phase", zap.Int("existing_turns", len(turns)))
	}

	roles := map[string]types.Role{pro.ID: types.RolePro, con.ID: types.RoleCon}
	speakers := map[types.Role]*types.Participant{types.RolePro: pro, types.RoleCon: con}

	// Verification runs off the turn path; the phase does not end until
	// every verification has landed.
	var verifications sync.WaitGroup
	defer verifications.Wait()

	maxTurns := debate.Config.MaxTurns
	n := len(turns) + 1
	for n <= maxTurns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		concurrent := RoleFor(n) == types.RolePro &&
			TurnTypeFor(n, maxTurns) == types.TurnOpening &&
			TurnTypeFor(n+1, maxTurns) == types.TurnOpening &&
			n+1 <= maxTurns

		var batch []*generatedTurn
		if concurrent {
			var proGen, conGen *generatedTurn
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				proGen, err = e.generateTurn(gctx, debate, pro, n, turns, roles, bundles)
				return err
			})
			g.Go(func() error {
				var err error
				conGen, err = e.generateTurn(gctx, debate, con, n+1, turns, roles, bundles)
				return err
			})
			if err := g.Wait(); err != nil {
				return nil, err
			}
			batch = []*generatedTurn{proGen, conGen}
		} else {
			gen, err := e.generateTurn(ctx, debate, speakers[RoleFor(n)], n, turns, roles, bundles)
			if err != nil {
				return nil, err
			}
			batch = []*generatedTurn{gen}
		}

		for _, gen := range batch {
			if err := e.publishTurn(ctx, debate, gen, speakers, bundles, &verifications); err != nil {
				return nil, err
			}
			turns = append(turns, gen.turn)
			n++
		}
	}

	verifications.Wait()
	e.metrics.PhaseDone(string(types.StatusLive), time.Since(start))
	return turns, nil
}

// generateTurn produces turn number n for the given speaker without
// persisting it.
func (e *Engine) generateTurn(ctx context.Context, debate *types.Debate, speaker *types.Participant, n int, turns []*types.Turn, roles map[string]types.Role, bundles map[types.Role]*research.Bundle) (*generatedTurn, error) {
	turnType := TurnTypeFor(n, debate.Config.MaxTurns)
	bundle := bundles[speaker.Role]

	prompt := llm.ArgumentPrompt{
		Topic:           debate.Topic,
		Side:            speaker.Role,
		TurnType:        turnType,
		Persona:         speaker.Persona,
		History:         e.history.Build(turns, roles, speaker.Role),
		ResearchContext: bundle.Context,
		Documents:       documentTitles(bundle),
	}

	callStart := time.Now()
	raw, err := e.provider.Complete(ctx, prompt.System(), prompt.User())
	e.metrics.ExternalCall("llm", "argument", time.Since(callStart))
	if err != nil {
		return nil, types.NewError(types.ErrGenerationFailed,
			fmt.Sprintf("turn %d (%s %s)", n, speaker.Role, turnType)).WithCause(err)
	}

	payload := llm.DecodeArgument(raw)
	turn := &types.Turn{
		ID:            uuid.New().String(),
		DebateID:      debate.ID,
		ParticipantID: speaker.ID,
		Number:        n,
		Type:          turnType,
		Argument:      payload.Argument,
		Citations:     toCitations(payload.Citations),
		Sources:       toSnippets(bundle.Sources),
	}
	return &generatedTurn{turn: turn, claims: payload.Claims}, nil
}

// publishTurn renders speech, persists the turn, kicks off claim
// verification, and holds the floor for the display delay.
func (e *Engine) publishTurn(ctx context.Context, debate *types.Debate, gen *generatedTurn, speakers map[types.Role]*types.Participant, bundles map[types.Role]*research.Bundle, verifications *sync.WaitGroup) error {
	turn := gen.turn
	logger := e.logger.With(
		zap.String("debate_id", debate.ID),
		zap.Int("turn", turn.Number),
		zap.String("type", string(turn.Type)),
	)

	if debate.Config.EnableSpeech && e.speech != nil {
		speaker := speakers[RoleFor(turn.Number)]
		key := fmt.Sprintf("%s/turn-%d.mp3", debate.ID, turn.Number)
		callStart := time.Now()
		url, err := e.speech.Render(ctx, key, turn.Argument, speaker.VoiceID)
		e.metrics.ExternalCall("speech", "render", time.Since(callStart))
		if err != nil {
			logger.Warn("speech synthesis failed, publishing turn without audio", zap.Error(err))
		} else {
			turn.AudioURL = url
		}
	}

	if err := e.store.CreateTurn(ctx, turn); err != nil {
		return types.NewError(types.ErrPersistenceFailed,
			fmt.Sprintf("persist turn %d", turn.Number)).WithCause(err)
	}
	e.metrics.TurnGenerated(string(turn.Type))
	logger.Info("turn published", zap.Int("words", turn.WordCount()))

	if debate.Config.EnableFactCheck && e.verifier != nil && len(gen.claims) > 0 {
		speaker := speakers[RoleFor(turn.Number)]
		claims := gen.claims
		bundle := bundles[speaker.Role]
		verifications.Add(1)
		e.sup.Go(ctx, fmt.Sprintf("verify:%s:%d", debate.ID, turn.Number), func(ctx context.Context) {
			defer verifications.Done()
			verdicts, err := e.verifier.Verify(ctx, debate, turn, speaker, claims, bundle.Context)
			if err != nil {
				logger.Warn("claim verification did not persist", zap.Error(err))
				return
			}
			e.metrics.ClaimsVerified(len(verdicts))
			for _, v := range verdicts {
				if v.Lie {
					e.metrics.LieDetected(string(types.SeverityFor(v.Confidence)))
				}
			}
		})
	}

	e.sleep(ctx, displayDelay(turn.WordCount(), e.wpm, e.minDisplay))
	return nil
}

func toCitations(in []llm.CitationPayload) []types.Citation {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.Citation, 0, len(in))
	for _, c := range in {
		out = append(out, types.Citation{Label: c.Label, URL: c.URL})
	}
	return out
}

func toSnippets(in []research.Source) []types.SourceSnippet {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.SourceSnippet, 0, len(in))
	for _, s := range in {
		snippet := s.Content
		if len(snippet) > snippetLimit {
			snippet = snippet[:snippetLimit]
		}
		out = append(out, types.SourceSnippet{Title: s.Title, URL: s.URL, Snippet: snippet})
	}
	return out
}

func documentTitles(b *research.Bundle) []string {
	if b == nil || len(b.Sources) == 0 {
		return nil
	}
	titles := make([]string, 0, len(b.Sources))
	for _, s := range b.Sources {
		titles = append(titles, s.Title)
	}
	return titles
}
