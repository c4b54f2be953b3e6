// Package engine drives a debate through its lifecycle: research
// fan-out, paced live turn generation, the audience voting window, and
// summary synthesis.
//
// The engine communicates exclusively through the store; downstream
// consumers follow a debate via the store's change notifications. All
// writes are idempotent by natural key, so re-running a debate after a
// crash resumes rather than duplicates.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agoralive/agora/config"
	"github.com/agoralive/agora/factcheck"
	"github.com/agoralive/agora/internal/metrics"
	"github.com/agoralive/agora/llm"
	"github.com/agoralive/agora/llm/speech"
	"github.com/agoralive/agora/research"
	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/types"
)

// Deps bundles the engine's collaborators. Research, Verifier, Speech,
// Metrics, and Logger are optional; the corresponding capability is
// degraded or skipped when nil.
type Deps struct {
	Store    store.Store
	Provider llm.Provider
	Research *research.Coordinator
	Verifier *factcheck.Verifier
	Speech   *speech.Synthesizer
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Engine orchestrates debates end to end.
type Engine struct {
	store    store.Store
	provider llm.Provider
	research *research.Coordinator
	verifier *factcheck.Verifier
	speech   *speech.Synthesizer
	metrics  *metrics.Metrics
	sup      *Supervisor
	logger   *zap.Logger

	wpm          int
	minDisplay   time.Duration
	votingWindow time.Duration
	history      HistoryBuilder

	sleep func(ctx context.Context, d time.Duration)
}

// New creates a debate engine with pacing taken from cfg.
func New(deps Deps, cfg config.DebateConfig) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:        deps.Store,
		provider:     deps.Provider,
		research:     deps.Research,
		verifier:     deps.Verifier,
		speech:       deps.Speech,
		metrics:      deps.Metrics,
		sup:          NewSupervisor(logger),
		logger:       logger.With(zap.String("component", "engine")),
		wpm:          cfg.WordsPerMinute,
		minDisplay:   cfg.MinDisplay,
		votingWindow: cfg.VotingWindow,
		history:      HistoryBuilder{TokenBudget: cfg.HistoryTokenBudget},
		sleep:        sleepCtx,
	}
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// ParticipantSpec describes one debater at creation time.
type ParticipantSpec struct {
	Name    string `json:"name"`
	Persona string `json:"persona,omitempty"`
	VoiceID string `json:"voice_id,omitempty"`
}

// CreateDebate persists a new debate in the setup phase with its two
// debaters. The config is immutable from here on.
func (e *Engine) CreateDebate(ctx context.Context, topic, description string, cfg types.DebateConfig, pro, con ParticipantSpec) (*types.Debate, error) {
	if topic == "" {
		return nil, types.NewError(types.ErrInvalidConfig, "topic is required")
	}
	if cfg.MaxTurns < 2 || cfg.MaxTurns%2 != 0 {
		return nil, types.NewError(types.ErrInvalidConfig,
			fmt.Sprintf("max_turns must be even and >= 2, got %d", cfg.MaxTurns))
	}
	if pro.Name == "" || con.Name == "" {
		return nil, types.NewError(types.ErrInvalidConfig, "both debaters need a name")
	}

	debate := &types.Debate{
		ID:          uuid.New().String(),
		Topic:       topic,
		Description: description,
		Status:      types.StatusSetup,
		Config:      cfg,
	}
	if err := e.store.CreateDebate(ctx, debate); err != nil {
		return nil, types.NewError(types.ErrPersistenceFailed, "create debate").WithCause(err)
	}
	for _, p := range []*types.Participant{
		{ID: uuid.New().String(), DebateID: debate.ID, Role: types.RolePro, Name: pro.Name, Persona: pro.Persona, VoiceID: pro.VoiceID},
		{ID: uuid.New().String(), DebateID: debate.ID, Role: types.RoleCon, Name: con.Name, Persona: con.Persona, VoiceID: con.VoiceID},
	} {
		if err := e.store.CreateParticipant(ctx, p); err != nil {
			return nil, types.NewError(types.ErrPersistenceFailed, "create participant").WithCause(err)
		}
	}
	e.logger.Info("debate created",
		zap.String("debate_id", debate.ID),
		zap.String("topic", topic),
		zap.Int("max_turns", cfg.MaxTurns),
	)
	return debate, nil
}

// Start runs the debate in a supervised background task.
func (e *Engine) Start(ctx context.Context, debateID string) {
	e.sup.Go(ctx, "debate:"+debateID, func(ctx context.Context) {
		if err := e.Run(ctx, debateID); err != nil {
			e.logger.Error("debate run finished with error",
				zap.String("debate_id", debateID),
				zap.Error(err),
			)
		}
	})
}

// Wait blocks until every background debate has finished.
func (e *Engine) Wait() {
	e.sup.Wait()
}

// Run drives one debate from its current phase to completed. Any error
// past setup takes the failure edge: the error is recorded in the
// debate description and the debate jumps to completed.
func (e *Engine) Run(ctx context.Context, debateID string) error {
	debate, err := e.store.GetDebate(ctx, debateID)
	if err != nil {
		return types.NewError(types.ErrDebateNotFound, debateID).WithCause(err)
	}
	if debate.Status.IsTerminal() {
		return types.NewError(types.ErrAlreadyCompleted, debateID)
	}

	pro, con, err := e.debaters(ctx, debateID)
	if err != nil {
		return err
	}

	logger := e.logger.With(zap.String("debate_id", debateID))
	logger.Info("debate starting", zap.String("topic", debate.Topic))

	if err := e.drive(ctx, debate, pro, con); err != nil {
		e.fail(debate, err)
		e.metrics.DebateCompleted("failure")
		return err
	}
	e.metrics.DebateCompleted("success")
	logger.Info("debate completed")
	return nil
}

// debaters loads and checks the pro and con participants.
func (e *Engine) debaters(ctx context.Context, debateID string) (pro, con *types.Participant, err error) {
	participants, err := e.store.ListParticipants(ctx, debateID)
	if err != nil {
		return nil, nil, types.NewError(types.ErrPersistenceFailed, "list participants").WithCause(err)
	}
	for _, p := range participants {
		switch p.Role {
		case types.RolePro:
			pro = p
		case types.RoleCon:
			con = p
		}
	}
	if pro == nil || con == nil {
		return nil, nil, types.NewError(types.ErrParticipantMissing,
			"debate needs exactly one pro and one con participant")
	}
	return pro, con, nil
}

// drive walks the phase sequence from the debate's current status.
func (e *Engine) drive(ctx context.Context, debate *types.Debate, pro, con *types.Participant) error {
	if debate.Status == types.StatusSetup {
		if err := e.advance(ctx, debate, types.StatusResearching); err != nil {
			return err
		}
	}

	var bundles map[types.Role]*research.Bundle
	if debate.Status == types.StatusResearching {
		bundles = e.runResearch(ctx, debate)
		if err := e.advance(ctx, debate, types.StatusLive); err != nil {
			return err
		}
	} else {
		bundles = emptyBundles()
	}

	if debate.Status == types.StatusLive {
		if _, err := e.runLive(ctx, debate, pro, con, bundles); err != nil {
			return err
		}
		if err := e.advance(ctx, debate, types.StatusVoting); err != nil {
			return err
		}
	}

	if debate.Status == types.StatusVoting {
		e.sleep(ctx, e.votingWindow)
		if err := e.advance(ctx, debate, types.StatusSummarizing); err != nil {
			return err
		}
	}

	if debate.Status == types.StatusSummarizing {
		if err := e.runSummary(ctx, debate, pro, con); err != nil {
			return err
		}
		if err := e.advance(ctx, debate, types.StatusCompleted); err != nil {
			return err
		}
	}
	return nil
}

// advance moves the debate to the next phase, checking legality and
// persisting the new status.
func (e *Engine) advance(ctx context.Context, debate *types.Debate, next types.Status) error {
	if !debate.Status.CanTransitionTo(next) {
		return types.NewError(types.ErrInvalidTransition,
			fmt.Sprintf("%s -> %s", debate.Status, next))
	}
	if err := e.store.UpdateDebateStatus(ctx, debate.ID, next); err != nil {
		return types.NewError(types.ErrPersistenceFailed,
			fmt.Sprintf("update status to %s", next)).WithCause(err)
	}
	e.logger.Info("phase transition",
		zap.String("debate_id", debate.ID),
		zap.String("from", string(debate.Status)),
		zap.String("to", string(next)),
	)
	debate.Status = next
	return nil
}

// fail takes the failure edge: record the error on the debate and jump
// to completed. Best-effort; the original error is what callers see.
func (e *Engine) fail(debate *types.Debate, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	e.logger.Error("debate failed",
		zap.String("debate_id", debate.ID),
		zap.String("phase", string(debate.Status)),
		zap.Error(cause),
	)
	marker := fmt.Sprintf("error: %v", cause)
	if err := e.store.UpdateDebateDescription(ctx, debate.ID, marker); err != nil {
		e.logger.Warn("failed to record error marker", zap.Error(err))
	}
	if debate.Status.CanTransitionTo(types.StatusCompleted) {
		if err := e.store.UpdateDebateStatus(ctx, debate.ID, types.StatusCompleted); err != nil {
			e.logger.Warn("failed to complete debate after error", zap.Error(err))
			return
		}
		debate.Status = types.StatusCompleted
	}
}

// emptyBundles returns ungrounded research for both sides.
func emptyBundles() map[types.Role]*research.Bundle {
	return map[types.Role]*research.Bundle{
		types.RolePro: {},
		types.RoleCon: {},
	}
}

// runResearch fans out one lookup per side. Research never fails a
// debate; a side with no material argues ungrounded.
func (e *Engine) runResearch(ctx context.Context, debate *types.Debate) map[types.Role]*research.Bundle {
	start := time.Now()
	bundles := emptyBundles()
	if e.research == nil {
		return bundles
	}

	var proBundle, conBundle *research.Bundle
	var g errgroup.Group
	g.Go(func() error {
		proBundle = e.research.Research(ctx, debate.ID, debate.Topic, types.RolePro, debate.Config.ResearchDepth)
		return nil
	})
	g.Go(func() error {
		conBundle = e.research.Research(ctx, debate.ID, debate.Topic, types.RoleCon, debate.Config.ResearchDepth)
		return nil
	})
	_ = g.Wait()
	bundles[types.RolePro] = proBundle
	bundles[types.RoleCon] = conBundle

	e.metrics.PhaseDone(string(types.StatusResearching), time.Since(start))
	return bundles
}
