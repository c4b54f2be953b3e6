package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/agoralive/agora/engine"
	"github.com/agoralive/agora/internal/metrics"
	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/types"
)

// DebateHandler exposes debate creation, inspection, and voting.
type DebateHandler struct {
	engine  *engine.Engine
	store   store.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDebateHandler creates a debate handler. m may be nil.
func NewDebateHandler(eng *engine.Engine, st store.Store, m *metrics.Metrics, logger *zap.Logger) *DebateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebateHandler{
		engine:  eng,
		store:   st,
		metrics: m,
		logger:  logger.With(zap.String("component", "api")),
	}
}

// CreateDebateRequest is the payload for POST /v1/debates.
type CreateDebateRequest struct {
	Topic       string                 `json:"topic"`
	Description string                 `json:"description,omitempty"`
	Config      *types.DebateConfig    `json:"config,omitempty"`
	Pro         engine.ParticipantSpec `json:"pro"`
	Con         engine.ParticipantSpec `json:"con"`
}

// DebateView is the debate representation returned by the API.
type DebateView struct {
	ID          string             `json:"id"`
	Topic       string             `json:"topic"`
	Description string             `json:"description,omitempty"`
	Status      types.Status       `json:"status"`
	Config      types.DebateConfig `json:"config"`
}

// Defaults supplies the debate config applied when a create request
// leaves it unset.
type Defaults func() types.DebateConfig

// HandleCreate creates a debate and starts running it in the
// background. Responds 202 with the debate in setup state.
func (h *DebateHandler) HandleCreate(defaults Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDebateRequest
		if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
			return
		}

		cfg := defaults()
		if req.Config != nil {
			cfg = *req.Config
		}

		debate, err := h.engine.CreateDebate(r.Context(), req.Topic, req.Description, cfg, req.Pro, req.Con)
		if err != nil {
			WriteAnyError(w, err, h.logger)
			return
		}

		// The run outlives this request.
		h.engine.Start(context.WithoutCancel(r.Context()), debate.ID)

		WriteAccepted(w, toView(debate))
	}
}

// HandleGet returns one debate with its participants.
func (h *DebateHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	debate, err := h.store.GetDebate(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}
	participants, err := h.store.ListParticipants(r.Context(), id)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]interface{}{
		"debate":       toView(debate),
		"participants": participants,
	})
}

// HandleListTurns returns the transcript so far, in turn order.
func (h *DebateHandler) HandleListTurns(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	turns, err := h.store.ListTurns(r.Context(), id)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteSuccess(w, turns)
}

// HandleListAlerts returns the lie alerts raised so far.
func (h *DebateHandler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	alerts, err := h.store.ListAlerts(r.Context(), id)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteSuccess(w, alerts)
}

// HandleListVerdicts returns the full fact-check record.
func (h *DebateHandler) HandleListVerdicts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	verdicts, err := h.store.ListVerdicts(r.Context(), id)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteSuccess(w, verdicts)
}

// HandleGetSummary returns the post-debate report.
func (h *DebateHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	summary, err := h.store.GetSummary(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}
	WriteSuccess(w, summary)
}

// VoteRequest is the payload for POST /v1/debates/{id}/votes.
type VoteRequest struct {
	Side types.Role `json:"side"`
}

// HandleVote records one audience vote for a side.
func (h *DebateHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req VoteRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.Side != types.RolePro && req.Side != types.RoleCon {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "side must be pro or con"), h.logger)
		return
	}

	if _, err := h.store.GetDebate(r.Context(), id); err != nil {
		h.writeStoreError(w, err, id)
		return
	}
	if err := h.store.AddVote(r.Context(), id, req.Side); err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	h.metrics.VoteRecorded(string(req.Side))

	tally, err := h.store.GetTally(r.Context(), id)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteSuccess(w, tally)
}

func (h *DebateHandler) writeStoreError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, types.NewError(types.ErrDebateNotFound, id), h.logger)
		return
	}
	WriteAnyError(w, err, h.logger)
}

func toView(d *types.Debate) DebateView {
	return DebateView{
		ID:          d.ID,
		Topic:       d.Topic,
		Description: d.Description,
		Status:      d.Status,
		Config:      d.Config,
	}
}
