// Package store provides durable persistence for debates, turns, claim
// verdicts, alerts, summaries, votes, and research documents, plus the
// change-notification channel downstream consumers subscribe to.
//
// All engine side effects are expressed as writes through this package;
// the engine never calls back into a presentation layer directly.
// Writes are idempotent by natural key (debate+turn number, one summary
// per debate); duplicate change notifications are tolerated by
// consumers.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/agoralive/agora/types"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrStoreClosed   = errors.New("store is closed")
)

// Document is a research source persisted for later retrieval and
// citation.
type Document struct {
	ID       string    `json:"id"`
	DebateID string    `json:"debate_id"`
	Side     types.Role `json:"side"`
	Title    string    `json:"title"`
	URL      string    `json:"url,omitempty"`
	Content  string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DebateStore persists debates and participants.
type DebateStore interface {
	CreateDebate(ctx context.Context, d *types.Debate) error
	GetDebate(ctx context.Context, id string) (*types.Debate, error)
	UpdateDebateStatus(ctx context.Context, id string, status types.Status) error
	UpdateDebateDescription(ctx context.Context, id, description string) error
	CreateParticipant(ctx context.Context, p *types.Participant) error
	ListParticipants(ctx context.Context, debateID string) ([]*types.Participant, error)
}

// TurnStore persists turns. Turns are append-only and unique per
// (debate, number).
type TurnStore interface {
	CreateTurn(ctx context.Context, t *types.Turn) error
	ListTurns(ctx context.Context, debateID string) ([]*types.Turn, error)
}

// VerdictStore persists claim verdicts and lie alerts.
type VerdictStore interface {
	CreateVerdict(ctx context.Context, v *types.ClaimVerdict) error
	ListVerdicts(ctx context.Context, debateID string) ([]*types.ClaimVerdict, error)
	CreateAlert(ctx context.Context, a *types.Alert) error
	ListAlerts(ctx context.Context, debateID string) ([]*types.Alert, error)
}

// SummaryStore persists the one-per-debate summary.
type SummaryStore interface {
	CreateSummary(ctx context.Context, s *types.Summary) error
	GetSummary(ctx context.Context, debateID string) (*types.Summary, error)
}

// VoteStore records audience votes and reads the tally.
type VoteStore interface {
	AddVote(ctx context.Context, debateID string, side types.Role) error
	GetTally(ctx context.Context, debateID string) (*types.VoteTally, error)
}

// DocumentStore persists research documents discovered during the
// researching phase.
type DocumentStore interface {
	SaveDocument(ctx context.Context, d *Document) error
	ListDocuments(ctx context.Context, debateID string) ([]*Document, error)
}

// Store is the full persistence surface the engine depends on.
type Store interface {
	DebateStore
	TurnStore
	VerdictStore
	SummaryStore
	VoteStore
	DocumentStore

	// Notifier returns the change-notification channel bound to this
	// store.
	Notifier() Notifier

	Close() error
}
