// Package research runs the pre-debate research fan-out: one lookup per
// side, merged into a grounding context for generation and verification.
//
// Research is best-effort. A failed lookup yields an empty bundle, never
// an error, so a debate proceeds ungrounded rather than aborting.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/types"
)

// Source is one document returned by the research lookup.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// SearchResult is the raw result of one research lookup.
type SearchResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

// SearchProvider is the external research-lookup capability.
type SearchProvider interface {
	Search(ctx context.Context, query string, depth types.ResearchDepth) (*SearchResult, error)
}

// SearchFunc adapts a plain function to SearchProvider.
type SearchFunc func(ctx context.Context, query string, depth types.ResearchDepth) (*SearchResult, error)

// Search implements SearchProvider.
func (f SearchFunc) Search(ctx context.Context, query string, depth types.ResearchDepth) (*SearchResult, error) {
	return f(ctx, query, depth)
}

// Bundle is the merged research output for one side of a debate.
type Bundle struct {
	Answer  string
	Sources []Source

	// Context is the deterministic concatenation of the answer and a
	// bulleted source list, in returned order. Used verbatim as
	// grounding context for generation and verification.
	Context string
}

// Empty reports whether the bundle carries no research material.
func (b *Bundle) Empty() bool {
	return b.Answer == "" && len(b.Sources) == 0
}

// Coordinator runs research lookups and persists discovered sources.
type Coordinator struct {
	search  SearchProvider
	docs    store.DocumentStore
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewCoordinator creates a research coordinator. search may be nil, in
// which case every lookup degrades to an empty bundle. ratePerSecond
// caps outbound lookups; zero disables limiting.
func NewCoordinator(search SearchProvider, docs store.DocumentStore, ratePerSecond float64, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return &Coordinator{
		search:  search,
		docs:    docs,
		limiter: limiter,
		logger:  logger.With(zap.String("component", "research")),
	}
}

// BuildQuery biases the lookup phrasing toward the side being argued.
func BuildQuery(topic string, side types.Role) string {
	if side == types.RoleCon {
		return fmt.Sprintf("arguments against %s: evidence, statistics, expert opinions", topic)
	}
	return fmt.Sprintf("arguments in favor of %s: evidence, statistics, expert opinions", topic)
}

// Research runs one side's lookup and merges the result into a bundle.
// It never returns an error: any failure degrades to an empty bundle.
func (c *Coordinator) Research(ctx context.Context, debateID, topic string, side types.Role, depth types.ResearchDepth) *Bundle {
	start := time.Now()
	logger := c.logger.With(
		zap.String("debate_id", debateID),
		zap.String("side", string(side)),
	)

	if c.search == nil {
		logger.Info("no search provider configured, skipping research")
		return &Bundle{}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn("research rate limit wait aborted", zap.Error(err))
			return &Bundle{}
		}
	}

	query := BuildQuery(topic, side)
	result, err := c.search.Search(ctx, query, depth)
	if err != nil {
		logger.Warn("research lookup failed, continuing without research", zap.Error(err))
		return &Bundle{}
	}
	if result == nil {
		return &Bundle{}
	}

	bundle := &Bundle{
		Answer:  result.Answer,
		Sources: result.Sources,
		Context: CombineContext(result.Answer, result.Sources),
	}

	if len(result.Sources) > 0 {
		c.persistSources(ctx, debateID, side, result.Sources, logger)
	}

	logger.Info("research completed",
		zap.Int("sources", len(bundle.Sources)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return bundle
}

// persistSources saves each discovered source as a retrievable document.
// This is a side channel: failures are logged and swallowed.
func (c *Coordinator) persistSources(ctx context.Context, debateID string, side types.Role, sources []Source, logger *zap.Logger) {
	if c.docs == nil {
		return
	}
	for _, src := range sources {
		doc := &store.Document{
			ID:       uuid.New().String(),
			DebateID: debateID,
			Side:     side,
			Title:    src.Title,
			URL:      src.URL,
			Content:  src.Content,
		}
		if err := c.docs.SaveDocument(ctx, doc); err != nil {
			logger.Warn("failed to persist research document",
				zap.String("title", src.Title),
				zap.Error(err),
			)
		}
	}
}

// CombineContext renders the grounding context: the narrative answer
// followed by a bulleted source list in returned order. Reproducible for
// the same bundle.
func CombineContext(answer string, sources []Source) string {
	var b strings.Builder
	if answer != "" {
		b.WriteString(answer)
	}
	if len(sources) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Sources:\n")
		for _, src := range sources {
			b.WriteString("- ")
			b.WriteString(src.Title)
			if src.URL != "" {
				b.WriteString(" (")
				b.WriteString(src.URL)
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
