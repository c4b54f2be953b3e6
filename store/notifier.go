package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Table names change events by the record set they belong to.
type Table string

const (
	TableDebates   Table = "debates"
	TableTurns     Table = "turns"
	TableVerdicts  Table = "verdicts"
	TableAlerts    Table = "alerts"
	TableSummaries Table = "summaries"
)

// Event is one change notification. Delivery is at-least-once; consumers
// must tolerate duplicates.
type Event struct {
	Table    Table     `json:"table"`
	Action   string    `json:"action"` // insert or update
	DebateID string    `json:"debate_id"`
	RecordID string    `json:"record_id,omitempty"`
	At       time.Time `json:"at"`
}

// Notifier is the change-notification subscription mechanism: per-table
// events filtered by debate ID.
type Notifier interface {
	// Publish emits an event to all matching subscribers. Best-effort:
	// a slow subscriber may miss events, never blocks the writer.
	Publish(ctx context.Context, ev Event) error

	// Subscribe returns a channel of events for one debate, restricted
	// to the given tables (all tables when empty), and a cancel
	// function that releases the subscription.
	Subscribe(ctx context.Context, debateID string, tables ...Table) (<-chan Event, func(), error)

	Close() error
}

// memorySubscriber is one in-process subscription.
type memorySubscriber struct {
	debateID string
	tables   map[Table]bool
	ch       chan Event
}

func (s *memorySubscriber) matches(ev Event) bool {
	if s.debateID != "" && s.debateID != ev.DebateID {
		return false
	}
	if len(s.tables) == 0 {
		return true
	}
	return s.tables[ev.Table]
}

// MemoryNotifier is the in-process Notifier used for single-node
// deployments and tests.
type MemoryNotifier struct {
	mu     sync.RWMutex
	subs   map[int]*memorySubscriber
	nextID int
	closed bool
	logger *zap.Logger
}

// NewMemoryNotifier creates an in-process notifier.
func NewMemoryNotifier(logger *zap.Logger) *MemoryNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryNotifier{
		subs:   make(map[int]*memorySubscriber),
		logger: logger.With(zap.String("component", "memory_notifier")),
	}
}

// Publish implements Notifier.
func (n *MemoryNotifier) Publish(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return ErrStoreClosed
	}

	for _, sub := range n.subs {
		if !sub.matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber buffer full; drop rather than block the
			// writer. Consumers reconcile from the store.
			n.logger.Debug("dropping event for slow subscriber",
				zap.String("table", string(ev.Table)),
				zap.String("debate_id", ev.DebateID),
			)
		}
	}
	return nil
}

// Subscribe implements Notifier.
func (n *MemoryNotifier) Subscribe(_ context.Context, debateID string, tables ...Table) (<-chan Event, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, nil, ErrStoreClosed
	}

	sub := &memorySubscriber{
		debateID: debateID,
		tables:   make(map[Table]bool, len(tables)),
		ch:       make(chan Event, 64),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = sub

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if s, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel, nil
}

// Close implements Notifier.
func (n *MemoryNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	for id, sub := range n.subs {
		delete(n.subs, id)
		close(sub.ch)
	}
	return nil
}
