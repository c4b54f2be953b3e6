package server

import (
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/agoralive/agora/store"
)

// Feed relays store change events for one debate over a websocket.
// Clients subscribe with GET .../feed?tables=turns,alerts; omitting
// tables follows everything.
type Feed struct {
	notifier store.Notifier
	logger   *zap.Logger
}

// NewFeed creates a change-feed relay.
func NewFeed(notifier store.Notifier, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		notifier: notifier,
		logger:   logger.With(zap.String("component", "feed")),
	}
}

// Serve upgrades the request and streams change events for debateID
// until the client disconnects or the subscription ends.
func (f *Feed) Serve(w http.ResponseWriter, r *http.Request, debateID string) {
	tables := parseTables(r.URL.Query().Get("tables"))

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "feed closed")

	ctx := r.Context()
	events, cancel, err := f.notifier.Subscribe(ctx, debateID, tables...)
	if err != nil {
		f.logger.Warn("feed subscription failed",
			zap.String("debate_id", debateID),
			zap.Error(err),
		)
		conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}
	defer cancel()

	f.logger.Info("feed client connected",
		zap.String("debate_id", debateID),
		zap.Int("tables", len(tables)),
	)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "feed ended")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				f.logger.Debug("feed client write failed", zap.Error(err))
				return
			}
		}
	}
}

// parseTables splits a comma-separated table filter.
func parseTables(raw string) []store.Table {
	if raw == "" {
		return nil
	}
	var tables []store.Table
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tables = append(tables, store.Table(part))
		}
	}
	return tables
}
