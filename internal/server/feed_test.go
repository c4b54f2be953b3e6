package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/agora/store"
)

func TestFeedRelaysFilteredEvents(t *testing.T) {
	t.Parallel()

	notifier := store.NewMemoryNotifier(nil)
	t.Cleanup(func() { _ = notifier.Close() })
	feed := NewFeed(notifier, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		feed.Serve(w, r, "d1")
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?tables=turns"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Give the server a moment to register the subscription.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, notifier.Publish(ctx, store.Event{
		Table: store.TableVerdicts, DebateID: "d1", RecordID: "filtered-out",
	}))
	require.NoError(t, notifier.Publish(ctx, store.Event{
		Table: store.TableTurns, DebateID: "d1", RecordID: "t-1", Action: "insert",
	}))

	var ev store.Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, store.TableTurns, ev.Table)
	assert.Equal(t, "t-1", ev.RecordID)
}

func TestParseTables(t *testing.T) {
	t.Parallel()

	assert.Nil(t, parseTables(""))
	assert.Equal(t, []store.Table{store.TableTurns, store.TableAlerts}, parseTables("turns, alerts"))
}
