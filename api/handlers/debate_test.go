package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/agora/config"
	"github.com/agoralive/agora/engine"
	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/testutil/mocks"
	"github.com/agoralive/agora/types"
)

func newTestHandler(t *testing.T) (*DebateHandler, store.Store, *engine.Engine) {
	t.Helper()

	st, err := store.Open(store.Options{Driver: "sqlite", DSN: ":memory:"}, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	provider := &mocks.Provider{Default: `{"argument": "stub", "overall": "stub"}`}
	eng := engine.New(engine.Deps{Store: st, Provider: provider}, config.DebateConfig{
		MaxTurns:       2,
		WordsPerMinute: 10000,
		MinDisplay:     time.Millisecond,
		VotingWindow:   time.Millisecond,
	})
	return NewDebateHandler(eng, st, nil, nil), st, eng
}

func defaults() types.DebateConfig {
	return types.DebateConfig{MaxTurns: 2, ResearchDepth: types.ResearchBasic}
}

func seedDebate(t *testing.T, eng *engine.Engine) *types.Debate {
	t.Helper()

	d, err := eng.CreateDebate(context.Background(), "testing is worthwhile", "", defaults(),
		engine.ParticipantSpec{Name: "Ada"}, engine.ParticipantSpec{Name: "Grace"})
	require.NoError(t, err)
	return d
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandleCreateAccepted(t *testing.T) {
	t.Parallel()

	h, _, eng := newTestHandler(t)
	t.Cleanup(eng.Wait)

	body := `{"topic": "testing is worthwhile", "pro": {"name": "Ada"}, "con": {"name": "Grace"}}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/debates", strings.NewReader(body))

	h.HandleCreate(defaults)(w, r)

	assert.Equal(t, http.StatusAccepted, w.Code)
	resp := decodeResponse(t, w)
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var view DebateView
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, 2, view.Config.MaxTurns, "defaults applied when config omitted")
}

func TestHandleCreateRejectsBadPayload(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/debates", strings.NewReader(`{"nope": true}`))
	h.HandleCreate(defaults)(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Odd max_turns is a config error.
	body := `{"topic": "t", "config": {"max_turns": 3}, "pro": {"name": "a"}, "con": {"name": "b"}}`
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/v1/debates", strings.NewReader(body))
	h.HandleCreate(defaults)(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrInvalidConfig), resp.Error.Code)
}

func TestHandleGetNotFound(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/debates/nope", nil)
	r.SetPathValue("id", "nope")
	h.HandleGet(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrDebateNotFound), resp.Error.Code)
}

func TestHandleVote(t *testing.T) {
	t.Parallel()

	h, st, eng := newTestHandler(t)
	d := seedDebate(t, eng)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/debates/"+d.ID+"/votes", strings.NewReader(`{"side": "pro"}`))
	r.SetPathValue("id", d.ID)
	h.HandleVote(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	tally, err := st.GetTally(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.ProVotes)

	// The fact checker is not a votable side.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/v1/debates/"+d.ID+"/votes", strings.NewReader(`{"side": "fact_checker"}`))
	r.SetPathValue("id", d.ID)
	h.HandleVote(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetSummaryNotFound(t *testing.T) {
	t.Parallel()

	h, _, eng := newTestHandler(t)
	d := seedDebate(t, eng)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/debates/"+d.ID+"/summary", nil)
	r.SetPathValue("id", d.ID)
	h.HandleGetSummary(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListTurnsEmpty(t *testing.T) {
	t.Parallel()

	h, _, eng := newTestHandler(t)
	d := seedDebate(t, eng)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/debates/"+d.ID+"/turns", nil)
	r.SetPathValue("id", d.ID)
	h.HandleListTurns(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}
