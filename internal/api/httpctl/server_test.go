package httpctl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-audio/herald/internal/app/audio"
	"github.com/herald-audio/herald/internal/app/catalog"
	"github.com/herald-audio/herald/internal/app/player"
	"github.com/herald-audio/herald/internal/app/presentation"
	"github.com/herald-audio/herald/internal/domain/media"
)

type stubChannel struct {
	signals chan audio.Signal
}

func newStubChannel() *stubChannel {
	return &stubChannel{signals: make(chan audio.Signal, 4)}
}

func (s *stubChannel) Load(string) error            { return nil }
func (s *stubChannel) Play() error                  { return nil }
func (s *stubChannel) Pause()                       {}
func (s *stubChannel) Signals() <-chan audio.Signal { return s.signals }

type stubCatalog struct {
	items []media.Item
	err   error
}

func (s *stubCatalog) Search(context.Context, string, int) ([]media.Item, error) {
	return s.items, s.err
}

func (s *stubCatalog) Resolve(context.Context, string) (media.ResolvedTrack, error) {
	return media.ResolvedTrack{StreamURL: "http://example/stream", Title: "stub"}, nil
}

func (s *stubCatalog) Playlist(context.Context, string) (catalog.Listing, error) {
	return catalog.Listing{}, catalog.ErrNotFound
}

func (s *stubCatalog) Name() string { return "stub" }

type stubSynth struct{}

func (stubSynth) Synthesize(context.Context, string) (string, error) {
	return "http://example/tts", nil
}

func newTestRouter(t *testing.T, cat *stubCatalog) (*player.Player, http.Handler) {
	t.Helper()
	p := player.New(newStubChannel(), newStubChannel(), cat, stubSynth{}, presentation.NewFanout(), player.Config{})
	t.Cleanup(p.Close)
	return p, NewRouter(p, cat, 10)
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStateReportsIdleSession(t *testing.T) {
	p, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, p.SessionID(), resp.SessionID)
	assert.Equal(t, "idle", resp.Phase)
	assert.Empty(t, resp.LastError)
}

func TestSearch(t *testing.T) {
	cat := &stubCatalog{items: []media.Item{
		{ID: "v1", Title: "First", DurationLabel: "3:04"},
		{ID: "v2", Title: "Second"},
	}}
	_, router := newTestRouter(t, cat)

	rec := doRequest(router, http.MethodGet, "/api/search?q=test", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "v1", resp.Items[0].ID)
	assert.Equal(t, "3:04", resp.Items[0].DurationLabel)
}

func TestSearchRequiresQuery(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchUnavailable(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{err: catalog.ErrUnavailable})
	rec := doRequest(router, http.MethodGet, "/api/search?q=test", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSelectItem(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodPost, "/api/select", `{"id":"v1","title":"First"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestSelectItemRequiresID(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodPost, "/api/select", `{"title":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextWithoutPlaylistConflicts(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodPost, "/api/next", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStop(t *testing.T) {
	_, router := newTestRouter(t, &stubCatalog{})
	rec := doRequest(router, http.MethodPost, "/api/stop", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
