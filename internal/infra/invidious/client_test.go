package invidious

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-audio/herald/internal/app/catalog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(map[string]any{"base_url": srv.URL})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c, err := New(map[string]any{"base_url": "https://iv.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://iv.example.com", c.baseURL)
	assert.Equal(t, "invidious", c.Name())

	_, err = New(map[string]any{})
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "miles davis", r.URL.Query().Get("q"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		w.Write([]byte(`[
			{"type":"video","videoId":"v1","title":"So What","lengthSeconds":562,
			 "videoThumbnails":[{"url":"https://iv/thumb1.jpg"}]},
			{"type":"channel","authorId":"c1"},
			{"type":"video","videoId":"v2","title":"Blue in Green","lengthSeconds":327}
		]`))
	})

	items, err := c.Search(context.Background(), "miles davis", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "v1", items[0].ID)
	assert.Equal(t, "So What", items[0].Title)
	assert.Equal(t, "9:22", items[0].DurationLabel)
	assert.Equal(t, "https://iv/thumb1.jpg", items[0].ThumbnailURL)
	assert.Equal(t, "5:27", items[1].DurationLabel)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.Search(context.Background(), "  ", 10)
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestSearch_Unavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Search(context.Background(), "query", 10)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestResolve(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/videos/v1", r.URL.Path)
		w.Write([]byte(`{
			"title":"So What","lengthSeconds":562,
			"adaptiveFormats":[
				{"url":"https://cdn/video.mp4","type":"video/mp4"},
				{"url":"https://cdn/audio.m4a","type":"audio/mp4; codecs=\"mp4a.40.2\""}
			],
			"formatStreams":[{"url":"https://cdn/muxed.mp4","type":"video/mp4"}]
		}`))
	})

	rt, err := c.Resolve(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/audio.m4a", rt.StreamURL)
	assert.Equal(t, "So What", rt.Title)
	assert.Equal(t, 562, rt.DurationSeconds)
}

func TestResolve_FallsBackToMuxedStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"title":"So What","lengthSeconds":562,
			"formatStreams":[{"url":"https://cdn/muxed.mp4","type":"video/mp4"}]
		}`))
	})

	rt, err := c.Resolve(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/muxed.mp4", rt.StreamURL)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected error
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expected: catalog.ErrNotFound,
		},
		{
			name: "live stream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"title":"Live","liveNow":true}`))
			},
			expected: catalog.ErrRestricted,
		},
		{
			name: "no audio stream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"title":"Broken","lengthSeconds":10}`))
			},
			expected: catalog.ErrUnresolvable,
		},
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"This video is unavailable"}`))
			},
			expected: catalog.ErrUnresolvable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Resolve(context.Background(), "v1")
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestPlaylist(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/playlists/pl1", r.URL.Path)
		w.Write([]byte(`{
			"title":"Kind of Blue",
			"videos":[
				{"videoId":"v1","title":"So What","lengthSeconds":562},
				{"videoId":"v2","title":"Freddie Freeloader","lengthSeconds":589}
			]
		}`))
	})

	listing, err := c.Playlist(context.Background(), "pl1")
	require.NoError(t, err)
	assert.Equal(t, "Kind of Blue", listing.Title)
	require.Len(t, listing.Items, 2)
	assert.Equal(t, "v2", listing.Items[1].ID)
}

func TestPlaylist_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Empty","videos":[]}`))
	})
	_, err := c.Playlist(context.Background(), "pl1")
	assert.ErrorIs(t, err, catalog.ErrEmpty)
}

func TestDurationLabel(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, ""},
		{59, "0:59"},
		{90, "1:30"},
		{562, "9:22"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, durationLabel(tt.seconds))
	}
}
