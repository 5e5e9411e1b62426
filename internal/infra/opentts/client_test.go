package opentts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-audio/herald/internal/app/speech"
)

func TestSynthesize(t *testing.T) {
	var gotVoice, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tts", r.URL.Path)
		gotVoice = r.URL.Query().Get("voice")
		gotText = r.URL.Query().Get("text")
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Voice: "en-gb"})
	require.NoError(t, err)

	handle, err := c.Synthesize(context.Background(), "Up next: So What")
	require.NoError(t, err)
	assert.Equal(t, "en-gb", gotVoice)
	assert.Equal(t, "Up next: So What", gotText)
	assert.Contains(t, handle, srv.URL+"/api/tts?")
}

func TestSynthesize_TextTooLong(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost:5500"})
	require.NoError(t, err)

	_, err = c.Synthesize(context.Background(), strings.Repeat("a", speech.MaxTextLength+1))
	assert.ErrorIs(t, err, speech.ErrTextTooLong)
}

func TestSynthesize_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, speech.ErrUnavailable)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
