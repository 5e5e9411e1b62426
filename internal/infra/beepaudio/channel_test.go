package beepaudio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests here stay clear of speaker.Init: opening the output device needs
// real audio hardware, so playback itself is covered by the player tests
// against fake channels.

func TestLoadRejectsEmptyURL(t *testing.T) {
	c := NewChannel("test")
	assert.Error(t, c.Load(""))
	assert.NoError(t, c.Load("http://example.com/a.mp3"))
}

func TestPlayWithoutLoad(t *testing.T) {
	c := NewChannel("test")
	assert.Error(t, c.Play())
}

func TestPauseWithoutAttemptIsNoop(t *testing.T) {
	c := NewChannel("test")
	c.Pause()
	c.Close()
	select {
	case sig := <-c.Signals():
		t.Fatalf("unexpected signal: %v", sig)
	default:
	}
}

// wavBytes builds a minimal one-channel 16-bit PCM WAV stream.
func wavBytes(t *testing.T, samples int) []byte {
	t.Helper()
	var buf bytes.Buffer
	dataLen := samples * 2

	buf.WriteString("RIFF")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(16)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(1)))     // PCM
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(1)))     // mono
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(44100))) // sample rate
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(44100*2)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(2)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(16)))

	buf.WriteString("data")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(dataLen)))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	t.Run("wav by content type", func(t *testing.T) {
		streamer, format, err := decode("audio/wav", "http://example.com/clip", io.NopCloser(bytes.NewReader(wavBytes(t, 64))))
		require.NoError(t, err)
		defer streamer.Close()
		assert.Equal(t, 44100, int(format.SampleRate))
	})

	t.Run("wav by extension", func(t *testing.T) {
		streamer, _, err := decode("application/octet-stream", "http://example.com/clip.wav?x=1", io.NopCloser(bytes.NewReader(wavBytes(t, 64))))
		require.NoError(t, err)
		streamer.Close()
	})

	t.Run("garbage mp3", func(t *testing.T) {
		_, _, err := decode("audio/mpeg", "http://example.com/a.mp3", io.NopCloser(bytes.NewReader([]byte("not audio"))))
		assert.Error(t, err)
	})

	t.Run("garbage wav", func(t *testing.T) {
		_, _, err := decode("audio/wav", "http://example.com/a.wav", io.NopCloser(bytes.NewReader([]byte("not audio"))))
		assert.Error(t, err)
	})
}
