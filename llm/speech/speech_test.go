package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/testutil/mocks"
)

func TestSplitChunksShortText(t *testing.T) {
	t.Parallel()

	chunks := SplitChunks("A short argument.", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short argument.", chunks[0])
}

func TestSplitChunksSentenceBoundaries(t *testing.T) {
	t.Parallel()

	text := "First sentence here. Second sentence here. Third sentence here."
	chunks := SplitChunks(text, 45)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First sentence here. Second sentence here.", chunks[0])
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 45)
		assert.NotEmpty(t, c)
	}
	assert.Equal(t, text, strings.Join(chunks, " "))
}

func TestSplitChunksWordFallback(t *testing.T) {
	t.Parallel()

	text := "no punctuation at all just a very long run of words"
	chunks := SplitChunks(text, 20)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 20)
	}
	assert.Equal(t, text, strings.Join(chunks, " "))
}

func TestRenderUploadsConcatenatedAudio(t *testing.T) {
	t.Parallel()

	tts := &mocks.TTS{Audio: []byte("xx")}
	blobs := store.NewFileBlobStore(t.TempDir(), "https://cdn.example.com/audio")
	s := NewSynthesizer(tts, blobs, 30, nil)

	url, err := s.Render(context.Background(), "d1/turn-1.mp3", "First sentence here. Second one here.", "voice-a")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/audio/d1/turn-1.mp3", url)
	assert.Len(t, tts.Inputs(), 2)
}

func TestRenderWithoutProvider(t *testing.T) {
	t.Parallel()

	s := NewSynthesizer(nil, nil, 0, nil)
	url, err := s.Render(context.Background(), "k", "text", "v")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestRenderProviderFailure(t *testing.T) {
	t.Parallel()

	tts := &mocks.TTS{Err: errors.New("quota exceeded")}
	blobs := store.NewFileBlobStore(t.TempDir(), "http://x")
	s := NewSynthesizer(tts, blobs, 0, nil)

	_, err := s.Render(context.Background(), "k", "text", "v")
	assert.Error(t, err)
}
