// Package speech turns a generated argument into playable audio. Long
// arguments are split on sentence boundaries to fit the provider's
// per-request input limit and the audio chunks are concatenated in
// order.
//
// Speech is an enhancement, not a requirement: any failure leaves the
// turn without audio and the debate continues.
package speech

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/agoralive/agora/store"
)

// Provider is the external speech-synthesis capability.
type Provider interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// DefaultChunkLimit is the per-request input cap applied when the
// configured limit is zero.
const DefaultChunkLimit = 4000

// Synthesizer renders turn arguments to audio and uploads the result.
type Synthesizer struct {
	provider   Provider
	blobs      store.BlobStore
	chunkLimit int
	logger     *zap.Logger
}

// NewSynthesizer creates a speech synthesizer. provider may be nil, in
// which case Render always reports no audio.
func NewSynthesizer(provider Provider, blobs store.BlobStore, chunkLimit int, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}
	return &Synthesizer{
		provider:   provider,
		blobs:      blobs,
		chunkLimit: chunkLimit,
		logger:     logger.With(zap.String("component", "speech")),
	}
}

// Render synthesizes text with the given voice, uploads the audio under
// key, and returns its public URL. An empty URL with nil error means
// synthesis is not configured.
func (s *Synthesizer) Render(ctx context.Context, key, text, voiceID string) (string, error) {
	if s.provider == nil || s.blobs == nil {
		return "", nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	var audio []byte
	for i, chunk := range SplitChunks(text, s.chunkLimit) {
		part, err := s.provider.Synthesize(ctx, chunk, voiceID)
		if err != nil {
			return "", fmt.Errorf("synthesize chunk %d: %w", i+1, err)
		}
		audio = append(audio, part...)
	}
	if len(audio) == 0 {
		return "", nil
	}

	url, err := s.blobs.Upload(ctx, key, audio, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	s.logger.Debug("rendered speech",
		zap.String("key", key),
		zap.Int("bytes", len(audio)),
	)
	return url, nil
}

// SplitChunks splits text into pieces no longer than limit bytes,
// preferring sentence boundaries, then word boundaries. Chunks
// concatenate back (modulo boundary whitespace) to the input.
func SplitChunks(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := boundaryBefore(text, limit)
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// boundaryBefore finds the best split position at or before limit:
// after sentence-ending punctuation if possible, else at whitespace,
// else a hard rune-aligned cut.
func boundaryBefore(s string, limit int) int {
	best := -1
	for i := 0; i < limit && i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 >= len(s) || s[i+1] == ' ' || s[i+1] == '\n' {
				best = i + 1
			}
		}
	}
	if best > 0 {
		return best
	}
	for i := limit; i > 0; i-- {
		if s[i-1] == ' ' || s[i-1] == '\n' {
			return i
		}
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return cut
}
