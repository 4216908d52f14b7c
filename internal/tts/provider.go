package tts

import (
	"context"
	"fmt"
	"time"

	"github.com/mdindoost/paper-narrator/internal/persona"
)

// AudioFormat represents the audio encoding returned by a provider.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
)

// Voice holds a provider-specific voice identifier.
type Voice struct {
	ID   string // Provider-specific voice identifier
	Name string // Human-readable label
}

// VoiceMap assigns a voice to each speaking role.
type VoiceMap struct {
	Optimist Voice
	Skeptic  Voice
	Narrator Voice
}

// For returns the voice for a persona ID. Unknown speakers get the narrator
// voice.
func (m VoiceMap) For(speakerID string) Voice {
	switch speakerID {
	case persona.Optimist:
		return m.Optimist
	case persona.Skeptic:
		return m.Skeptic
	default:
		return m.Narrator
	}
}

// AudioResult is the output of a synthesis call.
type AudioResult struct {
	Data   []byte
	Format AudioFormat
}

// Provider synthesizes speech from turn text.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice Voice) (AudioResult, error)
	DefaultVoices() VoiceMap
	Close() error
}

// VoiceInfo describes an available voice for display.
type VoiceInfo struct {
	ID          string
	Name        string
	Gender      string
	Description string
	DefaultFor  string // "Optimist", "Skeptic", "Narrator", or ""
}

// AvailableVoices returns the voice catalog for the named provider.
func AvailableVoices(providerName string) ([]VoiceInfo, error) {
	switch providerName {
	case "elevenlabs":
		return elevenLabsAvailableVoices(), nil
	case "google":
		return googleAvailableVoices(), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", providerName)
	}
}

// Retry constants shared by all providers.
const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 1 * time.Second
	defaultBackoffMulti   = 2
	defaultMaxBackoff     = 10 * time.Second
)

// RetryableError signals that the operation can be retried.
type RetryableError struct {
	StatusCode int
	Body       string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// sleepCtx waits for d or context cancellation. Swapped out in tests.
var sleepCtx = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// WithRetry executes fn with exponential backoff on RetryableError.
func WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else if _, ok := err.(*RetryableError); !ok {
			return err
		} else {
			lastErr = err
		}

		if attempt < defaultMaxAttempts {
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			backoff *= time.Duration(defaultBackoffMulti)
			if backoff > defaultMaxBackoff {
				backoff = defaultMaxBackoff
			}
		}
	}

	return lastErr
}

// NewProvider creates a TTS provider by name. The voice arguments are
// optional provider-specific voice ID overrides per role.
func NewProvider(name string, voiceOptimist, voiceSkeptic, voiceNarrator string) (Provider, error) {
	switch name {
	case "elevenlabs":
		return NewElevenLabsProvider(voiceOptimist, voiceSkeptic, voiceNarrator), nil
	case "google":
		return NewGoogleProvider(voiceOptimist, voiceSkeptic, voiceNarrator)
	default:
		return nil, fmt.Errorf("unknown TTS provider %q: choose elevenlabs or google", name)
	}
}
