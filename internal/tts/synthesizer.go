package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/mdindoost/paper-narrator/internal/script"
)

// Segment is one synthesized turn on disk.
type Segment struct {
	Path    string
	Speaker string
	Format  AudioFormat
}

// Synthesizer turns a script into per-turn audio segments, throttling
// provider calls to stay under API rate limits.
type Synthesizer struct {
	provider Provider
	voices   VoiceMap
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func NewSynthesizer(provider Provider, voices VoiceMap, requestsPerSec float64, logger *slog.Logger) *Synthesizer {
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		provider: provider,
		voices:   voices,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		logger:   logger,
	}
}

// SynthesizeScript renders every turn to an audio file under dir, named by
// position and speaker so segment order is recoverable from the filenames.
// The optional onTurn callback fires after each completed turn.
func (s *Synthesizer) SynthesizeScript(ctx context.Context, turns []script.DialogueTurn, dir string, onTurn func(done, total int)) ([]Segment, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("no turns to synthesize")
	}

	segments := make([]Segment, 0, len(turns))
	for i, turn := range turns {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		voice := s.voices.For(turn.Speaker)

		var result AudioResult
		err := WithRetry(ctx, func() error {
			var synthErr error
			result, synthErr = s.provider.Synthesize(ctx, turn.Text, voice)
			return synthErr
		})
		if err != nil {
			return nil, fmt.Errorf("synthesize turn %d (%s): %w", turn.Position, turn.Speaker, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("seg_%03d_%s.%s", turn.Position, turn.Speaker, result.Format))
		if err := os.WriteFile(path, result.Data, 0644); err != nil {
			return nil, fmt.Errorf("write segment %d: %w", turn.Position, err)
		}

		s.logger.DebugContext(ctx, "turn synthesized",
			"position", turn.Position, "speaker", turn.Speaker,
			"voice", voice.ID, "bytes", len(result.Data))

		segments = append(segments, Segment{Path: path, Speaker: turn.Speaker, Format: result.Format})
		if onTurn != nil {
			onTurn(i+1, len(turns))
		}
	}

	return segments, nil
}
