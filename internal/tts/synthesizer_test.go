package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdindoost/paper-narrator/internal/persona"
	"github.com/mdindoost/paper-narrator/internal/script"
)

type fakeProvider struct {
	failuresLeft int
	calls        int
	voicesSeen   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Synthesize(ctx context.Context, text string, voice Voice) (AudioResult, error) {
	f.calls++
	f.voicesSeen = append(f.voicesSeen, voice.ID)
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return AudioResult{}, &RetryableError{StatusCode: 429, Body: "slow down"}
	}
	return AudioResult{Data: []byte("audio:" + text), Format: FormatMP3}, nil
}

func (f *fakeProvider) DefaultVoices() VoiceMap {
	return VoiceMap{
		Optimist: Voice{ID: "v-opt"},
		Skeptic:  Voice{ID: "v-skep"},
		Narrator: Voice{ID: "v-narr"},
	}
}

func (f *fakeProvider) Close() error { return nil }

func noSleep(t *testing.T) {
	t.Helper()
	orig := sleepCtx
	sleepCtx = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	t.Cleanup(func() { sleepCtx = orig })
}

func testTurns() []script.DialogueTurn {
	return []script.DialogueTurn{
		{Speaker: persona.Narrator, Position: 0, Text: "Welcome."},
		{Speaker: persona.Optimist, Position: 1, Text: "Great results."},
		{Speaker: persona.Skeptic, Position: 2, Text: "Not so fast."},
		{Speaker: persona.Narrator, Position: 3, Text: "Goodbye."},
	}
}

func TestSynthesizeScript(t *testing.T) {
	p := &fakeProvider{}
	s := NewSynthesizer(p, p.DefaultVoices(), 1000, nil)
	dir := t.TempDir()

	var progressCalls int
	segments, err := s.SynthesizeScript(context.Background(), testTurns(), dir, func(done, total int) {
		progressCalls++
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	})
	if err != nil {
		t.Fatalf("SynthesizeScript failed: %v", err)
	}

	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}
	if progressCalls != 4 {
		t.Errorf("progress callback fired %d times, want 4", progressCalls)
	}

	// Voices follow the speaker roles.
	wantVoices := []string{"v-narr", "v-opt", "v-skep", "v-narr"}
	for i, want := range wantVoices {
		if p.voicesSeen[i] != want {
			t.Errorf("turn %d used voice %q, want %q", i, p.voicesSeen[i], want)
		}
	}

	// Files are named by position and speaker, and carry the audio bytes.
	want := filepath.Join(dir, "seg_001_optimist.mp3")
	if segments[1].Path != want {
		t.Errorf("segment path = %q, want %q", segments[1].Path, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	if string(data) != "audio:Great results." {
		t.Errorf("segment content = %q", data)
	}
}

func TestSynthesizeScript_RetriesRateLimit(t *testing.T) {
	noSleep(t)
	p := &fakeProvider{failuresLeft: 2}
	s := NewSynthesizer(p, p.DefaultVoices(), 1000, nil)

	turns := testTurns()[:1]
	segments, err := s.SynthesizeScript(context.Background(), turns, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("SynthesizeScript failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments", len(segments))
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want 3 (2 retries)", p.calls)
	}
}

func TestSynthesizeScript_Empty(t *testing.T) {
	p := &fakeProvider{}
	s := NewSynthesizer(p, p.DefaultVoices(), 1000, nil)
	if _, err := s.SynthesizeScript(context.Background(), nil, t.TempDir(), nil); err == nil {
		t.Fatal("expected error for empty script")
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	noSleep(t)
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return &RetryableError{StatusCode: 503, Body: "unavailable"}
	})

	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
	if calls != defaultMaxAttempts {
		t.Errorf("fn called %d times, want %d", calls, defaultMaxAttempts)
	}
}

func TestVoiceMap_For(t *testing.T) {
	m := VoiceMap{
		Optimist: Voice{ID: "a"},
		Skeptic:  Voice{ID: "b"},
		Narrator: Voice{ID: "c"},
	}
	if m.For(persona.Optimist).ID != "a" || m.For(persona.Skeptic).ID != "b" {
		t.Error("debater voices misrouted")
	}
	if m.For("someone-else").ID != "c" {
		t.Error("unknown speakers should get the narrator voice")
	}
}

func TestAvailableVoices(t *testing.T) {
	for _, name := range []string{"elevenlabs", "google"} {
		voices, err := AvailableVoices(name)
		if err != nil {
			t.Fatalf("AvailableVoices(%q): %v", name, err)
		}
		defaults := map[string]bool{}
		for _, v := range voices {
			if v.DefaultFor != "" {
				defaults[v.DefaultFor] = true
			}
		}
		for _, role := range []string{"Optimist", "Skeptic", "Narrator"} {
			if !defaults[role] {
				t.Errorf("%s catalog missing default for %s", name, role)
			}
		}
	}

	if _, err := AvailableVoices("espeak"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
