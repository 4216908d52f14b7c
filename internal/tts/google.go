package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

const (
	googleDefaultOptimist = "en-US-Chirp3-HD-Leda"
	googleDefaultSkeptic  = "en-US-Chirp3-HD-Charon"
	googleDefaultNarrator = "en-US-Chirp3-HD-Orus"
)

// GoogleProvider implements Provider using Google Cloud TTS (Chirp 3 HD).
// Authentication uses Application Default Credentials.
type GoogleProvider struct {
	voices VoiceMap
	client *texttospeech.Client
}

func NewGoogleProvider(voiceOptimist, voiceSkeptic, voiceNarrator string) (*GoogleProvider, error) {
	voices := VoiceMap{
		Optimist: Voice{ID: googleDefaultOptimist, Name: "Leda"},
		Skeptic:  Voice{ID: googleDefaultSkeptic, Name: "Charon"},
		Narrator: Voice{ID: googleDefaultNarrator, Name: "Orus"},
	}
	if voiceOptimist != "" {
		voices.Optimist = Voice{ID: voiceOptimist}
	}
	if voiceSkeptic != "" {
		voices.Skeptic = Voice{ID: voiceSkeptic}
	}
	if voiceNarrator != "" {
		voices.Narrator = Voice{ID: voiceNarrator}
	}

	client, err := texttospeech.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("create Google TTS client: %w", err)
	}

	return &GoogleProvider{voices: voices, client: client}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) DefaultVoices() VoiceMap { return p.voices }

func (p *GoogleProvider) Synthesize(ctx context.Context, text string, voice Voice) (AudioResult, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         voice.ID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := p.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return AudioResult{}, fmt.Errorf("Google TTS synthesize: %w", err)
	}

	return AudioResult{Data: resp.AudioContent, Format: FormatMP3}, nil
}

func (p *GoogleProvider) Close() error { return p.client.Close() }

func googleAvailableVoices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "en-US-Chirp3-HD-Leda", Name: "Leda", Gender: "female", Description: "Youthful, bright female voice", DefaultFor: "Optimist"},
		{ID: "en-US-Chirp3-HD-Charon", Name: "Charon", Gender: "male", Description: "Informative, clear male voice", DefaultFor: "Skeptic"},
		{ID: "en-US-Chirp3-HD-Orus", Name: "Orus", Gender: "male", Description: "Warm, steady male narrator", DefaultFor: "Narrator"},
		{ID: "en-US-Chirp3-HD-Kore", Name: "Kore", Gender: "female", Description: "Firm, confident female voice"},
		{ID: "en-US-Chirp3-HD-Puck", Name: "Puck", Gender: "male", Description: "Upbeat, energetic male voice"},
		{ID: "en-US-Chirp3-HD-Zephyr", Name: "Zephyr", Gender: "female", Description: "Breezy, relaxed female voice"},
	}
}
