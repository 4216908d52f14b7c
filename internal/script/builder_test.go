package script

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mdindoost/paper-narrator/internal/analysis"
	"github.com/mdindoost/paper-narrator/internal/llm"
	"github.com/mdindoost/paper-narrator/internal/persona"
	"github.com/mdindoost/paper-narrator/internal/validate"
)

// stubProvider returns canned replies (or a fixed error) without a network.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.reply, Model: "stub"}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func testAnalysis() *analysis.PaperAnalysis {
	return &analysis.PaperAnalysis{
		Topic: "Graph Algorithms in Chapel",
		KeyFindings: []string{
			"WCC implemented in Chapel scales to 128 locales",
		},
		OptimistClaims: []string{
			"The WCC implementation reaches near-linear scaling on 128 locales",
			"Chapel's high-level parallel constructs cut implementation effort dramatically",
		},
		SkepticChallenges: []string{
			"The evaluation only covers synthetic graphs, so WCC behavior on real workloads is unknown",
			"No comparison against established Chapel-independent baselines is provided",
		},
		KeyTerms: []string{"WCC", "Chapel", "locales"},
	}
}

// goodReply passes validation for both debaters: long enough, carries key
// terms, borrows nobody's voice.
const goodReply = "The WCC numbers across 128 Chapel locales hold up better than I expected, and the scaling curve stays close to linear throughout."

func newTestBuilder(p llm.Provider, cfg BuilderConfig) *Builder {
	registry := persona.NewRegistry()
	validator := validate.New(40, 1200, []string{"that's a great point", "this research is interesting"}, registry)
	return NewBuilder(p, registry, validator, cfg, nil)
}

func TestBuild_TurnCountAndStructure(t *testing.T) {
	b := newTestBuilder(&stubProvider{reply: goodReply}, BuilderConfig{
		Topics:            2,
		ExchangesPerTopic: 2,
		MaxRetries:        2,
	})

	s, err := b.Build(context.Background(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 2 narrator turns + T * (2 * E) debater turns
	want := 2 + 2*(2*2)
	if len(s.Turns) != want {
		t.Fatalf("expected %d turns, got %d", want, len(s.Turns))
	}

	if s.Turns[0].Speaker != persona.Narrator {
		t.Errorf("first turn speaker = %q, want narrator", s.Turns[0].Speaker)
	}
	if s.Turns[len(s.Turns)-1].Speaker != persona.Narrator {
		t.Errorf("last turn speaker = %q, want narrator", s.Turns[len(s.Turns)-1].Speaker)
	}

	// Strict alternation between the narrator bookends, optimist first.
	for i := 1; i < len(s.Turns)-1; i++ {
		want := persona.Optimist
		if (i-1)%2 == 1 {
			want = persona.Skeptic
		}
		if s.Turns[i].Speaker != want {
			t.Errorf("turn %d speaker = %q, want %q", i, s.Turns[i].Speaker, want)
		}
	}

	// Positions match slice indices.
	for i, turn := range s.Turns {
		if turn.Position != i {
			t.Errorf("turn %d has position %d", i, turn.Position)
		}
	}

	if s.ExchangeCount != 4 {
		t.Errorf("ExchangeCount = %d, want 4", s.ExchangeCount)
	}
	if s.FallbackCount() != 0 {
		t.Errorf("FallbackCount = %d, want 0", s.FallbackCount())
	}
}

func TestBuild_InsufficientContent(t *testing.T) {
	a := testAnalysis()
	a.SkepticChallenges = nil

	b := newTestBuilder(&stubProvider{reply: goodReply}, BuilderConfig{Topics: 2, ExchangesPerTopic: 1})

	_, err := b.Build(context.Background(), a)
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("expected ErrInsufficientContent, got %v", err)
	}
}

func TestBuild_TopicsClampedToAvailablePairs(t *testing.T) {
	// Ask for more topics than the analysis has claim/challenge pairs.
	b := newTestBuilder(&stubProvider{reply: goodReply}, BuilderConfig{
		Topics:            5,
		ExchangesPerTopic: 1,
	})

	s, err := b.Build(context.Background(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Only 2 pairs exist, so 2 topics of 1 exchange each.
	if want := 2 + 2*2; len(s.Turns) != want {
		t.Errorf("expected %d turns, got %d", want, len(s.Turns))
	}
	if s.ExchangeCount != 2 {
		t.Errorf("ExchangeCount = %d, want 2", s.ExchangeCount)
	}
}

func TestBuild_FallbackAfterExhaustedRetries(t *testing.T) {
	// Every generation is too short, so every debater turn must fall back to
	// the verbatim claim/challenge text.
	stub := &stubProvider{reply: "Great stuff."}
	b := newTestBuilder(stub, BuilderConfig{
		Topics:            1,
		ExchangesPerTopic: 1,
		MaxRetries:        2,
	})

	a := testAnalysis()
	s, err := b.Build(context.Background(), a)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(s.Turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(s.Turns))
	}

	optTurn := s.Turns[1]
	if !optTurn.Fallback {
		t.Error("optimist turn should be marked fallback")
	}
	if optTurn.Text != a.OptimistClaims[0] {
		t.Errorf("optimist fallback text = %q, want the claim verbatim", optTurn.Text)
	}

	skepTurn := s.Turns[2]
	if !skepTurn.Fallback {
		t.Error("skeptic turn should be marked fallback")
	}
	if skepTurn.Text != a.SkepticChallenges[0] {
		t.Errorf("skeptic fallback text = %q, want the challenge verbatim", skepTurn.Text)
	}

	// 1 + MaxRetries attempts per debater turn, 2 debater turns.
	if stub.calls != 6 {
		t.Errorf("provider called %d times, want 6", stub.calls)
	}
}

func TestBuild_TimeoutIsFatal(t *testing.T) {
	stub := &stubProvider{err: fmt.Errorf("ollama at localhost: %w", llm.ErrTimeout)}
	b := newTestBuilder(stub, BuilderConfig{Topics: 1, ExchangesPerTopic: 1, MaxRetries: 3})

	_, err := b.Build(context.Background(), testAnalysis())
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Fatalf("expected ErrGenerationTimeout, got %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("provider called %d times after timeout, want 1", stub.calls)
	}
}

func TestBuild_TransientErrorsBurnAttempts(t *testing.T) {
	stub := &stubProvider{err: errors.New("connection refused")}
	b := newTestBuilder(stub, BuilderConfig{Topics: 1, ExchangesPerTopic: 1, MaxRetries: 1})

	s, err := b.Build(context.Background(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// Both debater turns exhausted their attempts and fell back.
	if s.FallbackCount() != 2 {
		t.Errorf("FallbackCount = %d, want 2", s.FallbackCount())
	}
}

func TestBuild_NarratorTurnsAreDeterministic(t *testing.T) {
	cfg := BuilderConfig{Topics: 1, ExchangesPerTopic: 1, ShowName: "Research Rundown"}
	a := testAnalysis()

	s1, err := newTestBuilder(&stubProvider{reply: goodReply}, cfg).Build(context.Background(), a)
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	s2, err := newTestBuilder(&stubProvider{reply: goodReply}, cfg).Build(context.Background(), a)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}

	if s1.Turns[0].Text != s2.Turns[0].Text {
		t.Error("narrator intro differs between identical builds")
	}
	if s1.Turns[len(s1.Turns)-1].Text != s2.Turns[len(s2.Turns)-1].Text {
		t.Error("narrator conclusion differs between identical builds")
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestBuilder(&stubProvider{reply: goodReply}, BuilderConfig{Topics: 1, ExchangesPerTopic: 1})
	_, err := b.Build(ctx, testAnalysis())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCleanReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "The WCC results look solid.", "The WCC results look solid."},
		{"speaker label", "Dr. Sarah Chen: The WCC results look solid.", "The WCC results look solid."},
		{"fenced", "```\nThe WCC results look solid.\n```", "The WCC results look solid."},
		{"quoted", `"The WCC results look solid."`, "The WCC results look solid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanReply(tt.in, "Dr. Sarah Chen")
			if got != tt.want {
				t.Errorf("cleanReply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSaveLoadScript(t *testing.T) {
	b := newTestBuilder(&stubProvider{reply: goodReply}, BuilderConfig{Topics: 1, ExchangesPerTopic: 1})
	s, err := b.Build(context.Background(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	path := t.TempDir() + "/script.json"
	if err := SaveScript(s, path); err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}

	loaded, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	if loaded.ID != s.ID {
		t.Errorf("loaded ID = %q, want %q", loaded.ID, s.ID)
	}
	if len(loaded.Turns) != len(s.Turns) {
		t.Errorf("loaded %d turns, want %d", len(loaded.Turns), len(s.Turns))
	}
}
