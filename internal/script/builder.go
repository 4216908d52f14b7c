package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mdindoost/paper-narrator/internal/analysis"
	"github.com/mdindoost/paper-narrator/internal/llm"
	"github.com/mdindoost/paper-narrator/internal/persona"
	"github.com/mdindoost/paper-narrator/internal/validate"
)

// BuilderConfig shapes one script build.
type BuilderConfig struct {
	// Topics is the requested topic count (T). Clamped to the number of
	// claim/challenge pairs the analysis provides; topics are never
	// fabricated.
	Topics int

	// ExchangesPerTopic is the optimist/skeptic pair count per topic (E).
	ExchangesPerTopic int

	// MaxRetries is the per-turn regeneration budget after the first
	// attempt. When it runs out the turn falls back to the verbatim
	// claim/challenge text, so a build always terminates.
	MaxRetries int

	ShowName string
}

// Builder assembles a DialogueScript from a PaperAnalysis: a fixed narrator
// introduction, T topics of E alternating optimist/skeptic exchange pairs,
// and a fixed narrator conclusion. Turn count is always 2 + T×(2×E).
type Builder struct {
	provider  llm.Provider
	registry  *persona.Registry
	validator *validate.Validator
	cfg       BuilderConfig
	logger    *slog.Logger
}

func NewBuilder(provider llm.Provider, registry *persona.Registry, validator *validate.Validator, cfg BuilderConfig, logger *slog.Logger) *Builder {
	if cfg.Topics < 1 {
		cfg.Topics = 1
	}
	if cfg.ExchangesPerTopic < 1 {
		cfg.ExchangesPerTopic = 1
	}
	if cfg.ShowName == "" {
		cfg.ShowName = "Research Rundown"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		provider:  provider,
		registry:  registry,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Build produces the full script. It fails with ErrInsufficientContent when
// the analysis has zero claims or zero challenges, and with
// ErrGenerationTimeout when the collaborator stops responding. Turn-level
// validation failures never abort the build; they are recovered locally via
// regeneration and verbatim fallback.
func (b *Builder) Build(ctx context.Context, a *analysis.PaperAnalysis) (*DialogueScript, error) {
	available := a.TopicCount()
	if available == 0 {
		return nil, fmt.Errorf("%w (claims=%d, challenges=%d)",
			ErrInsufficientContent, len(a.OptimistClaims), len(a.SkepticChallenges))
	}

	topics := b.cfg.Topics
	if topics > available {
		topics = available
	}
	exchanges := b.cfg.ExchangesPerTopic

	optimist, _ := b.registry.Get(persona.Optimist)
	skeptic, _ := b.registry.Get(persona.Skeptic)

	turns := make([]DialogueTurn, 0, 2+topics*2*exchanges)
	turns = append(turns, DialogueTurn{
		Speaker:  persona.Narrator,
		Position: 0,
		Text:     b.introText(a, optimist, skeptic),
	})

	pos := 1
	for i := 0; i < topics; i++ {
		claim := a.OptimistClaims[i]
		challenge := a.SkepticChallenges[i]
		topic := topicLabel(claim)

		// Within a topic, the previous statement is threaded through so
		// each debater answers the other.
		previous := ""
		for e := 0; e < exchanges; e++ {
			optTurn, err := b.generateTurn(ctx, optimist, a, topic, claim, previous, pos)
			if err != nil {
				return nil, err
			}
			turns = append(turns, optTurn)
			previous = optTurn.Text
			pos++

			skepTurn, err := b.generateTurn(ctx, skeptic, a, topic, challenge, previous, pos)
			if err != nil {
				return nil, err
			}
			turns = append(turns, skepTurn)
			previous = skepTurn.Text
			pos++
		}
	}

	turns = append(turns, DialogueTurn{
		Speaker:  persona.Narrator,
		Position: pos,
		Text:     b.conclusionText(a, optimist, skeptic),
	})

	return &DialogueScript{
		ID:            ulid.Make().String(),
		Title:         b.title(a),
		PaperTopic:    a.Topic,
		Turns:         turns,
		ExchangeCount: topics * exchanges,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// generateTurn produces one validated debater turn. Rejected generations are
// retried up to MaxRetries; after that the verbatim seed text becomes the
// turn, guaranteeing the script always completes.
func (b *Builder) generateTurn(ctx context.Context, p persona.Persona, a *analysis.PaperAnalysis, topic, seed, previous string, pos int) (DialogueTurn, error) {
	system := buildSystemPrompt(p, a)
	prompt := buildTurnPrompt(p, a, topic, seed, previous)

	attempts := 1 + b.cfg.MaxRetries
	var lastReason validate.Reason

	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return DialogueTurn{}, ctx.Err()
		}

		resp, err := b.provider.Complete(ctx, llm.Request{
			System: system,
			Prompt: prompt,
		})
		if err != nil {
			if errors.Is(err, llm.ErrTimeout) {
				return DialogueTurn{}, fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
			}
			// A transport or parse failure burns an attempt like any
			// rejected generation.
			b.logger.WarnContext(ctx, "turn generation failed",
				"speaker", p.ID, "position", pos, "attempt", attempt, "error", err)
			lastReason = ""
			continue
		}

		text := cleanReply(resp.Text, p.Name)
		verdict := b.validator.Validate(p.ID, text, a)
		if verdict.Accepted {
			return DialogueTurn{
				Speaker:  p.ID,
				Position: pos,
				Text:     text,
				Topic:    topic,
				Source:   seed,
			}, nil
		}

		lastReason = verdict.Reason
		b.logger.WarnContext(ctx, "turn rejected",
			"speaker", p.ID, "position", pos, "attempt", attempt,
			"reason", verdict.Reason, "detail", verdict.Detail)
	}

	// Degraded but safe: speak the claim/challenge itself.
	b.logger.WarnContext(ctx, "validation exhausted, using verbatim fallback",
		"speaker", p.ID, "position", pos, "last_reason", lastReason)
	return DialogueTurn{
		Speaker:  p.ID,
		Position: pos,
		Text:     seed,
		Topic:    topic,
		Source:   seed,
		Fallback: true,
	}, nil
}

func (b *Builder) title(a *analysis.PaperAnalysis) string {
	topic := a.Topic
	if topic == "" {
		topic = "Research Discussion"
	}
	if len(topic) > 60 {
		topic = topic[:60] + "..."
	}
	return fmt.Sprintf("%s: %s", b.cfg.ShowName, topic)
}

func (b *Builder) introText(a *analysis.PaperAnalysis, optimist, skeptic persona.Persona) string {
	return fmt.Sprintf(
		"Welcome to %s. Today we're digging into %s. %s sees real promise in this work, and %s has some hard questions about it. Let's hear them out.",
		b.cfg.ShowName, a.Topic, optimist.Name, skeptic.Name)
}

func (b *Builder) conclusionText(a *analysis.PaperAnalysis, optimist, skeptic persona.Persona) string {
	return fmt.Sprintf(
		"And that's where we'll leave it. %s made the case for what %s could unlock, while %s kept the spotlight on the evidence and its limits. The tension between those two readings is exactly why this paper is worth your time. Thanks for listening to %s.",
		optimist.Name, a.Topic, skeptic.Name, b.cfg.ShowName)
}

// topicLabel derives a short discussion label from the claim that anchors
// the topic.
func topicLabel(claim string) string {
	label := strings.TrimSpace(claim)
	if idx := strings.IndexAny(label, ".;"); idx > 20 {
		label = label[:idx]
	}
	if len(label) > 80 {
		label = label[:80] + "..."
	}
	return label
}
