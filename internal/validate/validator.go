// Package validate checks generated dialogue turns for paper-specificity
// and voice consistency. Validation is a deterministic, side-effect-free
// function of (turn text, persona set, paper key terms).
package validate

import (
	"strings"

	"github.com/mdindoost/paper-narrator/internal/analysis"
	"github.com/mdindoost/paper-narrator/internal/persona"
)

// Reason codes for rejected turns.
type Reason string

const (
	ReasonTooShort         Reason = "too-short"
	ReasonTooLong          Reason = "too-long"
	ReasonWrongVoice       Reason = "wrong-speaker-voice"
	ReasonMissingReference Reason = "missing-paper-reference"
	ReasonGeneric          Reason = "generic-content"
)

// Verdict is the per-turn outcome. Never persisted beyond the run.
type Verdict struct {
	Accepted bool
	Reason   Reason
	// Detail names the offending marker or phrase for logging.
	Detail string
}

func accepted() Verdict {
	return Verdict{Accepted: true}
}

func rejected(reason Reason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

// Validator applies the turn checks in order, short-circuiting on the first
// failure: length bounds, speaker-voice consistency, paper-specificity.
type Validator struct {
	minChars       int
	maxChars       int
	genericPhrases []string
	registry       *persona.Registry
}

func New(minChars, maxChars int, genericPhrases []string, registry *persona.Registry) *Validator {
	lowered := make([]string, len(genericPhrases))
	for i, p := range genericPhrases {
		lowered[i] = strings.ToLower(p)
	}
	return &Validator{
		minChars:       minChars,
		maxChars:       maxChars,
		genericPhrases: lowered,
		registry:       registry,
	}
}

// Validate checks one debater turn against the analysis it was derived from.
func (v *Validator) Validate(speakerID, text string, a *analysis.PaperAnalysis) Verdict {
	trimmed := strings.TrimSpace(text)

	// Too short signals truncated generation; too long signals runaway
	// generation.
	if len(trimmed) < v.minChars {
		return rejected(ReasonTooShort, "")
	}
	if len(trimmed) > v.maxChars {
		return rejected(ReasonTooLong, "")
	}

	lower := strings.ToLower(trimmed)

	// A turn must not borrow the other debater's voice. Cheap heuristic:
	// keyword match against the opponent's marker set.
	if opponent, ok := v.registry.Opponent(speakerID); ok {
		for _, marker := range opponent.Markers {
			if strings.Contains(lower, strings.ToLower(marker)) {
				return rejected(ReasonWrongVoice, marker)
			}
		}
	}

	// Paper-specificity: any key term grounds the turn in the paper.
	for _, term := range a.KeyTerms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return accepted()
		}
	}

	// No key term present. Distinguish generic filler from merely
	// unreferenced content for better diagnostics.
	for _, phrase := range v.genericPhrases {
		if strings.Contains(lower, phrase) {
			return rejected(ReasonGeneric, phrase)
		}
	}
	return rejected(ReasonMissingReference, "")
}
