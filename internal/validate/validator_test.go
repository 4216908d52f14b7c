package validate

import (
	"strings"
	"testing"

	"github.com/mdindoost/paper-narrator/internal/analysis"
	"github.com/mdindoost/paper-narrator/internal/persona"
)

func newTestValidator() *Validator {
	return New(40, 300, []string{
		"that's a great point",
		"this research is interesting",
		"as an ai",
	}, persona.NewRegistry())
}

func testAnalysis() *analysis.PaperAnalysis {
	return &analysis.PaperAnalysis{
		Topic:    "Distributed graph processing",
		KeyTerms: []string{"WCC", "Chapel", "Arachne"},
	}
}

func TestValidate_AcceptsSpecificOnVoiceTurn(t *testing.T) {
	v := newTestValidator()
	text := "The WCC scaling curve in Chapel really does hold up across all the locale counts they tested."

	verdict := v.Validate(persona.Optimist, text, testAnalysis())
	if !verdict.Accepted {
		t.Fatalf("expected acceptance, got %q (%s)", verdict.Reason, verdict.Detail)
	}
}

func TestValidate_RejectsTooShort(t *testing.T) {
	v := newTestValidator()
	verdict := v.Validate(persona.Optimist, "WCC is nice.", testAnalysis())
	if verdict.Accepted || verdict.Reason != ReasonTooShort {
		t.Fatalf("expected too-short rejection, got %+v", verdict)
	}
}

func TestValidate_RejectsTooLong(t *testing.T) {
	v := newTestValidator()
	text := strings.Repeat("The WCC results are strong. ", 20)
	verdict := v.Validate(persona.Optimist, text, testAnalysis())
	if verdict.Accepted || verdict.Reason != ReasonTooLong {
		t.Fatalf("expected too-long rejection, got %+v", verdict)
	}
}

func TestValidate_RejectsOpponentVoice(t *testing.T) {
	v := newTestValidator()

	// Optimist turn that borrows the skeptic's marker.
	text := "I have serious concerns about the WCC evaluation, even though the Chapel code is elegant."
	verdict := v.Validate(persona.Optimist, text, testAnalysis())
	if verdict.Accepted || verdict.Reason != ReasonWrongVoice {
		t.Fatalf("expected wrong-voice rejection, got %+v", verdict)
	}

	// Skeptic turn that borrows the optimist's marker.
	text = "This could be game-changing for how we run WCC on large Chapel deployments."
	verdict = v.Validate(persona.Skeptic, text, testAnalysis())
	if verdict.Accepted || verdict.Reason != ReasonWrongVoice {
		t.Fatalf("expected wrong-voice rejection, got %+v", verdict)
	}
}

func TestValidate_VoiceCheckBeforeSpecificity(t *testing.T) {
	v := newTestValidator()

	// Carries a key term AND the opponent's marker: voice check wins.
	text := "What excites me most is how the WCC phase avoids the usual synchronization stalls entirely."
	verdict := v.Validate(persona.Skeptic, text, testAnalysis())
	if verdict.Accepted {
		t.Fatal("expected rejection")
	}
	if verdict.Reason != ReasonWrongVoice {
		t.Fatalf("reason = %q, want wrong-speaker-voice", verdict.Reason)
	}
}

func TestValidate_RejectsGenericWithoutKeyTerm(t *testing.T) {
	v := newTestValidator()
	text := "That's a great point, and honestly this research is interesting in many different ways."
	verdict := v.Validate(persona.Optimist, text, testAnalysis())
	if verdict.Accepted || verdict.Reason != ReasonGeneric {
		t.Fatalf("expected generic rejection, got %+v", verdict)
	}
	if verdict.Detail == "" {
		t.Error("generic rejection should name the offending phrase")
	}
}

func TestValidate_RejectsMissingReference(t *testing.T) {
	v := newTestValidator()
	text := "The experiments were run on a moderately sized cluster with a standard software configuration."
	verdict := v.Validate(persona.Optimist, text, testAnalysis())
	if verdict.Accepted || verdict.Reason != ReasonMissingReference {
		t.Fatalf("expected missing-reference rejection, got %+v", verdict)
	}
}

func TestValidate_KeyTermMatchIsCaseInsensitive(t *testing.T) {
	v := newTestValidator()
	text := "Running wcc inside chapel with these loop constructs is a genuinely clean way to express the algorithm."
	verdict := v.Validate(persona.Skeptic, text, testAnalysis())
	if !verdict.Accepted {
		t.Fatalf("expected acceptance for lowercased key term, got %+v", verdict)
	}
}

func TestValidate_NarratorHasNoOpponent(t *testing.T) {
	v := newTestValidator()
	// Narrator text may mention either debater's phrasing freely.
	text := "What excites me, and what raises serious concerns, is exactly what the WCC debate ahead covers."
	verdict := v.Validate(persona.Narrator, text, testAnalysis())
	if !verdict.Accepted {
		t.Fatalf("narrator turn rejected: %+v", verdict)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	v := newTestValidator()
	a := testAnalysis()
	text := "That's a great point about nothing in particular, without any concrete claims at all."

	first := v.Validate(persona.Optimist, text, a)
	for i := 0; i < 5; i++ {
		got := v.Validate(persona.Optimist, text, a)
		if got != first {
			t.Fatalf("verdict changed across identical calls: %+v vs %+v", first, got)
		}
	}
}
