package analysis

import (
	"testing"
)

const sampleReply = `TOPIC: Scalable connected components in Chapel

KEY FINDINGS:
- WCC runs on 128 locales with near-linear scaling
- The Arachne framework integrates with Arkouda dataframes

OPTIMIST CLAIMS:
1. The WCC implementation reaches near-linear scaling on 128 locales
2. Chapel's parallel loops cut the implementation to under 300 lines

SKEPTIC CHALLENGES:
* Only synthetic RMAT graphs were evaluated
* No baseline comparison against GraphX or Pregel is provided

KEY TERMS: WCC, Chapel, Arachne, Arkouda, RMAT
`

func TestParseAnalysis_Sections(t *testing.T) {
	a := ParseAnalysis(sampleReply)

	if a.Topic != "Scalable connected components in Chapel" {
		t.Errorf("Topic = %q", a.Topic)
	}
	if len(a.KeyFindings) != 2 {
		t.Errorf("KeyFindings = %d items, want 2: %v", len(a.KeyFindings), a.KeyFindings)
	}
	if len(a.OptimistClaims) != 2 {
		t.Errorf("OptimistClaims = %d items, want 2: %v", len(a.OptimistClaims), a.OptimistClaims)
	}
	if len(a.SkepticChallenges) != 2 {
		t.Errorf("SkepticChallenges = %d items, want 2: %v", len(a.SkepticChallenges), a.SkepticChallenges)
	}
	if len(a.KeyTerms) != 5 {
		t.Errorf("KeyTerms = %d items, want 5: %v", len(a.KeyTerms), a.KeyTerms)
	}
	if a.KeyTerms[0] != "WCC" || a.KeyTerms[2] != "Arachne" {
		t.Errorf("unexpected key terms: %v", a.KeyTerms)
	}

	if a.OptimistClaims[0] != "The WCC implementation reaches near-linear scaling on 128 locales" {
		t.Errorf("numbered bullet not stripped: %q", a.OptimistClaims[0])
	}
}

func TestParseAnalysis_FencedReply(t *testing.T) {
	a := ParseAnalysis("```\n" + sampleReply + "```")
	if a.Topic == "" || len(a.OptimistClaims) != 2 {
		t.Fatalf("fenced reply not parsed: topic=%q claims=%v", a.Topic, a.OptimistClaims)
	}
}

func TestParseAnalysis_MissingSections(t *testing.T) {
	a := ParseAnalysis("TOPIC: Something\n\nOPTIMIST CLAIMS:\n- A claim about the Chapel compiler\n")
	if len(a.SkepticChallenges) != 0 {
		t.Errorf("expected no challenges, got %v", a.SkepticChallenges)
	}
	if len(a.OptimistClaims) != 1 {
		t.Errorf("expected 1 claim, got %v", a.OptimistClaims)
	}
	if a.TopicCount() != 0 {
		t.Errorf("TopicCount = %d, want 0", a.TopicCount())
	}
}

func TestParseAnalysis_Garbage(t *testing.T) {
	a := ParseAnalysis("I'm sorry, I can't help with that.")
	if a.TopicCount() != 0 {
		t.Errorf("TopicCount = %d for garbage reply, want 0", a.TopicCount())
	}
}

func TestTopicCount(t *testing.T) {
	a := &PaperAnalysis{
		OptimistClaims:    []string{"a", "b", "c"},
		SkepticChallenges: []string{"x", "y"},
	}
	if a.TopicCount() != 2 {
		t.Errorf("TopicCount = %d, want 2 (min of claims and challenges)", a.TopicCount())
	}
}

func TestDeriveKeyTerms(t *testing.T) {
	a := &PaperAnalysis{
		Topic: "The WCC algorithm in Chapel",
		OptimistClaims: []string{
			"Arachne integrates with Arkouda for interactive WCC queries",
		},
	}

	terms := deriveKeyTerms(a)
	if len(terms) == 0 {
		t.Fatal("expected derived terms")
	}

	want := map[string]bool{"WCC": true, "Chapel": true, "Arachne": true, "Arkouda": true}
	got := map[string]bool{}
	for _, term := range terms {
		got[term] = true
	}
	for term := range want {
		if !got[term] {
			t.Errorf("missing derived term %q in %v", term, terms)
		}
	}
	if got["The"] {
		t.Errorf("stopword leaked into terms: %v", terms)
	}

	// First-seen order is stable.
	again := deriveKeyTerms(a)
	for i := range terms {
		if terms[i] != again[i] {
			t.Fatalf("derived terms not deterministic: %v vs %v", terms, again)
		}
	}
}
