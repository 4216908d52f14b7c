package persona

import "testing"

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	for _, id := range []string{Optimist, Skeptic, Narrator} {
		p, ok := r.Get(id)
		if !ok {
			t.Fatalf("missing persona %q", id)
		}
		if p.ID != id {
			t.Errorf("persona %q has ID %q", id, p.ID)
		}
		if p.Name == "" {
			t.Errorf("persona %q has empty name", id)
		}
	}

	if _, ok := r.Get("moderator"); ok {
		t.Error("unexpected persona for unknown ID")
	}
}

func TestRegistry_Opponent(t *testing.T) {
	r := NewRegistry()

	opp, ok := r.Opponent(Optimist)
	if !ok || opp.ID != Skeptic {
		t.Errorf("optimist's opponent = %q, want skeptic", opp.ID)
	}

	opp, ok = r.Opponent(Skeptic)
	if !ok || opp.ID != Optimist {
		t.Errorf("skeptic's opponent = %q, want optimist", opp.ID)
	}

	if _, ok := r.Opponent(Narrator); ok {
		t.Error("narrator should have no opponent")
	}
}

func TestDebaterMarkersAreDisjoint(t *testing.T) {
	// A shared marker would make every on-voice turn look like the opponent.
	seen := map[string]bool{}
	for _, m := range DefaultOptimist.Markers {
		seen[m] = true
	}
	for _, m := range DefaultSkeptic.Markers {
		if seen[m] {
			t.Errorf("marker %q appears for both debaters", m)
		}
	}
}
