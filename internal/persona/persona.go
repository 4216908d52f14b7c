// Package persona holds the static speaking roles of the debate. The
// registry is pure data: built once at startup, read-only afterwards.
package persona

// Persona IDs used as speaker labels in dialogue turns.
const (
	Optimist = "optimist"
	Skeptic  = "skeptic"
	Narrator = "narrator"
)

// Persona defines a speaking role's identity, style, and rhetorical stance.
// Catchphrases and Markers only shape prompts and validation; they carry no
// behavior of their own.
type Persona struct {
	ID            string   // Speaker label in turns: "optimist", "skeptic", or "narrator"
	Name          string   // Full character name used in prompts and captions
	Role          string   // Role in the conversation dynamic
	SpeakingStyle string   // Verbal patterns, sentence structure preferences
	Perspective   string   // Rhetorical focus of the role
	Catchphrases  []string // Signature phrases offered to the model as flavor
	Markers       []string // Lowercase fragments that identify this voice in text
}

// DefaultOptimist is the enthusiastic-researcher debater.
var DefaultOptimist = Persona{
	ID:   Optimist,
	Name: "Dr. Sarah Chen",
	Role: "The Enthusiastic Researcher. Opens each topic, champions the paper's claims, and builds excitement about where the work could lead.",
	SpeakingStyle: "Enthusiastic and explanatory. Uses analogies, builds excitement in layers, and connects findings to bigger possibilities.",
	Perspective:   "Focuses on potential, applications, and positive implications.",
	Catchphrases: []string{
		"This could be game-changing!",
		"Think about the possibilities here...",
		"What excites me most about this work is...",
		"This opens up so many new directions!",
		"Let me paint a picture of what this could mean...",
	},
	Markers: []string{
		"game-changing",
		"possibilities here",
		"what excites me",
		"so many new directions",
		"paint a picture",
		"endless",
	},
}

// DefaultSkeptic is the critical-analyst debater.
var DefaultSkeptic = Persona{
	ID:   Skeptic,
	Name: "Prof. Marcus Webb",
	Role: "The Critical Analyst. Challenges each claim, probes methodology, and keeps the discussion honest about limitations.",
	SpeakingStyle: "Analytical and precise. Asks probing questions, quotes specifics back at the other speaker, lets a measured cadence do the work.",
	Perspective:   "Focuses on methodology, limitations, and scientific rigor.",
	Catchphrases: []string{
		"Hold on, let's examine this more carefully...",
		"I have serious concerns about...",
		"The data doesn't quite support that conclusion...",
		"What about the limitations?",
		"I'm not convinced that...",
	},
	Markers: []string{
		"examine this more carefully",
		"serious concerns",
		"doesn't quite support",
		"what about the limitations",
		"not convinced",
		"reproducib",
	},
}

// DefaultNarrator frames the episode. It never debates; it only speaks the
// fixed introduction and conclusion turns.
var DefaultNarrator = Persona{
	ID:   Narrator,
	Name: "The Narrator",
	Role: "Neutral host. Introduces the paper, hands the floor to the debaters, and closes the episode.",
	SpeakingStyle: "Warm, clear, and brief.",
	Perspective:   "Neutral framing only; takes no side.",
}

// Registry is a pure lookup of personas by ID.
type Registry struct {
	personas map[string]Persona
}

// NewRegistry builds the default three-role registry.
func NewRegistry() *Registry {
	return NewRegistryWith(DefaultOptimist, DefaultSkeptic, DefaultNarrator)
}

// NewRegistryWith builds a registry from explicit personas. Used by tests
// and by deployments that restyle the speakers.
func NewRegistryWith(personas ...Persona) *Registry {
	m := make(map[string]Persona, len(personas))
	for _, p := range personas {
		m[p.ID] = p
	}
	return &Registry{personas: m}
}

// Get returns the persona for id.
func (r *Registry) Get(id string) (Persona, bool) {
	p, ok := r.personas[id]
	return p, ok
}

// Opponent returns the opposing debater: skeptic for optimist and vice
// versa. The narrator has no opponent.
func (r *Registry) Opponent(id string) (Persona, bool) {
	switch id {
	case Optimist:
		return r.Get(Skeptic)
	case Skeptic:
		return r.Get(Optimist)
	default:
		return Persona{}, false
	}
}
