package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdindoost/paper-narrator/internal/analysis"
	"github.com/mdindoost/paper-narrator/internal/persona"
)

var fenceRe = regexp.MustCompile("(?s)```[a-z]*\\s*\n?(.*?)\n?```")

// buildSystemPrompt frames the model as one debater. Catchphrases are
// offered as flavor, never required, so the voice stays natural.
func buildSystemPrompt(p persona.Persona, a *analysis.PaperAnalysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, %s\n\n", p.Name, p.Role)
	fmt.Fprintf(&sb, "SPEAKING STYLE: %s\n", p.SpeakingStyle)
	fmt.Fprintf(&sb, "PERSPECTIVE: %s\n", p.Perspective)

	if len(p.Catchphrases) > 0 {
		fmt.Fprintf(&sb, "\nYou might naturally open with phrases like %q when it fits, but never force them.\n", p.Catchphrases[0])
	}

	sb.WriteString("\nRULES:\n")
	sb.WriteString("1. Discuss THIS paper's actual content. ")
	if len(a.KeyTerms) > 0 {
		fmt.Fprintf(&sb, "Mention specifics such as: %s.\n", strings.Join(capTerms(a.KeyTerms, 8), ", "))
	} else {
		sb.WriteString("Quote the paper's own methods, systems, and datasets.\n")
	}
	sb.WriteString("2. Never drift into generic research talk or filler like \"this research is interesting\".\n")
	sb.WriteString("3. Keep your reply to 2-3 sentences of natural speech, in character.\n")
	sb.WriteString("4. Reply with the spoken words only: no stage directions, no speaker label, no quotes.")

	return sb.String()
}

// buildTurnPrompt seeds the user prompt with the specific claim or challenge
// the turn elaborates, never a generic prompt. Follow-up turns also carry
// the previous statement so the debaters answer each other.
func buildTurnPrompt(p persona.Persona, a *analysis.PaperAnalysis, topic, seed, previous string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "PAPER TOPIC: %s\n", a.Topic)
	fmt.Fprintf(&sb, "DISCUSSION TOPIC: %s\n\n", topic)
	fmt.Fprintf(&sb, "YOUR POINT TO MAKE: %s\n", seed)

	if previous != "" {
		fmt.Fprintf(&sb, "\nTHE OTHER SPEAKER JUST SAID: %q\n", previous)
		sb.WriteString("Respond to their specific points while making yours.\n")
	}

	fmt.Fprintf(&sb, "\n%s's reply (2-3 sentences):", p.Name)
	return sb.String()
}

func capTerms(terms []string, n int) []string {
	if len(terms) <= n {
		return terms
	}
	return terms[:n]
}

// cleanReply normalizes a raw model reply into spoken text: fences, a
// leading speaker label, and wrapping quotes are stripped.
func cleanReply(text, speakerName string) string {
	text = strings.TrimSpace(text)

	if m := fenceRe.FindStringSubmatch(text); len(m) > 1 {
		text = strings.TrimSpace(m[1])
	}

	for _, prefix := range []string{speakerName + ":", speakerName + " -", "Response:", "Reply:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}

	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	return text
}
