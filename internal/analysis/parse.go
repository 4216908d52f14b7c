package analysis

import (
	"regexp"
	"strings"
)

type section int

const (
	sectionNone section = iota
	sectionTopic
	sectionFindings
	sectionClaims
	sectionChallenges
	sectionTerms
)

var fenceRe = regexp.MustCompile("(?s)```[a-z]*\\s*\n?(.*?)\n?```")

// ParseAnalysis parses the collaborator's sectioned reply. It is tolerant:
// headers are matched by keyword regardless of case or decoration, bullets
// may use -, *, •, or numbering, and unknown lines are skipped. Missing
// sections simply yield empty slices.
func ParseAnalysis(reply string) *PaperAnalysis {
	reply = stripFences(reply)

	out := &PaperAnalysis{}
	current := sectionNone

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if s, rest, ok := matchHeader(line); ok {
			current = s
			switch {
			case s == sectionTopic && rest != "":
				out.Topic = rest
			case s == sectionTerms && rest != "":
				// Terms usually come inline: "KEY TERMS: WCC, Chapel, ..."
				for _, t := range strings.Split(rest, ",") {
					if t = strings.TrimSpace(t); t != "" {
						out.KeyTerms = append(out.KeyTerms, t)
					}
				}
			}
			continue
		}

		switch current {
		case sectionTopic:
			if out.Topic == "" {
				out.Topic = strings.TrimSpace(strings.TrimLeft(line, "-•* "))
			}
		case sectionFindings:
			if item, ok := bulletItem(line); ok {
				out.KeyFindings = append(out.KeyFindings, item)
			}
		case sectionClaims:
			if item, ok := bulletItem(line); ok {
				out.OptimistClaims = append(out.OptimistClaims, item)
			}
		case sectionChallenges:
			if item, ok := bulletItem(line); ok {
				out.SkepticChallenges = append(out.SkepticChallenges, item)
			}
		case sectionTerms:
			if item, ok := bulletItem(line); ok {
				// Terms sometimes come comma-joined on one bullet.
				for _, t := range strings.Split(item, ",") {
					t = strings.TrimSpace(t)
					if t != "" {
						out.KeyTerms = append(out.KeyTerms, t)
					}
				}
			}
		}
	}

	return out
}

// matchHeader recognizes a section header and returns any inline content
// after the colon (used by "TOPIC: ..." one-liners).
func matchHeader(line string) (section, string, bool) {
	upper := strings.ToUpper(line)

	rest := ""
	if idx := strings.Index(line, ":"); idx >= 0 {
		rest = strings.TrimSpace(line[idx+1:])
	}

	switch {
	case strings.HasPrefix(upper, "TOPIC"):
		return sectionTopic, rest, true
	case strings.Contains(upper, "KEY FINDING"):
		return sectionFindings, rest, true
	case strings.Contains(upper, "OPTIMIST"):
		return sectionClaims, rest, true
	case strings.Contains(upper, "SKEPTIC") || strings.Contains(upper, "CHALLENGE"):
		return sectionChallenges, rest, true
	case strings.Contains(upper, "KEY TERM"):
		return sectionTerms, rest, true
	}
	return sectionNone, "", false
}

var numberedRe = regexp.MustCompile(`^\d+[.)]\s+`)

// bulletItem strips list decoration from a line. Lines that carry no list
// marker and are suspiciously short are dropped as noise.
func bulletItem(line string) (string, bool) {
	orig := line
	line = strings.TrimLeft(line, "-•* \t")
	line = numberedRe.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	// Unmarked continuation text is accepted only if the line looked like a
	// bullet in the first place.
	if line == strings.TrimSpace(orig) && len(line) < 15 {
		return "", false
	}
	return line, true
}

func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return text
}

// acronymRe matches short all-caps tokens (WCC, CM, CEN) that usually name
// methods or datasets in papers.
var acronymRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,7}\b`)

// properNounRe matches capitalized words that are not sentence-initial
// stopwords (Chapel, Bitcoin, OpenAlex).
var properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+[A-Za-z]*\b`)

var stopWords = map[string]bool{
	"The": true, "This": true, "These": true, "Those": true, "A": true,
	"An": true, "It": true, "Their": true, "Our": true, "We": true,
	"While": true, "However": true, "Although": true, "What": true,
	"When": true, "How": true, "Why": true, "If": true, "In": true,
	"On": true, "For": true, "With": true, "But": true, "And": true,
}

// deriveKeyTerms pulls candidate key terms out of the parsed claims and
// findings when the reply carried no KEY TERMS section. Deterministic:
// terms appear in first-seen order.
func deriveKeyTerms(a *PaperAnalysis) []string {
	seen := map[string]bool{}
	var terms []string

	add := func(term string) {
		if term == "" || stopWords[term] || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	var sources []string
	sources = append(sources, a.Topic)
	sources = append(sources, a.KeyFindings...)
	sources = append(sources, a.OptimistClaims...)
	sources = append(sources, a.SkepticChallenges...)

	for _, src := range sources {
		for _, m := range acronymRe.FindAllString(src, -1) {
			add(m)
		}
		for _, m := range properNounRe.FindAllString(src, -1) {
			add(m)
		}
	}

	return terms
}
