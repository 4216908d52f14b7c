package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdindoost/paper-narrator/internal/llm"
)

const analysisSystemPrompt = `You are a research paper analyst preparing material for a two-sided academic debate.
You read a paper excerpt and produce a structured analysis. Be specific: quote the paper's
own method names, system names, dataset names, and numbers. Never substitute generic
research vocabulary for the paper's actual content.

OUTPUT FORMAT (use exactly these section headers, bullets under each):

TOPIC: <one line naming the paper's subject>

KEY FINDINGS:
- <finding>

OPTIMIST CLAIMS:
- <a specific, defensible claim about this paper's contribution>

SKEPTIC CHALLENGES:
- <a specific methodological or evidential concern about this paper>

KEY TERMS:
- <proper noun, method name, or dataset name that appears in the paper>`

// maxExcerptChars bounds how much paper text is sent per analysis call.
const maxExcerptChars = 12000

// Analyzer drives the analysis collaborator and parses its reply.
type Analyzer struct {
	provider llm.Provider
	logger   *slog.Logger
}

func NewAnalyzer(provider llm.Provider, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{provider: provider, logger: logger}
}

// Analyze extracts the debate inputs from raw paper text. The reply is
// free-form; the parser tolerates malformed sections and the caller decides
// whether what survived is enough to build a script.
func (a *Analyzer) Analyze(ctx context.Context, paperText string) (*PaperAnalysis, error) {
	excerpt := paperText
	if len(excerpt) > maxExcerptChars {
		excerpt = excerpt[:maxExcerptChars]
	}

	prompt := fmt.Sprintf("Analyze the following research paper excerpt.\n\nPAPER TEXT:\n%s", excerpt)

	resp, err := a.provider.Complete(ctx, llm.Request{
		System:      analysisSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   1500,
		Temperature: 0.4, // lower temperature for extraction than for dialogue
	})
	if err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}

	parsed := ParseAnalysis(resp.Text)
	if len(parsed.KeyTerms) == 0 {
		parsed.KeyTerms = deriveKeyTerms(parsed)
	}

	a.logger.DebugContext(ctx, "paper analysis parsed",
		"topic", parsed.Topic,
		"findings", len(parsed.KeyFindings),
		"claims", len(parsed.OptimistClaims),
		"challenges", len(parsed.SkepticChallenges),
		"key_terms", len(parsed.KeyTerms),
	)

	return parsed, nil
}
