// Package analysis turns raw paper text into the structured debate inputs:
// topic, key findings, optimist claims, skeptic challenges, and key terms.
package analysis

// PaperAnalysis is the structured result of analyzing one paper. It is
// produced once per pipeline run and immutable afterwards.
type PaperAnalysis struct {
	// Topic is the paper's main subject, one line.
	Topic string `json:"topic"`

	// KeyFindings are the paper's principal results, in reply order.
	KeyFindings []string `json:"key_findings"`

	// OptimistClaims are paper-specific assertions the optimist elaborates.
	OptimistClaims []string `json:"optimist_claims"`

	// SkepticChallenges are paper-specific critiques the skeptic raises.
	SkepticChallenges []string `json:"skeptic_challenges"`

	// KeyTerms are proper nouns, method names, and dataset names collected
	// during analysis. The validator uses them to test paper-specificity.
	KeyTerms []string `json:"key_terms"`
}

// TopicCount returns how many claim/challenge pairs the analysis can anchor.
func (a *PaperAnalysis) TopicCount() int {
	n := len(a.OptimistClaims)
	if len(a.SkepticChallenges) < n {
		n = len(a.SkepticChallenges)
	}
	return n
}
