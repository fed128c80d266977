package screener

import (
	"math"

	"github.com/eazyai/screener/internal/extraction"
)

// fallbackAnalysis builds the degraded record used when a judge call failed
// or its response could not be parsed. Sub-scores are zero and the composite
// rests on the similarity signal alone, discounted so a fallback can never
// reach the shortlist band. The record is flagged for manual review.
func fallbackAnalysis(contact extraction.Contact, jdRole string, jdSimilarity float64, filename, reason string) CandidateAnalysis {
	return CandidateAnalysis{
		Name:  contact.Name,
		Email: contact.Email,
		Phone: contact.Phone,

		JDRole: jdRole,

		SkillsMatch:     0,
		DomainMatch:     0,
		ExperienceMatch: 0,
		JDSimilarity:    jdSimilarity,
		Score:           round2(math.Max(0, jdSimilarity*0.6)),

		Fitment:      "Automated analysis incomplete due to: " + reason + ".",
		Summary5Line: "Analysis for " + jdRole + " position was incomplete.",

		RedFlags:          []string{"Analysis failed - manual review required"},
		MissingGaps:       []string{"Complete analysis unavailable"},
		FraudDetected:     true,
		ReasonsIfRejected: []string{"Analysis failure: " + reason},
		Recommendation:    "Manual review recommended",
		Highlights:        []string{},

		Verdict: VerdictReview,

		ResumeFile: filename,
	}
}
