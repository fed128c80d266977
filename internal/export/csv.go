// Package export renders stored screening runs as downloadable CSV and
// Excel documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eazyai/screener/internal/screener"
)

var csvHeader = []string{
	"name", "email", "phone", "jd_role",
	"skills_match", "domain_match", "experience_match", "jd_similarity", "score",
	"fitment", "summary_5_lines",
	"red_flags", "missing_gaps", "fraud_detected", "reasons_if_rejected",
	"recommendation", "highlights", "verdict",
	"resume_file", "processing_time", "recruiter_notes",
}

// WriteCSV streams candidates as CSV. An empty verdict exports everything;
// otherwise only candidates with a matching final verdict are written.
// Resume text never appears in exports.
func WriteCSV(w io.Writer, candidates []screener.CandidateAnalysis, verdict string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, c := range filterByVerdict(candidates, verdict) {
		record := []string{
			c.Name, c.Email, c.Phone, c.JDRole,
			formatScore(c.SkillsMatch), formatScore(c.DomainMatch),
			formatScore(c.ExperienceMatch), formatScore(c.JDSimilarity), formatScore(c.Score),
			c.Fitment, c.Summary5Line,
			strings.Join(c.RedFlags, "; "), strings.Join(c.MissingGaps, "; "),
			strconv.FormatBool(c.FraudDetected), strings.Join(c.ReasonsIfRejected, "; "),
			c.Recommendation, strings.Join(c.Highlights, "; "), c.Verdict,
			c.ResumeFile, formatScore(c.ProcessingTime), c.RecruiterNotes,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", c.ResumeFile, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func filterByVerdict(candidates []screener.CandidateAnalysis, verdict string) []screener.CandidateAnalysis {
	if verdict == "" {
		return candidates
	}

	out := make([]screener.CandidateAnalysis, 0, len(candidates))
	for _, c := range candidates {
		if c.Verdict == verdict {
			out = append(out, c)
		}
	}
	return out
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
